package domain

type RecommendationType string

const (
	TypeSimilar       RecommendationType = "similar"
	TypeComplementary RecommendationType = "complementary"
	TypeTrending      RecommendationType = "trending"
	TypePersonalized  RecommendationType = "personalized"
	TypeCollaborative RecommendationType = "collaborative"
	TypeCrossSell     RecommendationType = "cross_sell"
	TypeUpSell        RecommendationType = "up_sell"
)

const (
	// AlgorithmHybrid identifies a normal run of the hybrid strategy.
	AlgorithmHybrid = "hybrid_v1"
	// AlgorithmDegraded marks a run that failed at the repository level and
	// returned empty lists instead of an error.
	AlgorithmDegraded = "hybrid_v1_error"
)

// RecommendationContext carries everything known about the request. All
// fields are optional; zero values mean "not set". Lifetime is one call.
type RecommendationContext struct {
	UserID              int64    `json:"user_id,omitempty"`
	CurrentProductID    int64    `json:"current_product_id,omitempty"`
	Query               string   `json:"query,omitempty"`
	Category            string   `json:"category,omitempty"`
	MinPrice            float64  `json:"min_price,omitempty"`
	MaxPrice            float64  `json:"max_price,omitempty"`
	ViewedProductIDs    []int64  `json:"viewed_product_ids,omitempty"`
	PurchasedProductIDs []int64  `json:"purchased_product_ids,omitempty"`
	Segment             string   `json:"segment,omitempty"`
	Limit               int      `json:"limit,omitempty"`
}

// CandidateFilter narrows the candidate pool query. Zero values mean the
// filter is not applied.
type CandidateFilter struct {
	Category string
	MinPrice float64
	MaxPrice float64
}

// ProductRecommendation is one scored suggestion. Score and Confidence are
// always clamped into [0,1] before leaving a scorer.
type ProductRecommendation struct {
	ProductID  int64              `json:"product_id"`
	Score      float64            `json:"score"`
	Reason     string             `json:"reason"`
	Type       RecommendationType `json:"type"`
	Confidence float64            `json:"confidence"`
}

type ResultMetadata struct {
	Algorithm          string `json:"algorithm"`
	GeneratedAt        string `json:"generated_at"`
	CandidatesAnalyzed int    `json:"candidates_analyzed"`
	UserID             int64  `json:"user_id,omitempty"`
	SessionID          string `json:"session_id"`
}

// RecommendationResult pairs the resolved products with their scoring
// metadata, index for index.
type RecommendationResult struct {
	Products        []Product               `json:"products"`
	Recommendations []ProductRecommendation `json:"recommendations"`
	Metadata        ResultMetadata          `json:"metadata"`
}
