package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/agrimarket/recommendation-engine/internal/domain"
)

type fakeCatalog struct {
	products []domain.Product
	err      error
}

func (f *fakeCatalog) ListProducts(ctx context.Context, filter domain.CandidateFilter, limit int) ([]domain.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.Product
	for _, p := range f.products {
		if filter.Category != "" && p.CategoryID != filter.Category {
			continue
		}
		if filter.MinPrice > 0 && p.Price < filter.MinPrice {
			continue
		}
		if filter.MaxPrice > 0 && p.Price > filter.MaxPrice {
			continue
		}
		out = append(out, p)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeCatalog) GetProductByID(ctx context.Context, id int64) (*domain.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, p := range f.products {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, domain.ErrProductNotFound
}

func (f *fakeCatalog) GetProductsByIDs(ctx context.Context, ids []int64) ([]domain.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	want := make(map[int64]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []domain.Product
	for _, p := range f.products {
		if want[p.ID] {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeInteractions struct {
	purchases map[int64][]domain.InteractionRecord
	sets      map[int64][]int64
	err       error
}

func (f *fakeInteractions) ListInteractions(ctx context.Context, userID int64, kind domain.InteractionKind, limit int) ([]domain.InteractionRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.purchases[userID], nil
}

func (f *fakeInteractions) PurchaseSets(ctx context.Context, excludeUserID int64, maxUsers int) (map[int64][]int64, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[int64][]int64)
	for userID, set := range f.sets {
		if userID != excludeUserID {
			out[userID] = set
		}
	}
	return out, nil
}

type fakeTrending struct {
	stats []domain.TrendingStat
	err   error
}

func (f *fakeTrending) TrendingStats(ctx context.Context, window time.Duration) ([]domain.TrendingStat, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.stats, nil
}

func testProducts() []domain.Product {
	return []domain.Product{
		{ID: 1, Name: "Bio NPK Mix", CategoryID: "crop-care", Brand: "Bio", Price: 500,
			Tags: []string{"organic", "npk"}, Specs: map[string]string{"type": "fertilizer"}, Active: true},
		{ID: 2, Name: "Bio Organic Compost", CategoryID: "crop-care", Brand: "Bio", Price: 550,
			Tags: []string{"organic"}, Specs: map[string]string{"type": "fertilizer"}, Active: true},
		{ID: 3, Name: "CropShield Neem Extract", CategoryID: "crop-care", Brand: "CropShield", Price: 480,
			Tags: []string{"spray"}, Specs: map[string]string{"type": "pesticide"}, Active: true},
		{ID: 4, Name: "TerraNova Urea Blend", CategoryID: "crop-care", Brand: "TerraNova", Price: 1400,
			Tags: []string{"granular"}, Specs: map[string]string{"type": "fertilizer"}, Active: true},
		{ID: 5, Name: "SeedWorks Hybrid Tomato", CategoryID: "seeds", Brand: "SeedWorks", Price: 120,
			Tags: []string{"hybrid"}, Specs: map[string]string{"type": "seed"}, Active: true},
		{ID: 6, Name: "AquaFlow Drip Kit", CategoryID: "irrigation", Brand: "AquaFlow", Price: 2500,
			Tags: []string{"water-saving"}, Specs: map[string]string{"type": "sprinkler"}, Active: true},
	}
}

func newTestEngine(catalog CatalogRepository, interactions InteractionRepository, trending TrendingSource) *Engine {
	return New(catalog, interactions, trending, time.Second)
}

func TestGenerateEmptyContextReturnsTrendingOnly(t *testing.T) {
	eng := newTestEngine(
		&fakeCatalog{products: testProducts()},
		&fakeInteractions{},
		&fakeTrending{stats: []domain.TrendingStat{
			{ProductID: 1, ViewCount: 80, PurchaseCount: 10},
			{ProductID: 5, ViewCount: 40, PurchaseCount: 2},
			{ProductID: 3, ViewCount: 5, PurchaseCount: 1}, // below view threshold
		}},
	)

	result := eng.Generate(context.Background(), domain.RecommendationContext{})

	if result.Metadata.Algorithm != domain.AlgorithmHybrid {
		t.Errorf("expected algorithm %q, got %q", domain.AlgorithmHybrid, result.Metadata.Algorithm)
	}
	if len(result.Recommendations) != 2 {
		t.Fatalf("expected 2 trending recommendations, got %d", len(result.Recommendations))
	}
	for _, rec := range result.Recommendations {
		if rec.Type != domain.TypeTrending {
			t.Errorf("expected trending type, got %s", rec.Type)
		}
	}
	if len(result.Products) != len(result.Recommendations) {
		t.Errorf("products and recommendations out of sync: %d vs %d",
			len(result.Products), len(result.Recommendations))
	}
	if result.Metadata.SessionID == "" {
		t.Error("expected a session id")
	}
	if result.Metadata.CandidatesAnalyzed != len(testProducts()) {
		t.Errorf("expected pool size %d, got %d", len(testProducts()), result.Metadata.CandidatesAnalyzed)
	}
}

func TestGenerateFailingCatalogDegrades(t *testing.T) {
	eng := newTestEngine(
		&fakeCatalog{err: errors.New("connection refused")},
		&fakeInteractions{},
		&fakeTrending{},
	)

	result := eng.Generate(context.Background(), domain.RecommendationContext{UserID: 7})

	if result.Metadata.Algorithm != domain.AlgorithmDegraded {
		t.Errorf("expected degraded algorithm tag, got %q", result.Metadata.Algorithm)
	}
	if len(result.Products) != 0 || len(result.Recommendations) != 0 {
		t.Errorf("expected empty result, got %d products / %d recommendations",
			len(result.Products), len(result.Recommendations))
	}
	if result.Metadata.UserID != 7 {
		t.Errorf("expected user id preserved, got %d", result.Metadata.UserID)
	}
}

func TestGenerateMissingAnchorIsNotAnError(t *testing.T) {
	eng := newTestEngine(
		&fakeCatalog{products: testProducts()},
		&fakeInteractions{},
		&fakeTrending{},
	)

	result := eng.Generate(context.Background(), domain.RecommendationContext{CurrentProductID: 999})

	if result.Metadata.Algorithm != domain.AlgorithmHybrid {
		t.Errorf("missing anchor should not degrade the run, got %q", result.Metadata.Algorithm)
	}
	for _, rec := range result.Recommendations {
		if rec.Type == domain.TypeSimilar || rec.Type == domain.TypeUpSell {
			t.Errorf("anchor-based scorer ran without an anchor: %s", rec.Type)
		}
	}
}

func TestGenerateScoresAndConfidenceWithinRange(t *testing.T) {
	eng := newTestEngine(
		&fakeCatalog{products: testProducts()},
		&fakeInteractions{
			purchases: map[int64][]domain.InteractionRecord{
				7: {{UserID: 7, ProductID: 1, Kind: domain.InteractionPurchase}},
			},
			sets: map[int64][]int64{
				8: {1, 3},
				9: {1, 3, 5},
			},
		},
		&fakeTrending{stats: []domain.TrendingStat{
			{ProductID: 4, ViewCount: 500, PurchaseCount: 200},
		}},
	)

	result := eng.Generate(context.Background(), domain.RecommendationContext{
		UserID:           7,
		CurrentProductID: 1,
	})

	if len(result.Recommendations) == 0 {
		t.Fatal("expected recommendations")
	}
	for _, rec := range result.Recommendations {
		if rec.Score < 0 || rec.Score > 1 {
			t.Errorf("score out of range for product %d: %f", rec.ProductID, rec.Score)
		}
		if rec.Confidence < 0 || rec.Confidence > 1 {
			t.Errorf("confidence out of range for product %d: %f", rec.ProductID, rec.Confidence)
		}
	}
	for i := 1; i < len(result.Recommendations); i++ {
		if result.Recommendations[i].Score > result.Recommendations[i-1].Score {
			t.Errorf("result not sorted descending at index %d", i)
		}
	}
}

func TestGenerateRespectsContextLimit(t *testing.T) {
	eng := newTestEngine(
		&fakeCatalog{products: testProducts()},
		&fakeInteractions{},
		&fakeTrending{stats: []domain.TrendingStat{
			{ProductID: 1, ViewCount: 90, PurchaseCount: 20},
			{ProductID: 2, ViewCount: 70, PurchaseCount: 10},
			{ProductID: 3, ViewCount: 50, PurchaseCount: 5},
		}},
	)

	result := eng.Generate(context.Background(), domain.RecommendationContext{Limit: 1})

	if len(result.Recommendations) != 1 {
		t.Errorf("expected 1 recommendation, got %d", len(result.Recommendations))
	}
}

func TestMergeAndRankDedupesKeepingHighestScore(t *testing.T) {
	lists := [][]domain.ProductRecommendation{
		{
			{ProductID: 1, Score: 0.72, Type: domain.TypeSimilar},
			{ProductID: 2, Score: 0.95, Type: domain.TypeSimilar},
		},
		{
			{ProductID: 1, Score: 0.88, Type: domain.TypeTrending},
			{ProductID: 3, Score: 0.60, Type: domain.TypeTrending},
		},
	}

	merged := mergeAndRank(lists, 20)

	if len(merged) != 3 {
		t.Fatalf("expected 3 deduped entries, got %d", len(merged))
	}
	seen := make(map[int64]domain.ProductRecommendation)
	for _, rec := range merged {
		if _, dup := seen[rec.ProductID]; dup {
			t.Errorf("duplicate product %d in merged list", rec.ProductID)
		}
		seen[rec.ProductID] = rec
	}
	if seen[1].Score != 0.88 || seen[1].Type != domain.TypeTrending {
		t.Errorf("expected highest-scoring occurrence kept for product 1, got %+v", seen[1])
	}
	if merged[0].ProductID != 2 {
		t.Errorf("expected product 2 first, got %d", merged[0].ProductID)
	}
}

func TestMergeAndRankTruncates(t *testing.T) {
	var list []domain.ProductRecommendation
	for i := int64(1); i <= 30; i++ {
		list = append(list, domain.ProductRecommendation{ProductID: i, Score: float64(i) / 30})
	}

	merged := mergeAndRank([][]domain.ProductRecommendation{list}, 20)

	if len(merged) != 20 {
		t.Errorf("expected 20 entries after truncation, got %d", len(merged))
	}
}

func TestResultLimit(t *testing.T) {
	cases := []struct {
		limit int
		want  int
	}{
		{0, 20},
		{-3, 20},
		{5, 5},
		{20, 20},
		{100, 20},
	}
	for _, tc := range cases {
		got := resultLimit(domain.RecommendationContext{Limit: tc.limit})
		if got != tc.want {
			t.Errorf("resultLimit(%d) = %d, want %d", tc.limit, got, tc.want)
		}
	}
}

func TestClamp01(t *testing.T) {
	if clamp01(-0.2) != 0 {
		t.Error("negative values should clamp to 0")
	}
	if clamp01(1.7) != 1 {
		t.Error("values above 1 should clamp to 1")
	}
	if clamp01(0.42) != 0.42 {
		t.Error("in-range values should pass through")
	}
}
