package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/agrimarket/recommendation-engine/internal/domain"
	"github.com/google/uuid"
)

const (
	defaultLimit      = 20
	maxLimit          = 20
	candidatePoolSize = 100
	trendingWindow    = 7 * 24 * time.Hour
)

// CatalogRepository is the read surface of the product catalog.
type CatalogRepository interface {
	ListProducts(ctx context.Context, filter domain.CandidateFilter, limit int) ([]domain.Product, error)
	GetProductByID(ctx context.Context, id int64) (*domain.Product, error)
	GetProductsByIDs(ctx context.Context, ids []int64) ([]domain.Product, error)
}

// InteractionRepository is the read surface of the behavior log.
type InteractionRepository interface {
	ListInteractions(ctx context.Context, userID int64, kind domain.InteractionKind, limit int) ([]domain.InteractionRecord, error)
	PurchaseSets(ctx context.Context, excludeUserID int64, maxUsers int) (map[int64][]int64, error)
}

// TrendingSource supplies aggregate view/purchase counters for a trailing
// window. Normally a cached wrapper around the interaction repository.
type TrendingSource interface {
	TrendingStats(ctx context.Context, window time.Duration) ([]domain.TrendingStat, error)
}

// Engine combines six scoring strategies into one ranked recommendation
// list. It holds no per-request state; every call is a pure function of the
// context and the repositories.
type Engine struct {
	catalog       CatalogRepository
	interactions  InteractionRepository
	trending      TrendingSource
	scorerTimeout time.Duration
}

func New(catalog CatalogRepository, interactions InteractionRepository, trending TrendingSource, scorerTimeout time.Duration) *Engine {
	if scorerTimeout <= 0 {
		scorerTimeout = 2 * time.Second
	}
	return &Engine{
		catalog:       catalog,
		interactions:  interactions,
		trending:      trending,
		scorerTimeout: scorerTimeout,
	}
}

type scorer struct {
	name string
	run  func(ctx context.Context) []domain.ProductRecommendation
}

// Generate is the sole public entry point. It never returns an error:
// recommendations are a best-effort enhancement, so a repository failure
// degrades to an empty result tagged with the error algorithm sentinel.
func (e *Engine) Generate(ctx context.Context, rc domain.RecommendationContext) *domain.RecommendationResult {
	result, err := e.generate(ctx, rc)
	if err != nil {
		log.Printf("[engine] degraded run for user %d: %v", rc.UserID, err)
		return &domain.RecommendationResult{
			Products:        []domain.Product{},
			Recommendations: []domain.ProductRecommendation{},
			Metadata:        e.buildMetadata(domain.AlgorithmDegraded, rc, 0),
		}
	}
	return result
}

func (e *Engine) generate(ctx context.Context, rc domain.RecommendationContext) (*domain.RecommendationResult, error) {
	pool, err := e.catalog.ListProducts(ctx, candidateFilter(rc), candidatePoolSize)
	if err != nil {
		return nil, fmt.Errorf("build candidate pool: %w", err)
	}

	anchor, err := e.resolveAnchor(ctx, rc.CurrentProductID)
	if err != nil {
		return nil, err
	}

	scorers := e.applicableScorers(rc, anchor, pool)

	// Scorers read from the same immutable candidate snapshot and never
	// mutate shared state, so they fan out in parallel. Each runs under its
	// own deadline; a slow scorer contributes nothing instead of stalling
	// the run.
	results := make([][]domain.ProductRecommendation, len(scorers))
	var wg sync.WaitGroup
	for i, sc := range scorers {
		wg.Add(1)
		go func(idx int, sc scorer) {
			defer wg.Done()
			sctx, cancel := context.WithTimeout(ctx, e.scorerTimeout)
			defer cancel()
			results[idx] = sc.run(sctx)
		}(i, sc)
	}
	wg.Wait()

	merged := mergeAndRank(results, resultLimit(rc))

	products, recs, err := e.resolveProducts(ctx, merged)
	if err != nil {
		return nil, err
	}

	return &domain.RecommendationResult{
		Products:        products,
		Recommendations: recs,
		Metadata:        e.buildMetadata(domain.AlgorithmHybrid, rc, len(pool)),
	}, nil
}

// resolveAnchor fetches the current product, if any. A missing anchor is not
// an error: the anchor-based scorers simply do not run.
func (e *Engine) resolveAnchor(ctx context.Context, productID int64) (*domain.Product, error) {
	if productID == 0 {
		return nil, nil
	}
	anchor, err := e.catalog.GetProductByID(ctx, productID)
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("resolve anchor product %d: %w", productID, err)
	}
	return anchor, nil
}

func (e *Engine) applicableScorers(rc domain.RecommendationContext, anchor *domain.Product, pool []domain.Product) []scorer {
	var scorers []scorer

	if anchor != nil {
		scorers = append(scorers,
			scorer{"similarity", func(ctx context.Context) []domain.ProductRecommendation {
				return e.scoreSimilar(anchor, pool)
			}},
			scorer{"cross_sell", func(ctx context.Context) []domain.ProductRecommendation {
				return e.scoreCrossSell(anchor, pool)
			}},
			scorer{"up_sell", func(ctx context.Context) []domain.ProductRecommendation {
				return e.scoreUpSell(anchor, pool)
			}},
		)
	}
	if rc.UserID != 0 {
		scorers = append(scorers,
			scorer{"collaborative", func(ctx context.Context) []domain.ProductRecommendation {
				return e.scoreCollaborative(ctx, rc.UserID, pool)
			}},
			scorer{"personalization", func(ctx context.Context) []domain.ProductRecommendation {
				return e.scorePersonalized(ctx, rc.UserID, pool)
			}},
		)
	}
	scorers = append(scorers, scorer{"trending", func(ctx context.Context) []domain.ProductRecommendation {
		return e.scoreTrending(ctx, pool)
	}})

	return scorers
}

// resolveProducts fetches full product records for the surviving ids,
// preserving recommendation order. Recommendations whose product vanished
// from the catalog are dropped so the two lists stay parallel.
func (e *Engine) resolveProducts(ctx context.Context, recs []domain.ProductRecommendation) ([]domain.Product, []domain.ProductRecommendation, error) {
	ids := make([]int64, 0, len(recs))
	for _, rec := range recs {
		ids = append(ids, rec.ProductID)
	}

	resolved, err := e.catalog.GetProductsByIDs(ctx, ids)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve recommended products: %w", err)
	}

	byID := make(map[int64]domain.Product, len(resolved))
	for _, p := range resolved {
		byID[p.ID] = p
	}

	products := make([]domain.Product, 0, len(recs))
	kept := make([]domain.ProductRecommendation, 0, len(recs))
	for _, rec := range recs {
		p, ok := byID[rec.ProductID]
		if !ok {
			continue
		}
		products = append(products, p)
		kept = append(kept, rec)
	}
	return products, kept, nil
}

func (e *Engine) buildMetadata(algorithm string, rc domain.RecommendationContext, poolSize int) domain.ResultMetadata {
	return domain.ResultMetadata{
		Algorithm:          algorithm,
		GeneratedAt:        time.Now().UTC().Format(time.RFC3339),
		CandidatesAnalyzed: poolSize,
		UserID:             rc.UserID,
		SessionID:          uuid.NewString(),
	}
}

func candidateFilter(rc domain.RecommendationContext) domain.CandidateFilter {
	return domain.CandidateFilter{
		Category: rc.Category,
		MinPrice: rc.MinPrice,
		MaxPrice: rc.MaxPrice,
	}
}

// resultLimit applies the context limit, defaulting to 20 and never
// exceeding the global cap.
func resultLimit(rc domain.RecommendationContext) int {
	if rc.Limit <= 0 {
		return defaultLimit
	}
	if rc.Limit > maxLimit {
		return maxLimit
	}
	return rc.Limit
}
