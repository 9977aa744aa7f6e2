package engine

import (
	"context"
	"fmt"
	"log"

	"github.com/agrimarket/recommendation-engine/internal/domain"
)

const (
	trendingViewThreshold = 10
	trendingViewNorm      = 100.0
	trendingPurchaseNorm  = 50.0
	trendingTopN          = 8
	trendingConfidence    = 0.8
)

// scoreTrending surfaces candidates with high engagement in the trailing
// window regardless of personalization. Deterministic given the counters.
func (e *Engine) scoreTrending(ctx context.Context, pool []domain.Product) []domain.ProductRecommendation {
	stats, err := e.trending.TrendingStats(ctx, trendingWindow)
	if err != nil {
		log.Printf("[engine] trending scorer: %v", err)
		return nil
	}

	byID := make(map[int64]domain.TrendingStat, len(stats))
	for _, s := range stats {
		byID[s.ProductID] = s
	}

	var recs []domain.ProductRecommendation
	for _, cand := range pool {
		s, ok := byID[cand.ID]
		if !ok || s.ViewCount <= trendingViewThreshold {
			continue
		}
		score := trendingScore(s)
		recs = append(recs, domain.ProductRecommendation{
			ProductID:  cand.ID,
			Score:      clamp01(score),
			Reason:     fmt.Sprintf("%d views in the past week", s.ViewCount),
			Type:       domain.TypeTrending,
			Confidence: clamp01(score * trendingConfidence),
		})
	}
	sortByScore(recs)
	return truncate(recs, trendingTopN)
}

// trendingScore averages normalized view and purchase rates, each capped
// at 1.0.
func trendingScore(s domain.TrendingStat) float64 {
	views := float64(s.ViewCount) / trendingViewNorm
	if views > 1.0 {
		views = 1.0
	}
	purchases := float64(s.PurchaseCount) / trendingPurchaseNorm
	if purchases > 1.0 {
		purchases = 1.0
	}
	return (views + purchases) / 2
}
