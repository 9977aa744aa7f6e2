package engine

import (
	"sort"

	"github.com/agrimarket/recommendation-engine/internal/domain"
)

// mergeAndRank concatenates every scorer's output, dedupes by product id
// keeping the highest-scoring occurrence, sorts descending by score and
// truncates to the limit.
func mergeAndRank(lists [][]domain.ProductRecommendation, limit int) []domain.ProductRecommendation {
	best := make(map[int64]domain.ProductRecommendation)
	order := make([]int64, 0)
	for _, list := range lists {
		for _, rec := range list {
			prev, seen := best[rec.ProductID]
			if !seen {
				best[rec.ProductID] = rec
				order = append(order, rec.ProductID)
				continue
			}
			if rec.Score > prev.Score {
				best[rec.ProductID] = rec
			}
		}
	}

	merged := make([]domain.ProductRecommendation, 0, len(order))
	for _, id := range order {
		merged = append(merged, best[id])
	}
	sortByScore(merged)
	return truncate(merged, limit)
}

func sortByScore(recs []domain.ProductRecommendation) {
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Score > recs[j].Score
	})
}

func truncate(recs []domain.ProductRecommendation, n int) []domain.ProductRecommendation {
	if len(recs) > n {
		return recs[:n]
	}
	return recs
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
