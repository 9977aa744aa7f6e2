package engine

import (
	"context"
	"fmt"
	"log"

	"github.com/agrimarket/recommendation-engine/internal/domain"
)

const (
	userSimilarityThreshold = 0.2
	neighborPoolSize        = 200
	purchaseHistoryLimit    = 100

	collaborativeThreshold  = 0.5
	collaborativeTopN       = 5
	collaborativeConfidence = 0.75
)

// scoreCollaborative surfaces candidates purchased by behaviorally similar
// users. Similarity is Jaccard overlap between purchased-product sets; the
// candidate score is the fraction of similar users who bought it.
func (e *Engine) scoreCollaborative(ctx context.Context, userID int64, pool []domain.Product) []domain.ProductRecommendation {
	purchases, err := e.interactions.ListInteractions(ctx, userID, domain.InteractionPurchase, purchaseHistoryLimit)
	if err != nil {
		log.Printf("[engine] collaborative scorer: %v", err)
		return nil
	}
	if len(purchases) == 0 {
		return nil
	}

	owned := make(map[int64]bool, len(purchases))
	for _, rec := range purchases {
		owned[rec.ProductID] = true
	}

	sets, err := e.interactions.PurchaseSets(ctx, userID, neighborPoolSize)
	if err != nil {
		log.Printf("[engine] collaborative scorer: %v", err)
		return nil
	}

	var similar []map[int64]bool
	for _, productIDs := range sets {
		if jaccard(owned, productIDs) >= userSimilarityThreshold {
			set := make(map[int64]bool, len(productIDs))
			for _, id := range productIDs {
				set[id] = true
			}
			similar = append(similar, set)
		}
	}
	if len(similar) == 0 {
		return nil
	}

	var recs []domain.ProductRecommendation
	for _, cand := range pool {
		if owned[cand.ID] {
			continue
		}
		liked := 0
		for _, set := range similar {
			if set[cand.ID] {
				liked++
			}
		}
		score := float64(liked) / float64(len(similar))
		if score <= collaborativeThreshold {
			continue
		}
		recs = append(recs, domain.ProductRecommendation{
			ProductID: cand.ID,
			Score:     clamp01(score),
			Reason:    fmt.Sprintf("Bought by %d%% of shoppers with similar purchases", int(score*100)),
			// Tagged personalized rather than collaborative for contract
			// compatibility; domain.TypeCollaborative exists when the
			// contract is ready to change.
			Type:       domain.TypePersonalized,
			Confidence: clamp01(score * collaborativeConfidence),
		})
	}
	sortByScore(recs)
	return truncate(recs, collaborativeTopN)
}

// jaccard is |intersection| / |union| of a purchase set and a neighbor's
// purchased product ids.
func jaccard(owned map[int64]bool, other []int64) float64 {
	if len(owned) == 0 || len(other) == 0 {
		return 0
	}
	intersection := 0
	seen := make(map[int64]bool, len(other))
	for _, id := range other {
		if seen[id] {
			continue
		}
		seen[id] = true
		if owned[id] {
			intersection++
		}
	}
	union := len(owned) + len(seen) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
