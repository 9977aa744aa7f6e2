package engine

import (
	"context"
	"fmt"
	"log"

	"github.com/agrimarket/recommendation-engine/internal/domain"
)

const (
	prefCategoryWeight = 0.4
	prefBrandWeight    = 0.3
	prefPriceWeight    = 0.2

	personalizationThreshold  = 0.3
	personalizationTopN       = 5
	personalizationConfidence = 0.85
)

// preferenceProfile is derived from a user's purchase history: how often
// each category and brand appears, and the price band they buy in.
type preferenceProfile struct {
	categories map[string]int
	brands     map[string]int
	minPrice   float64
	maxPrice   float64
	purchased  map[int64]bool
}

func (p preferenceProfile) empty() bool {
	return len(p.categories) == 0 && len(p.brands) == 0
}

func (p preferenceProfile) inPriceBand(price float64) bool {
	return p.maxPrice > 0 && price >= p.minPrice && price <= p.maxPrice
}

// scorePersonalized matches candidates against the user's derived
// preference profile.
func (e *Engine) scorePersonalized(ctx context.Context, userID int64, pool []domain.Product) []domain.ProductRecommendation {
	purchases, err := e.interactions.ListInteractions(ctx, userID, domain.InteractionPurchase, purchaseHistoryLimit)
	if err != nil {
		log.Printf("[engine] personalization scorer: %v", err)
		return nil
	}
	if len(purchases) == 0 {
		return nil
	}

	ids := make([]int64, 0, len(purchases))
	for _, rec := range purchases {
		ids = append(ids, rec.ProductID)
	}
	bought, err := e.catalog.GetProductsByIDs(ctx, ids)
	if err != nil {
		log.Printf("[engine] personalization scorer: %v", err)
		return nil
	}

	profile := buildPreferenceProfile(bought)
	if profile.empty() {
		return nil
	}

	var recs []domain.ProductRecommendation
	for _, cand := range pool {
		if profile.purchased[cand.ID] {
			continue
		}
		score, reason := personalizationScore(profile, cand)
		if score <= personalizationThreshold {
			continue
		}
		recs = append(recs, domain.ProductRecommendation{
			ProductID:  cand.ID,
			Score:      clamp01(score),
			Reason:     reason,
			Type:       domain.TypePersonalized,
			Confidence: clamp01(score * personalizationConfidence),
		})
	}
	sortByScore(recs)
	return truncate(recs, personalizationTopN)
}

func buildPreferenceProfile(bought []domain.Product) preferenceProfile {
	profile := preferenceProfile{
		categories: make(map[string]int),
		brands:     make(map[string]int),
		purchased:  make(map[int64]bool, len(bought)),
	}
	for _, p := range bought {
		profile.categories[p.CategoryID]++
		if p.Brand != "" {
			profile.brands[p.Brand]++
		}
		if profile.maxPrice == 0 || p.Price > profile.maxPrice {
			profile.maxPrice = p.Price
		}
		if profile.minPrice == 0 || p.Price < profile.minPrice {
			profile.minPrice = p.Price
		}
		profile.purchased[p.ID] = true
	}
	return profile
}

func personalizationScore(profile preferenceProfile, cand domain.Product) (float64, string) {
	score := 0.0
	reason := "Picked for you"
	if profile.categories[cand.CategoryID] > 0 {
		score += prefCategoryWeight
		reason = fmt.Sprintf("You often shop %s", cand.CategoryID)
	}
	if profile.brands[cand.Brand] > 0 {
		score += prefBrandWeight
		if profile.categories[cand.CategoryID] == 0 {
			reason = fmt.Sprintf("From %s, a brand you buy", cand.Brand)
		}
	}
	if profile.inPriceBand(cand.Price) {
		score += prefPriceWeight
	}
	return score, reason
}
