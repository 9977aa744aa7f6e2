package engine

import (
	"fmt"

	"github.com/agrimarket/recommendation-engine/internal/domain"
)

const (
	crossSellBase       = 0.5
	crossSellPairBoost  = 0.2
	crossSellThreshold  = 0.4
	crossSellTopN       = 3
	crossSellConfidence = 0.8

	upSellRatioWeight = 0.5
	upSellRatioCap    = 0.5
	upSellSpecBoost   = 0.1
	upSellThreshold   = 0.3
	upSellTopN        = 3
	upSellConfidence  = 0.7
)

// complementaryTypes maps a product type (the "type" spec attribute) to the
// types commonly used alongside it. Extend here when the catalog grows a
// new pairing.
var complementaryTypes = map[string][]string{
	"fertilizer": {"pesticide", "sprayer"},
	"pesticide":  {"fertilizer", "sprayer"},
	"seed":       {"fertilizer", "pesticide"},
	"sprinkler":  {"pump", "hose"},
	"pump":       {"sprinkler", "hose"},
}

func productType(p domain.Product) string {
	return p.Specs["type"]
}

func isComplementary(anchorType, candType string) bool {
	if anchorType == "" || candType == "" {
		return false
	}
	for _, t := range complementaryTypes[anchorType] {
		if t == candType {
			return true
		}
	}
	return false
}

// scoreCrossSell finds same-category complements of the anchor product.
// A known complementary type pair lifts the score and the recommendation
// type.
func (e *Engine) scoreCrossSell(anchor *domain.Product, pool []domain.Product) []domain.ProductRecommendation {
	var recs []domain.ProductRecommendation
	for _, cand := range pool {
		if cand.ID == anchor.ID {
			continue
		}
		score := 0.0
		if cand.CategoryID == anchor.CategoryID {
			score += crossSellBase
		}
		paired := isComplementary(productType(*anchor), productType(cand))
		if paired {
			score += crossSellPairBoost
		}
		if score <= crossSellThreshold {
			continue
		}

		recType := domain.TypeCrossSell
		reason := fmt.Sprintf("Pairs well with %s", anchor.Name)
		if paired {
			recType = domain.TypeComplementary
			reason = fmt.Sprintf("Often used together with %s", anchor.Name)
		}
		recs = append(recs, domain.ProductRecommendation{
			ProductID:  cand.ID,
			Score:      clamp01(score),
			Reason:     reason,
			Type:       recType,
			Confidence: clamp01(score * crossSellConfidence),
		})
	}
	sortByScore(recs)
	return truncate(recs, crossSellTopN)
}

// scoreUpSell finds strictly higher-priced same-category alternatives.
// The least certain signal, hence the lowest confidence factor.
func (e *Engine) scoreUpSell(anchor *domain.Product, pool []domain.Product) []domain.ProductRecommendation {
	var recs []domain.ProductRecommendation
	for _, cand := range pool {
		if cand.ID == anchor.ID || cand.CategoryID != anchor.CategoryID {
			continue
		}
		if cand.Price <= anchor.Price || anchor.Price <= 0 {
			continue
		}
		ratio := cand.Price / anchor.Price
		score := (ratio - 1) * upSellRatioWeight
		if score > upSellRatioCap {
			score = upSellRatioCap
		}
		if comparableSpecs(*anchor, cand) {
			score += upSellSpecBoost
		}
		if score <= upSellThreshold {
			continue
		}
		recs = append(recs, domain.ProductRecommendation{
			ProductID:  cand.ID,
			Score:      clamp01(score),
			Reason:     fmt.Sprintf("Premium upgrade over %s", anchor.Name),
			Type:       domain.TypeUpSell,
			Confidence: clamp01(score * upSellConfidence),
		})
	}
	sortByScore(recs)
	return truncate(recs, upSellTopN)
}

// comparableSpecs reports whether both products carry specification data
// with at least one attribute in common.
func comparableSpecs(a, b domain.Product) bool {
	if len(a.Specs) == 0 || len(b.Specs) == 0 {
		return false
	}
	for k := range a.Specs {
		if _, ok := b.Specs[k]; ok {
			return true
		}
	}
	return false
}
