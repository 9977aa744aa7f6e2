package engine

import (
	"fmt"

	"github.com/agrimarket/recommendation-engine/internal/domain"
)

const (
	categoryWeight = 0.4
	priceWeight    = 0.2
	brandWeight    = 0.3
	tagWeight      = 0.1

	priceBandLow  = 0.7
	priceBandHigh = 1.3

	similarityThreshold  = 0.7
	similarityTopN       = 5
	similarityConfidence = 0.9
)

// scoreSimilar ranks candidates by attribute overlap with the anchor
// product. Weights sum to 1.0; only candidates at or above the threshold
// survive.
func (e *Engine) scoreSimilar(anchor *domain.Product, pool []domain.Product) []domain.ProductRecommendation {
	var recs []domain.ProductRecommendation
	for _, cand := range pool {
		if cand.ID == anchor.ID {
			continue
		}
		score := similarityScore(*anchor, cand)
		if score < similarityThreshold {
			continue
		}
		recs = append(recs, domain.ProductRecommendation{
			ProductID:  cand.ID,
			Score:      clamp01(score),
			Reason:     similarityReason(*anchor, cand),
			Type:       domain.TypeSimilar,
			Confidence: clamp01(score * similarityConfidence),
		})
	}
	sortByScore(recs)
	return truncate(recs, similarityTopN)
}

func similarityScore(a, b domain.Product) float64 {
	score := 0.0
	if a.CategoryID == b.CategoryID {
		score += categoryWeight
	}
	if priceWithinBand(a.Price, b.Price) {
		score += priceWeight
	}
	if a.Brand != "" && a.Brand == b.Brand {
		score += brandWeight
	}
	score += tagOverlap(a.Tags, b.Tags) * tagWeight

	if score > 1.0 {
		score = 1.0
	}
	return score
}

// priceWithinBand checks the ratio in either direction, so the result is
// symmetric in its arguments.
func priceWithinBand(a, b float64) bool {
	if a <= 0 || b <= 0 {
		return false
	}
	ratio := b / a
	if ratio >= priceBandLow && ratio <= priceBandHigh {
		return true
	}
	inverse := a / b
	return inverse >= priceBandLow && inverse <= priceBandHigh
}

// tagOverlap is |common| / max(|a|, |b|). The max denominator keeps the
// measure symmetric.
func tagOverlap(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	set := make(map[string]bool, len(a))
	for _, t := range a {
		set[t] = true
	}
	common := 0
	for _, t := range b {
		if set[t] {
			common++
		}
	}
	larger := len(a)
	if len(b) > larger {
		larger = len(b)
	}
	return float64(common) / float64(larger)
}

// Reason priority: category > brand > price proximity > generic.
func similarityReason(anchor, cand domain.Product) string {
	switch {
	case anchor.CategoryID == cand.CategoryID:
		return fmt.Sprintf("More from the %s category", cand.CategoryID)
	case anchor.Brand != "" && anchor.Brand == cand.Brand:
		return fmt.Sprintf("Also by %s", cand.Brand)
	case priceWithinBand(anchor.Price, cand.Price):
		return "Similarly priced alternative"
	default:
		return "Shares similar characteristics"
	}
}
