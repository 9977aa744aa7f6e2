package engine

import (
	"context"
	"testing"

	"github.com/agrimarket/recommendation-engine/internal/domain"
)

func purchaseRecords(userID int64, productIDs ...int64) []domain.InteractionRecord {
	recs := make([]domain.InteractionRecord, 0, len(productIDs))
	for _, id := range productIDs {
		recs = append(recs, domain.InteractionRecord{
			UserID:    userID,
			ProductID: id,
			Kind:      domain.InteractionPurchase,
		})
	}
	return recs
}

func TestCollaborativeScoresByNeighborOverlap(t *testing.T) {
	pool := []domain.Product{{ID: 1}, {ID: 2}, {ID: 3}, {ID: 4}}
	interactions := &fakeInteractions{
		purchases: map[int64][]domain.InteractionRecord{
			7: purchaseRecords(7, 1, 2),
		},
		sets: map[int64][]int64{
			8:  {1, 2, 3},    // jaccard 2/3, similar
			9:  {1, 3},       // jaccard 1/3, similar
			10: {4, 5, 6, 7}, // jaccard 0, not similar
		},
	}
	eng := newTestEngine(&fakeCatalog{}, interactions, &fakeTrending{})

	recs := eng.scoreCollaborative(context.Background(), 7, pool)

	// Product 3 bought by both similar users: score 1.0. Product 4 only by a
	// dissimilar user. Products 1 and 2 are already owned.
	if len(recs) != 1 {
		t.Fatalf("expected 1 recommendation, got %d", len(recs))
	}
	if recs[0].ProductID != 3 {
		t.Errorf("expected product 3, got %d", recs[0].ProductID)
	}
	if !almostEqual(recs[0].Score, 1.0) {
		t.Errorf("expected score 1.0, got %f", recs[0].Score)
	}
	if !almostEqual(recs[0].Confidence, collaborativeConfidence) {
		t.Errorf("expected confidence %f, got %f", collaborativeConfidence, recs[0].Confidence)
	}
	if recs[0].Type != domain.TypePersonalized {
		t.Errorf("expected personalized tag, got %s", recs[0].Type)
	}
	if recs[0].Reason != "Bought by 100% of shoppers with similar purchases" {
		t.Errorf("unexpected reason: %q", recs[0].Reason)
	}
}

func TestCollaborativeHalfIsNotEnough(t *testing.T) {
	pool := []domain.Product{{ID: 3}}
	interactions := &fakeInteractions{
		purchases: map[int64][]domain.InteractionRecord{
			7: purchaseRecords(7, 1),
		},
		sets: map[int64][]int64{
			8: {1, 3},
			9: {1, 4},
		},
	}
	eng := newTestEngine(&fakeCatalog{}, interactions, &fakeTrending{})

	recs := eng.scoreCollaborative(context.Background(), 7, pool)

	// Exactly half the similar users bought product 3; the keep rule is
	// strictly greater than 0.5.
	if len(recs) != 0 {
		t.Errorf("expected no recommendations at score 0.5, got %d", len(recs))
	}
}

func TestCollaborativeZeroSimilarUsers(t *testing.T) {
	pool := []domain.Product{{ID: 3}}
	interactions := &fakeInteractions{
		purchases: map[int64][]domain.InteractionRecord{
			7: purchaseRecords(7, 1),
		},
		sets: map[int64][]int64{
			8: {100, 101, 102},
		},
	}
	eng := newTestEngine(&fakeCatalog{}, interactions, &fakeTrending{})

	recs := eng.scoreCollaborative(context.Background(), 7, pool)

	if len(recs) != 0 {
		t.Errorf("expected empty list with zero similar users, got %d", len(recs))
	}
}

func TestCollaborativeNoHistory(t *testing.T) {
	eng := newTestEngine(&fakeCatalog{}, &fakeInteractions{}, &fakeTrending{})

	recs := eng.scoreCollaborative(context.Background(), 7, []domain.Product{{ID: 1}})

	if len(recs) != 0 {
		t.Errorf("expected empty list without purchase history, got %d", len(recs))
	}
}

func TestJaccard(t *testing.T) {
	owned := map[int64]bool{1: true, 2: true}
	cases := []struct {
		other []int64
		want  float64
	}{
		{[]int64{1, 2}, 1.0},
		{[]int64{1, 3}, 1.0 / 3.0},
		{[]int64{3, 4}, 0},
		{[]int64{1, 1, 2, 2}, 1.0}, // duplicates collapse
		{nil, 0},
	}
	for _, tc := range cases {
		if got := jaccard(owned, tc.other); !almostEqual(got, tc.want) {
			t.Errorf("jaccard(%v) = %f, want %f", tc.other, got, tc.want)
		}
	}
}
