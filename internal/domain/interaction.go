package domain

import "time"

type InteractionKind string

const (
	InteractionView      InteractionKind = "view"
	InteractionAddToCart InteractionKind = "add_to_cart"
	InteractionPurchase  InteractionKind = "purchase"
)

// InteractionRecord is one append-only behavior event. UserID is 0 for
// anonymous sessions.
type InteractionRecord struct {
	UserID    int64           `json:"user_id,omitempty"`
	ProductID int64           `json:"product_id"`
	Kind      InteractionKind `json:"kind"`
	CreatedAt time.Time       `json:"created_at"`
}

// TrendingStat is the aggregate view/purchase counter for one product
// inside a trailing window.
type TrendingStat struct {
	ProductID     int64 `json:"product_id"`
	ViewCount     int   `json:"view_count"`
	PurchaseCount int   `json:"purchase_count"`
}
