package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/agrimarket/recommendation-engine/internal/domain"
)

// ListInteractions returns a user's interactions of one kind, most recent
// first, bounded by limit.
func (r *Repository) ListInteractions(ctx context.Context, userID int64, kind domain.InteractionKind, limit int) ([]domain.InteractionRecord, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT user_id, product_id, kind, created_at
		FROM interactions
		WHERE user_id = $1 AND kind = $2
		ORDER BY created_at DESC
		LIMIT $3`,
		userID, kind, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query %s interactions for user %d: %w", kind, userID, err)
	}
	defer rows.Close()

	var items []domain.InteractionRecord
	for rows.Next() {
		var rec domain.InteractionRecord
		if err := rows.Scan(&rec.UserID, &rec.ProductID, &rec.Kind, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan interaction: %w", err)
		}
		items = append(items, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate over interactions: %w", err)
	}
	return items, nil
}

// PurchaseSets returns, for every user except excludeUserID, the distinct set
// of product ids that user purchased. Bounded by maxUsers most recently
// active purchasers.
func (r *Repository) PurchaseSets(ctx context.Context, excludeUserID int64, maxUsers int) (map[int64][]int64, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT user_id, array_agg(DISTINCT product_id)
		FROM interactions
		WHERE kind = 'purchase' AND user_id <> $1 AND user_id <> 0
		GROUP BY user_id
		ORDER BY max(created_at) DESC
		LIMIT $2`,
		excludeUserID, maxUsers,
	)
	if err != nil {
		return nil, fmt.Errorf("query purchase sets: %w", err)
	}
	defer rows.Close()

	sets := make(map[int64][]int64)
	for rows.Next() {
		var userID int64
		var productIDs []int64
		if err := rows.Scan(&userID, &productIDs); err != nil {
			return nil, fmt.Errorf("scan purchase set: %w", err)
		}
		sets[userID] = productIDs
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate over purchase sets: %w", err)
	}
	return sets, nil
}

// TrendingStats aggregates per-product view/purchase counters inside the
// trailing window, for products with at least one view.
func (r *Repository) TrendingStats(ctx context.Context, window time.Duration) ([]domain.TrendingStat, error) {
	since := time.Now().Add(-window)
	rows, err := r.pool.Query(ctx,
		`SELECT product_id,
			count(*) FILTER (WHERE kind = 'view') AS views,
			count(*) FILTER (WHERE kind = 'purchase') AS purchases
		FROM interactions
		WHERE created_at >= $1
		GROUP BY product_id
		HAVING count(*) FILTER (WHERE kind = 'view') > 0`,
		since,
	)
	if err != nil {
		return nil, fmt.Errorf("query trending stats: %w", err)
	}
	defer rows.Close()

	var stats []domain.TrendingStat
	for rows.Next() {
		var s domain.TrendingStat
		if err := rows.Scan(&s.ProductID, &s.ViewCount, &s.PurchaseCount); err != nil {
			return nil, fmt.Errorf("scan trending stat: %w", err)
		}
		stats = append(stats, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate over trending stats: %w", err)
	}
	return stats, nil
}
