package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/agrimarket/recommendation-engine/internal/domain"
	"github.com/jackc/pgx/v5"
)

const productColumns = `id, name, category_id, brand, price, tags, specs, active, created_at`

// ListProducts returns active products matching the filter, bounded by limit.
func (r *Repository) ListProducts(ctx context.Context, filter domain.CandidateFilter, limit int) ([]domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE active`
	args := []any{}

	if filter.Category != "" {
		args = append(args, filter.Category)
		query += fmt.Sprintf(" AND category_id = $%d", len(args))
	}
	if filter.MinPrice > 0 {
		args = append(args, filter.MinPrice)
		query += fmt.Sprintf(" AND price >= $%d", len(args))
	}
	if filter.MaxPrice > 0 {
		args = append(args, filter.MaxPrice)
		query += fmt.Sprintf(" AND price <= $%d", len(args))
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	return scanProducts(rows)
}

// GetProductByID returns one product or domain.ErrProductNotFound.
func (r *Repository) GetProductByID(ctx context.Context, id int64) (*domain.Product, error) {
	p := &domain.Product{}
	err := r.pool.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1`, id,
	).Scan(&p.ID, &p.Name, &p.CategoryID, &p.Brand, &p.Price, &p.Tags, &p.Specs, &p.Active, &p.CreatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("query product id=%d: %w", id, err)
	}
	return p, nil
}

// GetProductsByIDs returns the products for the given ids; missing ids are
// silently dropped. Order of the result is not defined.
func (r *Repository) GetProductsByIDs(ctx context.Context, ids []int64) ([]domain.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = ANY($1)`, ids,
	)
	if err != nil {
		return nil, fmt.Errorf("query products by ids: %w", err)
	}
	defer rows.Close()

	return scanProducts(rows)
}

func scanProducts(rows pgx.Rows) ([]domain.Product, error) {
	var items []domain.Product
	for rows.Next() {
		var p domain.Product
		err := rows.Scan(&p.ID, &p.Name, &p.CategoryID, &p.Brand, &p.Price, &p.Tags, &p.Specs, &p.Active, &p.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		items = append(items, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate over products: %w", err)
	}
	return items, nil
}
