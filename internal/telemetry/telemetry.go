package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/agrimarket/recommendation-engine/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RunRecord is one recommendation run, kept for offline analysis.
type RunRecord struct {
	SessionID       string                         `json:"session_id"`
	UserID          int64                          `json:"user_id,omitempty"`
	Context         domain.RecommendationContext   `json:"context"`
	Recommendations []domain.ProductRecommendation `json:"recommendations"`
	GeneratedAt     time.Time                      `json:"generated_at"`
}

// Sink receives run records. Delivery is best-effort; callers swallow
// errors.
type Sink interface {
	Record(ctx context.Context, run RunRecord) error
}

// PostgresSink appends run records to the recommendation_runs table.
type PostgresSink struct {
	pool *pgxpool.Pool
}

func NewPostgresSink(pool *pgxpool.Pool) *PostgresSink {
	return &PostgresSink{pool: pool}
}

func (s *PostgresSink) Record(ctx context.Context, run RunRecord) error {
	contextJSON, err := json.Marshal(run.Context)
	if err != nil {
		return fmt.Errorf("marshal run context: %w", err)
	}
	recsJSON, err := json.Marshal(run.Recommendations)
	if err != nil {
		return fmt.Errorf("marshal run recommendations: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO recommendation_runs (session_id, user_id, context, recommendations, generated_at)
		VALUES ($1, $2, $3, $4, $5)`,
		run.SessionID, run.UserID, contextJSON, recsJSON, run.GeneratedAt,
	)
	if err != nil {
		return fmt.Errorf("insert recommendation run: %w", err)
	}
	return nil
}
