package service

import (
	"context"
	"log"
	"time"

	"github.com/agrimarket/recommendation-engine/internal/domain"
	"github.com/agrimarket/recommendation-engine/internal/engine"
	"github.com/agrimarket/recommendation-engine/internal/telemetry"
)

const telemetryTimeout = 3 * time.Second

type Service struct {
	engine *engine.Engine
	sink   telemetry.Sink
}

func NewService(eng *engine.Engine, sink telemetry.Sink) *Service {
	return &Service{
		engine: eng,
		sink:   sink,
	}
}

// GetRecommendations runs the engine and logs the run to the telemetry
// sink. It never returns an error: a failed run comes back as a degraded
// empty result.
func (s *Service) GetRecommendations(ctx context.Context, rc domain.RecommendationContext) *domain.RecommendationResult {
	result := s.engine.Generate(ctx, rc)
	s.recordRun(rc, result)
	return result
}

// recordRun ships the run to the telemetry sink, fire-and-forget. The write
// is detached from the request context so a finished request does not
// cancel it; failures are swallowed and logged.
func (s *Service) recordRun(rc domain.RecommendationContext, result *domain.RecommendationResult) {
	run := telemetry.RunRecord{
		SessionID:       result.Metadata.SessionID,
		UserID:          rc.UserID,
		Context:         rc,
		Recommendations: result.Recommendations,
		GeneratedAt:     time.Now().UTC(),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), telemetryTimeout)
		defer cancel()
		if err := s.sink.Record(ctx, run); err != nil {
			log.Printf("[telemetry] record failed for session %s: %v", run.SessionID, err)
		}
	}()
}
