package logic

import (
	"context"

	"github.com/fplcentral/analytics-api/internal/models"
	"github.com/fplcentral/analytics-api/internal/source"
	"github.com/fplcentral/analytics-api/internal/store"
)

// PredictionSink receives per-round prediction audit records. Implementations
// must not block the caller; delivery failures are the sink's concern and
// never surface to the engines.
type PredictionSink interface {
	EnqueuePredictions(records []store.PredictionRecord) bool
}

// RiskSink receives risk profile audit records under the same contract.
type RiskSink interface {
	EnqueueRiskProfile(rec store.RiskRecord) bool
}

// PredictionService forecasts fantasy points over the configured horizon.
// A nil outlook with nil error means the competitor id did not resolve
// against the snapshot; callers treat that as "cannot forecast".
type PredictionService interface {
	PredictCompetitor(ctx context.Context, snap *source.Snapshot, teams map[int]models.TeamSnapshot, competitorID int, cfg models.AnalysisConfig) (*models.CompetitorOutlook, error)
	PredictMany(ctx context.Context, snap *source.Snapshot, teams map[int]models.TeamSnapshot, competitorIDs []int, cfg models.AnalysisConfig) ([]models.CompetitorOutlook, []int, error)
}

// RiskService scores the four risk dimensions for a competitor. Risk scores
// are computed purely from snapshot data, never from prediction outputs.
// Same nil-on-unknown-id contract as PredictionService.
type RiskService interface {
	AssessCompetitor(ctx context.Context, snap *source.Snapshot, competitorID int) (*models.RiskProfile, error)
}

// RecommendationService fuses prediction and risk outputs into ranked,
// risk-tolerance-aware recommendations.
type RecommendationService interface {
	GenerateRecommendations(ctx context.Context, snap *source.Snapshot, teams map[int]models.TeamSnapshot, cfg models.RecommendationConfig) (*models.RecommendationReport, error)
}
