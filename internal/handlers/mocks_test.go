package handlers

import (
	"context"
	"time"

	"github.com/fplcentral/analytics-api/internal/models"
	"github.com/fplcentral/analytics-api/internal/source"
)

// MockProvider implements source.Provider for testing
type MockProvider struct {
	SnapshotFunc func(ctx context.Context) (*source.Snapshot, error)
}

func (m *MockProvider) Snapshot(ctx context.Context) (*source.Snapshot, error) {
	if m.SnapshotFunc != nil {
		return m.SnapshotFunc(ctx)
	}
	return testSnapshot(), nil
}

// MockPredictionService implements logic.PredictionService for testing
type MockPredictionService struct {
	PredictCompetitorFunc func(ctx context.Context, snap *source.Snapshot, teams map[int]models.TeamSnapshot, competitorID int, cfg models.AnalysisConfig) (*models.CompetitorOutlook, error)
	PredictManyFunc       func(ctx context.Context, snap *source.Snapshot, teams map[int]models.TeamSnapshot, competitorIDs []int, cfg models.AnalysisConfig) ([]models.CompetitorOutlook, []int, error)
}

func (m *MockPredictionService) PredictCompetitor(ctx context.Context, snap *source.Snapshot, teams map[int]models.TeamSnapshot, competitorID int, cfg models.AnalysisConfig) (*models.CompetitorOutlook, error) {
	if m.PredictCompetitorFunc != nil {
		return m.PredictCompetitorFunc(ctx, snap, teams, competitorID, cfg)
	}
	return nil, nil
}

func (m *MockPredictionService) PredictMany(ctx context.Context, snap *source.Snapshot, teams map[int]models.TeamSnapshot, competitorIDs []int, cfg models.AnalysisConfig) ([]models.CompetitorOutlook, []int, error) {
	if m.PredictManyFunc != nil {
		return m.PredictManyFunc(ctx, snap, teams, competitorIDs, cfg)
	}
	return nil, nil, nil
}

// MockRiskService implements logic.RiskService for testing
type MockRiskService struct {
	AssessCompetitorFunc func(ctx context.Context, snap *source.Snapshot, competitorID int) (*models.RiskProfile, error)
}

func (m *MockRiskService) AssessCompetitor(ctx context.Context, snap *source.Snapshot, competitorID int) (*models.RiskProfile, error) {
	if m.AssessCompetitorFunc != nil {
		return m.AssessCompetitorFunc(ctx, snap, competitorID)
	}
	return nil, nil
}

// MockRecommendationService implements logic.RecommendationService for testing
type MockRecommendationService struct {
	GenerateFunc func(ctx context.Context, snap *source.Snapshot, teams map[int]models.TeamSnapshot, cfg models.RecommendationConfig) (*models.RecommendationReport, error)
}

func (m *MockRecommendationService) GenerateRecommendations(ctx context.Context, snap *source.Snapshot, teams map[int]models.TeamSnapshot, cfg models.RecommendationConfig) (*models.RecommendationReport, error) {
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, snap, teams, cfg)
	}
	return &models.RecommendationReport{RunID: "test-run"}, nil
}

func testSnapshot() *source.Snapshot {
	return source.NewSnapshot(time.Now().UTC(), 10,
		[]models.Competitor{
			{ID: 1, Name: "Saka", TeamID: 1, Position: models.PositionMidfielder, Status: models.StatusAvailable},
		},
		[]models.Team{
			{ID: 1, Name: "Arsenal", ShortName: "ARS"},
			{ID: 2, Name: "Chelsea", ShortName: "CHE"},
		},
		[]models.Fixture{
			{ID: 1, Round: 11, HomeTeamID: 1, AwayTeamID: 2, HomeDifficulty: 2, AwayDifficulty: 4},
		})
}
