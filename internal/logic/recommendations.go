package logic

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fplcentral/analytics-api/internal/models"
	"github.com/fplcentral/analytics-api/internal/source"
)

const shortlistCap = 5

type recommendationService struct {
	logger     *zap.SugaredLogger
	prediction PredictionService
	risk       RiskService
}

func NewRecommendationService(logger *zap.Logger, prediction PredictionService, risk RiskService) RecommendationService {
	return &recommendationService{
		logger:     logger.Sugar(),
		prediction: prediction,
		risk:       risk,
	}
}

func (s *recommendationService) GenerateRecommendations(ctx context.Context, snap *source.Snapshot, teams map[int]models.TeamSnapshot, cfg models.RecommendationConfig) (*models.RecommendationReport, error) {
	cfg.AnalysisConfig = cfg.AnalysisConfig.Normalize()

	report := &models.RecommendationReport{
		RunID:           uuid.NewString(),
		GeneratedAt:     time.Now().UTC(),
		CurrentRound:    snap.CurrentRound,
		RiskTolerance:   cfg.RiskTolerance,
		Recommendations: []models.Recommendation{},
	}

	candidates := filterCandidates(snap, cfg)
	if len(candidates) == 0 {
		report.Insights.Notes = append(report.Insights.Notes, "no competitors matched the requested filters")
		return report, nil
	}

	recs := make([]models.Recommendation, len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(batchParallelism)
	for i, c := range candidates {
		g.Go(func() error {
			outlook, err := s.prediction.PredictCompetitor(gctx, snap, teams, c.ID, cfg.AnalysisConfig)
			if err != nil {
				return err
			}
			profile, err := s.risk.AssessCompetitor(gctx, snap, c.ID)
			if err != nil {
				return err
			}
			recs[i] = buildRecommendation(snap, c, outlook, profile, cfg)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("candidate analysis: %w", err)
	}

	sort.Slice(recs, func(i, j int) bool {
		ri, rj := actionRank(recs[i].Action), actionRank(recs[j].Action)
		if ri != rj {
			return ri < rj
		}
		return recs[i].AverageExpected > recs[j].AverageExpected
	})

	report.Recommendations = recs
	report.Shortlists = buildShortlists(recs, cfg)
	report.Insights = buildInsights(recs, snap, cfg)

	s.logger.Infow("Recommendation run complete",
		"runId", report.RunID,
		"candidates", len(candidates),
		"tolerance", cfg.RiskTolerance,
	)

	return report, nil
}

func filterCandidates(snap *source.Snapshot, cfg models.RecommendationConfig) []*models.Competitor {
	positions := make(map[models.Position]bool, len(cfg.Positions))
	for _, p := range cfg.Positions {
		positions[p] = true
	}
	excluded := make(map[int]bool, len(cfg.ExcludeIDs))
	for _, id := range cfg.ExcludeIDs {
		excluded[id] = true
	}

	var out []*models.Competitor
	for i := range snap.Competitors {
		c := &snap.Competitors[i]
		if excluded[c.ID] {
			continue
		}
		if len(positions) > 0 && !positions[c.Position] {
			continue
		}
		if cfg.MinPrice > 0 && c.Price < cfg.MinPrice {
			continue
		}
		if cfg.MaxPrice > 0 && c.Price > cfg.MaxPrice {
			continue
		}
		if !cfg.IncludeUnavailable && c.Status != models.StatusAvailable {
			continue
		}
		out = append(out, c)
	}
	return out
}

func buildRecommendation(snap *source.Snapshot, c *models.Competitor, outlook *models.CompetitorOutlook, profile *models.RiskProfile, cfg models.RecommendationConfig) models.Recommendation {
	suitabilities := map[models.RiskTolerance]float64{
		models.ToleranceConservative: SuitabilityScore(models.ToleranceConservative, profile, outlook.AverageExpected, c.OwnershipPct),
		models.ToleranceBalanced:     SuitabilityScore(models.ToleranceBalanced, profile, outlook.AverageExpected, c.OwnershipPct),
		models.ToleranceAggressive:   SuitabilityScore(models.ToleranceAggressive, profile, outlook.AverageExpected, c.OwnershipPct),
	}

	rec := models.Recommendation{
		CompetitorID:      c.ID,
		Name:              c.Name,
		Team:              snap.TeamName(c.TeamID),
		Position:          c.Position,
		Price:             c.Price,
		OwnershipPct:      c.OwnershipPct,
		Confidence:        outlook.Confidence,
		AverageExpected:   outlook.AverageExpected,
		TotalExpected:     outlook.TotalExpectedPoints,
		CeilingProjection: ceilingProjection(outlook),
		OverallRisk:       profile.Overall,
		Suitability:       suitabilities[cfg.RiskTolerance],
		SuitabilityScores: suitabilities,
	}
	rec.Action, rec.Priority = classify(rec.AverageExpected, rec.Confidence, rec.Suitability, rec.OverallRisk)
	rec.Reasoning = reasoning(rec, outlook, profile)
	return rec
}

// classify places a competitor in exactly one action bucket using the
// fixed threshold table.
func classify(avgExpected, confidence, suitability, overallRisk float64) (models.Action, models.Priority) {
	switch {
	case avgExpected >= 6.0 && confidence >= 0.70:
		return models.ActionStrongBuy, models.PriorityHigh
	case avgExpected >= 4.5 && confidence >= 0.60 && suitability >= 60:
		if avgExpected >= 5.5 {
			return models.ActionBuy, models.PriorityHigh
		}
		return models.ActionBuy, models.PriorityMedium
	case avgExpected >= 3.5 && confidence >= 0.55 && suitability >= 45:
		return models.ActionConsider, models.PriorityMedium
	case avgExpected >= 3.0 && overallRisk <= 60:
		return models.ActionHold, models.PriorityLow
	default:
		return models.ActionAvoid, models.PriorityLow
	}
}

// ceilingProjection is the optimistic view: the best single round scaled
// up by 20%.
func ceilingProjection(outlook *models.CompetitorOutlook) float64 {
	var best float64
	for _, r := range outlook.Rounds {
		if r.PredictedPoints > best {
			best = r.PredictedPoints
		}
	}
	return best * 1.2
}

func reasoning(rec models.Recommendation, outlook *models.CompetitorOutlook, profile *models.RiskProfile) []string {
	reasons := []string{
		fmt.Sprintf("averaging %.1f expected points per round over the horizon", rec.AverageExpected),
	}
	switch outlook.Trend {
	case models.TrendRising:
		reasons = append(reasons, "fixture run improves through the horizon")
	case models.TrendDeclining:
		reasons = append(reasons, "fixture run gets harder through the horizon")
	}
	if rec.OverallRisk >= 70 {
		reasons = append(reasons, fmt.Sprintf("elevated overall risk (%.0f/100), sell/avoid territory", rec.OverallRisk))
	}
	for _, concern := range profile.PrimaryConcerns {
		reasons = append(reasons, concern)
	}
	if profile.StartingXIStatus == models.XINailed {
		reasons = append(reasons, "nailed starter")
	}
	if rec.OwnershipPct < 10 && rec.AverageExpected >= 3.5 {
		reasons = append(reasons, fmt.Sprintf("differential at %.1f%% ownership", rec.OwnershipPct))
	}
	return reasons
}

func actionRank(a models.Action) int {
	switch a {
	case models.ActionStrongBuy:
		return 0
	case models.ActionBuy:
		return 1
	case models.ActionConsider:
		return 2
	case models.ActionHold:
		return 3
	default:
		return 4
	}
}

func isEligible(r models.Recommendation) bool {
	return r.Action == models.ActionStrongBuy || r.Action == models.ActionBuy
}

func buildShortlists(recs []models.Recommendation, cfg models.RecommendationConfig) models.Shortlists {
	var eligible []models.Recommendation
	for _, r := range recs {
		if isEligible(r) {
			eligible = append(eligible, r)
		}
	}

	lists := models.Shortlists{}

	lists.MostReliable = topN(filterRecs(eligible, func(r models.Recommendation) bool {
		return r.Confidence*100 >= 70 && r.OverallRisk <= 40
	}), func(a, b models.Recommendation) bool {
		return a.Confidence > b.Confidence
	})

	lists.BestValue = topN(filterRecs(eligible, func(r models.Recommendation) bool {
		return cfg.PriceCeiling <= 0 || r.Price <= cfg.PriceCeiling
	}), func(a, b models.Recommendation) bool {
		return valuePerPrice(a) > valuePerPrice(b)
	})

	lists.HighestCeiling = topN(eligible, func(a, b models.Recommendation) bool {
		return a.CeilingProjection > b.CeilingProjection
	})

	lists.Safest = topN(filterRecs(eligible, func(r models.Recommendation) bool {
		return r.OverallRisk <= 30 && r.Confidence >= 0.7
	}), func(a, b models.Recommendation) bool {
		return a.OverallRisk < b.OverallRisk
	})

	lists.Differentials = topN(filterRecs(eligible, func(r models.Recommendation) bool {
		return r.OwnershipPct < 10 && r.AverageExpected >= 3.5
	}), func(a, b models.Recommendation) bool {
		return a.OwnershipPct < b.OwnershipPct
	})

	return lists
}

func valuePerPrice(r models.Recommendation) float64 {
	if r.Price <= 0 {
		return 0
	}
	return r.TotalExpected / r.Price
}

func filterRecs(recs []models.Recommendation, keep func(models.Recommendation) bool) []models.Recommendation {
	var out []models.Recommendation
	for _, r := range recs {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

func topN(recs []models.Recommendation, less func(a, b models.Recommendation) bool) []models.Recommendation {
	sorted := make([]models.Recommendation, len(recs))
	copy(sorted, recs)
	sort.Slice(sorted, func(i, j int) bool { return less(sorted[i], sorted[j]) })
	if len(sorted) > shortlistCap {
		sorted = sorted[:shortlistCap]
	}
	return sorted
}

func buildInsights(recs []models.Recommendation, snap *source.Snapshot, cfg models.RecommendationConfig) models.ReportInsights {
	insights := models.ReportInsights{
		TotalPlayersAnalyzed: len(recs),
	}
	if len(recs) == 0 {
		return insights
	}

	var confSum float64
	var highRisk, lowConfidence int
	for _, r := range recs {
		confSum += r.Confidence
		if r.OverallRisk >= 60 {
			highRisk++
		}
		if r.Confidence < 0.5 {
			lowConfidence++
		}
	}
	insights.AverageConfidence = confSum / float64(len(recs))

	for i := range recs {
		if isEligible(recs[i]) {
			pick := recs[i]
			insights.TopPick = &pick
			break // recs are sorted best-first
		}
	}

	if float64(highRisk)/float64(len(recs)) > 0.30 {
		insights.RiskWarnings = append(insights.RiskWarnings,
			fmt.Sprintf("%d of %d analyzed competitors carry high overall risk", highRisk, len(recs)))
	}
	if float64(lowConfidence)/float64(len(recs)) > 0.20 {
		insights.RiskWarnings = append(insights.RiskWarnings,
			fmt.Sprintf("%d of %d predictions are low-confidence; treat rankings with caution", lowConfidence, len(recs)))
	}

	insights.Notes = append(insights.Notes,
		fmt.Sprintf("analysis covers rounds %d-%d", snap.CurrentRound+1, snap.CurrentRound+cfg.PredictionHorizon))

	return insights
}
