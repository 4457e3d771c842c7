package logic

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fplcentral/analytics-api/internal/models"
	"github.com/fplcentral/analytics-api/internal/source"
	"github.com/fplcentral/analytics-api/internal/store"
)

// batchParallelism bounds concurrent per-competitor work. Stages are pure
// over the shared snapshot, so competitors are independent.
const batchParallelism = 8

type predictionService struct {
	logger *zap.SugaredLogger
	sink   PredictionSink
}

// NewPredictionService builds the prediction engine. sink may be nil to
// disable audit persistence.
func NewPredictionService(logger *zap.Logger, sink PredictionSink) PredictionService {
	return &predictionService{logger: logger.Sugar(), sink: sink}
}

func (s *predictionService) PredictCompetitor(ctx context.Context, snap *source.Snapshot, teams map[int]models.TeamSnapshot, competitorID int, cfg models.AnalysisConfig) (*models.CompetitorOutlook, error) {
	cfg = cfg.Normalize()

	c := snap.Competitor(competitorID)
	if c == nil {
		return nil, nil
	}

	teamSnap, ok := teams[c.TeamID]
	if !ok {
		// Degraded data: team missing from analytics, use the fair rating.
		teamSnap = FairTeamSnapshot(c.TeamID)
	}

	rounds := make([]models.RoundPrediction, 0, cfg.PredictionHorizon)
	for round := snap.CurrentRound + 1; round <= snap.CurrentRound+cfg.PredictionHorizon; round++ {
		rounds = append(rounds, predictRound(snap, teams, c, teamSnap, round, cfg))
	}

	outlook := aggregateOutlook(c, rounds)

	if s.sink != nil {
		s.sink.EnqueuePredictions(auditRecords(c, rounds, cfg))
	}

	return outlook, nil
}

func (s *predictionService) PredictMany(ctx context.Context, snap *source.Snapshot, teams map[int]models.TeamSnapshot, competitorIDs []int, cfg models.AnalysisConfig) ([]models.CompetitorOutlook, []int, error) {
	cfg = cfg.Normalize()

	results := make([]*models.CompetitorOutlook, len(competitorIDs))
	var mu sync.Mutex
	var unknown []int

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(batchParallelism)
	for i, id := range competitorIDs {
		g.Go(func() error {
			outlook, err := s.PredictCompetitor(gctx, snap, teams, id, cfg)
			if err != nil {
				return err
			}
			if outlook == nil {
				mu.Lock()
				unknown = append(unknown, id)
				mu.Unlock()
				return nil
			}
			results[i] = outlook
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	outlooks := make([]models.CompetitorOutlook, 0, len(results))
	for _, r := range results {
		if r != nil {
			outlooks = append(outlooks, *r)
		}
	}
	sort.Slice(outlooks, func(i, j int) bool {
		if outlooks[i].TotalExpectedPoints != outlooks[j].TotalExpectedPoints {
			return outlooks[i].TotalExpectedPoints > outlooks[j].TotalExpectedPoints
		}
		return outlooks[i].CompetitorID < outlooks[j].CompetitorID
	})
	sort.Ints(unknown)

	return outlooks, unknown, nil
}

// predictRound runs the per-round factor pipeline: base estimate, then
// multiplicative form, fixture, team-form and risk-damping adjustments,
// then the tolerance multiplier last.
func predictRound(snap *source.Snapshot, teams map[int]models.TeamSnapshot, c *models.Competitor, teamSnap models.TeamSnapshot, round int, cfg models.AnalysisConfig) models.RoundPrediction {
	fx := snap.TeamFixture(c.TeamID, round)
	if fx == nil {
		// Blank round: nothing to play, zero points with full certainty.
		return models.RoundPrediction{Round: round, PredictedPoints: 0, Confidence: 1.0}
	}

	base := c.PointsPerGame*0.6 + c.Form*0.4

	formMult := formAdjustment(c)

	opponentID, isHome, difficulty := fx.SideFor(c.TeamID)
	oppSnap, ok := teams[opponentID]
	if !ok {
		oppSnap = FairTeamSnapshot(opponentID)
	}
	fixtureMult := fixtureAdjustment(c.Position, difficulty, isHome, teamSnap, oppSnap)

	teamFormMult := 0.85 + teamSnap.Form*0.3

	// Risk damping from the risk scorers, expressed as 0-1 fractions.
	// The scorers are pure snapshot functions, so these match the risk
	// engine's latest values exactly.
	rotationDim, _ := rotationRisk(c, snap)
	injuryDim := injuryRisk(c, snap.RoundsElapsed())
	injuryMult := 1.0 - (injuryDim.Score/100.0)*0.5
	rotationMult := 1.0 - (rotationDim.Score/100.0)*0.3

	points := base * formMult * fixtureMult * teamFormMult * injuryMult * rotationMult
	if cfg.DoubleRounds[round] {
		points *= models.DoubleRoundMultiplier
	}
	points *= cfg.RiskTolerance.Multiplier()
	if points < 0 {
		points = 0
	}

	return models.RoundPrediction{
		Round:           round,
		PredictedPoints: points,
		Confidence:      roundConfidence(c, teamSnap, fx, snap),
		Breakdown: models.PredictionBreakdown{
			Base:        base,
			FormAdj:     pctDelta(formMult),
			FixtureAdj:  pctDelta(fixtureMult),
			TeamFormAdj: pctDelta(teamFormMult),
			InjuryAdj:   pctDelta(injuryMult),
			RotationAdj: pctDelta(rotationMult),
		},
		Fixture: &models.FixtureContext{
			OpponentID: opponentID,
			Opponent:   snap.TeamName(opponentID),
			IsHome:     isHome,
			Difficulty: difficulty,
		},
	}
}

// formAdjustment applies regression toward expected output plus the
// hot/cold streak multiplier. Clamped to [0.6, 1.5].
func formAdjustment(c *models.Competitor) float64 {
	m := 1.0

	if c.ExpectedGoals > 0 {
		ratio := float64(c.Goals) / c.ExpectedGoals
		if ratio < 0.8 {
			m += 0.15 // underperforming xG, due a correction upward
		} else if ratio > 1.3 {
			m -= 0.10
		}
	}
	if c.ExpectedAssists > 0 {
		ratio := float64(c.Assists) / c.ExpectedAssists
		if ratio < 0.8 {
			m += 0.10
		} else if ratio > 1.3 {
			m -= 0.08
		}
	}

	if c.PointsPerGame > 0 {
		streak := c.Form / c.PointsPerGame
		if streak >= 1.2 {
			m *= 1.10
		} else if streak <= 0.7 {
			m *= 0.90
		}
	}

	return clamp(m, 0.6, 1.5)
}

// fixtureAdjustment converts the difficulty rating into a multiplier,
// applies home advantage, widens the swing for defenders (whose returns
// are fixture-dependent) and dampens it for forwards, then scales by the
// attack-vs-defense strength gap. Clamped to [0.4, 1.8].
func fixtureAdjustment(pos models.Position, difficulty int, isHome bool, own, opponent models.TeamSnapshot) float64 {
	m := (6.0 - float64(difficulty)) / 4.0
	if isHome {
		m *= 1.08
	} else {
		m *= 0.96
	}

	switch pos {
	case models.PositionDefender:
		m = 0.7 + (m-0.7)*1.3
	case models.PositionForward:
		m = 0.85 + (m-0.85)*0.8
	}

	// Positive when our attack is strong and the opponent leaks goals.
	strengthDiff := (own.Attack+opponent.Defense)/2.0 - fairRating
	m *= 1.0 + strengthDiff*0.1

	return clamp(m, 0.4, 1.8)
}

func roundConfidence(c *models.Competitor, teamSnap models.TeamSnapshot, fx *models.Fixture, snap *source.Snapshot) float64 {
	conf := 0.6
	elapsed := float64(snap.RoundsElapsed())

	if float64(c.Minutes)/(elapsed*90.0) > 0.8 {
		conf += 0.15
	}
	if float64(c.Starts)/elapsed > 0.8 {
		conf += 0.1
	}
	if teamSnap.Confidence > 0.8 {
		conf += 0.1
	}
	if fx.HomeDifficulty > 0 && fx.AwayDifficulty > 0 {
		conf += 0.05
	}
	if c.Status != models.StatusAvailable {
		conf -= 0.15
	}
	if c.OwnershipPct < 5 {
		conf -= 0.05
	}

	return clamp(conf, 0.1, 1.0)
}

func aggregateOutlook(c *models.Competitor, rounds []models.RoundPrediction) *models.CompetitorOutlook {
	outlook := &models.CompetitorOutlook{
		CompetitorID: c.ID,
		Name:         c.Name,
		Position:     c.Position,
		TeamID:       c.TeamID,
		Rounds:       rounds,
	}

	var confSum float64
	for _, r := range rounds {
		outlook.TotalExpectedPoints += r.PredictedPoints
		confSum += r.Confidence
	}
	if len(rounds) > 0 {
		outlook.AverageExpected = outlook.TotalExpectedPoints / float64(len(rounds))
		outlook.Confidence = confSum / float64(len(rounds))
	}
	outlook.Trend = horizonTrend(rounds)

	return outlook
}

// horizonTrend compares the first half of the horizon to the second; a
// swing beyond half a point per round either way breaks "stable".
func horizonTrend(rounds []models.RoundPrediction) string {
	if len(rounds) < 2 {
		return models.TrendStable
	}
	mid := len(rounds) / 2
	firstMean := meanPoints(rounds[:mid])
	secondMean := meanPoints(rounds[mid:])

	delta := secondMean - firstMean
	switch {
	case delta > 0.5:
		return models.TrendRising
	case delta < -0.5:
		return models.TrendDeclining
	default:
		return models.TrendStable
	}
}

func meanPoints(rounds []models.RoundPrediction) float64 {
	if len(rounds) == 0 {
		return 0
	}
	var sum float64
	for _, r := range rounds {
		sum += r.PredictedPoints
	}
	return sum / float64(len(rounds))
}

func auditRecords(c *models.Competitor, rounds []models.RoundPrediction, cfg models.AnalysisConfig) []store.PredictionRecord {
	now := time.Now().UTC()
	records := make([]store.PredictionRecord, 0, len(rounds))
	for _, r := range rounds {
		rec := store.PredictionRecord{
			CompetitorID:    c.ID,
			Round:           r.Round,
			ModelVersion:    store.ModelVersion,
			PredictedPoints: r.PredictedPoints,
			Confidence:      r.Confidence,
			Blank:           r.Fixture == nil,
			RiskTolerance:   string(cfg.RiskTolerance),
			CreatedAt:       now,
		}
		if r.Fixture != nil {
			rec.OpponentID = r.Fixture.OpponentID
			rec.IsHome = r.Fixture.IsHome
			rec.Difficulty = r.Fixture.Difficulty
		}
		records = append(records, rec)
	}
	return records
}
