package logic

import (
	"context"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fplcentral/analytics-api/internal/models"
	"github.com/fplcentral/analytics-api/internal/source"
	"github.com/fplcentral/analytics-api/internal/store"
)

// Primary-concern alert thresholds per dimension.
const (
	rotationAlertThreshold   = 60.0
	injuryAlertThreshold     = 60.0
	priceAlertThreshold      = 70.0
	volatilityAlertThreshold = 65.0
)

type riskService struct {
	logger *zap.SugaredLogger
	sink   RiskSink
}

// NewRiskService builds the risk engine. sink may be nil to disable audit
// persistence.
func NewRiskService(logger *zap.Logger, sink RiskSink) RiskService {
	return &riskService{logger: logger.Sugar(), sink: sink}
}

func (s *riskService) AssessCompetitor(ctx context.Context, snap *source.Snapshot, competitorID int) (*models.RiskProfile, error) {
	c := snap.Competitor(competitorID)
	if c == nil {
		return nil, nil
	}

	rotation, xiStatus := rotationRisk(c, snap)
	injury := injuryRisk(c, snap.RoundsElapsed())
	price := priceChangeRisk(c)
	volatility := formVolatilityRisk(c)

	profile := &models.RiskProfile{
		CompetitorID:     c.ID,
		Name:             c.Name,
		Rotation:         rotation,
		Injury:           injury,
		PriceChange:      price,
		FormVolatility:   volatility,
		StartingXIStatus: xiStatus,
	}
	profile.Overall = clamp(
		rotation.Score*models.WeightRotation+
			injury.Score*models.WeightInjury+
			price.Score*models.WeightPriceChange+
			volatility.Score*models.WeightFormVolatility,
		0, 100)
	profile.PrimaryConcerns = primaryConcerns(profile)

	if s.sink != nil {
		s.sink.EnqueueRiskProfile(store.RiskRecord{
			CompetitorID:     c.ID,
			Rotation:         rotation.Score,
			Injury:           injury.Score,
			PriceChange:      price.Score,
			FormVolatility:   volatility.Score,
			Overall:          profile.Overall,
			StartingXIStatus: string(xiStatus),
			PrimaryConcerns:  profile.PrimaryConcerns,
			UpdatedAt:        time.Now().UTC(),
		})
	}

	return profile, nil
}

func primaryConcerns(p *models.RiskProfile) []string {
	var concerns []string
	if p.Rotation.Score > rotationAlertThreshold {
		concerns = append(concerns, "heavy rotation risk")
	}
	if p.Injury.Score > injuryAlertThreshold {
		concerns = append(concerns, "injury doubt")
	}
	if p.PriceChange.Score > priceAlertThreshold {
		concerns = append(concerns, "price fall likely")
	}
	if p.FormVolatility.Score > volatilityAlertThreshold {
		concerns = append(concerns, "boom-or-bust returns")
	}
	return concerns
}

// rotationRisk scores how likely the competitor is to drop out of the
// starting lineup, and classifies the starting-XI status from the same
// inputs.
func rotationRisk(c *models.Competitor, snap *source.Snapshot) (models.RiskDimension, models.StartingXIStatus) {
	avgMinutes := 0.0
	if c.Appearances > 0 {
		avgMinutes = float64(c.Minutes) / float64(c.Appearances)
	}

	var consistency float64
	switch {
	case avgMinutes >= 85:
		consistency = 90
	case avgMinutes >= 70:
		consistency = 75
	case avgMinutes >= 60:
		consistency = 50
	case avgMinutes >= 30:
		consistency = 25
	default:
		consistency = 10
	}

	competition := squadCompetition(c, snap)

	startRate := float64(c.Starts) / float64(snap.RoundsElapsed())
	var trust float64
	switch {
	case startRate < 0.5:
		trust = 30
	case startRate < 0.7:
		trust = 60
	case startRate < 0.9:
		trust = 80
	default:
		trust = 95
	}

	score := clamp((100-consistency)+competition*0.3-(trust-50)*0.4, 0, 100)

	var xi models.StartingXIStatus
	switch {
	case startRate >= 0.9 && avgMinutes >= 85:
		xi = models.XINailed
	case startRate >= 0.7:
		xi = models.XIRegular
	case startRate >= 0.45:
		xi = models.XIRotation
	default:
		xi = models.XIBench
	}

	return models.RiskDimension{
		Score:      score,
		Confidence: clamp(dimensionConfidence(c)+bonusIf(c.Starts > 0, 0.05), 0, 1),
		Factors: []models.RiskFactor{
			{Label: "minutes_consistency", Value: consistency},
			{Label: "squad_competition", Value: competition},
			{Label: "manager_trust", Value: trust},
		},
	}, xi
}

// squadCompetition measures how contested the competitor's slot is: the
// closer the top-2 same-position teammates are on season points, the
// hotter the competition.
func squadCompetition(c *models.Competitor, snap *source.Snapshot) float64 {
	var rivals []int
	for i := range snap.Competitors {
		other := &snap.Competitors[i]
		if other.TeamID == c.TeamID && other.Position == c.Position {
			rivals = append(rivals, other.TotalPoints)
		}
	}
	if len(rivals) < 2 {
		return 0
	}
	sort.Sort(sort.Reverse(sort.IntSlice(rivals)))
	gap := float64(rivals[0] - rivals[1])
	return clamp(90-gap*1.5, 0, 90)
}

// injuryRisk blends age, current availability status and missed games,
// with a bump for injury language in the status note.
func injuryRisk(c *models.Competitor, roundsElapsed int) models.RiskDimension {
	age := c.Age
	if age == 0 {
		age = 26 // feed omits birth date for some players; stay neutral
	}
	var ageRisk float64
	switch {
	case age > 33:
		ageRisk = 30
	case age > 30:
		ageRisk = 20
	case age < 23:
		ageRisk = 15
	default:
		ageRisk = 10
	}

	var statusRisk float64
	switch c.Status {
	case models.StatusInjured:
		statusRisk = 80
	case models.StatusDoubtful:
		statusRisk = 60
	case models.StatusSuspended:
		statusRisk = 40
	default:
		if c.ChanceOfPlay != nil && *c.ChanceOfPlay < 75 {
			statusRisk = 30
		}
	}

	startRate := float64(c.Starts) / float64(roundsElapsed)
	var missedRisk float64
	switch {
	case startRate < 0.5:
		missedRisk = 40
	case startRate < 0.7:
		missedRisk = 25
	case startRate < 0.9:
		missedRisk = 10
	}

	newsBump := newsRisk(c.News)

	score := clamp((ageRisk+statusRisk+missedRisk)/3.0*2.0+newsBump, 0, 100)

	return models.RiskDimension{
		Score:      score,
		Confidence: clamp(dimensionConfidence(c)+bonusIf(c.ChanceOfPlay != nil, 0.05), 0, 1),
		Factors: []models.RiskFactor{
			{Label: "age", Value: ageRisk},
			{Label: "availability_status", Value: statusRisk},
			{Label: "missed_games", Value: missedRisk},
			{Label: "status_note", Value: newsBump},
		},
	}
}

func newsRisk(news string) float64 {
	if news == "" {
		return 0
	}
	lower := strings.ToLower(news)
	if strings.Contains(lower, "injur") {
		return 20
	}
	for _, word := range []string{"doubt", "knock", "strain", "illness", "knee", "hamstring"} {
		if strings.Contains(lower, word) {
			return 15
		}
	}
	return 0
}

// priceChangeRisk estimates near-term price fall risk from transfer
// momentum, ownership level, points-per-price value and recent form.
func priceChangeRisk(c *models.Competitor) models.RiskDimension {
	momentum := 50.0
	switch {
	case c.NetTransfers < -200000 && c.OwnershipPct > 2:
		momentum = 85
	case c.NetTransfers < -100000 && c.OwnershipPct > 2:
		momentum = 70
	case c.NetTransfers < -50000:
		momentum = 55
	case c.NetTransfers > 150000:
		momentum = 30
	case c.NetTransfers > 50000:
		momentum = 40
	}

	var ownershipBias float64
	if c.OwnershipPct > 20 {
		ownershipBias = 15 // heavily owned players move on smaller swings
	} else if c.OwnershipPct < 2 {
		ownershipBias = -10
	}

	var valueAdj float64
	if c.Price > 0 {
		value := float64(c.TotalPoints) / c.Price
		if value < 5 {
			valueAdj = 20
		} else if value > 12 {
			valueAdj = -15
		}
	}

	var formAdj float64
	if c.PointsPerGame > 0 && c.Form < c.PointsPerGame*0.75 {
		formAdj = 10
	}

	score := clamp(momentum+ownershipBias+valueAdj+formAdj, 0, 100)

	return models.RiskDimension{
		Score:      score,
		Confidence: clamp(dimensionConfidence(c)+bonusIf(c.OwnershipPct > 1, 0.05), 0, 1),
		Factors: []models.RiskFactor{
			{Label: "transfer_momentum", Value: momentum},
			{Label: "ownership_bias", Value: ownershipBias},
			{Label: "value_adjustment", Value: valueAdj},
			{Label: "form_adjustment", Value: formAdj},
		},
	}
}

// formVolatilityRisk uses bonus-per-start as the boom/bust signal with
// positional consistency priors.
func formVolatilityRisk(c *models.Competitor) models.RiskDimension {
	score := 25.0
	bonusPerStart := 0.0
	if c.Starts > 0 {
		bonusPerStart = float64(c.Bonus) / float64(c.Starts)
		switch {
		case bonusPerStart > 1.0:
			score = 80
		case bonusPerStart > 0.6:
			score = 65
		case bonusPerStart > 0.3:
			score = 45
		}
		// Dangerous but inconsistent profile: high underlying numbers
		// alongside bursty bonus returns.
		if c.ThreatIndex > 60 && c.CreativityIdx > 60 && bonusPerStart > 0.6 {
			score += 15
		}
	}

	switch c.Position {
	case models.PositionForward:
		score += 5
	case models.PositionGoalkeeper:
		score -= 10
	}

	return models.RiskDimension{
		Score:      clamp(score, 0, 100),
		Confidence: clamp(dimensionConfidence(c)+bonusIf(c.Starts > 5, 0.05), 0, 1),
		Factors: []models.RiskFactor{
			{Label: "bonus_per_start", Value: bonusPerStart},
			{Label: "threat_index", Value: c.ThreatIndex},
			{Label: "creativity_index", Value: c.CreativityIdx},
		},
	}
}

// dimensionConfidence is the shared sample-size base for all four
// dimension confidences.
func dimensionConfidence(c *models.Competitor) float64 {
	conf := 0.7
	if c.Appearances > 10 {
		conf += 0.15
	} else if c.Appearances > 5 {
		conf += 0.1
	}
	if c.Appearances > 0 && float64(c.Minutes)/float64(c.Appearances) > 70 {
		conf += 0.1
	}
	return conf
}

func bonusIf(cond bool, bonus float64) float64 {
	if cond {
		return bonus
	}
	return 0
}

// SuitabilityScore measures how well a competitor's risk/reward profile
// matches a risk-tolerance tier, 0-100. Conservative punishes risk,
// aggressive rewards upside.
func SuitabilityScore(tolerance models.RiskTolerance, p *models.RiskProfile, avgExpected, ownershipPct float64) float64 {
	var score float64
	switch tolerance {
	case models.ToleranceConservative:
		score = 100 - p.Overall
		if p.Rotation.Score > 25 {
			score -= (p.Rotation.Score - 25) * 0.6
		}
		if p.Injury.Score > 30 {
			score -= (p.Injury.Score - 30) * 0.6
		}
	case models.ToleranceAggressive:
		score = 40
		if avgExpected >= 4.0 {
			score += 30
		}
		if p.FormVolatility.Score >= 65 {
			score += 20
		}
		if ownershipPct < 10 {
			score += 20
		}
	default: // balanced
		score = 85 - p.Overall*0.6
		if avgExpected >= 3.5 {
			score += 10
		} else {
			score -= 15
		}
	}
	return clamp(score, 0, 100)
}
