package models

// RiskTolerance scales predictions globally and drives recommendation
// suitability filtering.
type RiskTolerance string

const (
	ToleranceConservative RiskTolerance = "conservative"
	ToleranceBalanced     RiskTolerance = "balanced"
	ToleranceAggressive   RiskTolerance = "aggressive"
)

// Multiplier returns the global prediction scaling factor for the tolerance.
func (t RiskTolerance) Multiplier() float64 {
	switch t {
	case ToleranceConservative:
		return 0.85
	case ToleranceAggressive:
		return 1.15
	default:
		return 1.0
	}
}

// AnalysisConfig controls one pipeline run.
type AnalysisConfig struct {
	RiskTolerance     RiskTolerance `json:"risk_tolerance"`
	PredictionHorizon int           `json:"prediction_horizon"` // rounds ahead, 4-6
	MinConfidence     float64       `json:"min_confidence"`     // caller-side filter, not applied by the engines

	// DoubleRounds marks rounds the caller knows carry two fixtures for the
	// competitor's team. Applied as a flat multiplier when set.
	DoubleRounds map[int]bool `json:"double_rounds,omitempty"`
}

const (
	MinHorizon = 4
	MaxHorizon = 6

	// DoubleRoundMultiplier is applied to a round the caller flagged as double.
	DoubleRoundMultiplier = 1.8
)

// Normalize fills defaults and clamps the horizon into its allowed range.
func (c AnalysisConfig) Normalize() AnalysisConfig {
	if c.RiskTolerance == "" {
		c.RiskTolerance = ToleranceBalanced
	}
	if c.PredictionHorizon == 0 {
		c.PredictionHorizon = 5
	}
	if c.PredictionHorizon < MinHorizon {
		c.PredictionHorizon = MinHorizon
	}
	if c.PredictionHorizon > MaxHorizon {
		c.PredictionHorizon = MaxHorizon
	}
	return c
}

// FixtureContext describes the fixture a round prediction was made against.
type FixtureContext struct {
	OpponentID int    `json:"opponent_id"`
	Opponent   string `json:"opponent"`
	IsHome     bool   `json:"is_home"`
	Difficulty int    `json:"difficulty"`
}

// PredictionBreakdown exposes the multiplicative factors behind one round's
// estimate. Adjustment fields are percentage deltas from neutral (1.0).
type PredictionBreakdown struct {
	Base        float64 `json:"base"`
	FormAdj     float64 `json:"form_adj_pct"`
	FixtureAdj  float64 `json:"fixture_adj_pct"`
	TeamFormAdj float64 `json:"team_form_adj_pct"`
	InjuryAdj   float64 `json:"injury_adj_pct"`
	RotationAdj float64 `json:"rotation_adj_pct"`
}

// RoundPrediction is one competitor's forecast for one future round.
// A nil Fixture denotes a blank round: no fixture, zero points, full
// confidence.
type RoundPrediction struct {
	Round           int                 `json:"round"`
	PredictedPoints float64             `json:"predicted_points"`
	Confidence      float64             `json:"confidence"`
	Breakdown       PredictionBreakdown `json:"breakdown"`
	Fixture         *FixtureContext     `json:"fixture"`
}

// Trend labels for CompetitorOutlook.
const (
	TrendRising    = "rising"
	TrendStable    = "stable"
	TrendDeclining = "declining"
)

// CompetitorOutlook aggregates per-round predictions over the horizon.
type CompetitorOutlook struct {
	CompetitorID        int               `json:"competitor_id"`
	Name                string            `json:"name"`
	Position            Position          `json:"position"`
	TeamID              int               `json:"team_id"`
	Rounds              []RoundPrediction `json:"rounds"`
	TotalExpectedPoints float64           `json:"total_expected_points"`
	AverageExpected     float64           `json:"average_expected"`
	Confidence          float64           `json:"confidence"`
	Trend               string            `json:"trend"`
}
