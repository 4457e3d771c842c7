package models

import "time"

// Action is the recommendation bucket for one competitor. Every analyzed
// competitor lands in exactly one bucket; AVOID covers sell-now cases.
type Action string

const (
	ActionStrongBuy Action = "STRONG_BUY"
	ActionBuy       Action = "BUY"
	ActionConsider  Action = "CONSIDER"
	ActionHold      Action = "HOLD"
	ActionAvoid     Action = "AVOID"
)

// Priority orders recommendations within a report.
type Priority string

const (
	PriorityHigh   Priority = "HIGH"
	PriorityMedium Priority = "MEDIUM"
	PriorityLow    Priority = "LOW"
)

// RecommendationConfig extends the analysis config with candidate filters.
type RecommendationConfig struct {
	AnalysisConfig

	Positions    []Position `json:"positions,omitempty"`
	MinPrice     float64    `json:"min_price,omitempty"`
	MaxPrice     float64    `json:"max_price,omitempty"`
	PriceCeiling float64    `json:"price_ceiling,omitempty"` // for the value shortlist
	ExcludeIDs   []int      `json:"exclude_ids,omitempty"`

	// IncludeUnavailable keeps injured/suspended competitors in the
	// candidate set. Off by default.
	IncludeUnavailable bool `json:"include_unavailable,omitempty"`
}

// Recommendation is the fused prediction+risk verdict for one competitor.
// Derived fresh every run; only cached or logged for audit.
type Recommendation struct {
	CompetitorID      int                       `json:"competitor_id"`
	Name              string                    `json:"name"`
	Team              string                    `json:"team"`
	Position          Position                  `json:"position"`
	Price             float64                   `json:"price"`
	OwnershipPct      float64                   `json:"ownership_pct"`
	Action            Action                    `json:"action"`
	Priority          Priority                  `json:"priority"`
	Confidence        float64                   `json:"confidence"`
	AverageExpected   float64                   `json:"average_expected"`
	TotalExpected     float64                   `json:"total_expected"`
	CeilingProjection float64                   `json:"ceiling_projection"`
	OverallRisk       float64                   `json:"overall_risk"`
	Suitability       float64                   `json:"suitability"`
	SuitabilityScores map[RiskTolerance]float64 `json:"suitability_scores"`
	Reasoning         []string                  `json:"reasoning"`
}

// Shortlists are the themed views over the BUY-or-better set, each capped
// at five entries.
type Shortlists struct {
	MostReliable   []Recommendation `json:"most_reliable"`
	BestValue      []Recommendation `json:"best_value"`
	HighestCeiling []Recommendation `json:"highest_ceiling"`
	Safest         []Recommendation `json:"safest"`
	Differentials  []Recommendation `json:"differentials"`
}

// ReportInsights summarizes a recommendation run.
type ReportInsights struct {
	TotalPlayersAnalyzed int              `json:"total_players_analyzed"`
	AverageConfidence    float64          `json:"average_confidence"`
	TopPick              *Recommendation  `json:"top_pick,omitempty"`
	RiskWarnings         []string         `json:"risk_warnings,omitempty"`
	Notes                []string         `json:"notes,omitempty"`
}

// RecommendationReport is the full output of one recommendation run.
type RecommendationReport struct {
	RunID           string               `json:"run_id"`
	GeneratedAt     time.Time            `json:"generated_at"`
	CurrentRound    int                  `json:"current_round"`
	RiskTolerance   RiskTolerance        `json:"risk_tolerance"`
	Recommendations []Recommendation     `json:"recommendations"`
	Shortlists      Shortlists           `json:"shortlists"`
	Insights        ReportInsights       `json:"insights"`
}
