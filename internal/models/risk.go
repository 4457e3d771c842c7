package models

// Risk dimension names as used in profiles and concern labels.
const (
	RiskRotation       = "rotation"
	RiskInjury         = "injury"
	RiskPriceChange    = "price_change"
	RiskFormVolatility = "form_volatility"
)

// Overall risk weights per dimension. Rotation and volatility most directly
// affect weekly returns.
const (
	WeightRotation       = 0.30
	WeightInjury         = 0.25
	WeightPriceChange    = 0.20
	WeightFormVolatility = 0.25
)

// StartingXIStatus classifies how secure a competitor's starting spot is.
type StartingXIStatus string

const (
	XINailed   StartingXIStatus = "nailed"
	XIRegular  StartingXIStatus = "regular"
	XIRotation StartingXIStatus = "rotation"
	XIBench    StartingXIStatus = "bench"
)

// RiskFactor is one labelled component of a dimension score.
type RiskFactor struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// RiskDimension is a single 0-100 risk score with its own confidence and
// the factor breakdown it was built from. Higher score = riskier.
type RiskDimension struct {
	Score      float64      `json:"score"`
	Confidence float64      `json:"confidence"`
	Factors    []RiskFactor `json:"factors"`
}

// RiskProfile holds the four independent dimension scores for one
// competitor plus the weighted overall and headline concerns.
// Computed without any input from the prediction engine.
type RiskProfile struct {
	CompetitorID     int              `json:"competitor_id"`
	Name             string           `json:"name"`
	Rotation         RiskDimension    `json:"rotation"`
	Injury           RiskDimension    `json:"injury"`
	PriceChange      RiskDimension    `json:"price_change"`
	FormVolatility   RiskDimension    `json:"form_volatility"`
	Overall          float64          `json:"overall"`
	PrimaryConcerns  []string         `json:"primary_concerns"`
	StartingXIStatus StartingXIStatus `json:"starting_xi_status"`
}
