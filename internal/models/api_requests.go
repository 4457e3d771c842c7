package models

type BatchPredictionRequest struct {
	CompetitorIDs     []int         `json:"competitor_ids" validate:"required,min=1,max=200,dive,gt=0"`
	RiskTolerance     RiskTolerance `json:"risk_tolerance" validate:"omitempty,oneof=conservative balanced aggressive"`
	PredictionHorizon int           `json:"prediction_horizon" validate:"omitempty,min=4,max=6"`
	MinConfidence     float64       `json:"min_confidence" validate:"omitempty,min=0,max=1"`
	DoubleRounds      []int         `json:"double_rounds,omitempty" validate:"omitempty,dive,gt=0"`
}

type BatchPredictionResponse struct {
	Outlooks []CompetitorOutlook `json:"outlooks"`
	// Ids that did not resolve against the current snapshot.
	UnknownIDs []int `json:"unknown_ids,omitempty"`
}

type RecommendationRequest struct {
	RiskTolerance      RiskTolerance `json:"risk_tolerance" validate:"omitempty,oneof=conservative balanced aggressive"`
	PredictionHorizon  int           `json:"prediction_horizon" validate:"omitempty,min=4,max=6"`
	MinConfidence      float64       `json:"min_confidence" validate:"omitempty,min=0,max=1"`
	Positions          []Position    `json:"positions,omitempty" validate:"omitempty,dive,oneof=goalkeeper defender midfielder forward"`
	MinPrice           float64       `json:"min_price,omitempty" validate:"omitempty,min=0"`
	MaxPrice           float64       `json:"max_price,omitempty" validate:"omitempty,min=0"`
	PriceCeiling       float64       `json:"price_ceiling,omitempty" validate:"omitempty,min=0"`
	ExcludeIDs         []int         `json:"exclude_ids,omitempty" validate:"omitempty,dive,gt=0"`
	IncludeUnavailable bool          `json:"include_unavailable,omitempty"`
	DoubleRounds       []int         `json:"double_rounds,omitempty" validate:"omitempty,dive,gt=0"`
}

// ToConfig converts the wire request into the engine config.
func (r RecommendationRequest) ToConfig() RecommendationConfig {
	cfg := RecommendationConfig{
		AnalysisConfig: AnalysisConfig{
			RiskTolerance:     r.RiskTolerance,
			PredictionHorizon: r.PredictionHorizon,
			MinConfidence:     r.MinConfidence,
			DoubleRounds:      roundSet(r.DoubleRounds),
		},
		Positions:          r.Positions,
		MinPrice:           r.MinPrice,
		MaxPrice:           r.MaxPrice,
		PriceCeiling:       r.PriceCeiling,
		ExcludeIDs:         r.ExcludeIDs,
		IncludeUnavailable: r.IncludeUnavailable,
	}
	cfg.AnalysisConfig = cfg.AnalysisConfig.Normalize()
	return cfg
}

// ToConfig converts the wire request into the engine config.
func (r BatchPredictionRequest) ToConfig() AnalysisConfig {
	cfg := AnalysisConfig{
		RiskTolerance:     r.RiskTolerance,
		PredictionHorizon: r.PredictionHorizon,
		MinConfidence:     r.MinConfidence,
		DoubleRounds:      roundSet(r.DoubleRounds),
	}
	return cfg.Normalize()
}

func roundSet(rounds []int) map[int]bool {
	if len(rounds) == 0 {
		return nil
	}
	set := make(map[int]bool, len(rounds))
	for _, r := range rounds {
		set[r] = true
	}
	return set
}
