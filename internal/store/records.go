// Package store persists computed analytics for audit and history.
// Failures here are logged and skipped; they never affect the in-memory
// results returned to callers.
package store

import "time"

// ModelVersion tags audit rows with the heuristic revision that produced
// them, so re-runs overwrite rather than duplicate.
const ModelVersion = "v2"

// PredictionRecord is one competitor x round audit row, keyed by
// (competitor_id, round, model_version).
type PredictionRecord struct {
	CompetitorID    int
	Round           int
	ModelVersion    string
	PredictedPoints float64
	Confidence      float64
	OpponentID      int
	IsHome          bool
	Difficulty      int
	Blank           bool
	RiskTolerance   string
	CreatedAt       time.Time
}

// RiskRecord is the latest risk profile for one competitor, keyed by
// competitor_id.
type RiskRecord struct {
	CompetitorID     int
	Rotation         float64
	Injury           float64
	PriceChange      float64
	FormVolatility   float64
	Overall          float64
	StartingXIStatus string
	PrimaryConcerns  []string
	UpdatedAt        time.Time
}
