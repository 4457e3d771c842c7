package store

import (
	"context"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

// Prediction audit rows live in ClickHouse: append-heavy, queried by time
// range for accuracy tracking. The table is a ReplacingMergeTree keyed by
// (competitor_id, round, model_version), so idempotent re-runs collapse
// to the latest row on merge.
//
//	CREATE TABLE fpl_analytics.prediction_audit (
//	    competitor_id    Int32,
//	    round            Int32,
//	    model_version    LowCardinality(String),
//	    predicted_points Float64,
//	    confidence       Float64,
//	    opponent_id      Int32,
//	    is_home          UInt8,
//	    difficulty       Int8,
//	    blank            UInt8,
//	    risk_tolerance   LowCardinality(String),
//	    created_at       DateTime
//	) ENGINE = ReplacingMergeTree(created_at)
//	ORDER BY (competitor_id, round, model_version)

type PredictionStore struct {
	ch driver.Conn
}

func NewPredictionStore(ch driver.Conn) *PredictionStore {
	return &PredictionStore{ch: ch}
}

// InsertBatch writes a batch of prediction audit rows.
func (s *PredictionStore) InsertBatch(ctx context.Context, records []PredictionRecord) error {
	if len(records) == 0 {
		return nil
	}

	batch, err := s.ch.PrepareBatch(ctx, `
		INSERT INTO fpl_analytics.prediction_audit (
			competitor_id, round, model_version,
			predicted_points, confidence,
			opponent_id, is_home, difficulty, blank,
			risk_tolerance, created_at
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare prediction batch: %w", err)
	}

	for _, rec := range records {
		if rec.ModelVersion == "" {
			rec.ModelVersion = ModelVersion
		}
		err := batch.Append(
			int32(rec.CompetitorID),
			int32(rec.Round),
			rec.ModelVersion,
			rec.PredictedPoints,
			rec.Confidence,
			int32(rec.OpponentID),
			boolToUint8(rec.IsHome),
			int8(rec.Difficulty),
			boolToUint8(rec.Blank),
			rec.RiskTolerance,
			rec.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("append prediction row: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send prediction batch: %w", err)
	}
	return nil
}

func boolToUint8(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
