package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PgPool defines the interface for the PostgreSQL connection pool.
type PgPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// RiskStore upserts the latest risk profile per competitor into Postgres.
type RiskStore struct {
	pg PgPool
}

func NewRiskStore(pg PgPool) *RiskStore {
	return &RiskStore{pg: pg}
}

// Upsert writes one risk profile, overwriting any previous row for the
// competitor.
func (s *RiskStore) Upsert(ctx context.Context, rec RiskRecord) error {
	_, err := s.pg.Exec(ctx, `
		INSERT INTO risk_profiles (
			competitor_id, rotation, injury, price_change, form_volatility,
			overall, starting_xi_status, primary_concerns, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (competitor_id) DO UPDATE SET
			rotation = EXCLUDED.rotation,
			injury = EXCLUDED.injury,
			price_change = EXCLUDED.price_change,
			form_volatility = EXCLUDED.form_volatility,
			overall = EXCLUDED.overall,
			starting_xi_status = EXCLUDED.starting_xi_status,
			primary_concerns = EXCLUDED.primary_concerns,
			updated_at = EXCLUDED.updated_at
	`, rec.CompetitorID, rec.Rotation, rec.Injury, rec.PriceChange, rec.FormVolatility,
		rec.Overall, rec.StartingXIStatus, rec.PrimaryConcerns, rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert risk profile %d: %w", rec.CompetitorID, err)
	}
	return nil
}
