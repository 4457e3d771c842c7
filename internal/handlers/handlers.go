package handlers

import (
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/fplcentral/analytics-api/internal/logic"
	"github.com/fplcentral/analytics-api/internal/source"
)

// MaxBodySize limits the size of request bodies to 1MB
const MaxBodySize = 1048576

// AuditQueue exposes the audit pool's queue depth for readiness reporting.
type AuditQueue interface {
	QueueDepth() int
}

type Config struct {
	AuditQueue AuditQueue
	Postgres   *pgxpool.Pool
	ClickHouse driver.Conn
	Redis      *redis.Client
	Logger     *zap.Logger
	// Services
	Source         source.Provider
	Prediction     logic.PredictionService
	Risk           logic.RiskService
	Recommendation logic.RecommendationService
}

type Handler struct {
	audit          AuditQueue
	pg             *pgxpool.Pool
	ch             driver.Conn
	redis          *redis.Client
	logger         *zap.SugaredLogger
	validator      *validator.Validate
	sourceData     source.Provider
	prediction     logic.PredictionService
	risk           logic.RiskService
	recommendation logic.RecommendationService
}

func New(cfg Config) *Handler {
	return &Handler{
		audit:          cfg.AuditQueue,
		pg:             cfg.Postgres,
		ch:             cfg.ClickHouse,
		redis:          cfg.Redis,
		logger:         cfg.Logger.Sugar(),
		validator:      validator.New(),
		sourceData:     cfg.Source,
		prediction:     cfg.Prediction,
		risk:           cfg.Risk,
		recommendation: cfg.Recommendation,
	}
}
