// Package worker implements the buffered worker pool pattern for async
// audit persistence. This decouples analytics request handling from
// database writes, providing:
// - Backpressure handling via load shedding
// - Batch inserts for efficient ClickHouse writes
// - Graceful shutdown with flush guarantees

package worker

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/fplcentral/analytics-api/internal/store"
)

// Prometheus metrics
var (
	auditRowsQueued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fpl_audit_rows_queued_total",
		Help: "Total number of audit rows accepted into the queue",
	})

	auditRowsPersisted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fpl_audit_rows_persisted_total",
		Help: "Total number of audit rows written to storage",
	})

	auditRowsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fpl_audit_rows_failed_total",
		Help: "Total number of audit rows that failed to persist",
	})

	auditRowsLoadShed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fpl_audit_rows_load_shed_total",
		Help: "Total number of audit rows dropped because the queue was unavailable",
	})

	auditQueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "fpl_audit_queue_depth",
		Help: "Current depth of the audit queue",
	})

	batchFlushDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "fpl_audit_batch_flush_duration_seconds",
		Help:    "Duration of audit batch flushes",
		Buckets: prometheus.DefBuckets,
	})
)

// PredictionWriter persists prediction audit batches.
type PredictionWriter interface {
	InsertBatch(ctx context.Context, records []store.PredictionRecord) error
}

// RiskWriter upserts risk profile records.
type RiskWriter interface {
	Upsert(ctx context.Context, rec store.RiskRecord) error
}

// Job carries one unit of audit work: either a prediction batch or a risk
// profile, never both.
type Job struct {
	Predictions []store.PredictionRecord
	Risk        *store.RiskRecord
}

// PoolConfig configures the audit worker pool.
type PoolConfig struct {
	WorkerCount   int
	QueueSize     int
	BatchSize     int
	FlushInterval time.Duration
	Predictions   PredictionWriter
	Risks         RiskWriter
	Logger        *zap.Logger
}

// Pool manages workers draining the audit queue. It implements the
// engines' PredictionSink and RiskSink ports.
type Pool struct {
	config   PoolConfig
	jobQueue chan Job
	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
	logger   *zap.SugaredLogger
}

// NewPool creates a new audit worker pool.
func NewPool(cfg PoolConfig) *Pool {
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 2
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 4096
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 200
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = time.Second
	}

	return &Pool{
		config:   cfg,
		jobQueue: make(chan Job, cfg.QueueSize),
		logger:   cfg.Logger.Sugar(),
	}
}

// Start launches the worker goroutines.
func (p *Pool) Start(ctx context.Context) {
	p.ctx, p.cancel = context.WithCancel(ctx)

	for i := 0; i < p.config.WorkerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}

	go p.reportQueueDepth()

	p.logger.Infow("Audit worker pool started",
		"workers", p.config.WorkerCount,
		"queueSize", p.config.QueueSize,
		"batchSize", p.config.BatchSize,
	)
}

// Stop gracefully shuts down the pool, flushing queued work.
func (p *Pool) Stop() {
	p.logger.Info("Stopping audit worker pool...")
	p.cancel()
	close(p.jobQueue)
	p.wg.Wait()
	p.logger.Info("Audit worker pool stopped")
}

// EnqueuePredictions queues a prediction audit batch. Returns false when
// the pool is shutting down; the caller's result is unaffected either way.
func (p *Pool) EnqueuePredictions(records []store.PredictionRecord) bool {
	if len(records) == 0 {
		return true
	}
	return p.enqueue(Job{Predictions: records})
}

// EnqueueRiskProfile queues one risk profile upsert.
func (p *Pool) EnqueueRiskProfile(rec store.RiskRecord) bool {
	return p.enqueue(Job{Risk: &rec})
}

func (p *Pool) enqueue(job Job) (ok bool) {
	// Protect against sending on closed channel during shutdown.
	defer func() {
		if r := recover(); r != nil {
			p.logger.Warnw("Failed to enqueue audit job (pool stopped)", "error", r)
			auditRowsLoadShed.Inc()
			ok = false
		}
	}()

	select {
	case p.jobQueue <- job:
		auditRowsQueued.Add(float64(jobRows(job)))
		return true
	case <-p.ctx.Done():
		auditRowsLoadShed.Add(float64(jobRows(job)))
		return false
	}
}

// QueueDepth returns the current queue size.
func (p *Pool) QueueDepth() int {
	return len(p.jobQueue)
}

func jobRows(job Job) int {
	if job.Risk != nil {
		return 1
	}
	return len(job.Predictions)
}

// worker drains the queue, batching prediction rows and upserting risk
// profiles as they arrive.
func (p *Pool) worker(id int) {
	defer p.wg.Done()

	batch := make([]store.PredictionRecord, 0, p.config.BatchSize)
	ticker := time.NewTicker(p.config.FlushInterval)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}

		start := time.Now()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err := p.config.Predictions.InsertBatch(ctx, batch)
		cancel()

		if err != nil {
			p.logger.Errorw("Prediction audit flush failed",
				"worker", id,
				"rows", len(batch),
				"error", err,
			)
			auditRowsFailed.Add(float64(len(batch)))
		} else {
			auditRowsPersisted.Add(float64(len(batch)))
		}
		batchFlushDuration.Observe(time.Since(start).Seconds())

		batch = batch[:0]
	}

	for {
		select {
		case job, open := <-p.jobQueue:
			if !open {
				flush()
				return
			}

			if job.Risk != nil {
				p.upsertRisk(id, *job.Risk)
				continue
			}

			batch = append(batch, job.Predictions...)
			if len(batch) >= p.config.BatchSize {
				flush()
			}

		case <-ticker.C:
			flush()

		case <-p.ctx.Done():
			flush()
			return
		}
	}
}

// upsertRisk writes one risk profile. A failure is logged and skipped; it
// must not abort the batch or affect other competitors.
func (p *Pool) upsertRisk(workerID int, rec store.RiskRecord) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := p.config.Risks.Upsert(ctx, rec); err != nil {
		p.logger.Warnw("Risk profile upsert failed",
			"worker", workerID,
			"competitorId", rec.CompetitorID,
			"error", err,
		)
		auditRowsFailed.Inc()
		return
	}
	auditRowsPersisted.Inc()
}

func (p *Pool) reportQueueDepth() {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			auditQueueDepth.Set(float64(len(p.jobQueue)))
		case <-p.ctx.Done():
			return
		}
	}
}
