package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/fplcentral/analytics-api/internal/store"
)

type mockPredictionWriter struct {
	mu      sync.Mutex
	batches [][]store.PredictionRecord
	err     error
}

func (m *mockPredictionWriter) InsertBatch(ctx context.Context, records []store.PredictionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	batch := make([]store.PredictionRecord, len(records))
	copy(batch, records)
	m.batches = append(m.batches, batch)
	return nil
}

func (m *mockPredictionWriter) rows() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, b := range m.batches {
		n += len(b)
	}
	return n
}

type mockRiskWriter struct {
	mu      sync.Mutex
	records []store.RiskRecord
	err     error
}

func (m *mockRiskWriter) Upsert(ctx context.Context, rec store.RiskRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.records = append(m.records, rec)
	return nil
}

func (m *mockRiskWriter) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

func testPool(predictions *mockPredictionWriter, risks *mockRiskWriter) *Pool {
	return NewPool(PoolConfig{
		WorkerCount:   1,
		QueueSize:     64,
		BatchSize:     4,
		FlushInterval: 10 * time.Millisecond,
		Predictions:   predictions,
		Risks:         risks,
		Logger:        zap.NewNop(),
	})
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached before deadline")
}

func predictionRecords(n int) []store.PredictionRecord {
	out := make([]store.PredictionRecord, n)
	for i := range out {
		out[i] = store.PredictionRecord{
			CompetitorID:    i + 1,
			Round:           11,
			ModelVersion:    store.ModelVersion,
			PredictedPoints: 4.2,
			CreatedAt:       time.Now().UTC(),
		}
	}
	return out
}

func TestPool_FlushesOnBatchSize(t *testing.T) {
	predictions := &mockPredictionWriter{}
	risks := &mockRiskWriter{}
	pool := testPool(predictions, risks)
	pool.Start(context.Background())
	defer pool.Stop()

	if !pool.EnqueuePredictions(predictionRecords(4)) {
		t.Fatal("enqueue rejected")
	}
	waitFor(t, func() bool { return predictions.rows() == 4 })
}

func TestPool_FlushesOnInterval(t *testing.T) {
	predictions := &mockPredictionWriter{}
	risks := &mockRiskWriter{}
	pool := testPool(predictions, risks)
	pool.Start(context.Background())
	defer pool.Stop()

	// One record, well under the batch size: the ticker must flush it.
	pool.EnqueuePredictions(predictionRecords(1))
	waitFor(t, func() bool { return predictions.rows() == 1 })
}

func TestPool_UpsertsRiskProfiles(t *testing.T) {
	predictions := &mockPredictionWriter{}
	risks := &mockRiskWriter{}
	pool := testPool(predictions, risks)
	pool.Start(context.Background())
	defer pool.Stop()

	pool.EnqueueRiskProfile(store.RiskRecord{CompetitorID: 7, Overall: 42})
	pool.EnqueueRiskProfile(store.RiskRecord{CompetitorID: 8, Overall: 18})
	waitFor(t, func() bool { return risks.count() == 2 })

	if risks.records[0].CompetitorID != 7 {
		t.Errorf("first upsert competitor = %d, want 7", risks.records[0].CompetitorID)
	}
}

func TestPool_RiskFailureDoesNotStopWorker(t *testing.T) {
	predictions := &mockPredictionWriter{}
	risks := &mockRiskWriter{err: errors.New("pg down")}
	pool := testPool(predictions, risks)
	pool.Start(context.Background())
	defer pool.Stop()

	pool.EnqueueRiskProfile(store.RiskRecord{CompetitorID: 7})
	// The failed upsert is logged and skipped; predictions keep flowing.
	pool.EnqueuePredictions(predictionRecords(4))
	waitFor(t, func() bool { return predictions.rows() == 4 })
}

func TestPool_EnqueueAfterStop(t *testing.T) {
	predictions := &mockPredictionWriter{}
	risks := &mockRiskWriter{}
	pool := testPool(predictions, risks)
	pool.Start(context.Background())
	pool.Stop()

	if pool.EnqueuePredictions(predictionRecords(1)) {
		t.Error("enqueue after Stop() should report false")
	}
	if pool.EnqueueRiskProfile(store.RiskRecord{CompetitorID: 1}) {
		t.Error("risk enqueue after Stop() should report false")
	}
}

func TestPool_EmptyBatchIsNoop(t *testing.T) {
	predictions := &mockPredictionWriter{}
	risks := &mockRiskWriter{}
	pool := testPool(predictions, risks)
	pool.Start(context.Background())
	defer pool.Stop()

	if !pool.EnqueuePredictions(nil) {
		t.Error("empty batch should be accepted without queueing")
	}
	if pool.QueueDepth() != 0 {
		t.Errorf("QueueDepth = %d, want 0", pool.QueueDepth())
	}
}
