package middleware

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FXSignals/internal/domain/models"
	"FXSignals/pkg/metrics"
)

type recPublisher struct {
	mu      sync.Mutex
	fail    bool
	batches [][]models.SignalResult
	closed  bool
}

func (r *recPublisher) PublishSignals(_ context.Context, s []models.SignalResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return errors.New("down")
	}
	r.batches = append(r.batches, s)
	return nil
}

func (r *recPublisher) Close() error { r.closed = true; return nil }

func (r *recPublisher) setFail(v bool) {
	r.mu.Lock()
	r.fail = v
	r.mu.Unlock()
}

func (r *recPublisher) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.batches)
}

func sig(pair string, typ models.SignalType, conf int) models.SignalResult {
	return models.SignalResult{Pair: pair, Timeframe: "1H", Type: typ, Confidence: conf}
}

func TestPublishPipelineSuppressesUnchanged(t *testing.T) {
	next := &recPublisher{}
	now := time.Unix(1_700_000_000, 0)
	p := NewPublishPipeline(next, metrics.Nop{}, WithMinInterval(time.Minute))
	p.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, p.PublishSignals(ctx, []models.SignalResult{sig("EUR/USD", models.SignalBuy, 70), sig("", models.SignalBuy, 1)}))
	require.NoError(t, p.PublishSignals(ctx, []models.SignalResult{sig("EUR/USD", models.SignalBuy, 70)}))
	assert.Equal(t, 1, next.count(), "repeat inside the interval is dropped")

	require.NoError(t, p.PublishSignals(ctx, []models.SignalResult{sig("EUR/USD", models.SignalSell, 70)}))
	assert.Equal(t, 2, next.count(), "type change is forwarded")

	now = now.Add(2 * time.Minute)
	require.NoError(t, p.PublishSignals(ctx, []models.SignalResult{sig("EUR/USD", models.SignalSell, 70)}))
	assert.Equal(t, 3, next.count())
}

func TestPublishPipelineRejectsInvalid(t *testing.T) {
	next := &recPublisher{}
	p := NewPublishPipeline(next, nil)
	require.NoError(t, p.PublishSignals(context.Background(), []models.SignalResult{
		sig("EUR/USD", "Maybe", 50),
		sig("EUR/USD", models.SignalHold, 101),
	}))
	assert.Zero(t, next.count())
}

func TestPublishPipelineBuffersAndFlushes(t *testing.T) {
	next := &recPublisher{fail: true}
	p := NewPublishPipeline(next, metrics.Nop{}, WithBufferSize(4))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	err := p.PublishSignals(ctx, []models.SignalResult{sig("GBP/USD", models.SignalBuy, 60)})
	require.Error(t, err)
	assert.Len(t, p.bufCh, 1)

	next.setFail(false)
	p.Start(ctx)
	assert.Eventually(t, func() bool { return next.count() == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, p.Close())
	assert.True(t, next.closed)
	p.Stop()
}
