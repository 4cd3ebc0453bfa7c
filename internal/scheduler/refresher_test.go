package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FXSignals/internal/domain/models"
	"FXSignals/internal/domain/repository"
	"FXSignals/internal/service/cache"
)

type fakeBatch struct{ calls int }

func (f *fakeBatch) Compute(_ context.Context, pairs []models.Pair, tf repository.Timeframe) []models.SignalResult {
	f.calls++
	out := make([]models.SignalResult, len(pairs))
	for i, p := range pairs {
		if p.Base == "BTC" {
			out[i] = models.HoldFallback(p, tf.String(), "Timed out")
			continue
		}
		out[i] = models.SignalResult{Pair: p.String(), Timeframe: tf.String(), Type: models.SignalBuy, Confidence: 66, DebugSource: "yahoo"}
	}
	return out
}

type capturePublisher struct{ got []models.SignalResult }

func (c *capturePublisher) PublishSignals(_ context.Context, s []models.SignalResult) error {
	c.got = append(c.got, s...)
	return nil
}
func (c *capturePublisher) Close() error { return nil }

type countSweeper struct{ n int }

func (c *countSweeper) Sweep() int { c.n++; return 0 }

func TestRefresherRunOnce(t *testing.T) {
	results := cache.NewResultCache(cache.NewTTLCache(), time.Minute, nil)
	pub := &capturePublisher{}
	sw := &countSweeper{}
	fb := &fakeBatch{}

	r, err := NewRefresher("@every 1m", fb, []string{"EUR/USD", "BTC/USD"}, repository.TF1H,
		WithResultCache(results), WithPublisher(pub), WithSweeper(sw))
	require.NoError(t, err)

	out := r.RunOnce(context.Background())
	require.Len(t, out, 2)
	assert.Len(t, pub.got, 2)
	assert.Equal(t, 1, sw.n)

	got, ok := results.Get(models.MustPair("EUR/USD"), repository.TF1H)
	require.True(t, ok)
	assert.Equal(t, 66, got.Confidence)
	_, ok = results.Get(models.MustPair("BTC/USD"), repository.TF1H)
	assert.False(t, ok, "fallbacks are not cached")

	runs, last := r.Runs()
	assert.Equal(t, 1, runs)
	assert.False(t, last.IsZero())
}

func TestNewRefresherRejectsBadInput(t *testing.T) {
	_, err := NewRefresher("@every 1m", &fakeBatch{}, []string{"/USD"}, repository.TF1H)
	assert.Error(t, err)
	_, err = NewRefresher("not a spec", &fakeBatch{}, []string{"EUR/USD"}, repository.TF1H)
	assert.Error(t, err)
}

func TestRefresherStartStop(t *testing.T) {
	fb := &fakeBatch{}
	r, err := NewRefresher("@every 1h", fb, []string{"EUR/USD"}, repository.TF1H)
	require.NoError(t, err)
	r.Start()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	r.Stop(ctx)
	assert.Equal(t, 1, fb.calls, "start warms once without waiting for the first tick")
	runs, _ := r.Runs()
	assert.Equal(t, 1, runs)
}
