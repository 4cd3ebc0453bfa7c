package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"FXSignals/internal/domain/models"
	"FXSignals/internal/domain/repository"
	"FXSignals/internal/service/cache"
	"FXSignals/pkg/logger"
)

// BatchComputer computes signals for a list of pairs.
type BatchComputer interface {
	Compute(ctx context.Context, pairs []models.Pair, tf repository.Timeframe) []models.SignalResult
}

// Sweeper drops expired cache entries.
type Sweeper interface {
	Sweep() int
}

// Refresher periodically recomputes the default watchlist, warms the result
// cache and pushes the batch to publishers.
type Refresher struct {
	cron      *cron.Cron
	spec      string
	batch     BatchComputer
	results   *cache.ResultCache
	publisher repository.Publisher
	sweeper   Sweeper
	pairs     []models.Pair
	tf        repository.Timeframe
	timeout   time.Duration
	l         *logger.Logger

	wg      sync.WaitGroup
	mu      sync.Mutex
	lastRun time.Time
	runs    int
}

type Option func(*Refresher)

func WithPublisher(p repository.Publisher) Option {
	return func(r *Refresher) { r.publisher = p }
}

func WithSweeper(s Sweeper) Option {
	return func(r *Refresher) { r.sweeper = s }
}

func WithResultCache(c *cache.ResultCache) Option {
	return func(r *Refresher) { r.results = c }
}

// WithRunTimeout bounds a single refresh including publishing.
func WithRunTimeout(d time.Duration) Option {
	return func(r *Refresher) {
		if d > 0 {
			r.timeout = d
		}
	}
}

func WithLogger(l *logger.Logger) Option {
	return func(r *Refresher) {
		if l != nil {
			r.l = l
		}
	}
}

// NewRefresher parses pairs and builds a refresher for spec (standard cron or @every).
func NewRefresher(spec string, batch BatchComputer, pairs []string, tf repository.Timeframe, opts ...Option) (*Refresher, error) {
	parsed := make([]models.Pair, 0, len(pairs))
	for _, s := range pairs {
		p, err := models.ParsePair(s)
		if err == nil {
			err = p.Validate()
		}
		if err != nil {
			return nil, fmt.Errorf("refresher pair %q: %w", s, err)
		}
		parsed = append(parsed, p)
	}
	r := &Refresher{
		spec:    spec,
		batch:   batch,
		pairs:   parsed,
		tf:      tf,
		timeout: 30 * time.Second,
		l:       logger.NewNop(),
		cron:    cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
	}
	for _, opt := range opts {
		opt(r)
	}
	if _, err := r.cron.AddFunc(spec, r.tick); err != nil {
		return nil, fmt.Errorf("register refresh %q: %w", spec, err)
	}
	return r, nil
}

// Start starts the cron loop and runs one refresh right away to warm the caches.
func (r *Refresher) Start() {
	r.cron.Start()
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.tick()
	}()
	r.l.Info("refresher started", logger.String("spec", r.spec), logger.Int("pairs", len(r.pairs)), logger.String("timeframe", r.tf.String()))
}

// Stop stops scheduling and waits for a running refresh, bounded by ctx.
func (r *Refresher) Stop(ctx context.Context) {
	cronDone := r.cron.Stop()
	done := make(chan struct{})
	go func() {
		<-cronDone.Done()
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		r.l.Warn("refresher stop timed out")
	}
	r.l.Info("refresher stopped")
}

func (r *Refresher) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	r.RunOnce(ctx)
}

// RunOnce performs one refresh and returns the computed batch.
func (r *Refresher) RunOnce(ctx context.Context) []models.SignalResult {
	start := time.Now()
	out := r.batch.Compute(ctx, r.pairs, r.tf)

	cached := 0
	for i, s := range out {
		if s.IsFallback() || r.results == nil {
			continue
		}
		if err := r.results.Put(s, r.pairs[i], r.tf); err != nil {
			r.l.Warn("warm result cache failed", logger.String("pair", s.Pair), logger.Error(err))
			continue
		}
		cached++
	}

	if r.publisher != nil {
		if err := r.publisher.PublishSignals(ctx, out); err != nil {
			r.l.Warn("publish signals failed", logger.Error(err))
		}
	}

	swept := 0
	if r.sweeper != nil {
		swept = r.sweeper.Sweep()
	}

	r.mu.Lock()
	r.lastRun = start
	r.runs++
	r.mu.Unlock()

	r.l.Info("refresh complete",
		logger.Int("signals", len(out)),
		logger.Int("cached", cached),
		logger.Int("swept", swept),
		logger.Duration("took", time.Since(start)),
	)
	return out
}

// Runs returns the number of completed refreshes and when the last one started.
func (r *Refresher) Runs() (int, time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.runs, r.lastRun
}
