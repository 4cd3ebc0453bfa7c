package provider

import (
	"context"
	"errors"
	"fmt"
	"time"

	"FXSignals/internal/domain/models"
	"FXSignals/internal/domain/repository"
	"FXSignals/pkg/logger"
)

// DefaultAttemptTimeout bounds a single provider attempt.
const DefaultAttemptTimeout = 3500 * time.Millisecond

// MinBars is the shortest series a provider may return.
const MinBars = 2

// Attempt is one named strategy tried by FirstAvailable.
type Attempt[T any] struct {
	Name string
	Run  func(ctx context.Context) (T, error)
}

// Observer is told about every finished attempt.
type Observer func(name string, elapsed time.Duration, err error)

// FirstAvailable runs attempts in order, each under its own timeout, and returns the first success.
// When every attempt fails the joined error is returned together with the zero value.
func FirstAvailable[T any](ctx context.Context, timeout time.Duration, observe Observer, attempts ...Attempt[T]) (T, string, error) {
	var zero T
	var errs []error
	for _, a := range attempts {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		start := time.Now()
		v, err := runAttempt(ctx, timeout, a)
		if observe != nil {
			observe(a.Name, time.Since(start), err)
		}
		if err == nil {
			return v, a.Name, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", a.Name, err))
	}
	if len(errs) == 0 {
		return zero, "", ErrNoData
	}
	return zero, "", errors.Join(errs...)
}

func runAttempt[T any](ctx context.Context, timeout time.Duration, a Attempt[T]) (T, error) {
	if timeout <= 0 {
		return a.Run(ctx)
	}
	actx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		v   T
		err error
	}
	ch := make(chan result, 1)
	go func() {
		v, err := a.Run(actx)
		ch <- result{v, err}
	}()
	select {
	case r := <-ch:
		return r.v, r.err
	case <-actx.Done():
		var zero T
		return zero, actx.Err()
	}
}

// Chain routes a pair to its asset-class provider list and returns the first usable series.
type Chain struct {
	crypto  []repository.SeriesProvider
	forex   []repository.SeriesProvider
	timeout time.Duration
	log     *logger.Logger
	metrics repository.Metrics
}

// ChainOption configures a Chain.
type ChainOption func(*Chain)

// WithCrypto sets the ordered crypto providers.
func WithCrypto(p ...repository.SeriesProvider) ChainOption {
	return func(c *Chain) { c.crypto = p }
}

// WithForex sets the ordered forex providers.
func WithForex(p ...repository.SeriesProvider) ChainOption {
	return func(c *Chain) { c.forex = p }
}

// WithAttemptTimeout overrides the per-attempt timeout.
func WithAttemptTimeout(d time.Duration) ChainOption {
	return func(c *Chain) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithMetrics records attempt outcomes.
func WithMetrics(m repository.Metrics) ChainOption {
	return func(c *Chain) { c.metrics = m }
}

// NewChain creates a provider chain.
func NewChain(opts ...ChainOption) *Chain {
	c := &Chain{timeout: DefaultAttemptTimeout}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetLogger injects a logger.
func (c *Chain) SetLogger(l *logger.Logger) { c.log = l }

func (c *Chain) Name() string { return "chain" }

// Fetch tries every provider of the pair's asset class in order.
func (c *Chain) Fetch(ctx context.Context, pair models.Pair, tf repository.Timeframe) (*models.PriceSeries, error) {
	list := c.forex
	if pair.IsCrypto() {
		list = c.crypto
	}
	attempts := make([]Attempt[*models.PriceSeries], 0, len(list))
	for _, p := range list {
		attempts = append(attempts, Attempt[*models.PriceSeries]{
			Name: p.Name(),
			Run: func(ctx context.Context) (*models.PriceSeries, error) {
				s, err := p.Fetch(ctx, pair, tf)
				if err != nil {
					return nil, err
				}
				return s, checkSeries(s)
			},
		})
	}
	s, _, err := FirstAvailable(ctx, c.timeout, c.observe(pair, tf), attempts...)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (c *Chain) observe(pair models.Pair, tf repository.Timeframe) Observer {
	return func(name string, elapsed time.Duration, err error) {
		outcome := "ok"
		if err != nil {
			outcome = "error"
			if c.log != nil {
				c.log.Warn("provider attempt failed",
					logger.String("provider", name),
					logger.String("pair", pair.String()),
					logger.String("timeframe", tf.String()),
					logger.Duration("elapsed", elapsed),
					logger.Error(err))
			}
		}
		if c.metrics != nil {
			c.metrics.RecordProviderAttempt(name, outcome, elapsed.Seconds())
		}
	}
}

func checkSeries(s *models.PriceSeries) error {
	if s == nil || s.Len() == 0 {
		return ErrNoData
	}
	if err := s.Validate(); err != nil {
		return err
	}
	if s.Len() < MinBars {
		return ErrShortSeries
	}
	return nil
}
