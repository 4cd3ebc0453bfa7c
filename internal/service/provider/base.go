package provider

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"FXSignals/internal/service/ratelimit"
	xhttp "FXSignals/pkg/http"
)

var (
	// ErrNoData is returned when a provider answered without usable bars.
	ErrNoData = errors.New("no data")
	// ErrShortSeries is returned when fewer than the minimum bars came back.
	ErrShortSeries = errors.New("series too short")
	// ErrRateLimited is returned when the outbound token bucket is empty.
	ErrRateLimited = errors.New("rate limited")
	// ErrUnsupported is returned when a provider cannot serve the pair or timeframe.
	ErrUnsupported = errors.New("unsupported")
)

const userAgent = "Mozilla/5.0 (compatible; FXSignals/1.0)"

// Options configures the HTTP-backed providers.
type Options struct {
	BaseURL      string
	APIKey       string
	Client       *xhttp.Client
	Limiter      *ratelimit.Limiter
	Capacity     float64
	RefillPerSec float64
	Now          func() time.Time
}

// Option mutates Options.
type Option func(*Options)

// WithBaseURL overrides the provider endpoint.
func WithBaseURL(u string) Option { return func(o *Options) { o.BaseURL = u } }

// WithAPIKey sets the provider credential.
func WithAPIKey(k string) Option { return func(o *Options) { o.APIKey = k } }

// WithClient sets the shared HTTP client.
func WithClient(c *xhttp.Client) Option { return func(o *Options) { o.Client = c } }

// WithRateLimit shares a token bucket limiter keyed by provider name.
func WithRateLimit(l *ratelimit.Limiter, capacity, refillPerSec float64) Option {
	return func(o *Options) {
		o.Limiter, o.Capacity, o.RefillPerSec = l, capacity, refillPerSec
	}
}

// WithClock overrides time.Now, used for date-ranged requests.
func WithClock(now func() time.Time) Option { return func(o *Options) { o.Now = now } }

func buildOptions(defaultURL string, opts []Option) Options {
	o := Options{BaseURL: defaultURL, Now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if o.Client == nil {
		o.Client = xhttp.NewClient(xhttp.WithTimeout(10 * time.Second))
	}
	return o
}

// httpBase issues rate-limited GET requests and decodes JSON.
type httpBase struct {
	name string
	opts Options
}

func (b *httpBase) getJSON(ctx context.Context, path string, query url.Values, dest interface{}) error {
	if b.opts.Limiter != nil && b.opts.Capacity > 0 &&
		!b.opts.Limiter.Allow(b.name, b.opts.Capacity, b.opts.RefillPerSec) {
		return ErrRateLimited
	}
	err := b.opts.Client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         b.opts.BaseURL + path,
		Headers:     map[string]string{"User-Agent": userAgent, "Accept": "application/json"},
		QueryParams: query,
	}, dest)
	if err != nil {
		return fmt.Errorf("get %s: %w", path, err)
	}
	return nil
}

// getJSONWithRetry retries transient failures with a linear backoff.
func (b *httpBase) getJSONWithRetry(ctx context.Context, path string, query url.Values, dest interface{}, attempts int) error {
	var err error
	for i := 1; i <= max(1, attempts); i++ {
		err = b.getJSON(ctx, path, query, dest)
		if err == nil || !retryable(err) || i == attempts {
			return err
		}
		select {
		case <-time.After(time.Duration(i) * 50 * time.Millisecond):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

// retryable is true for transport errors and 429/5xx answers. Local throttling and 4xx are final.
func retryable(err error) bool {
	if errors.Is(err, ErrRateLimited) || errors.Is(err, context.Canceled) {
		return false
	}
	var se *xhttp.StatusError
	if errors.As(err, &se) {
		return se.Retryable()
	}
	return true
}
