package fundamentals

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"FXSignals/internal/domain/models"
	"FXSignals/internal/domain/repository"
	"FXSignals/internal/service/cache"
	xhttp "FXSignals/pkg/http"
	"FXSignals/pkg/logger"
)

// FailureFactor marks a fallback score.
const FailureFactor = "Fundamental aggregation failed"

// BaseScore is the neutral starting point: 60 when USD is a leg, 50 otherwise.
func BaseScore(pair models.Pair) float64 {
	if pair.HasUSD() {
		return 60
	}
	return 50
}

// Fallback is returned whenever the collaborator cannot answer.
func Fallback(pair models.Pair) models.Fundamentals {
	return models.Fundamentals{
		Score:   BaseScore(pair),
		Factors: []string{FailureFactor},
		News:    []models.NewsItem{},
	}
}

// StaticSource answers with the base score. Used when no service URL is configured.
type StaticSource struct{}

func (StaticSource) Fetch(_ context.Context, pair models.Pair, _ repository.Timeframe) (models.Fundamentals, error) {
	return models.Fundamentals{
		Score:   BaseScore(pair),
		Factors: []string{"Base score (no fundamentals service configured)"},
		News:    []models.NewsItem{},
	}, nil
}

// HTTPSource queries the fundamentals service at GET {base}/fundamentals?pair=&timeframe=.
type HTTPSource struct {
	baseURL  string
	client   *xhttp.Client
	attempts int
}

// NewHTTPSource builds a client bounded by timeout.
func NewHTTPSource(baseURL string, timeout time.Duration) *HTTPSource {
	if timeout <= 0 {
		timeout = 2500 * time.Millisecond
	}
	return &HTTPSource{
		baseURL:  baseURL,
		client:   xhttp.NewClient(xhttp.WithTimeout(timeout)),
		attempts: 2,
	}
}

func (s *HTTPSource) Fetch(ctx context.Context, pair models.Pair, tf repository.Timeframe) (models.Fundamentals, error) {
	var out models.Fundamentals
	if s.baseURL == "" {
		return out, fmt.Errorf("fundamentals client not initialized")
	}
	q := url.Values{}
	q.Set("pair", pair.String())
	q.Set("timeframe", tf.String())

	var err error
	for i := 1; i <= s.attempts; i++ {
		err = s.client.SendAndParse(ctx, &xhttp.RequestOptions{
			Method:      xhttp.MethodGet,
			URL:         s.baseURL + "/fundamentals",
			Headers:     map[string]string{"Accept": "application/json"},
			QueryParams: q,
		}, &out)
		if err == nil {
			break
		}
		select {
		case <-time.After(time.Duration(i) * 50 * time.Millisecond):
		case <-ctx.Done():
			return out, ctx.Err()
		}
	}
	if err != nil {
		return out, fmt.Errorf("get fundamentals %s: %w", pair, err)
	}
	if out.Score < 0 || out.Score > 100 {
		return out, fmt.Errorf("fundamentals score %.1f out of range", out.Score)
	}
	if out.Factors == nil {
		out.Factors = []string{}
	}
	if out.News == nil {
		out.News = []models.NewsItem{}
	}
	return out, nil
}

// Cached memoizes a source per pair and timeframe and never returns an error.
type Cached struct {
	src   repository.FundamentalsSource
	store cache.BytesCache
	l     *logger.Logger
}

// NewCached wraps src. store may be shared with other caches.
func NewCached(src repository.FundamentalsSource, store cache.BytesCache) *Cached {
	return &Cached{src: src, store: store}
}

// SetLogger injects a structured logger.
func (c *Cached) SetLogger(l *logger.Logger) { c.l = l }

func (c *Cached) Fetch(ctx context.Context, pair models.Pair, tf repository.Timeframe) (models.Fundamentals, error) {
	key := fmt.Sprintf("fund:%s:%s", pair, tf)
	if b, ok, err := c.store.GetBytes(key); err == nil && ok {
		var f models.Fundamentals
		if json.Unmarshal(b, &f) == nil {
			return f, nil
		}
	}

	f, err := c.src.Fetch(ctx, pair, tf)
	if err != nil {
		if c.l != nil {
			c.l.Warn("fundamentals fetch failed", logger.String("pair", pair.String()), logger.Error(err))
		}
		return Fallback(pair), nil
	}
	if b, err := json.Marshal(f); err == nil {
		if err := c.store.SetBytes(key, b, tf.FundamentalsTTL()); err != nil && c.l != nil {
			c.l.Warn("fundamentals cache set failed", logger.Error(err))
		}
	}
	return f, nil
}
