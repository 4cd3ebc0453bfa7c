package cache

import (
	"encoding/json"
	"fmt"
	"time"

	"FXSignals/internal/domain/models"
	"FXSignals/internal/domain/repository"
)

// DefaultRetention is how long an expired series is kept for LastKnown.
const DefaultRetention = 24 * time.Hour

// SeriesCache stores fetched series per pair and timeframe.
// Freshness follows the timeframe TTL; entries outlive it for the stale fallback.
type SeriesCache struct {
	store     BytesCache
	retention time.Duration
	now       func() time.Time
	metrics   repository.Metrics
}

// SeriesCacheOption configures a SeriesCache.
type SeriesCacheOption func(*SeriesCache)

// WithRetention overrides how long stale entries stay available.
func WithRetention(d time.Duration) SeriesCacheOption {
	return func(c *SeriesCache) { c.retention = d }
}

// WithNow overrides the clock.
func WithNow(now func() time.Time) SeriesCacheOption {
	return func(c *SeriesCache) { c.now = now }
}

// WithCacheMetrics records hit/miss outcomes.
func WithCacheMetrics(m repository.Metrics) SeriesCacheOption {
	return func(c *SeriesCache) { c.metrics = m }
}

// NewSeriesCache wraps a BytesCache.
func NewSeriesCache(store BytesCache, opts ...SeriesCacheOption) *SeriesCache {
	c := &SeriesCache{store: store, retention: DefaultRetention, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SeriesKey is the storage key for a pair and timeframe.
func SeriesKey(pair models.Pair, tf repository.Timeframe) string {
	return fmt.Sprintf("series:%s:%s", pair, tf)
}

// Get returns the entry only while it is fresh.
func (c *SeriesCache) Get(pair models.Pair, tf repository.Timeframe) (*models.CachedSeries, bool) {
	e, ok := c.load(pair, tf)
	if ok && e.Fresh(c.now()) {
		c.record("series", "hit")
		return e, true
	}
	c.record("series", "miss")
	return nil, false
}

// LastKnown returns the entry regardless of freshness.
func (c *SeriesCache) LastKnown(pair models.Pair, tf repository.Timeframe) (*models.CachedSeries, bool) {
	e, ok := c.load(pair, tf)
	if ok {
		c.record("series_stale", "hit")
	} else {
		c.record("series_stale", "miss")
	}
	return e, ok
}

// Put stores a series with the timeframe TTL.
func (c *SeriesCache) Put(pair models.Pair, tf repository.Timeframe, s models.PriceSeries) error {
	now := c.now()
	e := models.CachedSeries{Series: s, FetchedAt: now, ExpiresAt: now.Add(tf.CacheTTL())}
	b, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal series: %w", err)
	}
	keep := c.retention
	if keep < tf.CacheTTL() {
		keep = tf.CacheTTL()
	}
	if err := c.store.SetBytes(SeriesKey(pair, tf), b, keep); err != nil {
		return fmt.Errorf("store series: %w", err)
	}
	return nil
}

func (c *SeriesCache) load(pair models.Pair, tf repository.Timeframe) (*models.CachedSeries, bool) {
	b, ok, err := c.store.GetBytes(SeriesKey(pair, tf))
	if err != nil || !ok {
		return nil, false
	}
	var e models.CachedSeries
	if err := json.Unmarshal(b, &e); err != nil || len(e.Series.Closes) == 0 {
		return nil, false
	}
	return &e, true
}

func (c *SeriesCache) record(kind, outcome string) {
	if c.metrics != nil {
		c.metrics.RecordCache(kind, outcome)
	}
}
