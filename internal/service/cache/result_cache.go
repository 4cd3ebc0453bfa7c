package cache

import (
	"encoding/json"
	"fmt"
	"time"

	"FXSignals/internal/domain/models"
	"FXSignals/internal/domain/repository"
)

// ResultCache keeps computed signals for a short TTL per pair and timeframe.
type ResultCache struct {
	store   BytesCache
	ttl     time.Duration
	metrics repository.Metrics
}

// NewResultCache wraps a BytesCache. A non-positive ttl disables caching.
func NewResultCache(store BytesCache, ttl time.Duration, m repository.Metrics) *ResultCache {
	return &ResultCache{store: store, ttl: ttl, metrics: m}
}

func resultKey(pair models.Pair, tf repository.Timeframe) string {
	return fmt.Sprintf("signal:%s:%s", pair, tf)
}

func (c *ResultCache) Get(pair models.Pair, tf repository.Timeframe) (models.SignalResult, bool) {
	var out models.SignalResult
	if c == nil || c.ttl <= 0 {
		return out, false
	}
	b, ok, err := c.store.GetBytes(resultKey(pair, tf))
	if err == nil && ok && json.Unmarshal(b, &out) == nil {
		c.record("hit")
		return out, true
	}
	c.record("miss")
	return out, false
}

func (c *ResultCache) Put(s models.SignalResult, pair models.Pair, tf repository.Timeframe) error {
	if c == nil || c.ttl <= 0 {
		return nil
	}
	b, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal signal: %w", err)
	}
	return c.store.SetBytes(resultKey(pair, tf), b, c.ttl)
}

func (c *ResultCache) record(outcome string) {
	if c.metrics != nil {
		c.metrics.RecordCache("signal", outcome)
	}
}
