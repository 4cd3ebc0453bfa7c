package usecase

import (
	"context"

	"FXSignals/internal/domain/models"
	"FXSignals/internal/domain/repository"
	"FXSignals/internal/service/cache"
	"FXSignals/internal/service/provider"
	"FXSignals/pkg/logger"
)

// SeriesService acquires historical bars: fresh cache, then providers, then the
// last known cached series, then a synthetic series centred on the live price.
// It never fails. The last two steps mark the series stale.
type SeriesService struct {
	providers repository.SeriesProvider
	cache     *cache.SeriesCache
	live      repository.LivePriceSource
	l         *logger.Logger
	metrics   repository.Metrics
}

// NewSeriesService wires the provider chain with the series cache. live may be nil.
func NewSeriesService(p repository.SeriesProvider, c *cache.SeriesCache, live repository.LivePriceSource, m repository.Metrics) *SeriesService {
	return &SeriesService{providers: p, cache: c, live: live, metrics: m}
}

// SetLogger injects a structured logger.
func (s *SeriesService) SetLogger(l *logger.Logger) { s.l = l }

// FetchHistoricalSeries returns at most tf.Lookback() bars, oldest first, with opens filled in.
func (s *SeriesService) FetchHistoricalSeries(ctx context.Context, pair models.Pair, tf repository.Timeframe) models.PriceSeries {
	lookback := tf.Lookback()
	if e, ok := s.cache.Get(pair, tf); ok {
		return e.Series.Tail(lookback)
	}

	fetched, err := s.providers.Fetch(ctx, pair, tf)
	if err == nil && fetched != nil {
		trimmed := fetched.Tail(lookback)
		if err := s.cache.Put(pair, tf, trimmed); err != nil && s.l != nil {
			s.l.Warn("series cache put failed", logger.String("pair", pair.String()), logger.Error(err))
		}
		return trimmed
	}
	if s.l != nil {
		s.l.Warn("all providers failed",
			logger.String("pair", pair.String()),
			logger.String("timeframe", tf.String()),
			logger.Error(err))
	}

	if e, ok := s.cache.LastKnown(pair, tf); ok {
		if s.l != nil {
			s.l.Info("serving last known series",
				logger.String("pair", pair.String()),
				logger.String("source", e.Series.Source),
				logger.Any("fetched_at", e.FetchedAt))
		}
		out := e.Series.Tail(lookback)
		out.Stale = true
		return out
	}

	price := 0.0
	if s.live != nil {
		if p, err := s.live.CurrentPrice(ctx, pair); err == nil && p > 0 {
			price = p
		}
	}
	if s.metrics != nil {
		s.metrics.RecordError("synthetic_series")
	}
	syn := provider.Synthetic(pair, tf, price)
	out := syn.Tail(lookback)
	out.Stale = true
	return out
}
