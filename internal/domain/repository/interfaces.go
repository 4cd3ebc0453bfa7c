package repository

import (
	"context"

	"FXSignals/internal/domain/models"
)

// SeriesProvider fetches a historical series from one external source.
// A nil series with nil error is treated the same as an error: try the next provider.
type SeriesProvider interface {
	Name() string
	Fetch(ctx context.Context, pair models.Pair, tf Timeframe) (*models.PriceSeries, error)
}

// LivePriceSource returns a current quote for a pair.
type LivePriceSource interface {
	CurrentPrice(ctx context.Context, pair models.Pair) (float64, error)
}

// FundamentalsSource returns the external fundamental bias for a pair.
type FundamentalsSource interface {
	Fetch(ctx context.Context, pair models.Pair, tf Timeframe) (models.Fundamentals, error)
}

// Recorder persists signal snapshots and backtest runs for later analysis.
type Recorder interface {
	RecordSignal(ctx context.Context, s *models.SignalResult) error
	RecordBacktest(ctx context.Context, r *models.BacktestResult) error
	Close() error
}

// Publisher pushes refreshed signals to downstream consumers.
type Publisher interface {
	PublishSignals(ctx context.Context, signals []models.SignalResult) error
	Close() error
}

// Metrics is the instrumentation surface used by the engine.
type Metrics interface {
	RecordProviderAttempt(provider, outcome string, seconds float64)
	RecordCache(kind, outcome string)
	RecordSignal(pair, timeframe, signalType string, confidence int)
	RecordBacktest(pair, timeframe string, trades int, returnPct float64)
	RecordError(kind string)
}
