//go:build wireinject
// +build wireinject

package di

import (
	"FXSignals/pkg/config"
	"FXSignals/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,
		ProvideCacheStore,

		// Outbound data
		ProvideRateLimiter,
		ProvideHTTPClient,
		ProvideSeriesProvider,
		ProvideLivePrices,
		ProvideFundamentals,

		// Persistence and fan-out
		ProvideRecorder,
		ProvideHub,
		ProvideKafkaPipeline,
		ProvidePublisher,

		// Use cases
		ProvideSeriesService,
		ProvideSignalCalculator,
		ProvideSignalsBatch,
		ProvideBacktest,
		ProvideResultCache,

		// Delivery
		ProvideSignalsHandler,
		ProvideRefresher,
		ProvideApp,
	)
	return &server.App{}, nil
}

// InitializeBacktest wires only what the backtest CLI needs.
func InitializeBacktest(cfg *config.Config) (*BacktestRunner, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,
		ProvideCacheStore,
		ProvideRateLimiter,
		ProvideHTTPClient,
		ProvideSeriesProvider,
		ProvideLivePrices,
		ProvideRecorder,
		ProvideSeriesService,
		ProvideBacktest,
		wire.Struct(new(BacktestRunner), "*"),
	)
	return &BacktestRunner{}, nil
}
