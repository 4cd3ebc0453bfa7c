package usecase

import (
	"context"

	"FXSignals/internal/domain/models"
	"FXSignals/internal/domain/repository"
	"FXSignals/internal/services/backtest"
	"FXSignals/pkg/logger"
)

// BacktestUseCase replays the bar rules over the acquired series.
type BacktestUseCase struct {
	series   *SeriesService
	cfg      backtest.Config
	metrics  repository.Metrics
	recorder repository.Recorder
	l        *logger.Logger
}

// NewBacktestUseCase builds the use case. recorder and m may be nil.
func NewBacktestUseCase(series *SeriesService, cfg backtest.Config, recorder repository.Recorder, m repository.Metrics) *BacktestUseCase {
	return &BacktestUseCase{series: series, cfg: cfg, recorder: recorder, metrics: m}
}

// SetLogger injects a structured logger.
func (uc *BacktestUseCase) SetLogger(l *logger.Logger) { uc.l = l }

// Run simulates pair on tf. capital overrides the configured initial capital when positive.
func (uc *BacktestUseCase) Run(ctx context.Context, pair models.Pair, tf repository.Timeframe, capital float64) models.BacktestResult {
	cfg := uc.cfg
	if capital > 0 {
		cfg.InitialCapital = capital
	}
	series := uc.series.FetchHistoricalSeries(ctx, pair, tf)
	res := backtest.NewSimulator(cfg, pair.IsCrypto()).Run(pair, tf, series)

	if uc.metrics != nil {
		uc.metrics.RecordBacktest(res.Pair, res.Timeframe, res.Trades, res.TotalReturnPct)
	}
	if uc.recorder != nil {
		if err := uc.recorder.RecordBacktest(ctx, &res); err != nil && uc.l != nil {
			uc.l.Warn("record backtest failed", logger.String("pair", res.Pair), logger.Error(err))
		}
	}
	if uc.l != nil {
		uc.l.Info("backtest finished",
			logger.String("pair", res.Pair),
			logger.String("timeframe", res.Timeframe),
			logger.Int("trades", res.Trades),
			logger.Float64("win_rate", res.WinRate),
			logger.Float64("return_pct", res.TotalReturnPct),
			logger.String("source", res.Source))
	}
	return res
}
