package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"FXSignals/internal/domain/models"
	pkgch "FXSignals/pkg/clickhouse"
)

// ClickHouseSchema creates the analytics tables for recorded signals and backtests.
var ClickHouseSchema = []string{
	`CREATE TABLE IF NOT EXISTS fx_signal_snapshots (
		ts DateTime64(3),
		pair LowCardinality(String),
		timeframe LowCardinality(String),
		signal_type LowCardinality(String),
		confidence UInt8,
		current_price Float64,
		buy_level Float64,
		stop_loss Float64,
		take_profit Float64,
		risk_reward Float64,
		volatility_pct Float64,
		composite_score Int32,
		fundamental Float64,
		stale UInt8,
		source LowCardinality(String)
	) ENGINE = MergeTree ORDER BY (pair, timeframe, ts) TTL toDateTime(ts) + INTERVAL 90 DAY`,
	`CREATE TABLE IF NOT EXISTS fx_backtest_runs (
		ts DateTime64(3),
		pair LowCardinality(String),
		timeframe LowCardinality(String),
		trades UInt32,
		wins UInt32,
		win_rate Float64,
		total_return_pct Float64,
		max_drawdown_pct Float64,
		initial_capital Float64,
		final_equity Float64,
		source LowCardinality(String),
		trade_log String
	) ENGINE = MergeTree ORDER BY (pair, timeframe, ts)`,
}

// ClickHouseRecorder writes snapshots into ClickHouse.
type ClickHouseRecorder struct {
	client *pkgch.Client
	db     *sql.DB
	now    func() time.Time
}

// NewClickHouseRecorder ensures the schema exists and returns the recorder.
func NewClickHouseRecorder(ctx context.Context, client *pkgch.Client) (*ClickHouseRecorder, error) {
	if err := client.InitSchema(ctx, ClickHouseSchema); err != nil {
		return nil, fmt.Errorf("init clickhouse schema: %w", err)
	}
	return &ClickHouseRecorder{client: client, db: client.DB(), now: time.Now}, nil
}

func (r *ClickHouseRecorder) RecordSignal(ctx context.Context, s *models.SignalResult) error {
	if s == nil {
		return nil
	}
	_, err := r.db.ExecContext(ctx, `INSERT INTO fx_signal_snapshots
		(ts, pair, timeframe, signal_type, confidence, current_price, buy_level, stop_loss,
		 take_profit, risk_reward, volatility_pct, composite_score, fundamental, stale, source)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.now(), s.Pair, s.Timeframe, string(s.Type), uint8(s.Confidence), s.CurrentPrice,
		s.BuyLevel, s.StopLoss, s.TakeProfit, s.RiskReward, s.VolatilityPct,
		int32(s.CompositeScore), s.FundamentalScore, uint8(boolToInt(s.Stale)), s.DebugSource,
	)
	if err != nil {
		return fmt.Errorf("insert signal snapshot: %w", err)
	}
	return nil
}

func (r *ClickHouseRecorder) RecordBacktest(ctx context.Context, b *models.BacktestResult) error {
	if b == nil {
		return nil
	}
	log, err := tradeLogJSON(b.TradeLog)
	if err != nil {
		return fmt.Errorf("marshal trade log: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `INSERT INTO fx_backtest_runs
		(ts, pair, timeframe, trades, wins, win_rate, total_return_pct, max_drawdown_pct,
		 initial_capital, final_equity, source, trade_log)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.now(), b.Pair, b.Timeframe, uint32(b.Trades), uint32(b.Wins), b.WinRate, b.TotalReturnPct,
		b.MaxDrawdownPct, b.InitialCapital, b.FinalEquity, b.Source, log,
	)
	if err != nil {
		return fmt.Errorf("insert backtest run: %w", err)
	}
	return nil
}

func (r *ClickHouseRecorder) Close() error {
	return r.client.Close()
}
