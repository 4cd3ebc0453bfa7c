package repository

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"FXSignals/internal/domain/models"
	"FXSignals/pkg/logger"
)

// SQLiteRecorder keeps signal snapshots and backtest runs in a local SQLite file.
type SQLiteRecorder struct {
	db  *sql.DB
	mu  sync.Mutex
	now func() time.Time
	l   *logger.Logger
}

// NewSQLiteRecorder opens (or creates) the database and runs migrations.
func NewSQLiteRecorder(path string, l *logger.Logger) (*SQLiteRecorder, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if l == nil {
		l = logger.NewNop()
	}
	r := &SQLiteRecorder{db: db, now: time.Now, l: l}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	l.Info("sqlite recorder opened", logger.String("path", path))
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS signal_snapshots (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			recorded_at     INTEGER NOT NULL,
			pair            TEXT NOT NULL,
			timeframe       TEXT NOT NULL,
			signal_type     TEXT NOT NULL,
			confidence      INTEGER,
			current_price   REAL,
			last_close      REAL,
			buy_level       REAL,
			stop_loss       REAL,
			take_profit     REAL,
			risk_reward     REAL,
			risk_category   TEXT,
			volatility_pct  REAL,
			composite_score INTEGER,
			fundamental     REAL,
			stale           INTEGER,
			source          TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_signal_pair_ts ON signal_snapshots(pair, recorded_at)`,
		`CREATE TABLE IF NOT EXISTS backtest_runs (
			id               INTEGER PRIMARY KEY AUTOINCREMENT,
			recorded_at      INTEGER NOT NULL,
			pair             TEXT NOT NULL,
			timeframe        TEXT NOT NULL,
			trades           INTEGER,
			wins             INTEGER,
			win_rate         REAL,
			total_return_pct REAL,
			max_drawdown_pct REAL,
			initial_capital  REAL,
			final_equity     REAL,
			source           TEXT,
			trade_log        TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_backtest_pair_ts ON backtest_runs(pair, recorded_at)`,
	}
	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordSignal(ctx context.Context, s *models.SignalResult) error {
	if s == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	_, err := r.db.ExecContext(ctx, `INSERT INTO signal_snapshots
		(recorded_at, pair, timeframe, signal_type, confidence, current_price, last_close,
		 buy_level, stop_loss, take_profit, risk_reward, risk_category, volatility_pct,
		 composite_score, fundamental, stale, source)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.now().Unix(), s.Pair, s.Timeframe, string(s.Type), s.Confidence, s.CurrentPrice, s.LastClose,
		s.BuyLevel, s.StopLoss, s.TakeProfit, s.RiskReward, string(s.RiskCategory), s.VolatilityPct,
		s.CompositeScore, s.FundamentalScore, boolToInt(s.Stale), s.DebugSource,
	)
	if err != nil {
		return fmt.Errorf("insert signal snapshot: %w", err)
	}
	return nil
}

func (r *SQLiteRecorder) RecordBacktest(ctx context.Context, b *models.BacktestResult) error {
	if b == nil {
		return nil
	}
	log, err := tradeLogJSON(b.TradeLog)
	if err != nil {
		return fmt.Errorf("marshal trade log: %w", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	_, err = r.db.ExecContext(ctx, `INSERT INTO backtest_runs
		(recorded_at, pair, timeframe, trades, wins, win_rate, total_return_pct,
		 max_drawdown_pct, initial_capital, final_equity, source, trade_log)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.now().Unix(), b.Pair, b.Timeframe, b.Trades, b.Wins, b.WinRate, b.TotalReturnPct,
		b.MaxDrawdownPct, b.InitialCapital, b.FinalEquity, b.Source, log,
	)
	if err != nil {
		return fmt.Errorf("insert backtest run: %w", err)
	}
	return nil
}

// SignalCount returns how many snapshots were recorded for pair.
func (r *SQLiteRecorder) SignalCount(ctx context.Context, pair string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM signal_snapshots WHERE pair = ?`, pair).Scan(&n)
	return n, err
}

func (r *SQLiteRecorder) Close() error {
	return r.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
