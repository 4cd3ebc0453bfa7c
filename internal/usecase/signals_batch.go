package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"FXSignals/internal/domain/models"
	"FXSignals/internal/domain/repository"
	"FXSignals/pkg/logger"
)

// DefaultBatchBudget bounds a whole multi-pair request.
const DefaultBatchBudget = 10 * time.Second

// TimedOutReason is the explanation of a pair that missed the batch budget.
const TimedOutReason = "Timed out"

// Calculator computes one signal. Implemented by SignalCalculator.
type Calculator interface {
	Calculate(ctx context.Context, pair models.Pair, tf repository.Timeframe) (models.SignalResult, error)
}

// SignalsBatch fans pairs out concurrently under a wall-clock budget.
type SignalsBatch struct {
	calc    Calculator
	budget  time.Duration
	metrics repository.Metrics
	l       *logger.Logger
}

// NewSignalsBatch builds a batch runner. A non-positive budget uses DefaultBatchBudget.
func NewSignalsBatch(calc Calculator, budget time.Duration, m repository.Metrics) *SignalsBatch {
	if budget <= 0 {
		budget = DefaultBatchBudget
	}
	return &SignalsBatch{calc: calc, budget: budget, metrics: m}
}

// SetLogger injects a structured logger.
func (uc *SignalsBatch) SetLogger(l *logger.Logger) { uc.l = l }

// Compute returns one result per pair in input order. Pairs that error or miss the
// budget get a Hold fallback. Late computations keep running detached so they still
// warm the series cache.
func (uc *SignalsBatch) Compute(ctx context.Context, pairs []models.Pair, tf repository.Timeframe) []models.SignalResult {
	out := make([]models.SignalResult, len(pairs))
	if len(pairs) == 0 {
		return out
	}

	budgetCtx, cancel := context.WithTimeout(ctx, uc.budget)
	defer cancel()
	work := context.WithoutCancel(ctx)

	type item struct {
		idx int
		res models.SignalResult
		err error
	}
	ch := make(chan item, len(pairs))
	var wg sync.WaitGroup

	for i, p := range pairs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := uc.calc.Calculate(work, p, tf)
			ch <- item{idx: i, res: res, err: err}
		}()
	}
	go func() { wg.Wait(); close(ch) }()

	// ch is buffered for every pair, so late senders never block after we return.
	done := make([]bool, len(pairs))
	remaining := len(pairs)
	for remaining > 0 {
		select {
		case it := <-ch:
			done[it.idx] = true
			remaining--
			if it.err != nil {
				out[it.idx] = models.HoldFallback(pairs[it.idx], tf.String(), fmt.Sprintf("Error: %v", it.err))
				uc.recordError("signal_error")
				if uc.l != nil {
					uc.l.Warn("signal failed", logger.String("pair", pairs[it.idx].String()), logger.Error(it.err))
				}
				continue
			}
			out[it.idx] = it.res
		case <-budgetCtx.Done():
			for i, ok := range done {
				if ok {
					continue
				}
				out[i] = models.HoldFallback(pairs[i], tf.String(), TimedOutReason)
				uc.recordError("signal_timeout")
				if uc.l != nil {
					uc.l.Warn("signal timed out",
						logger.String("pair", pairs[i].String()),
						logger.Duration("budget", uc.budget))
				}
			}
			return out
		}
	}
	return out
}

func (uc *SignalsBatch) recordError(kind string) {
	if uc.metrics != nil {
		uc.metrics.RecordError(kind)
	}
}
