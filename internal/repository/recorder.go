package repository

import (
	"context"
	"encoding/json"
	"errors"

	"FXSignals/internal/domain/models"
	"FXSignals/internal/domain/repository"
)

// NopRecorder discards everything. Used when no recorder backend is configured.
type NopRecorder struct{}

func (NopRecorder) RecordSignal(context.Context, *models.SignalResult) error     { return nil }
func (NopRecorder) RecordBacktest(context.Context, *models.BacktestResult) error { return nil }
func (NopRecorder) Close() error                                                 { return nil }

var _ repository.Recorder = NopRecorder{}

// MultiPublisher fans a batch out to every publisher and joins their errors.
type MultiPublisher []repository.Publisher

func (m MultiPublisher) PublishSignals(ctx context.Context, signals []models.SignalResult) error {
	var errs []error
	for _, p := range m {
		if p == nil {
			continue
		}
		if err := p.PublishSignals(ctx, signals); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m MultiPublisher) Close() error {
	var errs []error
	for _, p := range m {
		if p == nil {
			continue
		}
		if err := p.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// tradeLogJSON flattens the trade log for a single text column.
func tradeLogJSON(trades []models.Trade) (string, error) {
	if trades == nil {
		trades = []models.Trade{}
	}
	b, err := json.Marshal(trades)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
