package middleware

import (
	"context"
	"fmt"
	"sync"
	"time"

	"FXSignals/internal/domain/models"
	domrepo "FXSignals/internal/domain/repository"
	"FXSignals/pkg/logger"
)

// PublishPipeline sits between the refresher and a downstream publisher.
// It validates batches, suppresses unchanged repeats per pair, and buffers
// batches while downstream is unavailable.
type PublishPipeline struct {
	next        domrepo.Publisher
	metrics     domrepo.Metrics
	l           *logger.Logger
	minInterval time.Duration
	bufCh       chan []models.SignalResult
	stopCh      chan struct{}
	started     bool
	mu          sync.Mutex
	last        map[string]published
	now         func() time.Time
}

type published struct {
	at         time.Time
	typ        models.SignalType
	confidence int
}

type PipelineOption func(*PublishPipeline)

// WithMinInterval sets how long an unchanged signal is suppressed for a pair.
func WithMinInterval(d time.Duration) PipelineOption {
	return func(p *PublishPipeline) {
		if d >= 0 {
			p.minInterval = d
		}
	}
}

// WithBufferSize sets how many failed batches are kept for retry.
func WithBufferSize(n int) PipelineOption {
	return func(p *PublishPipeline) {
		if n > 0 {
			p.bufCh = make(chan []models.SignalResult, n)
		}
	}
}

// WithPipelineLogger sets the logger.
func WithPipelineLogger(l *logger.Logger) PipelineOption {
	return func(p *PublishPipeline) {
		if l != nil {
			p.l = l
		}
	}
}

// NewPublishPipeline wraps next.
func NewPublishPipeline(next domrepo.Publisher, metrics domrepo.Metrics, opts ...PipelineOption) *PublishPipeline {
	p := &PublishPipeline{
		next:        next,
		metrics:     metrics,
		l:           logger.NewNop(),
		minInterval: 5 * time.Minute,
		bufCh:       make(chan []models.SignalResult, 32),
		stopCh:      make(chan struct{}),
		last:        make(map[string]published),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start launches background flushing of buffered batches.
func (p *PublishPipeline) Start(ctx context.Context) {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return
	}
	p.started = true
	p.mu.Unlock()

	go func() {
		backoff := 50 * time.Millisecond
		for {
			select {
			case <-p.stopCh:
				return
			case <-ctx.Done():
				return
			case batch := <-p.bufCh:
				if err := p.next.PublishSignals(ctx, batch); err != nil {
					if backoff < 2*time.Second {
						backoff *= 2
					}
					p.recordError("pipeline_flush")
					p.l.Warn("buffered publish failed", logger.Int("signals", len(batch)), logger.Error(err))
					select {
					case <-time.After(backoff):
					case <-p.stopCh:
						return
					}
					select {
					case p.bufCh <- batch:
					default:
						p.recordError("pipeline_buffer_drop")
					}
				} else {
					backoff = 50 * time.Millisecond
				}
			}
		}
	}()
}

// Stop stops the background flushing. Buffered batches are dropped.
func (p *PublishPipeline) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.started {
		return
	}
	p.started = false
	close(p.stopCh)
}

// PublishSignals forwards the changed part of signals downstream.
// On downstream failure the batch is buffered and the error returned.
func (p *PublishPipeline) PublishSignals(ctx context.Context, signals []models.SignalResult) error {
	batch := make([]models.SignalResult, 0, len(signals))
	for _, s := range signals {
		if err := validateSignal(s); err != nil {
			p.recordError("pipeline_validate")
			p.l.Debug("signal rejected", logger.String("pair", s.Pair), logger.Error(err))
			continue
		}
		if !p.changed(s) {
			continue
		}
		batch = append(batch, s)
	}
	if len(batch) == 0 {
		return nil
	}
	if err := p.next.PublishSignals(ctx, batch); err != nil {
		p.recordError("pipeline_publish")
		select {
		case p.bufCh <- batch:
		default:
			p.recordError("pipeline_buffer_full")
		}
		return fmt.Errorf("pipeline downstream: %w", err)
	}
	return nil
}

// Close stops flushing and closes the downstream publisher.
func (p *PublishPipeline) Close() error {
	p.Stop()
	return p.next.Close()
}

func (p *PublishPipeline) changed(s models.SignalResult) bool {
	now := p.now()
	p.mu.Lock()
	defer p.mu.Unlock()
	key := s.Pair + ":" + s.Timeframe
	prev, ok := p.last[key]
	if ok && prev.typ == s.Type && prev.confidence == s.Confidence && now.Sub(prev.at) < p.minInterval {
		return false
	}
	p.last[key] = published{at: now, typ: s.Type, confidence: s.Confidence}
	return true
}

func (p *PublishPipeline) recordError(kind string) {
	if p.metrics != nil {
		p.metrics.RecordError(kind)
	}
}

func validateSignal(s models.SignalResult) error {
	if s.Pair == "" {
		return fmt.Errorf("pair empty")
	}
	if s.Confidence < 0 || s.Confidence > 100 {
		return fmt.Errorf("confidence out of range: %d", s.Confidence)
	}
	switch s.Type {
	case models.SignalBuy, models.SignalSell, models.SignalHold:
	default:
		return fmt.Errorf("unknown signal type %q", s.Type)
	}
	return nil
}
