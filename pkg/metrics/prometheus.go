package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	providerAttempts *prometheus.CounterVec
	providerLatency  *prometheus.HistogramVec
	cacheLookups     *prometheus.CounterVec
	signalsTotal     *prometheus.CounterVec
	signalConfidence *prometheus.GaugeVec
	backtestTrades   *prometheus.GaugeVec
	backtestReturn   *prometheus.GaugeVec
	errorsTotal      *prometheus.CounterVec
}

// New creates a recorder registered on the default Prometheus registry.
func New() *Recorder {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates a recorder registered on reg.
func NewWithRegistry(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		providerAttempts: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fxsignals_provider_attempts_total",
				Help: "Historical data provider attempts by outcome",
			},
			[]string{"provider", "outcome"},
		),
		providerLatency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fxsignals_provider_duration_seconds",
				Help:    "Duration of provider attempts in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 3.5, 5},
			},
			[]string{"provider"},
		),
		cacheLookups: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fxsignals_cache_lookups_total",
				Help: "Cache lookups by cache kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		signalsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fxsignals_signals_total",
				Help: "Signals computed by pair, timeframe and type",
			},
			[]string{"pair", "timeframe", "type"},
		),
		signalConfidence: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "fxsignals_signal_confidence",
				Help: "Confidence of the latest signal for a pair",
			},
			[]string{"pair", "timeframe"},
		),
		backtestTrades: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "fxsignals_backtest_trades",
				Help: "Trade count of the latest backtest run",
			},
			[]string{"pair", "timeframe"},
		),
		backtestReturn: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "fxsignals_backtest_return_pct",
				Help: "Total return percent of the latest backtest run",
			},
			[]string{"pair", "timeframe"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fxsignals_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
	}
}

// RecordProviderAttempt records one provider call and its latency.
func (r *Recorder) RecordProviderAttempt(provider, outcome string, seconds float64) {
	r.providerAttempts.WithLabelValues(provider, outcome).Inc()
	r.providerLatency.WithLabelValues(provider).Observe(seconds)
}

// RecordCache records a cache hit, miss or stale read.
func (r *Recorder) RecordCache(kind, outcome string) {
	r.cacheLookups.WithLabelValues(kind, outcome).Inc()
}

// RecordSignal records a computed signal.
func (r *Recorder) RecordSignal(pair, timeframe, signalType string, confidence int) {
	r.signalsTotal.WithLabelValues(pair, timeframe, signalType).Inc()
	r.signalConfidence.WithLabelValues(pair, timeframe).Set(float64(confidence))
}

// RecordBacktest records the outcome of a backtest run.
func (r *Recorder) RecordBacktest(pair, timeframe string, trades int, returnPct float64) {
	r.backtestTrades.WithLabelValues(pair, timeframe).Set(float64(trades))
	r.backtestReturn.WithLabelValues(pair, timeframe).Set(returnPct)
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// Nop discards all measurements.
type Nop struct{}

func (Nop) RecordProviderAttempt(string, string, float64) {}
func (Nop) RecordCache(string, string)                    {}
func (Nop) RecordSignal(string, string, string, int)      {}
func (Nop) RecordBacktest(string, string, int, float64)   {}
func (Nop) RecordError(string)                            {}

