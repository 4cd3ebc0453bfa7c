package indicators

import (
	"math"

	"FXSignals/internal/domain/models"
	"FXSignals/internal/domain/repository"
)

const (
	rsiPeriod    = 14
	atrPeriod    = 14
	smaFast      = 50
	smaSlow      = 200
	emaFast      = 20
	emaSlow      = 50
	volWindow    = 50
	neutralRSI   = 50.0
	minEMAInputs = 2
)

// MACDPeriods are the fast, slow and signal EMA lengths of a MACD.
type MACDPeriods struct {
	Fast   int
	Slow   int
	Signal int
}

// Warmup is the number of bars needed before the histogram is defined.
func (p MACDPeriods) Warmup() int { return p.Slow + p.Signal }

// MACDPeriodsFor returns MACD periods tuned to the timeframe. Unknown values use the 1H set.
func MACDPeriodsFor(tf repository.Timeframe) MACDPeriods {
	switch tf {
	case repository.TF1m, repository.TF5m:
		return MACDPeriods{Fast: 5, Slow: 13, Signal: 3}
	case repository.TF15m:
		return MACDPeriods{Fast: 8, Slow: 17, Signal: 5}
	case repository.TF4H:
		return MACDPeriods{Fast: 19, Slow: 39, Signal: 9}
	default:
		return MACDPeriods{Fast: 12, Slow: 26, Signal: 9}
	}
}

// Compute derives the latest indicator values from a series.
// Short input degrades to neutral values rather than failing.
func Compute(s models.PriceSeries, tf repository.Timeframe) models.IndicatorBundle {
	closes := s.Closes
	n := len(closes)
	lc := s.LastClose()

	b := models.IndicatorBundle{
		LastClose: lc,
		RSI:       RSI(closes, rsiPeriod),
		SMA50:     SMA(closes, smaFast),
		SMA200:    SMA(closes, min(smaSlow, n)),
	}
	if n >= minEMAInputs {
		b.EMA20 = EMA(closes, min(emaFast, n))
		b.EMA50 = EMA(closes, min(emaSlow, n))
	}
	line, signal, hist := MACDSeries(closes, MACDPeriodsFor(tf))
	if v, ok := last(hist); ok {
		m, _ := last(line)
		sg, _ := last(signal)
		b.MACD, b.MACDSignal, b.MACDHist = ptr(m), ptr(sg), ptr(v)
	}
	if s.HasHighLow() && n >= 2 {
		if v, ok := last(ATRSeries(s.Highs, s.Lows, closes, min(atrPeriod, n-1))); ok {
			b.ATR = ptr(v)
		}
	}
	return b
}

// SMA is the mean of the last period values, or the last value when there are not enough.
func SMA(values []float64, period int) float64 {
	if len(values) == 0 {
		return 0
	}
	if period <= 0 || len(values) < period {
		return values[len(values)-1]
	}
	var sum float64
	for _, v := range values[len(values)-period:] {
		sum += v
	}
	return sum / float64(period)
}

// EMA returns the latest EMA or nil when it cannot be seeded.
func EMA(values []float64, period int) *float64 {
	if v, ok := last(EMASeries(values, period)); ok {
		return ptr(v)
	}
	return nil
}

// RSI returns the latest Wilder RSI, or 50 on short input.
func RSI(closes []float64, period int) float64 {
	if v, ok := last(RSISeries(closes, period)); ok {
		return v
	}
	return neutralRSI
}

// Volatility is the population standard deviation of absolute close-to-close moves
// over the most recent min(50, n-1) closes. It is 0 when that window has at most one close.
func Volatility(closes []float64) float64 {
	w := min(volWindow, len(closes)-1)
	if w <= 1 {
		return 0
	}
	window := closes[len(closes)-w:]
	moves := make([]float64, 0, w-1)
	for i := 1; i < len(window); i++ {
		moves = append(moves, math.Abs(window[i]-window[i-1]))
	}
	var mean float64
	for _, m := range moves {
		mean += m
	}
	mean /= float64(len(moves))
	var variance float64
	for _, m := range moves {
		variance += (m - mean) * (m - mean)
	}
	return math.Sqrt(variance / float64(len(moves)))
}

func ptr(v float64) *float64 { return &v }
