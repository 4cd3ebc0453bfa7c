package levels

import (
	"math"

	"FXSignals/internal/domain/models"
	"FXSignals/internal/domain/repository"
)

// Anchor decides when levels should be rebuilt around the live price instead of the last close.
type Anchor struct {
	Ratio         float64
	ATRMultiplier float64
	FXPips        float64
}

// DefaultAnchor returns ratio 1.2, 5x ATR and 10 pips.
func DefaultAnchor() Anchor {
	return Anchor{Ratio: 1.2, ATRMultiplier: 5, FXPips: 10}
}

// ShouldReanchor reports whether the live price has drifted far enough from the last close.
// Intraday timeframes always re-anchor when a live price exists.
func (a Anchor) ShouldReanchor(pair models.Pair, tf repository.Timeframe, lastClose, current float64, atr *float64, vol float64) bool {
	if current <= 0 {
		return false
	}
	if tf.IsIntraday() {
		return true
	}

	hi, lo := math.Max(current, lastClose), math.Min(current, lastClose)
	if hi/math.Max(1e-8, lo) > a.Ratio {
		return true
	}

	delta := math.Abs(current - lastClose)
	ref := vol
	if atr != nil {
		ref = *atr
	}
	if ref > 0 && delta > a.ATRMultiplier*ref {
		return true
	}

	if !pair.IsCrypto() && delta/pair.PipSize() > a.FXPips {
		return true
	}
	return false
}
