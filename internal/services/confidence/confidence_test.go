package confidence

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"FXSignals/internal/domain/models"
	"FXSignals/internal/services/patterns"
)

func f(v float64) *float64 { return &v }

func bullish(close float64) models.IndicatorBundle {
	return models.IndicatorBundle{LastClose: close, RSI: 50, SMA50: close / 1.1, SMA200: close / 1.1, MACDHist: f(0.01)}
}

func TestScoreWithoutVolatility(t *testing.T) {
	r := Score(Input{Bundle: bullish(110), Fundamentals: 50})
	assert.InDelta(t, 0.8, r.Composite, 1e-12)
	// 68 - 3 low-volatility penalty
	assert.Equal(t, 65, r.Confidence)
	assert.Equal(t, []string{NoteLowVol}, r.Notes)
}

func TestScoreVeryHighCryptoVolatility(t *testing.T) {
	r := Score(Input{Bundle: bullish(100), Volatility: 10, Fundamentals: 50, IsCrypto: true})
	assert.InDelta(t, 0.89, r.Composite, 1e-12)
	assert.Equal(t, []string{NoteVeryHighVol}, r.Notes)
	// 73 - 12 penalty - 5 for ratio above 2%
	assert.Equal(t, 56, r.Confidence)
}

func TestScoreLowForexVolatility(t *testing.T) {
	r := Score(Input{Bundle: bullish(1.0), Volatility: 0.0005, Fundamentals: 50})
	assert.Equal(t, []string{NoteLowVol}, r.Notes)
	assert.Equal(t, 76, r.Confidence)
}

func TestScoreBearishWithPatternBiasClamped(t *testing.T) {
	b := models.IndicatorBundle{LastClose: 90, RSI: 20, SMA50: 100, SMA200: 100, MACDHist: f(-1)}
	r := Score(Input{Bundle: b})
	assert.InDelta(t, 0.15, r.Composite, 1e-12)
	assert.Equal(t, 6, r.Confidence)

	r = Score(Input{Bundle: b, Patterns: patterns.Result{Bear: 0.25}})
	assert.InDelta(t, 0.03, r.Composite, 1e-12)
	assert.Equal(t, 0, r.Confidence)
}

func TestScoreBounds(t *testing.T) {
	r := Score(Input{Bundle: bullish(110), Volatility: 0.22, Fundamentals: 100, Patterns: patterns.Result{Bull: 0.5}})
	assert.Greater(t, r.Composite, 1.0)
	assert.Equal(t, 100, r.Confidence)
	assert.Equal(t, 0.5, macdScore(nil))
}
