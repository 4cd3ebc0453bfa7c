package levels

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"FXSignals/internal/domain/models"
	"FXSignals/internal/domain/repository"
)

func f(v float64) *float64 { return &v }

func TestComputeGeometryWithATR(t *testing.T) {
	l := Compute(models.SignalBuy, 1.2, f(0.01), 0, false, models.PointsOfInterest{})
	assert.InDelta(t, 1.19, l.StopLoss, 1e-12)
	assert.InDelta(t, 1.22, l.TakeProfit, 1e-12)
	assert.InDelta(t, 2.0, RiskReward(l), 1e-9)

	s := Compute(models.SignalSell, 1.2, f(0.01), 0, false, models.PointsOfInterest{})
	assert.InDelta(t, 1.21, s.StopLoss, 1e-12)
	assert.InDelta(t, 1.18, s.TakeProfit, 1e-12)
}

func TestComputeFallbackDistance(t *testing.T) {
	l := Compute(models.SignalHold, 100, nil, 0, true, models.PointsOfInterest{})
	assert.InDelta(t, 99, l.StopLoss, 1e-12)
	assert.InDelta(t, 102, l.TakeProfit, 1e-12)

	fx := Compute(models.SignalHold, 1.0, nil, 0, false, models.PointsOfInterest{})
	assert.InDelta(t, 0.997, fx.StopLoss, 1e-12)
	assert.InDelta(t, 1.006, fx.TakeProfit, 1e-12)
}

func TestComputeZoneWidening(t *testing.T) {
	p := models.PointsOfInterest{
		DemandZone: &models.Zone{Low: 1.15, High: 1.152},
		SupplyZone: &models.Zone{Low: 1.25, High: 1.26},
	}
	// tol = max(0.2*0.01, 1.2*0.001) = 0.002
	l := Compute(models.SignalBuy, 1.2, f(0.01), 0, false, p)
	assert.InDelta(t, 1.148, l.StopLoss, 1e-12)
	assert.InDelta(t, 1.262, l.TakeProfit, 1e-12)

	s := Compute(models.SignalSell, 1.2, f(0.01), 0, false, p)
	assert.InDelta(t, 1.262, s.StopLoss, 1e-12)
	assert.InDelta(t, 1.148, s.TakeProfit, 1e-12)

	h := Compute(models.SignalHold, 1.2, f(0.01), 0, false, p)
	assert.InDelta(t, 1.19, h.StopLoss, 1e-12)
	assert.InDelta(t, 1.22, h.TakeProfit, 1e-12)
}

func TestClassifyRisk(t *testing.T) {
	assert.Equal(t, models.RiskLow, ClassifyRisk(0.004))
	assert.Equal(t, models.RiskMedium, ClassifyRisk(0.005))
	assert.Equal(t, models.RiskMedium, ClassifyRisk(0.0149))
	assert.Equal(t, models.RiskHigh, ClassifyRisk(0.015))
}

func TestShouldReanchor(t *testing.T) {
	a := DefaultAnchor()
	eur := models.MustPair("EUR/USD")
	btc := models.MustPair("BTC/USD")
	jpy := models.MustPair("USD/JPY")

	assert.False(t, a.ShouldReanchor(eur, repository.TF1H, 1.1, 0, nil, 0))
	assert.True(t, a.ShouldReanchor(eur, repository.TF1H, 1.1, 1.1, nil, 0))

	// Daily: 5 pips is below every threshold.
	assert.False(t, a.ShouldReanchor(eur, repository.TF1D, 1.1000, 1.1005, f(0.01), 0))
	// 20 pips trips the FX pip rule.
	assert.True(t, a.ShouldReanchor(eur, repository.TF1D, 1.1000, 1.1020, f(0.01), 0))
	// Yen pips are 0.01: a 0.05 move is 5 pips.
	assert.False(t, a.ShouldReanchor(jpy, repository.TF1D, 150.00, 150.05, f(0.5), 0))

	// Crypto ignores pips but honours the ATR multiple and the ratio.
	assert.False(t, a.ShouldReanchor(btc, repository.TF1D, 60000, 60400, f(100), 0))
	assert.True(t, a.ShouldReanchor(btc, repository.TF1D, 60000, 60600, f(100), 0))
	assert.True(t, a.ShouldReanchor(btc, repository.TF1D, 60000, 80000, nil, 0))
}
