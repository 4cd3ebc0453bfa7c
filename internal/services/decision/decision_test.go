package decision

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"FXSignals/internal/domain/models"
)

func f(v float64) *float64 { return &v }

func bullBundle() models.IndicatorBundle {
	return models.IndicatorBundle{
		LastClose: 1.30, RSI: 60, SMA50: 1.25, SMA200: 1.0,
		EMA20: f(1.2), EMA50: f(1.1), MACDHist: f(0.001),
	}
}

func bearBundle() models.IndicatorBundle {
	return models.IndicatorBundle{
		LastClose: 0.90, RSI: 40, SMA50: 0.95, SMA200: 1.0,
		EMA20: f(0.92), EMA50: f(0.96), MACDHist: f(-0.001),
	}
}

func TestFundamentalBiasBoundaries(t *testing.T) {
	assert.Equal(t, BiasBull, FundamentalBias(56))
	assert.Equal(t, BiasNeutral, FundamentalBias(55))
	assert.Equal(t, BiasNeutral, FundamentalBias(45))
	assert.Equal(t, BiasBear, FundamentalBias(44))
}

func TestTolerance(t *testing.T) {
	assert.InDelta(t, 0.0011, Tolerance(1.1, nil, 0, false), 1e-12)
	assert.InDelta(t, 0.002, Tolerance(1.1, f(0.01), 0.5, false), 1e-12)
	assert.InDelta(t, 0.1, Tolerance(1.1, nil, 0.5, false), 1e-12)
	assert.InDelta(t, 500, Tolerance(100000, nil, 0, true), 1e-9)
}

func TestEvaluateTechnical(t *testing.T) {
	th := DefaultThresholds()
	assert.Equal(t, models.SignalBuy, EvaluateTechnical(bullBundle(), th).Type)
	assert.Equal(t, models.SignalSell, EvaluateTechnical(bearBundle(), th).Type)

	b := bullBundle()
	b.RSI = 54
	assert.Equal(t, models.SignalHold, EvaluateTechnical(b, th).Type)

	// Without EMAs the trend falls back to close vs SMA50.
	b = bullBundle()
	b.EMA20, b.EMA50 = nil, nil
	assert.True(t, EvaluateTechnical(b, th).TrendUp)
}

func TestDecideRequiresPOIAndBias(t *testing.T) {
	poi := models.PointsOfInterest{DemandZone: &models.Zone{Low: 1.2990, High: 1.3010}}

	assert.Equal(t, models.SignalBuy, Decide(models.SignalBuy, 50, 1.3, nil, 0, false, poi))
	assert.Equal(t, models.SignalHold, Decide(models.SignalBuy, 44, 1.3, nil, 0, false, poi))
	assert.Equal(t, models.SignalHold, Decide(models.SignalBuy, 60, 1.3, nil, 0, false, models.PointsOfInterest{}))

	fib := models.PointsOfInterest{Fibs: []float64{1.3005}}
	assert.Equal(t, models.SignalSell, Decide(models.SignalSell, 50, 1.3, nil, 0, false, fib))
	assert.Equal(t, models.SignalHold, Decide(models.SignalSell, 56, 1.3, nil, 0, false, fib))
	assert.Equal(t, models.SignalHold, Decide(models.SignalHold, 50, 1.3, nil, 0, false, fib))
}

func TestDecideFundamentalBoundariesAtZones(t *testing.T) {
	poi := models.PointsOfInterest{
		DemandZone: &models.Zone{Low: 1.2990, High: 1.3010},
		SupplyZone: &models.Zone{Low: 1.4990, High: 1.5010},
	}
	cases := []struct {
		score    float64
		nearBuy  models.SignalType
		nearSell models.SignalType
	}{
		{56, models.SignalBuy, models.SignalHold},
		{55, models.SignalBuy, models.SignalSell},
		{45, models.SignalBuy, models.SignalSell},
		{44, models.SignalHold, models.SignalSell},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.nearBuy, Decide(models.SignalBuy, tc.score, 1.3, nil, 0, false, poi), "buy at demand, score %v", tc.score)
		assert.Equal(t, tc.nearSell, Decide(models.SignalSell, tc.score, 1.5, nil, 0, false, poi), "sell at supply, score %v", tc.score)
	}

	// Each zone gates only its own side.
	assert.Equal(t, models.SignalHold, Decide(models.SignalSell, 50, 1.3, nil, 0, false, poi))
	assert.Equal(t, models.SignalHold, Decide(models.SignalBuy, 50, 1.5, nil, 0, false, poi))
}

func TestFinalRelaxesHoldIntoBuy(t *testing.T) {
	e := NewEngine(DefaultThresholds(), DefaultRelaxation())
	out := e.Final(Input{Bundle: bullBundle(), Fundamentals: 50})
	assert.Equal(t, models.SignalHold, out.Gated)
	assert.Equal(t, models.SignalBuy, out.Type)
	assert.True(t, out.Relaxed)
}

func TestFinalRelaxesSellOnlyWithoutBullishFundamentals(t *testing.T) {
	e := NewEngine(DefaultThresholds(), DefaultRelaxation())

	out := e.Final(Input{Bundle: bearBundle(), Fundamentals: 55})
	assert.Equal(t, models.SignalSell, out.Type)

	out = e.Final(Input{Bundle: bearBundle(), Fundamentals: 56})
	assert.Equal(t, models.SignalHold, out.Type)
	assert.False(t, out.Relaxed)
}

func TestFinalAtrDrivenHoldToBuy(t *testing.T) {
	// Close sits just outside the zone; a wider ATR pulls it inside tolerance.
	b := bullBundle()
	b.SMA200 = 1.31
	poi := models.PointsOfInterest{DemandZone: &models.Zone{Low: 1.3050, High: 1.3060}}
	e := NewEngine(DefaultThresholds(), DefaultRelaxation())

	assert.Equal(t, models.SignalHold, e.Final(Input{Bundle: b, Fundamentals: 50, POI: poi}).Type)

	b.ATR = f(0.05)
	out := e.Final(Input{Bundle: b, Fundamentals: 50, POI: poi})
	assert.Equal(t, models.SignalBuy, out.Type)
	assert.False(t, out.Relaxed)
}
