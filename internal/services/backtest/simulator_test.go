package backtest

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FXSignals/internal/domain/models"
	"FXSignals/internal/domain/repository"
)

var eurusd = models.MustPair("EUR/USD")

func TestRunFlatSeriesHasNoTrades(t *testing.T) {
	closes := make([]float64, 200)
	for i := range closes {
		closes[i] = 1.1
	}
	res := NewSimulator(DefaultConfig(), false).Run(eurusd, repository.TF1H, models.PriceSeries{Closes: closes})

	assert.Equal(t, 0, res.Trades)
	assert.Equal(t, 0.0, res.WinRate)
	assert.Equal(t, 0.0, res.MaxDrawdownPct)
	assert.Len(t, res.EquityCurve, 200-Warmup(repository.TF1H))
	assert.Equal(t, 10000.0, res.FinalEquity)
	assert.Empty(t, res.TradeLog)
}

func TestRunUptrendForceClosesAtFinalClose(t *testing.T) {
	// Zigzag uptrend: +1.2 then -1.0 keeps RSI below 60 while price stays above SMA50.
	closes := []float64{100}
	for i := 1; i < 240; i++ {
		step := 1.2
		if i%2 == 0 {
			step = -1.0
		}
		closes = append(closes, closes[i-1]+step)
	}
	cfg := DefaultConfig()
	cfg.ForexRiskPct = 0.02
	cfg.RewardMultiple = 1000
	cfg.MaxBars = 10000

	res := NewSimulator(cfg, false).Run(eurusd, repository.TF1H, models.PriceSeries{Closes: closes})

	require.Equal(t, 1, res.Trades)
	require.Len(t, res.TradeLog, 1)
	trade := res.TradeLog[0]
	assert.Equal(t, models.SideLong, trade.Side)
	assert.Equal(t, models.ExitEndOfSeries, trade.Reason)
	assert.Equal(t, closes[len(closes)-1], trade.Exit)
	assert.Equal(t, 1, res.Wins)
	assert.Equal(t, 100.0, res.WinRate)
	assert.Greater(t, res.TotalReturnPct, 0.0)
	// The forced close settles final equity but is not a processed bar.
	assert.Equal(t, 10000.0, res.EquityCurve[len(res.EquityCurve)-1])
	assert.Greater(t, res.FinalEquity, 10000.0)
	assert.Equal(t, 0.0, res.MaxDrawdownPct)
}

func TestRunDrawdownExcludesForcedClose(t *testing.T) {
	// Zigzag downtrend: the short opened after warmup is still open at the end, then the series spikes up.
	closes := []float64{200}
	for i := 1; i < 240; i++ {
		step := -1.2
		if i%2 == 0 {
			step = 1.0
		}
		closes = append(closes, closes[i-1]+step)
	}
	closes[len(closes)-1] += 40
	cfg := DefaultConfig()
	cfg.ForexRiskPct = 0.5
	cfg.TrailMultiple = 1000
	cfg.BreakevenFraction = 1000
	cfg.RewardMultiple = 1000
	cfg.MaxBars = 10000

	res := NewSimulator(cfg, false).Run(eurusd, repository.TF1H, models.PriceSeries{Closes: closes})

	require.NotEmpty(t, res.TradeLog)
	last := res.TradeLog[len(res.TradeLog)-1]
	require.Equal(t, models.ExitEndOfSeries, last.Reason)
	assert.Less(t, res.FinalEquity, res.EquityCurve[len(res.EquityCurve)-1])
	peak := 10000.0
	dd := 0.0
	for _, e := range res.EquityCurve {
		peak = math.Max(peak, e)
		dd = math.Max(dd, (peak-e)/peak*100)
	}
	assert.InDelta(t, dd, res.MaxDrawdownPct, 1e-9)
}

func TestStepOpensAndStopsOut(t *testing.T) {
	sim := NewSimulator(DefaultConfig(), false)
	st := NewState(10000)

	st = sim.Step(st, Bar{Index: 0, Price: 1.0, Signal: models.SignalBuy})
	require.Equal(t, InPosition, st.Phase)
	assert.InDelta(t, 0.997, st.Position.StopLoss, 1e-12)
	assert.InDelta(t, 1.006, st.Position.TakeProfit, 1e-12)

	before := st
	st = sim.Step(st, Bar{Index: 1, Price: 0.996, Signal: models.SignalHold})
	assert.Equal(t, Flat, st.Phase)
	assert.Equal(t, 1, st.Trades)
	assert.Equal(t, 0, st.Wins)
	assert.Equal(t, models.ExitStopLoss, st.Log[0].Reason)
	assert.InDelta(t, 10000*(1-0.004), st.Equity, 1e-9)
	assert.InDelta(t, 0.4, st.MaxDD, 1e-9)
	assert.Equal(t, 0, before.Position.AgeInBars, "step must not mutate the prior state")
}

func TestStepShortTakeProfitAndOpposite(t *testing.T) {
	sim := NewSimulator(DefaultConfig(), true)

	st := sim.Step(NewState(10000), Bar{Price: 100, Signal: models.SignalSell})
	require.Equal(t, models.SideShort, st.Position.Side)
	st = sim.Step(st, Bar{Index: 1, Price: 97.9})
	assert.Equal(t, models.ExitTakeProfit, st.Log[0].Reason)
	assert.Equal(t, 1, st.Wins)

	st = sim.Step(st, Bar{Index: 2, Price: 100, Signal: models.SignalSell})
	st = sim.Step(st, Bar{Index: 3, Price: 100.5, Signal: models.SignalBuy})
	assert.Equal(t, models.ExitOppositeSignal, st.Log[1].Reason)
	assert.Equal(t, Flat, st.Phase)
}

func TestStepSizesByRiskPercentNotATR(t *testing.T) {
	st := NewSimulator(DefaultConfig(), false).Step(NewState(10000), Bar{Price: 1.0, Signal: models.SignalBuy, ATRProxy: 0.0001})
	require.Equal(t, InPosition, st.Phase)
	assert.InDelta(t, 0.003, st.Position.RiskUnit, 1e-12)
	assert.InDelta(t, 0.997, st.Position.StopLoss, 1e-12)
	assert.InDelta(t, 1.006, st.Position.TakeProfit, 1e-12)

	st = NewSimulator(DefaultConfig(), true).Step(NewState(10000), Bar{Price: 100, Signal: models.SignalSell, ATRProxy: 5})
	assert.InDelta(t, 101, st.Position.StopLoss, 1e-9)
	assert.InDelta(t, 98, st.Position.TakeProfit, 1e-9)
}

func TestStepBreakeven(t *testing.T) {
	sim := NewSimulator(DefaultConfig(), false)
	st := sim.Step(NewState(10000), Bar{Price: 1.0, Signal: models.SignalBuy, ATRProxy: 0.01})
	require.InDelta(t, 0.997, st.Position.StopLoss, 1e-12)

	// The trail candidate 0.991 is looser than the stop; +0.006 crosses half a risk unit and lifts it to entry.
	st = sim.Step(st, Bar{Index: 1, Price: 1.006, ATRProxy: 0.01})
	require.Equal(t, InPosition, st.Phase)
	assert.False(t, st.Position.TrailingActive)
	assert.True(t, st.Position.BreakevenApplied)
	assert.InDelta(t, 1.0, st.Position.StopLoss, 1e-12)

	st = sim.Step(st, Bar{Index: 2, Price: 0.9995})
	assert.Equal(t, models.ExitBreakeven, st.Log[0].Reason)
}

func TestStepTrailingStop(t *testing.T) {
	sim := NewSimulator(DefaultConfig(), false)
	st := sim.Step(NewState(10000), Bar{Price: 1.0, Signal: models.SignalBuy, ATRProxy: 0.001})

	st = sim.Step(st, Bar{Index: 1, Price: 1.004, ATRProxy: 0.001})
	require.Equal(t, InPosition, st.Phase)
	assert.True(t, st.Position.TrailingActive)
	assert.InDelta(t, 1.0025, st.Position.StopLoss, 1e-12)

	// A looser candidate never widens the stop.
	st = sim.Step(st, Bar{Index: 2, Price: 1.003, ATRProxy: 0.002})
	require.Equal(t, InPosition, st.Phase)
	assert.InDelta(t, 1.0025, st.Position.StopLoss, 1e-12)

	st = sim.Step(st, Bar{Index: 3, Price: 1.002})
	assert.Equal(t, models.ExitTrailingStop, st.Log[0].Reason)
}

func TestStepMaxAge(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxBars = 2
	sim := NewSimulator(cfg, false)
	st := sim.Step(NewState(10000), Bar{Price: 1.0, Signal: models.SignalBuy})
	st = sim.Step(st, Bar{Index: 1, Price: 1.0})
	require.Equal(t, InPosition, st.Phase)
	st = sim.Step(st, Bar{Index: 2, Price: 1.0})
	assert.Equal(t, models.ExitMaxAge, st.Log[0].Reason)
	assert.Equal(t, 0, st.Wins)
}

func TestBarSignalNeutralFallbacks(t *testing.T) {
	nan := math.NaN()
	assert.Equal(t, models.SignalHold, BarSignal(1, nan, nan, nan))
	assert.Equal(t, models.SignalBuy, BarSignal(1.1, 1.0, 55, 0.1))
	assert.Equal(t, models.SignalSell, BarSignal(0.9, 1.0, 45, -0.1))
	assert.Equal(t, models.SignalHold, BarSignal(1.1, 1.0, 65, 0.1))
}
