package backtest

import (
	"math"

	"FXSignals/internal/domain/models"
	"FXSignals/internal/domain/repository"
	"FXSignals/internal/services/indicators"
	"FXSignals/pkg/util"
)

const (
	smaPeriod      = 50
	rsiPeriod      = 14
	atrProxyPeriod = 14
)

// Config holds the position management parameters.
type Config struct {
	InitialCapital    float64
	CryptoRiskPct     float64
	ForexRiskPct      float64
	RewardMultiple    float64
	TrailMultiple     float64
	BreakevenFraction float64
	MaxBars           int
}

// DefaultConfig returns 10000 capital, 1%/0.3% risk, 2R target, 1.5x trail, 0.5R breakeven and 50 bars.
func DefaultConfig() Config {
	return Config{
		InitialCapital:    10000,
		CryptoRiskPct:     0.01,
		ForexRiskPct:      0.003,
		RewardMultiple:    2,
		TrailMultiple:     1.5,
		BreakevenFraction: 0.5,
		MaxBars:           50,
	}
}

// Phase is the simulator state machine phase.
type Phase int

const (
	Flat Phase = iota
	InPosition
)

func (p Phase) String() string {
	if p == InPosition {
		return "in_position"
	}
	return "flat"
}

// Bar is one step of input to the state machine.
type Bar struct {
	Index    int
	Price    float64
	Signal   models.SignalType
	ATRProxy float64 // trailing distance only, 0 when unavailable
}

// State is the full simulator state between bars.
type State struct {
	Phase    Phase
	Position *models.Position
	Equity   float64
	Peak     float64
	MaxDD    float64
	Trades   int
	Wins     int
	Log      []models.Trade
}

// NewState starts flat with the given capital.
func NewState(capital float64) State {
	return State{Phase: Flat, Equity: capital, Peak: capital, Log: []models.Trade{}}
}

// Simulator runs the signal-driven position state machine.
type Simulator struct {
	cfg      Config
	isCrypto bool
}

// NewSimulator creates a simulator for one asset class.
func NewSimulator(cfg Config, isCrypto bool) *Simulator {
	return &Simulator{cfg: cfg, isCrypto: isCrypto}
}

// Step applies one bar to s and returns the next state. The input state's position is not mutated.
func (sim *Simulator) Step(s State, bar Bar) State {
	switch s.Phase {
	case Flat:
		if bar.Signal == models.SignalBuy || bar.Signal == models.SignalSell {
			s.Position = sim.open(bar)
			s.Phase = InPosition
		}
		return s
	case InPosition:
		pos := *s.Position
		pos.AgeInBars++
		sim.manage(&pos, bar)
		if reason, ok := sim.exitReason(pos, bar); ok {
			return sim.close(s, pos, bar, reason)
		}
		s.Position = &pos
		return s
	}
	return s
}

func (sim *Simulator) open(bar Bar) *models.Position {
	riskPct := sim.cfg.ForexRiskPct
	if sim.isCrypto {
		riskPct = sim.cfg.CryptoRiskPct
	}
	risk := bar.Price * riskPct
	p := &models.Position{Entry: bar.Price, EntryIndex: bar.Index, RiskUnit: risk}
	if bar.Signal == models.SignalSell {
		p.Side = models.SideShort
		p.StopLoss = bar.Price + risk
		p.TakeProfit = bar.Price - sim.cfg.RewardMultiple*risk
	} else {
		p.Side = models.SideLong
		p.StopLoss = bar.Price - risk
		p.TakeProfit = bar.Price + sim.cfg.RewardMultiple*risk
	}
	p.InitialStop = p.StopLoss
	return p
}

// manage trails the stop and moves it to breakeven. Stops only ever tighten.
func (sim *Simulator) manage(p *models.Position, bar Bar) {
	long := p.Side == models.SideLong
	if bar.ATRProxy > 0 {
		if long {
			if c := bar.Price - sim.cfg.TrailMultiple*bar.ATRProxy; c > p.StopLoss {
				p.StopLoss, p.TrailingActive = c, true
			}
		} else {
			if c := bar.Price + sim.cfg.TrailMultiple*bar.ATRProxy; c < p.StopLoss {
				p.StopLoss, p.TrailingActive = c, true
			}
		}
	}

	if p.BreakevenApplied {
		return
	}
	unrealized := bar.Price - p.Entry
	if !long {
		unrealized = -unrealized
	}
	if unrealized >= sim.cfg.BreakevenFraction*p.RiskUnit {
		if long {
			p.StopLoss = math.Max(p.StopLoss, p.Entry)
		} else {
			p.StopLoss = math.Min(p.StopLoss, p.Entry)
		}
		p.BreakevenApplied = true
	}
}

func (sim *Simulator) exitReason(p models.Position, bar Bar) (models.ExitReason, bool) {
	long := p.Side == models.SideLong
	switch {
	case long && bar.Signal == models.SignalSell, !long && bar.Signal == models.SignalBuy:
		return models.ExitOppositeSignal, true
	case long && bar.Price <= p.StopLoss, !long && bar.Price >= p.StopLoss:
		switch {
		case p.StopLoss == p.InitialStop:
			return models.ExitStopLoss, true
		case p.BreakevenApplied && p.StopLoss == p.Entry:
			return models.ExitBreakeven, true
		case p.TrailingActive:
			return models.ExitTrailingStop, true
		default:
			return models.ExitStopLoss, true
		}
	case long && bar.Price >= p.TakeProfit, !long && bar.Price <= p.TakeProfit:
		return models.ExitTakeProfit, true
	case sim.cfg.MaxBars > 0 && p.AgeInBars >= sim.cfg.MaxBars:
		return models.ExitMaxAge, true
	}
	return "", false
}

func (sim *Simulator) close(s State, p models.Position, bar Bar, reason models.ExitReason) State {
	ret := p.Return(bar.Price)
	s.Equity *= 1 + ret
	s.Trades++
	if ret > 0 {
		s.Wins++
	}
	s.Log = append(s.Log, models.Trade{
		Side:       p.Side,
		EntryIndex: p.EntryIndex,
		ExitIndex:  bar.Index,
		Entry:      p.Entry,
		Exit:       bar.Price,
		ReturnPct:  ret * 100,
		BarsHeld:   p.AgeInBars,
		Reason:     reason,
	})
	s.Phase, s.Position = Flat, nil
	s.Peak = math.Max(s.Peak, s.Equity)
	if s.Peak > 0 {
		s.MaxDD = math.Max(s.MaxDD, (s.Peak-s.Equity)/s.Peak*100)
	}
	return s
}

// Warmup is the first bar index evaluated for a timeframe.
func Warmup(tf repository.Timeframe) int {
	return max(smaPeriod, rsiPeriod, indicators.MACDPeriodsFor(tf).Warmup())
}

// BarSignal applies the backtest entry rules. NaN indicators fall back to neutral values.
func BarSignal(px, sma, rsi, hist float64) models.SignalType {
	if math.IsNaN(sma) {
		sma = px
	}
	if math.IsNaN(rsi) {
		rsi = 50
	}
	if math.IsNaN(hist) {
		hist = 0
	}
	switch {
	case px > sma && rsi < 60 && hist > 0:
		return models.SignalBuy
	case px < sma && rsi > 40 && hist < 0:
		return models.SignalSell
	}
	return models.SignalHold
}

// Run simulates the whole series and summarizes it. An open position is closed at the last bar;
// that close counts toward the final equity but not toward the per-bar curve or its drawdown.
func (sim *Simulator) Run(pair models.Pair, tf repository.Timeframe, series models.PriceSeries) models.BacktestResult {
	closes := series.Closes
	res := models.BacktestResult{
		Pair:           pair.String(),
		Timeframe:      tf.String(),
		InitialCapital: sim.cfg.InitialCapital,
		Source:         series.Source,
		EquityCurve:    []float64{},
		TradeLog:       []models.Trade{},
	}

	sma := indicators.SMASeries(closes, smaPeriod)
	rsi := indicators.RSISeries(closes, rsiPeriod)
	_, _, hist := indicators.MACDSeries(closes, indicators.MACDPeriodsFor(tf))
	atr := indicators.MeanAbsDeltaSeries(closes, atrProxyPeriod)

	st := NewState(sim.cfg.InitialCapital)
	var lastBar Bar
	for i := Warmup(tf); i < len(closes); i++ {
		bar := Bar{Index: i, Price: closes[i], Signal: BarSignal(closes[i], sma[i], rsi[i], hist[i])}
		if util.Finite(atr[i]) {
			bar.ATRProxy = atr[i]
		}
		st = sim.Step(st, bar)
		res.EquityCurve = append(res.EquityCurve, st.Equity)
		lastBar = bar
	}
	res.MaxDrawdownPct = st.MaxDD
	if st.Phase == InPosition {
		st = sim.close(st, *st.Position, lastBar, models.ExitEndOfSeries)
	}

	res.Trades = st.Trades
	res.Wins = st.Wins
	if st.Trades > 0 {
		res.WinRate = float64(st.Wins) / float64(st.Trades) * 100
	}
	res.FinalEquity = st.Equity
	if sim.cfg.InitialCapital > 0 {
		res.TotalReturnPct = (st.Equity/sim.cfg.InitialCapital - 1) * 100
	}
	res.TradeLog = st.Log
	return res
}
