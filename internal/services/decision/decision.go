package decision

import (
	"math"

	"FXSignals/internal/domain/models"
)

// Bias is the directional lean taken from the fundamentals score.
type Bias string

const (
	BiasBull    Bias = "bull"
	BiasBear    Bias = "bear"
	BiasNeutral Bias = "neutral"
)

// Thresholds gate the raw technical signal.
type Thresholds struct {
	RSIBuy      float64
	RSISell     float64
	MACDConfirm float64
}

// DefaultThresholds returns RSI 55/45 with a zero MACD confirmation.
func DefaultThresholds() Thresholds {
	return Thresholds{RSIBuy: 55, RSISell: 45, MACDConfirm: 0}
}

// Relaxation controls when a Hold is promoted back to the raw technical direction.
type Relaxation struct {
	SellRSIGrace        float64
	BuyRSIGrace         float64
	SellTrendFactor     float64
	BuyTrendFactor      float64
	BullishFundamentals float64
}

// DefaultRelaxation returns the stock relaxation thresholds.
func DefaultRelaxation() Relaxation {
	return Relaxation{
		SellRSIGrace:        5,
		BuyRSIGrace:         2,
		SellTrendFactor:     0.9995,
		BuyTrendFactor:      1.0005,
		BullishFundamentals: 56,
	}
}

// Technical is the raw indicator verdict before POI and fundamentals gating.
type Technical struct {
	Type      models.SignalType
	TrendUp   bool
	TrendDown bool
}

// TrendUp compares EMA20 with EMA50 when both exist, else the last close with SMA50.
func TrendUp(b models.IndicatorBundle) bool {
	if b.EMA20 != nil && b.EMA50 != nil {
		return *b.EMA20 > *b.EMA50
	}
	return b.LastClose > b.SMA50
}

// TrendDown mirrors TrendUp.
func TrendDown(b models.IndicatorBundle) bool {
	if b.EMA20 != nil && b.EMA50 != nil {
		return *b.EMA20 < *b.EMA50
	}
	return b.LastClose < b.SMA50
}

// EvaluateTechnical classifies the bundle as Buy, Sell or Hold from trend, RSI and MACD.
func EvaluateTechnical(b models.IndicatorBundle, th Thresholds) Technical {
	t := Technical{Type: models.SignalHold, TrendUp: TrendUp(b), TrendDown: TrendDown(b)}
	hist := b.Hist()
	switch {
	case t.TrendUp && b.RSI >= th.RSIBuy && hist >= th.MACDConfirm:
		t.Type = models.SignalBuy
	case t.TrendDown && b.RSI <= th.RSISell && hist <= -th.MACDConfirm:
		t.Type = models.SignalSell
	}
	return t
}

// FundamentalBias maps a 0..100 score to bull above 55, bear below 45, else neutral.
func FundamentalBias(score float64) Bias {
	switch {
	case score > 55:
		return BiasBull
	case score < 45:
		return BiasBear
	default:
		return BiasNeutral
	}
}

// Tolerance is the proximity band used for POI checks.
func Tolerance(lastClose float64, atr *float64, vol float64, isCrypto bool) float64 {
	base := vol
	if atr != nil {
		base = *atr
	}
	floor := 0.001
	if isCrypto {
		floor = 0.005
	}
	return math.Max(base*0.2, lastClose*floor)
}

// Decide gates the technical verdict by POI proximity and fundamental bias.
func Decide(tech models.SignalType, fundScore, lastClose float64, atr *float64, vol float64, isCrypto bool, p models.PointsOfInterest) models.SignalType {
	tol := Tolerance(lastClose, atr, vol, isCrypto)
	bias := FundamentalBias(fundScore)
	nearFib := false
	for _, f := range p.Fibs {
		if math.Abs(lastClose-f) <= tol {
			nearFib = true
			break
		}
	}
	switch tech {
	case models.SignalBuy:
		if (p.DemandZone.Contains(lastClose, tol) || nearFib) && bias != BiasBear {
			return models.SignalBuy
		}
	case models.SignalSell:
		if (p.SupplyZone.Contains(lastClose, tol) || nearFib) && bias != BiasBull {
			return models.SignalSell
		}
	}
	return models.SignalHold
}

// Input is everything the engine needs for one pair snapshot.
type Input struct {
	Bundle       models.IndicatorBundle
	Fundamentals float64
	Volatility   float64
	IsCrypto     bool
	POI          models.PointsOfInterest
}

// Outcome is the final decision together with the intermediate verdicts.
type Outcome struct {
	Type      models.SignalType
	Technical Technical
	Gated     models.SignalType
	Relaxed   bool
}

// Engine combines technical thresholds with the relaxation rules.
type Engine struct {
	Thresholds Thresholds
	Relaxation Relaxation
}

// NewEngine builds an Engine with the given thresholds.
func NewEngine(th Thresholds, rx Relaxation) *Engine {
	return &Engine{Thresholds: th, Relaxation: rx}
}

// Final runs the technical check, POI gating and then the relaxation fallback.
func (e *Engine) Final(in Input) Outcome {
	b := in.Bundle
	tech := EvaluateTechnical(b, e.Thresholds)
	gated := Decide(tech.Type, in.Fundamentals, b.LastClose, b.ATR, in.Volatility, in.IsCrypto, in.POI)
	out := Outcome{Type: gated, Technical: tech, Gated: gated}
	if gated != models.SignalHold {
		return out
	}

	rx := e.Relaxation
	hist := b.Hist()
	switch tech.Type {
	case models.SignalSell:
		if in.Fundamentals < rx.BullishFundamentals &&
			tech.TrendDown &&
			b.LastClose < b.SMA200*rx.SellTrendFactor &&
			hist < 0 &&
			b.RSI <= e.Thresholds.RSISell+rx.SellRSIGrace {
			out.Type, out.Relaxed = models.SignalSell, true
		}
	case models.SignalBuy:
		if tech.TrendUp &&
			b.LastClose > b.SMA200*rx.BuyTrendFactor &&
			b.RSI >= e.Thresholds.RSIBuy-rx.BuyRSIGrace &&
			hist >= 0 {
			out.Type, out.Relaxed = models.SignalBuy, true
		}
	}
	return out
}
