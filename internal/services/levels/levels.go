package levels

import (
	"math"

	"FXSignals/internal/domain/models"
	"FXSignals/internal/services/decision"
)

// RewardMultiple is the take-profit distance in units of stop distance.
const RewardMultiple = 2.0

// Levels is the entry, stop and target of a signal.
type Levels struct {
	Entry      float64
	StopLoss   float64
	TakeProfit float64
}

// StopDistance returns the ATR, else a fixed fraction of price (1% crypto, 0.3% forex).
func StopDistance(price float64, atr *float64, isCrypto bool) float64 {
	if atr != nil {
		return *atr
	}
	if isCrypto {
		return price * 0.01
	}
	return price * 0.003
}

// Compute places stop and target around price. Buy and Sell widen them to clear nearby zones.
// Hold uses Buy geometry without zone adjustments.
func Compute(t models.SignalType, price float64, atr *float64, vol float64, isCrypto bool, p models.PointsOfInterest) Levels {
	d := StopDistance(price, atr, isCrypto)
	tol := decision.Tolerance(price, atr, vol, isCrypto)
	l := Levels{Entry: price}

	if t == models.SignalSell {
		l.StopLoss = price + d
		l.TakeProfit = price - RewardMultiple*d
		if p.SupplyZone != nil {
			l.StopLoss = math.Max(l.StopLoss, p.SupplyZone.High+tol)
		}
		if p.DemandZone != nil {
			l.TakeProfit = math.Min(l.TakeProfit, p.DemandZone.Low-tol)
		}
		return l
	}

	l.StopLoss = price - d
	l.TakeProfit = price + RewardMultiple*d
	if t == models.SignalBuy {
		if p.DemandZone != nil {
			l.StopLoss = math.Min(l.StopLoss, p.DemandZone.Low-tol)
		}
		if p.SupplyZone != nil {
			l.TakeProfit = math.Max(l.TakeProfit, p.SupplyZone.High+tol)
		}
	}
	return l
}

// RiskReward is reward over risk measured on the long side.
func RiskReward(l Levels) float64 {
	return (l.TakeProfit - l.Entry) / math.Max(1e-8, l.Entry-l.StopLoss)
}

// ClassifyRisk buckets volatility relative to price.
func ClassifyRisk(volRatio float64) models.RiskCategory {
	switch {
	case volRatio < 0.005:
		return models.RiskLow
	case volRatio < 0.015:
		return models.RiskMedium
	default:
		return models.RiskHigh
	}
}
