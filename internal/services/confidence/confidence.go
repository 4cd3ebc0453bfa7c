package confidence

import (
	"math"

	"FXSignals/internal/domain/models"
	"FXSignals/internal/services/patterns"
	"FXSignals/pkg/util"
)

// Weights of each technical component of the composite score.
const (
	weightTrend    = 0.25
	weightAbove200 = 0.2
	weightMACD     = 0.2
	weightRSI      = 0.15
	weightVol      = 0.18
	maxPatternBias = 0.12
)

// Volatility filter notes.
const (
	NoteVeryHighVol = "Very high volatility"
	NoteHighVol     = "High volatility"
	NoteLowVol      = "Low volatility"
)

type volBands struct{ veryHigh, high, low float64 }

var (
	cryptoBands = volBands{veryHigh: 0.08, high: 0.05, low: 0.003}
	forexBands  = volBands{veryHigh: 0.03, high: 0.02, low: 0.001}
)

// Input is the scorer's view of one signal.
type Input struct {
	Bundle       models.IndicatorBundle
	Volatility   float64
	Fundamentals float64
	IsCrypto     bool
	Patterns     patterns.Result
}

// Result is the blended confidence with the composite technical score.
type Result struct {
	Confidence int
	Composite  float64
	VolRatio   float64
	Notes      []string
}

// VolRatio is volatility relative to the last close, 0 when price is unknown.
func VolRatio(vol, lastClose float64) float64 {
	if lastClose <= 0 {
		return 0
	}
	return vol / lastClose
}

// Score blends the technical composite with the fundamentals score and applies volatility filters.
func Score(in Input) Result {
	b := in.Bundle
	res := Result{Notes: []string{}, VolRatio: VolRatio(in.Volatility, b.LastClose)}

	trendRef := b.SMA50
	if b.EMA50 != nil {
		trendRef = *b.EMA50
	}
	var c float64
	if b.LastClose > trendRef {
		c += weightTrend
	}
	if b.LastClose > b.SMA200 {
		c += weightAbove200
	}
	c += macdScore(b.MACDHist) * weightMACD

	rsiScore := 1 - math.Abs(50-b.RSI)/50
	if b.RSI < 30 || b.RSI > 70 {
		rsiScore = 1
	}
	c += rsiScore * weightRSI

	if in.Volatility > 0 {
		c += math.Max(0, 1-res.VolRatio*5) * weightVol
	}
	c += util.Clamp(in.Patterns.Net(), -maxPatternBias, maxPatternBias)
	res.Composite = c

	conf := int(math.Round(c*60 + in.Fundamentals*0.4))
	conf = max(0, conf-volPenalty(in, &res))
	conf = util.ClampInt(conf, 0, 100)
	if in.Volatility > 0 && res.VolRatio > 0.02 {
		conf = max(0, conf-5)
	}
	res.Confidence = conf
	return res
}

func macdScore(hist *float64) float64 {
	switch {
	case hist == nil:
		return 0.5
	case *hist > 0:
		return 1
	case *hist < 0:
		return 0
	default:
		return 0.5
	}
}

// volPenalty returns the confidence deduction and records filter notes on res.
// A flat series has a zero ratio and takes the low-volatility penalty.
func volPenalty(in Input, res *Result) int {
	bands := forexBands
	if in.IsCrypto {
		bands = cryptoBands
	}
	penalty := 0
	switch {
	case res.VolRatio > bands.veryHigh:
		penalty += 12
		res.Notes = append(res.Notes, NoteVeryHighVol)
	case res.VolRatio > bands.high:
		penalty += 6
		res.Notes = append(res.Notes, NoteHighVol)
	}
	if res.VolRatio < bands.low {
		penalty += 3
		res.Notes = append(res.Notes, NoteLowVol)
	}
	return penalty
}
