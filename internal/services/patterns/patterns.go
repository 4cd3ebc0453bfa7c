package patterns

import "math"

// Pattern names reported in explanations.
const (
	BullishEngulfing = "Bullish Engulfing"
	BearishEngulfing = "Bearish Engulfing"
	Hammer           = "Hammer"
	ShootingStar     = "Shooting Star"
	Doji             = "Doji"
)

// Result lists the patterns found on the last bars and their directional weights.
type Result struct {
	Names []string
	Bull  float64
	Bear  float64
}

// Net is bull minus bear weight.
func (r Result) Net() float64 { return r.Bull - r.Bear }

type candle struct{ o, h, l, c float64 }

func (k candle) body() float64  { return math.Abs(k.c - k.o) }
func (k candle) rng() float64   { return k.h - k.l }
func (k candle) lower() float64 { return math.Min(k.o, k.c) - k.l }
func (k candle) upper() float64 { return k.h - math.Max(k.o, k.c) }

// Detect inspects the last two candles. All four slices must be the same length.
func Detect(opens, highs, lows, closes []float64) Result {
	r := Result{Names: []string{}}
	n := len(closes)
	if n < 2 || len(opens) != n || len(highs) != n || len(lows) != n {
		return r
	}
	prev := candle{opens[n-2], highs[n-2], lows[n-2], closes[n-2]}
	cur := candle{opens[n-1], highs[n-1], lows[n-1], closes[n-1]}

	if cur.c > cur.o && prev.c < prev.o && cur.body() > prev.body() && cur.o <= prev.c && cur.c >= prev.o {
		r.Names = append(r.Names, BullishEngulfing)
		r.Bull += 0.15
	}
	if cur.c < cur.o && prev.c > prev.o && cur.body() > prev.body() && cur.o >= prev.c && cur.c <= prev.o {
		r.Names = append(r.Names, BearishEngulfing)
		r.Bear += 0.15
	}

	rng := cur.rng()
	if rng <= 0 {
		return r
	}
	bodyRatio := cur.body() / rng
	if cur.lower()/rng > 0.6 && bodyRatio < 0.3 {
		r.Names = append(r.Names, Hammer)
		r.Bull += 0.1
	}
	if cur.upper()/rng > 0.6 && bodyRatio < 0.3 {
		r.Names = append(r.Names, ShootingStar)
		r.Bear += 0.1
	}
	if bodyRatio < 0.1 {
		r.Names = append(r.Names, Doji)
	}
	return r
}
