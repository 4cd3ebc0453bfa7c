package poi

import "FXSignals/internal/domain/models"

// FibRatios are the retracement ratios reported as fib levels.
var FibRatios = []float64{0.382, 0.5, 0.618}

const zoneWidth = 0.001

// Window returns the swing confirmation half-width for n bars.
func Window(n int) int {
	return max(2, n/40)
}

// Build derives swing points, fib retracements and demand/supply zones from closes.
// Highs and lows are accepted but ignored: zones sit on closing prices whether or not the
// provider returned OHLC bars.
func Build(closes, _, _ []float64) models.PointsOfInterest {
	n := len(closes)
	out := models.PointsOfInterest{Fibs: []float64{}}
	w := Window(n)
	for i := w; i < n-w; i++ {
		if isExtreme(closes, i, w, func(a, b float64) bool { return a > b }) {
			out.SwingHighs = append(out.SwingHighs, models.SwingPoint{Index: i, Price: closes[i]})
		} else if isExtreme(closes, i, w, func(a, b float64) bool { return a < b }) {
			out.SwingLows = append(out.SwingLows, models.SwingPoint{Index: i, Price: closes[i]})
		}
	}

	var hi, lo *models.SwingPoint
	if k := len(out.SwingHighs); k > 0 {
		hi = &out.SwingHighs[k-1]
		out.SupplyZone = &models.Zone{Low: hi.Price * (1 - zoneWidth), High: hi.Price * (1 + zoneWidth)}
	}
	if k := len(out.SwingLows); k > 0 {
		lo = &out.SwingLows[k-1]
		out.DemandZone = &models.Zone{Low: lo.Price * (1 - zoneWidth), High: lo.Price * (1 + zoneWidth)}
	}
	if hi != nil && lo != nil {
		if lo.Index < hi.Index {
			out.Fibs = FibLevels(lo.Price, hi.Price)
		} else {
			out.Fibs = FibLevels(hi.Price, lo.Price)
		}
	}
	return out
}

// FibLevels retraces the move from -> to by each ratio, measured back from to.
func FibLevels(from, to float64) []float64 {
	out := make([]float64, len(FibRatios))
	for i, r := range FibRatios {
		out[i] = to - (to-from)*r
	}
	return out
}

// isExtreme reports whether no value within w bars of i beats values[i].
func isExtreme(values []float64, i, w int, beats func(a, b float64) bool) bool {
	for j := i - w; j <= i+w; j++ {
		if j != i && beats(values[j], values[i]) {
			return false
		}
	}
	return true
}
