package provider

import (
	"math"

	"FXSignals/internal/domain/models"
	"FXSignals/internal/domain/repository"
)

const fourHourBlock = 4

// Resample4H folds hourly bars into blocks of four: first open, max high, min low, last close.
// A trailing partial block is kept.
func Resample4H(s *models.PriceSeries) *models.PriceSeries {
	n := s.Len()
	out := &models.PriceSeries{Source: s.Source}
	hasOpen := len(s.Opens) == n
	hasHL := s.HasHighLow()
	for start := 0; start < n; start += fourHourBlock {
		end := min(start+fourHourBlock, n)
		out.Closes = append(out.Closes, s.Closes[end-1])
		if hasOpen {
			out.Opens = append(out.Opens, s.Opens[start])
		}
		if hasHL {
			hi, lo := math.Inf(-1), math.Inf(1)
			for i := start; i < end; i++ {
				hi = math.Max(hi, s.Highs[i])
				lo = math.Min(lo, s.Lows[i])
			}
			out.Highs = append(out.Highs, hi)
			out.Lows = append(out.Lows, lo)
		}
	}
	return out
}

// finish applies the 4H fold when needed and tags the source.
func finish(s *models.PriceSeries, tf repository.Timeframe, source string) *models.PriceSeries {
	s.Source = source
	if tf == repository.TF4H {
		return Resample4H(s)
	}
	return s
}
