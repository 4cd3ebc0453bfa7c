package models

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidSeries is returned when parallel arrays disagree in length.
var ErrInvalidSeries = errors.New("invalid price series")

// SourceSynthetic tags series produced by the synthetic generator.
const SourceSynthetic = "synthetic:live"

// PriceSeries is an ordered (oldest first) close series with optional OHLC arrays.
type PriceSeries struct {
	Opens  []float64 `json:"opens,omitempty"`
	Highs  []float64 `json:"highs,omitempty"`
	Lows   []float64 `json:"lows,omitempty"`
	Closes []float64 `json:"closes"`
	Source string    `json:"source"`
	// Stale is set when the series is served past its TTL or generated synthetically.
	Stale bool `json:"stale,omitempty"`
}

// Len returns the number of bars.
func (s *PriceSeries) Len() int { return len(s.Closes) }

// Validate checks that all present parallel arrays match the closes length.
func (s *PriceSeries) Validate() error {
	n := len(s.Closes)
	check := func(name string, v []float64) error {
		if v != nil && len(v) != n {
			return fmt.Errorf("%w: %s has %d values, closes has %d", ErrInvalidSeries, name, len(v), n)
		}
		return nil
	}
	if err := check("opens", s.Opens); err != nil {
		return err
	}
	if err := check("highs", s.Highs); err != nil {
		return err
	}
	return check("lows", s.Lows)
}

// HasHighLow reports whether highs and lows are usable for range-based indicators.
func (s *PriceSeries) HasHighLow() bool {
	n := len(s.Closes)
	return n > 0 && len(s.Highs) == n && len(s.Lows) == n
}

// HasOHLC reports whether opens, highs and lows are all present.
func (s *PriceSeries) HasOHLC() bool {
	return s.HasHighLow() && len(s.Opens) == len(s.Closes)
}

// LastClose returns the newest close or 0 for an empty series.
func (s *PriceSeries) LastClose() float64 {
	if len(s.Closes) == 0 {
		return 0
	}
	return s.Closes[len(s.Closes)-1]
}

// IsSynthetic reports whether the series came from the synthetic generator.
func (s *PriceSeries) IsSynthetic() bool { return s.Source == SourceSynthetic }

// Tail returns a copy holding at most the last n bars. Missing opens are derived from closes.
func (s *PriceSeries) Tail(n int) PriceSeries {
	cut := func(v []float64) []float64 {
		if v == nil {
			return nil
		}
		if len(v) > n {
			v = v[len(v)-n:]
		}
		out := make([]float64, len(v))
		copy(out, v)
		return out
	}
	out := PriceSeries{
		Closes: cut(s.Closes),
		Highs:  cut(s.Highs),
		Lows:   cut(s.Lows),
		Opens:  cut(s.Opens),
		Source: s.Source,
		Stale:  s.Stale,
	}
	if out.Opens == nil {
		out.Opens = DeriveOpens(out.Closes)
	}
	return out
}

// DeriveOpens approximates opens as the previous close.
func DeriveOpens(closes []float64) []float64 {
	opens := make([]float64, len(closes))
	for i := range closes {
		if i == 0 {
			opens[i] = closes[0]
			continue
		}
		opens[i] = closes[i-1]
	}
	return opens
}

// CachedSeries is a series together with its cache bookkeeping.
type CachedSeries struct {
	Series    PriceSeries `json:"series"`
	FetchedAt time.Time   `json:"fetched_at"`
	ExpiresAt time.Time   `json:"expires_at"`
}

// Fresh reports whether the entry is still inside its TTL at now.
func (c *CachedSeries) Fresh(now time.Time) bool {
	return now.Before(c.ExpiresAt)
}
