package repository

import "time"

// Timeframe represents candle resolution buckets.
type Timeframe string

const (
	TF1m  Timeframe = "1m"
	TF5m  Timeframe = "5m"
	TF15m Timeframe = "15m"
	TF30m Timeframe = "30m"
	TF1H  Timeframe = "1H"
	TF4H  Timeframe = "4H"
	TF1D  Timeframe = "1D"
)

// Timeframes lists the supported vocabulary in ascending granularity.
var Timeframes = []Timeframe{TF1m, TF5m, TF15m, TF30m, TF1H, TF4H, TF1D}

// IsValidTimeframe returns true if tf is a supported timeframe.
func IsValidTimeframe(tf Timeframe) bool {
	switch tf {
	case TF1m, TF5m, TF15m, TF30m, TF1H, TF4H, TF1D:
		return true
	default:
		return false
	}
}

// DefaultTimeframe is what unknown values collapse to inside the engine.
func DefaultTimeframe() Timeframe { return TF30m }

// APIDefaultTimeframe is used when an HTTP caller omits the timeframe.
func APIDefaultTimeframe() Timeframe { return TF1H }

// NormalizeTimeframe converts raw string to a valid timeframe (or default).
func NormalizeTimeframe(s string) Timeframe {
	if s == "" {
		return DefaultTimeframe()
	}
	tf := Timeframe(s)
	if IsValidTimeframe(tf) {
		return tf
	}
	return DefaultTimeframe()
}

// IsIntraday reports whether tf is finer than daily.
func (tf Timeframe) IsIntraday() bool { return tf != TF1D }

// Lookback is the number of bars kept for analysis.
func (tf Timeframe) Lookback() int {
	switch tf {
	case TF1m, TF5m:
		return 300
	case TF15m:
		return 200
	case TF30m:
		return 180
	case TF1H:
		return 120
	case TF4H:
		return 90
	case TF1D:
		return 365
	default:
		return 120
	}
}

// CacheTTL is how long a fetched series stays fresh.
func (tf Timeframe) CacheTTL() time.Duration {
	switch tf {
	case TF1D:
		return 30 * time.Minute
	case TF4H:
		return 2 * time.Minute
	default:
		return time.Minute
	}
}

// FundamentalsTTL is how long fundamentals stay fresh for tf.
func (tf Timeframe) FundamentalsTTL() time.Duration {
	if tf == TF1D {
		return 15 * time.Minute
	}
	return 2 * time.Minute
}

func (tf Timeframe) String() string { return string(tf) }
