package models

// Requests for signal HTTP endpoints. Defined in domain for consistency and reuse.

type SignalsRequest struct {
	Pairs     string `query:"pairs" json:"pairs"`
	Timeframe string `query:"timeframe" json:"timeframe" default:"1H" validate:"oneof=1m 5m 15m 30m 1H 4H 1D"`
	Debug     bool   `query:"debug" json:"debug"`
}

type PairSignalRequest struct {
	Base      string `param:"base" validate:"required,alphanum,min=2,max=10"`
	Quote     string `param:"quote" validate:"required,alphanum,min=2,max=10"`
	Timeframe string `query:"timeframe" json:"timeframe" default:"1H" validate:"oneof=1m 5m 15m 30m 1H 4H 1D"`
	Debug     bool   `query:"debug" json:"debug"`
}

type BacktestRequest struct {
	Pair      string  `query:"pair" json:"pair" default:"EUR/USD" validate:"required,min=3,max=21"`
	Timeframe string  `query:"timeframe" json:"timeframe" default:"1H" validate:"oneof=1m 5m 15m 30m 1H 4H 1D"`
	Capital   float64 `query:"capital" json:"capital" default:"10000" validate:"gt=0,lte=1000000000"`
}

// SignalsResponse wraps a batch of signals.
type SignalsResponse struct {
	Signals []SignalResult `json:"signals"`
}
