package models

// Side is the direction of a simulated position.
type Side string

const (
	SideLong  Side = "long"
	SideShort Side = "short"
)

// ExitReason describes why a simulated position was closed.
type ExitReason string

const (
	ExitOppositeSignal ExitReason = "Opposite Signal"
	ExitStopLoss       ExitReason = "Stop Loss"
	ExitTrailingStop   ExitReason = "Trailing Stop"
	ExitBreakeven      ExitReason = "Breakeven"
	ExitTakeProfit     ExitReason = "Take Profit"
	ExitMaxAge         ExitReason = "Max Age"
	ExitEndOfSeries    ExitReason = "End Of Series"
)

// Position is the single open trade of a simulation run.
type Position struct {
	Side             Side    `json:"side"`
	Entry            float64 `json:"entry"`
	EntryIndex       int     `json:"entryIndex"`
	StopLoss         float64 `json:"stopLoss"`
	InitialStop      float64 `json:"initialStop"`
	TakeProfit       float64 `json:"takeProfit"`
	AgeInBars        int     `json:"ageInBars"`
	BreakevenApplied bool    `json:"breakevenApplied"`
	TrailingActive   bool    `json:"trailingActive"`
	RiskUnit         float64 `json:"riskUnit"`
}

// Return is the fractional return of the position if closed at px.
func (p Position) Return(px float64) float64 {
	if p.Entry == 0 {
		return 0
	}
	if p.Side == SideShort {
		return (p.Entry - px) / p.Entry
	}
	return (px - p.Entry) / p.Entry
}

// Trade is a closed position.
type Trade struct {
	Side       Side       `json:"side"`
	EntryIndex int        `json:"entryIndex"`
	ExitIndex  int        `json:"exitIndex"`
	Entry      float64    `json:"entry"`
	Exit       float64    `json:"exit"`
	ReturnPct  float64    `json:"returnPct"`
	BarsHeld   int        `json:"barsHeld"`
	Reason     ExitReason `json:"reason"`
}

// BacktestResult summarizes one simulation run.
type BacktestResult struct {
	Pair           string    `json:"pair"`
	Timeframe      string    `json:"timeframe"`
	Trades         int       `json:"trades"`
	Wins           int       `json:"wins"`
	WinRate        float64   `json:"winRate"`
	TotalReturnPct float64   `json:"totalReturnPct"`
	EquityCurve    []float64 `json:"equityCurve"`
	MaxDrawdownPct float64   `json:"maxDrawdownPct"`
	InitialCapital float64   `json:"initialCapital"`
	FinalEquity    float64   `json:"finalEquity"`
	Source         string    `json:"source,omitempty"`
	TradeLog       []Trade   `json:"tradeLog"`
}
