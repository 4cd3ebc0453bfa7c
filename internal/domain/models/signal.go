package models

// SignalType is the recommendation emitted for a pair.
type SignalType string

const (
	SignalBuy  SignalType = "Buy"
	SignalSell SignalType = "Sell"
	SignalHold SignalType = "Hold"
)

// RiskCategory buckets realized volatility relative to price.
type RiskCategory string

const (
	RiskLow    RiskCategory = "Low"
	RiskMedium RiskCategory = "Medium"
	RiskHigh   RiskCategory = "High"
)

// IndicatorBundle holds the latest indicator values of a series.
// Pointer fields are nil when the series is too short or lacks high/low data.
type IndicatorBundle struct {
	LastClose  float64  `json:"-"`
	RSI        float64  `json:"rsi"`
	SMA50      float64  `json:"sma50"`
	SMA200     float64  `json:"sma200"`
	EMA20      *float64 `json:"ema20,omitempty"`
	EMA50      *float64 `json:"ema50,omitempty"`
	ATR        *float64 `json:"atr,omitempty"`
	MACD       *float64 `json:"macd,omitempty"`
	MACDSignal *float64 `json:"macdSignal,omitempty"`
	MACDHist   *float64 `json:"macdHist,omitempty"`
}

// Hist returns the MACD histogram or 0 when absent.
func (b IndicatorBundle) Hist() float64 {
	if b.MACDHist == nil {
		return 0
	}
	return *b.MACDHist
}

// Zone is a price band.
type Zone struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// Contains reports whether v lies inside the zone widened by tol on both sides.
func (z *Zone) Contains(v, tol float64) bool {
	if z == nil {
		return false
	}
	return v >= z.Low-tol && v <= z.High+tol
}

// SwingPoint is a confirmed local extreme.
type SwingPoint struct {
	Index int     `json:"index"`
	Price float64 `json:"price"`
}

// PointsOfInterest are the structural levels derived from one series snapshot.
type PointsOfInterest struct {
	Fibs       []float64    `json:"fibs"`
	DemandZone *Zone        `json:"demandZone,omitempty"`
	SupplyZone *Zone        `json:"supplyZone,omitempty"`
	SwingHighs []SwingPoint `json:"-"`
	SwingLows  []SwingPoint `json:"-"`
}

// NewsItem is a headline supplied by the fundamentals collaborator.
type NewsItem struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Fundamentals is the opaque bias input supplied by an external service.
type Fundamentals struct {
	Score          float64    `json:"score"`
	Factors        []string   `json:"factors"`
	News           []NewsItem `json:"news"`
	SentimentScore *float64   `json:"sentimentScore,omitempty"`
}

// FundamentalsSummary is the part of Fundamentals echoed in a signal.
type FundamentalsSummary struct {
	Score   float64  `json:"score"`
	Factors []string `json:"factors"`
}

// ExplanationSection is one titled block of the structured rationale.
type ExplanationSection struct {
	Title   string   `json:"title"`
	Details []string `json:"details"`
}

// SignalResult is the externally visible recommendation for a pair.
type SignalResult struct {
	Pair                string               `json:"pair"`
	AssetClass          AssetClass           `json:"assetClass"`
	Type                SignalType           `json:"type"`
	Confidence          int                  `json:"confidence"`
	Timeframe           string               `json:"timeframe"`
	CurrentPrice        float64              `json:"currentPrice"`
	LastClose           float64              `json:"lastClose"`
	BuyLevel            float64              `json:"buyLevel"`
	StopLoss            float64              `json:"stopLoss"`
	TakeProfit          float64              `json:"takeProfit"`
	Explanation         string               `json:"explanation"`
	Stale               bool                 `json:"stale"`
	News                []NewsItem           `json:"news"`
	Indicators          IndicatorBundle      `json:"indicators"`
	Fundamentals        FundamentalsSummary  `json:"fundamentals"`
	RiskReward          float64              `json:"riskReward"`
	RiskCategory        RiskCategory         `json:"riskCategory,omitempty"`
	VolatilityPct       float64              `json:"volatilityPct"`
	CompositeScore      int                  `json:"compositeScore"`
	History             []float64            `json:"history,omitempty"`
	TechnicalScore      int                  `json:"technicalScore"`
	FundamentalScore    float64              `json:"fundamentalScore"`
	ExplanationSections []ExplanationSection `json:"explanationSections,omitempty"`
	DebugSource         string               `json:"debugSource,omitempty"`
}

// HoldFallback is the flagged result substituted when a pair cannot be computed.
func HoldFallback(pair Pair, timeframe, reason string) SignalResult {
	return SignalResult{
		Pair:         pair.String(),
		AssetClass:   pair.AssetClass(),
		Type:         SignalHold,
		Confidence:   0,
		Timeframe:    timeframe,
		Explanation:  reason,
		Stale:        true,
		News:         []NewsItem{},
		Fundamentals: FundamentalsSummary{Factors: []string{}},
	}
}

// IsFallback reports whether s is a substitute rather than a computed signal.
func (s SignalResult) IsFallback() bool {
	return s.Stale && s.Confidence == 0 && s.DebugSource == ""
}
