package explain

import (
	"fmt"
	"strings"

	"FXSignals/internal/domain/models"
)

const (
	maxFactors  = 4
	maxPatterns = 3
	sep         = " | "
)

// Input is everything the rationale mentions.
type Input struct {
	Type         models.SignalType
	Bundle       models.IndicatorBundle
	Fundamentals models.Fundamentals
	Risk         models.RiskCategory
	VolRatio     float64
	RiskReward   float64
	Patterns     []string
	Filters      []string
	POI          models.PointsOfInterest
	Anchored     bool
	Source       string
}

// Build returns the structured sections and the flat one-line explanation.
func Build(in Input) ([]models.ExplanationSection, string) {
	b := in.Bundle
	pos := "below"
	if b.LastClose > b.SMA200 {
		pos = "above"
	}
	trend := []string{
		fmt.Sprintf("Price %.4f vs SMA50 %.4f", b.LastClose, b.SMA50),
		fmt.Sprintf("SMA200 %.4f (%s)", b.SMA200, pos),
	}
	if b.EMA20 != nil && b.EMA50 != nil {
		trend = append(trend, fmt.Sprintf("EMA20 %.4f vs EMA50 %.4f", *b.EMA20, *b.EMA50))
	}

	rsi := fmt.Sprintf("RSI %.1f (%s)", b.RSI, rsiState(b.RSI))
	macd := "MACD n/a"
	if b.MACDHist != nil {
		macd = fmt.Sprintf("MACD hist %.3f (%s)", *b.MACDHist, histState(*b.MACDHist))
	}

	fund := []string{fmt.Sprintf("Fundamentals %.0f/100", in.Fundamentals.Score)}
	factors := in.Fundamentals.Factors
	if len(factors) > maxFactors {
		factors = factors[:maxFactors]
	}
	fund = append(fund, factors...)

	risk := []string{
		fmt.Sprintf("Risk %s", in.Risk),
		fmt.Sprintf("Vol %.2f%%", in.VolRatio*100),
		fmt.Sprintf("RR %.2f", in.RiskReward),
	}

	sections := []models.ExplanationSection{
		{Title: "Signal", Details: []string{fmt.Sprintf("Type %s", in.Type)}},
		{Title: "Trend & MAs", Details: trend},
		{Title: "Momentum", Details: []string{rsi, macd}},
		{Title: "Fundamentals", Details: fund},
		{Title: "Risk", Details: risk},
	}

	var pf []string
	if len(in.Patterns) > 0 {
		pf = append(pf, "Patterns: "+strings.Join(lastN(in.Patterns, maxPatterns), ", "))
	}
	if len(in.Filters) > 0 {
		pf = append(pf, "Filters: "+strings.Join(in.Filters, ", "))
	}
	if len(pf) > 0 {
		sections = append(sections, models.ExplanationSection{Title: "Patterns & Filters", Details: pf})
	}

	var lastPattern, firstFilter string
	if len(in.Patterns) > 0 {
		lastPattern = in.Patterns[len(in.Patterns)-1]
	}
	if len(in.Filters) > 0 {
		firstFilter = in.Filters[0]
	}
	parts := nonEmpty(
		fmt.Sprintf("Type %s", in.Type),
		trend[1],
		rsi,
		macd,
		lastPattern,
		firstFilter,
		strings.Join(risk, ", "),
		POISummary(in.POI),
	)
	if in.Anchored {
		parts = append(parts, "Anchored to live price")
	}
	if in.Source != "" {
		parts = append(parts, "src:"+in.Source)
	}
	return sections, strings.Join(parts, sep)
}

// POISummary renders zones and fibs after a "POIs: " prefix, or "POIs: No POIs".
func POISummary(p models.PointsOfInterest) string {
	var parts []string
	if p.DemandZone != nil {
		parts = append(parts, fmt.Sprintf("Demand %.4f-%.4f", p.DemandZone.Low, p.DemandZone.High))
	}
	if p.SupplyZone != nil {
		parts = append(parts, fmt.Sprintf("Supply %.4f-%.4f", p.SupplyZone.Low, p.SupplyZone.High))
	}
	if len(p.Fibs) > 0 {
		fibs := make([]string, len(p.Fibs))
		for i, f := range p.Fibs {
			fibs[i] = fmt.Sprintf("%.4f", f)
		}
		parts = append(parts, "Fibs "+strings.Join(fibs, ","))
	}
	if len(parts) == 0 {
		parts = []string{"No POIs"}
	}
	return "POIs: " + strings.Join(parts, sep)
}

func rsiState(v float64) string {
	switch {
	case v < 30:
		return "oversold"
	case v > 70:
		return "overbought"
	default:
		return "neutral"
	}
}

func histState(v float64) string {
	switch {
	case v > 0:
		return "bullish"
	case v < 0:
		return "bearish"
	default:
		return "flat"
	}
}

func lastN(s []string, n int) []string {
	if len(s) > n {
		return s[len(s)-n:]
	}
	return s
}

func nonEmpty(in ...string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
