package usecase

import (
	"context"
	"fmt"

	"FXSignals/internal/domain/models"
	"FXSignals/internal/domain/repository"
	"FXSignals/internal/service/fundamentals"
	"FXSignals/internal/services/confidence"
	"FXSignals/internal/services/decision"
	"FXSignals/internal/services/explain"
	"FXSignals/internal/services/indicators"
	"FXSignals/internal/services/levels"
	"FXSignals/internal/services/patterns"
	"FXSignals/internal/services/poi"
	"FXSignals/pkg/logger"
	"FXSignals/pkg/util"
)

// HistoryBars is how many closes a signal carries for charting.
const HistoryBars = 120

// SignalCalculator assembles one SignalResult from series, indicators,
// structure, fundamentals and the live price.
type SignalCalculator struct {
	series   *SeriesService
	live     repository.LivePriceSource
	fund     repository.FundamentalsSource
	engine   *decision.Engine
	anchor   levels.Anchor
	metrics  repository.Metrics
	recorder repository.Recorder
	l        *logger.Logger
}

// CalculatorOption configures a SignalCalculator.
type CalculatorOption func(*SignalCalculator)

// WithEngine overrides the decision thresholds.
func WithEngine(e *decision.Engine) CalculatorOption {
	return func(c *SignalCalculator) { c.engine = e }
}

// WithAnchor overrides the live price re-anchor thresholds.
func WithAnchor(a levels.Anchor) CalculatorOption {
	return func(c *SignalCalculator) { c.anchor = a }
}

// WithRecorder snapshots every computed signal.
func WithRecorder(r repository.Recorder) CalculatorOption {
	return func(c *SignalCalculator) { c.recorder = r }
}

// WithSignalMetrics records decisions.
func WithSignalMetrics(m repository.Metrics) CalculatorOption {
	return func(c *SignalCalculator) { c.metrics = m }
}

// NewSignalCalculator builds a calculator. live and fund may be nil.
func NewSignalCalculator(series *SeriesService, live repository.LivePriceSource, fund repository.FundamentalsSource, opts ...CalculatorOption) *SignalCalculator {
	c := &SignalCalculator{
		series: series,
		live:   live,
		fund:   fund,
		engine: decision.NewEngine(decision.DefaultThresholds(), decision.DefaultRelaxation()),
		anchor: levels.DefaultAnchor(),
	}
	if c.fund == nil {
		c.fund = fundamentals.StaticSource{}
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetLogger injects a structured logger.
func (c *SignalCalculator) SetLogger(l *logger.Logger) { c.l = l }

// Calculate computes the signal for pair on tf. Errors are reserved for unusable series.
func (c *SignalCalculator) Calculate(ctx context.Context, pair models.Pair, tf repository.Timeframe) (models.SignalResult, error) {
	series := c.series.FetchHistoricalSeries(ctx, pair, tf)
	if err := series.Validate(); err != nil {
		return models.SignalResult{}, fmt.Errorf("series %s: %w", pair, err)
	}
	if series.Len() == 0 {
		return models.SignalResult{}, fmt.Errorf("series %s: %w", pair, models.ErrInvalidSeries)
	}

	isCrypto := pair.IsCrypto()
	bundle := indicators.Compute(series, tf)
	vol := indicators.Volatility(series.Closes)
	pois := poi.Build(series.Closes, series.Highs, series.Lows)
	pats := patterns.Detect(series.Opens, series.Highs, series.Lows, series.Closes)
	fund := c.fetchFundamentals(ctx, pair, tf)

	outcome := c.engine.Final(decision.Input{
		Bundle:       bundle,
		Fundamentals: fund.Score,
		Volatility:   vol,
		IsCrypto:     isCrypto,
		POI:          pois,
	})
	conf := confidence.Score(confidence.Input{
		Bundle:       bundle,
		Volatility:   vol,
		Fundamentals: fund.Score,
		IsCrypto:     isCrypto,
		Patterns:     pats,
	})

	lastClose := bundle.LastClose
	lv := levels.Compute(outcome.Type, lastClose, bundle.ATR, vol, isCrypto, pois)
	rr := levels.RiskReward(lv)
	risk := levels.ClassifyRisk(conf.VolRatio)

	current := c.currentPrice(ctx, pair, lastClose)
	display := lv
	anchored := c.anchor.ShouldReanchor(pair, tf, lastClose, current, bundle.ATR, vol)
	if anchored {
		display = levels.Compute(outcome.Type, current, bundle.ATR, vol, isCrypto, pois)
	}

	sections, flat := explain.Build(explain.Input{
		Type:         outcome.Type,
		Bundle:       bundle,
		Fundamentals: fund,
		Risk:         risk,
		VolRatio:     conf.VolRatio,
		RiskReward:   rr,
		Patterns:     pats.Names,
		Filters:      conf.Notes,
		POI:          pois,
		Anchored:     anchored,
		Source:       series.Source,
	})

	entry := display.Entry
	if entry == 0 {
		entry = current
	}
	history := series.Closes
	if len(history) > HistoryBars {
		history = history[len(history)-HistoryBars:]
	}
	technical := int(util.Round(conf.Composite*100, 0))

	res := models.SignalResult{
		Pair:                pair.String(),
		AssetClass:          pair.AssetClass(),
		Type:                outcome.Type,
		Confidence:          conf.Confidence,
		Timeframe:           tf.String(),
		CurrentPrice:        current,
		LastClose:           lastClose,
		BuyLevel:            util.Round(entry, 4),
		StopLoss:            util.Round(display.StopLoss, 4),
		TakeProfit:          util.Round(display.TakeProfit, 4),
		Explanation:         flat,
		Stale:               series.Stale || series.IsSynthetic(),
		News:                fund.News,
		Indicators:          bundle,
		Fundamentals:        models.FundamentalsSummary{Score: fund.Score, Factors: fund.Factors},
		RiskReward:          levels.RiskReward(display),
		RiskCategory:        risk,
		VolatilityPct:       conf.VolRatio * 100,
		CompositeScore:      technical,
		History:             append([]float64(nil), history...),
		TechnicalScore:      technical,
		FundamentalScore:    fund.Score,
		ExplanationSections: sections,
		DebugSource:         series.Source,
	}
	if res.News == nil {
		res.News = []models.NewsItem{}
	}
	if res.Fundamentals.Factors == nil {
		res.Fundamentals.Factors = []string{}
	}

	if c.metrics != nil {
		c.metrics.RecordSignal(res.Pair, res.Timeframe, string(res.Type), res.Confidence)
	}
	if c.recorder != nil {
		if err := c.recorder.RecordSignal(ctx, &res); err != nil && c.l != nil {
			c.l.Warn("record signal failed", logger.String("pair", res.Pair), logger.Error(err))
		}
	}
	if c.l != nil {
		c.l.Debug("signal computed",
			logger.String("pair", res.Pair),
			logger.String("timeframe", res.Timeframe),
			logger.String("type", string(res.Type)),
			logger.Int("confidence", res.Confidence),
			logger.Bool("relaxed", outcome.Relaxed),
			logger.Bool("anchored", anchored),
			logger.String("source", series.Source))
	}
	return res, nil
}

func (c *SignalCalculator) fetchFundamentals(ctx context.Context, pair models.Pair, tf repository.Timeframe) models.Fundamentals {
	f, err := c.fund.Fetch(ctx, pair, tf)
	if err != nil {
		if c.l != nil {
			c.l.Warn("fundamentals unavailable", logger.String("pair", pair.String()), logger.Error(err))
		}
		return fundamentals.Fallback(pair)
	}
	return f
}

// currentPrice returns the live quote, or lastClose when it is unavailable or non-positive.
func (c *SignalCalculator) currentPrice(ctx context.Context, pair models.Pair, lastClose float64) float64 {
	if c.live == nil {
		return lastClose
	}
	p, err := c.live.CurrentPrice(ctx, pair)
	if err != nil || p <= 0 || !util.Finite(p) {
		if err != nil && c.l != nil {
			c.l.Debug("live price unavailable", logger.String("pair", pair.String()), logger.Error(err))
		}
		return lastClose
	}
	return p
}
