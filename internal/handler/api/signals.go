package api

import (
	"strings"
	"time"

	"FXSignals/internal/domain/models"
	"FXSignals/internal/domain/repository"
	"FXSignals/internal/service/cache"
	"FXSignals/internal/service/metrics"
	"FXSignals/internal/service/ratelimit"
	"FXSignals/internal/usecase"
	xhttp "FXSignals/pkg/http"
	xlogger "FXSignals/pkg/logger"
	"FXSignals/pkg/util"

	"github.com/labstack/echo/v4"
)

// Per-client token buckets.
const (
	signalsBurst     = 10
	signalsRefill    = 2
	backtestBurst    = 3
	backtestRefill   = 0.5
	maxPairsPerQuery = 20
)

// SignalsHandler serves signals and backtests over Echo.
type SignalsHandler struct {
	logger       *xlogger.Logger
	batch        *usecase.SignalsBatch
	backtest     *usecase.BacktestUseCase
	results      *cache.ResultCache
	rl           *ratelimit.Limiter
	defaultPairs []models.Pair
}

// NewSignalsHandler builds the handler. results may be nil to disable response caching.
func NewSignalsHandler(logger *xlogger.Logger, batch *usecase.SignalsBatch, bt *usecase.BacktestUseCase, results *cache.ResultCache, defaultPairs []string) *SignalsHandler {
	metrics.Register()
	h := &SignalsHandler{
		logger:   logger,
		batch:    batch,
		backtest: bt,
		results:  results,
		rl:       ratelimit.New(),
	}
	for _, s := range defaultPairs {
		if p, err := models.ParsePair(s); err == nil && p.Validate() == nil {
			h.defaultPairs = append(h.defaultPairs, p)
		}
	}
	return h
}

// Limiter exposes the per-client buckets so idle ones can be pruned.
func (h *SignalsHandler) Limiter() *ratelimit.Limiter { return h.rl }

func (h *SignalsHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/signals", h.List)
	g.GET("/signals/:base/:quote", h.Pair)
	g.GET("/backtest", h.Backtest)
}

// List handles GET /api/signals?pairs=EUR/USD,BTC/USD&timeframe=1H.
func (h *SignalsHandler) List(c echo.Context) error {
	const endpoint = "signals"
	defer observe(endpoint, time.Now())

	if !h.rl.Allow(c.RealIP()+":"+endpoint, signalsBurst, signalsRefill) {
		metrics.APIErrors.WithLabelValues(endpoint).Inc()
		return xhttp.TooManyRequestsResponse(c)
	}
	req := &models.SignalsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	pairs := h.defaultPairs
	if strings.TrimSpace(req.Pairs) != "" {
		var verr []xhttp.ValidationError
		pairs, verr = parsePairs(req.Pairs)
		if verr != nil {
			return xhttp.BadRequestResponse(c, verr)
		}
	}
	tf := repository.Timeframe(req.Timeframe)

	signals := h.compute(c, pairs, tf)
	if !req.Debug {
		stripDebug(signals)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=15")
	return xhttp.SuccessResponse(c, models.SignalsResponse{Signals: signals})
}

// Pair handles GET /api/signals/:base/:quote.
func (h *SignalsHandler) Pair(c echo.Context) error {
	const endpoint = "signal"
	defer observe(endpoint, time.Now())

	if !h.rl.Allow(c.RealIP()+":"+endpoint, signalsBurst, signalsRefill) {
		metrics.APIErrors.WithLabelValues(endpoint).Inc()
		return xhttp.TooManyRequestsResponse(c)
	}
	req := &models.PairSignalRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	pair := models.Pair{Base: strings.ToUpper(req.Base), Quote: strings.ToUpper(req.Quote)}
	signals := h.compute(c, []models.Pair{pair}, repository.Timeframe(req.Timeframe))
	if !req.Debug {
		stripDebug(signals)
	}
	return xhttp.SuccessResponse(c, signals[0])
}

// Backtest handles GET /api/backtest?pair=&timeframe=&capital=.
func (h *SignalsHandler) Backtest(c echo.Context) error {
	const endpoint = "backtest"
	defer observe(endpoint, time.Now())

	if !h.rl.Allow(c.RealIP()+":"+endpoint, backtestBurst, backtestRefill) {
		metrics.APIErrors.WithLabelValues(endpoint).Inc()
		return xhttp.TooManyRequestsResponse(c)
	}
	req := &models.BacktestRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	pair, err := models.ParsePair(req.Pair)
	if err == nil {
		err = pair.Validate()
	}
	if err != nil {
		return xhttp.BadRequestResponse(c, []xhttp.ValidationError{{Code: "ERR_PAIR", Field: "pair", Message: err.Error()}})
	}
	if h.backtest == nil {
		metrics.APIErrors.WithLabelValues(endpoint).Inc()
		return xhttp.AppErrorResponse(c, xhttp.InternalError("backtest unavailable"))
	}
	res := h.backtest.Run(c.Request().Context(), pair, repository.Timeframe(req.Timeframe), req.Capital)
	return xhttp.SuccessResponse(c, res)
}

// compute serves cached results and batches the rest under the request budget.
func (h *SignalsHandler) compute(c echo.Context, pairs []models.Pair, tf repository.Timeframe) []models.SignalResult {
	out := make([]models.SignalResult, len(pairs))
	var missing []models.Pair
	var slots []int
	for i, p := range pairs {
		if res, ok := h.results.Get(p, tf); ok {
			out[i] = res
			continue
		}
		missing = append(missing, p)
		slots = append(slots, i)
	}
	if len(missing) == 0 {
		return out
	}

	fresh := h.batch.Compute(c.Request().Context(), missing, tf)
	for j, res := range fresh {
		out[slots[j]] = res
		if res.IsFallback() {
			metrics.APIErrors.WithLabelValues("signal_fallback").Inc()
			continue
		}
		if err := h.results.Put(res, missing[j], tf); err != nil && h.logger != nil {
			h.logger.Warn("result cache put failed", xlogger.String("pair", res.Pair), xlogger.Error(err))
		}
	}
	return out
}

func parsePairs(raw string) ([]models.Pair, []xhttp.ValidationError) {
	parts := util.SplitCSV(raw)
	if len(parts) > maxPairsPerQuery {
		return nil, []xhttp.ValidationError{{
			Code:    "ERR_MAX",
			Field:   "pairs",
			Message: "too many pairs",
			Params:  map[string]interface{}{"max": maxPairsPerQuery},
		}}
	}
	var errs []xhttp.ValidationError
	pairs := make([]models.Pair, 0, len(parts))
	for _, s := range parts {
		p, err := models.ParsePair(s)
		if err == nil {
			err = p.Validate()
		}
		if err != nil {
			errs = append(errs, xhttp.ValidationError{Code: "ERR_PAIR", Field: "pairs", Message: err.Error()})
			continue
		}
		pairs = append(pairs, p)
	}
	if len(errs) > 0 {
		return nil, errs
	}
	return pairs, nil
}

func stripDebug(signals []models.SignalResult) {
	for i := range signals {
		signals[i].DebugSource = ""
	}
}

func observe(endpoint string, start time.Time) {
	metrics.APILatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
}
