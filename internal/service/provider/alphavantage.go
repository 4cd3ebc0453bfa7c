package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"

	"FXSignals/internal/domain/models"
	"FXSignals/internal/domain/repository"
)

const defaultAlphaVantageURL = "https://www.alphavantage.co/query"

type avBar struct {
	Open  string `json:"1. open"`
	High  string `json:"2. high"`
	Low   string `json:"3. low"`
	Close string `json:"4. close"`
}

func avInterval(tf repository.Timeframe) string {
	switch tf {
	case repository.TF1m:
		return "1min"
	case repository.TF5m:
		return "5min"
	case repository.TF15m:
		return "15min"
	case repository.TF30m:
		return "30min"
	default:
		return "60min"
	}
}

// AlphaVantage reads FX_INTRADAY or FX_DAILY time series.
type AlphaVantage struct {
	httpBase
	daily bool
}

// NewAlphaVantageIntraday creates the FX_INTRADAY adapter. It declines 1D requests.
func NewAlphaVantageIntraday(opts ...Option) *AlphaVantage {
	return &AlphaVantage{httpBase: httpBase{name: "alphavantage_intraday", opts: buildOptions(defaultAlphaVantageURL, opts)}}
}

// NewAlphaVantageDaily creates the FX_DAILY adapter.
func NewAlphaVantageDaily(opts ...Option) *AlphaVantage {
	return &AlphaVantage{httpBase: httpBase{name: "alphavantage_daily", opts: buildOptions(defaultAlphaVantageURL, opts)}, daily: true}
}

func (p *AlphaVantage) Name() string { return p.name }

func (p *AlphaVantage) Fetch(ctx context.Context, pair models.Pair, tf repository.Timeframe) (*models.PriceSeries, error) {
	if p.opts.APIKey == "" {
		return nil, fmt.Errorf("%w: no api key", ErrUnsupported)
	}
	if pair.IsCrypto() || (!p.daily && tf == repository.TF1D) {
		return nil, ErrUnsupported
	}

	q := url.Values{}
	q.Set("from_symbol", pair.Base)
	q.Set("to_symbol", pair.Quote)
	q.Set("outputsize", "full")
	q.Set("apikey", p.opts.APIKey)
	key := "Time Series (FX)"
	if p.daily {
		q.Set("function", "FX_DAILY")
	} else {
		interval := avInterval(tf)
		q.Set("function", "FX_INTRADAY")
		q.Set("interval", interval)
		key = fmt.Sprintf("Time Series FX (%s)", interval)
	}

	var body map[string]json.RawMessage
	if err := p.getJSON(ctx, "", q, &body); err != nil {
		return nil, err
	}
	raw, ok := body[key]
	if !ok {
		if note, ok := body["Note"]; ok {
			return nil, fmt.Errorf("%w: %s", ErrRateLimited, note)
		}
		return nil, ErrNoData
	}
	var bars map[string]avBar
	if err := json.Unmarshal(raw, &bars); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	s, err := avSeries(bars)
	if err != nil {
		return nil, err
	}
	return finish(s, tf, p.name), nil
}

// avSeries orders bars by timestamp, oldest first. Timestamps sort lexically.
func avSeries(bars map[string]avBar) (*models.PriceSeries, error) {
	stamps := make([]string, 0, len(bars))
	for k := range bars {
		stamps = append(stamps, k)
	}
	sort.Strings(stamps)

	s := &models.PriceSeries{}
	for _, k := range stamps {
		b := bars[k]
		c, err := strconv.ParseFloat(b.Close, 64)
		if err != nil || c <= 0 {
			continue
		}
		o, _ := strconv.ParseFloat(b.Open, 64)
		h, _ := strconv.ParseFloat(b.High, 64)
		l, _ := strconv.ParseFloat(b.Low, 64)
		s.Opens = append(s.Opens, o)
		s.Highs = append(s.Highs, h)
		s.Lows = append(s.Lows, l)
		s.Closes = append(s.Closes, c)
	}
	if len(s.Closes) == 0 {
		return nil, ErrNoData
	}
	return s, nil
}
