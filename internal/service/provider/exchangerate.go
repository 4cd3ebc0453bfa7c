package provider

import (
	"context"
	"net/url"
	"sort"

	"FXSignals/internal/domain/models"
	"FXSignals/internal/domain/repository"
)

const (
	defaultExchangeRateURL = "https://api.exchangerate.host/timeseries"
	exchangeRateDays       = 180
)

// ExchangeRate reads daily closes from the exchangerate.host timeseries endpoint.
type ExchangeRate struct{ httpBase }

// NewExchangeRate creates the exchangerate.host adapter.
func NewExchangeRate(opts ...Option) *ExchangeRate {
	return &ExchangeRate{httpBase{name: "exchangerate_host", opts: buildOptions(defaultExchangeRateURL, opts)}}
}

func (p *ExchangeRate) Name() string { return p.name }

func (p *ExchangeRate) Fetch(ctx context.Context, pair models.Pair, tf repository.Timeframe) (*models.PriceSeries, error) {
	if pair.IsCrypto() {
		return nil, ErrUnsupported
	}
	end := p.opts.Now().UTC()
	start := end.AddDate(0, 0, -exchangeRateDays)
	q := url.Values{}
	q.Set("start_date", start.Format("2006-01-02"))
	q.Set("end_date", end.Format("2006-01-02"))
	q.Set("base", pair.Base)
	q.Set("symbols", pair.Quote)

	var body struct {
		Rates map[string]map[string]float64 `json:"rates"`
	}
	if err := p.getJSON(ctx, "", q, &body); err != nil {
		return nil, err
	}
	dates := make([]string, 0, len(body.Rates))
	for d := range body.Rates {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	s := &models.PriceSeries{}
	for _, d := range dates {
		if v, ok := body.Rates[d][pair.Quote]; ok && v > 0 {
			s.Closes = append(s.Closes, v)
		}
	}
	if len(s.Closes) == 0 {
		return nil, ErrNoData
	}
	// Daily closes only, never folded.
	s.Source = p.name
	return s, nil
}
