package provider

import (
	"context"
	"net/url"

	"FXSignals/internal/domain/models"
	"FXSignals/internal/domain/repository"
)

const defaultYahooURL = "https://query1.finance.yahoo.com/v8/finance/chart"

// Yahoo reads the chart API. Null bars are skipped.
type Yahoo struct{ httpBase }

// NewYahoo creates the Yahoo chart adapter.
func NewYahoo(opts ...Option) *Yahoo {
	return &Yahoo{httpBase{name: "yahoo", opts: buildOptions(defaultYahooURL, opts)}}
}

func (p *Yahoo) Name() string { return p.name }

// YahooSymbol is BASE-QUOTE for crypto and FROMTO=X for forex.
func YahooSymbol(pair models.Pair) string {
	if pair.IsCrypto() {
		return pair.Base + "-" + pair.Quote
	}
	return pair.Base + pair.Quote + "=X"
}

func yahooWindow(pair models.Pair, tf repository.Timeframe) (interval, rng string) {
	switch tf {
	case repository.TF1m, repository.TF5m, repository.TF15m, repository.TF30m:
		return string(tf), "5d"
	case repository.TF1D:
		if pair.IsCrypto() {
			return "1d", "5y"
		}
		return "1d", "1y"
	default:
		if pair.IsCrypto() {
			return "60m", "5d"
		}
		return "60m", "1mo"
	}
}

type yahooChart struct {
	Chart struct {
		Result []struct {
			Indicators struct {
				Quote []struct {
					Open  []*float64 `json:"open"`
					High  []*float64 `json:"high"`
					Low   []*float64 `json:"low"`
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func (p *Yahoo) Fetch(ctx context.Context, pair models.Pair, tf repository.Timeframe) (*models.PriceSeries, error) {
	interval, rng := yahooWindow(pair, tf)
	q := url.Values{}
	q.Set("interval", interval)
	q.Set("range", rng)

	var body yahooChart
	if err := p.getJSON(ctx, "/"+url.PathEscape(YahooSymbol(pair)), q, &body); err != nil {
		return nil, err
	}
	if len(body.Chart.Result) == 0 || len(body.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, ErrNoData
	}
	quote := body.Chart.Result[0].Indicators.Quote[0]
	full := len(quote.Open) == len(quote.Close) && len(quote.High) == len(quote.Close) && len(quote.Low) == len(quote.Close)

	s := &models.PriceSeries{}
	for i, c := range quote.Close {
		if c == nil || *c <= 0 {
			continue
		}
		if full && quote.Open[i] != nil && quote.High[i] != nil && quote.Low[i] != nil {
			s.Opens = append(s.Opens, *quote.Open[i])
			s.Highs = append(s.Highs, *quote.High[i])
			s.Lows = append(s.Lows, *quote.Low[i])
		} else {
			full = false
		}
		s.Closes = append(s.Closes, *c)
	}
	if !full {
		s.Opens, s.Highs, s.Lows = nil, nil, nil
	}
	if len(s.Closes) == 0 {
		return nil, ErrNoData
	}
	return finish(s, tf, p.name), nil
}
