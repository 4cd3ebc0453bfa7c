package provider

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"FXSignals/internal/domain/models"
	"FXSignals/internal/domain/repository"
)

const defaultCoinGeckoURL = "https://api.coingecko.com/api/v3"

// coinGeckoWindow returns the days of history and the sampling interval for tf.
func coinGeckoWindow(tf repository.Timeframe) (days, interval string) {
	switch tf {
	case repository.TF1D:
		return "400", "daily"
	case repository.TF1H, repository.TF4H:
		return "14", "hourly"
	default:
		return "1", "minutely"
	}
}

// CoinGeckoMarketChart reads close prices from /coins/{id}/market_chart.
type CoinGeckoMarketChart struct{ httpBase }

// NewCoinGeckoMarketChart creates the market_chart adapter.
func NewCoinGeckoMarketChart(opts ...Option) *CoinGeckoMarketChart {
	return &CoinGeckoMarketChart{httpBase{name: "coingecko_market_chart", opts: buildOptions(defaultCoinGeckoURL, opts)}}
}

func (p *CoinGeckoMarketChart) Name() string { return p.name }

func (p *CoinGeckoMarketChart) Fetch(ctx context.Context, pair models.Pair, tf repository.Timeframe) (*models.PriceSeries, error) {
	if !pair.IsCrypto() {
		return nil, ErrUnsupported
	}
	days, interval := coinGeckoWindow(tf)
	q := url.Values{}
	q.Set("vs_currency", strings.ToLower(pair.Quote))
	q.Set("days", days)
	q.Set("interval", interval)

	var body struct {
		Prices [][]float64 `json:"prices"`
	}
	if err := p.getJSON(ctx, fmt.Sprintf("/coins/%s/market_chart", pair.CoinGeckoID()), q, &body); err != nil {
		return nil, err
	}
	s := &models.PriceSeries{}
	for _, row := range body.Prices {
		if len(row) < 2 || row[1] <= 0 {
			continue
		}
		s.Closes = append(s.Closes, row[1])
	}
	if len(s.Closes) == 0 {
		return nil, ErrNoData
	}
	return finish(s, tf, p.name), nil
}

// CoinGeckoOHLC reads candles from /coins/{id}/ohlc.
type CoinGeckoOHLC struct{ httpBase }

// NewCoinGeckoOHLC creates the ohlc adapter.
func NewCoinGeckoOHLC(opts ...Option) *CoinGeckoOHLC {
	return &CoinGeckoOHLC{httpBase{name: "coingecko_ohlc", opts: buildOptions(defaultCoinGeckoURL, opts)}}
}

func (p *CoinGeckoOHLC) Name() string { return p.name }

func (p *CoinGeckoOHLC) Fetch(ctx context.Context, pair models.Pair, tf repository.Timeframe) (*models.PriceSeries, error) {
	if !pair.IsCrypto() {
		return nil, ErrUnsupported
	}
	days, _ := coinGeckoWindow(tf)
	q := url.Values{}
	q.Set("vs_currency", strings.ToLower(pair.Quote))
	q.Set("days", days)

	var rows [][]float64
	if err := p.getJSON(ctx, fmt.Sprintf("/coins/%s/ohlc", pair.CoinGeckoID()), q, &rows); err != nil {
		return nil, err
	}
	s := &models.PriceSeries{}
	for _, r := range rows {
		if len(r) < 5 || r[4] <= 0 {
			continue
		}
		s.Opens = append(s.Opens, r[1])
		s.Highs = append(s.Highs, r[2])
		s.Lows = append(s.Lows, r[3])
		s.Closes = append(s.Closes, r[4])
	}
	if len(s.Closes) == 0 {
		return nil, ErrNoData
	}
	return finish(s, tf, p.name), nil
}
