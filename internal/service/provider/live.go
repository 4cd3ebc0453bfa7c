package provider

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"FXSignals/internal/domain/models"
	"FXSignals/internal/domain/repository"
)

// CoinGeckoLive quotes crypto through /coins/markets.
type CoinGeckoLive struct{ httpBase }

// NewCoinGeckoLive creates the crypto live price source.
func NewCoinGeckoLive(opts ...Option) *CoinGeckoLive {
	return &CoinGeckoLive{httpBase{name: "coingecko_live", opts: buildOptions(defaultCoinGeckoURL, opts)}}
}

func (p *CoinGeckoLive) CurrentPrice(ctx context.Context, pair models.Pair) (float64, error) {
	q := url.Values{}
	q.Set("vs_currency", strings.ToLower(pair.Quote))
	q.Set("ids", pair.CoinGeckoID())
	var rows []struct {
		CurrentPrice float64 `json:"current_price"`
	}
	if err := p.getJSONWithRetry(ctx, "/coins/markets", q, &rows, 2); err != nil {
		return 0, fmt.Errorf("%s: %w", p.name, err)
	}
	if len(rows) == 0 || rows[0].CurrentPrice <= 0 {
		return 0, fmt.Errorf("%s: %w", p.name, ErrNoData)
	}
	return rows[0].CurrentPrice, nil
}

// AlphaVantageLive quotes forex through CURRENCY_EXCHANGE_RATE.
type AlphaVantageLive struct{ httpBase }

// NewAlphaVantageLive creates the forex live price source.
func NewAlphaVantageLive(opts ...Option) *AlphaVantageLive {
	return &AlphaVantageLive{httpBase{name: "alphavantage_live", opts: buildOptions(defaultAlphaVantageURL, opts)}}
}

func (p *AlphaVantageLive) CurrentPrice(ctx context.Context, pair models.Pair) (float64, error) {
	if p.opts.APIKey == "" {
		return 0, fmt.Errorf("%s: %w: no api key", p.name, ErrUnsupported)
	}
	q := url.Values{}
	q.Set("function", "CURRENCY_EXCHANGE_RATE")
	q.Set("from_currency", pair.Base)
	q.Set("to_currency", pair.Quote)
	q.Set("apikey", p.opts.APIKey)
	var body struct {
		Rate struct {
			Value string `json:"5. Exchange Rate"`
		} `json:"Realtime Currency Exchange Rate"`
	}
	if err := p.getJSON(ctx, "", q, &body); err != nil {
		return 0, fmt.Errorf("%s: %w", p.name, err)
	}
	v, err := strconv.ParseFloat(body.Rate.Value, 64)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("%s: %w", p.name, ErrNoData)
	}
	return v, nil
}

// LivePrices routes a pair to the live source for its asset class.
type LivePrices struct {
	Crypto repository.LivePriceSource
	Forex  repository.LivePriceSource
}

func (l *LivePrices) CurrentPrice(ctx context.Context, pair models.Pair) (float64, error) {
	src := l.Forex
	if pair.IsCrypto() {
		src = l.Crypto
	}
	if src == nil {
		return 0, ErrUnsupported
	}
	return src.CurrentPrice(ctx, pair)
}
