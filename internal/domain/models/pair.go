package models

import (
	"fmt"
	"strings"
)

// AssetClass distinguishes currency pairs from crypto pairs.
type AssetClass string

const (
	AssetForex  AssetClass = "Forex"
	AssetCrypto AssetClass = "Crypto"
)

var cryptoSymbols = map[string]string{
	"BTC":   "bitcoin",
	"ETH":   "ethereum",
	"SOL":   "solana",
	"XRP":   "ripple",
	"ADA":   "cardano",
	"DOGE":  "dogecoin",
	"LTC":   "litecoin",
	"BNB":   "binancecoin",
	"DOT":   "polkadot",
	"AVAX":  "avalanche-2",
	"LINK":  "chainlink",
	"MATIC": "matic-network",
	"TRX":   "tron",
	"SHIB":  "shiba-inu",
	"BCH":   "bitcoin-cash",
	"XLM":   "stellar",
	"NEAR":  "near",
	"UNI":   "uniswap",
}

// Pair is a BASE/QUOTE instrument such as EUR/USD or BTC/USD.
type Pair struct {
	Base  string
	Quote string
}

// ParsePair parses "BASE/QUOTE". Quote defaults to USD when omitted.
func ParsePair(s string) (Pair, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return Pair{}, fmt.Errorf("pair is empty")
	}
	base, quote, found := strings.Cut(s, "/")
	if !found {
		quote = "USD"
	}
	if base == "" || quote == "" {
		return Pair{}, fmt.Errorf("pair %q must be BASE/QUOTE", s)
	}
	return Pair{Base: base, Quote: quote}, nil
}

// MustPair parses s and panics on error. Intended for tests and constants.
func MustPair(s string) Pair {
	p, err := ParsePair(s)
	if err != nil {
		panic(err)
	}
	return p
}

// Validate checks that both legs are 2 to 10 ASCII letters or digits.
func (p Pair) Validate() error {
	for _, leg := range []string{p.Base, p.Quote} {
		if len(leg) < 2 || len(leg) > 10 {
			return fmt.Errorf("pair leg %q must be 2-10 characters", leg)
		}
		for _, r := range leg {
			if (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
				return fmt.Errorf("pair leg %q must be alphanumeric", leg)
			}
		}
	}
	return nil
}

func (p Pair) String() string { return p.Base + "/" + p.Quote }

// IsCrypto reports whether the base symbol is a known crypto asset.
func (p Pair) IsCrypto() bool {
	_, ok := cryptoSymbols[p.Base]
	return ok
}

// AssetClass returns the asset class derived from the base symbol.
func (p Pair) AssetClass() AssetClass {
	if p.IsCrypto() {
		return AssetCrypto
	}
	return AssetForex
}

// IsJPY reports whether either leg is the yen, which changes pip size.
func (p Pair) IsJPY() bool {
	return p.Base == "JPY" || p.Quote == "JPY"
}

// PipSize is 0.01 for yen pairs and 0.0001 otherwise.
func (p Pair) PipSize() float64 {
	if p.IsJPY() {
		return 0.01
	}
	return 0.0001
}

// CoinGeckoID maps the base symbol to a CoinGecko coin id.
func (p Pair) CoinGeckoID() string {
	if id, ok := cryptoSymbols[p.Base]; ok {
		return id
	}
	return strings.ToLower(p.Base)
}

// HasUSD reports whether USD is one of the legs.
func (p Pair) HasUSD() bool {
	return p.Base == "USD" || p.Quote == "USD"
}
