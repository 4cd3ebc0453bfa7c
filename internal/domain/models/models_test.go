package models

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePair(t *testing.T) {
	p, err := ParsePair(" eur/usd ")
	require.NoError(t, err)
	assert.Equal(t, Pair{Base: "EUR", Quote: "USD"}, p)
	assert.NoError(t, p.Validate())

	p, err = ParsePair("btc")
	require.NoError(t, err)
	assert.Equal(t, "BTC/USD", p.String(), "quote defaults to USD")
	assert.True(t, p.IsCrypto())
	assert.Equal(t, AssetCrypto, p.AssetClass())
	assert.Equal(t, "bitcoin", p.CoinGeckoID())

	for _, bad := range []string{"", "/USD", "EUR/"} {
		_, err := ParsePair(bad)
		assert.Error(t, err, bad)
	}
}

func TestPairValidate(t *testing.T) {
	assert.Error(t, Pair{Base: "E", Quote: "USD"}.Validate())
	assert.Error(t, Pair{Base: "EUR", Quote: "USDUSDUSDUS"}.Validate())
	assert.Error(t, Pair{Base: "EU-R", Quote: "USD"}.Validate())
	assert.NoError(t, Pair{Base: "1INCH", Quote: "USDT"}.Validate())
}

func TestPairPips(t *testing.T) {
	assert.Equal(t, 0.01, MustPair("USD/JPY").PipSize())
	assert.Equal(t, 0.0001, MustPair("EUR/USD").PipSize())
	assert.False(t, MustPair("EUR/GBP").HasUSD())
	assert.Equal(t, AssetForex, MustPair("EUR/GBP").AssetClass())
}

func TestSeriesValidateAndTail(t *testing.T) {
	s := PriceSeries{Closes: []float64{1, 2, 3, 4}, Highs: []float64{1, 2, 3}}
	assert.True(t, errors.Is(s.Validate(), ErrInvalidSeries))

	s = PriceSeries{Closes: []float64{1, 2, 3, 4}, Source: "yahoo"}
	require.NoError(t, s.Validate())
	tail := s.Tail(2)
	assert.Equal(t, []float64{3, 4}, tail.Closes)
	assert.Equal(t, []float64{3, 3}, tail.Opens, "opens are derived from the trimmed closes")
	assert.Equal(t, "yahoo", tail.Source)
	assert.Nil(t, tail.Highs)

	tail.Closes[0] = 99
	assert.Equal(t, 3.0, s.Closes[2], "tail is a copy")
	assert.Equal(t, 4.0, s.LastClose())
	long := s.Tail(10)
	assert.Equal(t, 4, long.Len())
}

func TestZoneContains(t *testing.T) {
	z := &Zone{Low: 1.0, High: 1.1}
	assert.True(t, z.Contains(1.05, 0))
	assert.False(t, z.Contains(1.12, 0.01))
	assert.True(t, z.Contains(1.12, 0.02))
	var nilZone *Zone
	assert.False(t, nilZone.Contains(1, 1))
}

func TestCachedSeriesFresh(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	c := CachedSeries{ExpiresAt: now.Add(time.Minute)}
	assert.True(t, c.Fresh(now))
	assert.False(t, c.Fresh(now.Add(time.Minute)))
}

func TestHoldFallback(t *testing.T) {
	f := HoldFallback(MustPair("ETH/USD"), "1H", "Timed out")
	assert.Equal(t, SignalHold, f.Type)
	assert.True(t, f.Stale)
	assert.True(t, f.IsFallback())
	assert.NotNil(t, f.News)

	f.DebugSource = "yahoo"
	assert.False(t, f.IsFallback())
}
