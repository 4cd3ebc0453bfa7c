package provider

import (
	"hash/fnv"
	"math"
	"math/rand"

	"FXSignals/internal/domain/models"
	"FXSignals/internal/domain/repository"
)

// Default centre prices when no live quote is known.
const (
	DefaultCryptoPrice = 100.0
	DefaultForexPrice  = 1.1
)

// Synthetic generates a deterministic series for a pair and timeframe.
// It is the last resort once every provider and the cache have failed.
func Synthetic(pair models.Pair, tf repository.Timeframe, price float64) models.PriceSeries {
	if price <= 0 {
		price = DefaultForexPrice
		if pair.IsCrypto() {
			price = DefaultCryptoPrice
		}
	}
	volPct := 0.002
	if pair.IsCrypto() {
		volPct = 0.015
	}
	vol := price * volPct

	h := fnv.New64a()
	_, _ = h.Write([]byte(pair.String() + "|" + tf.String()))
	rng := rand.New(rand.NewSource(int64(h.Sum64())))

	n := tf.Lookback()
	s := models.PriceSeries{
		Opens:  make([]float64, n),
		Highs:  make([]float64, n),
		Lows:   make([]float64, n),
		Closes: make([]float64, n),
		Source: models.SourceSynthetic,
	}
	for i := 0; i < n; i++ {
		noise := rng.Float64() - 0.5
		c := price + math.Sin(float64(i)/7)*vol*0.25 + noise*vol*0.05
		s.Closes[i] = c
		s.Highs[i] = c + rng.Float64()*vol*0.1
		s.Lows[i] = c - rng.Float64()*vol*0.1
		if i == 0 {
			s.Opens[i] = c
		} else {
			s.Opens[i] = s.Closes[i-1]
		}
	}
	return s
}
