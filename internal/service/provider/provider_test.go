package provider

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FXSignals/internal/domain/models"
	"FXSignals/internal/domain/repository"
	"FXSignals/internal/service/ratelimit"
	xhttp "FXSignals/pkg/http"
)

var (
	eurusd = models.MustPair("EUR/USD")
	btcusd = models.MustPair("BTC/USD")
)

type stubProvider struct {
	name   string
	series *models.PriceSeries
	err    error
	block  bool
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Fetch(ctx context.Context, _ models.Pair, _ repository.Timeframe) (*models.PriceSeries, error) {
	if s.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return s.series, s.err
}

type attemptLog struct {
	mu       sync.Mutex
	outcomes map[string]string
}

func (a *attemptLog) RecordProviderAttempt(provider, outcome string, _ float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.outcomes == nil {
		a.outcomes = map[string]string{}
	}
	a.outcomes[provider] = outcome
}
func (a *attemptLog) RecordCache(string, string)                  {}
func (a *attemptLog) RecordSignal(string, string, string, int)    {}
func (a *attemptLog) RecordBacktest(string, string, int, float64) {}
func (a *attemptLog) RecordError(string)                          {}

func good(name string) *stubProvider {
	return &stubProvider{name: name, series: &models.PriceSeries{Closes: []float64{1, 2, 3}, Source: name}}
}

func TestChainFallsBackInOrder(t *testing.T) {
	m := &attemptLog{}
	c := NewChain(
		WithForex(
			&stubProvider{name: "broken", err: errors.New("boom")},
			&stubProvider{name: "empty"},
			&stubProvider{name: "mismatched", series: &models.PriceSeries{Closes: []float64{1, 2}, Highs: []float64{1}}},
			&stubProvider{name: "short", series: &models.PriceSeries{Closes: []float64{1}}},
			good("second"),
			good("third"),
		),
		WithMetrics(m),
	)

	s, err := c.Fetch(context.Background(), eurusd, repository.TF1H)
	require.NoError(t, err)
	assert.Equal(t, "second", s.Source)
	assert.Equal(t, map[string]string{
		"broken": "error", "empty": "error", "mismatched": "error", "short": "error", "second": "ok",
	}, m.outcomes)
}

func TestChainRoutesByAssetClass(t *testing.T) {
	c := NewChain(WithForex(good("fx")), WithCrypto(good("crypto")))
	s, err := c.Fetch(context.Background(), btcusd, repository.TF1H)
	require.NoError(t, err)
	assert.Equal(t, "crypto", s.Source)
}

func TestFirstAvailablePerAttemptTimeout(t *testing.T) {
	c := NewChain(
		WithForex(&stubProvider{name: "slow", block: true}, good("fast")),
		WithAttemptTimeout(20*time.Millisecond),
	)
	start := time.Now()
	s, err := c.Fetch(context.Background(), eurusd, repository.TF1H)
	require.NoError(t, err)
	assert.Equal(t, "fast", s.Source)
	assert.Less(t, time.Since(start), time.Second)
}

func TestFirstAvailableAllFail(t *testing.T) {
	_, name, err := FirstAvailable(context.Background(), time.Second, nil,
		Attempt[int]{Name: "a", Run: func(context.Context) (int, error) { return 0, ErrNoData }},
		Attempt[int]{Name: "b", Run: func(context.Context) (int, error) { return 0, ErrShortSeries }},
	)
	require.Error(t, err)
	assert.Empty(t, name)
	assert.ErrorIs(t, err, ErrNoData)
	assert.ErrorIs(t, err, ErrShortSeries)
}

func TestResample4H(t *testing.T) {
	s := &models.PriceSeries{
		Opens:  []float64{1, 2, 3, 4, 5, 6},
		Highs:  []float64{2, 5, 4, 5, 9, 7},
		Lows:   []float64{0.5, 1, 2, 3, 4, 1},
		Closes: []float64{1.5, 2.5, 3.5, 4.5, 5.5, 6.5},
	}
	out := Resample4H(s)
	assert.Equal(t, []float64{4.5, 6.5}, out.Closes)
	assert.Equal(t, []float64{1, 5}, out.Opens)
	assert.Equal(t, []float64{5, 9}, out.Highs)
	assert.Equal(t, []float64{0.5, 1}, out.Lows)
}

func TestCoinGeckoMarketChart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/coins/bitcoin/market_chart", r.URL.Path)
		assert.Equal(t, "usd", r.URL.Query().Get("vs_currency"))
		assert.Equal(t, "14", r.URL.Query().Get("days"))
		assert.Equal(t, "hourly", r.URL.Query().Get("interval"))
		_, _ = w.Write([]byte(`{"prices":[[1,10],[2,11],[3,12],[4,13],[5,14],[6,15],[7,16],[8,17]]}`))
	}))
	defer srv.Close()

	p := NewCoinGeckoMarketChart(WithBaseURL(srv.URL))
	s, err := p.Fetch(context.Background(), btcusd, repository.TF4H)
	require.NoError(t, err)
	assert.Equal(t, []float64{13, 17}, s.Closes)
	assert.Equal(t, "coingecko_market_chart", s.Source)

	_, err = p.Fetch(context.Background(), eurusd, repository.TF1H)
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestCoinGeckoOHLC(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/coins/ethereum/ohlc", r.URL.Path)
		assert.Equal(t, "400", r.URL.Query().Get("days"))
		_, _ = w.Write([]byte(`[[1,10,12,9,11],[2,11,13,10,12]]`))
	}))
	defer srv.Close()

	s, err := NewCoinGeckoOHLC(WithBaseURL(srv.URL)).Fetch(context.Background(), models.MustPair("ETH/USD"), repository.TF1D)
	require.NoError(t, err)
	assert.True(t, s.HasOHLC())
	assert.Equal(t, []float64{11, 12}, s.Closes)
	assert.Equal(t, []float64{12, 13}, s.Highs)
}

func TestYahooSkipsNullBars(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/EURUSD=X", r.URL.Path)
		assert.Equal(t, "60m", r.URL.Query().Get("interval"))
		assert.Equal(t, "1mo", r.URL.Query().Get("range"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(`{"chart":{"result":[{"indicators":{"quote":[{
			"open":[1.1,null,1.2],"high":[1.2,null,1.3],"low":[1.0,null,1.1],"close":[1.15,null,1.25]}]}}]}}`))
	}))
	defer srv.Close()

	s, err := NewYahoo(WithBaseURL(srv.URL)).Fetch(context.Background(), eurusd, repository.TF1H)
	require.NoError(t, err)
	assert.Equal(t, []float64{1.15, 1.25}, s.Closes)
	assert.Equal(t, []float64{1.1, 1.2}, s.Opens)
	assert.Equal(t, "yahoo", s.Source)
}

func TestYahooSymbolAndWindow(t *testing.T) {
	assert.Equal(t, "BTC-USD", YahooSymbol(btcusd))
	assert.Equal(t, "USDJPY=X", YahooSymbol(models.MustPair("USD/JPY")))

	i, r := yahooWindow(btcusd, repository.TF1D)
	assert.Equal(t, []string{"1d", "5y"}, []string{i, r})
	i, r = yahooWindow(eurusd, repository.TF15m)
	assert.Equal(t, []string{"15m", "5d"}, []string{i, r})
}

func TestAlphaVantageIntraday(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "FX_INTRADAY", q.Get("function"))
		assert.Equal(t, "15min", q.Get("interval"))
		assert.Equal(t, "k", q.Get("apikey"))
		_, _ = w.Write([]byte(`{"Time Series FX (15min)":{
			"2024-01-02 10:15:00":{"1. open":"1.2","2. high":"1.3","3. low":"1.1","4. close":"1.25"},
			"2024-01-02 10:00:00":{"1. open":"1.1","2. high":"1.2","3. low":"1.0","4. close":"1.15"}}}`))
	}))
	defer srv.Close()

	p := NewAlphaVantageIntraday(WithBaseURL(srv.URL), WithAPIKey("k"))
	s, err := p.Fetch(context.Background(), eurusd, repository.TF15m)
	require.NoError(t, err)
	assert.Equal(t, []float64{1.15, 1.25}, s.Closes)

	_, err = p.Fetch(context.Background(), eurusd, repository.TF1D)
	assert.ErrorIs(t, err, ErrUnsupported)

	_, err = NewAlphaVantageDaily(WithBaseURL(srv.URL)).Fetch(context.Background(), eurusd, repository.TF1D)
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestAlphaVantageMissingSeriesIsNoData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"Information":"bad request"}`))
	}))
	defer srv.Close()

	_, err := NewAlphaVantageDaily(WithBaseURL(srv.URL), WithAPIKey("k")).Fetch(context.Background(), eurusd, repository.TF1D)
	assert.ErrorIs(t, err, ErrNoData)
}

func TestExchangeRateSortsDates(t *testing.T) {
	now := time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "2024-01-03", q.Get("start_date"))
		assert.Equal(t, "2024-07-01", q.Get("end_date"))
		assert.Equal(t, "EUR", q.Get("base"))
		_, _ = w.Write([]byte(`{"rates":{"2024-06-30":{"USD":1.2},"2024-06-29":{"USD":1.1},"2024-07-01":{"USD":1.3}}}`))
	}))
	defer srv.Close()

	p := NewExchangeRate(WithBaseURL(srv.URL), WithClock(func() time.Time { return now }))
	s, err := p.Fetch(context.Background(), eurusd, repository.TF1D)
	require.NoError(t, err)
	assert.Equal(t, []float64{1.1, 1.2, 1.3}, s.Closes)
}

func TestHTTPErrorsAndRateLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewYahoo(WithBaseURL(srv.URL)).Fetch(context.Background(), eurusd, repository.TF1H)
	assert.Error(t, err)

	lim := ratelimit.New()
	p := NewYahoo(WithBaseURL(srv.URL), WithRateLimit(lim, 1, 0))
	_, _ = p.Fetch(context.Background(), eurusd, repository.TF1H)
	_, err = p.Fetch(context.Background(), eurusd, repository.TF1H)
	assert.ErrorIs(t, err, ErrRateLimited)
}

func TestRetryable(t *testing.T) {
	assert.False(t, retryable(ErrRateLimited))
	assert.False(t, retryable(context.Canceled))
	assert.False(t, retryable(&xhttp.StatusError{Code: http.StatusNotFound}))
	assert.True(t, retryable(&xhttp.StatusError{Code: http.StatusTooManyRequests}))
	assert.True(t, retryable(&xhttp.StatusError{Code: http.StatusBadGateway}))
	assert.True(t, retryable(errors.New("connection reset")))
}

func TestSyntheticIsDeterministic(t *testing.T) {
	a := Synthetic(eurusd, repository.TF1H, 0)
	b := Synthetic(eurusd, repository.TF1H, 0)
	assert.Equal(t, a, b)
	require.NoError(t, a.Validate())
	assert.Len(t, a.Closes, repository.TF1H.Lookback())
	assert.Equal(t, models.SourceSynthetic, a.Source)
	for _, c := range a.Closes {
		assert.InDelta(t, DefaultForexPrice, c, DefaultForexPrice*0.002)
	}

	c := Synthetic(eurusd, repository.TF4H, 0)
	assert.NotEqual(t, a.Closes[:10], c.Closes[:10])

	btc := Synthetic(btcusd, repository.TF1D, 60000)
	assert.InDelta(t, 60000, btc.Closes[0], 60000*0.015)
}

func TestSyntheticNoiseAmplitude(t *testing.T) {
	s := Synthetic(eurusd, repository.TF1H, 0)
	vol := DefaultForexPrice * 0.002
	widest := 0.0
	for i, c := range s.Closes {
		residual := c - DefaultForexPrice - math.Sin(float64(i)/7)*vol*0.25
		widest = math.Max(widest, math.Abs(residual))
	}
	// noise in [-0.5, 0.5) scaled by 5% of vol
	assert.LessOrEqual(t, widest, vol*0.025+1e-12)
	assert.Greater(t, widest, vol*0.01)
}

func TestLivePrices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/coins/markets":
			assert.Equal(t, "bitcoin", r.URL.Query().Get("ids"))
			_, _ = w.Write([]byte(`[{"current_price":64000.5}]`))
		default:
			assert.Equal(t, "CURRENCY_EXCHANGE_RATE", r.URL.Query().Get("function"))
			_, _ = w.Write([]byte(`{"Realtime Currency Exchange Rate":{"5. Exchange Rate":"1.0875"}}`))
		}
	}))
	defer srv.Close()

	live := &LivePrices{
		Crypto: NewCoinGeckoLive(WithBaseURL(srv.URL)),
		Forex:  NewAlphaVantageLive(WithBaseURL(srv.URL), WithAPIKey("k")),
	}
	p, err := live.CurrentPrice(context.Background(), btcusd)
	require.NoError(t, err)
	assert.Equal(t, 64000.5, p)

	p, err = live.CurrentPrice(context.Background(), eurusd)
	require.NoError(t, err)
	assert.Equal(t, 1.0875, p)

	_, err = NewAlphaVantageLive(WithBaseURL(srv.URL)).CurrentPrice(context.Background(), eurusd)
	assert.ErrorIs(t, err, ErrUnsupported)
}
