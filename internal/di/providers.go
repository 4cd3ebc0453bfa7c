package di

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"FXSignals/internal/domain/repository"
	"FXSignals/internal/handler/api"
	"FXSignals/internal/handler/ws"
	mid "FXSignals/internal/middleware"
	internalrepo "FXSignals/internal/repository"
	"FXSignals/internal/scheduler"
	"FXSignals/internal/service/cache"
	"FXSignals/internal/service/fundamentals"
	"FXSignals/internal/service/provider"
	"FXSignals/internal/service/ratelimit"
	"FXSignals/internal/services/backtest"
	"FXSignals/internal/services/decision"
	"FXSignals/internal/services/levels"
	"FXSignals/internal/usecase"
	pkgch "FXSignals/pkg/clickhouse"
	"FXSignals/pkg/config"
	xhttp "FXSignals/pkg/http"
	pkgkafka "FXSignals/pkg/kafka"
	"FXSignals/pkg/logger"
	"FXSignals/pkg/metrics"
	"FXSignals/pkg/server"
)

// CacheStore is the shared byte cache plus its housekeeping hooks.
type CacheStore struct {
	Store  cache.BytesCache
	ttl    *cache.TTLCache
	closer io.Closer
}

// Sweep drops expired in-process entries. Redis expires on its own.
func (c *CacheStore) Sweep() int {
	if c.ttl == nil {
		return 0
	}
	return c.ttl.Sweep()
}

func (c *CacheStore) Close() error {
	if c.closer == nil {
		return nil
	}
	return c.closer.Close()
}

// ProvideLogger builds the application logger from the log section.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	l, err := logger.New(&logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: cfg.Log.Output})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideMetrics creates a Prometheus metrics recorder, or a no-op when metrics are off.
func ProvideMetrics(cfg *config.Config) repository.Metrics {
	if !cfg.Metrics.Enabled {
		return metrics.Nop{}
	}
	return metrics.New()
}

// ProvideCacheStore selects the in-process map or Redis.
func ProvideCacheStore(cfg *config.Config, l *logger.Logger) (*CacheStore, error) {
	if cfg.Cache.Backend != "redis" {
		ttl := cache.NewTTLCache()
		return &CacheStore{Store: ttl, ttl: ttl}, nil
	}
	rc := cache.NewRedisCache(cache.RedisConfig{
		Addr:     cfg.Cache.Addr,
		Password: cfg.Cache.Password,
		DB:       cfg.Cache.DB,
		Prefix:   cfg.Cache.Prefix,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rc.Ping(ctx); err != nil {
		_ = rc.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Cache.Addr, err)
	}
	l.Info("redis cache connected", logger.String("addr", cfg.Cache.Addr))
	return &CacheStore{Store: rc, closer: rc}, nil
}

// ProvideRateLimiter creates the outbound limiter shared by all providers.
func ProvideRateLimiter() *ratelimit.Limiter {
	return ratelimit.New()
}

// ProvideHTTPClient creates the outbound HTTP client.
func ProvideHTTPClient(cfg *config.Config) *xhttp.Client {
	return xhttp.NewClient(xhttp.WithTimeout(2 * cfg.Providers.Timeout))
}

func providerOptions(cfg *config.Config, client *xhttp.Client, rl *ratelimit.Limiter, baseURL string) []provider.Option {
	opts := []provider.Option{
		provider.WithClient(client),
		provider.WithRateLimit(rl, cfg.Providers.RateLimitCapacity, cfg.Providers.RateLimitPerSec),
	}
	if baseURL != "" {
		opts = append(opts, provider.WithBaseURL(baseURL))
	}
	return opts
}

// ProvideSeriesProvider builds the crypto and forex fallback chains.
func ProvideSeriesProvider(cfg *config.Config, client *xhttp.Client, rl *ratelimit.Limiter, m repository.Metrics, l *logger.Logger) repository.SeriesProvider {
	p := cfg.Providers
	av := append(providerOptions(cfg, client, rl, p.AlphaVantageURL), provider.WithAPIKey(p.AlphaVantageKey))
	yahoo := provider.NewYahoo(providerOptions(cfg, client, rl, p.YahooURL)...)

	chain := provider.NewChain(
		provider.WithCrypto(
			provider.NewCoinGeckoMarketChart(providerOptions(cfg, client, rl, p.CoinGeckoURL)...),
			provider.NewCoinGeckoOHLC(providerOptions(cfg, client, rl, p.CoinGeckoURL)...),
			yahoo,
		),
		provider.WithForex(
			provider.NewAlphaVantageIntraday(av...),
			provider.NewAlphaVantageDaily(av...),
			yahoo,
			provider.NewExchangeRate(providerOptions(cfg, client, rl, p.ExchangeRateURL)...),
		),
		provider.WithAttemptTimeout(p.Timeout),
		provider.WithMetrics(m),
	)
	chain.SetLogger(l)
	return chain
}

// ProvideLivePrices routes live quotes by asset class.
func ProvideLivePrices(cfg *config.Config, client *xhttp.Client, rl *ratelimit.Limiter) repository.LivePriceSource {
	p := cfg.Providers
	return &provider.LivePrices{
		Crypto: provider.NewCoinGeckoLive(providerOptions(cfg, client, rl, p.CoinGeckoURL)...),
		Forex: provider.NewAlphaVantageLive(append(providerOptions(cfg, client, rl, p.AlphaVantageURL),
			provider.WithAPIKey(p.AlphaVantageKey))...),
	}
}

// ProvideFundamentals uses the remote service when configured, the static base score otherwise.
func ProvideFundamentals(cfg *config.Config, store *CacheStore, l *logger.Logger) repository.FundamentalsSource {
	var src repository.FundamentalsSource = fundamentals.StaticSource{}
	if cfg.Fundamentals.URL != "" {
		src = fundamentals.NewHTTPSource(cfg.Fundamentals.URL, cfg.Fundamentals.Timeout)
	}
	c := fundamentals.NewCached(src, store.Store)
	c.SetLogger(l)
	return c
}

// ProvideSeriesService wires the provider chain behind the series cache.
func ProvideSeriesService(p repository.SeriesProvider, store *CacheStore, live repository.LivePriceSource, m repository.Metrics, l *logger.Logger) *usecase.SeriesService {
	sc := cache.NewSeriesCache(store.Store, cache.WithCacheMetrics(m))
	s := usecase.NewSeriesService(p, sc, live, m)
	s.SetLogger(l)
	return s
}

// ProvideRecorder opens the configured snapshot store.
func ProvideRecorder(cfg *config.Config, l *logger.Logger) (repository.Recorder, error) {
	switch cfg.Recorder.Backend {
	case "sqlite":
		r, err := internalrepo.NewSQLiteRecorder(cfg.Recorder.SQLitePath, l)
		if err != nil {
			return nil, fmt.Errorf("sqlite recorder: %w", err)
		}
		return r, nil
	case "clickhouse":
		ch := cfg.Recorder.ClickHouse
		client, err := pkgch.NewClient(
			pkgch.WithHost(ch.Host),
			pkgch.WithPort(ch.Port),
			pkgch.WithDatabase(ch.Database),
			pkgch.WithCredentials(ch.User, ch.Password),
			pkgch.WithMaxConnections(10, 5),
			pkgch.WithHTTP(ch.UseHTTP),
			pkgch.WithAsyncInsert(true, false),
			pkgch.WithTimeouts(ch.DialTimeout, ch.ReadTimeout, ch.ReadTimeout),
		)
		if err != nil {
			return nil, fmt.Errorf("clickhouse client: %w", err)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		r, err := internalrepo.NewClickHouseRecorder(ctx, client)
		if err != nil {
			_ = client.Close()
			return nil, err
		}
		l.Info("clickhouse recorder ready", logger.String("database", ch.Database))
		return r, nil
	default:
		return internalrepo.NopRecorder{}, nil
	}
}

// ProvideSignalCalculator applies the configured thresholds and anchor rules.
func ProvideSignalCalculator(cfg *config.Config, series *usecase.SeriesService, live repository.LivePriceSource, fund repository.FundamentalsSource, rec repository.Recorder, m repository.Metrics, l *logger.Logger) *usecase.SignalCalculator {
	s := cfg.Signals
	engine := decision.NewEngine(
		decision.Thresholds{RSIBuy: s.RSIBuy, RSISell: s.RSISell, MACDConfirm: s.MACDConfirm},
		decision.Relaxation{
			SellRSIGrace:        s.Relaxation.SellRSIGrace,
			BuyRSIGrace:         s.Relaxation.BuyRSIGrace,
			SellTrendFactor:     s.Relaxation.SellTrendFactor,
			BuyTrendFactor:      s.Relaxation.BuyTrendFactor,
			BullishFundamentals: s.Relaxation.BullishFundamentals,
		},
	)
	calc := usecase.NewSignalCalculator(series, live, fund,
		usecase.WithEngine(engine),
		usecase.WithAnchor(levels.Anchor{Ratio: cfg.Anchor.Ratio, ATRMultiplier: cfg.Anchor.ATRMultiplier, FXPips: float64(cfg.Anchor.FXPips)}),
		usecase.WithRecorder(rec),
		usecase.WithSignalMetrics(m),
	)
	calc.SetLogger(l)
	return calc
}

func ProvideSignalsBatch(cfg *config.Config, calc *usecase.SignalCalculator, m repository.Metrics, l *logger.Logger) *usecase.SignalsBatch {
	b := usecase.NewSignalsBatch(calc, cfg.Signals.BatchBudget, m)
	b.SetLogger(l)
	return b
}

// BacktestConfig maps the backtest section onto the simulator parameters.
func BacktestConfig(cfg *config.Config) backtest.Config {
	b := cfg.Backtest
	return backtest.Config{
		InitialCapital:    b.InitialCapital,
		CryptoRiskPct:     b.CryptoRiskPct,
		ForexRiskPct:      b.ForexRiskPct,
		RewardMultiple:    b.RewardMultiple,
		TrailMultiple:     b.TrailMultiple,
		BreakevenFraction: b.BreakevenFraction,
		MaxBars:           b.MaxBars,
	}
}

func ProvideBacktest(cfg *config.Config, series *usecase.SeriesService, rec repository.Recorder, m repository.Metrics, l *logger.Logger) *usecase.BacktestUseCase {
	uc := usecase.NewBacktestUseCase(series, BacktestConfig(cfg), rec, m)
	uc.SetLogger(l)
	return uc
}

func ProvideResultCache(cfg *config.Config, store *CacheStore, m repository.Metrics) *cache.ResultCache {
	return cache.NewResultCache(store.Store, cfg.Signals.ResultTTL, m)
}

func ProvideHub(l *logger.Logger) *ws.Hub {
	h := ws.NewHub()
	h.SetLogger(l)
	return h
}

// ProvideKafkaPipeline returns nil when Kafka publishing is disabled.
func ProvideKafkaPipeline(cfg *config.Config, m repository.Metrics, l *logger.Logger) (*mid.PublishPipeline, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	k := cfg.Kafka
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(k.Brokers),
		pkgkafka.WithCompression(k.Compression),
		pkgkafka.WithRequiredAcks(k.RequiredAcks),
		pkgkafka.WithTimeouts(k.WriteTimeout, k.WriteTimeout),
		pkgkafka.WithAsync(k.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	l.Info("kafka publisher ready", logger.Strings("brokers", k.Brokers), logger.String("topic", k.Topic))
	return mid.NewPublishPipeline(
		internalrepo.NewKafkaSignalPublisher(producer, k.Topic), m,
		mid.WithPipelineLogger(l),
	), nil
}

// ProvidePublisher fans refreshed signals out to the websocket hub and Kafka.
func ProvidePublisher(hub *ws.Hub, pipe *mid.PublishPipeline) repository.Publisher {
	pubs := internalrepo.MultiPublisher{hub}
	if pipe != nil {
		pubs = append(pubs, pipe)
	}
	return pubs
}

func ProvideSignalsHandler(cfg *config.Config, l *logger.Logger, batch *usecase.SignalsBatch, bt *usecase.BacktestUseCase, results *cache.ResultCache) *api.SignalsHandler {
	return api.NewSignalsHandler(l, batch, bt, results, cfg.Signals.DefaultPairs)
}

// housekeeping runs on every refresh.
type housekeeping struct {
	store *CacheStore
	rl    *ratelimit.Limiter
}

func (h housekeeping) Sweep() int {
	return h.store.Sweep() + h.rl.Prune(10*time.Minute)
}

// ProvideRefresher returns nil when the scheduler is disabled.
func ProvideRefresher(cfg *config.Config, batch *usecase.SignalsBatch, results *cache.ResultCache, pub repository.Publisher, store *CacheStore, h *api.SignalsHandler, l *logger.Logger) (*scheduler.Refresher, error) {
	if !cfg.Scheduler.Enabled {
		return nil, nil
	}
	r, err := scheduler.NewRefresher(cfg.Scheduler.Spec, batch, cfg.Signals.DefaultPairs,
		repository.NormalizeTimeframe(cfg.Signals.DefaultTimeframe),
		scheduler.WithResultCache(results),
		scheduler.WithPublisher(pub),
		scheduler.WithSweeper(housekeeping{store: store, rl: h.Limiter()}),
		scheduler.WithRunTimeout(cfg.Signals.BatchBudget+5*time.Second),
		scheduler.WithLogger(l),
	)
	if err != nil {
		return nil, fmt.Errorf("refresher: %w", err)
	}
	return r, nil
}

// ProvideApp assembles the HTTP server and background components.
func ProvideApp(
	cfg *config.Config,
	l *logger.Logger,
	h *api.SignalsHandler,
	hub *ws.Hub,
	refresher *scheduler.Refresher,
	pipe *mid.PublishPipeline,
	pub repository.Publisher,
	rec repository.Recorder,
	store *CacheStore,
) *server.App {
	opts := []xhttp.ServerOption{
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithLogger(l),
	}
	if cfg.Metrics.Enabled {
		opts = append(opts, xhttp.WithMetrics(cfg.Metrics.Path))
	}
	srv := xhttp.NewServer([]xhttp.Handler{h, hub}, opts...)

	app := server.New(cfg, l, srv, hub)
	if refresher != nil {
		app.SetRefresher(refresher)
	}
	if pipe != nil {
		app.OnStart(pipe.Start)
	}
	app.AddCloser(pub, rec, store)
	return app
}

// BacktestRunner is the dependency graph of the backtest CLI.
type BacktestRunner struct {
	Logger   *logger.Logger
	Backtest *usecase.BacktestUseCase
	Recorder repository.Recorder
	Store    *CacheStore
}

// Close releases the recorder and cache connections.
func (b *BacktestRunner) Close() error {
	return errors.Join(b.Recorder.Close(), b.Store.Close())
}
