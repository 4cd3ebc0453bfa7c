package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"log"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Providers struct {
		Timeout           time.Duration `yaml:"timeout"`
		AlphaVantageKey   string        `yaml:"alpha_vantage_api_key"`
		CoinGeckoURL      string        `yaml:"coingecko_url"`
		YahooURL          string        `yaml:"yahoo_url"`
		AlphaVantageURL   string        `yaml:"alpha_vantage_url"`
		ExchangeRateURL   string        `yaml:"exchangerate_url"`
		RateLimitCapacity float64       `yaml:"rate_limit_capacity"`
		RateLimitPerSec   float64       `yaml:"rate_limit_per_sec"`
	} `yaml:"providers"`
	Cache struct {
		Backend  string `yaml:"backend"`
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		Prefix   string `yaml:"prefix"`
	} `yaml:"cache"`
	Signals struct {
		DefaultPairs     []string      `yaml:"default_pairs"`
		DefaultTimeframe string        `yaml:"default_timeframe"`
		BatchBudget      time.Duration `yaml:"batch_budget"`
		ResultTTL        time.Duration `yaml:"result_ttl"`
		RSIBuy           float64       `yaml:"rsi_buy"`
		RSISell          float64       `yaml:"rsi_sell"`
		MACDConfirm      float64       `yaml:"macd_confirm"`
		Relaxation       struct {
			SellRSIGrace        float64 `yaml:"sell_rsi_grace"`
			BuyRSIGrace         float64 `yaml:"buy_rsi_grace"`
			SellTrendFactor     float64 `yaml:"sell_trend_factor"`
			BuyTrendFactor      float64 `yaml:"buy_trend_factor"`
			BullishFundamentals float64 `yaml:"bullish_fundamentals"`
		} `yaml:"relaxation"`
	} `yaml:"signals"`
	Anchor struct {
		Ratio         float64 `yaml:"ratio"`
		ATRMultiplier float64 `yaml:"atr_multiplier"`
		FXPips        int     `yaml:"fx_pips"`
	} `yaml:"anchor"`
	Fundamentals struct {
		URL     string        `yaml:"url"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"fundamentals"`
	Backtest struct {
		InitialCapital    float64 `yaml:"initial_capital"`
		CryptoRiskPct     float64 `yaml:"crypto_risk_pct"`
		ForexRiskPct      float64 `yaml:"forex_risk_pct"`
		RewardMultiple    float64 `yaml:"reward_multiple"`
		TrailMultiple     float64 `yaml:"trail_multiple"`
		BreakevenFraction float64 `yaml:"breakeven_fraction"`
		MaxBars           int     `yaml:"max_bars"`
	} `yaml:"backtest"`
	Recorder struct {
		Backend    string `yaml:"backend"`
		SQLitePath string `yaml:"sqlite_path"`
		ClickHouse struct {
			Host        string        `yaml:"host"`
			Port        int           `yaml:"port"`
			Database    string        `yaml:"database"`
			User        string        `yaml:"user"`
			Password    string        `yaml:"password"`
			UseHTTP     bool          `yaml:"use_http"`
			DialTimeout time.Duration `yaml:"dial_timeout"`
			ReadTimeout time.Duration `yaml:"read_timeout"`
		} `yaml:"clickhouse"`
	} `yaml:"recorder"`
	Kafka struct {
		Enabled      bool          `yaml:"enabled"`
		Brokers      []string      `yaml:"brokers"`
		Topic        string        `yaml:"topic"`
		RequiredAcks int           `yaml:"required_acks"`
		Compression  string        `yaml:"compression"`
		WriteTimeout time.Duration `yaml:"write_timeout"`
		Async        bool          `yaml:"async"`
	} `yaml:"kafka"`
	Scheduler struct {
		Enabled bool   `yaml:"enabled"`
		Spec    string `yaml:"spec"`
	} `yaml:"scheduler"`
}

// Default returns a configuration usable without any file.
func Default() *Config {
	c := &Config{Environment: "development"}
	c.Server.Port = 8080
	c.Server.ReadTimeout = 10 * time.Second
	c.Server.WriteTimeout = 30 * time.Second
	c.Server.ShutdownTimeout = 10 * time.Second
	c.Log.Level = "info"
	c.Log.Format = "console"
	c.Log.Output = "stdout"
	c.Metrics.Enabled = true
	c.Metrics.Path = "/metrics"
	c.Providers.Timeout = 3500 * time.Millisecond
	c.Providers.CoinGeckoURL = "https://api.coingecko.com/api/v3"
	c.Providers.YahooURL = "https://query1.finance.yahoo.com/v8/finance/chart"
	c.Providers.AlphaVantageURL = "https://www.alphavantage.co/query"
	c.Providers.ExchangeRateURL = "https://api.exchangerate.host/timeseries"
	c.Providers.RateLimitCapacity = 10
	c.Providers.RateLimitPerSec = 2
	c.Cache.Backend = "memory"
	c.Cache.Prefix = "fxsignals"
	c.Signals.DefaultPairs = []string{"EUR/USD", "USD/JPY", "GBP/USD", "BTC/USD", "ETH/USD"}
	c.Signals.DefaultTimeframe = "1H"
	c.Signals.BatchBudget = 10 * time.Second
	c.Signals.ResultTTL = time.Minute
	c.Signals.RSIBuy = 55
	c.Signals.RSISell = 45
	c.Signals.Relaxation.SellRSIGrace = 5
	c.Signals.Relaxation.BuyRSIGrace = 2
	c.Signals.Relaxation.SellTrendFactor = 0.9995
	c.Signals.Relaxation.BuyTrendFactor = 1.0005
	c.Signals.Relaxation.BullishFundamentals = 56
	c.Anchor.Ratio = 1.2
	c.Anchor.ATRMultiplier = 5
	c.Anchor.FXPips = 10
	c.Fundamentals.Timeout = 2500 * time.Millisecond
	c.Backtest.InitialCapital = 10000
	c.Backtest.CryptoRiskPct = 0.01
	c.Backtest.ForexRiskPct = 0.003
	c.Backtest.RewardMultiple = 2
	c.Backtest.TrailMultiple = 1.5
	c.Backtest.BreakevenFraction = 0.5
	c.Backtest.MaxBars = 50
	c.Recorder.Backend = "none"
	c.Recorder.SQLitePath = "data/fxsignals.db"
	c.Recorder.ClickHouse.Port = 9000
	c.Recorder.ClickHouse.Database = "fxsignals"
	c.Kafka.Topic = "fxsignals.signals"
	c.Kafka.RequiredAcks = -1
	c.Kafka.Compression = "snappy"
	c.Kafka.WriteTimeout = 10 * time.Second
	c.Scheduler.Spec = "@every 1m"
	return c
}

// Load reads and parses a YAML configuration file on top of Default.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// Validate required fields
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
// A missing file is not an error; defaults plus environment are used instead.
func LoadWithEnv(path string) (*Config, error) {
	var c *Config
	if _, err := os.Stat(path); err == nil {
		c, err = Load(path)
		if err != nil {
			return nil, err
		}
	} else {
		c = Default()
	}

	applyEnv(c)

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func applyEnv(c *Config) {
	if v := os.Getenv("ENVIRONMENT"); v != "" {
		c.Environment = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Server.Port = n
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("ALPHA_VANTAGE_API_KEY"); v != "" {
		c.Providers.AlphaVantageKey = v
	}
	if v := os.Getenv("SIGNAL_PAIRS"); v != "" {
		c.Signals.DefaultPairs = strings.Split(v, ",")
	}
	if v, ok := envFloat("RSI_BUY"); ok {
		c.Signals.RSIBuy = v
	}
	if v, ok := envFloat("RSI_SELL"); ok {
		c.Signals.RSISell = v
	}
	if v, ok := envFloat("MACD_CONFIRM"); ok {
		c.Signals.MACDConfirm = v
	}
	// Anchor overrides keep the previous value when the input is out of range.
	if v, ok := envFloat("LIVE_PRICE_ANCHOR_RATIO"); ok && v > 1 {
		c.Anchor.Ratio = v
	}
	if v, ok := envFloat("LIVE_PRICE_ANCHOR_ATR_MULTIPLIER"); ok && v > 0 {
		c.Anchor.ATRMultiplier = v
	}
	if v, ok := envFloat("LIVE_PRICE_ANCHOR_FX_PIPS"); ok && v > 0 {
		c.Anchor.FXPips = int(v)
	}
	if v := os.Getenv("FUNDAMENTALS_URL"); v != "" {
		c.Fundamentals.URL = v
	}
	if v := os.Getenv("CACHE_BACKEND"); v != "" {
		c.Cache.Backend = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Cache.Addr = v
	}
	if v := os.Getenv("RECORDER_BACKEND"); v != "" {
		c.Recorder.Backend = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}
}

func envFloat(key string) (float64, bool) {
	raw := os.Getenv(key)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be positive, got %d", c.Server.Port)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server.shutdown_timeout must be positive")
	}
	if c.Providers.Timeout <= 0 {
		return fmt.Errorf("providers.timeout must be positive")
	}
	switch c.Cache.Backend {
	case "memory":
	case "redis":
		if c.Cache.Addr == "" {
			return fmt.Errorf("cache.addr is required for redis backend")
		}
	default:
		return fmt.Errorf("cache.backend must be 'memory' or 'redis', got '%s'", c.Cache.Backend)
	}
	switch c.Recorder.Backend {
	case "none", "sqlite", "clickhouse":
	default:
		return fmt.Errorf("recorder.backend must be 'none', 'sqlite' or 'clickhouse', got '%s'", c.Recorder.Backend)
	}
	if c.Recorder.Backend == "clickhouse" && c.Recorder.ClickHouse.Host == "" {
		return fmt.Errorf("recorder.clickhouse.host is required")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	if c.Scheduler.Enabled && c.Scheduler.Spec == "" {
		return fmt.Errorf("scheduler.spec is required when the scheduler is enabled")
	}
	if len(c.Signals.DefaultPairs) == 0 {
		return fmt.Errorf("signals.default_pairs cannot be empty")
	}
	if c.Anchor.Ratio <= 1 {
		return fmt.Errorf("anchor.ratio must be greater than 1")
	}
	if c.Backtest.InitialCapital <= 0 {
		return fmt.Errorf("backtest.initial_capital must be positive")
	}
	return nil
}
