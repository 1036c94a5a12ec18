package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"GoldPredict/pkg/logger"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
		AllowOrigins    []string      `yaml:"allow_origins"`
	} `yaml:"server"`
	Log     logger.Config `yaml:"log"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Store struct {
		Backend         string        `yaml:"backend"` // postgres | memory
		DSN             string        `yaml:"dsn"`
		MaxOpenConns    int           `yaml:"max_open_conns"`
		MaxIdleConns    int           `yaml:"max_idle_conns"`
		ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
		AutoMigrate     bool          `yaml:"auto_migrate"`
		LogQueries      bool          `yaml:"log_queries"`
	} `yaml:"store"`
	Market struct {
		CloseHour            int    `yaml:"close_hour"`
		CloseMinute          int    `yaml:"close_minute"`
		Timezone             string `yaml:"timezone"`
		RequireNextDayRecord *bool  `yaml:"require_next_day_record"`
	} `yaml:"market"`
	Scheduler struct {
		IngestInterval     time.Duration `yaml:"ingest_interval"`
		IngestCron         string        `yaml:"ingest_cron"`
		SettlementInterval time.Duration `yaml:"settlement_interval"`
		SettlementCron     string        `yaml:"settlement_cron"`
		JobTimeout         time.Duration `yaml:"job_timeout"`
		IngestOnStart      bool          `yaml:"ingest_on_start"`
	} `yaml:"scheduler"`
	Settlement struct {
		Workers int `yaml:"workers"`
	} `yaml:"settlement"`
	PriceSource struct {
		GoldAPI struct {
			BaseURL string `yaml:"base_url"`
			APIKey  string `yaml:"api_key"`
		} `yaml:"goldapi"`
		Metals struct {
			BaseURL string `yaml:"base_url"`
			APIKey  string `yaml:"api_key"`
		} `yaml:"metals"`
		Finnhub struct {
			BaseURL string `yaml:"base_url"`
			APIKey  string `yaml:"api_key"`
			Symbol  string `yaml:"symbol"`
		} `yaml:"finnhub"`
		Timeout      time.Duration `yaml:"timeout"`
		Retries      int           `yaml:"retries"`
		MockFallback bool          `yaml:"mock_fallback"`
	} `yaml:"price_source"`
	Auth struct {
		JWTSecret string `yaml:"jwt_secret"`
		Issuer    string `yaml:"issuer"`
	} `yaml:"auth"`
	RateLimit struct {
		Enabled      bool `yaml:"enabled"`
		SubmitPerMin int  `yaml:"submit_per_minute"`
		SubmitBurst  int  `yaml:"submit_burst"`
	} `yaml:"rate_limit"`
	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		Prefix   string `yaml:"prefix"`
	} `yaml:"redis"`
	Kafka struct {
		Enabled      bool     `yaml:"enabled"`
		Brokers      []string `yaml:"brokers"`
		Topic        string   `yaml:"topic"`
		RequiredAcks int      `yaml:"required_acks"`
		Compression  string   `yaml:"compression"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts"`
			Linger       time.Duration `yaml:"linger"`
			BatchBytes   int           `yaml:"batch_bytes"`
			BatchSize    int           `yaml:"batch_size"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
			ReadTimeout  time.Duration `yaml:"read_timeout"`
		} `yaml:"producer"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Enabled          bool          `yaml:"enabled"`
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port"`
		Database         string        `yaml:"database"`
		User             string        `yaml:"user"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		AsyncInsert      bool          `yaml:"async_insert"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time"`
	} `yaml:"clickhouse"`
	Leaderboard struct {
		DefaultLimit           int           `yaml:"default_limit"`
		MaxLimit               int           `yaml:"max_limit"`
		AccuracyMinPredictions int64         `yaml:"accuracy_min_predictions"`
		CacheTTL               time.Duration `yaml:"cache_ttl"`
	} `yaml:"leaderboard"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	c, err := Parse(b)
	if err != nil {
		return nil, err
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// Parse decodes YAML and fills defaults without validating.
func Parse(b []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	c.applyDefaults()
	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	c, err := Parse(b)
	if err != nil {
		return nil, err
	}
	if err := c.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// ApplyEnv overrides fields from the environment. lookup is os.LookupEnv outside tests.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	str("ENVIRONMENT", &c.Environment)
	str("DATABASE_DSN", &c.Store.DSN)
	str("STORE_BACKEND", &c.Store.Backend)
	str("GOLD_API_KEY", &c.PriceSource.GoldAPI.APIKey)
	str("METALS_API_KEY", &c.PriceSource.Metals.APIKey)
	str("FINNHUB_API_KEY", &c.PriceSource.Finnhub.APIKey)
	str("JWT_SECRET", &c.Auth.JWTSecret)
	str("MARKET_TIMEZONE", &c.Market.Timezone)
	str("LOG_LEVEL", &c.Log.Level)

	if v, ok := lookup("REDIS_ADDR"); ok && v != "" {
		c.Redis.Addr = v
		c.Redis.Enabled = true
	}
	if v, ok := lookup("KAFKA_BROKERS"); ok && v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
		c.Kafka.Enabled = true
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"PORT", &c.Server.Port},
		{"MARKET_CLOSE_HOUR", &c.Market.CloseHour},
		{"MARKET_CLOSE_MINUTE", &c.Market.CloseMinute},
	}
	for _, e := range ints {
		if v, ok := lookup(e.key); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("env %s: %w", e.key, err)
			}
			*e.dst = n
		}
	}

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"PRICE_UPDATE_INTERVAL", &c.Scheduler.IngestInterval},
		{"SETTLEMENT_CHECK_INTERVAL", &c.Scheduler.SettlementInterval},
	}
	for _, e := range durations {
		if v, ok := lookup(e.key); ok && v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("env %s: %w", e.key, err)
			}
			*e.dst = d
		}
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.Store.Backend == "" {
		c.Store.Backend = "memory"
	}
	if c.Market.Timezone == "" {
		c.Market.Timezone = "UTC"
	}
	if c.Market.CloseHour == 0 && c.Market.CloseMinute == 0 {
		c.Market.CloseHour = 20
	}
	if c.Market.RequireNextDayRecord == nil {
		on := true
		c.Market.RequireNextDayRecord = &on
	}
	if c.Scheduler.IngestInterval == 0 && c.Scheduler.IngestCron == "" {
		c.Scheduler.IngestInterval = 15 * time.Minute
	}
	if c.Scheduler.SettlementInterval == 0 && c.Scheduler.SettlementCron == "" {
		c.Scheduler.SettlementInterval = time.Hour
	}
	if c.Scheduler.JobTimeout == 0 {
		c.Scheduler.JobTimeout = 5 * time.Minute
	}
	if c.Settlement.Workers == 0 {
		c.Settlement.Workers = 4
	}
	if c.PriceSource.GoldAPI.BaseURL == "" {
		c.PriceSource.GoldAPI.BaseURL = "https://www.goldapi.io/api"
	}
	if c.PriceSource.Metals.BaseURL == "" {
		c.PriceSource.Metals.BaseURL = "https://api.metals.dev"
	}
	if c.PriceSource.Finnhub.BaseURL == "" {
		c.PriceSource.Finnhub.BaseURL = "https://finnhub.io/api/v1"
	}
	if c.PriceSource.Timeout == 0 {
		c.PriceSource.Timeout = 10 * time.Second
	}
	if c.RateLimit.SubmitPerMin == 0 {
		c.RateLimit.SubmitPerMin = 10
	}
	if c.RateLimit.SubmitBurst == 0 {
		c.RateLimit.SubmitBurst = 3
	}
	if c.Kafka.Topic == "" {
		c.Kafka.Topic = "prediction.settled"
	}
	if c.Leaderboard.DefaultLimit == 0 {
		c.Leaderboard.DefaultLimit = 50
	}
	if c.Leaderboard.MaxLimit == 0 {
		c.Leaderboard.MaxLimit = 100
	}
	if c.Leaderboard.AccuracyMinPredictions == 0 {
		c.Leaderboard.AccuracyMinPredictions = 5
	}
	if c.Leaderboard.CacheTTL == 0 {
		c.Leaderboard.CacheTTL = time.Minute
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	switch c.Store.Backend {
	case "postgres":
		if c.Store.DSN == "" {
			return fmt.Errorf("store.dsn is required for postgres backend")
		}
	case "memory":
	default:
		return fmt.Errorf("store.backend must be 'postgres' or 'memory', got '%s'", c.Store.Backend)
	}
	if c.Market.CloseHour < 0 || c.Market.CloseHour > 23 {
		return fmt.Errorf("market.close_hour must be 0-23, got %d", c.Market.CloseHour)
	}
	if c.Market.CloseMinute < 0 || c.Market.CloseMinute > 59 {
		return fmt.Errorf("market.close_minute must be 0-59, got %d", c.Market.CloseMinute)
	}
	if _, err := time.LoadLocation(c.Market.Timezone); err != nil {
		return fmt.Errorf("market.timezone: %w", err)
	}
	if c.Scheduler.IngestInterval < 0 || c.Scheduler.SettlementInterval < 0 {
		return fmt.Errorf("scheduler intervals must be positive")
	}
	if c.Settlement.Workers < 1 {
		return fmt.Errorf("settlement.workers must be at least 1")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	if c.ClickHouse.Enabled && c.ClickHouse.Host == "" {
		return fmt.Errorf("clickhouse.host is required when clickhouse is enabled")
	}
	return nil
}

// Location returns the market reference timezone. Validate has already checked it loads.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Market.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
