package config

import (
	"time"

	"golang-price-tracker/pkg/config"
)

// Tracker holds ingestion, insight and fetch-worker settings.
type Tracker struct {
	InsightWindowDays  int    `mapstructure:"insight_window_days"`
	InsightRefreshCron string `mapstructure:"insight_refresh_cron"`
	PendingAlertsLimit int    `mapstructure:"pending_alerts_limit"`

	FingerprintCacheTTL time.Duration `mapstructure:"fingerprint_cache_ttl"`

	RedisStreamFetchTimeout         time.Duration `mapstructure:"redis_stream_fetch_timeout"`
	RedisStreamFetchRetryInterval   time.Duration `mapstructure:"redis_stream_fetch_retry_interval"`
	RedisStreamFetchMaxIdleDuration time.Duration `mapstructure:"redis_stream_fetch_max_idle_duration"`
	RedisStreamFetchMaxRetry        int           `mapstructure:"redis_stream_fetch_max_retry"`
}

// Scraper holds the marketplace HTTP client settings.
type Scraper struct {
	UserAgent           string        `mapstructure:"user_agent"`
	RequestTimeout      time.Duration `mapstructure:"request_timeout"`
	MaxRequestPerMinute int           `mapstructure:"max_request_per_minute"`
	MaxAttempts         int           `mapstructure:"max_attempts"`
	RetryBaseDelay      time.Duration `mapstructure:"retry_base_delay"`
}

// Telegram holds configuration for the Telegram notifier.
type Telegram struct {
	BotToken string `mapstructure:"bot_token"`
	ChatID   int64  `mapstructure:"chat_id"`
}

// Config holds the full configuration for the tracker service.
type Config struct {
	App      config.App      `mapstructure:"app"`
	Logger   config.Logger   `mapstructure:"logger"`
	Database config.Database `mapstructure:"database"`
	Redis    config.Redis    `mapstructure:"redis"`
	API      config.API      `mapstructure:"api"`
	Tracker  Tracker         `mapstructure:"tracker"`
	Scraper  Scraper         `mapstructure:"scraper"`
	Telegram Telegram        `mapstructure:"telegram"`
}

// Load loads the tracker configuration from the given path.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := config.Load(path, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Tracker.InsightWindowDays <= 0 {
		c.Tracker.InsightWindowDays = 30
	}
	if c.Tracker.PendingAlertsLimit <= 0 {
		c.Tracker.PendingAlertsLimit = 50
	}
	if c.Tracker.FingerprintCacheTTL <= 0 {
		c.Tracker.FingerprintCacheTTL = time.Hour
	}
	if c.Tracker.RedisStreamFetchTimeout <= 0 {
		c.Tracker.RedisStreamFetchTimeout = time.Minute
	}
	if c.Tracker.RedisStreamFetchRetryInterval <= 0 {
		c.Tracker.RedisStreamFetchRetryInterval = 30 * time.Second
	}
	if c.Tracker.RedisStreamFetchMaxIdleDuration <= 0 {
		c.Tracker.RedisStreamFetchMaxIdleDuration = 5 * time.Minute
	}
	if c.Tracker.RedisStreamFetchMaxRetry <= 0 {
		c.Tracker.RedisStreamFetchMaxRetry = 3
	}
	if c.Scraper.RequestTimeout <= 0 {
		c.Scraper.RequestTimeout = 15 * time.Second
	}
	if c.Scraper.MaxRequestPerMinute <= 0 {
		c.Scraper.MaxRequestPerMinute = 30
	}
	if c.Scraper.MaxAttempts <= 0 {
		c.Scraper.MaxAttempts = 3
	}
	if c.Scraper.RetryBaseDelay <= 0 {
		c.Scraper.RetryBaseDelay = time.Second
	}
}
