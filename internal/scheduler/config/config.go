package config

import (
	"time"

	"golang-price-tracker/pkg/config"
)

// Scheduler holds dispatcher configuration.
type Scheduler struct {
	// PollSchedule is a cron spec or descriptor, e.g. "@every 30s" or "*/1 * * * *".
	PollSchedule string        `mapstructure:"poll_schedule"`
	BatchSize    int           `mapstructure:"batch_size"`
	LeaseTTL     time.Duration `mapstructure:"lease_ttl"`
}

// Config holds the full configuration for the scheduler service.
type Config struct {
	App       config.App      `mapstructure:"app"`
	Logger    config.Logger   `mapstructure:"logger"`
	Database  config.Database `mapstructure:"database"`
	Redis     config.Redis    `mapstructure:"redis"`
	API       config.API      `mapstructure:"api"`
	Scheduler Scheduler       `mapstructure:"scheduler"`
}

// Load loads the scheduler configuration from the given path.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := config.Load(path, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Scheduler.PollSchedule == "" {
		c.Scheduler.PollSchedule = "@every 1m"
	}
	if c.Scheduler.BatchSize <= 0 {
		c.Scheduler.BatchSize = 100
	}
	if c.Scheduler.LeaseTTL <= 0 {
		c.Scheduler.LeaseTTL = 15 * time.Minute
	}
}
