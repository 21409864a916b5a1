package config

import (
	"fmt"
	"time"
)

// Store drivers accepted in StoreDriver.
const (
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
	DriverMemory = "memory"
)

// Config holds runtime settings for the venuebook client.
type Config struct {
	APIBaseURL         string
	ProfileTimeout     time.Duration
	BootstrapDelay     time.Duration
	RevalidateInterval time.Duration
	RequestTimeout     time.Duration
	StoreDriver        string
	StorePath          string
	RedisAddr          string
	LogLevel           string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://127.0.0.1:8080/api"
	c.ProfileTimeout = 10 * time.Second
	c.BootstrapDelay = 50 * time.Millisecond
	c.RevalidateInterval = 30 * time.Minute
	c.RequestTimeout = 15 * time.Second
	c.StoreDriver = DriverSQLite
	c.StorePath = "~/.venuebook/session.db"
	c.RedisAddr = "127.0.0.1:6379"
	c.LogLevel = "warn"
}

// Validate rejects settings the client cannot run with.
func (c *Config) Validate() error {
	if c.APIBaseURL == "" {
		return fmt.Errorf("api base url is required")
	}
	switch c.StoreDriver {
	case DriverSQLite:
		if c.StorePath == "" {
			return fmt.Errorf("store path is required for the %s driver", DriverSQLite)
		}
	case DriverRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("redis address is required for the %s driver", DriverRedis)
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown store driver %q", c.StoreDriver)
	}
	if c.RevalidateInterval <= 0 {
		return fmt.Errorf("revalidate interval must be positive")
	}
	return nil
}

// LoadConfig applies defaults, then the JSON file (if any), then
// command-line flags. Later sources take precedence.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJSON(cfg); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
