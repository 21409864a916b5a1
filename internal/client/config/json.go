package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/venuebook/internal/flagx"
	"github.com/dmitrijs2005/venuebook/internal/timex"
)

// fileConfig mirrors the JSON file. Pointer fields tell "absent" from
// "zero", so a partial file only overrides what it names.
type fileConfig struct {
	APIBaseURL         *string         `json:"api_base_url"`
	ProfileTimeout     *timex.Duration `json:"profile_timeout"`
	BootstrapDelay     *timex.Duration `json:"bootstrap_delay"`
	RevalidateInterval *timex.Duration `json:"revalidate_interval"`
	RequestTimeout     *timex.Duration `json:"request_timeout"`
	StoreDriver        *string         `json:"store_driver"`
	StorePath          *string         `json:"store_path"`
	RedisAddr          *string         `json:"redis_addr"`
	LogLevel           *string         `json:"log_level"`
}

// parseJSON overlays cfg with the file named by -c/-config or
// VENUEBOOK_CONFIG. No file configured is not an error.
func parseJSON(cfg *Config) error {
	path := flagx.ConfigPath()
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	var fc fileConfig
	if err := json.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	fc.apply(cfg)
	return nil
}

func (fc fileConfig) apply(cfg *Config) {
	setString(&cfg.APIBaseURL, fc.APIBaseURL)
	setString(&cfg.StoreDriver, fc.StoreDriver)
	setString(&cfg.StorePath, fc.StorePath)
	setString(&cfg.RedisAddr, fc.RedisAddr)
	setString(&cfg.LogLevel, fc.LogLevel)

	if fc.ProfileTimeout != nil {
		cfg.ProfileTimeout = fc.ProfileTimeout.Duration
	}
	if fc.BootstrapDelay != nil {
		cfg.BootstrapDelay = fc.BootstrapDelay.Duration
	}
	if fc.RevalidateInterval != nil {
		cfg.RevalidateInterval = fc.RevalidateInterval.Duration
	}
	if fc.RequestTimeout != nil {
		cfg.RequestTimeout = fc.RequestTimeout.Duration
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
