// Package config holds the mock API server settings: defaults, then an
// optional JSON file, then flags.
package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dmitrijs2005/venuebook/internal/flagx"
	"github.com/dmitrijs2005/venuebook/internal/timex"
)

type Config struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string
	// PathPrefix is where the API is mounted, e.g. "/api".
	PathPrefix string
	// SecretKey signs issued tokens. The default is for local use only.
	SecretKey     string
	TokenValidity time.Duration
	// ProfileDelay slows down the profile endpoint to exercise client
	// timeouts.
	ProfileDelay time.Duration
	LogLevel     string
}

func (c *Config) LoadDefaults() {
	c.Addr = ":8080"
	c.PathPrefix = "/api"
	c.SecretKey = "dev-secret"
	c.TokenValidity = 24 * time.Hour
	c.ProfileDelay = 0
	c.LogLevel = "info"
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJSON(cfg); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

type fileConfig struct {
	Addr          *string         `json:"addr"`
	PathPrefix    *string         `json:"path_prefix"`
	SecretKey     *string         `json:"secret_key"`
	TokenValidity *timex.Duration `json:"token_validity"`
	ProfileDelay  *timex.Duration `json:"profile_delay"`
	LogLevel      *string         `json:"log_level"`
}

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

	if fc.Addr != nil {
		cfg.Addr = *fc.Addr
	}
	if fc.PathPrefix != nil {
		cfg.PathPrefix = *fc.PathPrefix
	}
	if fc.SecretKey != nil {
		cfg.SecretKey = *fc.SecretKey
	}
	if fc.TokenValidity != nil {
		cfg.TokenValidity = fc.TokenValidity.Duration
	}
	if fc.ProfileDelay != nil {
		cfg.ProfileDelay = fc.ProfileDelay.Duration
	}
	if fc.LogLevel != nil {
		cfg.LogLevel = *fc.LogLevel
	}
	return nil
}

// parseFlags reads:
//
//	-a string   listen address
//	-p string   path prefix
//	-s string   token signing secret
//	-t int      token validity (minutes)
//	-w int      artificial profile delay (milliseconds)
//	-l string   log level
func parseFlags(cfg *Config) error {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-p", "-s", "-t", "-w", "-l"})

	fs := flag.NewFlagSet("mockapi", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.Addr, "a", cfg.Addr, "listen address")
	fs.StringVar(&cfg.PathPrefix, "p", cfg.PathPrefix, "path prefix")
	fs.StringVar(&cfg.SecretKey, "s", cfg.SecretKey, "token signing secret")
	validity := fs.Int("t", int(cfg.TokenValidity/time.Minute), "token validity (in minutes)")
	delay := fs.Int("w", int(cfg.ProfileDelay/time.Millisecond), "profile delay (in milliseconds)")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg.TokenValidity = time.Duration(*validity) * time.Minute
	cfg.ProfileDelay = time.Duration(*delay) * time.Millisecond
	return nil
}
