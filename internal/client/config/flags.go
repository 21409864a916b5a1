package config

import (
	"flag"
	"io"
	"os"
	"time"

	"github.com/dmitrijs2005/venuebook/internal/flagx"
)

// parseFlags overlays cfg with command-line flags:
//
//	-a string   base URL of the remote API
//	-i int      revalidation interval in minutes
//	-s string   session store driver (sqlite, redis, memory)
//	-d string   SQLite file path, or Redis address for the redis driver
//	-l string   log level
//
// Only these flags are looked at; anything else in os.Args is ignored.
func parseFlags(cfg *Config) error {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-i", "-s", "-d", "-l"})

	fs := flag.NewFlagSet("venuebook", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.APIBaseURL, "a", cfg.APIBaseURL, "base URL of the API")
	interval := fs.Int("i", int(cfg.RevalidateInterval/time.Minute), "session revalidation interval (in minutes)")
	fs.StringVar(&cfg.StoreDriver, "s", cfg.StoreDriver, "session store driver: sqlite, redis or memory")
	location := fs.String("d", "", "session store location")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg.RevalidateInterval = time.Duration(*interval) * time.Minute
	if *location != "" {
		if cfg.StoreDriver == DriverRedis {
			cfg.RedisAddr = *location
		} else {
			cfg.StorePath = *location
		}
	}
	return nil
}
