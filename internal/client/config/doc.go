// Package config loads runtime configuration for the venuebook client.
//
// Sources, later wins:
//
//  1. Built-in defaults ((*Config).LoadDefaults).
//  2. Optional JSON file named by -c/-config or VENUEBOOK_CONFIG.
//  3. Command-line flags -a, -i, -s, -d, -l.
//
// Durations in JSON use timex.Duration, so "10s" and 10000000000 are both
// accepted:
//
//	{
//	  "api_base_url": "https://venues.example.com/api",
//	  "profile_timeout": "10s",
//	  "bootstrap_delay": "50ms",
//	  "revalidate_interval": "30m",
//	  "request_timeout": "15s",
//	  "store_driver": "sqlite",
//	  "store_path": "~/.venuebook/session.db",
//	  "redis_addr": "127.0.0.1:6379",
//	  "log_level": "info"
//	}
package config
