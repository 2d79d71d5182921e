// Package config loads runtime configuration for the coldvault CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. A .env file in the working directory and COLDVAULT_* variables.
//  3. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  4. Global command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-r string   service region
//	-e string   service endpoint URL
//	-p string   shared config profile
//	-s string   state directory (default ~/.coldvault)
//	-i int      job poll interval (seconds)
//	-v string   log level
//
// # JSON schema
//
// The JSON loader uses timex.Duration for intervals, so values can be either
// strings like "1h" or integer nanoseconds:
//
//	{
//	  "region": "eu-west-1",
//	  "state_dir": "/var/lib/coldvault",
//	  "poll_interval": "30m",
//	  "job_ttl": "24h",
//	  "abort_on_part_failure": true
//	}
//
// Primary API
//
//   - type Config                           : runtime settings
//   - func LoadConfig() (*Config, error)    : defaults, env, JSON, then flags
//   - func (*Config) LoadDefaults()         : sets sensible defaults
package config
