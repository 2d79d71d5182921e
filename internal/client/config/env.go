package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const envPrefix = "COLDVAULT_"

// dotenvFile is read from the working directory when present. Variables
// already set in the process environment win over the file.
var dotenvFile = ".env"

// parseEnv overlays Config with COLDVAULT_* variables:
//
//	COLDVAULT_REGION, COLDVAULT_ENDPOINT, COLDVAULT_PROFILE,
//	COLDVAULT_STATE_DIR, COLDVAULT_POLL_INTERVAL, COLDVAULT_JOB_TTL,
//	COLDVAULT_ABORT_ON_PART_FAILURE, COLDVAULT_LOG_LEVEL
//
// Intervals use time.ParseDuration syntax ("90s", "1h").
func parseEnv(cfg *Config) error {
	if err := godotenv.Load(dotenvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", dotenvFile, err)
	}

	setString(&cfg.Region, "REGION")
	setString(&cfg.Endpoint, "ENDPOINT")
	setString(&cfg.Profile, "PROFILE")
	setString(&cfg.StateDir, "STATE_DIR")
	setString(&cfg.LogLevel, "LOG_LEVEL")

	if err := setDuration(&cfg.PollInterval, "POLL_INTERVAL"); err != nil {
		return err
	}
	if err := setDuration(&cfg.JobTTL, "JOB_TTL"); err != nil {
		return err
	}

	if v, ok := os.LookupEnv(envPrefix + "ABORT_ON_PART_FAILURE"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sABORT_ON_PART_FAILURE: %w", envPrefix, err)
		}
		cfg.AbortOnPartFailure = b
	}

	return nil
}

func setString(dst *string, name string) {
	if v, ok := os.LookupEnv(envPrefix + name); ok && v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, name string) error {
	v, ok := os.LookupEnv(envPrefix + name)
	if !ok || v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s%s: %w", envPrefix, name, err)
	}
	*dst = d
	return nil
}
