package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/coldvault/internal/flagx"
	"github.com/dmitrijs2005/coldvault/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
// It relies on timex.Duration so JSON can specify intervals either as
// strings like "1h" or as integer nanoseconds. Only fields present in the
// file override the runtime Config.
type JsonConfig struct {
	Region             string         `json:"region"`
	Endpoint           string         `json:"endpoint"`
	Profile            string         `json:"profile"`
	AccessKeyID        string         `json:"access_key_id"`
	SecretAccessKey    string         `json:"secret_access_key"`
	StateDir           string         `json:"state_dir"`
	PollInterval       timex.Duration `json:"poll_interval"`
	JobTTL             timex.Duration `json:"job_ttl"`
	AbortOnPartFailure *bool          `json:"abort_on_part_failure"`
	LogLevel           string         `json:"log_level"`
}

// parseJson overlays Config with values loaded from the JSON file named by
// -c or -config. Without either flag it does nothing.
func parseJson(cfg *Config) error {
	jsonConfigFile := flagx.JsonConfigFlags(globalArgs())
	if jsonConfigFile == "" {
		return nil
	}

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		return err
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse %s: %w", jsonConfigFile, err)
	}

	overlay(&cfg.Region, jc.Region)
	overlay(&cfg.Endpoint, jc.Endpoint)
	overlay(&cfg.Profile, jc.Profile)
	overlay(&cfg.AccessKeyID, jc.AccessKeyID)
	overlay(&cfg.SecretAccessKey, jc.SecretAccessKey)
	overlay(&cfg.StateDir, jc.StateDir)
	overlay(&cfg.LogLevel, jc.LogLevel)

	if jc.PollInterval.Duration != 0 {
		cfg.PollInterval = jc.PollInterval.Duration
	}
	if jc.JobTTL.Duration != 0 {
		cfg.JobTTL = jc.JobTTL.Duration
	}
	if jc.AbortOnPartFailure != nil {
		cfg.AbortOnPartFailure = *jc.AbortOnPartFailure
	}

	return nil
}

func overlay(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
