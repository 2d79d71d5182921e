package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Config holds runtime settings for the coldvault CLI.
//
// Fields:
//   - Region, Endpoint, Profile: where and as whom the archive service is
//     called. An empty Endpoint uses the SDK's resolver.
//   - AccessKeyID, SecretAccessKey: static credentials; when empty the SDK
//     default credential chain applies.
//   - StateDir: root of the local ledger, inventories and work files.
//   - PollInterval: sleep between job status checks while waiting.
//   - JobTTL: ledger entries at least this old are discarded.
//   - AbortOnPartFailure: abort an upload on its first failed part.
//   - LogLevel: debug, info, warn or error.
type Config struct {
	Region          string
	Endpoint        string
	Profile         string
	AccessKeyID     string
	SecretAccessKey string

	StateDir           string
	PollInterval       time.Duration
	JobTTL             time.Duration
	AbortOnPartFailure bool
	LogLevel           string
}

// GlobalFlags lists the flags LoadConfig consumes. Each takes a value.
var GlobalFlags = []string{"-r", "-e", "-p", "-s", "-i", "-v", "-c", "-config"}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.Region = "us-east-1"
	c.StateDir = defaultStateDir()
	c.PollInterval = time.Hour
	c.JobTTL = 24 * time.Hour
	c.LogLevel = "info"
}

func defaultStateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".coldvault"
	}
	return filepath.Join(home, ".coldvault")
}

// JobsFile is the ledger location under StateDir.
func (c *Config) JobsFile() string {
	return filepath.Join(c.StateDir, "jobs", "jobs.json")
}

// TmpDir is the root of upload work directories under StateDir.
func (c *Config) TmpDir() string {
	return filepath.Join(c.StateDir, "tmp")
}

func (c *Config) validate() error {
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %s", c.PollInterval)
	}
	if c.JobTTL <= 0 {
		return fmt.Errorf("job ttl must be positive, got %s", c.JobTTL)
	}
	if c.StateDir == "" {
		return fmt.Errorf("state dir must not be empty")
	}
	return nil
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// the environment (and a .env file), JSON (if requested) and command-line
// flags. Later sources take precedence over earlier ones.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseEnv(cfg); err != nil {
		return nil, fmt.Errorf("environment: %w", err)
	}
	if err := parseJson(cfg); err != nil {
		return nil, fmt.Errorf("config file: %w", err)
	}
	if err := parseFlags(cfg); err != nil {
		return nil, fmt.Errorf("flags: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
