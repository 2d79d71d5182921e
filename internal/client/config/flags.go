package config

import (
	"flag"
	"io"
	"os"
	"time"

	"github.com/dmitrijs2005/coldvault/internal/flagx"
)

// parseFlags populates selected Config fields from the global flags:
//
//	-r string   service region
//	-e string   service endpoint URL
//	-p string   shared config profile
//	-s string   state directory
//	-i int      job poll interval (seconds)
//	-v string   log level
//
// Only the global flags ahead of the sub-command are considered, so
// sub-command arguments never reach this flag set.
func parseFlags(cfg *Config) error {
	args := flagx.FilterArgs(globalArgs(), []string{"-r", "-e", "-p", "-s", "-i", "-v"})

	fs := flag.NewFlagSet("global", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.Region, "r", cfg.Region, "service region")
	fs.StringVar(&cfg.Endpoint, "e", cfg.Endpoint, "service endpoint URL")
	fs.StringVar(&cfg.Profile, "p", cfg.Profile, "shared config profile")
	fs.StringVar(&cfg.StateDir, "s", cfg.StateDir, "state directory")
	pollInterval := fs.Int("i", int(cfg.PollInterval.Seconds()), "job poll interval (in seconds)")
	fs.StringVar(&cfg.LogLevel, "v", cfg.LogLevel, "log level: debug, info, warn, error")

	if err := fs.Parse(args); err != nil {
		return err
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "i" {
			cfg.PollInterval = time.Duration(*pollInterval) * time.Second
		}
	})
	return nil
}

// globalArgs returns the global flags given ahead of the sub-command.
func globalArgs() []string {
	leading, _ := flagx.SplitLeading(os.Args[1:], GlobalFlags)
	return leading
}
