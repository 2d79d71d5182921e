package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/coldvault/internal/client/chunker"
	"github.com/dmitrijs2005/coldvault/internal/client/client"
	"github.com/dmitrijs2005/coldvault/internal/client/config"
	"github.com/dmitrijs2005/coldvault/internal/client/repositories/jobs"
	"github.com/dmitrijs2005/coldvault/internal/client/services"
	"github.com/dmitrijs2005/coldvault/internal/filex"
	"github.com/dmitrijs2005/coldvault/internal/logging"
	"github.com/go-git/go-billy/v5/osfs"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

type App struct {
	config  *config.Config
	log     logging.Logger
	uploads services.UploadService
	jobs    services.JobService
	vaults  services.VaultService
	reader  *bufio.Reader
	out     io.Writer

	// abortingUploads builds an upload service for -abort-on-failure;
	// nil when the configured service already aborts.
	abortingUploads func() services.UploadService
}

// NewApp wires the service client, local state and services from cfg.
func NewApp(ctx context.Context, cfg *config.Config, log logging.Logger) (*App, error) {
	apiClient, err := client.NewGlacierClient(ctx, client.Options{
		Region:          cfg.Region,
		Endpoint:        cfg.Endpoint,
		Profile:         cfg.Profile,
		AccessKeyID:     cfg.AccessKeyID,
		SecretAccessKey: cfg.SecretAccessKey,
	})
	if err != nil {
		return nil, err
	}

	tmp, err := filex.EnsureDir(cfg.TmpDir())
	if err != nil {
		return nil, fmt.Errorf("state dir: %w", err)
	}

	splitter := chunker.NewSplitter(osfs.New(tmp), log)
	repo := jobs.NewFileRepository(cfg.JobsFile(), log)

	app := &App{
		config:  cfg,
		log:     log,
		uploads: services.NewUploadService(apiClient, splitter, log, cfg.AbortOnPartFailure),
		jobs: services.NewJobService(apiClient, repo, log, services.JobOptions{
			StateDir:     cfg.StateDir,
			PollInterval: cfg.PollInterval,
			TTL:          cfg.JobTTL,
		}),
		vaults: services.NewVaultService(apiClient, log, cfg.StateDir),
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}
	if !cfg.AbortOnPartFailure {
		app.abortingUploads = func() services.UploadService {
			return services.NewUploadService(apiClient, splitter, log, true)
		}
	}

	return app, nil
}
