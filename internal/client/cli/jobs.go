package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/coldvault/internal/client/models"
	"github.com/dmitrijs2005/coldvault/internal/client/services"
)

func (a *App) inventory(ctx context.Context, args []string) error {
	fs := newFlagSet("inventory")
	pending := fs.Bool("pending", false, "only check inventory jobs already started")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: inventory: %w", errUsage, err)
	}
	if *pending {
		st, err := a.jobs.ResolvePending(ctx, models.JobTypeInventory)
		if err != nil {
			return err
		}
		a.report(models.JobTypeInventory, st)
		return nil
	}

	pos, err := positionals(fs, "vault")
	if err != nil {
		return err
	}

	st, err := a.jobs.RunInventory(ctx, pos[0])
	if err != nil {
		return err
	}
	a.report(models.JobTypeInventory, st)
	if st == services.StatusDone {
		fmt.Fprintf(a.out, "inventory saved to %s\n", services.InventoryPath(a.config.StateDir, pos[0]))
	}
	return nil
}

func (a *App) download(ctx context.Context, args []string) error {
	fs := newFlagSet("download")
	pending := fs.Bool("pending", false, "only check retrieval jobs already started")
	output := fs.String("output", services.DefaultOutputPath, "where to write the archive")
	archive := fs.String("archive", "", "archive id or description")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: download: %w", errUsage, err)
	}
	if *pending {
		st, err := a.jobs.ResolvePending(ctx, models.JobTypeRetrieval)
		if err != nil {
			return err
		}
		a.report(models.JobTypeRetrieval, st)
		return nil
	}

	pos, err := positionals(fs, "vault")
	if err != nil {
		return err
	}
	if *archive == "" {
		return fmt.Errorf("%w: download: -archive is required", errUsage)
	}

	id, err := a.vaults.ResolveArchive(ctx, pos[0], *archive)
	if err != nil {
		return err
	}

	st, err := a.jobs.RunRetrieval(ctx, pos[0], id, *output)
	if err != nil {
		return err
	}
	a.report(models.JobTypeRetrieval, st)
	if st == services.StatusDone {
		fmt.Fprintf(a.out, "archive saved to %s\n", *output)
	}
	return nil
}

func (a *App) report(jobType models.JobType, st services.Status) {
	switch st {
	case services.StatusDone:
		fmt.Fprintf(a.out, "%s job finished\n", jobType)
	case services.StatusPending:
		fmt.Fprintf(a.out, "no %s job has completed yet, try again later\n", jobType)
	default:
		fmt.Fprintf(a.out, "%s job failed, see the log for details\n", jobType)
	}
}
