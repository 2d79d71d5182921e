package cli

import (
	"context"
	"fmt"
)

func (a *App) deleteArchive(ctx context.Context, args []string) error {
	fs := newFlagSet("delete-archive")
	archive := fs.String("archive", "", "archive id or description")
	yes := fs.Bool("yes", false, "do not ask for confirmation")

	pos, err := parse(fs, args, "vault")
	if err != nil {
		return err
	}
	if *archive == "" {
		return fmt.Errorf("%w: delete-archive: -archive is required", errUsage)
	}
	vault := pos[0]

	id, err := a.vaults.ResolveArchive(ctx, vault, *archive)
	if err != nil {
		return err
	}

	if !*yes {
		if !stdinIsTerminal() {
			return fmt.Errorf("%w: delete-archive: pass -yes when not running in a terminal", errUsage)
		}
		ok, err := Confirm(a.reader, fmt.Sprintf("Delete archive %s from vault %s?", id, vault), a.out)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(a.out, "cancelled")
			return nil
		}
	}

	if err := a.vaults.DeleteArchive(ctx, vault, id); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "archive %s deleted\n", id)
	return nil
}
