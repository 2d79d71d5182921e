package cli

import (
	"context"
	"fmt"
	"text/tabwriter"
)

func (a *App) createVault(ctx context.Context, args []string) error {
	pos, err := parse(newFlagSet("create"), args, "vault")
	if err != nil {
		return err
	}

	location, err := a.vaults.CreateVault(ctx, pos[0])
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "vault %s created at %s\n", pos[0], location)
	return nil
}

func (a *App) listVaults(ctx context.Context, args []string) error {
	if _, err := parse(newFlagSet("list-vaults"), args); err != nil {
		return err
	}

	vaults, err := a.vaults.ListVaults(ctx)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tARN")
	for _, v := range vaults {
		fmt.Fprintf(tw, "%s\t%s\n", v.Name, v.ARN)
	}
	return tw.Flush()
}
