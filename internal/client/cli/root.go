package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/dmitrijs2005/coldvault/internal/client/config"
	"github.com/dmitrijs2005/coldvault/internal/flagx"
)

const usage = `usage: coldvault [global flags] <command> [flags] <args>

commands:
  create <vault>
  list-vaults
  upload [-description d] [-abort-on-failure] <vault> <file>
  inventory [-pending] <vault>
  download [-pending] [-output path] -archive <id|description> <vault>
  delete-archive [-yes] -archive <id|description> <vault>

global flags:
  -r region  -e endpoint  -p profile  -s state dir
  -i poll interval (seconds)  -v log level  -c/-config file
`

var errUsage = errors.New("usage")

// Run executes one command from args (os.Args without the program name)
// and returns the process exit code.
func (a *App) Run(ctx context.Context, args []string) int {
	args = flagx.RemoveArgs(args, config.GlobalFlags)
	if len(args) == 0 {
		fmt.Fprint(a.out, usage)
		return exitUsage
	}

	cmd, rest := args[0], args[1:]

	var err error
	switch cmd {
	case "create", "create-vault":
		err = a.createVault(ctx, rest)
	case "list-vaults":
		err = a.listVaults(ctx, rest)
	case "upload":
		err = a.upload(ctx, rest)
	case "inventory":
		err = a.inventory(ctx, rest)
	case "download":
		err = a.download(ctx, rest)
	case "delete-archive":
		err = a.deleteArchive(ctx, rest)
	case "help", "-h", "-help":
		fmt.Fprint(a.out, usage)
		return exitOK
	default:
		fmt.Fprintf(a.out, "unknown command: %s\n\n%s", cmd, usage)
		return exitUsage
	}

	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, errUsage), errors.Is(err, flag.ErrHelp):
		fmt.Fprintf(a.out, "%v\n\n%s", err, usage)
		return exitUsage
	default:
		a.log.Error(ctx, "command failed", "command", cmd, "error", err)
		return exitError
	}
}

// newFlagSet returns a flag set that reports errors instead of exiting.
func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

// parse parses args and checks the positional argument count.
func parse(fs *flag.FlagSet, args []string, positional ...string) ([]string, error) {
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", errUsage, fs.Name(), err)
	}
	return positionals(fs, positional...)
}

// positionals checks the arguments left after an earlier fs.Parse.
func positionals(fs *flag.FlagSet, positional ...string) ([]string, error) {
	if fs.NArg() != len(positional) {
		return nil, fmt.Errorf("%w: %s expects %d argument(s): %v", errUsage, fs.Name(), len(positional), positional)
	}
	return fs.Args(), nil
}
