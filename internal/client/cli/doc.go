// Package cli implements the coldvault command line: one sub-command per
// invocation, dispatched by App.Run.
//
// Commands:
//   - create <vault>
//   - list-vaults
//   - upload [-description d] [-abort-on-failure] <vault> <file>
//   - inventory [-pending] <vault>
//   - download [-pending] [-output path] -archive <id|description> <vault>
//   - delete-archive [-yes] -archive <id|description> <vault>
//
// Global flags are consumed by the config package and stripped before the
// sub-command parses its own.
package cli
