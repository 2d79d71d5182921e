// Package flagx separates the global coldvault flags from sub-command
// arguments so both can be parsed with the standard flag package.
package flagx

import (
	"flag"
	"strings"
)

// splitArgs partitions args into the tokens belonging to the given flags
// (with their values) and everything else, preserving order in both.
//
// Supported formats:
//  1. Flag and value as separate arguments:  -c conf.json
//  2. Flag and value combined with '=':      -config=conf.json
//
// A token following a matched flag is treated as its value unless it starts
// with '-'.
func splitArgs(args []string, flags []string) (matched, rest []string) {
	known := make(map[string]struct{}, len(flags))
	for _, f := range flags {
		known[f] = struct{}{}
	}

	matched = make([]string, 0, len(args))
	rest = make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if strings.HasPrefix(arg, "-") && strings.Contains(arg, "=") {
			name := strings.SplitN(arg, "=", 2)[0]
			if _, ok := known[name]; ok {
				matched = append(matched, arg)
			} else {
				rest = append(rest, arg)
			}
			continue
		}

		if _, ok := known[arg]; !ok {
			rest = append(rest, arg)
			continue
		}

		matched = append(matched, arg)
		if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			matched = append(matched, args[i+1])
			i++
		}
	}

	return matched, rest
}

// FilterArgs returns only the allowed flags (and their values) from args.
func FilterArgs(args []string, allowedFlags []string) []string {
	matched, _ := splitArgs(args, allowedFlags)
	return matched
}

// SplitLeading splits args into the run of given flags (with their values)
// that precedes the first other token, and everything from that token on.
// Global flags appear before the sub-command, so tokens after it are left
// alone even when they look like a global flag.
func SplitLeading(args []string, flags []string) (leading, rest []string) {
	known := make(map[string]struct{}, len(flags))
	for _, f := range flags {
		known[f] = struct{}{}
	}

	i := 0
	for i < len(args) {
		name, _, hasValue := strings.Cut(args[i], "=")
		if _, ok := known[name]; !ok {
			break
		}
		i++
		if !hasValue && i < len(args) && !strings.HasPrefix(args[i], "-") {
			i++
		}
	}

	return append([]string{}, args[:i]...), append([]string{}, args[i:]...)
}

// RemoveArgs returns args with the leading given flags (and their values)
// removed. The CLI uses it to hand sub-commands an argument list free of
// global flags.
func RemoveArgs(args []string, flags []string) []string {
	_, rest := SplitLeading(args, flags)
	return rest
}

// JsonConfigFlags extracts the config file path given via -c or -config in
// args, which should hold only the global flags. An empty string means no
// JSON config was requested.
func JsonConfigFlags(args []string) string {
	var config string

	args = FilterArgs(args, []string{"-c", "-config"})

	fs := flag.NewFlagSet("json", flag.ContinueOnError)
	fs.StringVar(&config, "config", "", "Path to config file")
	fs.StringVar(&config, "c", "", "Path to config file (short)")
	_ = fs.Parse(args)

	return config
}
