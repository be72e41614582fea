package config

import (
	"flag"
	"io"
	"strings"
	"time"
)

var storeFlags = []string{"-n", "-l", "-t", "-v"}

// parseFlags reads the store flags out of args, ignoring anything else so the
// host's own flags pass through untouched.
func parseFlags(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("islandstore", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.DatabaseName, "n", cfg.DatabaseName, "database file name (without .db)")
	fs.StringVar(&cfg.DatabaseLocation, "l", cfg.DatabaseLocation, "directory holding the database file")
	timeout := fs.Int("t", 0, "schema statement timeout (in seconds)")
	fs.StringVar(&cfg.LogLevel, "v", cfg.LogLevel, "log level")

	if err := fs.Parse(filterArgs(args, storeFlags)); err != nil {
		return err
	}

	// -t only speaks whole seconds; leave a finer value from JSON or env alone.
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			cfg.SchemaTimeout = time.Duration(*timeout) * time.Second
		}
	})
	return nil
}

// configFileFlag returns the value of -c / -config, or "" when neither is given.
func configFileFlag(args []string) string {
	var path string

	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&path, "config", "", "path to config file")
	fs.StringVar(&path, "c", "", "path to config file (short)")
	_ = fs.Parse(filterArgs(args, []string{"-c", "-config", "--config"}))

	return path
}

// filterArgs keeps only the allowed flags and their values. Both "-f value"
// and "-f=value" forms are recognised.
func filterArgs(args []string, allowed []string) []string {
	keep := make(map[string]bool, len(allowed))
	for _, f := range allowed {
		keep[f] = true
	}

	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]

		if name, _, ok := strings.Cut(arg, "="); ok && strings.HasPrefix(arg, "-") {
			if keep[name] {
				out = append(out, arg)
			}
			continue
		}

		if !keep[arg] {
			continue
		}
		out = append(out, arg)
		if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			out = append(out, args[i+1])
			i++
		}
	}
	return out
}
