package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/pharmdesk/internal/flagx"
)

var knownFlags = []string{"-a", "-p", "-l", "-v", "-t", "-reset", "-version"}

// parseFlags overlays cfg with command-line flags.
//
//	-a string     backend origin, e.g. https://api.example.com
//	-p string     preferences database file
//	-l string     log file
//	-v string     log level (debug|info|warn|error)
//	-t duration   toast duration, e.g. 2.6s
//	-reset        clear persisted preferences before boot
//	-version      print build data and exit
//
// Flags owned by other loaders (-c/-config) are filtered out first.
func parseFlags(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("pharmdesk", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.APIOrigin, "a", cfg.APIOrigin, "backend origin")
	fs.StringVar(&cfg.PrefsPath, "p", cfg.PrefsPath, "preferences database file")
	fs.StringVar(&cfg.LogPath, "l", cfg.LogPath, "log file")
	fs.StringVar(&cfg.LogLevel, "v", cfg.LogLevel, "log level")
	fs.DurationVar(&cfg.ToastDuration, "t", cfg.ToastDuration, "toast duration")
	fs.BoolVar(&cfg.Reset, "reset", cfg.Reset, "clear persisted preferences")
	fs.BoolVar(&cfg.ShowVersion, "version", cfg.ShowVersion, "print build data")

	filtered := flagx.FilterArgs(args, knownFlags)
	// Boolean flags never take a separate value.
	filtered = dropBoolValues(filtered, "-reset", "-version")

	return fs.Parse(filtered)
}

func dropBoolValues(args []string, boolFlags ...string) []string {
	bools := make(map[string]struct{}, len(boolFlags))
	for _, b := range boolFlags {
		bools[b] = struct{}{}
	}
	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		out = append(out, args[i])
		if _, ok := bools[args[i]]; ok && i+1 < len(args) && !isFlag(args[i+1]) {
			i++
		}
	}
	return out
}

func isFlag(s string) bool {
	return len(s) > 1 && s[0] == '-'
}
