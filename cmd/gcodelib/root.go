package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// rootOptions holds global flags shared by every subcommand, mirroring the
// teacher pack's internal/cli root-options-plus-embedding convention.
type rootOptions struct {
	Verbose bool
	Dialect string
}

var validDialects = []string{"linuxcnc", "rs274"}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "gcodelib",
		Short: "Compile and run G-code programs",
		Long:  "gcodelib scans, parses, translates, and interprets G-code in the LinuxCNC and RS-274 dialects.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidDialect(opts.Dialect) {
				return fmt.Errorf("invalid dialect %q: must be one of %v", opts.Dialect, validDialects)
			}
			level := slog.LevelInfo
			if opts.Verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "debug-level logging")
	cmd.PersistentFlags().StringVar(&opts.Dialect, "dialect", "linuxcnc", "input dialect (linuxcnc|rs274)")

	cmd.AddCommand(newRunCommand(opts))
	cmd.AddCommand(newDisasmCommand(opts))

	return cmd
}

func isValidDialect(d string) bool {
	for _, v := range validDialects {
		if v == d {
			return true
		}
	}
	return false
}
