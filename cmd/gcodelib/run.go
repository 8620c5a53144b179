package main

import (
	"context"
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/dfinlay/gcodelib/config"
	"github.com/dfinlay/gcodelib/host"
	"github.com/dfinlay/gcodelib/interp"
)

// runOptions holds flags for the run subcommand.
type runOptions struct {
	*rootOptions
	Profile string
}

func newRunCommand(rootOpts *rootOptions) *cobra.Command {
	opts := &runOptions{rootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <file>",
		Short: "Compile and execute a G-code file, printing its syscall trace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Profile, "profile", "", "path to a CUE host profile override (defaults used if omitted)")
	return cmd
}

func runFile(opts *runOptions, path string, cmd *cobra.Command) error {
	mod, err := compileFile(opts.rootOptions, path)
	if err != nil {
		return err
	}

	profile, err := loadProfile(opts.Profile)
	if err != nil {
		return err
	}

	recorder := host.NewRecorder()
	system := host.NewSystemScopeFromProfile(profile)
	in := interp.New(mod, recorder, system)

	if err := in.Execute(context.Background()); err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(recorder.Trace)
}

func loadProfile(path string) (host.Profile, error) {
	if path == "" {
		return config.Default()
	}
	return config.LoadFile(path)
}
