package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dfinlay/gcodelib/ir"
)

type disasmOptions struct {
	*rootOptions
	Format string
}

func newDisasmCommand(rootOpts *rootOptions) *cobra.Command {
	opts := &disasmOptions{rootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "disasm <file>",
		Short: "Compile a G-code file and print its IR disassembly",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mod, err := compileFile(opts.rootOptions, args[0])
			if err != nil {
				return err
			}

			d := ir.Disassemble(mod)
			switch opts.Format {
			case "yaml":
				text, err := d.YAML()
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), text)
			case "text", "":
				fmt.Fprint(cmd.OutOrStdout(), d.Text())
			default:
				return fmt.Errorf("invalid format %q: must be text or yaml", opts.Format)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Format, "format", "text", "output format (text|yaml)")
	return cmd
}
