package main

import (
	"fmt"
	"os"

	"github.com/dfinlay/gcodelib/ast"
	"github.com/dfinlay/gcodelib/ir"
	"github.com/dfinlay/gcodelib/parser/linuxcnc"
	"github.com/dfinlay/gcodelib/parser/rs274"
	"github.com/dfinlay/gcodelib/translate"
)

// compileFile parses path under opts.Dialect and lowers it to an ir.Module.
func compileFile(opts *rootOptions, path string) (*ir.Module, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	prog, err := parseFile(opts, f, path)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	mod, err := translate.Translate(prog)
	if err != nil {
		return nil, fmt.Errorf("translating %s: %w", path, err)
	}
	return mod, nil
}

func parseFile(opts *rootOptions, f *os.File, tag string) (*ast.Program, error) {
	switch opts.Dialect {
	case "rs274":
		return rs274.New(f, tag).Parse()
	default:
		return linuxcnc.New(f, tag).Parse()
	}
}
