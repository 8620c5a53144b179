// Command gcodelib compiles and runs G-code programs against a
// trace-recording host, and disassembles compiled programs to IR.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
