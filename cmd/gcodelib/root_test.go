package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := newRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "gcodelib", cmd.Use)
}

func TestCommandPresence(t *testing.T) {
	cmd := newRootCommand()
	for _, name := range []string{"run", "disasm"} {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, sub.Name())
	}
}

func TestDialectValidation(t *testing.T) {
	assert.True(t, isValidDialect("linuxcnc"))
	assert.True(t, isValidDialect("rs274"))
	assert.False(t, isValidDialect("reprap"))
}

func TestDialectValidationIntegration(t *testing.T) {
	cmd := newRootCommand()
	cmd.SetArgs([]string{"--dialect", "bogus", "disasm", "x.ngc"})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid dialect")
}

func TestDisasmCommand(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prog.ngc")
	require.NoError(t, os.WriteFile(path, []byte("G0 X1 Y2\n"), 0o644))

	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"disasm", path})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "syscall")
}

func TestRunCommand(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prog.ngc")
	require.NoError(t, os.WriteFile(path, []byte("G0 X1 Y2\n"), 0o644))

	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"run", path})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "\"kind\"")
}
