package errs

import (
	"errors"
	"testing"

	"github.com/dfinlay/gcodelib/pos"
	"github.com/stretchr/testify/require"
)

func TestRuntimeErrorUnwrap(t *testing.T) {
	cause := errors.New("spindle stalled")
	err := WrapSyscallError(pos.Start("a.ngc"), cause)
	require.Equal(t, HostSyscallFailure, err.Kind)
	require.True(t, errors.Is(err, cause))
}

func TestLexicalErrorMessage(t *testing.T) {
	err := &LexicalError{Pos: pos.Start("a.ngc"), Char: '@'}
	require.Contains(t, err.Error(), "@")
}

func TestNewRuntimeErrorNoCause(t *testing.T) {
	err := NewRuntimeError(StackUnderflow, pos.Position{}, "stack underflow")
	require.Nil(t, err.Unwrap())
	require.Contains(t, err.Error(), "stack underflow")
}
