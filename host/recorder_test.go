package host

import (
	"testing"

	"github.com/dfinlay/gcodelib/ir"
	"github.com/dfinlay/gcodelib/runtime"
	"github.com/stretchr/testify/require"
)

func TestRecorderAppendsEvents(t *testing.T) {
	r := NewRecorder()
	scratch := blockScratch{'X': runtime.Float(1), 'Y': runtime.Float(2)}

	require.NoError(t, r.Syscall(ir.SyscallMotion, runtime.Integer(0), scratch))
	require.Len(t, r.Trace, 1)
	require.Equal(t, "motion", r.Trace[0].Kind)
	require.Equal(t, "1", r.Trace[0].Words["X"])
	require.Equal(t, "2", r.Trace[0].Words["Y"])
}

func TestBlockScratchLettersSorted(t *testing.T) {
	b := blockScratch{'Z': runtime.Float(0), 'A': runtime.Float(0)}
	require.Equal(t, []byte{'A', 'Z'}, b.Letters())
}
