package ir

import (
	"testing"

	"github.com/dfinlay/gcodelib/runtime"
	"github.com/stretchr/testify/require"
)

func TestBuilderConstantDeduplication(t *testing.T) {
	b := NewBuilder()
	a := b.Constant(runtime.Integer(5))
	c := b.Constant(runtime.Integer(5))
	require.Equal(t, a, c)

	d := b.Constant(runtime.Float(5))
	require.NotEqual(t, a, d, "integer and float 5 must be distinct constants")
}

func TestBuilderLabelLifecycle(t *testing.T) {
	b := NewBuilder()
	l := b.NewLabel()
	b.Emit(OpPush, b.Constant(runtime.Integer(1)))
	b.BindLabel(l)
	b.Emit(OpRet, 0)

	mod, err := b.Finish()
	require.NoError(t, err)
	require.True(t, mod.Frozen())
	require.Equal(t, 1, mod.Labels[l])
}

func TestBuilderFinishRejectsUnboundLabel(t *testing.T) {
	b := NewBuilder()
	b.NewLabel()
	_, err := b.Finish()
	require.Error(t, err)
}

func TestSyscallKindForLetter(t *testing.T) {
	require.Equal(t, SyscallMotion, SyscallKindForLetter('G'))
	require.Equal(t, SyscallMisc, SyscallKindForLetter('M'))
	require.Equal(t, SyscallToolChange, SyscallKindForLetter('T'))
	require.Equal(t, SyscallSpindleSpeed, SyscallKindForLetter('S'))
	require.Equal(t, SyscallFeedRate, SyscallKindForLetter('F'))
	require.Equal(t, SyscallGeneral, SyscallKindForLetter('X'))
}

func TestArcMotionGCodes(t *testing.T) {
	require.True(t, ArcMotionGCodes[2])
	require.True(t, ArcMotionGCodes[3])
	require.False(t, ArcMotionGCodes[0])
	require.False(t, ArcMotionGCodes[1])
}

func TestModuleEqual(t *testing.T) {
	build := func() *Module {
		b := NewBuilder()
		b.Emit(OpPush, b.Constant(runtime.Integer(42)))
		b.Emit(OpRet, 0)
		mod, err := b.Finish()
		require.NoError(t, err)
		return mod
	}
	a, c := build(), build()
	require.True(t, a.Equal(c))

	b2 := NewBuilder()
	b2.Emit(OpPush, b2.Constant(runtime.Integer(43)))
	b2.Emit(OpRet, 0)
	other, err := b2.Finish()
	require.NoError(t, err)
	require.False(t, a.Equal(other))
}
