package ir

import (
	"bytes"
	"testing"

	"github.com/dfinlay/gcodelib/pos"
	"github.com/dfinlay/gcodelib/runtime"
	"github.com/stretchr/testify/require"
)

func buildSampleModule(t *testing.T) *Module {
	t.Helper()
	b := NewBuilder()
	top := b.NewLabel()
	b.BindLabel(top)
	b.MarkStatement(pos.Start("sample.ngc"))
	b.Emit(OpPush, b.Constant(runtime.Integer(10)))
	b.Emit(OpPush, b.Constant(runtime.Float(2.5)))
	b.Emit(OpAdd, 0)
	b.Emit(OpPush, b.Constant(runtime.Str("done")))
	b.Emit(OpPush, b.Constant(runtime.Logical(true)))
	j := b.Emit(OpJumpIf, 0)
	b.BindLabelAt(top, j) // arbitrary retarget, exercises BindLabelAt
	b.AddProcedure("sub1", top)
	b.Emit(OpRet, 0)

	mod, err := b.Finish()
	require.NoError(t, err)
	return mod
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	mod := buildSampleModule(t)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, mod))

	decoded, err := Decode(&buf)
	require.NoError(t, err)
	require.True(t, mod.Equal(decoded))
}

func TestDecodeRejectsBadMagic(t *testing.T) {
	_, err := Decode(bytes.NewReader([]byte("nope")))
	require.Error(t, err)
}

func TestDecodeRejectsUnknownVersion(t *testing.T) {
	var buf bytes.Buffer
	mod := buildSampleModule(t)
	require.NoError(t, Encode(&buf, mod))

	raw := buf.Bytes()
	// version field follows the 4-byte magic, little-endian uint32
	raw[4] = 0xFF
	_, err := Decode(bytes.NewReader(raw))
	require.Error(t, err)
}
