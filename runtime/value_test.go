package runtime

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestArithmeticIntegerPreservation(t *testing.T) {
	r, err := Integer(3).Add(Integer(4))
	require.NoError(t, err)
	require.Equal(t, KindInteger, r.Kind)
	require.Equal(t, int64(7), r.Integer)
}

func TestArithmeticPromotesToFloat(t *testing.T) {
	r, err := Integer(3).Add(Float(0.5))
	require.NoError(t, err)
	require.Equal(t, KindFloat, r.Kind)
	require.Equal(t, 3.5, r.Float)
}

func TestDivAlwaysFloat(t *testing.T) {
	r, err := Integer(6).Div(Integer(3))
	require.NoError(t, err)
	require.Equal(t, KindFloat, r.Kind)
	require.Equal(t, 2.0, r.Float)
}

func TestModIntegerZeroIsError(t *testing.T) {
	_, err := Integer(5).Mod(Integer(0))
	require.Error(t, err)
}

func TestComparisonAcrossNumericKinds(t *testing.T) {
	r, err := Integer(2).Less(Float(2.5))
	require.NoError(t, err)
	require.True(t, r.Logical)
}

func TestLogicalOps(t *testing.T) {
	r, err := Logical(true).And(Logical(false))
	require.NoError(t, err)
	require.False(t, r.Logical)

	r, err = Integer(1).Xor(Integer(0))
	require.NoError(t, err)
	require.True(t, r.Logical)
}

func TestNoneCoercions(t *testing.T) {
	f, ok := None().AsFloat()
	require.True(t, ok)
	require.Zero(t, f)

	n, err := None().Neg()
	require.NoError(t, err)
	require.Equal(t, Integer(0), n)
}

func TestFormat(t *testing.T) {
	require.Equal(t, "3", Integer(3).Format())
	require.Equal(t, "true", Logical(true).Format())
	require.Equal(t, "hi", Str("hi").Format())
}
