package parser

import (
	"strings"
	"testing"

	"github.com/dfinlay/gcodelib/ast"
	"github.com/dfinlay/gcodelib/scan"
	"github.com/stretchr/testify/require"
)

func newTestBase(src string) *Base {
	return NewBase(scan.New(strings.NewReader(src), "t.ngc", scan.ExpressionKeywords))
}

func TestParseExprPrecedenceMulBeforeAdd(t *testing.T) {
	b := newTestBase("1+2*3")
	n, err := b.ParseExpr()
	require.NoError(t, err)

	top, ok := n.(*ast.BinaryOp)
	require.True(t, ok)
	require.Equal(t, ast.Add, top.Op)

	rhs, ok := top.Right.(*ast.BinaryOp)
	require.True(t, ok)
	require.Equal(t, ast.Mul, rhs.Op)
}

func TestParseExprBracketsOverridePrecedence(t *testing.T) {
	b := newTestBase("[1+2]*3")
	n, err := b.ParseExpr()
	require.NoError(t, err)

	top, ok := n.(*ast.BinaryOp)
	require.True(t, ok)
	require.Equal(t, ast.Mul, top.Op)

	lhs, ok := top.Left.(*ast.BinaryOp)
	require.True(t, ok)
	require.Equal(t, ast.Add, lhs.Op)
}

func TestParseExprComparisonKeyword(t *testing.T) {
	b := newTestBase("1 LT 2")
	n, err := b.ParseExpr()
	require.NoError(t, err)

	op, ok := n.(*ast.BinaryOp)
	require.True(t, ok)
	require.Equal(t, ast.Lt, op.Op)
}

func TestParseVariableReferenceNumberedNamedIndirect(t *testing.T) {
	b := newTestBase("#5")
	n, err := b.ParseExpr()
	require.NoError(t, err)
	ref := n.(*ast.VariableReference)
	require.True(t, ref.Numbered)
	require.Equal(t, uint16(5), ref.Num)

	b2 := newTestBase("#<foo>")
	n2, err := b2.ParseExpr()
	require.NoError(t, err)
	ref2 := n2.(*ast.VariableReference)
	require.False(t, ref2.Numbered)
	require.Equal(t, "foo", ref2.Name)

	b3 := newTestBase("#[1+2]")
	n3, err := b3.ParseExpr()
	require.NoError(t, err)
	ref3 := n3.(*ast.VariableReference)
	require.True(t, ref3.Numbered)
	require.NotNil(t, ref3.Index)
}

func TestParseAssignment(t *testing.T) {
	b := newTestBase("#1=5")
	require.NoError(t, b.peekHash(t))
}

// peekHash is a tiny helper that runs ParseAssignment on b (whose lookahead
// is the leading '#') and checks that it targets numbered parameter #1.
func (b *Base) peekHash(t *testing.T) error {
	t.Helper()
	a, err := b.ParseAssignment()
	if err != nil {
		return err
	}
	if !a.Numbered || a.Num != 1 {
		t.Fatalf("unexpected assignment target: %+v", a)
	}
	return nil
}

func TestParseWordRejectsNonLetterLeading(t *testing.T) {
	b := newTestBase("1")
	_, err := b.ParseWord()
	require.Error(t, err)
}
