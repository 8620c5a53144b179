package rs274

import (
	"strings"
	"testing"

	"github.com/dfinlay/gcodelib/ast"
	"github.com/stretchr/testify/require"
)

func TestParseSimpleMotionBlock(t *testing.T) {
	p := New(strings.NewReader("G1 X10 Y20 F100\n"), "t.ngc")
	prog, err := p.Parse()
	require.NoError(t, err)
	require.Len(t, prog.Body, 1)
	require.Len(t, prog.Body[0].(*ast.Command).Words, 4)
}

func TestParseEachLineIsOneCommand(t *testing.T) {
	p := New(strings.NewReader("G0 X0\nG1 X10\n"), "t.ngc")
	prog, err := p.Parse()
	require.NoError(t, err)
	require.Len(t, prog.Body, 2)
}

func TestParseLineNumberAndChecksum(t *testing.T) {
	p := New(strings.NewReader("N10 G1 X1 *42\nN20 G1 X2\n"), "t.ngc")
	prog, err := p.Parse()
	require.NoError(t, err)
	require.Len(t, prog.Body, 2)
}

func TestParseLineNumberOutOfOrderIsError(t *testing.T) {
	p := New(strings.NewReader("N20 G1 X1\nN10 G1 X2\n"), "t.ngc")
	_, err := p.Parse()
	require.Error(t, err)
}

func TestParseLineNumberNotFirstIsError(t *testing.T) {
	p := New(strings.NewReader("G1 N10 X1\n"), "t.ngc")
	_, err := p.Parse()
	require.Error(t, err)
}

func TestParseChecksumMustBeLastIsError(t *testing.T) {
	p := New(strings.NewReader("G1 *42 X1\n"), "t.ngc")
	_, err := p.Parse()
	require.Error(t, err)
}

func TestParseAssignmentInBlock(t *testing.T) {
	p := New(strings.NewReader("#1=5\nG1 X#1\n"), "t.ngc")
	prog, err := p.Parse()
	require.NoError(t, err)
	require.Len(t, prog.Body, 2)
	require.Len(t, prog.Body[0].(*ast.Command).Assignments, 1)
}

func TestParseInlineAndLineEndComments(t *testing.T) {
	var inline, lineEnd string
	p := New(strings.NewReader("G1 (note) X1 ;trailer\n"), "t.ngc")
	p.Comments.Inline = func(text string) { inline = text }
	p.Comments.LineEnd = func(text string) { lineEnd = text }
	prog, err := p.Parse()
	require.NoError(t, err)
	require.Len(t, prog.Body, 1)
	require.Equal(t, "note", inline)
	require.Equal(t, "trailer", lineEnd)
}

func TestParseProceduresAlwaysEmpty(t *testing.T) {
	p := New(strings.NewReader("G1 X1\n"), "t.ngc")
	prog, err := p.Parse()
	require.NoError(t, err)
	require.Empty(t, prog.Procedures)
}
