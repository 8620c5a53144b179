package linuxcnc

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseSubAndCallWithOPrefix(t *testing.T) {
	p := New(strings.NewReader("o100 sub\nG1 X#1\no100 endsub\no100 call [7]\n"), "t.ngc")
	prog, err := p.Parse()
	require.NoError(t, err)
	require.Contains(t, prog.Procedures, "100")
	require.Len(t, prog.Body, 1)
}

func TestParseCallWithTrailingLabel(t *testing.T) {
	p := New(strings.NewReader("o100 sub\nG1 X#1\no100 endsub\ncall 100 [7]\n"), "t.ngc")
	prog, err := p.Parse()
	require.NoError(t, err)
	require.Len(t, prog.Body, 1)
}

func TestParseWhileLoop(t *testing.T) {
	p := New(strings.NewReader("o1 while [#1 LT 3]\n#1=[#1+1]\no1 endwhile\n"), "t.ngc")
	prog, err := p.Parse()
	require.NoError(t, err)
	require.Len(t, prog.Body, 1)
}

func TestParseRepeatLoop(t *testing.T) {
	p := New(strings.NewReader("o1 repeat [3]\nG0 X1\no1 endrepeat\n"), "t.ngc")
	prog, err := p.Parse()
	require.NoError(t, err)
	require.Len(t, prog.Body, 1)
}

func TestParseIfElseif(t *testing.T) {
	p := New(strings.NewReader(
		"o1 if [#1 EQ 1]\nG0 X1\no1 elseif [#1 EQ 2]\nG0 X2\no1 else\nG0 X3\no1 endif\n"), "t.ngc")
	prog, err := p.Parse()
	require.NoError(t, err)
	require.Len(t, prog.Body, 1)
}

func TestMismatchedBlockLabelIsParseError(t *testing.T) {
	p := New(strings.NewReader("o1 while [1 LT 2]\nG0 X1\no2 endwhile\n"), "t.ngc")
	_, err := p.Parse()
	require.Error(t, err)
}

func TestUnmatchedCloserIsParseError(t *testing.T) {
	p := New(strings.NewReader("o1 while [1 LT 2]\nG0 X1\n"), "t.ngc")
	_, err := p.Parse()
	require.Error(t, err)
}

func TestParseCallMissingLabelIsParseError(t *testing.T) {
	p := New(strings.NewReader("call [7]\n"), "t.ngc")
	_, err := p.Parse()
	require.Error(t, err)
}

func TestInlineAndLineEndComments(t *testing.T) {
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
