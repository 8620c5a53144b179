// Package gcodelib_test exercises the scenarios spec.md §8 describes
// end to end: source text through the real dialect parsers, translate.
// Translate, and interp.Interpreter against a host.Recorder, comparing the
// resulting syscall trace to a golden snapshot.
package gcodelib_test

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/dfinlay/gcodelib/host"
	"github.com/dfinlay/gcodelib/interp"
	"github.com/dfinlay/gcodelib/parser/linuxcnc"
	"github.com/dfinlay/gcodelib/parser/rs274"
	"github.com/dfinlay/gcodelib/translate"
	"github.com/stretchr/testify/require"
)

func runRS274(t *testing.T, src string) (*host.Recorder, *interp.Interpreter) {
	t.Helper()
	prog, err := rs274.New(strings.NewReader(src), "t.ngc").Parse()
	require.NoError(t, err)
	mod, err := translate.Translate(prog)
	require.NoError(t, err)

	rec := host.NewRecorder()
	in := interp.New(mod, rec, host.NewSystemScope())
	require.NoError(t, in.Execute(context.Background()))
	return rec, in
}

func runLinuxCNC(t *testing.T, src string) (*host.Recorder, *interp.Interpreter) {
	t.Helper()
	prog, err := linuxcnc.New(strings.NewReader(src), "t.ngc").Parse()
	require.NoError(t, err)
	mod, err := translate.Translate(prog)
	require.NoError(t, err)

	rec := host.NewRecorder()
	in := interp.New(mod, rec, host.NewSystemScope())
	require.NoError(t, in.Execute(context.Background()))
	return rec, in
}

func assertGolden(t *testing.T, name string, trace []host.Event) {
	t.Helper()
	g := goldie.New(t, goldie.WithFixtureDir("testdata/golden"), goldie.WithNameSuffix(".golden"))
	out, err := json.MarshalIndent(trace, "", "  ")
	require.NoError(t, err)
	g.Assert(t, name, out)
}

func TestScenarioSimpleMotion(t *testing.T) {
	rec, _ := runRS274(t, "G1 X10 Y20 F100\n")
	require.Len(t, rec.Trace, 1)
	require.Equal(t, "motion", rec.Trace[0].Kind)
	require.Equal(t, "10", rec.Trace[0].Words["X"])
	require.Equal(t, "20", rec.Trace[0].Words["Y"])
	require.Equal(t, "100", rec.Trace[0].Words["F"])
	assertGolden(t, "simple_motion", rec.Trace)
}

func TestScenarioNumberedParameters(t *testing.T) {
	rec, in := runRS274(t, "#1=5\n#2=[#1+3]\nG1 X#2\n")
	require.Len(t, rec.Trace, 1)
	require.Equal(t, "8", rec.Trace[0].Words["X"])

	v1, ok := in.NumberedValue(1)
	require.True(t, ok)
	require.Equal(t, int64(5), v1.Integer)

	v2, ok := in.NumberedValue(2)
	require.True(t, ok)
	require.Equal(t, int64(8), v2.Integer)

	assertGolden(t, "numbered_parameters", rec.Trace)
}

func TestScenarioSubroutineCall(t *testing.T) {
	rec, _ := runLinuxCNC(t, "o100 sub\nG1 X#1\no100 endsub\no100 call [7]\n")
	require.Len(t, rec.Trace, 1)
	require.Equal(t, "motion", rec.Trace[0].Kind)
	require.Equal(t, "7", rec.Trace[0].Words["X"])
	assertGolden(t, "subroutine_call", rec.Trace)
}

func TestScenarioWhileLoopNoSyscalls(t *testing.T) {
	rec, in := runLinuxCNC(t, "#1=0\no1 while [#1 LT 3]\n#1=[#1+1]\no1 endwhile\n")
	require.Empty(t, rec.Trace)

	v, ok := in.NumberedValue(1)
	require.True(t, ok)
	require.Equal(t, int64(3), v.Integer)
}

func TestScenarioRepeatLoop(t *testing.T) {
	rec, _ := runLinuxCNC(t, "o1 repeat [3]\nG0 X1\no1 endrepeat\n")
	require.Len(t, rec.Trace, 3)
	for _, e := range rec.Trace {
		require.Equal(t, "motion", e.Kind)
		require.Equal(t, "0", e.Value)
		require.Equal(t, "1", e.Words["X"])
	}
	assertGolden(t, "repeat_loop", rec.Trace)
}

func TestScenarioDivisionByZeroTraps(t *testing.T) {
	prog, err := rs274.New(strings.NewReader("G1 X[1/0]\n"), "t.ngc").Parse()
	require.NoError(t, err)
	mod, err := translate.Translate(prog)
	require.NoError(t, err)

	rec := host.NewRecorder()
	in := interp.New(mod, rec, host.NewSystemScope())
	err = in.Execute(context.Background())
	require.Error(t, err)
	require.Empty(t, rec.Trace, "no syscall is emitted once the divide traps")
}
