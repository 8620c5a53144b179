package translate

import (
	"testing"

	"github.com/dfinlay/gcodelib/ast"
	"github.com/dfinlay/gcodelib/errs"
	"github.com/dfinlay/gcodelib/ir"
	"github.com/dfinlay/gcodelib/pos"
	"github.com/dfinlay/gcodelib/runtime"
	"github.com/stretchr/testify/require"
)

func countOp(mod *ir.Module, op ir.Opcode) int {
	n := 0
	for _, i := range mod.Instructions {
		if i.Op == op {
			n++
		}
	}
	return n
}

func TestTranslateSimpleCommand(t *testing.T) {
	g := &ast.IDGen{}
	p := pos.Start("t.ngc")
	prog := ast.NewProgram(g, p)

	cmd := ast.NewCommand(g, p)
	cmd.AddWord(ast.NewWord(g, p, 'G', ast.NewNumberConstant(g, p, runtime.Integer(0))))
	cmd.AddWord(ast.NewWord(g, p, 'X', ast.NewNumberConstant(g, p, runtime.Integer(1))))
	prog.Body = append(prog.Body, cmd)

	mod, err := Translate(prog)
	require.NoError(t, err)

	require.Equal(t, 1, countOp(mod, ir.OpPrologue))
	require.Equal(t, 1, countOp(mod, ir.OpSyscall))
	require.Equal(t, 2, countOp(mod, ir.OpSetArg))
	require.Equal(t, 1, countOp(mod, ir.OpDup), "principal word's value must be duplicated, not re-evaluated")

	last := mod.Instructions[len(mod.Instructions)-1]
	require.Equal(t, ir.OpSyscall, last.Op)
	require.Equal(t, int64(ir.SyscallMotion), last.Imm)
}

func TestPeepholeFoldsConstantArithmetic(t *testing.T) {
	g := &ast.IDGen{}
	p := pos.Start("t.ngc")
	prog := ast.NewProgram(g, p)

	expr := ast.NewBinaryOp(g, p, ast.Add,
		ast.NewNumberConstant(g, p, runtime.Integer(2)),
		ast.NewNumberConstant(g, p, runtime.Integer(3)))
	cmd := ast.NewCommand(g, p)
	cmd.AddWord(ast.NewWord(g, p, 'G', expr))
	prog.Body = append(prog.Body, cmd)

	mod, err := Translate(prog)
	require.NoError(t, err)
	require.Zero(t, countOp(mod, ir.OpAdd), "constant 2+3 should fold away")

	foundFive := false
	for _, c := range mod.Constants {
		if c.Kind == runtime.KindInteger && c.Integer == 5 {
			foundFive = true
		}
	}
	require.True(t, foundFive, "folded constant 5 must appear in the constant pool")
}

func TestTranslateWhileLoopWithBreak(t *testing.T) {
	g := &ast.IDGen{}
	p := pos.Start("t.ngc")
	prog := ast.NewProgram(g, p)

	loop := ast.NewWhileLoop(g, p, "1")
	loop.Cond = ast.NewNumberConstant(g, p, runtime.Integer(1))
	loop.Body = []ast.Node{ast.NewBreak(g, p)}
	prog.Body = append(prog.Body, loop)

	mod, err := Translate(prog)
	require.NoError(t, err)
	require.GreaterOrEqual(t, countOp(mod, ir.OpJump), 2, "break and loop-back both emit a Jump")
	require.Equal(t, 1, countOp(mod, ir.OpJumpIf))
}

func TestTranslateSubroutineCallBindsArgsHighToLow(t *testing.T) {
	g := &ast.IDGen{}
	p := pos.Start("t.ngc")
	prog := ast.NewProgram(g, p)

	call := ast.NewProcedureCall(g, p, "100", []ast.Node{
		ast.NewNumberConstant(g, p, runtime.Integer(1)),
		ast.NewNumberConstant(g, p, runtime.Integer(2)),
	})
	prog.Body = append(prog.Body, call)

	def := ast.NewProcedureDefinition(g, p, "100")
	def.Body = []ast.Node{ast.NewReturn(g, p)}
	prog.Procedures["100"] = def
	prog.ProcedureOrder = []string{"100"}

	mod, err := Translate(prog)
	require.NoError(t, err)

	require.Equal(t, 1, countOp(mod, ir.OpCall))
	require.Equal(t, 1, countOp(mod, ir.OpPushScope))
	require.Equal(t, 1, countOp(mod, ir.OpPopScope))

	var stores []int64
	for _, i := range mod.Instructions {
		if i.Op == ir.OpStoreNumbered {
			stores = append(stores, i.Imm)
		}
	}
	require.Equal(t, []int64{2, 1}, stores, "parameters bind highest-numbered argument first")
}

func TestBreakOutsideLoopIsRuntimeError(t *testing.T) {
	g := &ast.IDGen{}
	p := pos.Start("t.ngc")
	prog := ast.NewProgram(g, p)
	prog.Body = append(prog.Body, ast.NewBreak(g, p))

	_, err := Translate(prog)
	require.Error(t, err)
	var rerr *errs.RuntimeError
	require.ErrorAs(t, err, &rerr)
	require.Equal(t, errs.ControlFlowOutOfContext, rerr.Kind)
}

func TestContinueOutsideLoopIsRuntimeError(t *testing.T) {
	g := &ast.IDGen{}
	p := pos.Start("t.ngc")
	prog := ast.NewProgram(g, p)
	prog.Body = append(prog.Body, ast.NewContinue(g, p))

	_, err := Translate(prog)
	require.Error(t, err)
	var rerr *errs.RuntimeError
	require.ErrorAs(t, err, &rerr)
	require.Equal(t, errs.ControlFlowOutOfContext, rerr.Kind)
}

func TestReturnOutsideSubroutineIsRuntimeError(t *testing.T) {
	g := &ast.IDGen{}
	p := pos.Start("t.ngc")
	prog := ast.NewProgram(g, p)
	prog.Body = append(prog.Body, ast.NewReturn(g, p))

	_, err := Translate(prog)
	require.Error(t, err)
	var rerr *errs.RuntimeError
	require.ErrorAs(t, err, &rerr)
	require.Equal(t, errs.ControlFlowOutOfContext, rerr.Kind)
}
