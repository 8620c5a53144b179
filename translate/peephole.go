package translate

import (
	"github.com/dfinlay/gcodelib/ir"
	"github.com/dfinlay/gcodelib/runtime"
)

// foldConstants is the one optimisation pass spec.md's Non-goals permit:
// a `Push k1, Push k2, <binop>` or `Push k, <unop>` run, with no
// intervening label target, collapses to a single `Push k3` once both
// operands are compile-time constants. It runs over the finished module:
// each fold shifts the label indices and source-map entries past the
// folded span down (see replaceRange), and the set of label targets is
// recomputed before the next fold.
func foldConstants(m *ir.Module) {
	for foldOnePass(m, targetedIndices(m)) {
	}
}

func targetedIndices(m *ir.Module) map[int]bool {
	targets := map[int]bool{}
	for _, idx := range m.Labels {
		if idx >= 0 {
			targets[idx] = true
		}
	}
	return targets
}

func foldOnePass(m *ir.Module, targets map[int]bool) bool {
	ins := m.Instructions
	for i := 0; i+1 < len(ins); i++ {
		if ins[i].Op != ir.OpPush || targets[i+1] {
			continue
		}
		a := m.Constants[ins[i].Imm]

		if isUnary(ins[i+1].Op) {
			folded, ok := foldUnary(ins[i+1].Op, a)
			if !ok {
				continue
			}
			replaceRange(m, i, i+2, folded)
			return true
		}

		if i+2 < len(ins) && ins[i+1].Op == ir.OpPush && !targets[i+2] {
			b := m.Constants[ins[i+1].Imm]
			if isBinary(ins[i+2].Op) {
				folded, ok := foldBinary(ins[i+2].Op, a, b)
				if !ok {
					continue
				}
				replaceRange(m, i, i+3, folded)
				return true
			}
		}
	}
	return false
}

func isUnary(op ir.Opcode) bool { return op == ir.OpNegate || op == ir.OpNot }

func isBinary(op ir.Opcode) bool {
	switch op {
	case ir.OpAdd, ir.OpSub, ir.OpMul, ir.OpDiv, ir.OpMod,
		ir.OpEq, ir.OpNe, ir.OpLt, ir.OpLe, ir.OpGt, ir.OpGe,
		ir.OpAnd, ir.OpOr, ir.OpXor:
		return true
	default:
		return false
	}
}

func foldUnary(op ir.Opcode, a runtime.Value) (runtime.Value, bool) {
	var v runtime.Value
	var err error
	switch op {
	case ir.OpNegate:
		v, err = a.Neg()
	case ir.OpNot:
		v, err = a.Not()
	}
	return v, err == nil
}

func foldBinary(op ir.Opcode, a, b runtime.Value) (runtime.Value, bool) {
	var v runtime.Value
	var err error
	switch op {
	case ir.OpAdd:
		v, err = a.Add(b)
	case ir.OpSub:
		v, err = a.Sub(b)
	case ir.OpMul:
		v, err = a.Mul(b)
	case ir.OpDiv:
		// Division by a zero divisor (integer or float) is a runtime trap,
		// not a compile time constant; leave it unfolded so the
		// interpreter raises it.
		if (b.Kind == runtime.KindInteger && b.Integer == 0) || (b.Kind == runtime.KindFloat && b.Float == 0) {
			return runtime.Value{}, false
		}
		v, err = a.Div(b)
	case ir.OpMod:
		if (b.Kind == runtime.KindInteger && b.Integer == 0) || (b.Kind == runtime.KindFloat && b.Float == 0) {
			return runtime.Value{}, false
		}
		v, err = a.Mod(b)
	case ir.OpEq:
		v, err = a.Equal(b)
	case ir.OpNe:
		v, err = a.NotEqual(b)
	case ir.OpLt:
		v, err = a.Less(b)
	case ir.OpLe:
		v, err = a.LessEqual(b)
	case ir.OpGt:
		v, err = a.Greater(b)
	case ir.OpGe:
		v, err = a.GreaterEqual(b)
	case ir.OpAnd:
		v, err = a.And(b)
	case ir.OpOr:
		v, err = a.Or(b)
	case ir.OpXor:
		v, err = a.Xor(b)
	}
	return v, err == nil
}

// replaceRange collapses m.Instructions[start:end] into one Push of the
// folded constant, sliding everything after it down and fixing up every
// label index and source-map entry that pointed past the removed span.
func replaceRange(m *ir.Module, start, end int, folded runtime.Value) {
	removed := (end - start) - 1
	newIdx := len(m.Constants)
	m.Constants = append(m.Constants, folded)

	out := make([]ir.Instruction, 0, len(m.Instructions)-removed)
	out = append(out, m.Instructions[:start]...)
	out = append(out, ir.Instruction{Op: ir.OpPush, Imm: int64(newIdx)})
	out = append(out, m.Instructions[end:]...)
	m.Instructions = out

	shift := func(idx int) int {
		switch {
		case idx >= end:
			return idx - removed
		case idx > start:
			// Nothing else should ever target the interior of a folded
			// span; targetedIndices() is checked before folding.
			return start
		default:
			return idx
		}
	}
	for i, idx := range m.Labels {
		if idx >= 0 {
			m.Labels[i] = shift(idx)
		}
	}
	for i := range m.SourceMap {
		m.SourceMap[i].InstructionIndex = shift(m.SourceMap[i].InstructionIndex)
	}
}
