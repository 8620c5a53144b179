package interp

import (
	"github.com/dfinlay/gcodelib/errs"
	"github.com/dfinlay/gcodelib/host"
	"github.com/dfinlay/gcodelib/ir"
	"github.com/dfinlay/gcodelib/runtime"
)

func (in *Interpreter) push(v runtime.Value) { in.stack = append(in.stack, v) }

func (in *Interpreter) pop() (runtime.Value, error) {
	if len(in.stack) == 0 {
		return runtime.Value{}, errs.NewRuntimeError(errs.StackUnderflow, in.currentPos(), "operand stack underflow")
	}
	v := in.stack[len(in.stack)-1]
	in.stack = in.stack[:len(in.stack)-1]
	return v, nil
}

// step executes one instruction. ip has already been advanced past it by
// the caller, so jumps assign ip directly to the target instruction index.
func (in *Interpreter) step(instr ir.Instruction) error {
	switch instr.Op {
	case ir.OpPush:
		in.push(in.mod.Constants[instr.Imm])
		return nil

	case ir.OpDup:
		v, err := in.pop()
		if err != nil {
			return err
		}
		in.push(v)
		in.push(v)
		return nil

	case ir.OpNegate:
		return in.unary(func(v runtime.Value) (runtime.Value, error) { return v.Neg() })
	case ir.OpNot:
		return in.unary(func(v runtime.Value) (runtime.Value, error) { return v.Not() })

	case ir.OpAdd:
		return in.binary(runtime.Value.Add)
	case ir.OpSub:
		return in.binary(runtime.Value.Sub)
	case ir.OpMul:
		return in.binary(runtime.Value.Mul)
	case ir.OpDiv:
		return in.divide()
	case ir.OpMod:
		return in.modulus()
	case ir.OpEq:
		return in.binary(runtime.Value.Equal)
	case ir.OpNe:
		return in.binary(runtime.Value.NotEqual)
	case ir.OpLt:
		return in.binary(runtime.Value.Less)
	case ir.OpLe:
		return in.binary(runtime.Value.LessEqual)
	case ir.OpGt:
		return in.binary(runtime.Value.Greater)
	case ir.OpGe:
		return in.binary(runtime.Value.GreaterEqual)
	case ir.OpAnd:
		return in.binary(runtime.Value.And)
	case ir.OpOr:
		return in.binary(runtime.Value.Or)
	case ir.OpXor:
		return in.binary(runtime.Value.Xor)

	case ir.OpLoadNumbered:
		return in.loadNumbered(instr.Imm)
	case ir.OpStoreNumbered:
		return in.storeNumbered(instr.Imm)
	case ir.OpLoadNamed:
		return in.loadNamed(instr.Imm)
	case ir.OpStoreNamed:
		return in.storeNamed(instr.Imm)

	case ir.OpPushScope:
		in.numbered = runtime.NewNumberedScope(in.numbered)
		in.named = runtime.NewNamedScope(in.named)
		return nil
	case ir.OpPopScope:
		if in.numbered.Parent() != nil {
			in.numbered = in.numbered.Parent()
		}
		if in.named.Parent() != nil {
			in.named = in.named.Parent()
		}
		return nil

	case ir.OpPrologue:
		in.scratch = map[byte]runtime.Value{}
		in.scratchOpen = true
		return nil
	case ir.OpSetArg:
		v, err := in.pop()
		if err != nil {
			return err
		}
		in.scratch[byte(instr.Imm)] = v
		return nil
	case ir.OpSyscall:
		return in.syscall(ir.SyscallKind(instr.Imm))

	case ir.OpJump:
		in.ip = in.mod.Labels[instr.Imm]
		return nil
	case ir.OpJumpIf:
		v, err := in.pop()
		if err != nil {
			return err
		}
		b, _ := v.AsBool()
		if b {
			in.ip = in.mod.Labels[instr.Imm]
		}
		return nil
	case ir.OpCompareJumpEq, ir.OpCompareJumpNe, ir.OpCompareJumpLt,
		ir.OpCompareJumpLe, ir.OpCompareJumpGt, ir.OpCompareJumpGe:
		return in.compareJump(instr)

	case ir.OpCall:
		in.frames = append(in.frames, runtime.Frame{
			ReturnIP:       in.ip,
			NumberedDepth:  in.numbered.Depth(),
			NamedDepth:     in.named.Depth(),
			StackWatermark: len(in.stack),
		})
		in.ip = in.mod.Labels[instr.Imm]
		return nil
	case ir.OpRet:
		if len(in.frames) == 0 {
			return errs.NewRuntimeError(errs.ControlFlowOutOfContext, in.currentPos(), "return with no active call frame")
		}
		f := in.frames[len(in.frames)-1]
		in.frames = in.frames[:len(in.frames)-1]
		for in.numbered.Depth() > f.NumberedDepth && in.numbered.Parent() != nil {
			in.numbered = in.numbered.Parent()
		}
		for in.named.Depth() > f.NamedDepth && in.named.Parent() != nil {
			in.named = in.named.Parent()
		}
		if len(in.stack) > f.StackWatermark {
			in.stack = in.stack[:f.StackWatermark]
		}
		in.ip = f.ReturnIP
		return nil

	case ir.OpInvoke:
		return errs.NewRuntimeError(errs.HostSyscallFailure, in.currentPos(), "invoke: no builtin function table bound")

	default:
		return errs.NewRuntimeError(errs.StackUnderflow, in.currentPos(), "unknown opcode")
	}
}

func (in *Interpreter) unary(f func(runtime.Value) (runtime.Value, error)) error {
	v, err := in.pop()
	if err != nil {
		return err
	}
	r, err := f(v)
	if err != nil {
		return errs.NewRuntimeError(errs.HostSyscallFailure, in.currentPos(), err.Error())
	}
	in.push(r)
	return nil
}

func (in *Interpreter) binary(f func(runtime.Value, runtime.Value) (runtime.Value, error)) error {
	b, err := in.pop()
	if err != nil {
		return err
	}
	a, err := in.pop()
	if err != nil {
		return err
	}
	r, err := f(a, b)
	if err != nil {
		return errs.NewRuntimeError(errs.HostSyscallFailure, in.currentPos(), err.Error())
	}
	in.push(r)
	return nil
}

func (in *Interpreter) divide() error {
	b, err := in.pop()
	if err != nil {
		return err
	}
	a, err := in.pop()
	if err != nil {
		return err
	}
	if b.Kind == runtime.KindInteger && b.Integer == 0 {
		return errs.NewRuntimeError(errs.DivisionByZero, in.currentPos(), "division by zero")
	}
	if b.Kind == runtime.KindFloat && b.Float == 0 {
		return errs.NewRuntimeError(errs.DivisionByZero, in.currentPos(), "division by zero")
	}
	r, err := a.Div(b)
	if err != nil {
		return errs.NewRuntimeError(errs.HostSyscallFailure, in.currentPos(), err.Error())
	}
	in.push(r)
	return nil
}

func (in *Interpreter) modulus() error {
	b, err := in.pop()
	if err != nil {
		return err
	}
	a, err := in.pop()
	if err != nil {
		return err
	}
	if (b.Kind == runtime.KindInteger && b.Integer == 0) || (b.Kind == runtime.KindFloat && b.Float == 0) {
		return errs.NewRuntimeError(errs.DivisionByZero, in.currentPos(), "modulus by zero")
	}
	r, err := a.Mod(b)
	if err != nil {
		return errs.NewRuntimeError(errs.HostSyscallFailure, in.currentPos(), err.Error())
	}
	in.push(r)
	return nil
}

// compareJump implements the fused comparison+branch opcodes, which the
// translate package never emits but a module may contain: pop b, a;
// compare; jump if true.
func (in *Interpreter) compareJump(instr ir.Instruction) error {
	b, err := in.pop()
	if err != nil {
		return err
	}
	a, err := in.pop()
	if err != nil {
		return err
	}
	var r runtime.Value
	var cmpErr error
	switch instr.Op {
	case ir.OpCompareJumpEq:
		r, cmpErr = a.Equal(b)
	case ir.OpCompareJumpNe:
		r, cmpErr = a.NotEqual(b)
	case ir.OpCompareJumpLt:
		r, cmpErr = a.Less(b)
	case ir.OpCompareJumpLe:
		r, cmpErr = a.LessEqual(b)
	case ir.OpCompareJumpGt:
		r, cmpErr = a.Greater(b)
	case ir.OpCompareJumpGe:
		r, cmpErr = a.GreaterEqual(b)
	}
	if cmpErr != nil {
		return errs.NewRuntimeError(errs.HostSyscallFailure, in.currentPos(), cmpErr.Error())
	}
	if r.Logical {
		in.ip = in.mod.Labels[instr.Imm]
	}
	return nil
}

// loadNumbered resolves key -1 (the indirect sentinel: pop the slot number
// from the stack instead of using imm) or an immediate slot. Keys 1 to
// subroutineLocalMax are read from the current frame only, and a miss
// there promotes to None. For any other key, a miss in every program scope
// falls through to the host system scope; a miss there promotes to None,
// per spec.md §4.4.
func (in *Interpreter) loadNumbered(imm int64) error {
	key, err := in.resolveNumberedKey(imm)
	if err != nil {
		return err
	}
	if key >= 1 && key <= subroutineLocalMax {
		if v, ok := in.numbered.LookupLocal(key); ok {
			in.push(v)
			return nil
		}
		in.push(runtime.None())
		return nil
	}
	if v, ok := in.numbered.Lookup(key); ok {
		in.push(v)
		return nil
	}
	if in.system != nil {
		if v, ok := in.system.LookupNumbered(key); ok {
			in.push(v)
			return nil
		}
	}
	in.push(runtime.None())
	return nil
}

// subroutineLocalMax is the top of the numbered-parameter range reserved for
// subroutine arguments and locals (the teacher's engine.go comment: "#1 to
// #30 are subroutine parameters and are local to the subroutine"). Writes in
// this range always bind in the current frame, so a subroutine's locals
// never leak into or shadow an unrelated outer binding of the same number;
// writes outside it use the general innermost-defining-frame-or-root rule.
const subroutineLocalMax = 30

func (in *Interpreter) storeNumbered(imm int64) error {
	key, err := in.resolveNumberedKey(imm)
	if err != nil {
		return err
	}
	v, err := in.pop()
	if err != nil {
		return err
	}
	if key >= 1 && key <= subroutineLocalMax {
		in.numbered.Bind(key, v)
	} else {
		in.numbered.Store(key, v)
	}
	return nil
}

// resolveNumberedKey pops the dynamic index for an indirect (#[expr])
// access, recognised by the sentinel immediate -1 the translator emits.
func (in *Interpreter) resolveNumberedKey(imm int64) (uint16, error) {
	if imm != -1 {
		return uint16(imm), nil
	}
	v, err := in.pop()
	if err != nil {
		return 0, err
	}
	f, _ := v.AsFloat()
	return uint16(int64(f)), nil
}

func (in *Interpreter) loadNamed(imm int64) error {
	name := in.mod.Constants[imm].String
	if v, ok := in.named.Lookup(name); ok {
		in.push(v)
		return nil
	}
	if in.system != nil {
		if v, ok := in.system.LookupNamed(name); ok {
			in.push(v)
			return nil
		}
	}
	in.push(runtime.None())
	return nil
}

func (in *Interpreter) storeNamed(imm int64) error {
	name := in.mod.Constants[imm].String
	v, err := in.pop()
	if err != nil {
		return err
	}
	in.named.Store(name, v)
	return nil
}

func (in *Interpreter) syscall(kind ir.SyscallKind) error {
	v, err := in.pop()
	if err != nil {
		return err
	}
	if kind == ir.SyscallMotion {
		if n, ok := v.AsFloat(); ok && ir.ArcMotionGCodes[int64(n)] && n == float64(int64(n)) {
			kind = ir.SyscallArcMotion
		}
	}
	scratch := scratchView(in.scratch)
	in.scratch = nil
	in.scratchOpen = false
	if in.machine == nil {
		return nil
	}
	if err := in.machine.Syscall(kind, v, scratch); err != nil {
		in.log.Warn("host syscall failed", "execution_id", in.ExecutionID, "kind", kind.String(), "error", err)
		return errs.WrapSyscallError(in.currentPos(), err)
	}
	return nil
}

type scratchView map[byte]runtime.Value

func (s scratchView) Get(letter byte) (runtime.Value, bool) { v, ok := s[letter]; return v, ok }
func (s scratchView) Letters() []byte {
	letters := make([]byte, 0, len(s))
	for l := range s {
		letters = append(letters, l)
	}
	return letters
}

var _ host.Scratch = scratchView(nil)
