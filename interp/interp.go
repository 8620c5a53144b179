// Package interp executes an ir.Module: instruction pointer, operand
// stack, call stack of activation frames, and the numbered/named scope
// stacks, per spec.md §4.4. It raises syscalls to a host.Machine and falls
// through to a host.SystemScope for a numbered/named read that no program
// scope defines (numbered keys 1-30, read from the current frame only,
// excepted). Writes always go to a program scope, never to the system
// scope.
//
// Grounded on original_source/headers/gcodelib/runtime/Interpreter.h's
// execute()/interpret()/stop() shape, and on the teacher's Parser.Parse
// loop (parser.go) for the fetch-execute-repeat structure, generalised
// from "parse one command, evaluate it, return" into "run every
// instruction of a compiled module, dispatching syscalls as they occur".
package interp

import (
	"context"
	"log/slog"

	"github.com/dfinlay/gcodelib/errs"
	"github.com/dfinlay/gcodelib/host"
	"github.com/dfinlay/gcodelib/ir"
	"github.com/dfinlay/gcodelib/pos"
	"github.com/dfinlay/gcodelib/runtime"

	"github.com/google/uuid"
)

// State is a read-only snapshot of the interpreter, per spec.md §4.4's
// `state()` operation.
type State struct {
	IP          int
	StackDepth  int
	FrameDepth  int
}

// Interpreter executes one ir.Module against one host.Machine. Not safe
// for concurrent use by multiple goroutines; spec.md §5 permits running
// distinct Interpreter instances over the same (immutable) Module in
// parallel.
type Interpreter struct {
	mod     *ir.Module
	machine host.Machine
	system  *host.SystemScope

	ip     int
	stack  []runtime.Value
	frames []runtime.Frame

	numbered *runtime.NumberedScope
	named    *runtime.NamedScope

	scratch     map[byte]runtime.Value
	scratchOpen bool

	stopped bool

	// ExecutionID correlates one Execute call's syscalls and errors in
	// logs/traces, generated fresh per run.
	ExecutionID string

	log *slog.Logger
}

func New(mod *ir.Module, machine host.Machine, system *host.SystemScope) *Interpreter {
	return &Interpreter{
		mod:      mod,
		machine:  machine,
		system:   system,
		numbered: runtime.NewNumberedScope(nil),
		named:    runtime.NewNamedScope(nil),
		log:      slog.Default(),
	}
}

// SetLogger overrides the default (slog.Default()) logger milestones and
// syscall failures are reported through.
func (in *Interpreter) SetLogger(l *slog.Logger) {
	if l != nil {
		in.log = l
	}
}

func (in *Interpreter) State() State {
	return State{IP: in.ip, StackDepth: len(in.stack), FrameDepth: len(in.frames)}
}

// NumberedValue reads a numbered parameter from the program's current scope
// chain, without the subroutine-local-range or system-scope fallback rules
// step.go applies mid-execution. Intended for inspecting final state after
// Execute returns, per spec.md §4.4's state() operation.
func (in *Interpreter) NumberedValue(key uint16) (runtime.Value, bool) {
	return in.numbered.Lookup(key)
}

// NamedValue reads a named parameter the same way.
func (in *Interpreter) NamedValue(name string) (runtime.Value, bool) {
	return in.named.Lookup(name)
}

// Stop requests the fetch loop halt before its next instruction, the
// "cleanest point to cancel" per spec.md §5.
func (in *Interpreter) Stop() { in.stopped = true }

// Execute runs the module to completion (falling off the end of the
// instruction stream) or until ctx is cancelled or Stop is called. Each
// call is tagged with a fresh v7 execution id for trace correlation.
func (in *Interpreter) Execute(ctx context.Context) error {
	in.ExecutionID = uuid.Must(uuid.NewV7()).String()
	in.ip = 0
	in.stopped = false

	in.log.Debug("execute starting", "execution_id", in.ExecutionID, "instructions", len(in.mod.Instructions))

	for in.ip < len(in.mod.Instructions) {
		if in.stopped {
			in.log.Debug("execute stopped", "execution_id", in.ExecutionID, "ip", in.ip)
			return nil
		}
		select {
		case <-ctx.Done():
			in.log.Debug("execute cancelled", "execution_id", in.ExecutionID, "ip", in.ip)
			return errs.NewRuntimeError(errs.Cancellation, in.currentPos(), "execution cancelled")
		default:
		}

		instr := in.mod.Instructions[in.ip]
		in.ip++
		if err := in.step(instr); err != nil {
			in.log.Debug("execute failed", "execution_id", in.ExecutionID, "ip", in.ip-1, "error", err)
			return err
		}
	}
	in.log.Debug("execute finished", "execution_id", in.ExecutionID)
	return nil
}

// currentPos resolves the source position of the instruction last fetched,
// via the nearest source-map entry at or before it; the source map is
// weakly monotonic in instruction index so a linear scan finds the latest
// applicable entry.
func (in *Interpreter) currentPos() pos.Position {
	idx := in.ip - 1
	found := -1
	for i, e := range in.mod.SourceMap {
		if e.InstructionIndex <= idx {
			found = i
		} else {
			break
		}
	}
	if found < 0 {
		return pos.Position{}
	}
	return in.mod.SourceMap[found].Pos
}
