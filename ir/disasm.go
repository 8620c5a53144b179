package ir

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// DisasmLine is one human-readable rendering of an instruction, carrying
// enough context (resolved constant/label, source position when known) to
// be useful without cross-referencing the module by hand.
type DisasmLine struct {
	Index   int    `yaml:"index"`
	Op      string `yaml:"op"`
	Imm     int64  `yaml:"imm"`
	Operand string `yaml:"operand,omitempty"`
	Source  string `yaml:"source,omitempty"`
}

// Disasm is the full disassembly of a Module: one line per instruction,
// plus the procedure table for context.
type Disasm struct {
	Procedures []Procedure  `yaml:"procedures,omitempty"`
	Lines      []DisasmLine `yaml:"instructions"`
}

// Disassemble renders m into a DisasmLine per instruction, resolving
// constant-pool and label immediates into a readable operand string.
func Disassemble(m *Module) *Disasm {
	sourceAt := make(map[int]string, len(m.SourceMap))
	for _, e := range m.SourceMap {
		sourceAt[e.InstructionIndex] = e.Pos.String()
	}

	d := &Disasm{Procedures: m.Procedures}
	for i, instr := range m.Instructions {
		line := DisasmLine{Index: i, Op: instr.Op.String(), Imm: instr.Imm, Source: sourceAt[i]}
		line.Operand = operandString(m, instr)
		d.Lines = append(d.Lines, line)
	}
	return d
}

func operandString(m *Module, instr Instruction) string {
	switch instr.Op {
	case OpPush:
		if instr.Imm >= 0 && int(instr.Imm) < len(m.Constants) {
			return m.Constants[instr.Imm].Format()
		}
	case OpJump, OpJumpIf, OpCall,
		OpCompareJumpEq, OpCompareJumpNe, OpCompareJumpLt,
		OpCompareJumpLe, OpCompareJumpGt, OpCompareJumpGe:
		if instr.Imm >= 0 && int(instr.Imm) < len(m.Labels) {
			return fmt.Sprintf("-> %d (label %d)", m.Labels[instr.Imm], instr.Imm)
		}
	case OpSyscall:
		return SyscallKind(instr.Imm).String()
	case OpSetArg:
		return string(byte(instr.Imm))
	}
	return ""
}

// Text renders d as a flat, one-instruction-per-line listing.
func (d *Disasm) Text() string {
	var b strings.Builder
	for _, p := range d.Procedures {
		fmt.Fprintf(&b, "; procedure %q -> label %d\n", p.Label, p.EntryLabel)
	}
	for _, l := range d.Lines {
		fmt.Fprintf(&b, "%4d  %-16s %8d", l.Index, l.Op, l.Imm)
		if l.Operand != "" {
			fmt.Fprintf(&b, "  ; %s", l.Operand)
		}
		if l.Source != "" {
			fmt.Fprintf(&b, "  @ %s", l.Source)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// YAML renders d in the structured form, for golden-file comparison.
func (d *Disasm) YAML() (string, error) {
	out, err := yaml.Marshal(d)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
