// Package ast defines the syntax tree both dialect parsers produce: a
// tagged tree of expressions, commands, and blocks, with uniform node
// identity assigned at construction. The teacher's parser.go never needed
// node identity because its grammar is flat (it evaluates expressions
// in-place while scanning); LinuxCNC's arbitrarily nested O-code blocks
// need it so that an opening `oN while` and its matching `oN endwhile` can
// be tied to one tree node during parsing.
package ast

import (
	"github.com/dfinlay/gcodelib/pos"
	"github.com/dfinlay/gcodelib/runtime"
)

// IDGen assigns monotonically increasing node identities. Owned by the
// parser for the lifetime of one parse.
type IDGen struct{ next uint64 }

func (g *IDGen) Next() uint64 {
	g.next++
	return g.next
}

// Node is implemented by every concrete AST kind. ID is unique within one
// Program.
type Node interface {
	NodeID() uint64
	Position() pos.Position
}

type base struct {
	ID  uint64
	Pos pos.Position
}

func (b base) NodeID() uint64        { return b.ID }
func (b base) Position() pos.Position { return b.Pos }

// UnOp and BinOp enumerate the unary and binary operators the shared
// expression grammar recognises (spec.md §4.2).
type UnOp int

const (
	Negate UnOp = iota
	LogicalNot
)

type BinOp int

const (
	Add BinOp = iota
	Sub
	Mul
	Div
	Mod
	Eq
	Ne
	Lt
	Le
	Gt
	Ge
	And
	Or
	Xor
)

// NumberConstant is a literal integer or float.
type NumberConstant struct {
	base
	Value runtime.Value
}

// StringConstant is a literal string (comment text captured for a host
// callback, or a quoted string where a dialect allows one).
type StringConstant struct {
	base
	Value string
}

// UnaryOp applies a unary operator to Operand.
type UnaryOp struct {
	base
	Op      UnOp
	Operand Node
}

// BinaryOp applies a binary operator to Left and Right.
type BinaryOp struct {
	base
	Op    BinOp
	Left  Node
	Right Node
}

// VariableReference reads a numbered (#1), named (#<name>), or indirect
// (#[expr]) parameter. When Index is non-nil the numbered slot is computed
// at run time by evaluating Index, per the grammar's `'#' primary`
// production (primary includes a bracketed expression).
type VariableReference struct {
	base
	Numbered bool
	Num      uint16
	Name     string
	Index    Node
}

// VariableAssignment writes the evaluation of Value into a numbered or
// named parameter.
type VariableAssignment struct {
	base
	Numbered bool
	Num      uint16
	Name     string
	Index    Node // non-nil for indirect #[expr]=value targets
	Value    Node
}

// Word is a letter followed by an expression, e.g. X10 or X[1+2].
type Word struct {
	base
	Letter byte
	Value  Node
}

// Command is one block: a sequence of assignments and words terminated by a
// newline.
type Command struct {
	base
	Assignments []*VariableAssignment
	Words       []*Word
}

// ProcedureCall invokes a subroutine by label, pushing each argument.
type ProcedureCall struct {
	base
	Label string
	Args  []Node
}

// labelled is embedded by every control-flow node that a LinuxCNC O-code
// block identifies: the numeric or named label tying an opener to its
// closer, e.g. `o100 while ...` / `o100 endwhile`.
type labelled struct {
	Label string
}

// LabelledBlock is the raw span of statements between an O-code opener and
// its closer, before the parser has committed to a specific control-flow
// node kind. Neither dialect parser constructs one (an O-code form they
// cannot classify is a parse error), and translate rejects it as an
// unsupported statement; Conditional/WhileLoop/etc. below are the
// classified forms and carry their own Label field via labelled.
type LabelledBlock struct {
	base
	labelled
	Body []Node
}

// ProcedureDefinition is a LinuxCNC `sub`/`endsub` body, hoisted to the
// module-level procedure table keyed by Label.
type ProcedureDefinition struct {
	base
	labelled
	Body []Node
}

// IfArm is one `if`/`elseif` arm: a condition and its body.
type IfArm struct {
	Cond Node
	Body []Node
}

// Conditional is `if [cond] ... elseif [cond] ... else ... endif`.
type Conditional struct {
	base
	labelled
	Arms []IfArm
	Else []Node // nil if there is no else clause
}

// WhileLoop is `while [cond] ... endwhile`.
type WhileLoop struct {
	base
	labelled
	Cond Node
	Body []Node
}

// DoWhileLoop is `do ... while [cond]`.
type DoWhileLoop struct {
	base
	labelled
	Body []Node
	Cond Node
}

// RepeatLoop is `repeat [n] ... endrepeat`.
type RepeatLoop struct {
	base
	labelled
	Count Node
	Body  []Node
}

// Break exits the innermost enclosing loop.
type Break struct{ base }

// Continue jumps to the innermost enclosing loop's test.
type Continue struct{ base }

// Return unwinds to the nearest enclosing subroutine and exits it.
type Return struct{ base }

// Program is the root of the tree: the top-level statement sequence plus
// the hoisted procedure table.
type Program struct {
	base
	Body       []Node
	Procedures map[string]*ProcedureDefinition
	// ProcedureOrder preserves declaration order for deterministic
	// translation (map iteration order is not stable).
	ProcedureOrder []string
}

// Constructors set the node's identity and position; callers otherwise
// build the struct literal directly for the remaining fields, matching the
// small-struct, no-builder style spec.md's "Tagged variants over
// polymorphism" note calls for.

func NewProgram(g *IDGen, p pos.Position) *Program {
	return &Program{base: base{ID: g.Next(), Pos: p}, Procedures: map[string]*ProcedureDefinition{}}
}

func mk(g *IDGen, p pos.Position) base { return base{ID: g.Next(), Pos: p} }

func NewNumberConstant(g *IDGen, p pos.Position, v runtime.Value) *NumberConstant {
	return &NumberConstant{base: mk(g, p), Value: v}
}

func NewStringConstant(g *IDGen, p pos.Position, s string) *StringConstant {
	return &StringConstant{base: mk(g, p), Value: s}
}

func NewUnaryOp(g *IDGen, p pos.Position, op UnOp, operand Node) *UnaryOp {
	return &UnaryOp{base: mk(g, p), Op: op, Operand: operand}
}

func NewBinaryOp(g *IDGen, p pos.Position, op BinOp, left, right Node) *BinaryOp {
	return &BinaryOp{base: mk(g, p), Op: op, Left: left, Right: right}
}

func NewVariableReferenceNumbered(g *IDGen, p pos.Position, num uint16) *VariableReference {
	return &VariableReference{base: mk(g, p), Numbered: true, Num: num}
}

func NewVariableReferenceNamed(g *IDGen, p pos.Position, name string) *VariableReference {
	return &VariableReference{base: mk(g, p), Name: name}
}

func NewVariableReferenceIndirect(g *IDGen, p pos.Position, index Node) *VariableReference {
	return &VariableReference{base: mk(g, p), Numbered: true, Index: index}
}

func NewVariableAssignmentNumbered(g *IDGen, p pos.Position, num uint16, val Node) *VariableAssignment {
	return &VariableAssignment{base: mk(g, p), Numbered: true, Num: num, Value: val}
}

func NewVariableAssignmentNamed(g *IDGen, p pos.Position, name string, val Node) *VariableAssignment {
	return &VariableAssignment{base: mk(g, p), Name: name, Value: val}
}

func NewVariableAssignmentIndirect(g *IDGen, p pos.Position, index, val Node) *VariableAssignment {
	return &VariableAssignment{base: mk(g, p), Numbered: true, Index: index, Value: val}
}

func NewWord(g *IDGen, p pos.Position, letter byte, val Node) *Word {
	return &Word{base: mk(g, p), Letter: letter, Value: val}
}

func NewCommand(g *IDGen, p pos.Position) *Command {
	return &Command{base: mk(g, p)}
}

func (c *Command) AddWord(w *Word)                     { c.Words = append(c.Words, w) }
func (c *Command) AddAssignment(a *VariableAssignment) { c.Assignments = append(c.Assignments, a) }

func NewProcedureCall(g *IDGen, p pos.Position, label string, args []Node) *ProcedureCall {
	return &ProcedureCall{base: mk(g, p), Label: label, Args: args}
}

func NewProcedureDefinition(g *IDGen, p pos.Position, label string) *ProcedureDefinition {
	return &ProcedureDefinition{base: mk(g, p), labelled: labelled{Label: label}}
}

func NewConditional(g *IDGen, p pos.Position, label string) *Conditional {
	return &Conditional{base: mk(g, p), labelled: labelled{Label: label}}
}

func NewWhileLoop(g *IDGen, p pos.Position, label string) *WhileLoop {
	return &WhileLoop{base: mk(g, p), labelled: labelled{Label: label}}
}

func NewDoWhileLoop(g *IDGen, p pos.Position, label string) *DoWhileLoop {
	return &DoWhileLoop{base: mk(g, p), labelled: labelled{Label: label}}
}

func NewRepeatLoop(g *IDGen, p pos.Position, label string) *RepeatLoop {
	return &RepeatLoop{base: mk(g, p), labelled: labelled{Label: label}}
}

func NewLabelledBlock(g *IDGen, p pos.Position, label string) *LabelledBlock {
	return &LabelledBlock{base: mk(g, p), labelled: labelled{Label: label}}
}

func NewBreak(g *IDGen, p pos.Position) *Break       { return &Break{base: mk(g, p)} }
func NewContinue(g *IDGen, p pos.Position) *Continue { return &Continue{base: mk(g, p)} }
func NewReturn(g *IDGen, p pos.Position) *Return     { return &Return{base: mk(g, p)} }
