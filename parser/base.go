// Package parser implements the expression grammar spec.md §4.2 shares
// between both dialects, as an embeddable Base a dialect-specific parser
// composes with its own statement/block grammar. The precedence climb
// below plays the same role as the teacher's parseSubExpr/adjustPrecedence
// pair in parser.go, but builds a tree directly in precedence order
// instead of evaluating in place and patching precedence afterward — the
// teacher's approach was forced by evaluating expressions during the scan;
// since this parser produces an ast.Node instead, ordinary precedence
// climbing needs no post-pass.
package parser

import (
	"fmt"
	"io"
	"strings"

	"github.com/dfinlay/gcodelib/ast"
	"github.com/dfinlay/gcodelib/errs"
	"github.com/dfinlay/gcodelib/pos"
	"github.com/dfinlay/gcodelib/runtime"
	"github.com/dfinlay/gcodelib/scan"
	"github.com/dfinlay/gcodelib/token"
)

// Base holds the token stream and node-id generator shared by every
// dialect parser. Dialect parsers embed *Base and add their own grammar on
// top.
type Base struct {
	Scanner *scan.Scanner
	IDs     *ast.IDGen

	cur     token.Token
	primed  bool
}

func NewBase(s *scan.Scanner) *Base {
	return &Base{Scanner: s, IDs: &ast.IDGen{}}
}

// Peek returns the current lookahead token, priming it from the scanner on
// first use.
func (b *Base) Peek() (token.Token, error) {
	if !b.primed {
		t, err := b.Scanner.Next()
		if err != nil {
			return token.Token{}, err
		}
		b.cur = t
		b.primed = true
	}
	return b.cur, nil
}

// Advance consumes the current lookahead token and primes the next one.
func (b *Base) Advance() (token.Token, error) {
	t, err := b.Peek()
	if err != nil {
		return token.Token{}, err
	}
	b.primed = false
	return t, nil
}

func (b *Base) errorf(p pos.Position, format string, args ...interface{}) error {
	return &errs.ParseError{Pos: p, Message: fmt.Sprintf(format, args...)}
}

// expectOperator consumes the current token if it is an operator matching
// op, otherwise returns a ParseError.
func (b *Base) expectOperator(op byte) error {
	t, err := b.Peek()
	if err != nil {
		return err
	}
	if t.Kind != token.OperatorTok || t.Operator != op {
		return b.errorf(t.Pos, "expected %q, got %s", op, t)
	}
	_, err = b.Advance()
	return err
}

func (b *Base) atOperator(op byte) bool {
	t, err := b.Peek()
	if err != nil {
		return false
	}
	return t.Kind == token.OperatorTok && t.Operator == op
}

func (b *Base) atKeyword(kw token.Keyword) bool {
	t, err := b.Peek()
	if err != nil {
		return false
	}
	return t.Kind == token.KeywordTok && t.Keyword == kw
}

// ParseExpr parses `expr := logic`.
func (b *Base) ParseExpr() (ast.Node, error) {
	return b.parseLogic()
}

func (b *Base) parseLogic() (ast.Node, error) {
	left, err := b.parseCmp()
	if err != nil {
		return nil, err
	}
	for {
		t, err := b.Peek()
		if err != nil {
			return nil, err
		}
		var op ast.BinOp
		switch {
		case t.Kind == token.KeywordTok && t.Keyword == token.KwAnd:
			op = ast.And
		case t.Kind == token.KeywordTok && t.Keyword == token.KwOr:
			op = ast.Or
		case t.Kind == token.KeywordTok && t.Keyword == token.KwXor:
			op = ast.Xor
		default:
			return left, nil
		}
		if _, err := b.Advance(); err != nil {
			return nil, err
		}
		right, err := b.parseCmp()
		if err != nil {
			return nil, err
		}
		left = ast.NewBinaryOp(b.IDs, t.Pos, op, left, right)
	}
}

// parseCmp implements `cmp := add (cmpop add)?` — non-associative: at most
// one comparison, a chained comparison requires explicit brackets.
func (b *Base) parseCmp() (ast.Node, error) {
	left, err := b.parseAdd()
	if err != nil {
		return nil, err
	}
	t, err := b.Peek()
	if err != nil {
		return nil, err
	}
	var op ast.BinOp
	switch {
	case t.Kind == token.KeywordTok && t.Keyword == token.KwEq:
		op = ast.Eq
	case t.Kind == token.KeywordTok && t.Keyword == token.KwNe:
		op = ast.Ne
	case t.Kind == token.KeywordTok && t.Keyword == token.KwLt:
		op = ast.Lt
	case t.Kind == token.KeywordTok && t.Keyword == token.KwLe:
		op = ast.Le
	case t.Kind == token.KeywordTok && t.Keyword == token.KwGt:
		op = ast.Gt
	case t.Kind == token.KeywordTok && t.Keyword == token.KwGe:
		op = ast.Ge
	default:
		return left, nil
	}
	if _, err := b.Advance(); err != nil {
		return nil, err
	}
	right, err := b.parseAdd()
	if err != nil {
		return nil, err
	}
	return ast.NewBinaryOp(b.IDs, t.Pos, op, left, right), nil
}

func (b *Base) parseAdd() (ast.Node, error) {
	left, err := b.parseMul()
	if err != nil {
		return nil, err
	}
	for {
		t, err := b.Peek()
		if err != nil {
			return nil, err
		}
		var op ast.BinOp
		switch {
		case t.Kind == token.OperatorTok && t.Operator == '+':
			op = ast.Add
		case t.Kind == token.OperatorTok && t.Operator == '-':
			op = ast.Sub
		default:
			return left, nil
		}
		if _, err := b.Advance(); err != nil {
			return nil, err
		}
		right, err := b.parseMul()
		if err != nil {
			return nil, err
		}
		left = ast.NewBinaryOp(b.IDs, t.Pos, op, left, right)
	}
}

func (b *Base) parseMul() (ast.Node, error) {
	left, err := b.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		t, err := b.Peek()
		if err != nil {
			return nil, err
		}
		var op ast.BinOp
		switch {
		case t.Kind == token.OperatorTok && t.Operator == '*':
			op = ast.Mul
		case t.Kind == token.OperatorTok && t.Operator == '/':
			op = ast.Div
		case t.Kind == token.KeywordTok && t.Keyword == token.KwMod:
			op = ast.Mod
		default:
			return left, nil
		}
		if _, err := b.Advance(); err != nil {
			return nil, err
		}
		right, err := b.parseUnary()
		if err != nil {
			return nil, err
		}
		left = ast.NewBinaryOp(b.IDs, t.Pos, op, left, right)
	}
}

// parseUnary recognises a leading '-' or the "NOT" literal; the scanner's
// operator set (scan.isOperator) never produces '!', so logical negation is
// only ever spelled "NOT".
func (b *Base) parseUnary() (ast.Node, error) {
	t, err := b.Peek()
	if err != nil {
		return nil, err
	}
	if t.Kind == token.OperatorTok && t.Operator == '-' {
		if _, err := b.Advance(); err != nil {
			return nil, err
		}
		operand, err := b.parseUnary()
		if err != nil {
			return nil, err
		}
		return ast.NewUnaryOp(b.IDs, t.Pos, ast.Negate, operand), nil
	}
	if t.Kind == token.Literal && t.Text == "NOT" {
		if _, err := b.Advance(); err != nil {
			return nil, err
		}
		operand, err := b.parseUnary()
		if err != nil {
			return nil, err
		}
		return ast.NewUnaryOp(b.IDs, t.Pos, ast.LogicalNot, operand), nil
	}
	return b.parsePrimary()
}

// parsePrimary implements `primary := number | '[' expr ']' | '#' primary
// | unary`. The trailing `| unary` alternative only matters when a sign or
// NOT directly precedes a bracketed/parameter primary without an
// intervening operator context; parseUnary above already covers that by
// calling parsePrimary only after failing to match '-'/NOT, so parsePrimary
// itself needs to handle only number, bracket, and '#'.
func (b *Base) parsePrimary() (ast.Node, error) {
	t, err := b.Peek()
	if err != nil {
		return nil, err
	}

	switch {
	case t.Kind == token.IntegerLiteral:
		if _, err := b.Advance(); err != nil {
			return nil, err
		}
		return ast.NewNumberConstant(b.IDs, t.Pos, runtime.Integer(t.Int)), nil
	case t.Kind == token.FloatLiteral:
		if _, err := b.Advance(); err != nil {
			return nil, err
		}
		return ast.NewNumberConstant(b.IDs, t.Pos, runtime.Float(t.Float)), nil
	case t.Kind == token.OperatorTok && t.Operator == '[':
		if _, err := b.Advance(); err != nil {
			return nil, err
		}
		e, err := b.ParseExpr()
		if err != nil {
			return nil, err
		}
		if err := b.expectOperator(']'); err != nil {
			return nil, err
		}
		return e, nil
	case t.Kind == token.OperatorTok && t.Operator == '#':
		return b.parseVariableReference()
	default:
		return nil, b.errorf(t.Pos, "expected a number, '[', or '#', got %s", t)
	}
}

// parseVariableReference parses `# param`, where param is a numbered
// literal, a bracketed name `<name>`, a bare identifier name, or a
// bracketed expression `[expr]` for indirect addressing. Names are returned
// in lower case.
func (b *Base) parseVariableReference() (ast.Node, error) {
	hash, err := b.Advance() // consume '#'
	if err != nil {
		return nil, err
	}
	t, err := b.Peek()
	if err != nil {
		return nil, err
	}

	switch {
	case t.Kind == token.IntegerLiteral:
		if _, err := b.Advance(); err != nil {
			return nil, err
		}
		if t.Int < 0 || t.Int > 0xFFFF {
			return nil, b.errorf(t.Pos, "numbered parameter out of range: #%d", t.Int)
		}
		return ast.NewVariableReferenceNumbered(b.IDs, hash.Pos, uint16(t.Int)), nil
	case t.Kind == token.OperatorTok && t.Operator == '[':
		idx, err := b.parsePrimary()
		if err != nil {
			return nil, err
		}
		return ast.NewVariableReferenceIndirect(b.IDs, hash.Pos, idx), nil
	case t.Kind == token.OperatorTok && t.Operator == '<':
		if _, err := b.Advance(); err != nil {
			return nil, err
		}
		nt, err := b.Advance()
		if err != nil {
			return nil, err
		}
		if nt.Kind != token.Literal {
			return nil, b.errorf(nt.Pos, "expected a parameter name, got %s", nt)
		}
		if err := b.expectOperator('>'); err != nil {
			return nil, err
		}
		return ast.NewVariableReferenceNamed(b.IDs, hash.Pos, strings.ToLower(nt.Text)), nil
	case t.Kind == token.Literal:
		if _, err := b.Advance(); err != nil {
			return nil, err
		}
		return ast.NewVariableReferenceNamed(b.IDs, hash.Pos, strings.ToLower(t.Text)), nil
	default:
		return nil, b.errorf(t.Pos, "expected a parameter name or number, got %s", t)
	}
}

// ParseAssignment parses `# param = expr` given that '#' has already been
// peeked (not consumed) by the caller.
func (b *Base) ParseAssignment() (*ast.VariableAssignment, error) {
	ref, err := b.parseVariableReference()
	if err != nil {
		return nil, err
	}
	vr := ref.(*ast.VariableReference)
	if err := b.expectOperator('='); err != nil {
		return nil, err
	}
	val, err := b.ParseExpr()
	if err != nil {
		return nil, err
	}
	switch {
	case vr.Index != nil:
		return ast.NewVariableAssignmentIndirect(b.IDs, vr.Position(), vr.Index, val), nil
	case vr.Numbered:
		return ast.NewVariableAssignmentNumbered(b.IDs, vr.Position(), vr.Num, val), nil
	default:
		return ast.NewVariableAssignmentNamed(b.IDs, vr.Position(), vr.Name, val), nil
	}
}

// ParseWord parses `Letter expr`, given that the current token is the
// operator holding the (already upper-cased) letter.
func (b *Base) ParseWord() (*ast.Word, error) {
	lt, err := b.Advance()
	if err != nil {
		return nil, err
	}
	if lt.Kind != token.OperatorTok || lt.Operator < 'A' || lt.Operator > 'Z' {
		return nil, b.errorf(lt.Pos, "expected a word letter, got %s", lt)
	}
	val, err := b.ParseExpr()
	if err != nil {
		return nil, err
	}
	return ast.NewWord(b.IDs, lt.Pos, lt.Operator, val), nil
}

// AtLetter reports whether the current token is an uppercase-letter
// operator, i.e. the start of a Word.
func (b *Base) AtLetter() bool {
	t, err := b.Peek()
	if err != nil {
		return false
	}
	return t.Kind == token.OperatorTok && t.Operator >= 'A' && t.Operator <= 'Z'
}

func (b *Base) AtHash() bool { return b.atOperator('#') }

func (b *Base) AtNewLine() bool {
	t, err := b.Peek()
	if err != nil {
		return false
	}
	return t.Kind == token.NewLine
}

func (b *Base) AtEnd() bool {
	t, err := b.Peek()
	if err != nil {
		return errIsEOF(err)
	}
	return t.Kind == token.End
}

func errIsEOF(err error) bool { return err == io.EOF }
