// Package rs274 parses the flat RS-274 dialect: a sequence of blocks, each
// an optional line number (Nnnn), a sequence of words and parameter
// assignments, and an optional trailing checksum (*nnn), terminated by a
// newline. There is no nesting and no control flow; every block becomes one
// ast.Command in program order.
//
// Grounded on the teacher's parser.go `parse` loop (the N/within-line/
// checksum bookkeeping, and the ';'/'(' comment handling), reworked to
// build an ast.Program instead of evaluating a single command and
// returning.
package rs274

import (
	"io"

	"github.com/dfinlay/gcodelib/ast"
	"github.com/dfinlay/gcodelib/errs"
	"github.com/dfinlay/gcodelib/parser"
	"github.com/dfinlay/gcodelib/pos"
	"github.com/dfinlay/gcodelib/scan"
	"github.com/dfinlay/gcodelib/token"
)

// CommentHandler receives line-end (';') and inline ('(...)') comment text
// as it is scanned, in source order. Either field may be nil.
type CommentHandler struct {
	LineEnd func(text string)
	Inline  func(text string)
}

// Parser parses one RS-274 source stream into an ast.Program.
type Parser struct {
	*parser.Base
	Comments CommentHandler

	withinLine  bool
	sawChecksum bool
	virtualLine int64
}

func New(r io.Reader, tag string) *Parser {
	s := scan.New(r, tag, scan.ExpressionKeywords)
	return &Parser{Base: parser.NewBase(s)}
}

// Parse reads the entire stream and returns the resulting program. RS-274
// has no subroutines, so Program.Procedures is always empty.
func (p *Parser) Parse() (*ast.Program, error) {
	prog := ast.NewProgram(p.IDs, pos.Start(""))

	for {
		if p.AtEnd() {
			return prog, nil
		}
		if p.AtNewLine() {
			if _, err := p.Advance(); err != nil {
				return nil, err
			}
			p.withinLine = false
			p.sawChecksum = false
			continue
		}

		cmd, err := p.parseBlockBody(prog)
		if err != nil {
			return nil, err
		}
		if cmd != nil && (len(cmd.Words) > 0 || len(cmd.Assignments) > 0) {
			prog.Body = append(prog.Body, cmd)
		}
	}
}

// parseBlockBody consumes tokens until a newline or end-of-stream,
// accumulating words and assignments into one ast.Command.
func (p *Parser) parseBlockBody(prog *ast.Program) (*ast.Command, error) {
	t, err := p.Peek()
	if err != nil {
		return nil, err
	}
	cmd := ast.NewCommand(p.IDs, t.Pos)

	for {
		t, err := p.Peek()
		if err != nil {
			return nil, err
		}

		switch {
		case t.Kind == token.End || t.Kind == token.NewLine:
			return cmd, nil

		case t.Kind == token.CommentTok:
			if _, err := p.Advance(); err != nil {
				return nil, err
			}
			if t.Braced {
				if p.Comments.Inline != nil {
					p.Comments.Inline(t.Text)
				}
			} else if p.Comments.LineEnd != nil {
				p.Comments.LineEnd(t.Text)
			}

		case t.Kind == token.OperatorTok && t.Operator == '*':
			if _, err := p.Advance(); err != nil {
				return nil, err
			}
			if _, err := p.parseUnsignedInt(); err != nil {
				return nil, err
			}
			p.sawChecksum = true
			p.withinLine = true

		case t.Kind == token.OperatorTok && t.Operator == 'N':
			if err := p.parseLineNumber(); err != nil {
				return nil, err
			}

		case t.Kind == token.OperatorTok && t.Operator == '#':
			if p.sawChecksum {
				return nil, &errs.ParseError{Pos: t.Pos, Message: "checksum (*nnn) must be at end of line"}
			}
			assign, err := p.ParseAssignment()
			if err != nil {
				return nil, err
			}
			cmd.AddAssignment(assign)
			p.withinLine = true

		case t.Kind == token.OperatorTok && t.Operator >= 'A' && t.Operator <= 'Z':
			if p.sawChecksum {
				return nil, &errs.ParseError{Pos: t.Pos, Message: "checksum (*nnn) must be at end of line"}
			}
			w, err := p.ParseWord()
			if err != nil {
				return nil, err
			}
			cmd.AddWord(w)
			p.withinLine = true

		default:
			return nil, &errs.ParseError{Pos: t.Pos, Message: "unexpected token " + t.String()}
		}
	}
}

// parseLineNumber consumes `N<integer>` and validates it increases
// monotonically and appears before any other word on the block, per the
// teacher's withinLine/virtualLine bookkeeping.
func (p *Parser) parseLineNumber() error {
	nt, err := p.Advance() // consume 'N'
	if err != nil {
		return err
	}
	if p.withinLine {
		return &errs.ParseError{Pos: nt.Pos, Message: "N code must be first on line"}
	}
	num, err := p.parseUnsignedInt()
	if err != nil {
		return err
	}
	if num <= p.virtualLine {
		return &errs.ParseError{Pos: nt.Pos, Message: "line number out of order"}
	}
	p.virtualLine = num
	p.withinLine = true
	return nil
}

func (p *Parser) parseUnsignedInt() (int64, error) {
	t, err := p.Advance()
	if err != nil {
		return 0, err
	}
	if t.Kind != token.IntegerLiteral {
		return 0, &errs.ParseError{Pos: t.Pos, Message: "expected an integer, got " + t.String()}
	}
	return t.Int, nil
}
