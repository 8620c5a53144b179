// Package token defines the lexical token model shared by both scanner
// dialects.
package token

import (
	"fmt"

	"github.com/dfinlay/gcodelib/pos"
)

// Kind discriminates the Token variant. Tokens are a tagged union realized
// as a struct with a Kind field and per-kind payload fields, rather than an
// interface with per-kind implementations: the set is closed and small, and
// a discriminant is cheaper to switch on and to serialize.
type Kind int

const (
	Invalid Kind = iota
	IntegerLiteral
	FloatLiteral
	Literal // identifier or bare word, IsIdentifier distinguishes
	KeywordTok
	OperatorTok
	CommentTok
	NewLine
	End
)

// Keyword enumerates the LinuxCNC control-flow and logic/comparison
// keywords. RS-274 produces only the logic/comparison ones
// (scan.ExpressionKeywords).
type Keyword int

const (
	NoKeyword Keyword = iota
	KwSub
	KwEndsub
	KwReturn
	KwCall
	KwIf
	KwElseif
	KwElse
	KwEndif
	KwWhile
	KwEndwhile
	KwDo
	KwRepeat
	KwEndrepeat
	KwBreak
	KwContinue
	KwEq
	KwNe
	KwGe
	KwGt
	KwLe
	KwLt
	KwAnd
	KwOr
	KwXor
	KwMod
)

// Keywords maps the upper-cased textual keyword to its Keyword value. It is
// a process-wide constant, initialised once and never mutated afterwards.
var Keywords = map[string]Keyword{
	"SUB":       KwSub,
	"ENDSUB":    KwEndsub,
	"RETURN":    KwReturn,
	"CALL":      KwCall,
	"IF":        KwIf,
	"ELSEIF":    KwElseif,
	"ELSE":      KwElse,
	"ENDIF":     KwEndif,
	"WHILE":     KwWhile,
	"ENDWHILE":  KwEndwhile,
	"DO":        KwDo,
	"REPEAT":    KwRepeat,
	"ENDREPEAT": KwEndrepeat,
	"BREAK":     KwBreak,
	"CONTINUE":  KwContinue,
	"EQ":        KwEq,
	"NE":        KwNe,
	"GE":        KwGe,
	"GT":        KwGt,
	"LE":        KwLe,
	"LT":        KwLt,
	"AND":       KwAnd,
	"OR":        KwOr,
	"XOR":       KwXor,
	"MOD":       KwMod,
}

// Token is the tagged variant produced by the scanner. It always carries the
// source position at which it started.
type Token struct {
	Kind Kind
	Pos  pos.Position

	Int          int64
	Float        float64
	Text         string
	IsIdentifier bool
	Keyword      Keyword
	Operator     byte
	Braced       bool // true for (...) comments, false for ;... comments
}

func (t Token) String() string {
	switch t.Kind {
	case IntegerLiteral:
		return fmt.Sprintf("%d", t.Int)
	case FloatLiteral:
		return fmt.Sprintf("%g", t.Float)
	case Literal:
		return t.Text
	case KeywordTok:
		return fmt.Sprintf("keyword(%d)", t.Keyword)
	case OperatorTok:
		return string(t.Operator)
	case CommentTok:
		return fmt.Sprintf("comment(%q)", t.Text)
	case NewLine:
		return "\\n"
	case End:
		return "<end>"
	default:
		return "<invalid>"
	}
}
