// Package scan implements the lexical scanner shared by both dialects.
// Keyword tables differ per dialect (see ExpressionKeywords and
// LinuxCNCKeywords below); everything
// else — whitespace skipping, number/identifier/operator/comment matching,
// newline and position tracking — is common code, grounded on
// original_source/source/parser/linuxcnc/Scanner.cpp's regex priority
// order (float, integer, literal, operator, comment, braced comment) and
// on the teacher's hand-rolled readByte/unreadByte/skipWhitespace idiom in
// parser.go (this codebase scans bytes directly instead of running regexes
// per token, the way the teacher does, rather than the C++ original).
package scan

import (
	"bufio"
	"io"

	"github.com/dfinlay/gcodelib/errs"
	"github.com/dfinlay/gcodelib/pos"
	"github.com/dfinlay/gcodelib/token"
)

// KeywordSet is a process-wide constant keyword table, immutable after
// initialisation, per spec.md §9's "Global state" note.
type KeywordSet map[string]token.Keyword

// ExpressionKeywords are recognised by both dialects: the textual
// comparison and logic operators.
var ExpressionKeywords = KeywordSet{
	"EQ":  token.KwEq,
	"NE":  token.KwNe,
	"GE":  token.KwGe,
	"GT":  token.KwGt,
	"LE":  token.KwLe,
	"LT":  token.KwLt,
	"AND": token.KwAnd,
	"OR":  token.KwOr,
	"XOR": token.KwXor,
	"MOD": token.KwMod,
}

// LinuxCNCKeywords adds the structured control-flow keywords to
// ExpressionKeywords, per spec.md §4.1.
var LinuxCNCKeywords = mergeKeywords(ExpressionKeywords, KeywordSet{
	"SUB":       token.KwSub,
	"ENDSUB":    token.KwEndsub,
	"RETURN":    token.KwReturn,
	"CALL":      token.KwCall,
	"IF":        token.KwIf,
	"ELSEIF":    token.KwElseif,
	"ELSE":      token.KwElse,
	"ENDIF":     token.KwEndif,
	"WHILE":     token.KwWhile,
	"ENDWHILE":  token.KwEndwhile,
	"DO":        token.KwDo,
	"REPEAT":    token.KwRepeat,
	"ENDREPEAT": token.KwEndrepeat,
	"BREAK":     token.KwBreak,
	"CONTINUE":  token.KwContinue,
})

func mergeKeywords(sets ...KeywordSet) KeywordSet {
	out := KeywordSet{}
	for _, s := range sets {
		for k, v := range s {
			out[k] = v
		}
	}
	return out
}

// Scanner consumes a byte stream and produces Tokens with positions. It is
// shared between dialects; only the Keywords table differs.
type Scanner struct {
	r        *bufio.Reader
	Keywords KeywordSet
	tag      string

	pos  pos.Position
	done bool
}

func New(r io.Reader, tag string, keywords KeywordSet) *Scanner {
	return &Scanner{
		r:        bufio.NewReader(r),
		Keywords: keywords,
		tag:      tag,
		pos:      pos.Start(tag),
	}
}

func (s *Scanner) Finished() bool { return s.done }

func (s *Scanner) readByte() (byte, error) {
	b, err := s.r.ReadByte()
	if err != nil {
		return 0, err
	}
	return b, nil
}

func (s *Scanner) unreadByte() {
	_ = s.r.UnreadByte()
}

func (s *Scanner) advance(b byte) {
	s.pos = s.pos.Advance(b)
}

func (s *Scanner) newline() {
	s.pos = s.pos.NextLine()
}

func isDigit(b byte) bool     { return b >= '0' && b <= '9' }
func isAlpha(b byte) bool     { return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || b == '_' }
func isAlphaNum(b byte) bool  { return isAlpha(b) || isDigit(b) }
func isOperator(b byte) bool {
	switch b {
	case '+', '-', '*', '/', '%', '[', ']', '#', '=', '<', '>':
		return true
	default:
		return false
	}
}
func upper(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - 'a' + 'A'
	}
	return b
}

// Next returns the next token, or io.EOF once the stream is exhausted.
func (s *Scanner) Next() (token.Token, error) {
	if s.done {
		return token.Token{}, io.EOF
	}

	for {
		b, err := s.readByte()
		if err == io.EOF {
			s.done = true
			return token.Token{Kind: token.End, Pos: s.pos}, nil
		}
		if err != nil {
			return token.Token{}, err
		}

		if b == ' ' || b == '\t' || b == '\r' {
			s.advance(b)
			continue
		}
		if b == '\n' {
			start := s.pos
			s.advance(b)
			s.newline()
			return token.Token{Kind: token.NewLine, Pos: start}, nil
		}

		start := s.pos
		switch {
		case isDigit(b):
			return s.scanNumber(b, start)
		case isAlpha(b) && isAlphaLiteralStart(b):
			return s.scanLiteral(b, start)
		case b == ';':
			return s.scanLineComment(start)
		case b == '(':
			return s.scanBracedComment(start)
		case isOperator(b):
			s.advance(b)
			return token.Token{Kind: token.OperatorTok, Operator: upper(b), Pos: start}, nil
		default:
			s.advance(b)
			return token.Token{}, &errs.LexicalError{Pos: start, Char: b}
		}
	}
}

// isAlphaLiteralStart accepts any alphabetic start byte. The LinuxCNC
// literal rule `[a-zA-Z_]{2,}[\w_]*` (a single letter is a Word letter, an
// operator, not an identifier) is enforced by scanLiteral, not here.
func isAlphaLiteralStart(b byte) bool { return isAlpha(b) }

func (s *Scanner) scanNumber(first byte, start pos.Position) (token.Token, error) {
	digits := []byte{first}
	s.advance(first)
	for {
		b, err := s.readByte()
		if err == io.EOF {
			break
		}
		if err != nil {
			return token.Token{}, err
		}
		if isDigit(b) {
			digits = append(digits, b)
			s.advance(b)
			continue
		}
		if b == '.' {
			frac := []byte{'.'}
			s.advance(b)
			for {
				fb, ferr := s.readByte()
				if ferr == io.EOF {
					break
				}
				if ferr != nil {
					return token.Token{}, ferr
				}
				if isDigit(fb) {
					frac = append(frac, fb)
					s.advance(fb)
					continue
				}
				s.unreadByte()
				break
			}
			text := string(digits) + string(frac)
			f := parseFloat(text)
			return token.Token{Kind: token.FloatLiteral, Float: f, Pos: start}, nil
		}
		s.unreadByte()
		break
	}
	return token.Token{Kind: token.IntegerLiteral, Int: parseInt(digits), Pos: start}, nil
}

func parseInt(digits []byte) int64 {
	var n int64
	for _, d := range digits {
		n = n*10 + int64(d-'0')
	}
	return n
}

func parseFloat(text string) float64 {
	var whole int64
	i := 0
	for ; i < len(text) && text[i] != '.'; i++ {
		whole = whole*10 + int64(text[i]-'0')
	}
	f := float64(whole)
	if i < len(text) && text[i] == '.' {
		i++
		div := 1.0
		for ; i < len(text); i++ {
			div *= 10
			f += float64(text[i]-'0') / div
		}
	}
	return f
}

// scanLiteral scans an identifier/keyword: `[a-zA-Z_]{2,}[\w_]*`. When the
// letter is not followed by a second alphabetic character, only that one
// character is gathered and scanLiteral returns it as an operator token (a
// Word letter) instead of a literal.
func (s *Scanner) scanLiteral(first byte, start pos.Position) (token.Token, error) {
	text := []byte{upper(first)}
	s.advance(first)
	for {
		b, err := s.readByte()
		if err == io.EOF {
			break
		}
		if err != nil {
			return token.Token{}, err
		}
		// The second character must also be alphabetic to commit to an
		// identifier (a Word letter followed by a digit, e.g. "X10", is
		// an operator plus a number, not a literal); once two alphabetic
		// characters have been seen, digits may follow.
		var cont bool
		if len(text) < 2 {
			cont = isAlpha(b)
		} else {
			cont = isAlphaNum(b)
		}
		if cont {
			text = append(text, upper(b))
			s.advance(b)
			continue
		}
		s.unreadByte()
		break
	}

	if len(text) < 2 {
		// A lone letter is an operator (a Word letter), not a literal.
		return token.Token{Kind: token.OperatorTok, Operator: text[0], Pos: start}, nil
	}

	word := string(text)
	if kw, ok := s.Keywords[word]; ok {
		return token.Token{Kind: token.KeywordTok, Keyword: kw, Pos: start}, nil
	}
	return token.Token{Kind: token.Literal, Text: word, IsIdentifier: true, Pos: start}, nil
}

func (s *Scanner) scanLineComment(start pos.Position) (token.Token, error) {
	s.advance(';')
	var text []byte
	for {
		b, err := s.readByte()
		if err == io.EOF {
			break
		}
		if err != nil {
			return token.Token{}, err
		}
		if b == '\n' {
			s.unreadByte()
			break
		}
		text = append(text, b)
		s.advance(b)
	}
	return token.Token{Kind: token.CommentTok, Text: string(text), Braced: false, Pos: start}, nil
}

func (s *Scanner) scanBracedComment(start pos.Position) (token.Token, error) {
	s.advance('(')
	var text []byte
	for {
		b, err := s.readByte()
		if err == io.EOF {
			return token.Token{}, &errs.LexicalError{Pos: s.pos, Char: '('}
		}
		if b == '\n' {
			return token.Token{}, &errs.LexicalError{Pos: s.pos, Char: '\n'}
		}
		if b == ')' {
			s.advance(b)
			break
		}
		text = append(text, b)
		s.advance(b)
	}
	return token.Token{Kind: token.CommentTok, Text: string(text), Braced: true, Pos: start}, nil
}
