// Package runtime holds the dynamically typed values and the scoped
// parameter dictionaries the interpreter operates on.
package runtime

import (
	"fmt"
	"math"
)

// Kind discriminates the Value variant.
type Kind int

const (
	KindNone Kind = iota
	KindInteger
	KindFloat
	KindString
	KindLogical
)

// Value is the tagged union {None, Integer, Float, String, Logical} spec.md
// §3 defines. Arithmetic promotes Integer to Float; comparisons across
// numeric kinds use floating semantics; Logical participates in bitwise
// keyword operators (AND/OR/XOR).
type Value struct {
	Kind    Kind
	Integer int64
	Float   float64
	String  string
	Logical bool
}

func None() Value            { return Value{Kind: KindNone} }
func Integer(i int64) Value  { return Value{Kind: KindInteger, Integer: i} }
func Float(f float64) Value  { return Value{Kind: KindFloat, Float: f} }
func Str(s string) Value     { return Value{Kind: KindString, String: s} }
func Logical(b bool) Value   { return Value{Kind: KindLogical, Logical: b} }

// IsNumeric reports whether v can participate in arithmetic without an
// explicit conversion (None promotes to 0 by the caller, not here).
func (v Value) IsNumeric() bool {
	return v.Kind == KindInteger || v.Kind == KindFloat
}

// AsFloat returns v's floating value, promoting Integer, Logical (0/1), and
// None (0) as needed. Strings do not convert.
func (v Value) AsFloat() (float64, bool) {
	switch v.Kind {
	case KindInteger:
		return float64(v.Integer), true
	case KindFloat:
		return v.Float, true
	case KindLogical:
		if v.Logical {
			return 1, true
		}
		return 0, true
	case KindNone:
		return 0, true
	default:
		return 0, false
	}
}

// AsBool coerces a numeric value to logical by "!= 0", per spec.md §4.4's
// logical-binop semantics.
func (v Value) AsBool() (bool, bool) {
	f, ok := v.AsFloat()
	if !ok {
		return false, false
	}
	return f != 0, true
}

func (v Value) bothInteger(o Value) bool {
	return v.Kind == KindInteger && o.Kind == KindInteger
}

// Add implements addOp. Integer is preserved only when both operands are
// integers.
func (v Value) Add(o Value) (Value, error) {
	if v.bothInteger(o) {
		return Integer(v.Integer + o.Integer), nil
	}
	a, ok1 := v.AsFloat()
	b, ok2 := o.AsFloat()
	if !ok1 || !ok2 {
		return Value{}, fmt.Errorf("cannot add %s and %s", v.Format(), o.Format())
	}
	return Float(a + b), nil
}

func (v Value) Sub(o Value) (Value, error) {
	if v.bothInteger(o) {
		return Integer(v.Integer - o.Integer), nil
	}
	a, ok1 := v.AsFloat()
	b, ok2 := o.AsFloat()
	if !ok1 || !ok2 {
		return Value{}, fmt.Errorf("cannot subtract %s and %s", v.Format(), o.Format())
	}
	return Float(a - b), nil
}

func (v Value) Mul(o Value) (Value, error) {
	if v.bothInteger(o) {
		return Integer(v.Integer * o.Integer), nil
	}
	a, ok1 := v.AsFloat()
	b, ok2 := o.AsFloat()
	if !ok1 || !ok2 {
		return Value{}, fmt.Errorf("cannot multiply %s and %s", v.Format(), o.Format())
	}
	return Float(a * b), nil
}

// Div implements divideOp. Division always produces a float, per spec.md
// §4.4. Division by an integer zero divisor is a trap (the open question in
// spec.md §9 is resolved this way): the caller (the interpreter) is
// responsible for raising errs.DivisionByZero before calling Div when the
// divisor is exactly zero; Div itself returns the IEEE-754 result
// (±Inf/NaN) for float zero divisors that slip through, matching Go's
// native float64 semantics.
func (v Value) Div(o Value) (Value, error) {
	a, ok1 := v.AsFloat()
	b, ok2 := o.AsFloat()
	if !ok1 || !ok2 {
		return Value{}, fmt.Errorf("cannot divide %s and %s", v.Format(), o.Format())
	}
	return Float(a / b), nil
}

// Mod implements the MOD keyword operator using IEEE-remainder-like
// modulus for floats, per spec.md §4.4.
func (v Value) Mod(o Value) (Value, error) {
	if v.bothInteger(o) {
		if o.Integer == 0 {
			return Value{}, fmt.Errorf("modulus by zero")
		}
		return Integer(v.Integer % o.Integer), nil
	}
	a, ok1 := v.AsFloat()
	b, ok2 := o.AsFloat()
	if !ok1 || !ok2 {
		return Value{}, fmt.Errorf("cannot compute modulus of %s and %s", v.Format(), o.Format())
	}
	return Float(math.Mod(a, b)), nil
}

func (v Value) Neg() (Value, error) {
	switch v.Kind {
	case KindInteger:
		return Integer(-v.Integer), nil
	case KindFloat:
		return Float(-v.Float), nil
	case KindNone:
		return Integer(0), nil
	default:
		return Value{}, fmt.Errorf("cannot negate %s", v.Format())
	}
}

func (v Value) Not() (Value, error) {
	b, ok := v.AsBool()
	if !ok {
		return Value{}, fmt.Errorf("cannot logically negate %s", v.Format())
	}
	return Logical(!b), nil
}

func (v Value) cmp(o Value) (int, bool) {
	a, ok1 := v.AsFloat()
	b, ok2 := o.AsFloat()
	if ok1 && ok2 {
		switch {
		case a < b:
			return -1, true
		case a > b:
			return 1, true
		default:
			return 0, true
		}
	}
	if v.Kind == KindString && o.Kind == KindString {
		switch {
		case v.String < o.String:
			return -1, true
		case v.String > o.String:
			return 1, true
		default:
			return 0, true
		}
	}
	return 0, false
}

func (v Value) Equal(o Value) (Value, error) {
	c, ok := v.cmp(o)
	if !ok {
		return Value{}, fmt.Errorf("cannot compare %s and %s", v.Format(), o.Format())
	}
	return Logical(c == 0), nil
}

func (v Value) NotEqual(o Value) (Value, error) {
	r, err := v.Equal(o)
	if err != nil {
		return Value{}, err
	}
	return Logical(!r.Logical), nil
}

func (v Value) Less(o Value) (Value, error) {
	c, ok := v.cmp(o)
	if !ok {
		return Value{}, fmt.Errorf("cannot compare %s and %s", v.Format(), o.Format())
	}
	return Logical(c < 0), nil
}

func (v Value) LessEqual(o Value) (Value, error) {
	c, ok := v.cmp(o)
	if !ok {
		return Value{}, fmt.Errorf("cannot compare %s and %s", v.Format(), o.Format())
	}
	return Logical(c <= 0), nil
}

func (v Value) Greater(o Value) (Value, error) {
	c, ok := v.cmp(o)
	if !ok {
		return Value{}, fmt.Errorf("cannot compare %s and %s", v.Format(), o.Format())
	}
	return Logical(c > 0), nil
}

func (v Value) GreaterEqual(o Value) (Value, error) {
	c, ok := v.cmp(o)
	if !ok {
		return Value{}, fmt.Errorf("cannot compare %s and %s", v.Format(), o.Format())
	}
	return Logical(c >= 0), nil
}

func (v Value) And(o Value) (Value, error) {
	a, ok1 := v.AsBool()
	b, ok2 := o.AsBool()
	if !ok1 || !ok2 {
		return Value{}, fmt.Errorf("cannot AND %s and %s", v.Format(), o.Format())
	}
	return Logical(a && b), nil
}

func (v Value) Or(o Value) (Value, error) {
	a, ok1 := v.AsBool()
	b, ok2 := o.AsBool()
	if !ok1 || !ok2 {
		return Value{}, fmt.Errorf("cannot OR %s and %s", v.Format(), o.Format())
	}
	return Logical(a || b), nil
}

func (v Value) Xor(o Value) (Value, error) {
	a, ok1 := v.AsBool()
	b, ok2 := o.AsBool()
	if !ok1 || !ok2 {
		return Value{}, fmt.Errorf("cannot XOR %s and %s", v.Format(), o.Format())
	}
	return Logical(a != b), nil
}

// Format renders v for diagnostics; Value cannot implement fmt.Stringer
// because it has a field named String.
func (v Value) Format() string {
	switch v.Kind {
	case KindNone:
		return "none"
	case KindInteger:
		return fmt.Sprintf("%d", v.Integer)
	case KindFloat:
		return fmt.Sprintf("%g", v.Float)
	case KindString:
		return v.String
	case KindLogical:
		if v.Logical {
			return "true"
		}
		return "false"
	default:
		return "?"
	}
}
