// Package value implements ScalarValue, the tagged scalar that flows through
// the operand stack of the bytecode interpreter: a boolean, a floating-point
// number, or text, with the cross-type coercion and comparison laws the
// reporter library relies on.
package value

import (
	"math"
	"strconv"
	"strings"
)

// Kind identifies which variant of a Value is populated.
type Kind uint8

const (
	KindBool Kind = iota
	KindNum
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindNum:
		return "num"
	case KindText:
		return "text"
	default:
		return "invalid"
	}
}

// Value is the scalar manipulated by the interpreter. The zero Value is the
// boolean false. Values are immutable by convention: pushing a Value onto a
// stack clones it (cheap, since Value is a plain struct with no pointers to
// mutable state).
type Value struct {
	kind Kind
	b    bool
	n    float64
	s    string
}

// Bool constructs a boolean Value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Num constructs a numeric Value. n may be NaN; NaN is preserved exactly.
func Num(n float64) Value { return Value{kind: KindNum, n: n} }

// Text constructs a text Value.
func Text(s string) Value { return Value{kind: KindText, s: s} }

// Kind reports which variant this Value holds.
func (v Value) Kind() Kind { return v.kind }

func (v Value) String() string {
	switch v.kind {
	case KindBool:
		if v.b {
			return "true"
		}
		return "false"
	case KindNum:
		return strconv.FormatFloat(v.n, 'g', -1, 64)
	case KindText:
		return v.s
	default:
		return ""
	}
}

// ToBool applies the coercion-to-Bool law: Bool maps to itself; Num is
// falsy only for +0 and -0 (NaN is truthy); Text is falsy iff it is exactly
// one of "", "0", "-0", "false".
func (v Value) ToBool() bool {
	switch v.kind {
	case KindBool:
		return v.b
	case KindNum:
		return v.n != 0 // covers both +0 and -0 per IEEE-754 equality
	case KindText:
		switch v.s {
		case "", "0", "-0", "false":
			return false
		default:
			return true
		}
	default:
		return false
	}
}

// ToNum applies the coercion-to-Num law: Bool maps to 1.0/0.0; Num maps to
// itself; Text is parsed as a float64, with unparsable or all-whitespace
// text mapping to 0.0.
func (v Value) ToNum() float64 {
	switch v.kind {
	case KindBool:
		if v.b {
			return 1
		}
		return 0
	case KindNum:
		return v.n
	case KindText:
		if isWhitespaceOnly(v.s) {
			return 0
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(v.s), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// ToText applies the coercion-to-Text law: Bool maps to "true"/"false"; Num
// maps to its canonical decimal representation; Text maps to itself.
func (v Value) ToText() string { return v.String() }

// isWhitespaceOnly reports whether s is empty or composed entirely of
// Unicode whitespace, per the resolved open question in SPEC_FULL.md
// (EXPANSION G): full Unicode whitespace detection, not a byte-wise ASCII
// check.
func isWhitespaceOnly(s string) bool {
	return strings.TrimSpace(s) == ""
}

// numForCompare implements the comparison-specific Num coercion: convert to
// Num, but force NaN when the operand is whitespace-only Text representing
// zero, so that the comparison falls back to lexicographic Text comparison.
func numForCompare(v Value) float64 {
	if v.kind == KindText && isWhitespaceOnly(v.s) {
		return math.NaN()
	}
	return v.ToNum()
}

// Compare implements the shared comparison law of §4.2: convert both sides
// to Num (via numForCompare); if either side is NaN, fall back to
// lexicographic comparison of both sides' Text coercion; otherwise compare
// numerically. It returns -1, 0 or +1 analogous to a three-way Cmp.
func Compare(x, y Value) int {
	nx, ny := numForCompare(x), numForCompare(y)
	if math.IsNaN(nx) || math.IsNaN(ny) {
		sx, sy := x.ToText(), y.ToText()
		switch {
		case sx < sy:
			return -1
		case sx > sy:
			return 1
		default:
			return 0
		}
	}
	switch {
	case nx < ny:
		return -1
	case nx > ny:
		return 1
	default:
		return 0
	}
}

// Equals reports whether x and y compare equal under the shared comparison
// law. Equals is symmetric: Equals(x, y) == Equals(y, x).
func Equals(x, y Value) bool { return Compare(x, y) == 0 }

// LessThan reports whether x orders strictly before y.
func LessThan(x, y Value) bool { return Compare(x, y) < 0 }

// GreaterThan reports whether x orders strictly after y.
func GreaterThan(x, y Value) bool { return Compare(x, y) > 0 }

// Add coerces both operands to Num and returns their sum as a Num Value.
func Add(x, y Value) Value { return Num(x.ToNum() + y.ToNum()) }

// Subtract coerces both operands to Num and returns their difference as a
// Num Value.
func Subtract(x, y Value) Value { return Num(x.ToNum() - y.ToNum()) }
