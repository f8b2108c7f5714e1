// Package logic4 implements IEEE-1164-style 4-valued logic: a single bit
// over {0, 1, Z, U}.
package logic4

import "fmt"

// Value is a single 4-valued logic bit.
type Value uint8

const (
	Zero    Value = iota // 0
	One                  // 1
	HighZ                // Z, high impedance
	Unknown              // U, undefined / conflict
)

// FromBool converts a boolean into a two-valued Value (never Z or U).
func FromBool(b bool) Value {
	if b {
		return One
	}
	return Zero
}

// FromChar parses one of '0', '1', 'Z', 'z', 'U', 'u'.
func FromChar(c byte) (Value, error) {
	switch c {
	case '0':
		return Zero, nil
	case '1':
		return One, nil
	case 'Z', 'z':
		return HighZ, nil
	case 'U', 'u':
		return Unknown, nil
	default:
		return Unknown, fmt.Errorf("logic4: invalid character %q", c)
	}
}

// Bool reports whether the value is logical true. Only One is true; Zero,
// HighZ, and Unknown are all false.
func (v Value) Bool() bool {
	return v == One
}

// String renders the value as its canonical single character.
func (v Value) String() string {
	switch v {
	case Zero:
		return "0"
	case One:
		return "1"
	case HighZ:
		return "Z"
	default:
		return "U"
	}
}

// twoValued reports whether v is Zero or One.
func (v Value) twoValued() bool {
	return v == Zero || v == One
}

// Defined reports whether v is a definite 0 or 1, as opposed to HighZ or
// Unknown. Buses use this to decide whether they can be read as an integer.
func (v Value) Defined() bool {
	return v.twoValued()
}

// andTable and orTable are the standard 2-valued truth tables on (0,1)x(0,1),
// following the precomputed-lookup-table idiom the rest of this codebase
// uses for small fixed-domain functions.
var andTable = [2][2]Value{
	{Zero, Zero},
	{Zero, One},
}

var orTable = [2][2]Value{
	{Zero, One},
	{One, One},
}

var xorTable = [2][2]Value{
	{Zero, One},
	{One, Zero},
}

func (v Value) bit() int {
	if v == One {
		return 1
	}
	return 0
}

// And returns a & b. Any operand in {Z, U} yields U.
func (v Value) And(o Value) Value {
	if !v.twoValued() || !o.twoValued() {
		return Unknown
	}
	return andTable[v.bit()][o.bit()]
}

// Or returns a | b. Any operand in {Z, U} yields U.
func (v Value) Or(o Value) Value {
	if !v.twoValued() || !o.twoValued() {
		return Unknown
	}
	return orTable[v.bit()][o.bit()]
}

// Xor returns a ^ b. Any operand in {Z, U} yields U.
func (v Value) Xor(o Value) Value {
	if !v.twoValued() || !o.twoValued() {
		return Unknown
	}
	return xorTable[v.bit()][o.bit()]
}

// Not returns the negation of v. Z and U both negate to U.
func (v Value) Not() Value {
	switch v {
	case Zero:
		return One
	case One:
		return Zero
	default:
		return Unknown
	}
}

// Equal is a two-valued comparison: true iff the two values are in the same
// state.
func (v Value) Equal(o Value) bool {
	return v == o
}

// Resolve reduces a multi-driver set of values to the single value a signal
// should commit, per spec.md §4.1: ignore every Z; if exactly one non-Z
// value remains, take it; if the remaining values conflict, commit Unknown
// (short circuit). An empty set, or a set of only Z drivers, resolves to
// HighZ — an undriven net floats.
//
// This satisfies resolve({x}) == x and resolve(S ∪ {Z}) == resolve(S).
func Resolve(values []Value) Value {
	result := HighZ
	seen := false
	for _, v := range values {
		if v == HighZ {
			continue
		}
		if !seen {
			result = v
			seen = true
			continue
		}
		if result != v {
			return Unknown
		}
	}
	return result
}
