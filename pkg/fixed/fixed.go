// Package fixed implements arbitrary-width two's-complement fixed-point
// arithmetic: N = M + F bits, M integer bits and F fractional bits, signed
// or unsigned. Values are stored as a little-endian slice of 32-bit words,
// the same backing representation the original C++ implementation
// (NilsBrause/libhdlsim's fixed.hpp) uses, with the top word sign-extended
// (or zero-extended, when unsigned) above bit N-1.
//
// Go has no const generics over bit width, so the template parameters
// <S, M, F> of the original become ordinary struct fields checked at
// construction and operation time instead of compile-time types.
package fixed

import (
	"fmt"
	"math"
	"math/big"
	"sync/atomic"
)

// symmetricMode is the global "symmetric" configuration flag from spec.md
// §4.2: when enabled, negating or downsizing the most-negative representable
// value substitutes the next value up instead of overflowing or leaving the
// value unrepresentable.
var symmetricMode atomic.Bool

// SetSymmetric turns symmetric rounding mode on or off, process-wide.
func SetSymmetric(on bool) { symmetricMode.Store(on) }

// Symmetric reports whether symmetric rounding mode is enabled.
func Symmetric() bool { return symmetricMode.Load() }

// Fixed is a two's-complement fixed-point value with M integer bits and F
// fractional bits (N = M+F total), signed or unsigned.
type Fixed struct {
	signed bool
	m, f   int
	words  []uint32
}

// Signed, M, F, N report the shape of the value.
func (x Fixed) Signed() bool { return x.signed }
func (x Fixed) M() int       { return x.m }
func (x Fixed) F() int       { return x.f }
func (x Fixed) N() int       { return x.m + x.f }

// Words returns a copy of the little-endian word storage.
func (x Fixed) Words() []uint32 {
	out := make([]uint32, len(x.words))
	copy(out, x.words)
	return out
}

func nwords(n int) int {
	if n <= 0 {
		return 0
	}
	return (n + 31) / 32
}

// normalize sign- (or zero-, if unsigned) extends words above bit n-1 up to
// the word boundary, so every word beyond the represented width holds a
// consistent extension of the sign bit.
func normalize(words []uint32, n int, signed bool) {
	if len(words) == 0 || n <= 0 {
		return
	}
	topIdx := (n - 1) / 32
	bitInWord := uint((n - 1) % 32)
	extendOnes := signed && (words[topIdx]>>bitInWord)&1 == 1
	if extendOnes {
		words[topIdx] |= ^uint32(0) << (bitInWord + 1)
		for i := topIdx + 1; i < len(words); i++ {
			words[i] = ^uint32(0)
		}
	} else {
		words[topIdx] &^= ^uint32(0) << (bitInWord + 1)
		for i := topIdx + 1; i < len(words); i++ {
			words[i] = 0
		}
	}
}

func wordsToBigInt(words []uint32) *big.Int {
	v := new(big.Int)
	for i := len(words) - 1; i >= 0; i-- {
		v.Lsh(v, 32)
		v.Or(v, new(big.Int).SetUint64(uint64(words[i])))
	}
	return v
}

func modPow2(n int) *big.Int {
	return new(big.Int).Lsh(big.NewInt(1), uint(n))
}

// packWords encodes value (any integer) into an n-bit two's-complement word
// array, reducing it modulo 2^n first.
func packWords(n int, signed bool, value *big.Int) []uint32 {
	mod := modPow2(n)
	v := new(big.Int).Mod(value, mod)
	nw := nwords(n)
	words := make([]uint32, nw)
	tmp := new(big.Int).Set(v)
	mask32 := big.NewInt(0xFFFFFFFF)
	for i := 0; i < nw; i++ {
		w := new(big.Int).And(tmp, mask32)
		words[i] = uint32(w.Uint64())
		tmp.Rsh(tmp, 32)
	}
	normalize(words, n, signed)
	return words
}

// unpackBigInt interprets the n represented bits of words as a signed or
// unsigned integer.
func unpackBigInt(words []uint32, n int, signed bool) *big.Int {
	v := new(big.Int).Mod(wordsToBigInt(words), modPow2(n))
	if signed {
		half := new(big.Int).Lsh(big.NewInt(1), uint(n-1))
		if v.Cmp(half) >= 0 {
			v.Sub(v, modPow2(n))
		}
	}
	return v
}

// rawPatternWords returns a copy of words with every bit above position n-1
// cleared, i.e. the unsigned n-bit bit pattern regardless of sign.
func rawPatternWords(words []uint32, n int) []uint32 {
	out := make([]uint32, len(words))
	copy(out, words)
	normalize(out, n, false)
	return out
}

func rangeFor(signed bool, n int) (min, max *big.Int) {
	if signed {
		max = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), uint(n-1)), big.NewInt(1))
		min = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), uint(n-1)))
		return min, max
	}
	min = big.NewInt(0)
	max = new(big.Int).Sub(modPow2(n), big.NewInt(1))
	return min, max
}

func shapeErr(format string, args ...any) error {
	return fmt.Errorf("fixed: "+format, args...)
}

func sameShape(a, b Fixed) bool {
	return a.signed == b.signed && a.m == b.m && a.f == b.f
}

// New returns the zero value of the given shape.
func New(signed bool, m, f int) Fixed {
	n := m + f
	return Fixed{signed: signed, m: m, f: f, words: make([]uint32, nwords(n))}
}

// FromRawInt constructs a Fixed whose underlying two's-complement integer is
// exactly raw (i.e. the real value raw * 2^-F). Returns an error if raw is
// not representable in M.F bits — the value-domain error of spec.md §7.
func FromRawInt(signed bool, m, f int, raw int64) (Fixed, error) {
	n := m + f
	if n <= 0 {
		return Fixed{}, shapeErr("width M+F must be positive, got %d", n)
	}
	v := big.NewInt(raw)
	min, max := rangeFor(signed, n)
	if v.Cmp(min) < 0 || v.Cmp(max) > 0 {
		return Fixed{}, shapeErr("raw value %d out of range [%s, %s] for <%v,%d,%d>", raw, min, max, signed, m, f)
	}
	return Fixed{signed: signed, m: m, f: f, words: packWords(n, signed, v)}, nil
}

// FromFloat64 constructs a Fixed by scaling value by 2^F and rounding to the
// nearest representable raw integer. Returns an error if out of range.
func FromFloat64(signed bool, m, f int, value float64) (Fixed, error) {
	scaled := value * math.Pow(2, float64(f))
	if math.IsInf(scaled, 0) || math.IsNaN(scaled) {
		return Fixed{}, shapeErr("value %v is not representable", value)
	}
	return FromRawInt(signed, m, f, int64(math.Round(scaled)))
}

// ToInt64 returns the underlying raw two's-complement integer (real value
// times 2^F). Errors if it overflows int64.
func (x Fixed) ToInt64() (int64, error) {
	v := unpackBigInt(x.words, x.N(), x.signed)
	if !v.IsInt64() {
		return 0, shapeErr("value does not fit in int64")
	}
	return v.Int64(), nil
}

// ToFloat64 returns the real value (raw integer / 2^F).
func (x Fixed) ToFloat64() float64 {
	v := unpackBigInt(x.words, x.N(), x.signed)
	bf := new(big.Float).SetInt(v)
	scale := new(big.Float).SetMantExp(big.NewFloat(1), -x.f)
	bf.Mul(bf, scale)
	f64, _ := bf.Float64()
	return f64
}

// String renders the exact decimal value.
func (x Fixed) String() string {
	v := unpackBigInt(x.words, x.N(), x.signed)
	if x.f == 0 {
		return v.String()
	}
	num := new(big.Rat).SetInt(v)
	den := new(big.Rat).SetInt(modPow2(x.f))
	r := new(big.Rat).Quo(num, den)
	s := r.FloatString(x.f)
	return trimTrailingZeros(s)
}

func trimTrailingZeros(s string) string {
	dot := -1
	for i, c := range s {
		if c == '.' {
			dot = i
			break
		}
	}
	if dot < 0 {
		return s
	}
	end := len(s)
	for end > dot+2 && s[end-1] == '0' {
		end--
	}
	if end == dot+2 && s[end-1] == '0' {
		end = dot
	}
	return s[:end]
}

// Not implements the spec's boolean negation: !x ≡ (x == 0). This overrides
// the original C++ source's TODO'd bitwise-NOT operator! — see SPEC_FULL.md
// §11. For bitwise complement use Complement.
func (x Fixed) Not() bool {
	return unpackBigInt(x.words, x.N(), x.signed).Sign() == 0
}

// Complement returns the bitwise NOT of x, same shape.
func (x Fixed) Complement() Fixed {
	n := x.N()
	out := make([]uint32, len(x.words))
	for i := range out {
		out[i] = ^x.words[i]
	}
	normalize(out, n, x.signed)
	return Fixed{signed: x.signed, m: x.m, f: x.f, words: out}
}

func (x Fixed) bitwise(o Fixed, op func(a, b uint32) uint32) (Fixed, error) {
	if !sameShape(x, o) {
		return Fixed{}, shapeErr("bitwise op requires matching shape, got <%v,%d,%d> and <%v,%d,%d>", x.signed, x.m, x.f, o.signed, o.m, o.f)
	}
	out := make([]uint32, len(x.words))
	for i := range out {
		out[i] = op(x.words[i], o.words[i])
	}
	normalize(out, x.N(), x.signed)
	return Fixed{signed: x.signed, m: x.m, f: x.f, words: out}, nil
}

// And, Or, Xor are pointwise bitwise operations; both operands must share
// the same shape.
func (x Fixed) And(o Fixed) (Fixed, error) { return x.bitwise(o, func(a, b uint32) uint32 { return a & b }) }
func (x Fixed) Or(o Fixed) (Fixed, error)  { return x.bitwise(o, func(a, b uint32) uint32 { return a | b }) }
func (x Fixed) Xor(o Fixed) (Fixed, error) { return x.bitwise(o, func(a, b uint32) uint32 { return a ^ b }) }

// Shl shifts left by k bits, zero-filling the low bits. A negative k shifts
// right instead. Shift amounts outside [-N, N] saturate to a full shift-out.
func (x Fixed) Shl(k int) Fixed {
	if k < 0 {
		return x.Shr(-k)
	}
	n := x.N()
	if k >= n {
		return Fixed{signed: x.signed, m: x.m, f: x.f, words: make([]uint32, nwords(n))}
	}
	rp := wordsToBigInt(rawPatternWords(x.words, n))
	rp.Lsh(rp, uint(k))
	return Fixed{signed: x.signed, m: x.m, f: x.f, words: packWords(n, x.signed, rp)}
}

// Shr shifts right by k bits: sign-extending if signed, zero-filling if
// unsigned. A negative k shifts left instead. Shift amounts outside
// [-N, N] saturate to a full shift-out (all sign bit, or zero if unsigned).
func (x Fixed) Shr(k int) Fixed {
	if k < 0 {
		return x.Shl(-k)
	}
	n := x.N()
	if k >= n {
		if x.signed && unpackBigInt(x.words, n, true).Sign() < 0 {
			return x.complementToAllOnes(n)
		}
		return Fixed{signed: x.signed, m: x.m, f: x.f, words: make([]uint32, nwords(n))}
	}
	if x.signed {
		v := unpackBigInt(x.words, n, true)
		v.Rsh(v, uint(k))
		return Fixed{signed: x.signed, m: x.m, f: x.f, words: packWords(n, x.signed, v)}
	}
	rp := wordsToBigInt(rawPatternWords(x.words, n))
	rp.Rsh(rp, uint(k))
	return Fixed{signed: x.signed, m: x.m, f: x.f, words: packWords(n, x.signed, rp)}
}

// complementToAllOnes returns a value of the same shape as the receiver with
// every one of the n represented bits set (i.e. -1 for a signed shape).
func (x Fixed) complementToAllOnes(n int) Fixed {
	words := make([]uint32, nwords(n))
	for i := range words {
		words[i] = ^uint32(0)
	}
	normalize(words, n, x.signed)
	return Fixed{signed: x.signed, m: x.m, f: x.f, words: words}
}

func addWords(a, b []uint32) ([]uint32, uint32) {
	out := make([]uint32, len(a))
	var carry uint64
	for i := range a {
		t := uint64(a[i]) + uint64(b[i]) + carry
		out[i] = uint32(t)
		carry = t >> 32
	}
	return out, uint32(carry)
}

func subWords(a, b []uint32) ([]uint32, uint32) {
	out := make([]uint32, len(a))
	var borrow uint64
	for i := range a {
		ai := uint64(a[i])
		bi := uint64(b[i]) + borrow
		if ai < bi {
			out[i] = uint32(ai + (1 << 32) - bi)
			borrow = 1
		} else {
			out[i] = uint32(ai - bi)
			borrow = 0
		}
	}
	return out, uint32(borrow)
}

// Add performs ripple-carry addition over the underlying words. Both
// operands must share the same shape. carryOut is the carry produced out of
// the top represented bit (bit N-1), so chained adders can observe it.
func (x Fixed) Add(o Fixed) (sum Fixed, carryOut bool, err error) {
	if !sameShape(x, o) {
		return Fixed{}, false, shapeErr("Add requires matching shape")
	}
	n := x.N()
	aw := rawPatternWords(x.words, n)
	bw := rawPatternWords(o.words, n)
	sumWords, _ := addWords(aw, bw)
	sumPattern := wordsToBigInt(sumWords)
	carryOut = sumPattern.Cmp(modPow2(n)) >= 0
	resultPattern := new(big.Int).Mod(sumPattern, modPow2(n))
	return Fixed{signed: x.signed, m: x.m, f: x.f, words: packWords(n, x.signed, resultPattern)}, carryOut, nil
}

// Sub performs ripple-borrow subtraction (x - o) over the underlying words.
// borrowOut is true iff the unsigned N-bit pattern of x is less than that
// of o.
func (x Fixed) Sub(o Fixed) (diff Fixed, borrowOut bool, err error) {
	if !sameShape(x, o) {
		return Fixed{}, false, shapeErr("Sub requires matching shape")
	}
	n := x.N()
	aw := rawPatternWords(x.words, n)
	bw := rawPatternWords(o.words, n)
	diffWords, borrow := subWords(aw, bw)
	diffPattern := new(big.Int).Mod(wordsToBigInt(diffWords), modPow2(n))
	return Fixed{signed: x.signed, m: x.m, f: x.f, words: packWords(n, x.signed, diffPattern)}, borrow == 1, nil
}

// Negate returns the two's-complement negation of a signed value. Negating
// the unique most-negative representable value is an arithmetic-condition
// error (spec.md §7) unless Symmetric mode is on, in which case it returns
// the bitwise inverse instead (spec.md §4.2).
func (x Fixed) Negate() (Fixed, error) {
	if !x.signed {
		return Fixed{}, shapeErr("Negate requires a signed value")
	}
	n := x.N()
	v := unpackBigInt(x.words, n, true)
	min, _ := rangeFor(true, n)
	if v.Cmp(min) == 0 {
		if !Symmetric() {
			return Fixed{}, shapeErr("negate overflow: most-negative value <%d,%d> has no positive counterpart (enable symmetric mode)", x.m, x.f)
		}
		return x.Complement(), nil
	}
	neg := new(big.Int).Neg(v)
	return Fixed{signed: x.signed, m: x.m, f: x.f, words: packWords(n, x.signed, neg)}, nil
}

// Mul multiplies two values of the same signedness, producing an exact
// result of shape <S, M1+M2, F1+F2> — a product of M1.F1 and M2.F2 operands
// always fits in that width, so Mul never errors on range.
func (x Fixed) Mul(o Fixed) (Fixed, error) {
	if x.signed != o.signed {
		return Fixed{}, shapeErr("Mul requires matching signedness")
	}
	m3, f3 := x.m+o.m, x.f+o.f
	n3 := m3 + f3
	av := unpackBigInt(x.words, x.N(), x.signed)
	bv := unpackBigInt(o.words, o.N(), o.signed)
	product := new(big.Int).Mul(av, bv)
	return Fixed{signed: x.signed, m: m3, f: f3, words: packWords(n3, x.signed, product)}, nil
}

// Resize converts x to a new shape, shifting by F2-F1 to realign the binary
// point and then truncating or extending to M2+F2 bits. Sign-extension is
// used for signed targets, zero-extension for unsigned. If Symmetric mode
// is enabled and this is a size-reducing resize that would otherwise leave
// exactly the most-negative value of the new width, the next value up is
// substituted instead (SPEC_FULL.md §9, following the original's documented
// ordering: the substitution happens before truncation, not after).
func (x Fixed) Resize(signed bool, m2, f2 int) Fixed {
	n2 := m2 + f2
	v := unpackBigInt(x.words, x.N(), x.signed)
	shift := f2 - x.f
	scaled := new(big.Int)
	if shift >= 0 {
		scaled.Lsh(v, uint(shift))
	} else {
		scaled.Rsh(v, uint(-shift))
	}
	if Symmetric() && signed && n2 < x.N() {
		minNew := new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), uint(n2-1)))
		if scaled.Cmp(minNew) == 0 {
			scaled.Add(scaled, big.NewInt(1))
		}
	}
	return Fixed{signed: signed, m: m2, f: f2, words: packWords(n2, signed, scaled)}
}

// Compare performs a two's-complement-aware comparison of the represented
// integer values (via math/big), returning -1, 0 or 1. Both operands must
// share the same shape.
func (x Fixed) Compare(o Fixed) (int, error) {
	if !sameShape(x, o) {
		return 0, shapeErr("Compare requires matching shape")
	}
	av := unpackBigInt(x.words, x.N(), x.signed)
	bv := unpackBigInt(o.words, o.N(), o.signed)
	return av.Cmp(bv), nil
}

// Equal reports whether x and o have the same shape and value.
func (x Fixed) Equal(o Fixed) bool {
	c, err := x.Compare(o)
	return err == nil && c == 0
}
