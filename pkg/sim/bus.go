package sim

import (
	"fmt"
	"strings"

	"github.com/oisee/hdlsim/pkg/logic4"
)

func logic4Resolver(values []logic4.Value) (logic4.Value, error) {
	return logic4.Resolve(values), nil
}

// Bus groups width independent 1-bit logic4 signals under one name, index 0
// being the least-significant bit. Each bit still goes through the normal
// delta-cycle commit machinery individually — a Bus is a convenience
// wrapper for assigning and reading them together, not a new kind of
// signal.
type Bus struct {
	nm   string
	bits []*Signal[logic4.Value]
}

// NewBus registers width individual signals and returns the Bus grouping
// them. Every bit starts HighZ, matching an undriven net.
func NewBus(reg *Registry, opts Options, name string, width int) *Bus {
	bits := make([]*Signal[logic4.Value], width)
	for i := 0; i < width; i++ {
		bitName := ""
		if name != "" {
			bitName = fmt.Sprintf("%s[%d]", name, i)
		}
		bits[i] = NewSignal(reg, opts, bitName, logic4.HighZ, Resolver[logic4.Value](logic4Resolver))
	}
	return &Bus{nm: name, bits: bits}
}

func (b *Bus) Name() string { return b.nm }
func (b *Bus) Width() int   { return len(b.bits) }

// Bit returns the individual signal for bit i (0 = least significant).
func (b *Bus) Bit(i int) *Signal[logic4.Value] { return b.bits[i] }

// Drive sets bit i as driven by p.
func (b *Bus) Drive(p *Part, i int, v logic4.Value) {
	b.bits[i].Drive(p, v)
}

// DriveAll drives every bit from values (index 0 = least significant);
// len(values) must equal b.Width().
func (b *Bus) DriveAll(p *Part, values []logic4.Value) error {
	if len(values) != len(b.bits) {
		return fmt.Errorf("bus %q: DriveAll got %d values, want %d", b.nm, len(values), len(b.bits))
	}
	for i, v := range values {
		b.bits[i].Drive(p, v)
	}
	return nil
}

// DriveUint64 drives every bit from the binary expansion of v. Returns an
// error instead of truncating if v doesn't fit in the bus's width.
func (b *Bus) DriveUint64(p *Part, v uint64) error {
	width := len(b.bits)
	if width < 64 && v>>uint(width) != 0 {
		return fmt.Errorf("bus %q: value %d does not fit in %d bits", b.nm, v, width)
	}
	for i := range b.bits {
		bit := logic4.Zero
		if v&(1<<uint(i)) != 0 {
			bit = logic4.One
		}
		b.bits[i].Drive(p, bit)
	}
	return nil
}

// DriveInt64 drives every bit from the two's-complement expansion of v,
// sign-extended or range-checked against the bus's width: v must fit in
// width signed bits ([-2^(width-1), 2^(width-1)-1]) or DriveInt64 returns an
// error instead of silently wrapping.
func (b *Bus) DriveInt64(p *Part, v int64) error {
	width := len(b.bits)
	if width == 0 {
		if v != 0 {
			return fmt.Errorf("bus %q: value %d does not fit in 0 bits", b.nm, v)
		}
		return nil
	}
	if width < 64 {
		lo := -(int64(1) << uint(width-1))
		hi := (int64(1) << uint(width-1)) - 1
		if v < lo || v > hi {
			return fmt.Errorf("bus %q: value %d out of range [%d, %d] for %d signed bits", b.nm, v, lo, hi, width)
		}
	}
	u := uint64(v)
	for i := range b.bits {
		bit := logic4.Zero
		if u&(1<<uint(i)) != 0 {
			bit = logic4.One
		}
		b.bits[i].Drive(p, bit)
	}
	return nil
}

// Read returns the current value of every bit, index 0 = least significant.
func (b *Bus) Read() []logic4.Value {
	out := make([]logic4.Value, len(b.bits))
	for i, bit := range b.bits {
		out[i] = bit.Read()
	}
	return out
}

// Uint64 reads the bus as an unsigned integer. Errors if any bit is Z or U
// — a partially-resolved bus has no numeric value.
func (b *Bus) Uint64() (uint64, error) {
	var v uint64
	for i, bit := range b.bits {
		val := bit.Read()
		if !val.Defined() {
			return 0, fmt.Errorf("bus %q: bit %d is %v, not 0/1", b.nm, i, val)
		}
		if val == logic4.One {
			v |= 1 << uint(i)
		}
	}
	return v, nil
}

// Int64 reads the bus as a two's-complement signed integer, MSB is the sign
// bit.
func (b *Bus) Int64() (int64, error) {
	u, err := b.Uint64()
	if err != nil {
		return 0, err
	}
	n := len(b.bits)
	if n == 0 || n >= 64 {
		return int64(u), nil
	}
	signBit := uint64(1) << uint(n-1)
	if u&signBit != 0 {
		return int64(u) - int64(1<<uint(n)), nil
	}
	return int64(u), nil
}

// Equal reports whether every bit of b and o carries the same logic4 value.
func (b *Bus) Equal(o *Bus) bool {
	if len(b.bits) != len(o.bits) {
		return false
	}
	for i := range b.bits {
		if !b.bits[i].Read().Equal(o.bits[i].Read()) {
			return false
		}
	}
	return true
}

// EqualUint64 reports whether the bus, read as an unsigned integer, equals
// want. Returns false (not an error) if the bus isn't fully resolved.
func (b *Bus) EqualUint64(want uint64) bool {
	got, err := b.Uint64()
	return err == nil && got == want
}

// String renders the bus MSB-first, one character per bit (0/1/Z/U),
// following the original implementation's display convention.
func (b *Bus) String() string {
	var sb strings.Builder
	for i := len(b.bits) - 1; i >= 0; i-- {
		sb.WriteString(b.bits[i].Read().String())
	}
	return sb.String()
}
