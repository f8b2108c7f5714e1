// Package stdlib is a small catalogue of reusable parts — registers,
// integrators, counters, a PWM generator, a clock divider, and a simple PID
// controller — built the same way any other netlist is: by constructing
// ordinary sim.Part values with sim.New. Grounded on the original
// implementation's stdlib.hpp (reg, integrator, differentiator, counter,
// pidctl, nco, pwm, clkdiv), rebuilt against pkg/sim/pkg/fixed/pkg/logic4
// instead of translated from the C++ template functions.
package stdlib

import (
	"fmt"

	"github.com/oisee/hdlsim/pkg/fixed"
	"github.com/oisee/hdlsim/pkg/logic4"
	"github.com/oisee/hdlsim/pkg/sim"
)

// Clock drives out to toggle once per tick, starting low. It is built as a
// Testbench rather than an ordinary Part: the propagator runs it exactly
// once per tick, before delta-cycle propagation starts, so it never needs to
// guard against retoggling its own output within a tick.
func Clock(reg *sim.Registry, name string, out *sim.Signal[logic4.Value]) *sim.Part {
	return sim.Testbench(reg, name, func(p *sim.Part, _ uint64) error {
		out.Drive(p, out.Read().Not())
		return nil
	})
}

// AssignBit wires out to always equal in, combinationally.
func AssignBit(reg *sim.Registry, name string, in, out *sim.Signal[logic4.Value]) *sim.Part {
	return sim.New(reg, name, []sim.Eventer{in}, func(p *sim.Part, _ uint64) error {
		out.Drive(p, in.Read())
		return nil
	})
}

// AssignFixed wires out to always equal in, combinationally, resizing if
// the two signals have different shapes.
func AssignFixed(reg *sim.Registry, name string, in, out *sim.Signal[fixed.Fixed]) *sim.Part {
	return sim.New(reg, name, []sim.Eventer{in}, func(p *sim.Part, _ uint64) error {
		v := in.Read()
		want := out.Read()
		if v.Signed() != want.Signed() || v.M() != want.M() || v.F() != want.F() {
			v = v.Resize(want.Signed(), want.M(), want.F())
		}
		out.Drive(p, v)
		return nil
	})
}

// Invert drives out to the logical negation of in.
func Invert(reg *sim.Registry, name string, in, out *sim.Signal[logic4.Value]) *sim.Part {
	return sim.New(reg, name, []sim.Eventer{in}, func(p *sim.Part, _ uint64) error {
		out.Drive(p, in.Read().Not())
		return nil
	})
}

// Register is a level-sensitive-reset, rising-edge, enable-gated D
// flip-flop: on reset == 0 it forces dout to the shape's zero value;
// otherwise, on a rising edge of clk while enable == 1, it latches din into
// dout. Grounded on stdlib.hpp's reg().
func Register(reg *sim.Registry, name string, clk, reset, enable *sim.Signal[logic4.Value], din, dout *sim.Signal[fixed.Fixed]) *sim.Part {
	return sim.New(reg, name, []sim.Eventer{clk, reset}, func(p *sim.Part, _ uint64) error {
		shape := dout.Read()
		if reset.Read() == logic4.Zero {
			dout.Drive(p, fixed.New(shape.Signed(), shape.M(), shape.F()))
			return nil
		}
		if clk.Event(p) && clk.Read() == logic4.One && enable.Read() == logic4.One {
			dout.Drive(p, din.Read())
		}
		return nil
	})
}

// RegisterBit is Register's 1-bit counterpart, for sequencing logic4
// control signals (e.g. a reset-synchronizer or enable chain).
func RegisterBit(reg *sim.Registry, name string, clk, reset, enable *sim.Signal[logic4.Value], din, dout *sim.Signal[logic4.Value]) *sim.Part {
	return sim.New(reg, name, []sim.Eventer{clk, reset}, func(p *sim.Part, _ uint64) error {
		if reset.Read() == logic4.Zero {
			dout.Drive(p, logic4.Zero)
			return nil
		}
		if clk.Event(p) && clk.Read() == logic4.One && enable.Read() == logic4.One {
			dout.Drive(p, din.Read())
		}
		return nil
	})
}

// Integrator accumulates in into out on every rising clk edge while enable
// is high: out(t) = out(t-1) + in(t). Grounded on stdlib.hpp's integrator()
// (a register wrapped around an adder whose other input is its own
// output).
func Integrator(reg *sim.Registry, name string, clk, resetSig, enable *sim.Signal[logic4.Value], in, out *sim.Signal[fixed.Fixed]) *sim.Part {
	return sim.New(reg, name, []sim.Eventer{clk, resetSig}, func(p *sim.Part, tick uint64) error {
		shape := out.Read()
		if resetSig.Read() == logic4.Zero {
			out.Drive(p, fixed.New(shape.Signed(), shape.M(), shape.F()))
			return nil
		}
		if clk.Event(p) && clk.Read() == logic4.One && enable.Read() == logic4.One {
			sum, _, err := out.Read().Add(in.Read())
			if err != nil {
				return fmt.Errorf("integrator %q: %w", name, err)
			}
			out.Drive(p, sum)
		}
		return nil
	})
}

// Differentiator drives out(t) = in(t) - in(t-1) on every rising clk edge
// while enable is high, by keeping an internal register of the previous
// input. Grounded on stdlib.hpp's differentiator().
func Differentiator(reg *sim.Registry, name string, clk, resetSig, enable *sim.Signal[logic4.Value], in, out *sim.Signal[fixed.Fixed]) []*sim.Part {
	shape := in.Read()
	prev := sim.NewSignal(reg, sim.Options{}, name+".prev", fixed.New(shape.Signed(), shape.M(), shape.F()), nil)
	regPart := Register(reg, name+".reg", clk, resetSig, enable, in, prev)
	subPart := sim.New(reg, name, []sim.Eventer{clk}, func(p *sim.Part, _ uint64) error {
		if clk.Event(p) && clk.Read() == logic4.One && enable.Read() == logic4.One {
			diff, _, err := in.Read().Sub(prev.Read())
			if err != nil {
				return fmt.Errorf("differentiator %q: %w", name, err)
			}
			out.Drive(p, diff)
		}
		return nil
	})
	return []*sim.Part{regPart, subPart}
}

// Counter increments out by one on every rising clk edge while enable is
// high, resetting to zero while reset == 0. Grounded on stdlib.hpp's
// counter(), which is just an integrator fed a constant 1.
func Counter(reg *sim.Registry, name string, clk, resetSig, enable *sim.Signal[logic4.Value], out *sim.Signal[fixed.Fixed]) (*sim.Part, error) {
	shape := out.Read()
	one, err := fixed.FromRawInt(shape.Signed(), shape.M(), shape.F(), 1)
	if err != nil {
		return nil, fmt.Errorf("counter %q: shape too narrow to hold 1: %w", name, err)
	}
	oneSig := sim.NewSignal(reg, sim.Options{}, name+".one", one, nil)
	return Integrator(reg, name, clk, resetSig, enable, oneSig, out), nil
}

// ClockDivider toggles out every div rising edges of clk, producing a clock
// running at 1/(2*div) of clk's rate (div full periods of clk per half
// period of out). Grounded on stdlib.hpp's clkdiv(), simplified to a direct
// edge counter instead of routing through a PWM generator.
func ClockDivider(reg *sim.Registry, name string, clk, resetSig, enable *sim.Signal[logic4.Value], div uint64, out *sim.Signal[logic4.Value]) *sim.Part {
	var count uint64
	return sim.New(reg, name, []sim.Eventer{clk, resetSig}, func(p *sim.Part, _ uint64) error {
		if resetSig.Read() == logic4.Zero {
			count = 0
			out.Drive(p, logic4.Zero)
			return nil
		}
		if clk.Event(p) && clk.Read() == logic4.One && enable.Read() == logic4.One {
			count++
			if count >= div {
				count = 0
				out.Drive(p, out.Read().Not())
			}
		}
		return nil
	})
}

// PWM drives out high for the first ratio out of 2^bits rising edges of clk
// in each period, then low for the remainder — a free-running counter
// compared against ratio. Grounded on stdlib.hpp's pwm().
func PWM(reg *sim.Registry, name string, clk, resetSig, enable *sim.Signal[logic4.Value], bits int, ratio *sim.Signal[fixed.Fixed], out *sim.Signal[logic4.Value]) (*sim.Part, error) {
	cnt := sim.NewSignal(reg, sim.Options{}, name+".count", fixed.New(false, bits, 0), nil)
	limit, err := fixed.FromRawInt(false, bits, 0, (int64(1)<<uint(bits))-1)
	if err != nil {
		return nil, fmt.Errorf("pwm %q: %w", name, err)
	}
	one, _ := fixed.FromRawInt(false, bits, 0, 1)

	return sim.New(reg, name, []sim.Eventer{clk, resetSig}, func(p *sim.Part, _ uint64) error {
		if resetSig.Read() == logic4.Zero {
			cnt.Drive(p, fixed.New(false, bits, 0))
			out.Drive(p, logic4.Zero)
			return nil
		}
		if !(clk.Event(p) && clk.Read() == logic4.One && enable.Read() == logic4.One) {
			return nil
		}
		cur := cnt.Read()
		var next fixed.Fixed
		if c, err := cur.Compare(limit); err == nil && c >= 0 {
			next = fixed.New(false, bits, 0)
		} else {
			sum, _, err := cur.Add(one)
			if err != nil {
				return fmt.Errorf("pwm %q: %w", name, err)
			}
			next = sum
		}
		cnt.Drive(p, next)

		cmp, err := cur.Compare(ratio.Read())
		if err != nil {
			return fmt.Errorf("pwm %q: comparing counter to ratio: %w", name, err)
		}
		if cmp < 0 {
			out.Drive(p, logic4.One)
		} else {
			out.Drive(p, logic4.Zero)
		}
		return nil
	}), nil
}

// PIDGains bundles the three (fixed-point) gain inputs of a PIDController.
// A nil signal disables that term entirely, matching the original
// implementation's usep/usei/used compile-time switches.
type PIDGains struct {
	P, I, D *sim.Signal[fixed.Fixed]
}

// PIDController computes a proportional-integral-derivative control signal
// from input, updated on every rising clk edge while enable is high.
// Grounded on stdlib.hpp's pidctl(), simplified to apply each gain as a
// fixed-point multiply (the original barrel-shifts by an integer gain
// signal; multiplying by an arbitrary fixed-point gain is the more general
// form and composes directly with pkg/fixed.Mul).
func PIDController(reg *sim.Registry, name string, clk, resetSig, enable *sim.Signal[logic4.Value], input *sim.Signal[fixed.Fixed], gains PIDGains, output *sim.Signal[fixed.Fixed]) ([]*sim.Part, error) {
	shape := output.Read()
	zero := fixed.New(shape.Signed(), shape.M(), shape.F())

	var parts []*sim.Part
	terms := make([]*sim.Signal[fixed.Fixed], 0, 3)

	if gains.P != nil {
		p := sim.NewSignal(reg, sim.Options{}, name+".p", zero, nil)
		parts = append(parts, sim.New(reg, name+".p.mul", []sim.Eventer{clk}, func(pt *sim.Part, _ uint64) error {
			if clk.Event(pt) && clk.Read() == logic4.One && enable.Read() == logic4.One {
				prod, err := input.Read().Mul(gains.P.Read())
				if err != nil {
					return err
				}
				p.Drive(pt, prod.Resize(shape.Signed(), shape.M(), shape.F()))
			}
			return nil
		}))
		terms = append(terms, p)
	}
	if gains.I != nil {
		iIn := sim.NewSignal(reg, sim.Options{}, name+".i.in", zero, nil)
		i := sim.NewSignal(reg, sim.Options{}, name+".i", zero, nil)
		parts = append(parts, sim.New(reg, name+".i.mul", []sim.Eventer{clk}, func(pt *sim.Part, _ uint64) error {
			if clk.Event(pt) && clk.Read() == logic4.One && enable.Read() == logic4.One {
				prod, err := input.Read().Mul(gains.I.Read())
				if err != nil {
					return err
				}
				iIn.Drive(pt, prod.Resize(shape.Signed(), shape.M(), shape.F()))
			}
			return nil
		}))
		parts = append(parts, Integrator(reg, name+".i.acc", clk, resetSig, enable, iIn, i))
		terms = append(terms, i)
	}
	if gains.D != nil {
		dIn := sim.NewSignal(reg, sim.Options{}, name+".d.in", zero, nil)
		d := sim.NewSignal(reg, sim.Options{}, name+".d", zero, nil)
		parts = append(parts, sim.New(reg, name+".d.mul", []sim.Eventer{clk}, func(pt *sim.Part, _ uint64) error {
			if clk.Event(pt) && clk.Read() == logic4.One && enable.Read() == logic4.One {
				prod, err := input.Read().Mul(gains.D.Read())
				if err != nil {
					return err
				}
				dIn.Drive(pt, prod.Resize(shape.Signed(), shape.M(), shape.F()))
			}
			return nil
		}))
		parts = append(parts, Differentiator(reg, name+".d.diff", clk, resetSig, enable, dIn, d)...)
		terms = append(terms, d)
	}

	if len(terms) == 0 {
		return nil, fmt.Errorf("pidctl %q: at least one of P, I, D gains must be set", name)
	}

	parts = append(parts, sim.New(reg, name, []sim.Eventer{clk}, func(p *sim.Part, _ uint64) error {
		if !(clk.Event(p) && clk.Read() == logic4.One && enable.Read() == logic4.One) {
			return nil
		}
		sum := terms[0].Read()
		for _, t := range terms[1:] {
			s, _, err := sum.Add(t.Read())
			if err != nil {
				return fmt.Errorf("pidctl %q: %w", name, err)
			}
			sum = s
		}
		output.Drive(p, sum)
		return nil
	}))

	return parts, nil
}
