package sim_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/oisee/hdlsim/pkg/fixed"
	"github.com/oisee/hdlsim/pkg/logic4"
	"github.com/oisee/hdlsim/pkg/sim"
	"github.com/oisee/hdlsim/pkg/stdlib"
)

var _ = Describe("a free-running counter", func() {
	It("increments once per rising clock edge", func() {
		reg := sim.NewRegistry()
		clk := sim.NewSignal(reg, sim.Options{}, "clk", logic4.Zero, nil)
		reset := sim.NewSignal(reg, sim.Options{}, "reset", logic4.One, nil)
		enable := sim.NewSignal(reg, sim.Options{}, "enable", logic4.One, nil)
		count := sim.NewSignal(reg, sim.Options{}, "count", fixed.New(false, 8, 0), nil)

		stdlib.Clock(reg, "clk.gen", clk)
		_, err := stdlib.Counter(reg, "counter", clk, reset, enable, count)
		Expect(err).NotTo(HaveOccurred())

		s := sim.NewSimulator(reg, sim.DefaultOptions())
		Expect(s.Run(10)).To(Succeed())

		got, err := count.Read().ToInt64()
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(Equal(int64(5)))
	})
})

var _ = Describe("a two-stage register chain", func() {
	It("propagates a value one stage per clock edge", func() {
		reg := sim.NewRegistry()
		clk := sim.NewSignal(reg, sim.Options{}, "clk", logic4.Zero, nil)
		reset := sim.NewSignal(reg, sim.Options{}, "reset", logic4.One, nil)
		enable := sim.NewSignal(reg, sim.Options{}, "enable", logic4.One, nil)
		din := sim.NewSignal(reg, sim.Options{}, "din", fixed.New(false, 8, 0), nil)
		mid := sim.NewSignal(reg, sim.Options{}, "mid", fixed.New(false, 8, 0), nil)
		dout := sim.NewSignal(reg, sim.Options{}, "dout", fixed.New(false, 8, 0), nil)

		in, err := fixed.FromRawInt(false, 8, 0, 42)
		Expect(err).NotTo(HaveOccurred())
		din.Force(in)

		stdlib.Clock(reg, "clk.gen", clk)
		stdlib.Register(reg, "stage1", clk, reset, enable, din, mid)
		stdlib.Register(reg, "stage2", clk, reset, enable, mid, dout)

		s := sim.NewSimulator(reg, sim.DefaultOptions())

		Expect(s.Run(2)).To(Succeed())
		midVal, _ := mid.Read().ToInt64()
		doutVal, _ := dout.Read().ToInt64()
		Expect(midVal).To(Equal(int64(42)))
		Expect(doutVal).To(Equal(int64(0)))

		Expect(s.Run(2)).To(Succeed())
		doutVal, _ = dout.Read().ToInt64()
		Expect(doutVal).To(Equal(int64(42)))
	})
})

var _ = Describe("multi-driver resolution", func() {
	It("resolves two drivers agreeing on the same value", func() {
		reg := sim.NewRegistry()
		opts := sim.Options{MultiDriver: true}
		bus := sim.NewBus(reg, opts, "shared", 1)

		sim.New(reg, "driverA", nil, func(p *sim.Part, _ uint64) error {
			bus.Drive(p, 0, logic4.One)
			return nil
		})
		sim.New(reg, "driverB", nil, func(p *sim.Part, _ uint64) error {
			bus.Drive(p, 0, logic4.One)
			return nil
		})

		s := sim.NewSimulator(reg, opts)
		Expect(s.Run(1)).To(Succeed())
		Expect(bus.EqualUint64(1)).To(BeTrue())
	})
})

var _ = Describe("short-circuit detection", func() {
	It("reports a RunError when two drivers disagree in single-driver mode", func() {
		reg := sim.NewRegistry()
		opts := sim.Options{MultiDriver: false, DebugDriverCheck: true}
		sig := sim.NewSignal(reg, opts, "contested", logic4.Zero, nil)

		sim.New(reg, "driverA", nil, func(p *sim.Part, _ uint64) error {
			sig.Drive(p, logic4.One)
			return nil
		})
		sim.New(reg, "driverB", nil, func(p *sim.Part, _ uint64) error {
			sig.Drive(p, logic4.Zero)
			return nil
		})

		s := sim.NewSimulator(reg, opts)
		err := s.Run(1)
		Expect(err).To(HaveOccurred())

		var re *sim.RunError
		Expect(err).To(BeAssignableToTypeOf(re))
		Expect(err.(*sim.RunError).Phase).To(Equal(sim.PhaseCommit))
	})
})

var _ = Describe("an oscillating net", func() {
	It("is reported as an oscillation error instead of hanging", func() {
		reg := sim.NewRegistry()
		opts := sim.Options{MaxDeltaCyclesPerTick: 5}
		osc := sim.NewSignal(reg, opts, "out", logic4.Zero, nil)
		sim.New(reg, "p", nil, func(p *sim.Part, _ uint64) error {
			osc.Drive(p, osc.Read().Not())
			return nil
		})

		s := sim.NewSimulator(reg, opts)
		err := s.Run(1)
		Expect(err).To(HaveOccurred())
		re := err.(*sim.RunError)
		Expect(re.Phase).To(Equal(sim.PhaseSettle))
		Expect(re.Signals).To(ContainElement("out"))
		Expect(re.Parts).To(ContainElement("p"))
	})
})

var _ = Describe("signed fixed-point multiplication through a combinational part", func() {
	It("reproduces fixed<true,9,0>(-17) * fixed<true,9,0>(13) == fixed<true,18,0>(-221)", func() {
		reg := sim.NewRegistry()
		a := sim.NewSignal(reg, sim.Options{}, "a", fixed.New(true, 9, 0), nil)
		b := sim.NewSignal(reg, sim.Options{}, "b", fixed.New(true, 9, 0), nil)
		product := sim.NewSignal(reg, sim.Options{}, "product", fixed.New(true, 18, 0), nil)

		av, err := fixed.FromRawInt(true, 9, 0, -17)
		Expect(err).NotTo(HaveOccurred())
		bv, err := fixed.FromRawInt(true, 9, 0, 13)
		Expect(err).NotTo(HaveOccurred())
		a.Force(av)
		b.Force(bv)

		sim.New(reg, "multiplier", []sim.Eventer{a, b}, func(p *sim.Part, _ uint64) error {
			prod, err := a.Read().Mul(b.Read())
			if err != nil {
				return err
			}
			product.Drive(p, prod)
			return nil
		})

		s := sim.NewSimulator(reg, sim.DefaultOptions())
		Expect(s.Run(1)).To(Succeed())

		got, err := product.Read().ToInt64()
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(Equal(int64(-221)))
	})
})
