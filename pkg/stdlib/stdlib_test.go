package stdlib

import (
	"testing"

	"github.com/oisee/hdlsim/pkg/fixed"
	"github.com/oisee/hdlsim/pkg/logic4"
	"github.com/oisee/hdlsim/pkg/sim"
)

func clockSignals(reg *sim.Registry) (clk, reset, enable *sim.Signal[logic4.Value]) {
	clk = sim.NewSignal(reg, sim.Options{}, "clk", logic4.Zero, nil)
	reset = sim.NewSignal(reg, sim.Options{}, "reset", logic4.One, nil)
	enable = sim.NewSignal(reg, sim.Options{}, "enable", logic4.One, nil)
	return
}

func TestCounterCountsUp(t *testing.T) {
	reg := sim.NewRegistry()
	clk, reset, enable := clockSignals(reg)
	Clock(reg, "clk.gen", clk)
	out := sim.NewSignal(reg, sim.Options{}, "count", fixed.New(false, 8, 0), nil)
	if _, err := Counter(reg, "counter", clk, reset, enable, out); err != nil {
		t.Fatalf("Counter: %v", err)
	}

	s := sim.NewSimulator(reg, sim.DefaultOptions())
	// Two ticks per rising edge (toggle low->high->low->high...).
	if err := s.Run(6); err != nil {
		t.Fatalf("Run: %v", err)
	}
	got, err := out.Read().ToInt64()
	if err != nil {
		t.Fatalf("ToInt64: %v", err)
	}
	if got < 1 {
		t.Errorf("counter value = %d, want at least 1 after 6 ticks", got)
	}
}

func TestRegisterResetsToZero(t *testing.T) {
	reg := sim.NewRegistry()
	clk, reset, enable := clockSignals(reg)
	Clock(reg, "clk.gen", clk)
	din := sim.NewSignal(reg, sim.Options{}, "din", fixed.New(true, 8, 0), nil)
	dout := sim.NewSignal(reg, sim.Options{}, "dout", fixed.New(true, 8, 0), nil)
	Register(reg, "reg", clk, reset, enable, din, dout)

	reset.Force(logic4.Zero)

	s := sim.NewSimulator(reg, sim.DefaultOptions())
	if err := s.Run(2); err != nil {
		t.Fatalf("Run: %v", err)
	}
	got, _ := dout.Read().ToInt64()
	if got != 0 {
		t.Errorf("dout = %d after reset, want 0", got)
	}
}

func TestPWMProducesDefinedOutput(t *testing.T) {
	reg := sim.NewRegistry()
	clk, reset, enable := clockSignals(reg)
	Clock(reg, "clk.gen", clk)
	ratio := sim.NewSignal(reg, sim.Options{}, "ratio", fixed.New(false, 3, 0), nil)
	out := sim.NewSignal(reg, sim.Options{}, "pwm_out", logic4.Zero, nil)
	if _, err := PWM(reg, "pwm", clk, reset, enable, 3, ratio, out); err != nil {
		t.Fatalf("PWM: %v", err)
	}

	s := sim.NewSimulator(reg, sim.DefaultOptions())
	if err := s.Run(10); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !out.Read().Defined() {
		t.Errorf("pwm output should settle to a definite 0/1, got %v", out.Read())
	}
}
