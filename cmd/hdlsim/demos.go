package main

import (
	"fmt"
	"sort"

	"github.com/oisee/hdlsim/pkg/fixed"
	"github.com/oisee/hdlsim/pkg/logic4"
	"github.com/oisee/hdlsim/pkg/sim"
	"github.com/oisee/hdlsim/pkg/stdlib"
)

// watch is a single signal worth printing: a name and a function that
// reads its current value as a string, independent of its underlying Go
// type.
type watch struct {
	name string
	read func() string
}

// demo is a small, self-contained netlist built entirely from pkg/stdlib
// parts — the CLI's equivalent of the original implementation's
// example.cpp: this is an embedded library, not a netlist file format, so
// `hdlsim run <name>` selects one of these instead of parsing a file.
type demo struct {
	name        string
	description string
	build       func(reg *sim.Registry, opts sim.Options) []watch
}

var demos = map[string]demo{
	"counter": {
		name:        "counter",
		description: "an 8-bit free-running up counter",
		build:       buildCounterDemo,
	},
	"clockdiv": {
		name:        "clockdiv",
		description: "a divide-by-8 clock divider (toggling every 4 rising edges) chasing a free-running clock",
		build:       buildClockDivDemo,
	},
	"pwm": {
		name:        "pwm",
		description: "a 4-bit counter driving a PWM output at a fixed ratio",
		build:       buildPWMDemo,
	},
}

func demoNames() []string {
	names := make([]string, 0, len(demos))
	for n := range demos {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func buildCounterDemo(reg *sim.Registry, opts sim.Options) []watch {
	clk := sim.NewSignal(reg, opts, "clk", logic4.Zero, nil)
	reset := sim.NewSignal(reg, opts, "reset", logic4.One, nil)
	enable := sim.NewSignal(reg, opts, "enable", logic4.One, nil)
	count := sim.NewSignal(reg, opts, "count", fixed.New(false, 8, 0), nil)

	stdlib.Clock(reg, "clk.gen", clk)
	if _, err := stdlib.Counter(reg, "counter", clk, reset, enable, count); err != nil {
		panic(err) // demo netlist shapes are fixed at compile time; a failure here is a programming error.
	}

	return []watch{
		{"clk", func() string { return clk.Read().String() }},
		{"count", func() string { return count.Read().String() }},
	}
}

func buildClockDivDemo(reg *sim.Registry, opts sim.Options) []watch {
	clk := sim.NewSignal(reg, opts, "clk", logic4.Zero, nil)
	reset := sim.NewSignal(reg, opts, "reset", logic4.One, nil)
	enable := sim.NewSignal(reg, opts, "enable", logic4.One, nil)
	divided := sim.NewSignal(reg, opts, "divided", logic4.Zero, nil)

	stdlib.Clock(reg, "clk.gen", clk)
	stdlib.ClockDivider(reg, "divider", clk, reset, enable, 4, divided)

	return []watch{
		{"clk", func() string { return clk.Read().String() }},
		{"divided", func() string { return divided.Read().String() }},
	}
}

func buildPWMDemo(reg *sim.Registry, opts sim.Options) []watch {
	clk := sim.NewSignal(reg, opts, "clk", logic4.Zero, nil)
	reset := sim.NewSignal(reg, opts, "reset", logic4.One, nil)
	enable := sim.NewSignal(reg, opts, "enable", logic4.One, nil)
	ratio := sim.NewSignal(reg, opts, "ratio", fixed.New(false, 4, 0), nil)
	out := sim.NewSignal(reg, opts, "pwm_out", logic4.Zero, nil)

	r, err := fixed.FromRawInt(false, 4, 0, 5)
	if err != nil {
		panic(err)
	}
	ratio.Force(r)

	stdlib.Clock(reg, "clk.gen", clk)
	if _, err := stdlib.PWM(reg, "pwm", clk, reset, enable, 4, ratio, out); err != nil {
		panic(err)
	}

	return []watch{
		{"clk", func() string { return clk.Read().String() }},
		{"ratio", func() string { return ratio.Read().String() }},
		{"pwm_out", func() string { return out.Read().String() }},
	}
}

func lookupDemo(name string) (demo, error) {
	d, ok := demos[name]
	if !ok {
		return demo{}, fmt.Errorf("unknown demo %q — available: %v", name, demoNames())
	}
	return d, nil
}
