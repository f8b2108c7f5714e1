package sim

import "runtime"

// Options configures a Simulator. The zero value is not valid; use
// DefaultOptions and override individual fields.
type Options struct {
	// Symmetric enables symmetric rounding mode for every fixed value the
	// simulation touches: negating or downsizing the most-negative
	// representable value substitutes the next value up instead of
	// overflowing.
	Symmetric bool

	// MultiDriver allows more than one Part to drive the same Signal in a
	// delta cycle, for signals built with a Resolver (bus bits use
	// logic4.Resolve). When false, a second driver overwrites the first
	// unless DebugDriverCheck is set, in which case it is reported as a
	// RunError.
	MultiDriver bool

	// DebugDriverCheck keeps every drive call with the Part that made it, so
	// a second driver on a single-driver signal is reported as a
	// short-circuit RunError, and a conflict's RunError names every
	// offending Part instead of just the signal.
	DebugDriverCheck bool

	// WorkerThreads is the size of the delta-cycle propagation pool. Zero
	// means GOMAXPROCS.
	WorkerThreads int

	// MaxDeltaCyclesPerTick bounds delta-cycle propagation within a single
	// tick before the simulator reports an oscillation RunError. Zero means
	// DefaultMaxDeltaCycles.
	MaxDeltaCyclesPerTick int
}

// DefaultMaxDeltaCycles is the fallback oscillation-detection bound.
const DefaultMaxDeltaCycles = 1000

// DefaultOptions returns the configuration a bare `hdlsim run` uses: single
// drivers only, GOMAXPROCS workers, default oscillation bound.
func DefaultOptions() Options {
	return Options{
		Symmetric:             false,
		MultiDriver:           false,
		DebugDriverCheck:      false,
		WorkerThreads:         runtime.GOMAXPROCS(0),
		MaxDeltaCyclesPerTick: DefaultMaxDeltaCycles,
	}
}

func (o Options) normalize() Options {
	if o.WorkerThreads <= 0 {
		o.WorkerThreads = runtime.GOMAXPROCS(0)
	}
	if o.MaxDeltaCyclesPerTick <= 0 {
		o.MaxDeltaCyclesPerTick = DefaultMaxDeltaCycles
	}
	return o
}
