package sim

import "github.com/oisee/hdlsim/pkg/fixed"

// Simulator owns a Registry and drives the delta-cycle propagation loop
// described in spec.md §4.6: run the testbench once, then evaluate every
// sensitive ordinary part, settle the signals they drove, and repeat until
// nothing changes (a fixed point) or the configured delta-cycle bound is
// exceeded, which is reported as an oscillation RunError rather than
// spinning forever.
type Simulator struct {
	reg    *Registry
	opts   Options
	pool   *WorkerPool
	tick   uint64
	primed bool
}

// NewSimulator builds a Simulator over reg with opts. reg may already have
// parts and signals registered against it — typically the whole netlist is
// built with reg before NewSimulator is ever called.
func NewSimulator(reg *Registry, opts Options) *Simulator {
	opts = opts.normalize()
	fixed.SetSymmetric(opts.Symmetric)
	return &Simulator{reg: reg, opts: opts, pool: NewWorkerPool(opts.WorkerThreads)}
}

// Registry returns the Simulator's netlist registry.
func (s *Simulator) Registry() *Registry { return s.reg }

// Tick returns the number of ticks completed so far.
func (s *Simulator) Tick() uint64 { return s.tick }

// Stats returns the worker pool's running totals.
func (s *Simulator) Stats() (evaluated, errored int64) { return s.pool.Stats() }

// Run advances the simulation by n ticks, stopping at the first RunError.
func (s *Simulator) Run(n uint64) error {
	return s.run(n, false)
}

// RunVerbose is like Run but additionally prints a periodic progress line,
// in the teacher's worker-pool progress-ticker style — used by
// `hdlsim run --verbose`.
func (s *Simulator) RunVerbose(n uint64) error {
	return s.run(n, true)
}

func (s *Simulator) run(n uint64, verbose bool) error {
	var done chan struct{}
	if verbose {
		done = make(chan struct{})
		target := s.tick + n
		go s.pool.progressReporter(done, target, s.Tick)
		defer close(done)
	}

	if !s.primed {
		for _, sig := range s.reg.Signals() {
			if err := sig.primeFirst(s.tick); err != nil {
				return err
			}
		}
		s.primed = true
	}

	for i := uint64(0); i < n; i++ {
		if err := s.runOneTick(); err != nil {
			return err
		}
		s.tick++
	}
	return nil
}

// runOneTick runs the netlist's testbench exactly once, then iterates the
// rest of the parts to a delta-cycle fixed point. The testbench is excluded
// from the iterative loop: it drives primary inputs once per tick by
// construction (Testbench), so it never needs to be re-evaluated the way an
// ordinary free-running Part with an empty sensitivity list does.
func (s *Simulator) runOneTick() error {
	all := s.reg.Parts()
	signals := s.reg.Signals()

	var testbenches, iterative []*Part
	for _, p := range all {
		if p.IsTestbench() {
			testbenches = append(testbenches, p)
		} else {
			iterative = append(iterative, p)
		}
	}

	if len(testbenches) > 0 {
		if err := s.pool.RunParts(s.tick, PhaseExecute, testbenches); err != nil {
			return err
		}
	}

	for cycle := 0; ; cycle++ {
		if cycle >= s.opts.MaxDeltaCyclesPerTick {
			sigNames, partNames := stillChanging(signals, iterative)
			return OscillationError(s.tick, cycle, sigNames, partNames)
		}

		if err := s.pool.RunParts(s.tick, PhaseExecute, iterative); err != nil {
			return err
		}

		anyChanged := false
		for _, sig := range signals {
			changed, err := sig.settle(s.tick)
			if err != nil {
				return err
			}
			if changed {
				anyChanged = true
			}
		}
		if !anyChanged {
			return nil
		}
	}
}

// stillChanging names the signals that settled as changed on the delta
// cycle an oscillation was detected, and the parts still sensitive to them
// — the detail OscillationError reports instead of a bare cycle count.
func stillChanging(signals []node, parts []*Part) (sigNames, partNames []string) {
	for _, sig := range signals {
		if sig.peekChanged() {
			sigNames = append(sigNames, sig.name())
		}
	}
	for _, p := range parts {
		if p.sensitive() {
			partNames = append(partNames, p.Name())
		}
	}
	return sigNames, partNames
}
