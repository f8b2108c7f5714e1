package sim

import "fmt"

// Phase identifies which stage of the delta-cycle loop a RunError occurred
// in, so a report can point at "commit" vs. "execute" vs. "settle" without
// the caller re-deriving it from a stack trace.
type Phase string

const (
	PhaseExecute     Phase = "execute"
	PhaseCommit      Phase = "commit"
	PhaseSettle      Phase = "settle"
	PhaseConstructor Phase = "constructor"
)

// RunError is a structured, fatal simulation error: a short-circuit
// (conflicting drivers on a single-driver signal), an oscillating net that
// never settles within the configured delta-cycle bound, or a value-domain
// violation surfaced from a Part's Update. It names the tick, phase, and
// offending signal/part so a caller can report it without grepping logs.
type RunError struct {
	Tick   uint64
	Phase  Phase
	Signal string
	Part   string
	Err    error

	// Drivers lists the parts that attributed a conflicting drive to
	// Signal in the same tick. Populated only when Options.DebugDriverCheck
	// is enabled; empty otherwise.
	Drivers []string

	// Signals and Parts name the signals still changing, and the parts
	// still sensitive to them, on the delta cycle an oscillation was
	// detected. Populated only by OscillationError.
	Signals []string
	Parts   []string
}

func (e *RunError) Error() string {
	switch {
	case len(e.Signals) > 0:
		return fmt.Sprintf("tick %d [%s]: signals %v still changing (parts %v): %v", e.Tick, e.Phase, e.Signals, e.Parts, e.Err)
	case e.Signal != "" && len(e.Drivers) > 0:
		return fmt.Sprintf("tick %d [%s]: signal %q driven by %v: %v", e.Tick, e.Phase, e.Signal, e.Drivers, e.Err)
	case e.Signal != "" && e.Part != "":
		return fmt.Sprintf("tick %d [%s]: signal %q (part %q): %v", e.Tick, e.Phase, e.Signal, e.Part, e.Err)
	case e.Signal != "":
		return fmt.Sprintf("tick %d [%s]: signal %q: %v", e.Tick, e.Phase, e.Signal, e.Err)
	case e.Part != "":
		return fmt.Sprintf("tick %d [%s]: part %q: %v", e.Tick, e.Phase, e.Part, e.Err)
	default:
		return fmt.Sprintf("tick %d [%s]: %v", e.Tick, e.Phase, e.Err)
	}
}

func (e *RunError) Unwrap() error { return e.Err }

// OscillationError reports that a signal set never settled within the
// configured MaxDeltaCyclesPerTick. signals and parts name the nets still
// changing and the parts still sensitive to them on the final delta cycle,
// so a caller can point at the offending feedback loop instead of just a
// cycle count.
func OscillationError(tick uint64, cycles int, signals, parts []string) *RunError {
	return &RunError{
		Tick:    tick,
		Phase:   PhaseSettle,
		Signals: signals,
		Parts:   parts,
		Err:     fmt.Errorf("did not settle within %d delta cycles", cycles),
	}
}

// ShortCircuitError reports two or more single-driver-mode drives landing
// on the same signal in one tick.
func ShortCircuitError(tick uint64, signal string, drivers []string) *RunError {
	return &RunError{
		Tick:    tick,
		Phase:   PhaseCommit,
		Signal:  signal,
		Drivers: drivers,
		Err:     fmt.Errorf("multiple drivers in single-driver mode"),
	}
}
