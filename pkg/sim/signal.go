package sim

import "sync"

// equatable is satisfied by every value type a Signal can carry:
// logic4.Value and fixed.Fixed both implement Equal the same way. Declaring
// the constraint this way, instead of Go's builtin comparable, is needed
// because fixed.Fixed holds a slice and is therefore not comparable with
// ==.
type equatable[T any] interface {
	Equal(T) bool
}

// Resolver reduces a set of simultaneous drives on a single tick into one
// committed value, or reports a conflict. logic4.Resolve is wrapped for
// Signal[logic4.Value]; most other payloads pass nil and rely on
// single-driver mode.
type Resolver[T any] func(values []T) (T, error)

type pendingDrive[T any] struct {
	value T
	part  string
}

// Signal is a single named net carrying a value of type T (logic4.Value,
// a Bus, or fixed.Fixed). It is the generic implementation behind the
// type-erased node interface the Registry and Simulator operate on.
//
// The original C++ implementation attributes a drive() call to "whichever
// part is currently updating" via thread-local storage set up by a macro
// around Part::update(). Go has no thread-local storage, and — more to the
// point — doesn't need the workaround: Signal.Drive simply takes the
// driving *Part as an explicit argument. A Part's generated Update method
// already has its own receiver in scope, so attribution falls out of
// ordinary parameter passing instead of hidden per-goroutine state.
type Signal[T equatable[T]] struct {
	reg      *Registry
	nm       string
	resolver Resolver[T]
	opts     Options

	mu      sync.Mutex
	cur     T
	initial T
	pending []pendingDrive[T]
	changed bool
	seenBy  map[*Part]bool
}

// NewSignal registers and returns a new signal with the given initial
// value. An empty name gets an auto-generated one from the registry
// (SPEC_FULL.md §9). resolver may be nil, in which case more than one
// drive in the same delta cycle is a short circuit when opts.DebugDriverCheck
// is set, and otherwise the last drive wins.
func NewSignal[T equatable[T]](reg *Registry, opts Options, name string, initial T, resolver Resolver[T]) *Signal[T] {
	if name == "" {
		name = reg.nextAnonymousName()
	}
	s := &Signal[T]{reg: reg, nm: name, resolver: resolver, opts: opts, cur: initial, initial: initial}
	reg.trackSignal(s)
	return s
}

func (s *Signal[T]) Name() string { return s.nm }
func (s *Signal[T]) name() string { return s.nm }

// Read returns the value committed as of the most recent settled tick (or
// delta cycle, mid-tick).
func (s *Signal[T]) Read() T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cur
}

// Drive queues value as p's contribution for the next commit.
func (s *Signal[T]) Drive(p *Part, value T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queueLocked(value, p.Name())
}

// Force queues value as an external (testbench) drive, exactly like Drive
// but without requiring a Part — the usual way a test or cmd/hdlsim's `run`
// command sets primary inputs before or during a simulation.
func (s *Signal[T]) Force(value T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queueLocked(value, "testbench")
}

// queueLocked records a pending drive. Outside of debug mode and legitimate
// multi-driver resolution, spec.md §3 describes the pending value as "a
// single slot": a second driver silently overwrites the first instead of
// being recorded alongside it, so settle never even sees more than one
// candidate to conflict over. Debug mode (or a resolver-backed multi-driver
// signal, which genuinely needs every value to resolve) keeps the full
// list, which is what lets settle detect and report a conflict at all.
func (s *Signal[T]) queueLocked(value T, driver string) {
	d := pendingDrive[T]{value: value, part: driver}
	if !s.opts.DebugDriverCheck && !(s.opts.MultiDriver && s.resolver != nil) {
		s.pending = s.pending[:0]
	}
	s.pending = append(s.pending, d)
}

// Event reports whether the signal's value changed on the most recent
// settle — the edge a sequential Part's Update checks to decide whether to
// react. Each part sees its own view of the edge: the first call after a
// commit returns true and marks it seen for p; a second call by the same p
// before the next commit returns false, so a part that happens to query the
// same signal twice within one Update doesn't double-react to it. A
// different part that hasn't queried yet still sees true.
func (s *Signal[T]) Event(p *Part) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.changed {
		return false
	}
	if s.seenBy == nil {
		s.seenBy = make(map[*Part]bool)
	}
	if s.seenBy[p] {
		return false
	}
	s.seenBy[p] = true
	return true
}

// peekChanged reports whether the signal changed on the most recent settle,
// without consuming any part's view of the edge. The propagator's scheduler
// uses this (via the peekEventer interface) to decide whether a Part is
// worth re-evaluating at all, leaving the actual per-part Event query for
// the Part's own Update body to consume.
func (s *Signal[T]) peekChanged() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.changed
}

func namesOf[T any](pending []pendingDrive[T]) []string {
	out := make([]string, len(pending))
	for i, p := range pending {
		out[i] = p.part
	}
	return out
}

// settle resolves this delta cycle's pending drives into cur. It is called
// by the propagator once per delta cycle for every registered signal; a
// signal with no pending drive just clears its changed flag.
func (s *Signal[T]) settle(tick uint64) (bool, *RunError) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.pending) == 0 {
		s.changed = false
		return false, nil
	}

	var next T
	switch {
	case len(s.pending) == 1:
		next = s.pending[0].value
	case s.opts.MultiDriver && s.resolver != nil:
		values := make([]T, len(s.pending))
		for i, d := range s.pending {
			values[i] = d.value
		}
		v, err := s.resolver(values)
		if err != nil {
			re := &RunError{Tick: tick, Phase: PhaseCommit, Signal: s.nm, Err: err}
			if s.opts.DebugDriverCheck {
				re.Drivers = namesOf(s.pending)
			}
			s.pending = s.pending[:0]
			return false, re
		}
		next = v
	default:
		re := ShortCircuitError(tick, s.nm, namesOf(s.pending))
		s.pending = s.pending[:0]
		return false, re
	}

	changed := !s.cur.Equal(next)
	s.cur = next
	s.pending = s.pending[:0]
	s.changed = changed
	s.seenBy = nil
	return changed, nil
}

// primeFirst implements the first-tick special case (SPEC_FULL.md §11,
// Open Question 1): on the very first tick, a signal whose value was set
// before Run started — either because its constructor's initial value was
// overridden, or because a testbench drove it ahead of time — should look
// like it just changed, so sensitive sequential parts see it as an edge
// instead of silently missing the first transition. A signal with pending
// testbench drives settles those normally; one with none simply compares
// its current value against the value it was constructed with.
func (s *Signal[T]) primeFirst(tick uint64) *RunError {
	s.mu.Lock()
	if len(s.pending) == 0 {
		s.changed = !s.cur.Equal(s.initial)
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()
	_, err := s.settle(tick)
	return err
}
