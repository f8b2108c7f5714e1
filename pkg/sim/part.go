package sim

// Eventer is the exported half of node: anything a Part's sensitivity list
// can name. *Signal[T] satisfies it for any T. Kept separate from the
// unexported node interface (which also needs settle/primeFirst, internal
// to the propagator) because sensitivity lists are built by code outside
// this package — pkg/stdlib's parts, for instance — which can only
// implement or reference exported interfaces.
//
// Event takes the querying Part so a signal can track which parts have
// already consumed its current edge: the same part asking twice about the
// same settle sees true then false, but a second, not-yet-asked part still
// sees true.
type Eventer interface {
	Event(p *Part) bool
}

// UpdateFunc is a part's combinational or sequential body: read whatever
// signals it needs via Signal.Read, decide what to drive, and call
// Signal.Drive. It receives the part itself so it can pass it straight
// through to Drive/Event calls, and the current tick for logging/
// diagnostics.
type UpdateFunc func(p *Part, tick uint64) error

// Part is a single block of logic: combinational parts recompute every
// delta cycle their sensitivity list fires, sequential parts typically
// gate their body on a clock signal's Event(p) and otherwise do nothing.
// stdlib's register/adder/counter/etc. are all ordinary Parts built with
// New.
//
// A Part built with Testbench is different: it is the netlist's
// distinguished external driver of primary inputs, and the propagator runs
// it exactly once per tick, before delta-cycle propagation starts, instead
// of re-evaluating it every delta cycle like an ordinary Part with an empty
// sensitivity list. See runOneTick in propagator.go.
type Part struct {
	reg         *Registry
	nm          string
	sensitivity []Eventer
	fn          UpdateFunc
	testbench   bool
}

// New constructs and registers a Part. sensitivity lists the signals whose
// change (settle-detected Event) should cause the propagator to invoke fn
// again within the current tick; an empty sensitivity list means fn is
// evaluated on every delta cycle, regardless of which signals changed.
func New(reg *Registry, name string, sensitivity []Eventer, fn UpdateFunc) *Part {
	p := &Part{reg: reg, nm: name, sensitivity: sensitivity, fn: fn}
	reg.trackPart(p)
	return p
}

// Testbench constructs and registers the netlist's testbench: the part
// responsible for driving primary inputs (clocks, resets, stimulus) from
// outside the circuit under simulation. Unlike an ordinary Part, it is run
// exactly once per tick rather than once per delta cycle, so it never needs
// to guard against retoggling its own outputs within a tick the way a
// free-running Part with an empty sensitivity list would (spec.md §4.6).
func Testbench(reg *Registry, name string, fn UpdateFunc) *Part {
	p := &Part{reg: reg, nm: name, fn: fn, testbench: true}
	reg.trackPart(p)
	return p
}

func (p *Part) Name() string { return p.nm }
func (p *Part) name() string { return p.nm }

// IsTestbench reports whether p was constructed with Testbench rather than
// New.
func (p *Part) IsTestbench() bool { return p.testbench }

// peekEventer is satisfied by every *Signal[T]: a non-consuming look at
// whether the signal changed on the most recent settle, used only by the
// scheduler below so that deciding whether a part is worth re-evaluating
// doesn't itself consume the part's one allotted Event query for that edge
// — the part's own Update body still gets a true the first time it calls
// Event.
type peekEventer interface {
	peekChanged() bool
}

// sensitive reports whether any signal in p's sensitivity list changed on
// the most recent settle — or true unconditionally if p has no sensitivity
// list. This is a scheduling decision, not a query on p's behalf, so it
// peeks rather than consuming the signal's per-part Event state.
func (p *Part) sensitive() bool {
	if len(p.sensitivity) == 0 {
		return true
	}
	for _, s := range p.sensitivity {
		if pk, ok := s.(peekEventer); ok {
			if pk.peekChanged() {
				return true
			}
			continue
		}
		if s.Event(p) {
			return true
		}
	}
	return false
}

func (p *Part) update(tick uint64) error {
	if p.fn == nil {
		return nil
	}
	return p.fn(p, tick)
}
