package sim

import (
	"fmt"
	"sync"
)

// node is the type-erased capability every concrete Signal[T] satisfies, so
// a Registry and Simulator can hold heterogeneous signals without generic
// parameters leaking into the propagator. See signal.go.
type node interface {
	name() string
	settle(tick uint64) (changed bool, err *RunError)
	primeFirst(tick uint64) *RunError
	peekChanged() bool
}

// Registry tracks every Signal and Part created against it, in the order
// they were constructed, so a Simulator can iterate them deterministically,
// and auto-names unnamed signals from a running count of unnamed signals
// (named signals do not advance it). Parts don't need the
// same type-erasure treatment as signals — there's only ever one concrete
// Part type — so the registry just holds *Part directly.
type Registry struct {
	mu      sync.Mutex
	signals []node
	parts   []*Part
	anon    int
}

// NewRegistry returns an empty Registry. A Simulator owns exactly one.
func NewRegistry() *Registry {
	return &Registry{}
}

func (r *Registry) trackSignal(n node) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.signals = append(r.signals, n)
}

func (r *Registry) trackPart(p *Part) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.parts = append(r.parts, p)
}

// nextAnonymousName returns a stable auto-generated name ("sig0", "sig1", ...)
// for a signal constructed without an explicit name, per SPEC_FULL.md §9.
func (r *Registry) nextAnonymousName() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := r.anon
	r.anon++
	return fmt.Sprintf("sig%d", n)
}

// Signals returns every signal tracked by the registry, in construction
// order.
func (r *Registry) Signals() []node {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]node, len(r.signals))
	copy(out, r.signals)
	return out
}

// Parts returns every part tracked by the registry, in construction order.
func (r *Registry) Parts() []*Part {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Part, len(r.parts))
	copy(out, r.parts)
	return out
}

// Cleanup drops every tracked signal and part. Registered with
// tebeka/atexit by cmd/hdlsim so a process that builds a netlist and exits
// without an explicit Close doesn't leak the registry's references.
func (r *Registry) Cleanup() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.signals = nil
	r.parts = nil
}
