package runtime

// RootScanner is the external collaborator spec.md §6 requires for
// conservative root enumeration: it must return every pointer-like word in
// the mutator's stacks and saved registers that falls inside the space's
// managed address range. Implementations must not run during a collection
// iteration — EnumerateRoots is called once, at the very start of collect,
// before any mutation of collector state.
//
// The core never implements this itself (§1 lists root enumeration as
// out of scope); a hand-written go.uber.org/mock-style fake
// (mockruntime/mocks.go) stands in for it in tests, see
// mockruntime_test.go.
type RootScanner interface {
	EnumerateRoots(space *ImmixSpace) []Object
}

// RootScannerFunc adapts a plain function to RootScanner, the way
// http.HandlerFunc adapts a function to http.Handler — convenient for
// embedders and tests that have no state to carry beyond a closure.
type RootScannerFunc func(space *ImmixSpace) []Object

func (f RootScannerFunc) EnumerateRoots(space *ImmixSpace) []Object {
	return f(space)
}

// LargeObjectSpace is the external collaborator for objects too large to
// live in an Immix block. Large objects are allocated and freed outside
// this core, but the RC pass still increments/decrements them like any
// other object.
type LargeObjectSpace interface {
	// GetNewObjects returns large objects allocated since the last
	// collection, for process_los_new_objects.
	GetNewObjects() []Object
	// IsGCObject reports whether o is currently tracked as live by this
	// large-object space.
	IsGCObject(o Object) bool
	// EnqueueFree marks o for deallocation once the RC pass has fully
	// drained references to it.
	EnqueueFree(o Object)
}

// gcSpace is the subset of ImmixSpace's API the RC and Immix collectors
// depend on, isolated into an interface so rc_collector.go and
// immix_collector.go can be tested against a fake space without dragging
// in the full orchestrator. ImmixSpace satisfies this directly.
type gcSpace interface {
	// IsInImmixSpace reports whether obj is a block-managed (as opposed
	// to large) object.
	IsInImmixSpace(obj Object) bool
	// IsGCObject reports whether obj currently carries the space's
	// live-tracking bit.
	IsGCObject(obj Object) bool
	// SetGCObject sets or clears that bit.
	SetGCObject(obj Object, live bool)
	// IncrementLines / DecrementLines adjust the owning block's line
	// counters for obj's span.
	IncrementLines(obj Object)
	DecrementLines(obj Object)
	// MaybeEvacuate attempts to relocate obj per spec.md §4.6; ok=false
	// means evacuation did not happen (pinned, not a candidate block, or
	// no headroom left).
	MaybeEvacuate(obj Object) (Object, bool)
}
