package runtime

import "unsafe"

// Object is the capability set spec.md §3 requires of anything the heap
// manages. Concrete object layout (tagged variants, vtables, flat RTTI
// tables) is a collaborator concern — the core only ever calls through
// this interface, per spec.md §9's "polymorphism over object shape" note.
type Object interface {
	// Addr is the object's current heap address.
	Addr() uintptr

	// ObjectSize is the aligned byte size of the object, including header.
	ObjectSize() uintptr

	// Children iterates the object's outgoing references in index order.
	// The callback returning false stops iteration early.
	Children(func(index int, child Object) bool)

	// SetChild rewrites the i-th outgoing reference, used by both
	// collectors to patch up forwarded children.
	SetChild(index int, newRef Object)

	// RCIncrement saturates at a collector-chosen maximum and reports
	// whether this increment transitioned the count from zero to one.
	RCIncrement() bool
	// RCDecrement saturates at zero and reports whether this decrement
	// brought the count to zero.
	RCDecrement() bool

	// IsPinned / SetPinned implement spec.md invariant I5: pinned
	// objects are never evacuated and never reclaimed by decrement while
	// pinned.
	IsPinned() bool
	SetPinned(bool)

	// IsLogged / SetLogged implement the write barrier's coalescing log
	// (invariant I6): SetLogged returns the prior value so the barrier
	// can tell whether this is the first write since the last drain.
	IsLogged() bool
	SetLogged(bool) bool

	// IsMarked / SetMarked implement the bi-modal mark bit (invariant
	// I3). SetMarked returns the prior value so the Immix trace can tell
	// whether this is the first time the object has been reached this
	// cycle.
	IsMarked(mark bool) bool
	SetMarked(mark bool) bool

	// IsForwarded reports whether the object has already been evacuated
	// this collection, returning the forwarding target.
	IsForwarded() (Object, bool)
	// SetForwarded overlays a forwarding pointer on the object's old
	// body (spec.md §9: "forwarding pointers overlaid on object
	// payload").
	SetForwarded(newRef Object)
}

// TypeInfo provides the type metadata allocate needs to size a new object
// and decide whether it needs line-count bookkeeping at all. Reused from
// the teacher's region_alloc.go TypeInfo, trimmed to the fields the heap
// actually consults (field/method reflection metadata belongs to the
// embedder, not the collector).
type TypeInfo struct {
	ID uint32
	// Size is the object's aligned byte size, returned by ObjectSize once
	// the object exists; TypeInfo.Size is consulted before allocation,
	// while the object header is not yet written.
	Size uintptr
	// Alignment is the required start alignment in bytes.
	Alignment uintptr
	// HasPointers marks whether the object may contain outgoing
	// references; pointer-free (atomic) objects skip line-count
	// maintenance on the RC fast path in real RCImmix implementations,
	// though this core still maintains it uniformly for simplicity and
	// correctness.
	HasPointers bool
}

// blockBase implements spec.md invariant I1's block-base half: block base
// is p &^ (BlockSize-1).
func blockBase(p uintptr, blockSize int) uintptr {
	mask := uintptr(blockSize - 1)
	return p &^ mask
}

// addrToPointer turns a raw address into an unsafe.Pointer without the
// caller needing to import unsafe directly. Nothing in this module calls it.
func addrToPointer(addr uintptr) unsafe.Pointer {
	return unsafe.Pointer(addr) //nolint:govet // intentional address reconstruction
}
