// Package gcobj provides a reference Object implementation for the
// RCImmix heap core: a fixed-layout object with a slice of outgoing
// references and the capability bits internal/runtime requires. Real
// embedders (a language runtime's own object representation, tagged
// variants, vtables) would implement runtime.Object directly over their
// own layout instead — this package exists so the core is exercised by
// something concrete, the way a standalone mutator would use it.
package gcobj

import "github.com/orizon-lang/rcimmix/internal/runtime"

const rcMax = 1<<16 - 1

// Object is a reference implementation of runtime.Object. Its bookkeeping
// lives in ordinary Go fields rather than overlaid on raw mmap'd bytes:
// the core's capability interface (runtime.Object) never assumes a
// concrete memory layout, so a shadow struct keyed by address satisfies
// it without unsafe pointer arithmetic into collector-owned memory.
type Object struct {
	addr     uintptr
	size     uintptr
	children []runtime.Object

	rc      uint32
	pinned  bool
	logged  bool
	marked  bool
	hasMark bool
	forward runtime.Object
}

// New constructs an Object at addr with room for numChildren outgoing
// references, each nil until SetChild is called.
func New(addr uintptr, size uintptr, numChildren int) *Object {
	return &Object{
		addr:     addr,
		size:     size,
		children: make([]runtime.Object, numChildren),
	}
}

func (o *Object) Addr() uintptr       { return o.addr }
func (o *Object) ObjectSize() uintptr { return o.size }

func (o *Object) Children(fn func(index int, child runtime.Object) bool) {
	for i, c := range o.children {
		if c == nil {
			continue
		}

		if !fn(i, c) {
			return
		}
	}
}

func (o *Object) SetChild(index int, newRef runtime.Object) {
	if index < 0 || index >= len(o.children) {
		return
	}

	o.children[index] = newRef
}

func (o *Object) RCIncrement() bool {
	first := o.rc == 0
	if o.rc < rcMax {
		o.rc++
	}

	return first
}

func (o *Object) RCDecrement() bool {
	if o.rc == 0 {
		return false
	}

	o.rc--

	return o.rc == 0
}

func (o *Object) IsPinned() bool   { return o.pinned }
func (o *Object) SetPinned(p bool) { o.pinned = p }

func (o *Object) IsLogged() bool { return o.logged }

func (o *Object) SetLogged(v bool) bool {
	prior := o.logged
	o.logged = v

	return prior
}

func (o *Object) IsMarked(mark bool) bool {
	return o.hasMark && o.marked == mark
}

func (o *Object) SetMarked(mark bool) bool {
	prior := o.hasMark && o.marked == mark
	o.marked = mark
	o.hasMark = true

	return prior
}

func (o *Object) IsForwarded() (runtime.Object, bool) {
	if o.forward == nil {
		return nil, false
	}

	return o.forward, true
}

func (o *Object) SetForwarded(newRef runtime.Object) {
	o.forward = newRef
}

// RCCount exposes the current reference count for tests and diagnostics;
// it is not part of runtime.Object.
func (o *Object) RCCount() uint32 { return o.rc }
