package runtime

import (
	"testing"

	"github.com/orizon-lang/rcimmix/internal/gcobj"
)

func TestImmixCollectorMarksReachableGraph(t *testing.T) {
	ic := NewImmixCollector()
	space := newFakeSpace()

	root := gcobj.New(0x1000, 16, 1)
	child := gcobj.New(0x2000, 16, 0)
	root.SetChild(0, child)

	ic.Collect(space, false, true, []Object{root})

	if !root.IsMarked(true) {
		t.Fatalf("expected root marked")
	}

	if !child.IsMarked(true) {
		t.Fatalf("expected child marked via traversal")
	}

	if root.IsPinned() {
		t.Fatalf("expected root unpinned after trace completes")
	}

	if space.lineDeltas[root.Addr()] != 1 || space.lineDeltas[child.Addr()] != 1 {
		t.Fatalf("expected both objects' lines incremented exactly once")
	}
}

func TestImmixCollectorDoesNotRevisitMarkedObjects(t *testing.T) {
	ic := NewImmixCollector()
	space := newFakeSpace()

	// A <-> B cycle: both reference each other.
	a := gcobj.New(0x1000, 16, 1)
	b := gcobj.New(0x2000, 16, 1)
	a.SetChild(0, b)
	b.SetChild(0, a)

	ic.Collect(space, false, true, []Object{a})

	if space.lineDeltas[a.Addr()] != 1 {
		t.Fatalf("expected A visited exactly once despite the cycle, delta=%d", space.lineDeltas[a.Addr()])
	}

	if space.lineDeltas[b.Addr()] != 1 {
		t.Fatalf("expected B visited exactly once despite the cycle, delta=%d", space.lineDeltas[b.Addr()])
	}
}

func TestImmixCollectorRewritesForwardedChildren(t *testing.T) {
	ic := NewImmixCollector()
	space := newFakeSpace()

	holder := gcobj.New(0x1000, 16, 1)
	oldChild := gcobj.New(0x2000, 16, 0)
	newChild := gcobj.New(0x9000, 16, 0)

	oldChild.SetForwarded(newChild)
	holder.SetChild(0, oldChild)

	ic.Collect(space, false, true, []Object{holder})

	var got Object
	holder.Children(func(_ int, c Object) bool {
		got = c
		return true
	})

	if got.Addr() != newChild.Addr() {
		t.Fatalf("expected holder's child rewritten to the forwarding target, got addr=%#x", got.Addr())
	}
}

func TestImmixCollectorEvacuatesWhenEnabled(t *testing.T) {
	ic := NewImmixCollector()
	space := newFakeSpace()

	relocated := gcobj.New(0x8000, 16, 0)
	space.evacuate = func(o Object) (Object, bool) {
		return relocated, true
	}

	holder := gcobj.New(0x1000, 16, 1)
	child := gcobj.New(0x2000, 16, 0)
	holder.SetChild(0, child)

	ic.Collect(space, true, true, []Object{holder})

	var got Object
	holder.Children(func(_ int, c Object) bool {
		got = c
		return true
	})

	if got.Addr() != relocated.Addr() {
		t.Fatalf("expected holder's child rewritten to the evacuated address")
	}
}
