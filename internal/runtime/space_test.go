package runtime

import (
	"testing"

	"github.com/orizon-lang/rcimmix/internal/gcobj"
)

func newTestSpace(t *testing.T, totalBlocks int, roots func() []Object) *ImmixSpace {
	t.Helper()

	cfg := DefaultConfig()
	cfg.EvacHeadroom = 1

	newObj := func(addr uintptr, rtti TypeInfo) Object {
		return gcobj.New(addr, rtti.Size, 4)
	}

	scanner := RootScannerFunc(func(*ImmixSpace) []Object {
		if roots == nil {
			return nil
		}

		return roots()
	})

	sp, err := NewImmixSpace(cfg, totalBlocks, newObj, scanner, nil)
	if err != nil {
		t.Fatalf("NewImmixSpace: %v", err)
	}

	return sp
}

func TestImmixSpaceAllocateSmallObject(t *testing.T) {
	sp := newTestSpace(t, 8, nil)

	obj, ok := sp.Allocate(TypeInfo{Size: 16})
	if !ok {
		t.Fatalf("expected allocation to succeed")
	}

	if !sp.IsInSpace(obj.Addr()) {
		t.Fatalf("expected allocated object's address to be in space")
	}
}

func TestImmixSpaceAllocateOOMAfterExhaustion(t *testing.T) {
	// Boundary scenario 6: a tiny region, filled with pinned objects,
	// then one more allocation forces a collection and still fails.
	sp := newTestSpace(t, 4, func() []Object { return nil })

	var allocated []Object

	for {
		obj, ok := sp.Allocate(TypeInfo{Size: uintptr(DefaultLineSize + 1)})
		if !ok {
			break
		}

		obj.SetPinned(true)
		allocated = append(allocated, obj)

		if len(allocated) > 1000 {
			t.Fatalf("allocation did not exhaust the region as expected")
		}
	}

	if len(allocated) == 0 {
		t.Fatalf("expected at least one successful allocation before exhaustion")
	}

	stats := sp.Stats()
	if stats.OOMEvents == 0 {
		t.Fatalf("expected an OOM event to be recorded")
	}
}

func TestImmixSpaceCollectReclaimsUnreachableCycle(t *testing.T) {
	// Boundary scenario 4: A -> B -> A cycle with no external roots.
	// RC alone cannot reclaim it; the Immix pass must.
	sp := newTestSpace(t, 8, func() []Object { return nil })

	a, ok := sp.Allocate(TypeInfo{Size: 16})
	if !ok {
		t.Fatalf("allocate A")
	}

	b, ok := sp.Allocate(TypeInfo{Size: 16})
	if !ok {
		t.Fatalf("allocate B")
	}

	a.SetChild(0, b)
	b.SetChild(0, a)
	sp.WriteBarrier(a)
	sp.WriteBarrier(b)

	sp.Collect(false, false)

	blockA := sp.blocks.BlockInfoFor(a.Addr())

	sp.Collect(false, true)

	_, marked := blockA.CountHolesAndMarkedLines()
	if marked != 0 {
		t.Fatalf("expected the cycle's lines to drop to 0 after a cycle-collecting pass")
	}
}

func TestImmixSpaceHeadroomNeverExceedsConfiguredLimit(t *testing.T) {
	// Law L4: headroom.len() <= EVAC_HEADROOM after any collection.
	sp := newTestSpace(t, 8, func() []Object { return nil })

	sp.Collect(true, true)

	if sp.HeadroomLen() > sp.cfg.EvacHeadroom {
		t.Fatalf("expected headroom <= %d, got %d", sp.cfg.EvacHeadroom, sp.HeadroomLen())
	}
}

func TestImmixSpaceNoLeakOnEmptyRootSet(t *testing.T) {
	// Law L5: after collect(true,true) with empty roots, every
	// non-pinned block returns to the BlockAllocator eventually.
	sp := newTestSpace(t, 8, func() []Object { return nil })

	for i := 0; i < 4; i++ {
		_, ok := sp.Allocate(TypeInfo{Size: 16})
		if !ok {
			t.Fatalf("allocate %d", i)
		}
	}

	before := sp.blocks.AvailableBlocks()

	sp.Collect(true, true)

	after := sp.blocks.AvailableBlocks()
	if after < before {
		t.Fatalf("expected no net leak of blocks after a full collection with no roots: before=%d after=%d", before, after)
	}
}
