package runtime

import "testing"

func newTestArena(t *testing.T, totalBlocks int) *BlockAllocator {
	t.Helper()

	cfg := DefaultConfig()

	ba, err := NewBlockAllocator(cfg, totalBlocks)
	if err != nil {
		t.Fatalf("NewBlockAllocator: %v", err)
	}

	return ba
}

func TestNormalAllocatorBumpsWithinBlock(t *testing.T) {
	ba := newTestArena(t, 4)

	na := NewNormalAllocator(DefaultLineSize,
		func() (*BlockInfo, bool) { return nil, false },
		func(*BlockInfo) {},
		ba.GetBlock,
	)

	addr1, blk1, ok := na.Allocate(16)
	if !ok {
		t.Fatalf("expected first allocation to succeed")
	}

	addr2, blk2, ok := na.Allocate(16)
	if !ok {
		t.Fatalf("expected second allocation to succeed")
	}

	if blk1 != blk2 {
		t.Fatalf("expected both small allocations to share the same block")
	}

	if addr2 != addr1+16 {
		t.Fatalf("expected bump allocation: addr1=%#x addr2=%#x", addr1, addr2)
	}
}

func TestNormalAllocatorOneHundredSmallObjects(t *testing.T) {
	// Boundary scenario 1: 100 objects of 16 bytes all land in one block.
	ba := newTestArena(t, 4)

	na := NewNormalAllocator(DefaultLineSize,
		func() (*BlockInfo, bool) { return nil, false },
		func(*BlockInfo) {},
		ba.GetBlock,
	)

	var firstBlock *BlockInfo

	for i := 0; i < 100; i++ {
		addr, blk, ok := na.Allocate(16)
		if !ok {
			t.Fatalf("allocation %d failed", i)
		}

		// The allocator only hands out addresses; line counts are kept by
		// the caller, the way ImmixSpace.tryAllocate does.
		blk.IncrementLines(addr, 16)

		if firstBlock == nil {
			firstBlock = blk
		} else if blk != firstBlock {
			t.Fatalf("expected all 100 objects in one block, object %d landed elsewhere", i)
		}
	}

	if firstBlock.lineCounters[1] < 1 {
		t.Fatalf("expected line 1 marked by objects 8 to 15")
	}
}

func TestOverflowAllocatorAlwaysFreshBlock(t *testing.T) {
	// Boundary scenario 2: two LINE_SIZE+1 allocations each land in a
	// fresh block, never chasing a hole.
	ba := newTestArena(t, 4)

	oa := NewOverflowAllocator(func(*BlockInfo) {}, ba.GetBlock)

	size := uintptr(DefaultLineSize + 1)

	_, blk1, ok := oa.Allocate(size)
	if !ok {
		t.Fatalf("expected first overflow allocation to succeed")
	}

	_, blk2, ok := oa.Allocate(size)
	if !ok {
		t.Fatalf("expected second overflow allocation to succeed")
	}

	if blk1 == blk2 {
		t.Fatalf("expected each overflow allocation in a fresh block")
	}
}

func TestEvacAllocatorFailsWithoutHeadroom(t *testing.T) {
	ea := NewEvacAllocator(func() (*BlockInfo, bool) { return nil, false })

	_, _, ok := ea.Allocate(16)
	if ok {
		t.Fatalf("expected evacuation allocation to fail with no headroom")
	}
}

func TestEvacAllocatorDrainsHeadroom(t *testing.T) {
	ba := newTestArena(t, 2)

	blk, err := ba.GetBlock()
	if err != nil {
		t.Fatalf("GetBlock: %v", err)
	}

	used := false
	ea := NewEvacAllocator(func() (*BlockInfo, bool) {
		if used {
			return nil, false
		}

		used = true

		return blk, true
	})

	addr, gotBlk, ok := ea.Allocate(16)
	if !ok {
		t.Fatalf("expected evac allocation to succeed from headroom")
	}

	if gotBlk != blk {
		t.Fatalf("expected evac block to be the supplied headroom block")
	}

	if addr != blk.Base {
		t.Fatalf("expected first evac allocation at block base, got %#x", addr)
	}
}
