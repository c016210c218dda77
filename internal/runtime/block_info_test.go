package runtime

import "testing"

func testBlockInfo(t *testing.T) *BlockInfo {
	t.Helper()

	cfg := DefaultConfig()

	return newBlockInfo(0x1000000, cfg)
}

func TestBlockInfoScanBlockEmpty(t *testing.T) {
	bi := testBlockInfo(t)

	low, high, ok := bi.ScanBlock(0)
	if !ok {
		t.Fatalf("expected a hole in an empty block")
	}

	if low != 0 {
		t.Fatalf("expected hole to start at 0, got %d", low)
	}

	if high != uintptr(bi.numLines()*bi.lineSize) {
		t.Fatalf("expected hole to span the whole block, got high=%d", high)
	}
}

func TestBlockInfoIncrementDecrementLines(t *testing.T) {
	bi := testBlockInfo(t)

	addr := bi.Base
	size := uintptr(16)

	bi.IncrementLines(addr, size)

	holes, marked := bi.CountHolesAndMarkedLines()
	if marked != 1 {
		t.Fatalf("expected 1 marked line, got %d", marked)
	}

	if holes != 1 {
		t.Fatalf("expected 1 hole (the rest of the block), got %d", holes)
	}

	bi.DecrementLines(addr, size)

	_, marked = bi.CountHolesAndMarkedLines()
	if marked != 0 {
		t.Fatalf("expected 0 marked lines after decrement, got %d", marked)
	}
}

func TestBlockInfoLineCounterSaturates(t *testing.T) {
	bi := testBlockInfo(t)

	addr := bi.Base

	for i := 0; i < 300; i++ {
		bi.IncrementLines(addr, 1)
	}

	if bi.lineCounters[0] != 255 {
		t.Fatalf("expected line counter to saturate at 255, got %d", bi.lineCounters[0])
	}

	bi.DecrementLines(addr, 1)

	if bi.lineCounters[0] != 255 {
		t.Fatalf("expected a saturated counter to never decrement, got %d", bi.lineCounters[0])
	}
}

func TestBlockInfoScanBlockReservesGuardLine(t *testing.T) {
	bi := testBlockInfo(t)

	// Mark line 0, leave the rest free. The hole must start at line 2,
	// not line 1: line 1 is reserved as a guard since an object in line 0
	// may have overflowed into it.
	bi.lineCounters[0] = 1

	low, _, ok := bi.ScanBlock(0)
	if !ok {
		t.Fatalf("expected a hole after the marked line")
	}

	if int(low)/bi.lineSize != 2 {
		t.Fatalf("expected hole to start at line 2 (guard reserved), got line %d", int(low)/bi.lineSize)
	}
}

func TestBlockInfoScanBlockMonotonic(t *testing.T) {
	bi := testBlockInfo(t)

	bi.lineCounters[0] = 1
	bi.lineCounters[5] = 1

	_, high1, ok := bi.ScanBlock(0)
	if !ok {
		t.Fatalf("expected first hole")
	}

	_, high2, ok := bi.ScanBlock(high1)
	if !ok {
		t.Fatalf("expected second hole")
	}

	if high2 < high1 {
		t.Fatalf("scan_block must advance monotonically: high1=%d high2=%d", high1, high2)
	}
}

func TestBlockInfoEvacuationCandidate(t *testing.T) {
	bi := testBlockInfo(t)

	bi.lineCounters[0] = 1 // one marked line, rest free -> 1 hole

	bi.SetEvacuationCandidate(1)
	if !bi.IsEvacuationCandidate() {
		t.Fatalf("expected block to become an evacuation candidate at threshold 1")
	}

	bi.SetEvacuationCandidate(5)
	if bi.IsEvacuationCandidate() {
		t.Fatalf("expected block to not be a candidate at a higher threshold than its hole count")
	}
}

func TestBlockInfoIsEmptyAndReset(t *testing.T) {
	bi := testBlockInfo(t)

	bi.IncrementLines(bi.Base, 16)
	bi.RegisterObject(bi.Base)

	if bi.IsEmpty() {
		t.Fatalf("expected block with a live object to not be empty")
	}

	bi.Reset()

	if !bi.IsEmpty() {
		t.Fatalf("expected block to be empty after reset")
	}

	if bi.Flags != BlockFlagNone {
		t.Fatalf("expected flags cleared after reset, got %v", bi.Flags)
	}
}
