package runtime

import "testing"

func TestEstablishHoleThresholdEmptyWithoutHeadroomReturnsZero(t *testing.T) {
	const numLines = 8

	h := newHoleHistogram(numLines)
	// No unavailable blocks recorded and no headroom: nothing to evacuate
	// into. available (0) <= required (0) already at t=0, so the result is
	// 0, which prepareCollection treats as "do not evacuate".

	got := h.establishHoleThreshold(numLines, 0)
	if got != 0 {
		t.Fatalf("expected threshold 0 with no headroom, got %d", got)
	}
}

func TestEstablishHoleThresholdZeroHeadroomNeverEvacuates(t *testing.T) {
	const numLines = 8

	h := newHoleHistogram(numLines)
	// Plenty of fragmentation, but no headroom blocks to evacuate into.
	h.record(2, 6, 2)
	h.record(4, 2, 6)

	// With zero headroom the walk stops at t=0; prepareCollection only
	// evacuates for a threshold strictly between 0 and numLines.
	got := h.establishHoleThreshold(numLines, 0)
	if got != 0 {
		t.Fatalf("expected threshold 0 (no evacuation) with zero headroom, got %d", got)
	}
}

func TestEstablishHoleThresholdFindsLowestSatisfyingBucket(t *testing.T) {
	const numLines = 8

	h := newHoleHistogram(numLines)

	// One block with 2 holes, 6 marked lines.
	h.record(2, 6, 2)
	// One block with 4 holes, 2 marked lines, more free space.
	h.record(4, 2, 6)

	// One headroom block's worth of destination capacity (7 lines).
	// t=0,1: required 0, available 7. t=2: required 6, available 5, so
	// bucket 2 is the first where available <= required.
	got := h.establishHoleThreshold(numLines, numLines-1)
	if got != 2 {
		t.Fatalf("expected threshold 2, got %d", got)
	}
}

func TestEstablishHoleThresholdMonotoneWithMoreFragmentation(t *testing.T) {
	const numLines = 16

	sparse := newHoleHistogram(numLines)
	sparse.record(1, 15, 1)

	dense := newHoleHistogram(numLines)
	dense.record(1, 15, 1)
	dense.record(8, 1, 15)

	headroomLines := 2 * (numLines - 1)

	tSparse := sparse.establishHoleThreshold(numLines, headroomLines)
	tDense := dense.establishHoleThreshold(numLines, headroomLines)

	if tDense > tSparse {
		t.Fatalf("expected more available space to never raise the threshold: sparse=%d dense=%d", tSparse, tDense)
	}
}

func TestEstablishHoleThresholdMoreHeadroomNeverRaisesThreshold(t *testing.T) {
	const numLines = 16

	h := func() *holeHistogram {
		hh := newHoleHistogram(numLines)
		hh.record(1, 15, 1)
		hh.record(8, 4, 12)

		return hh
	}

	tSmall := h().establishHoleThreshold(numLines, 1*(numLines-1))
	tLarge := h().establishHoleThreshold(numLines, 4*(numLines-1))

	if tLarge > tSmall {
		t.Fatalf("expected more headroom to never raise the threshold: small=%d large=%d", tSmall, tLarge)
	}
}
