package runtime

// holeHistogram accumulates two parallel buckets over the unavailable
// block set, indexed by hole count: markHistogram[t] is the number of
// marked (live) lines contributed by blocks with exactly t holes, and
// availableHistogram[t] is the number of free lines contributed by blocks
// with exactly t holes. establishHoleThreshold walks both to find the lowest
// threshold that leaves enough available space for the live lines it
// would have to relocate.
//
// Grounded conceptually on the teacher's CompactionGain fragmentation-
// ratio estimation in the (now removed) compaction.go — same "decide
// whether compacting is worth it from an aggregate fragmentation
// statistic" idea — but the teacher's implementation built per-region
// byte-offset free lists rather than a per-block-hole-count histogram, so
// none of its code transfers; see DESIGN.md.
type holeHistogram struct {
	markHistogram      []int
	availableHistogram []int
}

func newHoleHistogram(numLinesPerBlock int) *holeHistogram {
	return &holeHistogram{
		markHistogram:      make([]int, numLinesPerBlock+1),
		availableHistogram: make([]int, numLinesPerBlock+1),
	}
}

// record folds one unavailable block's sweep result into the histogram:
// holes is its hole count (used as the bucket index), marked and free are
// its marked/available line counts.
func (h *holeHistogram) record(holes, marked, free int) {
	if holes >= len(h.markHistogram) {
		holes = len(h.markHistogram) - 1
	}

	h.markHistogram[holes] += marked
	h.availableHistogram[holes] += free
}

// establishHoleThreshold implements spec.md §4.6 and mirrors the original's
// establish_hole_threshhold (original_source/src/spaces/immix_space/mod.rs):
// available starts as the evac-headroom's actual destination capacity
// (headroomLines, i.e. headroom block count * (numLinesPerBlock-1), not any
// property of the candidate blocks themselves), then the walk from bucket 0
// to numLinesPerBlock accumulates required lines (projected to stay live)
// and subtracts each bucket's available-line contribution; return the first
// t for which available <= required. Returns numLinesPerBlock if never
// satisfied, which happens only when headroomLines exceeds the recorded
// marked and free lines combined. With zero headroom the condition already
// holds at t=0, so the result is 0. The caller evacuates only for a result
// strictly between 0 and numLinesPerBlock.
func (h *holeHistogram) establishHoleThreshold(numLinesPerBlock, headroomLines int) int {
	required := 0
	available := headroomLines

	for t := 0; t <= numLinesPerBlock; t++ {
		required += h.markHistogram[t]
		available -= h.availableHistogram[t]

		if available <= required {
			return t
		}
	}

	return numLinesPerBlock
}
