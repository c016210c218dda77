package runtime

// ImmixCollector implements the tracing mark closure spec.md §4.5
// describes: a breadth-first trace from pinned roots that rewrites
// forwarded children as it walks and, when evacuation is enabled, may
// itself relocate objects it discovers. Grounded on the teacher's
// MarkAndSweepCompactor mark phase in compaction.go, adapted from a
// generic mark-and-sweep pass into the RCImmix-specific forwarding-aware
// closure.
type ImmixCollector struct {
	queue []Object
}

// NewImmixCollector constructs an empty ImmixCollector; its queue is
// reused (truncated, not reallocated) across collections.
func NewImmixCollector() *ImmixCollector {
	return &ImmixCollector{}
}

// Collect runs one tracing pass over roots, flipping the mark sense to
// nextLiveMark. perform_evac enables opportunistic relocation of newly
// discovered children via space.MaybeEvacuate. Ordering must be FIFO
// (breadth-first): depth-first traversal can deepen reference chains
// evacuated before their holders' members are rewritten, risking stale
// children (spec.md §4.5).
func (ic *ImmixCollector) Collect(space gcSpace, performEvac bool, nextLiveMark bool, roots []Object) {
	ic.queue = ic.queue[:0]

	for _, root := range roots {
		root.SetPinned(true)
		ic.queue = append(ic.queue, root)
	}

	for len(ic.queue) > 0 {
		obj := ic.queue[0]
		ic.queue = ic.queue[1:]

		if obj.SetMarked(nextLiveMark) {
			// Already marked this cycle; nothing further to do.
			continue
		}

		space.SetGCObject(obj, true)
		space.IncrementLines(obj)

		obj.Children(func(i int, child Object) bool {
			if newRef, forwarded := child.IsForwarded(); forwarded {
				obj.SetChild(i, newRef)
				child = newRef
			}

			if child.IsMarked(nextLiveMark) {
				return true
			}

			if performEvac {
				if newRef, ok := space.MaybeEvacuate(child); ok {
					obj.SetChild(i, newRef)
					child = newRef
				}
			}

			ic.queue = append(ic.queue, child)

			return true
		})
	}

	for _, root := range roots {
		root.SetPinned(false)
	}
}
