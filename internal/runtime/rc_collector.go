package runtime

// CollectionKind distinguishes the two axes a collection can vary along.
// ImmixSpace builds one from Collect's two bool arguments and passes it to
// its internal collectLocked/prepareCollection steps; RCCollector.Collect
// takes only the resulting performEvac bool.
type CollectionKind struct {
	Evacuation   bool
	CycleCollect bool
}

// RCCollector implements deferred coalesced reference counting: per-write
// bookkeeping is O(1), the expensive transitive update is deferred to
// Collect and coalesces repeated writes to the same object into a single
// pass. Grounded on the teacher's RefCountOptimizer (refcount_optimizer.go)
// for the overall "collector owns buffers plus statistics" shape, but
// implementing the specific deferred-coalesced algorithm rather than the
// teacher's cycle-avoidance heuristics — those belong to ImmixCollector
// here instead.
type RCCollector struct {
	cfg Config

	oldRootBuffer       []Object
	decrementBuffer     []Object
	modifiedBuffer      []Object
	performEvac         bool
	writeBarrierCounter int

	stats RCStats
}

// RCStats tracks counters useful for diagnostics and the metrics exporter.
type RCStats struct {
	WriteBarrierFires      uint64
	ObjectsIncremented     uint64
	ObjectsDecremented     uint64
	ObjectsFreed           uint64
	EvacuationsOnIncrement uint64
}

// NewRCCollector constructs an RCCollector from cfg.
func NewRCCollector(cfg Config) *RCCollector {
	return &RCCollector{cfg: cfg}
}

// WriteBarrier must be called before mutating any outgoing reference of
// object. It returns true when the caller should schedule a collection at
// the next safe point (spec.md §4.4, §5).
func (rc *RCCollector) WriteBarrier(object Object) bool {
	if !object.SetLogged(true) {
		rc.modifiedBuffer = append(rc.modifiedBuffer, object)

		object.Children(func(_ int, child Object) bool {
			rc.decrementBuffer = append(rc.decrementBuffer, child)
			return true
		})

		rc.writeBarrierCounter++
		rc.stats.WriteBarrierFires++
	}

	return rc.cfg.WriteBarrierCollectThreshold > 0 && rc.writeBarrierCounter >= rc.cfg.WriteBarrierCollectThreshold
}

// Collect runs the fixed-order RC pass described in spec.md §4.4.
// performEvac controls whether increment() may attempt opportunistic
// evacuation; roots comes from the space's root scanner; space and los are
// the external collaborators the pass calls into.
func (rc *RCCollector) Collect(performEvac bool, roots []Object, space gcSpace, los LargeObjectSpace) {
	rc.performEvac = performEvac

	rc.processOldRoots()
	rc.processCurrentRoots(roots)
	rc.processLOSNewObjects(los)
	rc.processModBuffer(space)
	rc.processDecrementBuffer(space, los)

	rc.writeBarrierCounter = 0
}

// processOldRoots moves every object from oldRootBuffer into
// decrementBuffer: roots kept alive only because a previous collection's
// root set referenced them are re-evaluated this cycle.
func (rc *RCCollector) processOldRoots() {
	rc.decrementBuffer = append(rc.decrementBuffer, rc.oldRootBuffer...)
	rc.oldRootBuffer = rc.oldRootBuffer[:0]
}

// processCurrentRoots increments every current root (without attempting
// evacuation — roots are pinned by the Immix pass, not relocated here) and
// remembers them as next cycle's old roots.
func (rc *RCCollector) processCurrentRoots(roots []Object) {
	for _, root := range roots {
		rc.increment(root, false, nil)
		rc.oldRootBuffer = append(rc.oldRootBuffer, root)
	}
}

// processLOSNewObjects increments then immediately decrements every large
// object allocated since the last collection: this keeps an LOS object
// alive only if something else references it before the decrement drains
// it back to zero.
func (rc *RCCollector) processLOSNewObjects(los LargeObjectSpace) {
	if los == nil {
		return
	}

	for _, obj := range los.GetNewObjects() {
		rc.increment(obj, false, nil)
		rc.decrement(obj, nil, los)
	}
}

// processModBuffer drains modifiedBuffer to a fixed point: popping each
// object, clearing its logged bit, registering it as live with the space
// if block-managed, and walking its children to increment (and possibly
// evacuate) them, rewriting forwarded members as it goes.
func (rc *RCCollector) processModBuffer(space gcSpace) {
	for len(rc.modifiedBuffer) > 0 {
		obj := rc.modifiedBuffer[len(rc.modifiedBuffer)-1]
		rc.modifiedBuffer = rc.modifiedBuffer[:len(rc.modifiedBuffer)-1]

		obj.SetLogged(false)

		if space != nil && space.IsInImmixSpace(obj) {
			space.SetGCObject(obj, true)
			space.IncrementLines(obj)
		}

		obj.Children(func(i int, child Object) bool {
			if newRef, forwarded := child.IsForwarded(); forwarded {
				obj.SetChild(i, newRef)
				rc.increment(newRef, false, space)
				return true
			}

			if newRef, ok := rc.increment(child, true, space); ok {
				obj.SetChild(i, newRef)
			}

			return true
		})
	}
}

// processDecrementBuffer drains decrementBuffer to a fixed point: popping
// each object, and if its count reaches zero (and it is not pinned),
// enqueueing decrements for every child before reclaiming the object's own
// bookkeeping (block line counts or LOS free).
func (rc *RCCollector) processDecrementBuffer(space gcSpace, los LargeObjectSpace) {
	for len(rc.decrementBuffer) > 0 {
		obj := rc.decrementBuffer[len(rc.decrementBuffer)-1]
		rc.decrementBuffer = rc.decrementBuffer[:len(rc.decrementBuffer)-1]

		rc.decrement(obj, space, los)
	}
}

// decrement is the shared body of the per-object decrement step used both
// by processDecrementBuffer and the LOS new-object "alive only if
// referenced" dance.
func (rc *RCCollector) decrement(obj Object, space gcSpace, los LargeObjectSpace) {
	reachedZero := obj.RCDecrement()
	rc.stats.ObjectsDecremented++

	if !reachedZero || obj.IsPinned() {
		return
	}

	obj.Children(func(_ int, child Object) bool {
		rc.decrementBuffer = append(rc.decrementBuffer, child)
		return true
	})

	switch {
	case space != nil && space.IsInImmixSpace(obj):
		space.DecrementLines(obj)
		space.SetGCObject(obj, false)
	case los != nil && los.IsGCObject(obj):
		los.EnqueueFree(obj)
		rc.stats.ObjectsFreed++
	}
}

// increment implements spec.md §4.4's increment(object, try_evacuate): if
// this is the object's first increment (0→1), it is "new to RC" this
// window and is either pushed to modifiedBuffer directly, or — if evac is
// in play and permitted — relocated first, with the *new* address pushed
// instead. Returns the (possibly new) address and whether a relocation
// happened.
func (rc *RCCollector) increment(object Object, tryEvacuate bool, space gcSpace) (Object, bool) {
	firstIncrement := object.RCIncrement()
	rc.stats.ObjectsIncremented++

	if !firstIncrement {
		return object, false
	}

	if tryEvacuate && rc.performEvac && space != nil && space.IsGCObject(object) {
		if newObj, ok := space.MaybeEvacuate(object); ok {
			space.DecrementLines(object)
			rc.modifiedBuffer = append(rc.modifiedBuffer, newObj)
			rc.stats.EvacuationsOnIncrement++

			return newObj, true
		}
	}

	rc.modifiedBuffer = append(rc.modifiedBuffer, object)

	return object, false
}

// Stats returns a snapshot of the RC pass's counters.
func (rc *RCCollector) Stats() RCStats {
	return rc.stats
}
