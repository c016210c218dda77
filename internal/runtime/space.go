package runtime

import "sync"

// NewObjectFunc constructs a concrete Object over freshly allocated
// memory at addr, sized and typed per rtti. This is the embedder's
// object-representation boundary (spec.md §9, "polymorphism over object
// shape") — the core never assumes a concrete layout.
type NewObjectFunc func(addr uintptr, rtti TypeInfo) Object

// ImmixSpace is the collection orchestrator: it owns the three allocators
// and both collectors, decides whether a given collection evacuates
// and/or runs a tracing cycle collection, sweeps blocks after each
// collection, and keeps the evac-headroom reserve topped up. Grounded on
// the teacher's CompactionEngine (region registry, policy, and a single
// entry point dispatching to the right sub-algorithm) crossed with
// RegionAllocator's stats/policy texture, both from the now-removed
// teacher region files — ImmixSpace is effectively their role, rebuilt
// around fixed blocks and the RC+Immix hybrid instead of a single
// compaction pass.
type ImmixSpace struct {
	mu sync.Mutex

	cfg Config

	blocks *BlockAllocator

	normal   *NormalAllocator
	overflow *OverflowAllocator
	evac     *EvacAllocator

	rc    *RCCollector
	immix *ImmixCollector

	newObject NewObjectFunc

	scanner RootScanner
	los     LargeObjectSpace

	recyclable  []*BlockInfo
	unavailable []*BlockInfo
	headroom    []*BlockInfo

	currentLiveMark bool

	// gcObjects tracks which block-managed addresses currently carry the
	// space's live-tracking bit, standing in for a "gc-object bit" on the
	// object header the way spec.md describes it (set_gc_object /
	// is_gc_object). Keyed by address so IsGCObject/SetGCObject can be
	// O(1) without requiring Object itself to expose the bit.
	gcObjects map[uintptr]bool

	stats SpaceStats
}

// SpaceStats tracks orchestrator-level counters surfaced by the metrics
// exporter.
type SpaceStats struct {
	CollectionsRun      uint64
	CycleCollectionsRun uint64
	EvacuationsRun      uint64
	BlocksReclaimed     uint64
	OOMEvents           uint64
}

// NewImmixSpace constructs an ImmixSpace with totalBlocks worth of backing
// memory, reserving cfg.EvacHeadroom of them for the evac-headroom pool up
// front.
func NewImmixSpace(cfg Config, totalBlocks int, newObject NewObjectFunc, scanner RootScanner, los LargeObjectSpace) (*ImmixSpace, error) {
	if err := cfg.Validate(); err != nil {
		return nil, newHeapError(ErrorInvalidConfig, "%v", err)
	}

	if scanner != nil {
		if err := checkCollaboratorVersion("root scanner", scanner); err != nil {
			return nil, err
		}
	}

	if los != nil {
		if err := checkCollaboratorVersion("large object space", los); err != nil {
			return nil, err
		}
	}

	blocks, err := NewBlockAllocator(cfg, totalBlocks)
	if err != nil {
		return nil, err
	}

	sp := &ImmixSpace{
		cfg:       cfg,
		blocks:    blocks,
		newObject: newObject,
		scanner:   scanner,
		los:       los,
		gcObjects: make(map[uintptr]bool),
	}

	sp.normal = NewNormalAllocator(cfg.LineSize, sp.popRecyclable, sp.pushUnavailable, sp.getNewBlock)
	sp.overflow = NewOverflowAllocator(sp.pushUnavailable, sp.getNewBlock)
	sp.evac = NewEvacAllocator(sp.popHeadroom)
	sp.rc = NewRCCollector(cfg)
	sp.immix = NewImmixCollector()

	for i := 0; i < cfg.EvacHeadroom; i++ {
		blk, err := blocks.GetBlock()
		if err != nil {
			break
		}

		sp.headroom = append(sp.headroom, blk)
	}

	return sp, nil
}

// Allocate dispatches by size to the normal or overflow allocator; if both
// fail, it forces one collection (with evacuation and cycle collection
// both enabled) and retries once. A second failure returns ok=false
// (out-of-memory) per spec.md §4.6.
func (sp *ImmixSpace) Allocate(rtti TypeInfo) (Object, bool) {
	sp.mu.Lock()
	defer sp.mu.Unlock()

	if obj, ok := sp.tryAllocate(rtti); ok {
		return obj, true
	}

	sp.collectLocked(CollectionKind{Evacuation: true, CycleCollect: true})

	if obj, ok := sp.tryAllocate(rtti); ok {
		return obj, true
	}

	sp.stats.OOMEvents++

	return nil, false
}

func (sp *ImmixSpace) tryAllocate(rtti TypeInfo) (Object, bool) {
	size := rtti.Size

	var (
		addr  uintptr
		block *BlockInfo
		ok    bool
	)

	if size < uintptr(sp.cfg.LineSize) {
		addr, block, ok = sp.normal.Allocate(size)
	} else {
		addr, block, ok = sp.overflow.Allocate(size)
	}

	if !ok {
		return nil, false
	}

	obj := sp.newObject(addr, rtti)
	sp.gcObjects[addr] = true
	block.IncrementLines(addr, size)

	return obj, true
}

// WriteBarrier forwards to the RC collector; callers must invoke this
// before mutating any outgoing reference.
func (sp *ImmixSpace) WriteBarrier(object Object) bool {
	sp.mu.Lock()
	defer sp.mu.Unlock()

	return sp.rc.WriteBarrier(object)
}

// Collect runs one explicit collection per the mutator-facing API
// (spec.md §6).
func (sp *ImmixSpace) Collect(evacuation, cycleCollect bool) {
	sp.mu.Lock()
	defer sp.mu.Unlock()

	sp.collectLocked(CollectionKind{Evacuation: evacuation, CycleCollect: cycleCollect})
}

// collectLocked implements spec.md §4.6's collect, assuming sp.mu is held.
func (sp *ImmixSpace) collectLocked(kind CollectionKind) {
	roots := sp.scanner.EnumerateRoots(sp)

	sp.drainAllocators()

	performEvac, performCC := sp.prepareCollection(kind)

	sp.rc.Collect(performEvac, roots, sp, sp.los)

	if performCC {
		next := !sp.currentLiveMark
		sp.clearBlockState()
		sp.immix.Collect(sp, performEvac, next, roots)
		sp.currentLiveMark = next
		sp.stats.CycleCollectionsRun++
	}

	sp.sweep()

	sp.stats.CollectionsRun++
	if performEvac {
		sp.stats.EvacuationsRun++
	}
}

// drainAllocators moves every allocator's current block (and, for
// EvacAllocator, its used-block list) into the unavailable queue ahead of
// prepareCollection's merge step.
func (sp *ImmixSpace) drainAllocators() {
	if blk := sp.normal.DrainCurrent(); blk != nil {
		sp.unavailable = append(sp.unavailable, blk)
	}

	if blk := sp.overflow.DrainCurrent(); blk != nil {
		sp.unavailable = append(sp.unavailable, blk)
	}

	sp.unavailable = append(sp.unavailable, sp.evac.GetAllBlocks()...)
}

// prepareCollection folds recyclable and current blocks into unavailable,
// decides whether evacuation and cycle collection should run this round,
// and (if evacuating) marks candidate blocks via establishHoleThreshold.
func (sp *ImmixSpace) prepareCollection(kind CollectionKind) (performEvac, performCC bool) {
	sp.unavailable = append(sp.unavailable, sp.recyclable...)
	sp.recyclable = sp.recyclable[:0]

	totalBlocks := sp.blocks.TotalBlocks()
	freeBlocks := sp.blocks.AvailableBlocks()
	availableEvacBlocks := freeBlocks + len(sp.headroom)

	performEvac = kind.Evacuation
	if !performEvac && float64(availableEvacBlocks) < sp.cfg.EvacTriggerThreshold*float64(totalBlocks) {
		performEvac = true
	}

	if performEvac {
		threshold := sp.establishHoleThreshold()
		if threshold > 0 && threshold < sp.cfg.NumLinesPerBlock() {
			for _, blk := range sp.unavailable {
				blk.SetEvacuationCandidate(threshold)
			}
		} else {
			performEvac = false
		}
	}

	performCC = kind.CycleCollect || float64(freeBlocks) < sp.cfg.CycleTriggerThreshold*float64(totalBlocks)

	return performEvac, performCC
}

// establishHoleThreshold builds the hole histogram over the current
// unavailable set and derives the threshold per spec.md §4.6. The
// available-line budget is seeded from the evac-headroom's actual
// destination capacity (headroom block count * (numLinesPerBlock-1), one
// line per block reserved the way the original reserves its header line),
// not from the candidate blocks' own free lines — evacuation can only ever
// move live lines into headroom, so the headroom is what bounds it.
func (sp *ImmixSpace) establishHoleThreshold() int {
	numLines := sp.cfg.NumLinesPerBlock()
	hist := newHoleHistogram(numLines)

	for _, blk := range sp.unavailable {
		holes, marked := blk.CountHolesAndMarkedLines()
		_, free := blk.CountHolesAndAvailableLines()
		hist.record(holes, marked, free)
	}

	headroomLines := len(sp.headroom) * (numLines - 1)

	return hist.establishHoleThreshold(numLines, headroomLines)
}

// clearBlockState zeroes per-block line counts and object maps ahead of a
// cycle-collecting Immix trace, per spec.md §4.6 step 5.
func (sp *ImmixSpace) clearBlockState() {
	for _, blk := range sp.unavailable {
		blk.ClearObjectMaps()
	}
}

// sweep walks the unavailable queue once: empty blocks refill headroom
// (up to EvacHeadroom) then return to the BlockAllocator; non-empty
// blocks are classified recyclable or unavailable based on their hole
// count, per spec.md §4.6 step 6.
func (sp *ImmixSpace) sweep() {
	swept := sp.unavailable
	sp.unavailable = nil

	for _, blk := range swept {
		if blk.IsEmpty() {
			if len(sp.headroom) < sp.cfg.EvacHeadroom {
				blk.Reset()
				sp.headroom = append(sp.headroom, blk)
			} else {
				_ = sp.blocks.ReturnBlock(blk)
				sp.stats.BlocksReclaimed++
			}

			continue
		}

		holes, marked := blk.CountHolesAndMarkedLines()
		blk.holeCount, blk.markedLines = holes, marked

		if holes == 0 {
			sp.unavailable = append(sp.unavailable, blk)
		} else {
			sp.recyclable = append(sp.recyclable, blk)
		}
	}
}

// MaybeEvacuate implements spec.md §4.6: fails if obj is pinned or its
// source block is not an evacuation candidate; otherwise allocates a
// destination from EvacAllocator, copies the object, and writes a
// forwarding pointer into the old body.
func (sp *ImmixSpace) MaybeEvacuate(obj Object) (Object, bool) {
	if obj.IsPinned() {
		return nil, false
	}

	srcBlock := sp.blocks.BlockInfoFor(obj.Addr())
	if srcBlock == nil || !srcBlock.IsEvacuationCandidate() {
		return nil, false
	}

	size := obj.ObjectSize()

	addr, dstBlock, ok := sp.evac.Allocate(size)
	if !ok {
		return nil, false
	}

	newObj := sp.newObject(addr, TypeInfo{Size: size})
	obj.Children(func(i int, child Object) bool {
		newObj.SetChild(i, child)
		return true
	})

	dstBlock.RegisterObject(addr)
	sp.gcObjects[addr] = true

	obj.SetForwarded(newObj)

	// Clear the old address's gc-object bit (spec.md §4.6; the original's
	// self.unset_gc_object(object)) — the object now lives at addr under
	// dstBlock, and the old block must be able to report IsEmpty() again
	// once nothing else references the stale address.
	srcBlock.UnregisterObject(obj.Addr())
	delete(sp.gcObjects, obj.Addr())

	return newObj, true
}

// IsInSpace reports whether addr is managed by this space's BlockAllocator.
func (sp *ImmixSpace) IsInSpace(addr uintptr) bool {
	return sp.blocks.IsInSpace(addr)
}

// IsInImmixSpace reports whether obj's address is block-managed (as
// opposed to belonging to the large-object space).
func (sp *ImmixSpace) IsInImmixSpace(obj Object) bool {
	return sp.blocks.IsInSpace(obj.Addr())
}

// IsGCObject reports whether obj currently carries the space's
// live-tracking bit.
func (sp *ImmixSpace) IsGCObject(obj Object) bool {
	return sp.gcObjects[obj.Addr()]
}

// SetGCObject sets or clears the live-tracking bit for obj.
func (sp *ImmixSpace) SetGCObject(obj Object, live bool) {
	if live {
		sp.gcObjects[obj.Addr()] = true
	} else {
		delete(sp.gcObjects, obj.Addr())
	}
}

// IncrementLines adjusts obj's owning block's line counters upward.
func (sp *ImmixSpace) IncrementLines(obj Object) {
	blk := sp.blocks.BlockInfoFor(obj.Addr())
	if blk != nil {
		blk.IncrementLines(obj.Addr(), obj.ObjectSize())
	}
}

// DecrementLines adjusts obj's owning block's line counters downward.
func (sp *ImmixSpace) DecrementLines(obj Object) {
	blk := sp.blocks.BlockInfoFor(obj.Addr())
	if blk != nil {
		blk.DecrementLines(obj.Addr(), obj.ObjectSize())
	}
}

// Stats returns a snapshot of orchestrator-level counters.
func (sp *ImmixSpace) Stats() SpaceStats {
	sp.mu.Lock()
	defer sp.mu.Unlock()

	return sp.stats
}

// HeadroomLen reports the current evac-headroom reserve size, used by
// tests asserting law L4 (headroom never exceeds EvacHeadroom).
func (sp *ImmixSpace) HeadroomLen() int {
	sp.mu.Lock()
	defer sp.mu.Unlock()

	return len(sp.headroom)
}

// RCCollector exposes the space's reference-counting collector, for
// embedders (debugserver, metrics) that report on it independently of a
// collection cycle.
func (sp *ImmixSpace) RCCollector() *RCCollector {
	return sp.rc
}

// BlockAllocator exposes the space's underlying block allocator, for
// embedders that report block-level statistics.
func (sp *ImmixSpace) BlockAllocator() *BlockAllocator {
	return sp.blocks
}

func (sp *ImmixSpace) popRecyclable() (*BlockInfo, bool) {
	if len(sp.recyclable) == 0 {
		return nil, false
	}

	blk := sp.recyclable[len(sp.recyclable)-1]
	sp.recyclable = sp.recyclable[:len(sp.recyclable)-1]

	return blk, true
}

func (sp *ImmixSpace) pushUnavailable(blk *BlockInfo) {
	sp.unavailable = append(sp.unavailable, blk)
}

func (sp *ImmixSpace) getNewBlock() (*BlockInfo, error) {
	return sp.blocks.GetBlock()
}

func (sp *ImmixSpace) popHeadroom() (*BlockInfo, bool) {
	if len(sp.headroom) == 0 {
		return nil, false
	}

	blk := sp.headroom[len(sp.headroom)-1]
	sp.headroom = sp.headroom[:len(sp.headroom)-1]

	return blk, true
}
