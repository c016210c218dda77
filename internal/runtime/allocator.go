package runtime

// currentBlock is the (block, low, high) tuple an allocator holds between
// allocate calls: [low, high) is the active hole, in block-relative
// offsets.
type currentBlock struct {
	block *BlockInfo
	low   uintptr
	high  uintptr
}

// bumpSource supplies the behavior that differs between NormalAllocator,
// OverflowAllocator, and EvacAllocator, per spec.md §4.3. handleNoHole is
// consulted when the allocator has no current block (or its hole was
// exhausted); handleFullBlock is consulted when scan_block finds no
// further hole in the current block.
type bumpSource interface {
	handleNoHole(size uintptr) (*BlockInfo, error)
	handleFullBlock(block *BlockInfo)
}

// bumpAllocator implements the shared hole-scanning bump-allocation
// protocol spec.md §4.3 describes once and reuses across all three
// allocator roles. Grounded on the teacher's strategy-dispatch style in
// the (now superseded) region allocation code: a small struct holding
// policy plus a source of truth for "what to do when the current block
// runs dry", dispatched through an interface rather than a switch, since
// the three roles differ in behavior rather than in a shared enum of
// cases.
type bumpAllocator struct {
	source  bumpSource
	current *currentBlock
}

// allocate implements spec.md §4.3's allocate(size): scan the current
// hole, then fall back to the block handleNoHole supplies (a recyclable or
// fresh block, or a headroom block, depending on the allocator role) and
// scan that block for a hole. Only that one block is tried: if it has no
// hole that fits, ok=false is returned. Returns the object's address and
// the owning block, or ok=false (interpreted by callers as allocation
// failure for this allocator, not necessarily OOM for the whole heap).
func (a *bumpAllocator) allocate(size uintptr) (addr uintptr, block *BlockInfo, ok bool) {
	if a.current != nil {
		if cur, found := a.scanForHole(size, *a.current); found {
			a.current = &cur
			return a.bump(size)
		}
		a.current = nil
	}

	blk, err := a.source.handleNoHole(size)
	if err != nil || blk == nil {
		return 0, nil, false
	}

	a.current = &currentBlock{block: blk, low: 0, high: 0}
	if cur, found := a.scanForHole(size, *a.current); found {
		a.current = &cur
		return a.bump(size)
	}

	a.current = nil

	return 0, nil, false
}

// bump performs the actual bump allocation once scanForHole has guaranteed
// the current hole is large enough, advancing the tuple and publishing it.
func (a *bumpAllocator) bump(size uintptr) (uintptr, *BlockInfo, bool) {
	cur := a.current
	addr := cur.block.Offset(cur.low)
	cur.low += size
	cur.block.RegisterObject(addr)

	return addr, cur.block, true
}

// scanForHole implements spec.md §4.3's scan_for_hole: if the current hole
// already fits size, return it unchanged; otherwise ask the block to find
// the next hole, recursing monotonically forward until one fits or the
// block is exhausted (reported to handleFullBlock).
func (a *bumpAllocator) scanForHole(size uintptr, cur currentBlock) (currentBlock, bool) {
	for {
		if cur.high-cur.low >= size {
			return cur, true
		}

		low, high, found := cur.block.ScanBlock(cur.high)
		if !found {
			a.source.handleFullBlock(cur.block)
			return currentBlock{}, false
		}

		cur = currentBlock{block: cur.block, low: low, high: high}
	}
}

// drainCurrent relinquishes the allocator's current block without placing
// it anywhere, returning it to the caller (the space) for disposition.
// Used when the orchestrator drains all allocators at the start of a
// collection (spec.md §4.6 step 2).
func (a *bumpAllocator) drainCurrent() *BlockInfo {
	if a.current == nil {
		return nil
	}

	blk := a.current.block
	a.current = nil

	return blk
}

// --- NormalAllocator -------------------------------------------------

// NormalAllocator serves allocations smaller than LineSize, chasing holes
// across recyclable blocks before requesting fresh ones from the space.
type NormalAllocator struct {
	bumpAllocator
	lineSize int

	// popRecyclable supplies the next recyclable block and returns
	// ok=false when empty, matching spec.md's "pops the next
	// recyclable block from the space-provided recyclable queue".
	popRecyclable   func() (*BlockInfo, bool)
	pushUnavailable func(*BlockInfo)
	getNewBlock     func() (*BlockInfo, error)
}

// NewNormalAllocator wires a NormalAllocator to the space's recyclable
// queue, unavailable queue, and block supply.
func NewNormalAllocator(lineSize int, popRecyclable func() (*BlockInfo, bool), pushUnavailable func(*BlockInfo), getNewBlock func() (*BlockInfo, error)) *NormalAllocator {
	na := &NormalAllocator{
		lineSize:        lineSize,
		popRecyclable:   popRecyclable,
		pushUnavailable: pushUnavailable,
		getNewBlock:     getNewBlock,
	}
	na.bumpAllocator.source = na

	return na
}

// Allocate serves sizes < LineSize; spec.md §4.3 scopes size eligibility
// at the space/dispatch layer, so NormalAllocator itself does not reject
// larger sizes — it only provides the hole-chasing policy.
func (na *NormalAllocator) Allocate(size uintptr) (uintptr, *BlockInfo, bool) {
	return na.bumpAllocator.allocate(size)
}

func (na *NormalAllocator) handleNoHole(size uintptr) (*BlockInfo, error) {
	if blk, ok := na.popRecyclable(); ok {
		return blk, nil
	}

	return na.getNewBlock()
}

func (na *NormalAllocator) handleFullBlock(block *BlockInfo) {
	na.pushUnavailable(block)
}

// DrainCurrent exposes bumpAllocator.drainCurrent for the orchestrator.
func (na *NormalAllocator) DrainCurrent() *BlockInfo {
	return na.drainCurrent()
}

// --- OverflowAllocator -------------------------------------------------

// OverflowAllocator serves allocations of size >= LineSize. It never
// chases holes across blocks on a miss — each overflow object either fits
// the current hole or the allocator requests a brand new block.
type OverflowAllocator struct {
	bumpAllocator

	pushUnavailable func(*BlockInfo)
	getNewBlock     func() (*BlockInfo, error)
}

// NewOverflowAllocator wires an OverflowAllocator to the space's
// unavailable queue and block supply.
func NewOverflowAllocator(pushUnavailable func(*BlockInfo), getNewBlock func() (*BlockInfo, error)) *OverflowAllocator {
	oa := &OverflowAllocator{
		pushUnavailable: pushUnavailable,
		getNewBlock:     getNewBlock,
	}
	oa.bumpAllocator.source = oa

	return oa
}

// Allocate serves sizes >= LineSize.
func (oa *OverflowAllocator) Allocate(size uintptr) (uintptr, *BlockInfo, bool) {
	return oa.bumpAllocator.allocate(size)
}

func (oa *OverflowAllocator) handleNoHole(size uintptr) (*BlockInfo, error) {
	return oa.getNewBlock()
}

func (oa *OverflowAllocator) handleFullBlock(block *BlockInfo) {
	oa.pushUnavailable(block)
}

// DrainCurrent exposes bumpAllocator.drainCurrent for the orchestrator.
func (oa *OverflowAllocator) DrainCurrent() *BlockInfo {
	return oa.drainCurrent()
}

// --- EvacAllocator -------------------------------------------------

// EvacAllocator drains blocks exclusively from the evac-headroom reserve
// and serves evacuation destinations during a collection. Unlike the
// other two, a miss here is not a heap-wide failure — it means
// evacuation of this particular object is impossible and the caller must
// keep the original address.
type EvacAllocator struct {
	bumpAllocator

	popHeadroom func() (*BlockInfo, bool)
	used        []*BlockInfo
}

// NewEvacAllocator wires an EvacAllocator to the space's headroom pool.
func NewEvacAllocator(popHeadroom func() (*BlockInfo, bool)) *EvacAllocator {
	ea := &EvacAllocator{popHeadroom: popHeadroom}
	ea.bumpAllocator.source = ea

	return ea
}

// Allocate attempts to serve an evacuation destination; ok=false means
// "evacuation impossible, keep original" per spec.md §4.3.
func (ea *EvacAllocator) Allocate(size uintptr) (uintptr, *BlockInfo, bool) {
	return ea.bumpAllocator.allocate(size)
}

func (ea *EvacAllocator) handleNoHole(size uintptr) (*BlockInfo, error) {
	if blk, ok := ea.popHeadroom(); ok {
		return blk, nil
	}

	return nil, nil
}

func (ea *EvacAllocator) handleFullBlock(block *BlockInfo) {
	ea.used = append(ea.used, block)
}

// GetAllBlocks drains the allocator's used list plus any still-current
// block, for the space to fold back into its block accounting after a
// collection (spec.md §4.3's get_all_blocks()).
func (ea *EvacAllocator) GetAllBlocks() []*BlockInfo {
	blocks := ea.used
	ea.used = nil

	if cur := ea.drainCurrent(); cur != nil {
		blocks = append(blocks, cur)
	}

	return blocks
}
