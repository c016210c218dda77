package runtime

import (
	"fmt"
	"sync"
)

// BlockAllocator carves fixed-size blocks out of a single mmap'd arena and
// tracks which are free. Grounded on the teacher's RegionAllocator
// (region_alloc.go): same registry-plus-stats-plus-policy shape, but
// RegionAllocator variably sized heap-allocated []byte regions while
// BlockAllocator partitions one fixed arena into BlockSize-aligned slots,
// since spec.md's geometry is fixed-size blocks rather than variable-size
// regions.
//
// The arena is reserved once at construction via mmapReserve (OS-specific,
// see block_allocator_unix.go / block_allocator_other.go) so every block
// address is stable for the heap's lifetime; invariant I1's "block base is
// p &^ (BlockSize-1)" arithmetic requires the arena itself to start on a
// block-size boundary.
type BlockAllocator struct {
	mu sync.Mutex

	cfg Config

	rawArena   []byte // the full, possibly over-reserved mmap region
	arena      []byte // arenaBase-aligned view into rawArena
	arenaBase  uintptr
	totalCount int

	free  []int // indices of free blocks, in ascending address order
	infos []*BlockInfo

	stats AllocatorStats
}

// AllocatorStats mirrors the teacher's AllocatorStats texture
// (region_alloc.go), trimmed to the counters BlockAllocator actually
// maintains.
type AllocatorStats struct {
	TotalBlocks     int
	FreeBlocks      int
	AllocatedBlocks int
	GetCount        uint64
	ReturnCount     uint64
}

// NewBlockAllocator reserves totalBlocks*cfg.BlockSize bytes of address
// space and prepares the free list. Construction fails with
// ErrorInvalidConfig if cfg fails Validate or totalBlocks is not positive,
// and with ErrorOutOfMemory if the underlying OS reservation fails.
func NewBlockAllocator(cfg Config, totalBlocks int) (*BlockAllocator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, newHeapError(ErrorInvalidConfig, "%v", err)
	}

	if totalBlocks <= 0 {
		return nil, newHeapError(ErrorInvalidConfig, "total blocks must be positive, got %d", totalBlocks)
	}

	size := uintptr(totalBlocks) * uintptr(cfg.BlockSize)

	raw, arena, base, err := mmapReserve(size, cfg.BlockSize)
	if err != nil {
		return nil, newHeapError(ErrorOutOfMemory, "reserving %d bytes: %v", size, err)
	}

	ba := &BlockAllocator{
		cfg:        cfg,
		rawArena:   raw,
		arena:      arena,
		arenaBase:  base,
		totalCount: totalBlocks,
		free:       make([]int, totalBlocks),
		infos:      make([]*BlockInfo, totalBlocks),
	}

	for i := 0; i < totalBlocks; i++ {
		ba.free[i] = totalBlocks - 1 - i // pop from the tail; lowest address first
		blockBase := base + uintptr(i*cfg.BlockSize)
		ba.infos[i] = newBlockInfo(blockBase, cfg)
	}

	ba.stats.TotalBlocks = totalBlocks
	ba.stats.FreeBlocks = totalBlocks

	return ba, nil
}

// GetBlock pops a free block and returns its BlockInfo, or reports
// ErrorOutOfMemory if the arena is exhausted.
func (ba *BlockAllocator) GetBlock() (*BlockInfo, error) {
	ba.mu.Lock()
	defer ba.mu.Unlock()

	if len(ba.free) == 0 {
		return nil, newHeapError(ErrorOutOfMemory, "block arena exhausted (%d/%d blocks in use)",
			ba.stats.AllocatedBlocks, ba.stats.TotalBlocks)
	}

	idx := ba.free[len(ba.free)-1]
	ba.free = ba.free[:len(ba.free)-1]

	bi := ba.infos[idx]
	bi.Reset()
	bi.Flags |= BlockFlagAllocated

	ba.stats.FreeBlocks--
	ba.stats.AllocatedBlocks++
	ba.stats.GetCount++

	return bi, nil
}

// ReturnBlock releases a block back to the free list.
func (ba *BlockAllocator) ReturnBlock(bi *BlockInfo) error {
	ba.mu.Lock()
	defer ba.mu.Unlock()

	idx := ba.indexOf(bi.Base)
	if idx < 0 {
		return newHeapError(ErrorNotInSpace, "block at %#x does not belong to this arena", bi.Base)
	}

	bi.Flags &^= BlockFlagAllocated
	ba.free = append(ba.free, idx)

	ba.stats.FreeBlocks++
	ba.stats.AllocatedBlocks--
	ba.stats.ReturnCount++

	return nil
}

// IsInSpace reports whether addr falls within the arena this allocator
// reserved, implementing the address-range half of invariant I1.
func (ba *BlockAllocator) IsInSpace(addr uintptr) bool {
	end := ba.arenaBase + uintptr(ba.totalCount*ba.cfg.BlockSize)
	return addr >= ba.arenaBase && addr < end
}

// BlockInfoFor returns the BlockInfo owning addr, assuming IsInSpace(addr).
func (ba *BlockAllocator) BlockInfoFor(addr uintptr) *BlockInfo {
	base := blockBase(addr, ba.cfg.BlockSize)
	idx := int((base - ba.arenaBase) / uintptr(ba.cfg.BlockSize))

	if idx < 0 || idx >= len(ba.infos) {
		return nil
	}

	return ba.infos[idx]
}

// AvailableBlocks reports the number of blocks not currently allocated.
func (ba *BlockAllocator) AvailableBlocks() int {
	ba.mu.Lock()
	defer ba.mu.Unlock()

	return len(ba.free)
}

// TotalBlocks reports the arena's fixed block capacity.
func (ba *BlockAllocator) TotalBlocks() int {
	return ba.totalCount
}

// Stats returns a snapshot of allocator counters.
func (ba *BlockAllocator) Stats() AllocatorStats {
	ba.mu.Lock()
	defer ba.mu.Unlock()

	return ba.stats
}

// Close releases the arena back to the OS. The allocator must not be used
// afterward.
func (ba *BlockAllocator) Close() error {
	ba.mu.Lock()
	defer ba.mu.Unlock()

	return mmapRelease(ba.rawArena)
}

func (ba *BlockAllocator) indexOf(base uintptr) int {
	if !ba.IsInSpace(base) {
		return -1
	}

	idx := int((base - ba.arenaBase) / uintptr(ba.cfg.BlockSize))
	if idx < 0 || idx >= len(ba.infos) {
		return -1
	}

	return idx
}

func (ba *BlockAllocator) String() string {
	return fmt.Sprintf("BlockAllocator{total=%d free=%d blockSize=%d}",
		ba.totalCount, len(ba.free), ba.cfg.BlockSize)
}
