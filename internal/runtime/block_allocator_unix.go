//go:build linux || darwin || freebsd || netbsd || openbsd

package runtime

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// mmapReserve reserves size bytes of anonymous memory, aligned to
// alignment, using golang.org/x/sys/unix directly rather than the runtime's
// own allocator — this core is itself a GC, so it cannot allocate its
// managed memory through Go's heap. The teacher never wired x/sys for this
// (its region_alloc.go used make([]byte, ...) as a mock backing store); see
// DESIGN.md for why this core upgrades to a real reservation.
//
// Alignment is obtained by over-reserving by one extra alignment unit and
// trimming the unaligned prefix, matching the classic mmap-then-trim
// technique. mmapRelease must be called with the returned raw slice, not
// the trimmed one, since munmap requires an exact match of a prior mapping.
func mmapReserve(size uintptr, alignment int) (raw, aligned []byte, base uintptr, err error) {
	extra := uintptr(alignment)

	raw, err = unix.Mmap(-1, 0, int(size+extra), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("mmap: %w", err)
	}

	rawBase := uintptr(unsafe.Pointer(&raw[0]))
	mask := uintptr(alignment - 1)
	alignedBase := (rawBase + mask) &^ mask
	offset := alignedBase - rawBase

	return raw, raw[offset : offset+size], alignedBase, nil
}

// mmapRelease unmaps the raw region returned by mmapReserve.
func mmapRelease(raw []byte) error {
	if len(raw) == 0 {
		return nil
	}

	if err := unix.Munmap(raw); err != nil {
		return fmt.Errorf("munmap: %w", err)
	}

	return nil
}
