//go:build !(linux || darwin || freebsd || netbsd || openbsd)

package runtime

import "unsafe"

// mmapReserve falls back to a plain Go allocation on platforms
// golang.org/x/sys/unix does not cover (e.g. windows, wasm). The returned
// memory is ordinary garbage-collected Go memory rather than an OS
// reservation, so mmapRelease is a no-op and the slice must be kept
// reachable for the BlockAllocator's lifetime; both of these replicate the
// teacher's own region_alloc.go fallback, which always used make([]byte)
// as its backing store.
func mmapReserve(size uintptr, alignment int) (raw, aligned []byte, base uintptr, err error) {
	raw = make([]byte, size+uintptr(alignment))

	rawBase := uintptr(unsafe.Pointer(&raw[0]))
	mask := uintptr(alignment - 1)
	alignedBase := (rawBase + mask) &^ mask
	offset := alignedBase - rawBase

	return raw, raw[offset : offset+size], alignedBase, nil
}

func mmapRelease(raw []byte) error {
	return nil
}
