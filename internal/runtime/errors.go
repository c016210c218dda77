package runtime

import "fmt"

// ErrorCode enumerates the heap's failure modes (spec.md §7). Grounded on
// region_memory.go's ErrorCode / AllocationError pattern.
type ErrorCode int

const (
	// ErrorOutOfMemory is returned by BlockAllocator when its arena cannot
	// be reserved or has no free block left. ImmixSpace.Allocate does not
	// return it: it reports out-of-memory as ok=false.
	ErrorOutOfMemory ErrorCode = iota
	// ErrorInvalidConfig marks a Config that failed Validate.
	ErrorInvalidConfig
	// ErrorNotInSpace marks a pointer a caller claimed is heap-managed but
	// BlockAllocator.IsInSpace rejects.
	ErrorNotInSpace
	// ErrorForwardingRace marks an object observed as already forwarded
	// at the point it is about to be evacuated — impossible under the
	// stop-the-world model spec.md assumes; see debug_assert.go.
	ErrorForwardingRace
	// ErrorDecrementUnderflow marks an rc_decrement call on an object
	// whose count was already zero.
	ErrorDecrementUnderflow
)

func (ec ErrorCode) String() string {
	switch ec {
	case ErrorOutOfMemory:
		return "OutOfMemory"
	case ErrorInvalidConfig:
		return "InvalidConfig"
	case ErrorNotInSpace:
		return "NotInSpace"
	case ErrorForwardingRace:
		return "ForwardingRace"
	case ErrorDecrementUnderflow:
		return "DecrementUnderflow"
	default:
		return fmt.Sprintf("Unknown(%d)", int(ec))
	}
}

// HeapError is the heap's single error type, carrying a code plus context.
// Mirrors the teacher's AllocationError: a struct implementing error rather
// than a family of sentinel values, so callers can switch on Code.
type HeapError struct {
	Code    ErrorCode
	Message string
}

func (e *HeapError) Error() string {
	return fmt.Sprintf("runtime: %s: %s", e.Code, e.Message)
}

func newHeapError(code ErrorCode, format string, args ...interface{}) *HeapError {
	return &HeapError{Code: code, Message: fmt.Sprintf(format, args...)}
}
