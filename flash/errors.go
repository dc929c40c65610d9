package flash

import (
	"errors"
	"fmt"
)

// ErrUnconfigured indicates that no platform capability set is bound.
// Every operation returns it before invoking any capability function.
var ErrUnconfigured = errors.New("no platform operations configured")

// RegionError indicates an invalid region configuration.
type RegionError struct {
	Reason string
}

func (e *RegionError) Error() string {
	return fmt.Sprintf("invalid region: %s", e.Reason)
}

// EraseError indicates that the platform's erase primitive reported
// failure. A write that triggered the erase aborts without attempting the
// physical write, and the erased latch stays clear so the next write
// retries the erase.
type EraseError struct {
	Cause error
}

func (e *EraseError) Error() string {
	return fmt.Sprintf("erase application region: %v", e.Cause)
}

func (e *EraseError) Unwrap() error { return e.Cause }

// WriteError indicates that the platform's write primitive reported
// failure, typically a post-write readback mismatch. The platform's error
// is preserved for errors.Is/As inspection.
type WriteError struct {
	// Address is the absolute address the write targeted.
	Address uint32

	Cause error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write at 0x%08X: %v", e.Address, e.Cause)
}

func (e *WriteError) Unwrap() error { return e.Cause }

// RangeError indicates a streamed write that would push the write cursor
// past the end of the application region.
type RangeError struct {
	// Address is the cursor position the write started from.
	Address uint32

	// Size is the number of bytes that were to be written.
	Size int

	// End is the exclusive end of the application region.
	End uint32
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("write of %d bytes at 0x%08X exceeds application region end 0x%08X",
		e.Size, e.Address, e.End)
}
