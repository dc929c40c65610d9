package platform

import (
	"errors"
	"fmt"
)

// ErrLocked indicates a write or erase was attempted while the flash
// controller was locked.
var ErrLocked = errors.New("flash is locked")

// VerifyError indicates that a post-write readback did not match the data
// that was programmed. On NOR flash this is the typical symptom of writing
// to memory that was not erased first.
type VerifyError struct {
	// Address is the absolute address of the first mismatching byte.
	Address uint32

	// Expected is the byte that was programmed.
	Expected byte

	// Actual is the byte read back.
	Actual byte
}

func (e *VerifyError) Error() string {
	return fmt.Sprintf("readback mismatch at 0x%08X: wrote 0x%02X, read 0x%02X",
		e.Address, e.Expected, e.Actual)
}

// AddressError indicates an access outside the simulated flash range.
type AddressError struct {
	// Address is the absolute address that was accessed.
	Address uint32
}

func (e *AddressError) Error() string {
	return fmt.Sprintf("address 0x%08X is outside the flash region", e.Address)
}
