package platform

import (
	"encoding/binary"
	"fmt"
)

// Simulator is an in-memory Ops implementation with NOR-flash semantics:
// erase sets every byte to 0xFF and programming can only clear bits, so a
// write over unerased memory fails its readback verification the same way
// real flash does.
//
// The simulator starts locked and fully programmed (all zero), forcing a
// correct unlock/erase sequence before the first write succeeds.
type Simulator struct {
	start uint32
	end   uint32
	mem   []byte

	locked bool

	unlockCalls int
	lockCalls   int
	eraseCalls  int
	writeCalls  int

	eraseErr error
	writeErr error

	periphsDeinited bool
	systickDeinited bool

	jumped    bool
	jumpSP    uint32
	jumpEntry uint32
}

// NewSimulator creates a simulator backing the address range [start, end).
func NewSimulator(start, end uint32) *Simulator {
	if end <= start {
		panic(fmt.Sprintf("platform: invalid simulator range [0x%08X, 0x%08X)", start, end))
	}

	return &Simulator{
		start:  start,
		end:    end,
		mem:    make([]byte, end-start),
		locked: true,
	}
}

// Unlock implements Ops.
func (s *Simulator) Unlock() {
	s.unlockCalls++
	s.locked = false
}

// Lock implements Ops.
func (s *Simulator) Lock() {
	s.lockCalls++
	s.locked = true
}

// ReadWord implements Ops. Reads are allowed while locked.
func (s *Simulator) ReadWord(address uint32) (uint32, error) {
	if address < s.start || address+4 > s.end {
		return 0, &AddressError{Address: address}
	}

	off := address - s.start
	return binary.LittleEndian.Uint32(s.mem[off : off+4]), nil
}

// Write implements Ops. Each byte is ANDed into memory and immediately read
// back; the first mismatch aborts the write, leaving the bytes programmed so
// far in place.
func (s *Simulator) Write(address uint32, data []byte) error {
	s.writeCalls++

	if s.writeErr != nil {
		return s.writeErr
	}
	if s.locked {
		return ErrLocked
	}
	if address < s.start || address+uint32(len(data)) > s.end {
		return &AddressError{Address: address}
	}

	for i, b := range data {
		off := address - s.start + uint32(i)
		s.mem[off] &= b
		if s.mem[off] != b {
			return &VerifyError{
				Address:  address + uint32(i),
				Expected: b,
				Actual:   s.mem[off],
			}
		}
	}

	return nil
}

// EraseApp implements Ops. The whole simulated range is the application
// region, so the erase blanks all of it.
func (s *Simulator) EraseApp() error {
	s.eraseCalls++

	if s.eraseErr != nil {
		return s.eraseErr
	}
	if s.locked {
		return ErrLocked
	}

	for i := range s.mem {
		s.mem[i] = 0xFF
	}
	return nil
}

// DeinitPeripherals implements Ops.
func (s *Simulator) DeinitPeripherals() {
	s.periphsDeinited = true
}

// DeinitSysTick implements Ops.
func (s *Simulator) DeinitSysTick() {
	s.systickDeinited = true
}

// Jump implements Ops. Unlike real hardware it returns, recording the
// handoff for inspection.
func (s *Simulator) Jump(sp, entry uint32) {
	s.jumped = true
	s.jumpSP = sp
	s.jumpEntry = entry
}

// SetEraseError makes subsequent EraseApp calls fail with err until cleared
// with nil. Failed calls are still counted.
func (s *Simulator) SetEraseError(err error) {
	s.eraseErr = err
}

// SetWriteError makes subsequent Write calls fail with err until cleared
// with nil. Failed calls are still counted.
func (s *Simulator) SetWriteError(err error) {
	s.writeErr = err
}

// Load seeds memory at the given address, bypassing the lock and the NOR
// write semantics. Test helper; panics on an out-of-range address.
func (s *Simulator) Load(address uint32, data []byte) {
	if address < s.start || address+uint32(len(data)) > s.end {
		panic(fmt.Sprintf("platform: load at 0x%08X is outside [0x%08X, 0x%08X)", address, s.start, s.end))
	}
	copy(s.mem[address-s.start:], data)
}

// Image returns a copy of the simulated flash contents.
func (s *Simulator) Image() []byte {
	out := make([]byte, len(s.mem))
	copy(out, s.mem)
	return out
}

// Locked reports whether the controller is currently locked.
func (s *Simulator) Locked() bool { return s.locked }

// UnlockCalls returns the number of Unlock invocations.
func (s *Simulator) UnlockCalls() int { return s.unlockCalls }

// LockCalls returns the number of Lock invocations.
func (s *Simulator) LockCalls() int { return s.lockCalls }

// EraseCalls returns the number of EraseApp invocations, including failed
// ones.
func (s *Simulator) EraseCalls() int { return s.eraseCalls }

// WriteCalls returns the number of Write invocations, including failed ones.
func (s *Simulator) WriteCalls() int { return s.writeCalls }

// PeripheralsDeinited reports whether DeinitPeripherals was called.
func (s *Simulator) PeripheralsDeinited() bool { return s.periphsDeinited }

// SysTickDeinited reports whether DeinitSysTick was called.
func (s *Simulator) SysTickDeinited() bool { return s.systickDeinited }

// Jumped returns the recorded control transfer, if any.
func (s *Simulator) Jumped() (sp, entry uint32, ok bool) {
	return s.jumpSP, s.jumpEntry, s.jumped
}
