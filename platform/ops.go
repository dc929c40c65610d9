package platform

// Ops is the hardware capability set the flash lifecycle manager depends on.
// Each microcontroller family supplies its own implementation; the manager
// never touches registers or raw addresses itself.
//
// All operations are synchronous and blocking. Program/erase latency is
// opaque to the caller; any timeout policy belongs to the implementation.
type Ops interface {
	// Unlock enables write and erase access to the flash controller.
	// The manager brackets every flash access between Unlock and Lock,
	// including reads, to keep a uniform access discipline.
	Unlock()

	// Lock re-enables write protection on the flash controller.
	Lock()

	// ReadWord returns the 32-bit word stored at the given absolute
	// address. Reads may be performed while the controller is locked.
	ReadWord(address uint32) (uint32, error)

	// Write programs data at the given absolute address using the
	// platform's natural programming granularity. Implementations MUST
	// read the programmed bytes back and report a mismatch as an error;
	// the manager trusts this contract and does not re-verify.
	//
	// Whether len(data) must be a multiple of the programming
	// granularity is a shared caller/implementation responsibility;
	// the manager does not enforce it.
	Write(address uint32, data []byte) error

	// EraseApp erases exactly the pages spanning the application region.
	EraseApp() error

	// DeinitPeripherals quiesces all peripherals before control is
	// handed to the application, leaving no state that would corrupt
	// application start-up.
	DeinitPeripherals()

	// DeinitSysTick disables the system tick and reprograms the stack
	// pointer and vector-table base for the application region.
	DeinitSysTick()

	// Jump transfers control to the application entry point with the
	// given initial stack pointer. On real hardware this never returns;
	// it is the single point where a raw address becomes executable
	// code, kept out of the manager entirely.
	Jump(sp, entry uint32)
}
