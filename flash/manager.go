package flash

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/moffa90/go-flashboot/crc"
	"github.com/moffa90/go-flashboot/platform"
)

// Manager orchestrates the application region's flash lifecycle: erase,
// direct and streamed writes, checksum verification, and the final jump to
// the application.
//
// Manager is strictly single-threaded. It assumes exclusive ownership of
// the flash controller for the duration of the boot sequence; exactly one
// streamed write sequence may be in flight at a time.
type Manager struct {
	region Region
	config Config

	// ops is the bound capability set; nil means unconfigured.
	ops platform.Ops

	// erased latches after the first successful erase. Physical writes
	// never happen while it is clear.
	erased bool

	// cursor is the next streamed write address, always within
	// [region.Start, region.End].
	cursor uint32

	streamStart time.Time
}

// New creates a Manager for the given region. The region is validated once
// here and is immutable afterwards.
//
// The manager starts with a fresh session state: nothing erased and the
// write cursor at the region start. State is never persisted across resets.
//
// Example:
//
//	mgr, err := flash.New(flash.DefaultRegion,
//	    flash.WithPlatform(stm32g0.Ops()),
//	    flash.WithLogger(myLogger),
//	)
func New(region Region, opts ...Option) (*Manager, error) {
	if err := region.Validate(); err != nil {
		return nil, err
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Manager{
		region: region,
		config: cfg,
		ops:    cfg.Platform,
		cursor: region.Start,
	}, nil
}

// Configure rebinds the hardware capability set. The manager borrows the
// reference; it never assumes ownership. Rebinding has no effect on the
// erased latch or the write cursor. Passing nil returns the manager to the
// unconfigured state.
func (m *Manager) Configure(ops platform.Ops) {
	m.ops = ops
}

// Configured reports whether a capability set is currently bound.
func (m *Manager) Configured() bool {
	return m.ops != nil
}

// Read copies words from the given address into dst, bracketed between
// unlock and lock even though reads may not strictly require unlocking;
// every flash access goes through the same discipline.
//
// The copy is word-granular: len(dst)/4 whole words are transferred and a
// trailing partial word is left untouched.
func (m *Manager) Read(address uint32, dst []byte) error {
	if m.ops == nil {
		return ErrUnconfigured
	}

	m.ops.Unlock()
	err := m.readWords(address, dst)
	m.ops.Lock()

	if err != nil {
		return fmt.Errorf("read at 0x%08X: %w", address, err)
	}
	return nil
}

// readWords performs the word-granular copy without touching the lock; the
// caller owns the unlock/lock bracket.
func (m *Manager) readWords(address uint32, dst []byte) error {
	words := len(dst) / 4
	for i := 0; i < words; i++ {
		w, err := m.ops.ReadWord(address + uint32(4*i))
		if err != nil {
			return err
		}
		binary.LittleEndian.PutUint32(dst[4*i:], w)
	}
	return nil
}

// Write programs data at the given absolute address. If the application
// region has not been erased this session, the erase happens first; an
// erase failure aborts the call before any physical write.
//
// The platform's post-write readback failure is returned wrapped in a
// WriteError; the manager does not re-verify and does not retry. Whether
// len(data) must be a multiple of the platform's programming granularity
// is a shared caller/platform responsibility.
func (m *Manager) Write(address uint32, data []byte) error {
	if m.ops == nil {
		return ErrUnconfigured
	}

	if !m.erased {
		if err := m.Erase(); err != nil {
			return err
		}
	}

	m.ops.Unlock()
	err := m.ops.Write(address, data)
	m.ops.Lock()

	if err != nil {
		m.logError("write failed", "address", fmt.Sprintf("0x%08X", address), "size", len(data), "err", err)
		return &WriteError{Address: address, Cause: err}
	}

	m.logDebug("wrote block", "address", fmt.Sprintf("0x%08X", address), "size", len(data))
	return nil
}

// WriteStream programs data at the internally tracked cursor, so callers
// can stream an image in arbitrary-sized chunks without recomputing
// absolute addresses. The cursor starts at the region start and advances
// by len(data) only when the underlying write succeeds; a failing chunk
// leaves it unchanged and may simply be resent.
//
// Erase-before-write enforcement is the same as for Write. Not reentrant:
// exactly one logical writer may drive the cursor at a time.
func (m *Manager) WriteStream(data []byte) error {
	if m.ops == nil {
		return ErrUnconfigured
	}
	if m.cursor+uint32(len(data)) > m.region.End {
		return &RangeError{Address: m.cursor, Size: len(data), End: m.region.End}
	}

	if m.streamStart.IsZero() {
		m.streamStart = time.Now()
	}

	if err := m.Write(m.cursor, data); err != nil {
		return err
	}
	m.cursor += uint32(len(data))

	m.reportProgress(Progress{
		BytesWritten: int(m.cursor - m.region.Start),
		TotalBytes:   int(m.region.Size()),
		Percentage:   float64(m.cursor-m.region.Start) / float64(m.region.Size()) * 100,
		ElapsedTime:  time.Since(m.streamStart),
	})
	return nil
}

// Erase erases the entire application region through the platform's erase
// primitive and latches the erased state on success only, so a failed
// erase is retried transparently by the next write.
//
// Calling Erase directly is not idempotence-guarded: a second call
// re-erases the whole region, discarding anything written so far. That is
// a caller responsibility, not something the manager blocks.
func (m *Manager) Erase() error {
	if m.ops == nil {
		return ErrUnconfigured
	}

	m.ops.Unlock()
	err := m.ops.EraseApp()
	m.ops.Lock()

	if err != nil {
		m.logError("erase failed", "err", err)
		return &EraseError{Cause: err}
	}

	m.erased = true
	m.logInfo("application region erased",
		"start", fmt.Sprintf("0x%08X", m.region.Start),
		"end", fmt.Sprintf("0x%08X", m.region.End),
	)
	return nil
}

// ChecksumApp computes the CRC-32/zlib checksum over the application
// region, excluding the trailing metadata record: exactly
// End − Start − MetadataSize bytes starting at Start. The region is read
// back one word at a time inside a single unlock/lock bracket.
func (m *Manager) ChecksumApp() (uint32, error) {
	if m.ops == nil {
		return 0, ErrUnconfigured
	}

	length := m.region.ChecksumLength()
	digest := crc.New()

	m.ops.Unlock()
	var readErr error
	for off := uint32(0); off < length; off += 4 {
		w, err := m.ops.ReadWord(m.region.Start + off)
		if err != nil {
			readErr = err
			break
		}

		var word [4]byte
		binary.LittleEndian.PutUint32(word[:], w)

		n := length - off
		if n > 4 {
			n = 4
		}
		digest.Write(word[:n])
	}
	m.ops.Lock()

	if readErr != nil {
		return 0, fmt.Errorf("checksum read at 0x%08X: %w", m.region.Start, readErr)
	}

	sum := digest.Sum32()
	m.logDebug("application checksum", "crc32", fmt.Sprintf("0x%08X", sum), "length", length)
	return sum, nil
}

// JumpToApp hands control to the application and does not return on real
// hardware. It quiesces peripherals, reads the application's reset vector
// (first word: initial stack pointer, second word: entry address), tears
// down the system tick, and transfers control through the platform's jump
// primitive.
//
// Precondition: a valid, fully written image exists at the region start.
// The manager performs no validation of the target image; any verification
// (ChecksumApp against a stored record, vector sanity) must happen strictly
// before this call, because nothing can be reported back once peripheral
// teardown begins.
func (m *Manager) JumpToApp() error {
	if m.ops == nil {
		return ErrUnconfigured
	}

	m.logInfo("handing off to application", "entry_vector", fmt.Sprintf("0x%08X", m.region.Start))

	m.ops.DeinitPeripherals()

	sp, err := m.ops.ReadWord(m.region.Start)
	if err != nil {
		return fmt.Errorf("read initial stack pointer: %w", err)
	}
	entry, err := m.ops.ReadWord(m.region.Start + 4)
	if err != nil {
		return fmt.Errorf("read entry address: %w", err)
	}

	m.ops.DeinitSysTick()
	m.ops.Jump(sp, entry)
	return nil
}

// Region returns the manager's region configuration.
func (m *Manager) Region() Region {
	return m.region
}

// AppStart returns the first address of the application region.
func (m *Manager) AppStart() uint32 {
	return m.region.Start
}

// AppEnd returns the exclusive end address of the application region.
func (m *Manager) AppEnd() uint32 {
	return m.region.End
}

// AppSize returns the application region size in bytes.
func (m *Manager) AppSize() uint32 {
	return m.region.Size()
}

// PageSize returns the flash page size.
func (m *Manager) PageSize() uint32 {
	return m.region.PageSize
}

// Cursor returns the next streamed write address.
func (m *Manager) Cursor() uint32 {
	return m.cursor
}

// Erased reports whether the application region has been erased this
// session.
func (m *Manager) Erased() bool {
	return m.erased
}

// reportProgress calls the progress callback if configured.
func (m *Manager) reportProgress(progress Progress) {
	if m.config.ProgressCallback != nil {
		m.config.ProgressCallback(progress)
	}
}

// logDebug logs a debug message if a logger is configured.
func (m *Manager) logDebug(msg string, keysAndValues ...interface{}) {
	if m.config.Logger != nil {
		m.config.Logger.Debug(msg, keysAndValues...)
	}
}

// logInfo logs an info message if a logger is configured.
func (m *Manager) logInfo(msg string, keysAndValues ...interface{}) {
	if m.config.Logger != nil {
		m.config.Logger.Info(msg, keysAndValues...)
	}
}

// logError logs an error message if a logger is configured.
func (m *Manager) logError(msg string, keysAndValues ...interface{}) {
	if m.config.Logger != nil {
		m.config.Logger.Error(msg, keysAndValues...)
	}
}
