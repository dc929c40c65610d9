package flash

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moffa90/go-flashboot/crc"
	"github.com/moffa90/go-flashboot/platform"
)

// testRegion mirrors the canonical small-target layout used throughout the
// suite: a 4 KiB application region with a 4-byte trailing checksum record.
var testRegion = Region{
	Start:        0x1000,
	End:          0x2000,
	PageSize:     0x800,
	MetadataSize: 4,
}

func newTestManager(t *testing.T, opts ...Option) (*Manager, *platform.Simulator) {
	t.Helper()

	sim := platform.NewSimulator(testRegion.Start, testRegion.End)
	mgr, err := New(testRegion, append([]Option{WithPlatform(sim)}, opts...)...)
	require.NoError(t, err)

	return mgr, sim
}

// testImage returns n deterministic non-trivial bytes.
func testImage(n int) []byte {
	img := make([]byte, n)
	for i := range img {
		img[i] = byte(i*31 + 7)
	}
	return img
}

func TestWriteStreamAdvancesCursor(t *testing.T) {
	mgr, sim := newTestManager(t)

	require.Equal(t, uint32(0x1000), mgr.Cursor())

	require.NoError(t, mgr.WriteStream(testImage(0x10)))
	assert.Equal(t, uint32(0x1010), mgr.Cursor())

	require.NoError(t, mgr.WriteStream(testImage(0x10)))
	assert.Equal(t, uint32(0x1020), mgr.Cursor())

	// Both chunks share a single erase.
	assert.Equal(t, 1, sim.EraseCalls())
	assert.Equal(t, 2, sim.WriteCalls())
}

func TestWriteStreamFailingChunkLeavesCursor(t *testing.T) {
	mgr, sim := newTestManager(t)

	require.NoError(t, mgr.WriteStream(testImage(0x20)))
	require.Equal(t, uint32(0x1020), mgr.Cursor())

	injected := errors.New("programming voltage droop")
	sim.SetWriteError(injected)

	err := mgr.WriteStream(testImage(0x20))
	require.Error(t, err)

	var writeErr *WriteError
	require.ErrorAs(t, err, &writeErr)
	assert.Equal(t, uint32(0x1020), writeErr.Address)
	assert.ErrorIs(t, err, injected)

	// The failed chunk must not move the cursor, so the caller can
	// simply resend it.
	assert.Equal(t, uint32(0x1020), mgr.Cursor())

	sim.SetWriteError(nil)
	require.NoError(t, mgr.WriteStream(testImage(0x20)))
	assert.Equal(t, uint32(0x1040), mgr.Cursor())
}

func TestEraseHappensOncePerLifetime(t *testing.T) {
	mgr, sim := newTestManager(t)

	require.NoError(t, mgr.WriteStream(testImage(8)))
	require.NoError(t, mgr.Write(0x1800, testImage(8)))
	require.NoError(t, mgr.WriteStream(testImage(8)))

	assert.Equal(t, 1, sim.EraseCalls())
	assert.True(t, mgr.Erased())

	// A direct Erase is deliberately not idempotence-guarded: it
	// re-erases the whole region.
	require.NoError(t, mgr.Erase())
	assert.Equal(t, 2, sim.EraseCalls())
}

func TestEraseFailureRetriedOnNextWrite(t *testing.T) {
	mgr, sim := newTestManager(t)

	injected := errors.New("page erase timeout")
	sim.SetEraseError(injected)

	err := mgr.WriteStream(testImage(8))
	require.Error(t, err)

	var eraseErr *EraseError
	require.ErrorAs(t, err, &eraseErr)
	assert.ErrorIs(t, err, injected)

	// The write must abort before the physical write, and the latch
	// must stay clear so the next write retries the erase.
	assert.False(t, mgr.Erased())
	assert.Equal(t, 0, sim.WriteCalls())
	assert.Equal(t, 1, sim.EraseCalls())
	assert.Equal(t, uint32(0x1000), mgr.Cursor())

	sim.SetEraseError(nil)
	require.NoError(t, mgr.WriteStream(testImage(8)))

	assert.True(t, mgr.Erased())
	assert.Equal(t, 2, sim.EraseCalls())
	assert.Equal(t, 1, sim.WriteCalls())
}

func TestUnconfiguredOperations(t *testing.T) {
	mgr, sim := newTestManager(t)

	// Establish some session state, then unbind the capability set.
	require.NoError(t, mgr.WriteStream(testImage(8)))
	mgr.Configure(nil)
	require.False(t, mgr.Configured())

	unlocks := sim.UnlockCalls()
	writes := sim.WriteCalls()
	erases := sim.EraseCalls()

	assert.ErrorIs(t, mgr.Read(0x1000, make([]byte, 8)), ErrUnconfigured)
	assert.ErrorIs(t, mgr.Write(0x1000, testImage(8)), ErrUnconfigured)
	assert.ErrorIs(t, mgr.WriteStream(testImage(8)), ErrUnconfigured)
	assert.ErrorIs(t, mgr.Erase(), ErrUnconfigured)

	_, err := mgr.ChecksumApp()
	assert.ErrorIs(t, err, ErrUnconfigured)

	assert.ErrorIs(t, mgr.JumpToApp(), ErrUnconfigured)

	// No capability function may have been invoked.
	assert.Equal(t, unlocks, sim.UnlockCalls())
	assert.Equal(t, writes, sim.WriteCalls())
	assert.Equal(t, erases, sim.EraseCalls())

	_, _, jumped := sim.Jumped()
	assert.False(t, jumped)
}

func TestConfigureRebindPreservesState(t *testing.T) {
	mgr, simA := newTestManager(t)

	require.NoError(t, mgr.WriteStream(testImage(0x10)))
	require.Equal(t, 1, simA.EraseCalls())

	// Rebind to a second device that is already blank.
	simB := platform.NewSimulator(testRegion.Start, testRegion.End)
	blank := make([]byte, testRegion.Size())
	for i := range blank {
		blank[i] = 0xFF
	}
	simB.Load(testRegion.Start, blank)

	mgr.Configure(simB)

	// Rebinding must not touch the erased latch or the cursor.
	assert.True(t, mgr.Erased())
	assert.Equal(t, uint32(0x1010), mgr.Cursor())

	require.NoError(t, mgr.WriteStream(testImage(0x10)))
	assert.Equal(t, 0, simB.EraseCalls())
	assert.Equal(t, 1, simB.WriteCalls())
	assert.Equal(t, uint32(0x1020), mgr.Cursor())
}

func TestChecksumApp(t *testing.T) {
	mgr, _ := newTestManager(t)

	img := testImage(int(testRegion.Size()))
	require.NoError(t, mgr.Write(testRegion.Start, img))

	want := crc.Checksum(img[:testRegion.Size()-testRegion.MetadataSize])

	got, err := mgr.ChecksumApp()
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// The metadata record must be excluded: flipping it does not change
	// the checksum. Rewrite requires a fresh erase first.
	require.NoError(t, mgr.Erase())
	tampered := append([]byte(nil), img...)
	tampered[len(tampered)-1] ^= 0xFF
	require.NoError(t, mgr.Write(testRegion.Start, tampered))

	again, err := mgr.ChecksumApp()
	require.NoError(t, err)
	assert.Equal(t, want, again)
}

func TestChecksumAppIsStable(t *testing.T) {
	mgr, _ := newTestManager(t)

	// Stream a partial image; the rest of the region stays blank.
	chunk := testImage(0x40)
	require.NoError(t, mgr.WriteStream(chunk))

	full := make([]byte, testRegion.Size()-testRegion.MetadataSize)
	for i := range full {
		full[i] = 0xFF
	}
	copy(full, chunk)
	want := crc.Checksum(full)

	first, err := mgr.ChecksumApp()
	require.NoError(t, err)
	second, err := mgr.ChecksumApp()
	require.NoError(t, err)

	assert.Equal(t, want, first)
	assert.Equal(t, first, second)
}

func TestJumpToApp(t *testing.T) {
	mgr, sim := newTestManager(t)

	// Reset-vector convention: first word is the initial stack pointer,
	// second word is the entry address.
	sim.Load(testRegion.Start, []byte{
		0x00, 0x40, 0x00, 0x20, // SP 0x20004000
		0x35, 0x12, 0x00, 0x00, // entry 0x00001235
	})

	require.NoError(t, mgr.JumpToApp())

	sp, entry, jumped := sim.Jumped()
	require.True(t, jumped)
	assert.Equal(t, uint32(0x20004000), sp)
	assert.Equal(t, uint32(0x00001235), entry)

	assert.True(t, sim.PeripheralsDeinited())
	assert.True(t, sim.SysTickDeinited())
}

func TestRead(t *testing.T) {
	mgr, sim := newTestManager(t)

	sim.Load(0x1100, []byte{0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77, 0x88})

	dst := make([]byte, 8)
	require.NoError(t, mgr.Read(0x1100, dst))
	assert.Equal(t, []byte{0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77, 0x88}, dst)

	// The copy is word-granular: a trailing partial word is not
	// transferred.
	partial := []byte{0xAA, 0xAA, 0xAA, 0xAA, 0xAA, 0xAA}
	require.NoError(t, mgr.Read(0x1100, partial))
	assert.Equal(t, []byte{0x11, 0x22, 0x33, 0x44, 0xAA, 0xAA}, partial)

	// Reads are bracketed by unlock/lock like every other access.
	assert.True(t, sim.Locked())
	assert.Equal(t, sim.UnlockCalls(), sim.LockCalls())
}

func TestWriteStreamRejectsOverrun(t *testing.T) {
	mgr, sim := newTestManager(t)

	err := mgr.WriteStream(testImage(int(testRegion.Size()) + 1))
	require.Error(t, err)

	var rangeErr *RangeError
	require.ErrorAs(t, err, &rangeErr)
	assert.Equal(t, uint32(0x1000), rangeErr.Address)
	assert.Equal(t, int(testRegion.Size())+1, rangeErr.Size)

	// Rejected before any capability call, including the erase.
	assert.Equal(t, 0, sim.EraseCalls())
	assert.Equal(t, 0, sim.WriteCalls())
	assert.Equal(t, uint32(0x1000), mgr.Cursor())

	// Filling the region exactly is fine.
	require.NoError(t, mgr.WriteStream(testImage(int(testRegion.Size()))))
	assert.Equal(t, testRegion.End, mgr.Cursor())

	err = mgr.WriteStream(testImage(1))
	require.ErrorAs(t, err, &rangeErr)
}

func TestLockDiscipline(t *testing.T) {
	mgr, sim := newTestManager(t)

	require.NoError(t, mgr.WriteStream(testImage(8)))
	require.NoError(t, mgr.Read(0x1000, make([]byte, 4)))
	_, err := mgr.ChecksumApp()
	require.NoError(t, err)

	assert.True(t, sim.Locked())
	assert.Equal(t, sim.UnlockCalls(), sim.LockCalls())
}

func TestProgressReporting(t *testing.T) {
	var reports []Progress

	sim := platform.NewSimulator(testRegion.Start, testRegion.End)
	mgr, err := New(testRegion,
		WithPlatform(sim),
		WithProgressCallback(func(p Progress) {
			reports = append(reports, p)
		}),
	)
	require.NoError(t, err)

	require.NoError(t, mgr.WriteStream(testImage(0x400)))
	require.NoError(t, mgr.WriteStream(testImage(0x400)))

	require.Len(t, reports, 2)
	assert.Equal(t, 0x400, reports[0].BytesWritten)
	assert.Equal(t, 0x800, reports[1].BytesWritten)
	assert.Equal(t, int(testRegion.Size()), reports[0].TotalBytes)
	assert.InDelta(t, 25.0, reports[0].Percentage, 0.01)
	assert.InDelta(t, 50.0, reports[1].Percentage, 0.01)

	// A failing chunk reports nothing.
	sim.SetWriteError(errors.New("boom"))
	require.Error(t, mgr.WriteStream(testImage(0x400)))
	assert.Len(t, reports, 2)
}

func TestRegionAccessors(t *testing.T) {
	mgr, _ := newTestManager(t)

	assert.Equal(t, uint32(0x1000), mgr.AppStart())
	assert.Equal(t, uint32(0x2000), mgr.AppEnd())
	assert.Equal(t, uint32(0x1000), mgr.AppSize())
	assert.Equal(t, uint32(0x800), mgr.PageSize())
	assert.Equal(t, testRegion, mgr.Region())
}

func TestNewRejectsInvalidRegion(t *testing.T) {
	bad := Region{Start: 0x2000, End: 0x1000, PageSize: 0x800}

	mgr, err := New(bad)
	require.Nil(t, mgr)

	var regionErr *RegionError
	require.ErrorAs(t, err, &regionErr)
}
