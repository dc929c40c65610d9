package flash

// Region describes the application's flash address range. It is fixed
// configuration per target and never changes after the manager is created.
type Region struct {
	// Start is the first address of the application region.
	Start uint32

	// End is the address one past the last byte of the region (exclusive).
	End uint32

	// PageSize is the flash page size, the granularity of erase
	// operations on the target.
	PageSize uint32

	// MetadataSize is the number of trailing bytes excluded from CRC
	// computation, reserved for a stored checksum/version record.
	MetadataSize uint32
}

// DefaultRegion is the layout of the original target, an STM32G0 with the
// bootloader in the first 24 KiB: application at [0x08006000, 0x08020000),
// 2 KiB pages, and a 4-byte checksum record at the end.
var DefaultRegion = Region{
	Start:        0x08006000,
	End:          0x08020000,
	PageSize:     0x800,
	MetadataSize: 4,
}

// Validate checks the region invariants: End > Start, a non-zero page size,
// and a metadata record strictly smaller than the region.
func (r Region) Validate() error {
	if r.End <= r.Start {
		return &RegionError{Reason: "end address must be greater than start address"}
	}
	if r.PageSize == 0 {
		return &RegionError{Reason: "page size must be non-zero"}
	}
	if r.MetadataSize >= r.End-r.Start {
		return &RegionError{Reason: "metadata size must be smaller than the region"}
	}
	return nil
}

// Size returns the region size in bytes.
func (r Region) Size() uint32 {
	return r.End - r.Start
}

// ChecksumLength returns the number of bytes covered by the application
// CRC: the region size minus the trailing metadata record.
func (r Region) ChecksumLength() uint32 {
	return r.Size() - r.MetadataSize
}
