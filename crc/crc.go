package crc

// Algorithm constants for the CRC-32/zlib variant.
const (
	// Polynomial is the reflected CRC-32 polynomial (0xEDB88320)
	Polynomial = 0xEDB88320

	// initialValue is the starting register value (bit-complement of zero)
	initialValue = 0xFFFFFFFF

	// tableSize is the number of entries in the byte lookup table
	tableSize = 256
)

// table is the 256-entry lookup table. It is a pure function of the
// polynomial, built once at package initialization.
var table = makeTable()

// makeTable builds the byte-wise lookup table for the reflected polynomial:
// entry i is the remainder of i after eight shift/conditional-xor steps.
func makeTable() *[tableSize]uint32 {
	var t [tableSize]uint32
	for i := range t {
		rem := uint32(i)
		for j := 0; j < 8; j++ {
			if rem&1 != 0 {
				rem = (rem >> 1) ^ Polynomial
			} else {
				rem >>= 1
			}
		}
		t[i] = rem
	}
	return &t
}

// update folds p into a running CRC register value.
func update(crc uint32, p []byte) uint32 {
	for _, b := range p {
		crc = table[byte(crc)^b] ^ (crc >> 8)
	}
	return crc
}

// Checksum returns the CRC-32/zlib checksum of data: table-driven, initial
// value ^0, final result bit-complemented.
func Checksum(data []byte) uint32 {
	return ^update(initialValue, data)
}

// Digest computes a CRC-32/zlib checksum incrementally, so callers can feed
// data in chunks without holding the whole buffer.
type Digest struct {
	crc uint32
}

// New returns a Digest ready to accept data.
func New() *Digest {
	return &Digest{crc: initialValue}
}

// Write folds p into the running checksum. It never fails; the error return
// satisfies io.Writer.
func (d *Digest) Write(p []byte) (int, error) {
	d.crc = update(d.crc, p)
	return len(p), nil
}

// Sum32 returns the checksum of the data written so far. The digest remains
// usable; further writes continue from the same state.
func (d *Digest) Sum32() uint32 {
	return ^d.crc
}

// Reset returns the digest to its initial state.
func (d *Digest) Reset() {
	d.crc = initialValue
}
