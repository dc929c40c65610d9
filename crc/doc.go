// Package crc implements the CRC-32/zlib checksum used to verify a freshly
// written application image: reflected polynomial 0xEDB88320, initial value
// 0xFFFFFFFF, final bit-complement.
//
// Checksum handles whole buffers; Digest streams arbitrary chunks, which is
// how the flash manager checksums an application region it reads back one
// word at a time.
package crc
