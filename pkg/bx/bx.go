// Package bx is the byte-order helper used across the storage kernel: every
// on-disk struct (page headers, slots, TIDs, B-tree entries, catalog frames)
// is hand-packed little-endian through these functions rather than through
// reflection-based encoding.
package bx

import "encoding/binary"

var LE = binary.LittleEndian

// --- LE: fixed-width read/write ---

func U16(b []byte) uint16 { return LE.Uint16(b) }
func U32(b []byte) uint32 { return LE.Uint32(b) }
func U64(b []byte) uint64 { return LE.Uint64(b) }

func PutU16(b []byte, v uint16) { LE.PutUint16(b, v) }
func PutU32(b []byte, v uint32) { LE.PutUint32(b, v) }
func PutU64(b []byte, v uint64) { LE.PutUint64(b, v) }

// --- 24-bit helpers, the width of a direct slot's offset and length fields
// (slotted.Slot itself packs those with shifts into one uint64, not with
// these helpers) ---

// U24 reads a 24-bit little-endian unsigned integer from b[0:3].
func U24(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16
}

// PutU24 writes the low 24 bits of v into b[0:3], little-endian.
func PutU24(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
}

// --- 48-bit helpers, the width of an encoded TID (heap.TID.Encode and the
// forwarding-slot encoding use shifts and masks on a uint64, not these
// helpers) ---

// U48 reads a 48-bit little-endian unsigned integer from b[0:6].
func U48(b []byte) uint64 {
	return uint64(b[0]) | uint64(b[1])<<8 | uint64(b[2])<<16 |
		uint64(b[3])<<24 | uint64(b[4])<<32 | uint64(b[5])<<40
}

// PutU48 writes the low 48 bits of v into b[0:6], little-endian.
func PutU48(b []byte, v uint64) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
	b[4] = byte(v >> 32)
	b[5] = byte(v >> 40)
}

// --- At (offset) convenience wrappers ---

func U16At(b []byte, off int) uint16       { return U16(b[off:]) }
func U32At(b []byte, off int) uint32       { return U32(b[off:]) }
func U64At(b []byte, off int) uint64       { return U64(b[off:]) }
func PutU16At(b []byte, off int, v uint16) { PutU16(b[off:], v) }
func PutU32At(b []byte, off int, v uint32) { PutU32(b[off:], v) }
func PutU64At(b []byte, off int, v uint64) { PutU64(b[off:], v) }
