package slotted

import "github.com/relcore/relcore/pkg/bx"

// HeaderSize is the fixed prefix of every slotted page: four little-endian
// uint64 fields (spec §3/§6 "Slotted page header").
const HeaderSize = 32

// header is the decoded form of a slotted page's first 32 bytes. It is
// always read fresh from and written straight back to the page buffer;
// nothing here is cached across calls.
type header struct {
	SlotCount uint64
	FreeSlot  uint64
	DataStart uint64
	FreeSpace uint64
}

func readHeader(buf []byte) header {
	return header{
		SlotCount: bx.U64At(buf, 0),
		FreeSlot:  bx.U64At(buf, 8),
		DataStart: bx.U64At(buf, 16),
		FreeSpace: bx.U64At(buf, 24),
	}
}

func (h header) write(buf []byte) {
	bx.PutU64At(buf, 0, h.SlotCount)
	bx.PutU64At(buf, 8, h.FreeSlot)
	bx.PutU64At(buf, 16, h.DataStart)
	bx.PutU64At(buf, 24, h.FreeSpace)
}

// isZero reports whether h is the all-zero header spec §3/§4.2 treats as
// "fresh page, not yet initialized".
func (h header) isZero() bool {
	return h.SlotCount == 0 && h.FreeSlot == 0 && h.DataStart == 0 && h.FreeSpace == 0
}

// freshHeader is the materialized form of an all-zero page (spec §4.2
// "Initialization").
func freshHeader(pageSize int) header {
	return header{
		DataStart: uint64(pageSize),
		FreeSpace: uint64(pageSize - HeaderSize),
	}
}
