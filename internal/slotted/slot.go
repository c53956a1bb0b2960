package slotted

import "github.com/relcore/relcore/pkg/bx"

// SlotSize is the on-disk width of one directory entry.
const SlotSize = 8

// forwardTag marks the high 16 bits of a Slot as "this is a forwarding
// entry, not a direct one" (spec §6 "Slot encoding").
const forwardTag = 0xFFFF

// Slot is one entry of a slotted page's directory: either a direct pointer
// into the page's own heap (offset, length), a forwarding pointer to a TID
// living elsewhere, or the empty slot (all zero bits).
type Slot uint64

// NewDirect packs a heap offset and record length into a direct slot.
// Both must fit in 24 bits; callers only ever pass page-local values, which
// are always well under that by construction (pages are 4096 bytes).
func NewDirect(offset, length uint32) Slot {
	return Slot(uint64(offset&0xFFFFFF)<<24 | uint64(length&0xFFFFFF))
}

// NewForward packs a 48-bit TID into a forwarding slot.
func NewForward(tid uint64) Slot {
	return Slot(uint64(forwardTag)<<48 | (tid & 0xFFFFFFFFFFFF))
}

// IsEmpty reports whether the slot is the reserved all-zero "empty" value.
func (s Slot) IsEmpty() bool { return s == 0 }

// IsForward reports whether the slot is a forwarding entry.
func (s Slot) IsForward() bool { return uint64(s)>>48 == forwardTag }

// Offset returns the heap offset of a direct slot. Calling it on a
// forwarding or empty slot is a caller error; it is not validated here,
// mirroring the spec's "unsafe reinterpret" design note — callers branch on
// IsForward/IsEmpty first.
func (s Slot) Offset() uint32 { return uint32(uint64(s) >> 24 & 0xFFFFFF) }

// Length returns the record length of a direct slot.
func (s Slot) Length() uint32 { return uint32(uint64(s) & 0xFFFFFF) }

// TID returns the 48-bit tuple identifier embedded in a forwarding slot.
func (s Slot) TID() uint64 { return uint64(s) & 0xFFFFFFFFFFFF }

// EncodeSlot writes s into b[0:8], little-endian.
func EncodeSlot(b []byte, s Slot) { bx.PutU64(b, uint64(s)) }

// DecodeSlot reads a Slot from b[0:8].
func DecodeSlot(b []byte) Slot { return Slot(bx.U64(b)) }
