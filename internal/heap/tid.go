// Package heap implements the SP segment: a multi-page record store built
// atop slotted pages, addressed by stable TIDs, with forwarding on growth
// (spec §4.3).
package heap

// TID is a 48-bit logical record identifier: a 32-bit page offset within
// its segment plus a 16-bit slot index (spec §3/§6 "TID encoding"). It is
// always resolved against a particular Segment's own segment id — a TID
// alone does not name a segment.
type TID struct {
	Offset uint32
	Slot   uint16
}

// New builds a TID from its page offset and slot index.
func New(offset uint32, slot uint16) TID { return TID{Offset: offset, Slot: slot} }

// Encode packs t into the low 48 bits used by slotted.Slot's forwarding
// encoding and the B-tree's leaf entries.
func (t TID) Encode() uint64 {
	return uint64(t.Offset)<<16 | uint64(t.Slot)
}

// Decode unpacks a 48-bit encoded TID.
func Decode(v uint64) TID {
	return TID{Offset: uint32(v >> 16), Slot: uint16(v & 0xFFFF)}
}
