// Package slotted interprets a raw page buffer as a slotted page: header +
// upward-growing slot directory + downward-growing heap (spec §3/§4.2).
// Every function here takes the page's byte buffer directly; callers are
// responsible for holding the frame lock that guards it (buffer.Handle's
// Lock/RLock) — this package knows nothing about frames or pinning.
package slotted

import (
	"errors"
	"fmt"
)

// ErrNoRoom is returned by TryInsert when the page does not have enough
// free space for the record; it is not a fatal error, callers try the next
// page (spec §4.3 "SP segment").
var ErrNoRoom = errors.New("slotted: not enough free space on page")

// ErrNotFound is returned by Lookup/Update for a slot index that was
// never assigned, distinct from "assigned but empty" (spec §7 "Not found").
var ErrNotFound = errors.New("slotted: slot index out of range")

// Page is a thin, stateless view over a page buffer. It never allocates or
// retains buf; every method re-reads the header from the front of buf.
type Page struct {
	Buf      []byte
	PageSize int
}

// New wraps buf as a Page, lazily materializing the header if buf is a
// fresh all-zero page (spec §4.2 "Initialization").
func New(buf []byte) Page {
	p := Page{Buf: buf, PageSize: len(buf)}
	h := readHeader(buf)
	if h.isZero() {
		freshHeader(p.PageSize).write(buf)
	}
	return p
}

func (p Page) slotOffset(slotID uint64) int {
	return HeaderSize + int(slotID)*SlotSize
}

func (p Page) readSlot(slotID uint64) Slot {
	off := p.slotOffset(slotID)
	return DecodeSlot(p.Buf[off : off+SlotSize])
}

func (p Page) writeSlot(slotID uint64, s Slot) {
	off := p.slotOffset(slotID)
	EncodeSlot(p.Buf[off:off+SlotSize], s)
}

// TryInsert appends record to the page's heap and allocates the next slot
// id for it, succeeding iff free_space >= len(record) + SlotSize
// (spec §4.2 "try_insert"). Returns ErrNoRoom, never a fatal error, when it
// does not fit.
func (p Page) TryInsert(record []byte) (slotID uint64, err error) {
	h := readHeader(p.Buf)
	need := uint64(len(record)) + SlotSize
	if h.FreeSpace < need {
		return 0, ErrNoRoom
	}

	newDataStart := h.DataStart - uint64(len(record))
	copy(p.Buf[newDataStart:h.DataStart], record)

	slotID = h.FreeSlot
	p.writeSlot(slotID, NewDirect(uint32(newDataStart), uint32(len(record))))

	h.DataStart = newDataStart
	h.FreeSlot++
	h.SlotCount++
	h.FreeSpace -= need
	h.write(p.Buf)
	return slotID, nil
}

// LookupResult is the outcome of Lookup: exactly one of Record or TID
// is meaningful, selected by IsForward.
type LookupResult struct {
	IsForward bool
	Record    []byte // copy of the record bytes, valid iff !IsForward
	TID       uint64 // forwarded TID, valid iff IsForward
}

// Lookup reads the slot at slotID. A direct slot yields a copy of its
// record bytes; a forwarding slot yields the TID the caller must chase
// (spec §4.2 "lookup"). slotID values beyond FreeSlot are ErrNotFound; an
// empty (zeroed, but allocated) slot yields a zero-length direct record.
func (p Page) Lookup(slotID uint64) (LookupResult, error) {
	h := readHeader(p.Buf)
	if slotID >= h.FreeSlot {
		return LookupResult{}, fmt.Errorf("slotted: lookup slot %d: %w", slotID, ErrNotFound)
	}
	s := p.readSlot(slotID)
	if s.IsForward() {
		return LookupResult{IsForward: true, TID: s.TID()}, nil
	}
	if s.IsEmpty() {
		return LookupResult{Record: nil}, nil
	}
	rec := make([]byte, s.Length())
	copy(rec, p.Buf[s.Offset():s.Offset()+s.Length()])
	return LookupResult{Record: rec}, nil
}

// UpdateResult reports whether an Update must be followed by the caller
// removing a previous forwarding target (spec §4.2 "update").
type UpdateResult struct {
	MustDeleteOld bool
	OldTID        uint64
}

// Update overwrites the slot at slotID with a forwarding slot pointing at
// newTID. If the slot was already forwarding somewhere else, the caller
// must remove that old target to avoid leaking it.
func (p Page) Update(slotID uint64, newTID uint64) (UpdateResult, error) {
	h := readHeader(p.Buf)
	if slotID >= h.FreeSlot {
		return UpdateResult{}, fmt.Errorf("slotted: update slot %d: %w", slotID, ErrNotFound)
	}
	prev := p.readSlot(slotID)
	p.writeSlot(slotID, NewForward(newTID))
	if prev.IsForward() {
		return UpdateResult{MustDeleteOld: true, OldTID: prev.TID()}, nil
	}
	return UpdateResult{}, nil
}

// RemoveResult reports whether a Remove must cascade to a forwarded TID
// (spec §4.2 "remove").
type RemoveResult struct {
	MustDeleteForward bool
	ForwardTID        uint64
}

// Remove zeros the slot at slotID and decrements slot_count. Removing an
// index beyond FreeSlot, or a slot that is already empty, is a no-op that
// returns a zero RemoveResult and a nil error, not ErrNotFound — spec §7
// says "SP.remove on a never-inserted TID" is a no-op, not an error.
func (p Page) Remove(slotID uint64) (RemoveResult, error) {
	h := readHeader(p.Buf)
	if slotID >= h.FreeSlot {
		return RemoveResult{}, nil
	}
	s := p.readSlot(slotID)
	if s.IsEmpty() {
		return RemoveResult{}, nil
	}
	p.writeSlot(slotID, Slot(0))
	if h.SlotCount > 0 {
		h.SlotCount--
	}
	h.write(p.Buf)
	if s.IsForward() {
		return RemoveResult{MustDeleteForward: true, ForwardTID: s.TID()}, nil
	}
	return RemoveResult{}, nil
}

// FreeSpace returns the page's current free_space header field, exposed
// for the testable invariant in spec §8 and for SP segment's page-scan.
func (p Page) FreeSpace() uint64 { return readHeader(p.Buf).FreeSpace }

// SlotCount returns the page's current slot_count header field.
func (p Page) SlotCount() uint64 { return readHeader(p.Buf).SlotCount }

// CheckInvariant verifies the spec §8 quantified invariant:
// free_space + slot_count*SlotSize + (PageSize - data_start) + HeaderSize == PageSize.
//
// The directory term here is free_slot, not slot_count: removed slots are
// zeroed in place and slot_count is decremented, but the directory region
// they occupy is never reclaimed (spec §4.3 "no reclamation"), so free_space
// only ever tracks free_slot's advance, not slot_count's retreat.
func (p Page) CheckInvariant() bool {
	h := readHeader(p.Buf)
	lhs := h.FreeSpace + h.FreeSlot*SlotSize + (uint64(p.PageSize) - h.DataStart) + HeaderSize
	return lhs == uint64(p.PageSize)
}
