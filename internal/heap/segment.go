package heap

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/relcore/relcore/internal/buffer"
	"github.com/relcore/relcore/internal/pageid"
	"github.com/relcore/relcore/internal/slotted"
)

var logPrefix = "heap: "

// ErrSegmentExhausted is returned by Insert when no existing or newly
// allocated page can hold the record (spec §4.3 "Returns None only if the
// segment is exhausted").
var ErrSegmentExhausted = errors.New("heap: segment exhausted, record does not fit on any page")

// ErrMultiLevelForward is a fatal invariant violation: a forwarding slot's
// target must always be a direct slot (spec §4.3 "multi-level forwarding
// is forbidden").
var ErrMultiLevelForward = errors.New("heap: multi-level forwarding chain")

// Segment is a record store over a single segment id, built on the buffer
// manager. It tracks the number of pages it has ever allocated so Insert
// knows where to extend the segment when every existing page is full.
type Segment struct {
	bm      *buffer.Manager
	segment int64
	pages   uint32 // count of pages ever allocated in this segment
}

// Open returns a Segment view over segment within bm. pages is the number
// of pages already allocated to this segment (the caller tracks this
// across process restarts, e.g. via the schema catalog or a fixed
// convention; the kernel itself keeps no segment directory).
func Open(bm *buffer.Manager, segment int64, pages uint32) *Segment {
	return &Segment{bm: bm, segment: segment, pages: pages}
}

// Pages reports how many pages have been allocated to this segment so far.
func (s *Segment) Pages() uint32 { return s.pages }

// Insert scans pages in increasing offset order, trying each one, and
// returns the TID of the page/slot that accepted the record. If every
// existing page is full it allocates one more page and retries there once
// (spec §4.3 "insert").
func (s *Segment) Insert(record []byte) (TID, error) {
	for offset := uint32(0); offset < s.pages; offset++ {
		tid, ok, err := s.tryInsertAt(offset, record)
		if err != nil {
			return TID{}, err
		}
		if ok {
			return tid, nil
		}
	}

	offset := s.pages
	tid, ok, err := s.tryInsertAt(offset, record)
	if err != nil {
		return TID{}, err
	}
	if !ok {
		return TID{}, fmt.Errorf("heap: insert %d bytes: %w", len(record), ErrSegmentExhausted)
	}
	s.pages++
	return tid, nil
}

func (s *Segment) tryInsertAt(offset uint32, record []byte) (TID, bool, error) {
	id := pageid.New(s.segment, offset)
	h, err := s.bm.Fix(id)
	if err != nil {
		return TID{}, false, fmt.Errorf("heap: fix page %d: %w", id, err)
	}

	h.Lock()
	p := slotted.New(h.Bytes())
	slotID, insErr := p.TryInsert(record)
	h.Unlock()

	if errors.Is(insErr, slotted.ErrNoRoom) {
		h.Unfix(false)
		return TID{}, false, nil
	}
	if insErr != nil {
		h.Unfix(false)
		return TID{}, false, insErr
	}

	h.Unfix(true)
	tid := New(offset, uint16(slotID))
	slog.Debug(logPrefix+"insert", "segment", s.segment, "tid", tid)
	return tid, true, nil
}

// Lookup resolves tid to its record bytes, following at most one
// forwarding hop (spec §4.3 "lookup"). A forward-to-forward chain is a
// fatal invariant violation.
func (s *Segment) Lookup(tid TID) ([]byte, error) {
	rec, forward, err := s.lookupAt(tid)
	if err != nil {
		return nil, err
	}
	if forward == nil {
		return rec, nil
	}
	rec2, forward2, err := s.lookupAt(*forward)
	if err != nil {
		return nil, err
	}
	if forward2 != nil {
		panic(fmt.Sprintf("heap: %v: tid %v forwards to %v which forwards again", ErrMultiLevelForward, tid, *forward))
	}
	return rec2, nil
}

func (s *Segment) lookupAt(tid TID) (record []byte, forward *TID, err error) {
	id := pageid.New(s.segment, tid.Offset)
	h, err := s.bm.Fix(id)
	if err != nil {
		return nil, nil, fmt.Errorf("heap: fix page %d: %w", id, err)
	}
	defer h.Unfix(false)

	h.RLock()
	defer h.RUnlock()

	p := slotted.New(h.Bytes())
	res, err := p.Lookup(uint64(tid.Slot))
	if err != nil {
		return nil, nil, fmt.Errorf("heap: lookup %v: %w", tid, err)
	}
	if res.IsForward {
		t := Decode(res.TID)
		return nil, &t, nil
	}
	return res.Record, nil, nil
}

// Update always inserts the new record as a fresh TID, then installs a
// forwarding slot at the original tid pointing to it, preserving tid for
// external references such as index entries (spec §4.3 "update"). If tid
// was already forwarding, the stale forward target is removed.
func (s *Segment) Update(tid TID, record []byte) error {
	newTID, err := s.Insert(record)
	if err != nil {
		return err
	}

	id := pageid.New(s.segment, tid.Offset)
	h, err := s.bm.Fix(id)
	if err != nil {
		return fmt.Errorf("heap: fix page %d: %w", id, err)
	}

	h.Lock()
	p := slotted.New(h.Bytes())
	res, err := p.Update(uint64(tid.Slot), newTID.Encode())
	h.Unlock()
	h.Unfix(true)
	if err != nil {
		return fmt.Errorf("heap: update %v: %w", tid, err)
	}

	if res.MustDeleteOld {
		if err := s.Remove(Decode(res.OldTID)); err != nil {
			return fmt.Errorf("heap: remove stale forward target of %v: %w", tid, err)
		}
	}
	slog.Debug(logPrefix+"update", "segment", s.segment, "tid", tid, "new_tid", newTID)
	return nil
}

// Remove zeros tid's slot; if it was a forwarding slot, cascades to remove
// the forwarded target too (spec §4.3 "remove"). Removing a never-inserted
// TID is a no-op (spec §7 "Not found").
func (s *Segment) Remove(tid TID) error {
	id := pageid.New(s.segment, tid.Offset)
	h, err := s.bm.Fix(id)
	if err != nil {
		return fmt.Errorf("heap: fix page %d: %w", id, err)
	}

	h.Lock()
	p := slotted.New(h.Bytes())
	res, err := p.Remove(uint64(tid.Slot))
	h.Unlock()
	h.Unfix(true)
	if err != nil {
		return fmt.Errorf("heap: remove %v: %w", tid, err)
	}

	if res.MustDeleteForward {
		return s.Remove(Decode(res.ForwardTID))
	}
	return nil
}
