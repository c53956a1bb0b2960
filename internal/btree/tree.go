package btree

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/relcore/relcore/internal/buffer"
	"github.com/relcore/relcore/internal/heap"
	"github.com/relcore/relcore/internal/pageid"
)

var logPrefix = "btree: "

// ErrZeroKey is a fatal invariant violation: the zero value of a key type
// is reserved to mean "empty slot" and may never be inserted (spec §4.4,
// §7 "an insert of a key equal to the type's zero value").
var ErrZeroKey = errors.New("btree: cannot insert the zero-value key")

// Tree is an ordered key→TID map backed by a chain of pages within one
// segment (spec §3/§4.4 "B-tree"). Page offsets within the segment are
// allocated monotonically and never reclaimed.
type Tree[K comparable] struct {
	bm      *buffer.Manager
	segment int64
	codec   KeyCodec[K]
	root    uint32
	next    uint32
}

// Open returns a Tree view over segment. next == 0 signals a brand new
// segment: the root page is allocated and initialized as an empty leaf.
// Otherwise root/next are the tree's persisted root offset and
// next-free-page counter (the catalog or caller is responsible for keeping
// these durable across restarts; the kernel itself has no segment
// directory of its own).
func Open[K comparable](bm *buffer.Manager, segment int64, codec KeyCodec[K], root, next uint32) (*Tree[K], error) {
	t := &Tree[K]{bm: bm, segment: segment, codec: codec, root: root, next: next}
	if next == 0 {
		if err := t.initPage(0, true, true); err != nil {
			return nil, err
		}
		t.root = 0
		t.next = 1
	}
	return t, nil
}

// Root reports the current root page offset.
func (t *Tree[K]) Root() uint32 { return t.root }

// Next reports the next-free-page counter.
func (t *Tree[K]) Next() uint32 { return t.next }

func (t *Tree[K]) fix(offset uint32) (*buffer.Handle, error) {
	id := pageid.New(t.segment, offset)
	h, err := t.bm.Fix(id)
	if err != nil {
		return nil, fmt.Errorf("btree: fix page %d: %w", id, err)
	}
	return h, nil
}

func (t *Tree[K]) initPage(offset uint32, leaf, dirty bool) error {
	h, err := t.fix(offset)
	if err != nil {
		return err
	}
	h.Lock()
	if leaf {
		initLeaf(h.Bytes(), t.codec)
	} else {
		initBranch(h.Bytes(), t.codec)
	}
	h.Unlock()
	h.Unfix(dirty)
	return nil
}

func (t *Tree[K]) allocatePage(leaf bool) (uint32, error) {
	offset := t.next
	if err := t.initPage(offset, leaf, true); err != nil {
		return 0, err
	}
	t.next++
	return offset, nil
}

// Lookup descends the tree comparing keys, returning the TID of the
// exact-match leaf entry or ok=false if key is absent (spec §4.4
// "lookup").
func (t *Tree[K]) Lookup(key K) (heap.TID, bool, error) {
	offset := t.root
	for {
		h, err := t.fix(offset)
		if err != nil {
			return heap.TID{}, false, err
		}
		h.RLock()
		nd := newNode(h.Bytes(), t.codec)

		if nd.isLeaf {
			cnt := nd.count()
			for i := 0; i < cnt; i++ {
				if nd.leafKeyAt(i) == key {
					tid := nd.leafTIDAt(i)
					h.RUnlock()
					h.Unfix(false)
					return tid, true, nil
				}
			}
			h.RUnlock()
			h.Unfix(false)
			return heap.TID{}, false, nil
		}

		child := t.branchDescendChild(nd, key)
		h.RUnlock()
		h.Unfix(false)
		offset = child
	}
}

// branchDescendChild picks the child whose lower bound is the greatest key
// <= target (spec §4.4 "go right iff key >= separator", resolved in
// SPEC_FULL §5 as: a branch entry's key is the minimum key in its
// subtree).
func (t *Tree[K]) branchDescendChild(nd node[K], target K) uint32 {
	cnt := nd.count()
	idx := 0
	for i := 1; i < cnt; i++ {
		if !t.codec.Less(target, nd.branchKeyAt(i)) {
			idx = i
		} else {
			break
		}
	}
	return nd.branchChildAt(idx)
}

// Insert descends to a leaf and inserts (key, tid), splitting nodes and
// propagating a new root on overflow (spec §4.4 "insert"). key must not be
// the codec's zero value.
func (t *Tree[K]) Insert(key K, tid heap.TID) error {
	if key == t.codec.Zero() {
		panic(fmt.Sprintf("%v", ErrZeroKey))
	}

	overflowed, separator, newPage, err := t.insertInto(t.root, key, tid)
	if err != nil {
		return err
	}
	if !overflowed {
		return nil
	}

	leftMin, err := t.minKey()
	if err != nil {
		return err
	}
	newRoot, err := t.allocatePage(false)
	if err != nil {
		return err
	}
	h, err := t.fix(newRoot)
	if err != nil {
		return err
	}
	h.Lock()
	nd := newNode(h.Bytes(), t.codec)
	nd.writeBranchEntry(0, leftMin, t.root)
	nd.writeBranchEntry(1, separator, newPage)
	h.Unlock()
	h.Unfix(true)

	slog.Debug(logPrefix+"root split", "segment", t.segment, "old_root", t.root, "new_root", newRoot)
	t.root = newRoot
	return nil
}

// minKey returns the smallest key in the whole tree by always descending
// the leftmost child, or the codec's zero value if the tree is empty.
func (t *Tree[K]) minKey() (K, error) {
	offset := t.root
	for {
		h, err := t.fix(offset)
		if err != nil {
			return t.codec.Zero(), err
		}
		h.RLock()
		nd := newNode(h.Bytes(), t.codec)
		if nd.isLeaf {
			cnt := nd.count()
			var k K
			if cnt > 0 {
				k = nd.leafKeyAt(0)
			} else {
				k = t.codec.Zero()
			}
			h.RUnlock()
			h.Unfix(false)
			return k, nil
		}
		child := nd.branchChildAt(0)
		h.RUnlock()
		h.Unfix(false)
		offset = child
	}
}

type leafSlot[K comparable] struct {
	key K
	tid heap.TID
}

type branchSlot[K comparable] struct {
	key   K
	child uint32
}

// insertInto inserts (key, tid) into the subtree rooted at offset,
// returning whether the node at offset overflowed and, if so, the
// separator key and new sibling page for the caller to install.
func (t *Tree[K]) insertInto(offset uint32, key K, tid heap.TID) (overflowed bool, separator K, newPage uint32, err error) {
	h, err := t.fix(offset)
	if err != nil {
		return false, t.codec.Zero(), 0, err
	}
	h.Lock()
	nd := newNode(h.Bytes(), t.codec)

	if nd.isLeaf {
		return t.insertLeaf(h, nd, key, tid)
	}

	child := t.branchDescendChild(nd, key)
	h.Unlock()
	h.Unfix(false)

	childOverflowed, childSep, childNewPage, err := t.insertInto(child, key, tid)
	if err != nil {
		return false, t.codec.Zero(), 0, err
	}
	if !childOverflowed {
		return false, t.codec.Zero(), 0, nil
	}

	h, err = t.fix(offset)
	if err != nil {
		return false, t.codec.Zero(), 0, err
	}
	h.Lock()
	nd = newNode(h.Bytes(), t.codec)
	return t.insertBranchEntry(h, nd, nd.count(), childSep, childNewPage)
}

func (t *Tree[K]) insertLeaf(h *buffer.Handle, nd node[K], key K, tid heap.TID) (bool, K, uint32, error) {
	cnt := nd.count()
	pos := 0
	for pos < cnt && t.codec.Less(nd.leafKeyAt(pos), key) {
		pos++
	}
	if pos < cnt && nd.leafKeyAt(pos) == key {
		nd.writeLeafEntry(pos, key, tid)
		h.Unlock()
		h.Unfix(true)
		return false, t.codec.Zero(), 0, nil
	}

	if cnt < nd.capacity {
		nd.shiftRight(pos, cnt)
		nd.writeLeafEntry(pos, key, tid)
		h.Unlock()
		h.Unfix(true)
		return false, t.codec.Zero(), 0, nil
	}

	entries := make([]leafSlot[K], 0, cnt+1)
	for i := 0; i < cnt; i++ {
		entries = append(entries, leafSlot[K]{key: nd.leafKeyAt(i), tid: nd.leafTIDAt(i)})
	}
	entries = append(entries, leafSlot[K]{key: key, tid: tid})
	sort.Slice(entries, func(i, j int) bool { return t.codec.Less(entries[i].key, entries[j].key) })

	half := (len(entries) + 1) / 2
	for i := 0; i < half; i++ {
		nd.writeLeafEntry(i, entries[i].key, entries[i].tid)
	}
	for i := half; i < nd.capacity; i++ {
		nd.clearEntry(i)
	}
	h.Unlock()
	h.Unfix(true)

	newOffset, err := t.allocatePage(true)
	if err != nil {
		return false, t.codec.Zero(), 0, err
	}
	h2, err := t.fix(newOffset)
	if err != nil {
		return false, t.codec.Zero(), 0, err
	}
	h2.Lock()
	nd2 := newNode(h2.Bytes(), t.codec)
	for i := half; i < len(entries); i++ {
		nd2.writeLeafEntry(i-half, entries[i].key, entries[i].tid)
	}
	h2.Unlock()
	h2.Unfix(true)

	slog.Debug(logPrefix+"leaf split", "segment", t.segment, "new_page", newOffset, "separator", entries[half].key)
	return true, entries[half].key, newOffset, nil
}

func (t *Tree[K]) insertBranchEntry(h *buffer.Handle, nd node[K], cnt int, key K, child uint32) (bool, K, uint32, error) {
	pos := 0
	for pos < cnt && t.codec.Less(nd.branchKeyAt(pos), key) {
		pos++
	}

	if cnt < nd.capacity {
		nd.shiftRight(pos, cnt)
		nd.writeBranchEntry(pos, key, child)
		h.Unlock()
		h.Unfix(true)
		return false, t.codec.Zero(), 0, nil
	}

	entries := make([]branchSlot[K], 0, cnt+1)
	for i := 0; i < cnt; i++ {
		entries = append(entries, branchSlot[K]{key: nd.branchKeyAt(i), child: nd.branchChildAt(i)})
	}
	entries = append(entries, branchSlot[K]{key: key, child: child})
	sort.Slice(entries, func(i, j int) bool { return t.codec.Less(entries[i].key, entries[j].key) })

	half := (len(entries) + 1) / 2
	for i := 0; i < half; i++ {
		nd.writeBranchEntry(i, entries[i].key, entries[i].child)
	}
	for i := half; i < nd.capacity; i++ {
		nd.clearEntry(i)
	}
	h.Unlock()
	h.Unfix(true)

	newOffset, err := t.allocatePage(false)
	if err != nil {
		return false, t.codec.Zero(), 0, err
	}
	h2, err := t.fix(newOffset)
	if err != nil {
		return false, t.codec.Zero(), 0, err
	}
	h2.Lock()
	nd2 := newNode(h2.Bytes(), t.codec)
	for i := half; i < len(entries); i++ {
		nd2.writeBranchEntry(i-half, entries[i].key, entries[i].child)
	}
	h2.Unlock()
	h2.Unfix(true)

	slog.Debug(logPrefix+"branch split", "segment", t.segment, "new_page", newOffset, "separator", entries[half].key)
	return true, entries[half].key, newOffset, nil
}

// Erase zeroes the leaf entry for key, shifting subsequent entries left to
// close the gap (spec §4.4 "erase"). Rebalancing/merging is a non-goal.
// key not found is a no-op.
func (t *Tree[K]) Erase(key K) error {
	offset := t.root
	for {
		h, err := t.fix(offset)
		if err != nil {
			return err
		}
		h.Lock()
		nd := newNode(h.Bytes(), t.codec)

		if nd.isLeaf {
			cnt := nd.count()
			for i := 0; i < cnt; i++ {
				if nd.leafKeyAt(i) == key {
					nd.shiftLeft(i, cnt)
					h.Unlock()
					h.Unfix(true)
					return nil
				}
			}
			h.Unlock()
			h.Unfix(false)
			return nil
		}

		child := t.branchDescendChild(nd, key)
		h.Unlock()
		h.Unfix(false)
		offset = child
	}
}
