package btree

import (
	"github.com/relcore/relcore/internal/heap"
	"github.com/relcore/relcore/pkg/bx"
)

const (
	tagLeaf   = 0xFF
	tagBranch = 0x00

	tagSize = 1
	// tidSize and childSize are machine-width (8 bytes), matching the
	// spec's "machine-width unsigned integer" fields elsewhere on the
	// page (spec §3 slotted-page header) rather than bit-packed — entry
	// layout here is explicit field-by-field serialization (spec §9
	// "unsafe reinterpret" design note, option (a)), not a tight packing.
	tidSize   = 8
	childSize = 8
)

// node is a dense, gap-free, sorted-prefix view over one B-tree page (spec
// §5 "B-tree node layout" open-question resolution). Entries occupy
// entrySize-byte slots starting right after the tag byte; "count" is the
// length of the leading non-empty run, "capacity" is the total number of
// entry slots the page holds (the free slots are capacity minus count).
type node[K comparable] struct {
	buf       []byte
	codec     KeyCodec[K]
	isLeaf    bool
	entrySize int
	capacity  int
}

func newNode[K comparable](buf []byte, codec KeyCodec[K]) node[K] {
	if buf[0] != tagLeaf && buf[0] != tagBranch {
		panic("btree: node tag byte is neither leaf nor branch")
	}
	isLeaf := buf[0] == tagLeaf
	var entrySize int
	if isLeaf {
		entrySize = codec.Size() + tidSize
	} else {
		entrySize = codec.Size() + childSize
	}
	return node[K]{
		buf:       buf,
		codec:     codec,
		isLeaf:    isLeaf,
		entrySize: entrySize,
		capacity:  (len(buf) - tagSize) / entrySize,
	}
}

// initLeaf stamps buf as a fresh empty leaf for codec.
func initLeaf[K comparable](buf []byte, codec KeyCodec[K]) node[K] {
	clear(buf)
	buf[0] = tagLeaf
	return newNode(buf, codec)
}

// initBranch stamps buf as a fresh empty branch for codec.
func initBranch[K comparable](buf []byte, codec KeyCodec[K]) node[K] {
	clear(buf)
	buf[0] = tagBranch
	return newNode(buf, codec)
}

func (n node[K]) entryOffset(i int) int { return tagSize + i*n.entrySize }

// count returns the length of the dense, non-empty entry prefix.
func (n node[K]) count() int {
	zero := n.codec.Zero()
	for i := 0; i < n.capacity; i++ {
		k, tailZero := n.peekEntry(i)
		if k == zero && tailZero {
			return i
		}
	}
	return n.capacity
}

// peekEntry reports the key at i and whether its trailing TID/child field
// is all-zero, used only to detect the empty sentinel in count().
func (n node[K]) peekEntry(i int) (key K, tailZero bool) {
	off := n.entryOffset(i)
	key = n.codec.Decode(n.buf[off : off+n.codec.Size()])
	tail := n.buf[off+n.codec.Size() : off+n.entrySize]
	for _, b := range tail {
		if b != 0 {
			return key, false
		}
	}
	return key, true
}

// leafKeyAt/leafTIDAt/branchKeyAt/branchChildAt read entry i without
// bounds checking beyond what callers already guarantee via count().

func (n node[K]) leafKeyAt(i int) K {
	off := n.entryOffset(i)
	return n.codec.Decode(n.buf[off : off+n.codec.Size()])
}

func (n node[K]) leafTIDAt(i int) heap.TID {
	off := n.entryOffset(i) + n.codec.Size()
	return heap.Decode(bx.U64(n.buf[off : off+tidSize]))
}

func (n node[K]) branchKeyAt(i int) K {
	off := n.entryOffset(i)
	return n.codec.Decode(n.buf[off : off+n.codec.Size()])
}

func (n node[K]) branchChildAt(i int) uint32 {
	off := n.entryOffset(i) + n.codec.Size()
	return uint32(bx.U64(n.buf[off : off+childSize]))
}

func (n node[K]) writeLeafEntry(i int, key K, tid heap.TID) {
	off := n.entryOffset(i)
	n.codec.Encode(n.buf[off:off+n.codec.Size()], key)
	bx.PutU64(n.buf[off+n.codec.Size():off+n.entrySize], tid.Encode())
}

func (n node[K]) writeBranchEntry(i int, key K, child uint32) {
	off := n.entryOffset(i)
	n.codec.Encode(n.buf[off:off+n.codec.Size()], key)
	bx.PutU64(n.buf[off+n.codec.Size():off+n.entrySize], uint64(child))
}

func (n node[K]) clearEntry(i int) {
	off := n.entryOffset(i)
	clear(n.buf[off : off+n.entrySize])
}

// shiftRight moves entries [from, count) up by one slot to open a gap at
// from, used by insert to keep the prefix sorted (spec §4.4 split policy
// describes the mirror-image shiftLeft used by erase).
func (n node[K]) shiftRight(from, count int) {
	for i := count; i > from; i-- {
		copy(n.buf[n.entryOffset(i):n.entryOffset(i)+n.entrySize],
			n.buf[n.entryOffset(i-1):n.entryOffset(i-1)+n.entrySize])
	}
}

// shiftLeft closes the gap at "at" by moving entries [at+1, count) down one
// slot (spec §4.4 "erase ... shifting subsequent entries one slot down").
func (n node[K]) shiftLeft(at, count int) {
	for i := at; i < count-1; i++ {
		copy(n.buf[n.entryOffset(i):n.entryOffset(i)+n.entrySize],
			n.buf[n.entryOffset(i+1):n.entryOffset(i+1)+n.entrySize])
	}
	n.clearEntry(count - 1)
}
