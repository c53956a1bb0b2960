// Package btree implements the ordered key→TID index: a segment of pages
// tagged leaf or branch, with splits that bubble a new separator up to the
// parent (spec §4.4).
package btree

import "github.com/relcore/relcore/pkg/bx"

// KeyCodec is the capability set the B-tree needs from its key type (spec
// §9 "Key typing"): a total order, a zero sentinel reserved for "empty
// slot", and a fixed-width on-disk encoding. Raw Go generics constraints
// can express the comparable part but not the byte width, so keys are
// threaded through this strategy interface instead.
type KeyCodec[K comparable] interface {
	// Size is the fixed on-disk width of an encoded key, in bytes.
	Size() int
	// Zero is the sentinel value reserved to mean "empty slot". Inserting
	// this value is a programmer error (spec §4.4 "the key must not equal
	// the type's zero value").
	Zero() K
	// Less reports whether a sorts before b.
	Less(a, b K) bool
	// Encode writes k into dst[0:Size()].
	Encode(dst []byte, k K)
	// Decode reads a key from src[0:Size()].
	Decode(src []byte) K
}

// Int64Codec encodes int64 keys as 8-byte little-endian integers. Zero (0)
// is reserved and may never be inserted.
type Int64Codec struct{}

func (Int64Codec) Size() int                { return 8 }
func (Int64Codec) Zero() int64              { return 0 }
func (Int64Codec) Less(a, b int64) bool     { return a < b }
func (Int64Codec) Encode(dst []byte, k int64) { bx.PutU64(dst, uint64(k)) }
func (Int64Codec) Decode(src []byte) int64  { return int64(bx.U64(src)) }

// FixedStringCodec encodes strings into a zero-padded field of a fixed
// width. Its Zero() is the all-NUL string of that width, which resolves
// the "string or composite keys require an explicit sentinel" open
// question (spec §9): real keys in this kernel are never all-NUL, so the
// sentinel never collides with a legal value.
type FixedStringCodec struct {
	Width int
}

func (c FixedStringCodec) Size() int { return c.Width }

func (c FixedStringCodec) Zero() string { return string(make([]byte, c.Width)) }

func (c FixedStringCodec) Less(a, b string) bool { return a < b }

// Encode never truncates, so it cannot silently lose data: a string
// longer than Width is a construction error the caller must fix, not a
// runtime condition, so it panics here (mirroring the package's other
// fatal-invariant panics).
func (c FixedStringCodec) Encode(dst []byte, k string) {
	if len(k) > c.Width {
		panic("btree: FixedStringCodec: key longer than configured width")
	}
	clear(dst[:c.Width])
	copy(dst, k)
}

func (c FixedStringCodec) Decode(src []byte) string {
	end := c.Width
	for end > 0 && src[end-1] == 0 {
		end--
	}
	// An all-NUL field is an empty slot and decodes to the Zero() sentinel.
	if end == 0 {
		return c.Zero()
	}
	return string(src[:end])
}
