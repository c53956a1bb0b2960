// Package storage is the bottom of the storage kernel: raw page buffers and
// the segment files that back them. It knows nothing about slots, records,
// or B-tree nodes — those live one layer up.
package storage

import "github.com/relcore/relcore/internal/pageid"

// NewPageBuf allocates a zero-filled byte buffer sized for one page. It is
// the raw material a buffer manager frame hands to the slotted/btree/catalog
// layers; none of those layers allocate page-sized buffers themselves.
func NewPageBuf() []byte {
	return make([]byte, pageid.PageSize)
}
