package catalog

import (
	"fmt"

	"github.com/relcore/relcore/internal/buffer"
	"github.com/relcore/relcore/internal/pageid"
	"github.com/relcore/relcore/pkg/bx"
)

// Save serializes schema and writes it through a page-chunked adapter over
// segment: page 0 holds the 8-byte LE length, pages 1..k hold the blob
// (spec §4.5). The length at page 0 is stamped only after every blob byte
// has been written, so a crash mid-write leaks pages but never misreports
// the length (spec §4.5 "Invariants").
func Save(bm *buffer.Manager, segment int64, schema Schema) error {
	blob := encodeSchema(schema)
	if err := writeBlob(bm, segment, blob); err != nil {
		return fmt.Errorf("catalog: save: %w", err)
	}
	if err := stampLength(bm, segment, uint64(len(blob))); err != nil {
		return fmt.Errorf("catalog: save: %w", err)
	}
	return nil
}

// Load reads the length from page 0 and then that many bytes from pages
// 1.. sequentially, decoding the result (spec §4.5 "load").
func Load(bm *buffer.Manager, segment int64) (Schema, error) {
	length, err := readLength(bm, segment)
	if err != nil {
		return Schema{}, fmt.Errorf("catalog: load: %w", err)
	}
	blob, err := readBlob(bm, segment, length)
	if err != nil {
		return Schema{}, fmt.Errorf("catalog: load: %w", err)
	}
	return decodeSchema(blob), nil
}

func writeBlob(bm *buffer.Manager, segment int64, data []byte) error {
	location := 0
	for location < len(data) {
		page := location/pageid.PageSize + 1
		offset := location % pageid.PageSize

		h, err := bm.Fix(pageid.New(segment, uint32(page)))
		if err != nil {
			return fmt.Errorf("fix page %d: %w", page, err)
		}
		h.Lock()
		n := copy(h.Bytes()[offset:], data[location:])
		h.Unlock()
		h.Unfix(true)

		location += n
	}
	return nil
}

func readBlob(bm *buffer.Manager, segment int64, length uint64) ([]byte, error) {
	blob := make([]byte, length)
	location := 0
	for location < len(blob) {
		page := location/pageid.PageSize + 1
		offset := location % pageid.PageSize

		h, err := bm.Fix(pageid.New(segment, uint32(page)))
		if err != nil {
			return nil, fmt.Errorf("fix page %d: %w", page, err)
		}
		h.RLock()
		n := copy(blob[location:], h.Bytes()[offset:])
		h.RUnlock()
		h.Unfix(false)

		location += n
	}
	return blob, nil
}

func stampLength(bm *buffer.Manager, segment int64, length uint64) error {
	h, err := bm.Fix(pageid.New(segment, 0))
	if err != nil {
		return fmt.Errorf("fix length page: %w", err)
	}
	h.Lock()
	bx.PutU64(h.Bytes()[0:8], length)
	h.Unlock()
	h.Unfix(true)
	return nil
}

func readLength(bm *buffer.Manager, segment int64) (uint64, error) {
	h, err := bm.Fix(pageid.New(segment, 0))
	if err != nil {
		return 0, fmt.Errorf("fix length page: %w", err)
	}
	h.RLock()
	length := bx.U64(h.Bytes()[0:8])
	h.RUnlock()
	h.Unfix(false)
	return length, nil
}
