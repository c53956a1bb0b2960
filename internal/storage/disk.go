package storage

import (
	"fmt"
	"io"

	"github.com/relcore/relcore/internal/pageid"
)

// Disk performs the raw page I/O against a FileSet: locating the segment
// file for a page id, reading exactly PageSize bytes (zero-filling past
// EOF), and writing exactly PageSize bytes. It holds no state of its own;
// the buffer manager is the only thing that caches pages in memory.
type Disk struct{}

// ReadPage reads the page at id into dst, which must be exactly
// pageid.PageSize bytes. A segment file that does not yet reach this
// page's offset reads back as zeros rather than an error (spec §4.1/§6:
// "a missing file is created and extended on first access ... newly
// created regions are zero-filled").
func (Disk) ReadPage(fs FileSet, id pageid.ID, dst []byte) error {
	if len(dst) != pageid.PageSize {
		return fmt.Errorf("storage: dst must be exactly %d bytes", pageid.PageSize)
	}

	f, err := fs.OpenSegment(id.Segment())
	if err != nil {
		return fmt.Errorf("storage: open segment %d: %w", id.Segment(), err)
	}
	defer f.Close()

	n, err := f.ReadAt(dst, id.ByteOffset())
	if err != nil && err != io.EOF {
		return fmt.Errorf("storage: read page %d: %w", id, err)
	}
	for i := n; i < len(dst); i++ {
		dst[i] = 0
	}
	return nil
}

// WritePage writes src (exactly pageid.PageSize bytes) to the page at id,
// extending the segment file as needed.
func (Disk) WritePage(fs FileSet, id pageid.ID, src []byte) error {
	if len(src) != pageid.PageSize {
		return fmt.Errorf("storage: src must be exactly %d bytes", pageid.PageSize)
	}

	f, err := fs.OpenSegment(id.Segment())
	if err != nil {
		return fmt.Errorf("storage: open segment %d: %w", id.Segment(), err)
	}
	defer f.Close()

	n, err := f.WriteAt(src, id.ByteOffset())
	if err != nil {
		return fmt.Errorf("storage: write page %d: %w", id, err)
	}
	if n != len(src) {
		return fmt.Errorf("storage: short write for page %d: %w", id, io.ErrShortWrite)
	}
	return nil
}
