package storage

import (
	"os"
	"path/filepath"
	"strconv"
)

// FileSet resolves a segment id to the os.File backing it. A database is a
// directory of segment files; implementations other than Dir exist mainly
// for tests that want to intercept I/O.
type FileSet interface {
	OpenSegment(segment int64) (*os.File, error)
}

// Dir is the on-disk FileSet: one file per segment, named by the segment id
// in decimal, inside a single directory-per-database (spec §6).
type Dir struct {
	Path string
}

var _ FileSet = Dir{}

// OpenSegment opens (creating if absent) the file for the given segment.
// A missing file is created empty; callers extend it lazily as pages are
// written (spec §4.1 "Page file layout").
func (d Dir) OpenSegment(segment int64) (*os.File, error) {
	if err := os.MkdirAll(d.Path, 0o755); err != nil {
		return nil, err
	}
	name := strconv.FormatInt(segment, 10)
	return os.OpenFile(filepath.Join(d.Path, name), os.O_RDWR|os.O_CREATE, 0o644)
}
