package buffer

import (
	"sync"

	"github.com/relcore/relcore/internal/pageid"
)

// frame is one pool slot: the cached bytes of a page, its pin count, and
// its dirty flag (spec §3 "Buffer entry"). Pin count is read/written only
// under the Manager's pool lock; the byte contents are guarded separately
// by lock, so that holding the pool lock never blocks on page I/O done by
// a concurrent reader/writer of an already-fixed frame.
type frame struct {
	id    pageid.ID
	buf   []byte
	lock  sync.RWMutex
	pin   int32
	dirty bool
}
