package buffer

import "github.com/relcore/relcore/internal/pageid"

// Handle is a pinned, shared reference to one frame's bytes. It is returned
// by Manager.Fix and must be released with Unfix exactly once, from
// whichever goroutine holds it last (design note §9: "fix returns a
// scope-bound handle ... with a destructor that issues unfix" — Go has no
// destructors, so callers are expected to `defer h.Unfix(dirty)`, mirroring
// the teacher's `defer pool.Unpin(page, dirty)` idiom).
//
// A Handle does not itself hold the frame's reader/writer lock: callers
// must take RLock/Lock before touching Bytes() and release it before
// calling Unfix, so that the pool lock is never held while blocked on a
// frame lock (spec §5).
type Handle struct {
	m *Manager
	f *frame
}

// PageID returns the id of the page this handle is pinned to.
func (h *Handle) PageID() pageid.ID { return h.f.id }

// RLock takes the frame's reader/writer lock in shared mode.
func (h *Handle) RLock() { h.f.lock.RLock() }

// RUnlock releases a previously-taken RLock.
func (h *Handle) RUnlock() { h.f.lock.RUnlock() }

// Lock takes the frame's reader/writer lock in exclusive mode.
func (h *Handle) Lock() { h.f.lock.Lock() }

// Unlock releases a previously-taken Lock.
func (h *Handle) Unlock() { h.f.lock.Unlock() }

// Bytes returns the frame's backing buffer. The caller must hold RLock or
// Lock for the duration of any read or write, respectively.
func (h *Handle) Bytes() []byte { return h.f.buf }

// Unfix releases the pin this handle holds. If dirty is true the frame is
// marked dirty, so it will be written back before eviction or on shutdown.
// Unfixing a handle whose frame is already unpinned is a programmer error
// and panics (spec §7).
func (h *Handle) Unfix(dirty bool) {
	h.m.unfix(h.f, dirty)
}
