// Package buffer is the fixed-capacity page cache every other layer of the
// storage kernel pins frames through. It owns the only copies of pages kept
// in memory and is the sole writer of segment files.
package buffer

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"

	"github.com/google/uuid"
	"log/slog"

	"github.com/relcore/relcore/internal/pageid"
	"github.com/relcore/relcore/internal/storage"
	"github.com/relcore/relcore/pkg/bx"
)

var logPrefix = "buffer: "

// ErrPoolExhausted is returned by Fix when the pool is full and every
// resident frame is pinned (spec §4.1/§7 "Pool exhausted").
var ErrPoolExhausted = errors.New("buffer: pool exhausted, every frame is pinned")

// Manager is a fixed-capacity, random-replacement cache of pages mapped
// onto a FileSet. At most one frame per page id exists in the pool at any
// time (spec §3 "Frame").
type Manager struct {
	instance uuid.UUID
	fs       storage.FileSet
	disk     storage.Disk
	capacity int

	mu     sync.Mutex
	frames []*frame
	index  map[pageid.ID]int
	rng    *rand.Rand
}

// NewManager creates a pool with room for capacity frames, backed by fs.
// rngSeed seeds the random-replacement source (spec §9 "Random eviction
// reproducibility"); pass 0 to seed from the instance id instead.
func NewManager(fs storage.FileSet, capacity int, rngSeed int64) *Manager {
	if capacity <= 0 {
		capacity = 16
	}
	id := uuid.New()
	if rngSeed == 0 {
		rngSeed = int64(bx.U64(id[:8]))
	}
	return &Manager{
		instance: id,
		fs:       fs,
		capacity: capacity,
		frames:   make([]*frame, capacity),
		index:    make(map[pageid.ID]int, capacity),
		rng:      rand.New(rand.NewSource(rngSeed)),
	}
}

// Fix pins the frame for id, loading it from disk if absent. It returns
// ErrPoolExhausted if the pool is full and no frame is evictable.
func (m *Manager) Fix(id pageid.ID) (*Handle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if idx, ok := m.index[id]; ok {
		f := m.frames[idx]
		f.pin++
		slog.Debug(logPrefix+"fix hit", "pool", m.instance, "page", id, "pin", f.pin)
		return &Handle{m: m, f: f}, nil
	}

	idx, ok := m.freeSlotLocked()
	if !ok {
		victim, ok := m.pickVictimLocked()
		if !ok {
			return nil, ErrPoolExhausted
		}
		idx = victim
		vf := m.frames[idx]
		delete(m.index, vf.id)
		if vf.dirty {
			if err := m.disk.WritePage(m.fs, vf.id, vf.buf); err != nil {
				return nil, fmt.Errorf("buffer: flush evicted page %d: %w", vf.id, err)
			}
		}
		slog.Debug(logPrefix+"evict", "pool", m.instance, "victim", vf.id, "wasDirty", vf.dirty)
	}

	f := m.frames[idx]
	if f == nil {
		f = &frame{buf: storage.NewPageBuf()}
		m.frames[idx] = f
	}
	if err := m.disk.ReadPage(m.fs, id, f.buf); err != nil {
		return nil, fmt.Errorf("buffer: load page %d: %w", id, err)
	}
	f.id = id
	f.pin = 1
	f.dirty = false
	m.index[id] = idx

	slog.Debug(logPrefix+"fix miss, loaded", "pool", m.instance, "page", id, "slot", idx)
	return &Handle{m: m, f: f}, nil
}

func (m *Manager) unfix(f *frame, dirty bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if f.pin <= 0 {
		panic(fmt.Sprintf("buffer: unfix of already-unpinned frame (page %d)", f.id))
	}
	f.pin--
	if dirty {
		f.dirty = true
	}
	slog.Debug(logPrefix+"unfix", "pool", m.instance, "page", f.id, "pin", f.pin, "dirty", f.dirty)
}

// Shutdown flushes every dirty frame to disk. Calling it while frames are
// still pinned is a programming error (spec §5); the pin counts are not
// checked here, mirroring the spec's "may leave dirty data unwritten" note
// for that misuse rather than panicking on it.
func (m *Manager) Shutdown() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, f := range m.frames {
		if f == nil || !f.dirty {
			continue
		}
		if err := m.disk.WritePage(m.fs, f.id, f.buf); err != nil {
			return fmt.Errorf("buffer: shutdown flush of page %d: %w", f.id, err)
		}
		f.dirty = false
	}
	slog.Debug(logPrefix+"shutdown complete", "pool", m.instance)
	return nil
}

func (m *Manager) freeSlotLocked() (int, bool) {
	for i, f := range m.frames {
		if f == nil {
			return i, true
		}
	}
	return 0, false
}

// pickVictimLocked chooses uniformly at random among unpinned frames
// (spec §4.1 "Eviction policy"). Returns ok=false if every resident frame
// is pinned.
func (m *Manager) pickVictimLocked() (int, bool) {
	var candidates []int
	for i, f := range m.frames {
		if f != nil && f.pin == 0 {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		return 0, false
	}
	return candidates[m.rng.Intn(len(candidates))], true
}
