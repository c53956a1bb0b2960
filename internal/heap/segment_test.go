package heap

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/relcore/relcore/internal/buffer"
	"github.com/relcore/relcore/internal/storage"
)

func TestSegment_InsertLookupRoundTrip(t *testing.T) {
	fs := storage.Dir{Path: t.TempDir()}
	bm := buffer.NewManager(fs, 4, 1)
	seg := Open(bm, 0, 0)

	rec := []byte("a short record")
	tid, err := seg.Insert(rec)
	require.NoError(t, err)

	got, err := seg.Lookup(tid)
	require.NoError(t, err)
	require.True(t, bytes.Equal(rec, got))
}

func TestSegment_UpdateForwardsAndPreservesTID(t *testing.T) {
	fs := storage.Dir{Path: t.TempDir()}
	bm := buffer.NewManager(fs, 4, 1)
	seg := Open(bm, 0, 0)

	tid, err := seg.Insert([]byte("0123456789")) // 10 bytes
	require.NoError(t, err)

	grown := bytes.Repeat([]byte("x"), 4000)
	require.NoError(t, seg.Update(tid, grown))

	got, err := seg.Lookup(tid)
	require.NoError(t, err)
	require.True(t, bytes.Equal(grown, got))
}

func TestSegment_RemoveCascadesForward(t *testing.T) {
	fs := storage.Dir{Path: t.TempDir()}
	bm := buffer.NewManager(fs, 4, 1)
	seg := Open(bm, 0, 0)

	tid, err := seg.Insert([]byte("short"))
	require.NoError(t, err)
	require.NoError(t, seg.Update(tid, bytes.Repeat([]byte("y"), 3000)))

	require.NoError(t, seg.Remove(tid))
}

func TestSegment_RemoveNeverInsertedIsNoop(t *testing.T) {
	fs := storage.Dir{Path: t.TempDir()}
	bm := buffer.NewManager(fs, 4, 1)
	seg := Open(bm, 0, 1)

	require.NoError(t, seg.Remove(New(0, 5)))
}

func TestSegment_InsertGrowsSegmentWhenFull(t *testing.T) {
	fs := storage.Dir{Path: t.TempDir()}
	bm := buffer.NewManager(fs, 4, 1)
	seg := Open(bm, 0, 0)

	big := bytes.Repeat([]byte("z"), 3500)
	_, err := seg.Insert(big)
	require.NoError(t, err)
	require.Equal(t, uint32(1), seg.Pages())

	_, err = seg.Insert(big)
	require.NoError(t, err)
	require.Equal(t, uint32(2), seg.Pages())
}
