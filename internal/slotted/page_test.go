package slotted

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func newZeroBuf(size int) []byte { return make([]byte, size) }

func TestPage_FreshHeaderInitialization(t *testing.T) {
	buf := newZeroBuf(4096)
	p := New(buf)
	require.Equal(t, uint64(4096), readHeader(buf).DataStart)
	require.Equal(t, uint64(4096-HeaderSize), p.FreeSpace())
	require.True(t, p.CheckInvariant())
}

func TestPage_InsertLookupRoundTrip(t *testing.T) {
	p := New(newZeroBuf(4096))
	rec := []byte("hello, record")

	slotID, err := p.TryInsert(rec)
	require.NoError(t, err)
	require.Equal(t, uint64(0), slotID)
	require.True(t, p.CheckInvariant())

	res, err := p.Lookup(slotID)
	require.NoError(t, err)
	require.False(t, res.IsForward)
	require.True(t, bytes.Equal(rec, res.Record))
}

func TestPage_InsertManyPreservesInvariant(t *testing.T) {
	p := New(newZeroBuf(4096))
	for i := 0; i < 20; i++ {
		_, err := p.TryInsert([]byte{byte(i), byte(i + 1), byte(i + 2)})
		require.NoError(t, err)
		require.True(t, p.CheckInvariant())
	}
	require.Equal(t, uint64(20), p.SlotCount())
}

func TestPage_TryInsertErrNoRoom(t *testing.T) {
	p := New(newZeroBuf(64))
	big := make([]byte, 100)
	_, err := p.TryInsert(big)
	require.ErrorIs(t, err, ErrNoRoom)
}

func TestPage_LookupOutOfRange(t *testing.T) {
	p := New(newZeroBuf(4096))
	_, err := p.Lookup(5)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestPage_UpdateToForwardAndRemoveCascades(t *testing.T) {
	p := New(newZeroBuf(4096))
	slotID, err := p.TryInsert([]byte("short"))
	require.NoError(t, err)

	newTID := (uint64(1) << 16) | 9
	res, err := p.Update(slotID, newTID)
	require.NoError(t, err)
	require.False(t, res.MustDeleteOld)

	lr, err := p.Lookup(slotID)
	require.NoError(t, err)
	require.True(t, lr.IsForward)
	require.Equal(t, newTID, lr.TID)

	// Updating an already-forwarding slot reports the old target.
	newerTID := (uint64(2) << 16) | 1
	res2, err := p.Update(slotID, newerTID)
	require.NoError(t, err)
	require.True(t, res2.MustDeleteOld)
	require.Equal(t, newTID, res2.OldTID)

	rr, err := p.Remove(slotID)
	require.NoError(t, err)
	require.True(t, rr.MustDeleteForward)
	require.Equal(t, newerTID, rr.ForwardTID)
	require.True(t, p.CheckInvariant())
}

func TestPage_RemoveOfNeverInsertedIsNoop(t *testing.T) {
	p := New(newZeroBuf(4096))
	rr, err := p.Remove(3)
	require.NoError(t, err)
	require.False(t, rr.MustDeleteForward)
}
