package slotted

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSlot_DirectRoundTrip(t *testing.T) {
	s := NewDirect(1234, 56)
	require.False(t, s.IsEmpty())
	require.False(t, s.IsForward())
	require.Equal(t, uint32(1234), s.Offset())
	require.Equal(t, uint32(56), s.Length())
}

func TestSlot_ForwardRoundTrip(t *testing.T) {
	var tid uint64 = (uint64(7) << 16) | 3
	s := NewForward(tid)
	require.False(t, s.IsEmpty())
	require.True(t, s.IsForward())
	require.Equal(t, tid, s.TID())
}

func TestSlot_Empty(t *testing.T) {
	var s Slot
	require.True(t, s.IsEmpty())
	require.False(t, s.IsForward())
}

func TestSlot_EncodeDecode(t *testing.T) {
	s := NewDirect(10, 20)
	buf := make([]byte, SlotSize)
	EncodeSlot(buf, s)
	require.Equal(t, s, DecodeSlot(buf))
}
