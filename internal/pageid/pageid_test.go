package pageid

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestID_RoundTrip(t *testing.T) {
	cases := []struct {
		segment int64
		offset  uint32
	}{
		{0, 0},
		{1, 1},
		{7, 4096},
		{1 << 20, 1},
	}

	for _, c := range cases {
		id := New(c.segment, c.offset)
		require.Equal(t, c.segment, id.Segment())
		require.Equal(t, c.offset, id.Offset())
	}
}

func TestID_ByteOffset(t *testing.T) {
	id := New(3, 2)
	require.Equal(t, int64(2*PageSize), id.ByteOffset())
}
