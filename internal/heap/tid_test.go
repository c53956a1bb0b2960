package heap

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTID_RoundTrip(t *testing.T) {
	cases := []TID{
		{Offset: 0, Slot: 0},
		{Offset: 1, Slot: 9},
		{Offset: 0xFFFFFFFF, Slot: 0xFFFF},
	}
	for _, tid := range cases {
		require.Equal(t, tid, Decode(tid.Encode()))
	}
}
