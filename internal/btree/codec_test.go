package btree

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInt64Codec_RoundTrip(t *testing.T) {
	c := Int64Codec{}
	buf := make([]byte, c.Size())
	c.Encode(buf, 12345)
	require.Equal(t, int64(12345), c.Decode(buf))
}

func TestFixedStringCodec_RoundTrip(t *testing.T) {
	c := FixedStringCodec{Width: 8}
	buf := make([]byte, c.Size())
	c.Encode(buf, "hi")
	require.Equal(t, "hi", c.Decode(buf))
	require.NotEqual(t, c.Zero(), "hi")
}

func TestFixedStringCodec_TooLongPanics(t *testing.T) {
	c := FixedStringCodec{Width: 4}
	buf := make([]byte, c.Size())
	require.Panics(t, func() { c.Encode(buf, "toolong") })
}
