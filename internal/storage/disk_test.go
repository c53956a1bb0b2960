package storage

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/relcore/relcore/internal/pageid"
)

func TestDisk_ReadPage_MissingReadsZero(t *testing.T) {
	fs := Dir{Path: t.TempDir()}
	var disk Disk

	dst := make([]byte, pageid.PageSize)
	require.NoError(t, disk.ReadPage(fs, pageid.New(0, 0), dst))
	for _, b := range dst {
		require.Equal(t, byte(0), b)
	}
}

func TestDisk_WriteThenReadRoundTrips(t *testing.T) {
	fs := Dir{Path: t.TempDir()}
	var disk Disk

	id := pageid.New(0, 3)
	src := make([]byte, pageid.PageSize)
	src[0] = 0xAB
	src[pageid.PageSize-1] = 0xCD
	require.NoError(t, disk.WritePage(fs, id, src))

	dst := make([]byte, pageid.PageSize)
	require.NoError(t, disk.ReadPage(fs, id, dst))
	require.Equal(t, src, dst)
}

func TestDisk_DifferentSegmentsAreDifferentFiles(t *testing.T) {
	fs := Dir{Path: t.TempDir()}
	var disk Disk

	a := pageid.New(0, 0)
	b := pageid.New(1, 0)

	srcA := make([]byte, pageid.PageSize)
	srcA[0] = 1
	srcB := make([]byte, pageid.PageSize)
	srcB[0] = 2

	require.NoError(t, disk.WritePage(fs, a, srcA))
	require.NoError(t, disk.WritePage(fs, b, srcB))

	dstA := make([]byte, pageid.PageSize)
	require.NoError(t, disk.ReadPage(fs, a, dstA))
	require.Equal(t, byte(1), dstA[0])

	dstB := make([]byte, pageid.PageSize)
	require.NoError(t, disk.ReadPage(fs, b, dstB))
	require.Equal(t, byte(2), dstB[0])
}
