package alloc_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tshlabs/ext2edit/alloc"
	"github.com/tshlabs/ext2edit/image"
)

func newFixtureSession(t *testing.T) *image.Session {
	t.Helper()
	sess := image.NewInMemory()

	gd := image.GroupDescriptor{
		BlockBitmapBlock: 3,
		InodeBitmapBlock: 4,
		InodeTableBlock:  5,
	}
	sess.WriteGroupDescriptor(gd)

	sb := image.Superblock{
		InodesCount:     32,
		BlocksCount:     image.TotalBlocks,
		FreeInodesCount: 32 - image.FirstUsableInode + 1,
		FreeBlocksCount: image.TotalBlocks - 20,
	}
	sess.WriteSuperblock(sb)

	return sess
}

func TestBlocksNeeded(t *testing.T) {
	assert.Equal(t, uint32(0), alloc.BlocksNeeded(0))
	assert.Equal(t, uint32(1), alloc.BlocksNeeded(1))
	assert.Equal(t, uint32(1), alloc.BlocksNeeded(image.BlockSize))
	assert.Equal(t, uint32(2), alloc.BlocksNeeded(image.BlockSize+1))
	assert.Equal(t, uint32(14), alloc.BlocksNeeded(12*image.BlockSize+1))
}

func TestFileAllocatesDirectBlocksOnly(t *testing.T) {
	sess := newFixtureSession(t)
	a := alloc.New(sess)

	inodeNum, err := a.File(3*image.BlockSize, image.DefaultFileMode)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, inodeNum, uint32(image.FirstUsableInode))

	inode := sess.ReadInode(inodeNum)
	assert.True(t, inode.IsRegular())
	for i := 0; i < 3; i++ {
		assert.NotZero(t, inode.Block[i])
	}
	assert.Zero(t, inode.Block[image.IndirectPointerSlot])
}

func TestFileAllocatesIndirectBlockWhenNeeded(t *testing.T) {
	sess := newFixtureSession(t)
	a := alloc.New(sess)

	inodeNum, err := a.File(13*image.BlockSize, image.DefaultFileMode)
	require.NoError(t, err)

	inode := sess.ReadInode(inodeNum)
	for i := 0; i < image.DirectPointers; i++ {
		assert.NotZero(t, inode.Block[i])
	}
	assert.NotZero(t, inode.Block[image.IndirectPointerSlot])
}

func TestFileFailsWhenBlocksExhausted(t *testing.T) {
	sess := newFixtureSession(t)
	sb := sess.ReadSuperblock()
	sb.FreeBlocksCount = 1
	sess.WriteSuperblock(sb)

	a := alloc.New(sess)
	_, err := a.File(5*image.BlockSize, image.DefaultFileMode)
	assert.Error(t, err)
}

func TestFreeReleasesAllTwelveDirectSlotsIndependently(t *testing.T) {
	sess := newFixtureSession(t)
	a := alloc.New(sess)

	inodeNum, err := a.File(5*image.BlockSize, image.DefaultFileMode)
	require.NoError(t, err)
	inode := sess.ReadInode(inodeNum)
	freeBefore := sess.ReadSuperblock().FreeBlocksCount

	// Clear slot 0 to a hole before freeing, as if an earlier buggy
	// deallocation had already reclaimed it out of band; every remaining
	// direct slot must still be freed independently.
	inode.Block[0] = 0

	a.Free(inodeNum, inode)

	freeAfter := sess.ReadSuperblock().FreeBlocksCount
	assert.Equal(t, freeBefore+4, freeAfter)
}
