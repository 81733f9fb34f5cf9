package resolver_test

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tshlabs/ext2edit/image"
	"github.com/tshlabs/ext2edit/resolver"
)

// writeDirent appends one directory entry to block starting at offset,
// returning the offset immediately past it. recLen is the on-disk record
// length to write (may be larger than the entry itself, to model trailing
// slack).
func writeDirent(block []byte, offset int, inode uint32, name string, recLen uint16, fileType uint8) int {
	binary.LittleEndian.PutUint32(block[offset:], inode)
	binary.LittleEndian.PutUint16(block[offset+4:], recLen)
	block[offset+6] = uint8(len(name))
	block[offset+7] = fileType
	copy(block[offset+8:], name)
	return offset + int(recLen)
}

// buildFixture assembles a minimal two-level tree: root (inode 2, block 10)
// containing directory "a" (inode 11, block 11), which contains regular
// file "b" (inode 12, no data block needed for resolution purposes).
func buildFixture(t *testing.T) *image.Session {
	t.Helper()
	sess := image.NewInMemory()

	gd := sess.ReadGroupDescriptor()
	gd.InodeTableBlock = 5
	sess.WriteGroupDescriptor(gd)

	root := image.RawInode{Mode: image.DefaultDirMode, LinksCount: 2}
	root.Block[0] = 10
	sess.WriteInode(image.RootInode, root)

	dirA := image.RawInode{Mode: image.DefaultDirMode, LinksCount: 2}
	dirA.Block[0] = 11
	sess.WriteInode(11, dirA)

	fileB := image.RawInode{Mode: image.DefaultFileMode, LinksCount: 1}
	sess.WriteInode(12, fileB)

	rootBlock := sess.Block(10)
	off := writeDirent(rootBlock, 0, image.RootInode, ".", 12, image.FileTypeDirectory)
	off = writeDirent(rootBlock, off, image.RootInode, "..", 12, image.FileTypeDirectory)
	off = writeDirent(rootBlock, off, 11, "a", uint16(image.BlockSize-off), image.FileTypeDirectory)

	dirABlock := sess.Block(11)
	off = writeDirent(dirABlock, 0, 11, ".", 12, image.FileTypeDirectory)
	off = writeDirent(dirABlock, off, image.RootInode, "..", 12, image.FileTypeDirectory)
	off = writeDirent(dirABlock, off, 12, "b", uint16(image.BlockSize-off), image.FileTypeRegular)

	return sess
}

func TestResolveRoot(t *testing.T) {
	sess := buildFixture(t)
	n, inode, err := resolver.Resolve(sess, "/")
	require.NoError(t, err)
	assert.Equal(t, uint32(image.RootInode), n)
	assert.True(t, inode.IsDir())
}

func TestResolveNestedDirectory(t *testing.T) {
	sess := buildFixture(t)
	n, inode, err := resolver.Resolve(sess, "/a")
	require.NoError(t, err)
	assert.Equal(t, uint32(11), n)
	assert.True(t, inode.IsDir())
}

func TestResolveNestedFile(t *testing.T) {
	sess := buildFixture(t)
	n, inode, err := resolver.Resolve(sess, "/a/b")
	require.NoError(t, err)
	assert.Equal(t, uint32(12), n)
	assert.True(t, inode.IsRegular())
}

func TestResolveMissingReportsNotFound(t *testing.T) {
	sess := buildFixture(t)
	_, _, err := resolver.Resolve(sess, "/a/missing")
	assert.Error(t, err)
}

func TestResolveThroughNonDirectoryFails(t *testing.T) {
	sess := buildFixture(t)
	_, _, err := resolver.Resolve(sess, "/a/b/c")
	assert.Error(t, err)
}

func TestFindEntryReturnsRecord(t *testing.T) {
	sess := buildFixture(t)
	parentInode, entry, err := resolver.FindEntry(sess, "/a/b")
	require.NoError(t, err)
	assert.Equal(t, uint32(11), parentInode)
	assert.Equal(t, "b", entry.Name)
	assert.Equal(t, uint32(12), entry.Header.Inode)
	assert.Equal(t, uint32(11), entry.Block)
}

func TestFindEntryOnRootFails(t *testing.T) {
	sess := buildFixture(t)
	_, _, err := resolver.FindEntry(sess, "/")
	assert.Error(t, err)
}

func TestWalkVisitsEveryLiveEntry(t *testing.T) {
	sess := buildFixture(t)
	dirA := sess.ReadInode(11)

	seen := map[string]bool{}
	resolver.Walk(sess, dirA, func(e resolver.Entry) bool {
		seen[e.Name] = true
		return false
	})

	assert.True(t, seen["."])
	assert.True(t, seen[".."])
	assert.True(t, seen["b"])
}
