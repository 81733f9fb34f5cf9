package editor

import (
	"github.com/tshlabs/ext2edit/bitmap"
	"github.com/tshlabs/ext2edit/dirent"
	"github.com/tshlabs/ext2edit/image"
)

// layoutBlocks are the fixed block numbers this editor assigns to the
// structures a real multi-purpose mkfs would place adaptively; since the
// image is always exactly 128 KiB with a single block group, a fixed plan
// is sufficient and keeps Format simple (SPEC_FULL.md §6).
const (
	blockBitmapBlock = 3
	inodeBitmapBlock = 4
	inodeTableBlock  = 5

	// inodesCount is chosen so the inode table (InodeSize * inodesCount
	// bytes, rounded up to whole blocks) fits comfortably before the first
	// data block while leaving the bulk of the image for file content.
	inodesCount = 128
	// inodeTableBlocks is ceil(inodesCount * InodeSize / BlockSize).
	inodeTableBlocks = (inodesCount*image.InodeSize + image.BlockSize - 1) / image.BlockSize
	// firstDataBlock is the first block after the reserved structures
	// (boot block, superblock, group descriptor, both bitmaps, inode table).
	firstDataBlock = inodeTableBlock + inodeTableBlocks

	rootDataBlock      = firstDataBlock
	lostFoundDataBlock = firstDataBlock + 1
)

// Format builds a fresh, valid rev-0 image in sess: superblock, group
// descriptor, both bitmaps, a zeroed inode table, the root directory (inode
// 2, with "." and ".." in rootDataBlock), and a lost+found directory, per
// SPEC_FULL.md §6 ("the end-to-end scenario in spec.md §8 explicitly
// expects lost+found to exist on a freshly prepared image"). sess must be
// freshly constructed (image.NewInMemory or a zeroed image.Open) with no
// prior structures.
func Format(sess *image.Session) error {
	sb := image.Superblock{
		InodesCount:     inodesCount,
		BlocksCount:     image.TotalBlocks,
		FreeBlocksCount: image.TotalBlocks,
		FreeInodesCount: inodesCount,
		FirstDataBlock:  1,
		LogBlockSize:    0,
		InodesPerGroup:  inodesCount,
		BlocksPerGroup:  image.TotalBlocks,
		FragsPerGroup:   image.TotalBlocks,
		Magic:           image.Magic,
		RevLevel:        0,
		FirstInode:      image.FirstUsableInode,
		InodeSizeOnDisk: image.InodeSize,
	}
	sess.WriteSuperblock(sb)

	gd := image.GroupDescriptor{
		BlockBitmapBlock: blockBitmapBlock,
		InodeBitmapBlock: inodeBitmapBlock,
		InodeTableBlock:  inodeTableBlock,
		FreeBlocksCount:  uint16(image.TotalBlocks),
		FreeInodesCount:  uint16(inodesCount),
	}
	sess.WriteGroupDescriptor(gd)

	inodeBitmap := bitmap.NewManager(sess.InodeBitmapBytes(), inodesCount, image.FirstUsableInode, sess.InodeFreeCounter())
	blockBitmap := bitmap.NewManager(sess.BlockBitmapBytes(), image.TotalBlocks, 1, sess.BlockFreeCounter())

	reserveBlocks(blockBitmap, 1, inodeTableBlock+inodeTableBlocks-1)
	reserveInode(inodeBitmap, image.RootInode)

	root := image.RawInode{Mode: image.DefaultDirMode, LinksCount: 2}
	root.Block[0] = rootDataBlock
	root.Blocks = image.SectorsPerBlock
	root.SizeLo = image.BlockSize
	blockBitmap.Mark(rootDataBlock)
	sess.ZeroBlock(rootDataBlock)
	dirent.InitBlock(sess, rootDataBlock)

	if err := dirent.Insert(sess, &root, image.RootInode, ".", image.FileTypeDirectory); err != nil {
		return err
	}
	if err := dirent.Insert(sess, &root, image.RootInode, "..", image.FileTypeDirectory); err != nil {
		return err
	}
	sess.WriteInode(image.RootInode, root)

	lostFoundInodeNum := inodeBitmap.FindLowestFree()
	inodeBitmap.Mark(lostFoundInodeNum)
	lostFound := image.RawInode{Mode: image.DefaultDirMode, LinksCount: 2}
	lostFound.Block[0] = lostFoundDataBlock
	lostFound.Blocks = image.SectorsPerBlock
	lostFound.SizeLo = image.BlockSize
	blockBitmap.Mark(lostFoundDataBlock)
	sess.ZeroBlock(lostFoundDataBlock)
	dirent.InitBlock(sess, lostFoundDataBlock)

	if err := dirent.Insert(sess, &lostFound, lostFoundInodeNum, ".", image.FileTypeDirectory); err != nil {
		return err
	}
	if err := dirent.Insert(sess, &lostFound, image.RootInode, "..", image.FileTypeDirectory); err != nil {
		return err
	}
	sess.WriteInode(lostFoundInodeNum, lostFound)

	root = sess.ReadInode(image.RootInode)
	if err := dirent.Insert(sess, &root, lostFoundInodeNum, "lost+found", image.FileTypeDirectory); err != nil {
		return err
	}
	root.LinksCount++
	sess.WriteInode(image.RootInode, root)

	sess.MarkDirty()
	return nil
}

// reserveBlocks marks blocks [from, to] (inclusive, 1-based) as used,
// without touching the superblock free-counter twice: callers pre-seed the
// counter to TotalBlocks and this loop walks it down via Mark.
func reserveBlocks(m *bitmap.Manager, from, to uint32) {
	for b := from; b <= to; b++ {
		m.Mark(b)
	}
}

// reserveInode marks a single inode number used in the inode bitmap.
func reserveInode(m *bitmap.Manager, n uint32) {
	m.Mark(n)
}
