// Package alloc implements component E: reserving and releasing inodes and
// data blocks. Grounded on alloc_file/alloc_indir_block/dealloc_file/
// calc_blocks_needed in _examples/original_source/ext2_utils.c, restructured
// per design notes §9 around bitmap.Manager instead of raw bit-twiddling.
package alloc

import (
	ferr "github.com/tshlabs/ext2edit/errors"
	"github.com/tshlabs/ext2edit/bitmap"
	"github.com/tshlabs/ext2edit/image"
)

// Allocator bundles the two bitmap managers an alloc/dealloc call needs.
type Allocator struct {
	sess   *image.Session
	inodes *bitmap.Manager
	blocks *bitmap.Manager
}

// New builds an Allocator bound to sess's own bitmap bytes and free-counters
// (image.Session.InodeBitmapBytes/BlockBitmapBytes, Inode/BlockFreeCounter).
func New(sess *image.Session) *Allocator {
	sb := sess.ReadSuperblock()
	return &Allocator{
		sess: sess,
		inodes: bitmap.NewManager(
			sess.InodeBitmapBytes(), sb.InodesCount, image.FirstUsableInode, sess.InodeFreeCounter()),
		blocks: bitmap.NewManager(
			sess.BlockBitmapBytes(), sb.BlocksCount, 1, sess.BlockFreeCounter()),
	}
}

// BlocksNeeded returns how many data blocks a file of size fSize requires,
// including one extra block for the singly-indirect pointer table once the
// direct pointers are exhausted (calc_blocks_needed).
func BlocksNeeded(fSize int64) uint32 {
	needed := uint32(fSize / image.BlockSize)
	if fSize%image.BlockSize != 0 {
		needed++
	}
	if needed > image.DirectPointers {
		needed++
	}
	return needed
}

// File reserves a new inode of the given mode and enough data blocks to hold
// fSize bytes, marking the matching imap/bmap bits (alloc_file). It returns
// the new inode's number; the inode's Block pointers are populated, ready for
// filewriter.Write. Data blocks are not zeroed (only the indirect block is),
// so their prior contents remain until written.
func (a *Allocator) File(fSize int64, mode uint16) (uint32, error) {
	blocksNeeded := BlocksNeeded(fSize)

	if blocksNeeded > a.sess.ReadSuperblock().FreeBlocksCount {
		return 0, ferr.ErrNoSpace
	}

	inodeNum := a.inodes.FindLowestFree()
	if inodeNum == 0 {
		return 0, ferr.ErrNoSpace
	}
	a.inodes.Mark(inodeNum)

	inode := image.RawInode{
		Mode:       mode,
		LinksCount: 1,
		SizeLo:     uint32(fSize),
		Blocks:     2 * blocksNeeded,
	}

	directCount := blocksNeeded
	if directCount > image.DirectPointers {
		directCount = image.DirectPointers
	}
	for i := uint32(0); i < directCount; i++ {
		blockNum := a.blocks.FindLowestFree()
		if blockNum == 0 {
			return 0, ferr.ErrNoSpace
		}
		a.blocks.Mark(blockNum)
		inode.Block[i] = blockNum
	}

	if blocksNeeded > image.DirectPointers {
		if err := a.allocIndirectBlock(&inode, blocksNeeded-image.DirectPointers); err != nil {
			return 0, err
		}
	}

	a.sess.WriteInode(inodeNum, inode)
	return inodeNum, nil
}

// allocIndirectBlock reserves the singly-indirect block itself plus
// ptrsNeeded data blocks referenced through it (alloc_indir_block), zeroing
// any trailing unused pointer slots.
func (a *Allocator) allocIndirectBlock(inode *image.RawInode, ptrsNeeded uint32) error {
	indirBlockNum := a.blocks.FindLowestFree()
	if indirBlockNum == 0 {
		return ferr.ErrNoSpace
	}
	a.blocks.Mark(indirBlockNum)
	inode.Block[image.IndirectPointerSlot] = indirBlockNum
	a.sess.ZeroBlock(indirBlockNum)

	indirBlock := a.sess.Block(indirBlockNum)
	for i := uint32(0); i < ptrsNeeded; i++ {
		blockNum := a.blocks.FindLowestFree()
		if blockNum == 0 {
			return ferr.ErrNoSpace
		}
		a.blocks.Mark(blockNum)
		putUint32(indirBlock, int(i)*4, blockNum)
	}
	return nil
}

// Free releases inode's data blocks (all twelve direct slots and every
// pointer in its singly-indirect block, if any) and clears the imap/bmap
// bits. Unlike the original dealloc_file -- which bails out of its direct-
// block loop as soon as it meets a zero slot, silently leaking any block
// reserved after a hole -- every one of the twelve direct slots is visited
// independently, since nothing in this editor ever requires them to be
// contiguous.
func (a *Allocator) Free(inodeNum uint32, inode image.RawInode) {
	for i := 0; i < image.DirectPointers; i++ {
		if inode.Block[i] != 0 {
			a.blocks.Unmark(inode.Block[i])
		}
	}

	if indirBlockNum := inode.Block[image.IndirectPointerSlot]; indirBlockNum != 0 {
		indirBlock := a.sess.Block(indirBlockNum)
		for i := 0; i < image.PointersPerIndirectBlock; i++ {
			ptr := getUint32(indirBlock, i*4)
			if ptr != 0 {
				a.blocks.Unmark(ptr)
			}
		}
		a.blocks.Unmark(indirBlockNum)
	}

	a.inodes.Unmark(inodeNum)
}

func putUint32(b []byte, offset int, v uint32) {
	b[offset] = byte(v)
	b[offset+1] = byte(v >> 8)
	b[offset+2] = byte(v >> 16)
	b[offset+3] = byte(v >> 24)
}

func getUint32(b []byte, offset int) uint32 {
	return uint32(b[offset]) | uint32(b[offset+1])<<8 | uint32(b[offset+2])<<16 | uint32(b[offset+3])<<24
}
