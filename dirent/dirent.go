// Package dirent implements component F: inserting and removing directory
// entry records within a directory's data blocks. Grounded on add_dir_entr
// and calc_d_entr_size in _examples/original_source/ext2_utils.c. Insert and
// Remove scan a block's records with their own loop, which also visits
// zero-inode records; they do not call resolver.Walk and share only the
// resolver.Entry type with package resolver.
package dirent

import (
	"encoding/binary"

	"github.com/noxer/bytewriter"

	"github.com/tshlabs/ext2edit/bitmap"
	ferr "github.com/tshlabs/ext2edit/errors"
	"github.com/tshlabs/ext2edit/image"
	"github.com/tshlabs/ext2edit/resolver"
)

// recordSize returns the total on-disk size of a directory entry with the
// given name length: the 8-byte header, the name itself, and padding up to
// the next 4-byte boundary (calc_d_entr_size).
func recordSize(nameLen int) uint16 {
	size := image.DirentHeaderSize + nameLen
	if rem := size % 4; rem != 0 {
		size += 4 - rem
	}
	return uint16(size)
}

// InitBlock prepares a freshly allocated, zeroed directory block for use by
// writing a single block-spanning empty record (inode 0, rec_len ==
// image.BlockSize) at offset 0. Every directory block must start with a
// record whose rec_len accounts for the rest of the block, even an empty
// one, so that findSlack's header walk has something to read instead of the
// all-zero rec_len a bare ZeroBlock leaves behind. Callers allocate a
// directory's first block, ZeroBlock it, call InitBlock, and only then
// Insert into it.
func InitBlock(sess *image.Session, blockNum uint32) {
	block := sess.Block(blockNum)
	binary.LittleEndian.PutUint16(block[4:], image.BlockSize)
	sess.MarkDirty()
}

// Insert adds a directory entry named name, pointing at childInode, into
// dirInode's data. It first scans every already-allocated direct block for
// a record whose rec_len claims more space than its own contents need
// (add_dir_entr's slack-reclaiming loop); if none is found, an additional
// direct block is allocated and the whole entry goes there fresh. dirInode
// is the caller's copy and is mutated in place when a new block is
// allocated, so the caller must re-persist it with Session.WriteInode.
func Insert(sess *image.Session, dirInode *image.RawInode, childInode uint32, name string, fileType uint8) error {
	needed := recordSize(len(name))

	slot, offset, ok := findSlack(sess, *dirInode, needed)
	if ok {
		writeEntryInSlack(sess, slot, offset, childInode, name, fileType, needed)
		return nil
	}

	return appendToNewBlock(sess, dirInode, childInode, name, fileType)
}

// findSlack scans dirInode's direct blocks, in order, for the first record
// whose rec_len exceeds its own minimal size by at least needed bytes. It
// returns the owning block number and the byte offset of that record within
// the block.
func findSlack(sess *image.Session, dirInode image.RawInode, needed uint16) (blockNum uint32, offset int, ok bool) {
	for _, b := range dirInode.Block[:image.DirectPointers] {
		if b == 0 {
			continue
		}
		block := sess.Block(b)
		pos := 0
		for pos < image.BlockSize {
			recLen := binary.LittleEndian.Uint16(block[pos+4:])
			if recLen == 0 {
				break
			}
			nameLen := int(block[pos+6])
			ownSize := recordSize(nameLen)
			if recLen-ownSize >= needed {
				return b, pos, true
			}
			pos += int(recLen)
		}
	}
	return 0, 0, false
}

// writeEntryInSlack splits the existing record at (blockNum, offset),
// shrinking it to its minimal size and placing the new entry in the
// reclaimed tail, exactly as add_dir_entr does.
func writeEntryInSlack(sess *image.Session, blockNum uint32, offset int, childInode uint32, name string, fileType uint8, needed uint16) {
	block := sess.Block(blockNum)
	oldRecLen := binary.LittleEndian.Uint16(block[offset+4:])
	oldNameLen := int(block[offset+6])
	ownSize := recordSize(oldNameLen)

	binary.LittleEndian.PutUint16(block[offset+4:], ownSize)

	newOffset := offset + int(ownSize)
	newRecLen := oldRecLen - ownSize
	writeRecord(block, newOffset, childInode, name, fileType, newRecLen)
	sess.MarkDirty()
}

// appendToNewBlock reserves a fresh direct block for dirInode, writes the
// new entry as that block's sole (and therefore block-spanning) record, and
// grows dirInode's size bookkeeping to match (add_dir_entr's "no space in
// any of the parent directory's blocks" branch).
func appendToNewBlock(sess *image.Session, dirInode *image.RawInode, childInode uint32, name string, fileType uint8) error {
	slot := -1
	for i, b := range dirInode.Block[:image.DirectPointers] {
		if b == 0 {
			slot = i
			break
		}
	}
	if slot == -1 {
		return ferr.ErrNoSpace.WithMessage("directory has no free direct pointer for growth")
	}

	sb := sess.ReadSuperblock()
	blockBitmap := bitmap.NewManager(sess.BlockBitmapBytes(), sb.BlocksCount, 1, sess.BlockFreeCounter())
	blockNum := blockBitmap.FindLowestFree()
	if blockNum == 0 {
		return ferr.ErrNoSpace
	}
	blockBitmap.Mark(blockNum)

	sess.ZeroBlock(blockNum)
	block := sess.Block(blockNum)
	writeRecord(block, 0, childInode, name, fileType, image.BlockSize)

	dirInode.Block[slot] = blockNum
	dirInode.Blocks += image.SectorsPerBlock
	dirInode.SizeLo += image.BlockSize
	sess.MarkDirty()
	return nil
}

// writeRecord lays out one directory entry record at block[offset:] using
// github.com/noxer/bytewriter, the same sequential-write helper the image
// session uses for fixed-layout records.
func writeRecord(block []byte, offset int, inodeNum uint32, name string, fileType uint8, recLen uint16) {
	w := bytewriter.New(block[offset:])
	hdr := image.RawDirentHeader{
		Inode:    inodeNum,
		RecLen:   recLen,
		NameLen:  uint8(len(name)),
		FileType: fileType,
	}
	_ = binary.Write(w, binary.LittleEndian, &hdr)
	_, _ = w.Write([]byte(name))
}

// Remove deletes the directory entry identified by entry (as returned by
// resolver.FindEntry) by tombstoning it: its rec_len is folded into the
// immediately preceding record in the same block, so later scans step over
// it and the freed space becomes reusable slack for a future Insert; the
// record's own bytes, inode number included, are left as they were. If the
// record is the first in its block, its inode number is zeroed instead,
// leaving it as a zero-inode placeholder (a directory block must always
// start with a valid record header).
func Remove(sess *image.Session, entry resolver.Entry) {
	block := sess.Block(entry.Block)

	prevOffset := -1
	pos := 0
	for pos < entry.Offset {
		prevOffset = pos
		recLen := binary.LittleEndian.Uint16(block[pos+4:])
		if recLen == 0 {
			break
		}
		pos += int(recLen)
	}

	if prevOffset >= 0 {
		prevRecLen := binary.LittleEndian.Uint16(block[prevOffset+4:])
		thisRecLen := binary.LittleEndian.Uint16(block[entry.Offset+4:])
		binary.LittleEndian.PutUint16(block[prevOffset+4:], prevRecLen+thisRecLen)
	} else {
		binary.LittleEndian.PutUint32(block[entry.Offset:], 0)
	}

	sess.MarkDirty()
}
