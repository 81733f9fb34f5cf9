// Package filewriter implements component G: streaming a native file's
// bytes into an already-allocated inode's data blocks. Grounded on
// write_file in _examples/original_source/ext2_utils.c, restructured per
// design notes §9 to stream through Session.WriteFileBytes rather than
// fread-ing directly into raw pointer arithmetic.
package filewriter

import (
	"io"

	ferr "github.com/tshlabs/ext2edit/errors"
	"github.com/tshlabs/ext2edit/image"
)

// Write copies data (a native file's full contents) into inode's direct and,
// if present, singly-indirect data blocks, one block at a time in pointer
// order (write_file). inode's Block pointers must already be populated by
// alloc.Allocator.File with enough blocks to hold len(data); Write never
// allocates.
func Write(sess *image.Session, inode image.RawInode, data []byte) error {
	remaining := data

	for i := 0; i < image.DirectPointers; i++ {
		if len(remaining) == 0 {
			return nil
		}
		blockNum := inode.Block[i]
		if blockNum == 0 {
			return ferr.ErrIO.WithMessage("file data exceeds allocated direct blocks")
		}
		chunk, rest := splitChunk(remaining)
		if err := sess.WriteFileBytes(blockNum, 0, chunk); err != nil {
			return err
		}
		remaining = rest
	}

	if len(remaining) == 0 {
		return nil
	}

	indirBlockNum := inode.Block[image.IndirectPointerSlot]
	if indirBlockNum == 0 {
		return ferr.ErrIO.WithMessage("file data exceeds allocated blocks and no indirect block is reserved")
	}
	indirBlock := sess.Block(indirBlockNum)

	for i := 0; len(remaining) > 0; i++ {
		if i >= image.PointersPerIndirectBlock {
			return ferr.ErrIO.WithMessage("file data exceeds indirect block capacity")
		}
		blockNum := getUint32(indirBlock, i*4)
		if blockNum == 0 {
			return ferr.ErrIO.WithMessage("file data exceeds allocated indirect blocks")
		}
		chunk, rest := splitChunk(remaining)
		if err := sess.WriteFileBytes(blockNum, 0, chunk); err != nil {
			return err
		}
		remaining = rest
	}
	return nil
}

// splitChunk returns the next block-sized (or smaller, for the final
// partial block) slice of data, and what remains after it.
func splitChunk(data []byte) (chunk []byte, rest []byte) {
	if len(data) <= image.BlockSize {
		return data, nil
	}
	return data[:image.BlockSize], data[image.BlockSize:]
}

func getUint32(b []byte, offset int) uint32 {
	return uint32(b[offset]) | uint32(b[offset+1])<<8 | uint32(b[offset+2])<<16 | uint32(b[offset+3])<<24
}

// ReadAll is a small convenience used by editor.CopyIn to read the whole
// source file into memory before Write, matching this editor's "own one
// buffer" approach (design notes §9) rather than streaming byte-by-byte.
func ReadAll(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, ferr.ErrIO.WrapError(err)
	}
	return data, nil
}
