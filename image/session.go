package image

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"

	"github.com/hashicorp/go-multierror"
	"github.com/noxer/bytewriter"
	"github.com/xaionaro-go/bytesextra"

	ferr "github.com/tshlabs/ext2edit/errors"
)

// Session owns the in-memory copy of a mapped image for the duration of one
// command (spec.md §4.2, §5). Design notes §9 re-architects the source's
// raw pointer arithmetic into typed views over a single owned byte buffer;
// Session.buf is that buffer.
type Session struct {
	buf    []byte
	stream *bytesextra.ReadWriteSeeker
	blocks *blockDevice
	file   *os.File
	path   string
	dirty  bool
}

// Open maps (reads into memory) the image at path. The file must be exactly
// ImageSize bytes (spec.md §4.2); anything else is an EIO condition.
func Open(path string) (*Session, error) {
	file, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, ferr.ErrIO.WrapError(err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, ferr.ErrIO.WrapError(err)
	}
	if info.Size() != ImageSize {
		file.Close()
		return nil, ferr.ErrIO.WithMessage(
			fmt.Sprintf("image must be exactly %d bytes, got %d", ImageSize, info.Size()))
	}

	buf := make([]byte, ImageSize)
	if _, err := file.ReadAt(buf, 0); err != nil {
		file.Close()
		return nil, ferr.ErrIO.WrapError(err)
	}

	stream := bytesextra.NewReadWriteSeeker(buf)
	return &Session{
		buf:    buf,
		stream: stream,
		blocks: newBlockDevice(stream, TotalBlocks),
		file:   file,
		path:   path,
	}, nil
}

// NewInMemory builds a Session over a freshly allocated, zeroed buffer with
// no backing file, for use by format routines and tests (SPEC_FULL.md §6).
func NewInMemory() *Session {
	buf := make([]byte, ImageSize)
	stream := bytesextra.NewReadWriteSeeker(buf)
	return &Session{
		buf:    buf,
		stream: stream,
		blocks: newBlockDevice(stream, TotalBlocks),
	}
}

// Bytes returns the session's owned buffer (not a copy).
func (s *Session) Bytes() []byte {
	return s.buf
}

// MarkDirty flags the buffer as modified. Mutating accessors call this
// automatically; it is exported so orchestration code can be explicit.
func (s *Session) MarkDirty() {
	s.dirty = true
}

// Flush writes the buffer back to the underlying file, if any. It never
// unmaps anything else because Session has no OS-level mapping: the
// "mapping" is the owned Go byte slice (design notes §9).
func (s *Session) Flush() error {
	if s.file == nil || !s.dirty {
		return nil
	}
	if _, err := s.file.WriteAt(s.buf, 0); err != nil {
		return ferr.ErrIO.WrapError(err)
	}
	s.dirty = false
	return nil
}

// Close flushes and releases the underlying file descriptor. Both steps can
// fail independently; both failures are reported via go-multierror instead
// of the second one silently winning, mirroring the teardown discipline
// used throughout the wider example pack's long-running services.
func (s *Session) Close() error {
	var result *multierror.Error
	if err := s.Flush(); err != nil {
		result = multierror.Append(result, err)
	}
	if s.file != nil {
		if err := s.file.Close(); err != nil {
			result = multierror.Append(result, ferr.ErrIO.WrapError(err))
		}
	}
	return result.ErrorOrNil()
}

////////////////////////////////////////////////////////////////////////////////
// Typed views

func (s *Session) ReadSuperblock() Superblock {
	var sb Superblock
	r := bytes.NewReader(s.buf[SuperblockOffset:])
	_ = binary.Read(r, binary.LittleEndian, &sb)
	return sb
}

func (s *Session) WriteSuperblock(sb Superblock) {
	w := bytewriter.New(s.buf[SuperblockOffset:])
	_ = binary.Write(w, binary.LittleEndian, &sb)
	s.MarkDirty()
}

func (s *Session) ReadGroupDescriptor() GroupDescriptor {
	var gd GroupDescriptor
	r := bytes.NewReader(s.buf[GroupDescriptorOffset:])
	_ = binary.Read(r, binary.LittleEndian, &gd)
	return gd
}

func (s *Session) WriteGroupDescriptor(gd GroupDescriptor) {
	w := bytewriter.New(s.buf[GroupDescriptorOffset:])
	_ = binary.Write(w, binary.LittleEndian, &gd)
	s.MarkDirty()
}

// inodeTableOffset returns the byte offset of inode n's record within buf.
func (s *Session) inodeTableOffset(n uint32) int64 {
	gd := s.ReadGroupDescriptor()
	tableStart := int64(gd.InodeTableBlock-1) * BlockSize
	return tableStart + int64(n-1)*InodeSize
}

func (s *Session) ReadInode(n uint32) RawInode {
	var inode RawInode
	off := s.inodeTableOffset(n)
	r := bytes.NewReader(s.buf[off : off+InodeSize])
	_ = binary.Read(r, binary.LittleEndian, &inode)
	return inode
}

func (s *Session) WriteInode(n uint32, inode RawInode) {
	off := s.inodeTableOffset(n)
	w := bytewriter.New(s.buf[off : off+InodeSize])
	_ = binary.Write(w, binary.LittleEndian, &inode)
	s.MarkDirty()
}

// InodeBitmapBytes returns the zero-copy slice backing the inode bitmap, for
// the bitmap manager (component B) to wrap directly.
func (s *Session) InodeBitmapBytes() []byte {
	gd := s.ReadGroupDescriptor()
	start := int64(gd.InodeBitmapBlock-1) * BlockSize
	return s.buf[start : start+BlockSize]
}

// BlockBitmapBytes returns the zero-copy slice backing the block bitmap.
func (s *Session) BlockBitmapBytes() []byte {
	gd := s.ReadGroupDescriptor()
	start := int64(gd.BlockBitmapBlock-1) * BlockSize
	return s.buf[start : start+BlockSize]
}

// Block returns a zero-copy slice over the given 1-based data block.
func (s *Session) Block(n uint32) []byte {
	start := int64(n-1) * BlockSize
	return s.buf[start : start+BlockSize]
}

// ZeroBlock clears a block's contents, used when initializing a fresh
// indirect block's unused trailing entries (spec.md §4.4).
func (s *Session) ZeroBlock(n uint32) {
	b := s.Block(n)
	for i := range b {
		b[i] = 0
	}
	s.MarkDirty()
}

// WriteFileBytes streams data into block n starting at withinBlockOffset,
// used by the file writer (component G).
func (s *Session) WriteFileBytes(n uint32, withinBlockOffset int, data []byte) error {
	if err := s.blocks.WriteAt(BlockNumber(n), withinBlockOffset, data); err != nil {
		return ferr.ErrIO.WrapError(err)
	}
	s.MarkDirty()
	return nil
}

////////////////////////////////////////////////////////////////////////////////
// Superblock free-counter adapters for the bitmap manager (component B)

// BlockFreeCounter adapts the superblock's free-block counter to the
// bitmap.Counter interface.
type BlockFreeCounter struct{ s *Session }

func (c BlockFreeCounter) Free() uint32 {
	return c.s.ReadSuperblock().FreeBlocksCount
}

func (c BlockFreeCounter) SetFree(v uint32) {
	sb := c.s.ReadSuperblock()
	sb.FreeBlocksCount = v
	c.s.WriteSuperblock(sb)

	gd := c.s.ReadGroupDescriptor()
	gd.FreeBlocksCount = uint16(v)
	c.s.WriteGroupDescriptor(gd)
}

// InodeFreeCounter adapts the superblock's free-inode counter.
type InodeFreeCounter struct{ s *Session }

func (c InodeFreeCounter) Free() uint32 {
	return c.s.ReadSuperblock().FreeInodesCount
}

func (c InodeFreeCounter) SetFree(v uint32) {
	sb := c.s.ReadSuperblock()
	sb.FreeInodesCount = v
	c.s.WriteSuperblock(sb)

	gd := c.s.ReadGroupDescriptor()
	gd.FreeInodesCount = uint16(v)
	c.s.WriteGroupDescriptor(gd)
}

// BlockFreeCounter returns the Counter the block bitmap manager should use.
func (s *Session) BlockFreeCounter() BlockFreeCounter { return BlockFreeCounter{s} }

// InodeFreeCounter returns the Counter the inode bitmap manager should use.
func (s *Session) InodeFreeCounter() InodeFreeCounter { return InodeFreeCounter{s} }
