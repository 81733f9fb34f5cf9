package image

import (
	"fmt"
	"io"
)

// BlockNumber is a 1-based block index into the image, per spec.md §3
// ("Block indices are 1-based within the image").
type BlockNumber uint32

// blockDevice is a bounds-checked, block-granular view over a stream backed
// by the session's owned byte buffer. It plays the same role as the
// teacher's drivers/common.BlockDevice, adjusted to 1-based block numbers
// and a fixed block size instead of an arbitrary sector size.
type blockDevice struct {
	stream      io.ReadWriteSeeker
	totalBlocks uint32
}

func newBlockDevice(stream io.ReadWriteSeeker, totalBlocks uint32) *blockDevice {
	return &blockDevice{stream: stream, totalBlocks: totalBlocks}
}

func (d *blockDevice) offsetOf(block BlockNumber) (int64, error) {
	if block == 0 || uint32(block) > d.totalBlocks {
		return 0, fmt.Errorf("invalid block number %d: not in range [1, %d]", block, d.totalBlocks)
	}
	return int64(block-1) * BlockSize, nil
}

// ReadBlock returns a fresh copy of the given block's contents.
func (d *blockDevice) ReadBlock(block BlockNumber) ([]byte, error) {
	offset, err := d.offsetOf(block)
	if err != nil {
		return nil, err
	}
	if _, err := d.stream.Seek(offset, io.SeekStart); err != nil {
		return nil, err
	}
	buf := make([]byte, BlockSize)
	if _, err := io.ReadFull(d.stream, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// WriteBlock overwrites the given block's contents. data must be exactly
// BlockSize bytes.
func (d *blockDevice) WriteBlock(block BlockNumber, data []byte) error {
	if len(data) != BlockSize {
		return fmt.Errorf("block write must be exactly %d bytes, got %d", BlockSize, len(data))
	}
	offset, err := d.offsetOf(block)
	if err != nil {
		return err
	}
	if _, err := d.stream.Seek(offset, io.SeekStart); err != nil {
		return err
	}
	_, err = d.stream.Write(data)
	return err
}

// WriteAt streams len(data) bytes starting at the given byte offset within
// block, used by the file writer (§4.7) for every block of a write,
// including the final, possibly short, one.
func (d *blockDevice) WriteAt(block BlockNumber, withinBlockOffset int, data []byte) error {
	if withinBlockOffset < 0 || withinBlockOffset+len(data) > BlockSize {
		return fmt.Errorf("write of %d bytes at offset %d overflows a block", len(data), withinBlockOffset)
	}
	offset, err := d.offsetOf(block)
	if err != nil {
		return err
	}
	if _, err := d.stream.Seek(offset+int64(withinBlockOffset), io.SeekStart); err != nil {
		return err
	}
	_, err = d.stream.Write(data)
	return err
}
