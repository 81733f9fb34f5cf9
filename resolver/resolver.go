// Package resolver implements component D: walking an absolute path from
// the root inode to a terminal inode, or reporting its absence. Grounded on
// the original C's find_inode/find_dir_entry
// (_examples/original_source/ext2_utils.c), restructured per design notes
// §9 around a single callback-driven (block, offset, record) traversal
// primitive, Walk. The directory-entry manager (package dirent) does not use
// Walk; it scans blocks with its own loop and shares only the Entry type.
package resolver

import (
	"github.com/tshlabs/ext2edit/errors"
	"github.com/tshlabs/ext2edit/image"
	"github.com/tshlabs/ext2edit/pathutil"
)

// Entry pairs a directory entry's header with its decoded name, returned by
// FindEntry for callers (remove) that need the record itself
// rather than just the inode it names.
type Entry struct {
	Header image.RawDirentHeader
	Name   string
	// Block is the 1-based data block the entry lives in and Offset is its
	// byte offset within that block, identifying the record for dirent.Remove.
	Block  uint32
	Offset int
}

// Walk scans every record of every direct-block-backed chunk of directory
// dirInode in on-disk order, invoking visit for each live (non-tombstoned)
// record. Resolve, FindEntry and editor.List are built on it; package dirent
// does not use it. visit returning true stops the walk early.
func Walk(sess *image.Session, dirInode image.RawInode, visit func(Entry) bool) {
	for _, blockNum := range dirInode.Block[:image.DirectPointers] {
		if blockNum == 0 {
			continue
		}
		block := sess.Block(blockNum)
		offset := 0
		for offset < image.BlockSize {
			hdr := decodeHeader(block[offset:])
			if hdr.RecLen == 0 {
				break
			}
			if hdr.Inode != 0 {
				name := string(block[offset+image.DirentHeaderSize : offset+image.DirentHeaderSize+int(hdr.NameLen)])
				entry := Entry{Header: hdr, Name: name, Block: blockNum, Offset: offset}
				if visit(entry) {
					return
				}
			}
			offset += int(hdr.RecLen)
		}
	}
}

func decodeHeader(b []byte) image.RawDirentHeader {
	return image.RawDirentHeader{
		Inode:    uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24,
		RecLen:   uint16(b[4]) | uint16(b[5])<<8,
		NameLen:  b[6],
		FileType: b[7],
	}
}

// findChild scans dir's direct pointers in order for a live entry named
// name, per spec.md §4.5 steps 2-4: every direct pointer of the current
// directory is scanned before absence is reported, and a match never spans
// two directory blocks (spec.md §9).
func findChild(sess *image.Session, dir image.RawInode, name string) (Entry, bool) {
	var found Entry
	ok := false
	Walk(sess, dir, func(e Entry) bool {
		if e.Name == name {
			found = e
			ok = true
			return true
		}
		return false
	})
	return found, ok
}

// Resolve walks an absolute path from the root inode (spec.md §4.5). It
// returns the terminal inode number and record, or errors.ErrNotFound.
func Resolve(sess *image.Session, path string) (uint32, image.RawInode, error) {
	current := uint32(image.RootInode)
	inode := sess.ReadInode(current)

	segments := pathutil.Segments(path)
	for _, segment := range segments {
		if !inode.IsDir() {
			return 0, image.RawInode{}, errors.ErrNotFound.WithMessage(
				"path component is not a directory")
		}

		entry, ok := findChild(sess, inode, segment)
		if !ok {
			return 0, image.RawInode{}, errors.ErrNotFound
		}

		current = entry.Header.Inode
		inode = sess.ReadInode(current)
	}

	return current, inode, nil
}

// FindEntry returns the directory entry record for path's final component
// (not the inode itself), used by remove to locate the record to delete
// (spec.md §4.5, companion operation); hard-link takes the target's inode
// number from Resolve instead. It fails for "/" since the root has no entry
// of its own.
func FindEntry(sess *image.Session, path string) (uint32, Entry, error) {
	parentPath, final := splitForEntry(path)
	if final == "" {
		return 0, Entry{}, errors.ErrNotFound.WithMessage("root has no directory entry")
	}

	parentInodeNum, parentInode, err := Resolve(sess, parentPath)
	if err != nil {
		return 0, Entry{}, err
	}
	if !parentInode.IsDir() {
		return 0, Entry{}, errors.ErrNotFound
	}

	entry, ok := findChild(sess, parentInode, final)
	if !ok {
		return 0, Entry{}, errors.ErrNotFound
	}
	return parentInodeNum, entry, nil
}

func splitForEntry(path string) (parent string, final string) {
	return pathutil.Split(path)
}
