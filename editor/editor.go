// Package editor implements component H's orchestration half: the five
// command operations (list, make-directory, copy-in, hard-link, remove)
// composed from image, resolver, alloc, dirent, and filewriter, plus the
// supplemental Format operation (SPEC_FULL.md §6) that builds the fixture
// image every command otherwise assumes already exists. Grounded on the
// command-adapter descriptions in spec.md §4.1 and on ext2_ls.c, ext2_mkdir.c,
// ext2_cp.c, ext2_ln.c, and ext2_rm.c in _examples/original_source/.
package editor

import (
	"os"

	ferr "github.com/tshlabs/ext2edit/errors"
	"github.com/tshlabs/ext2edit/alloc"
	"github.com/tshlabs/ext2edit/dirent"
	"github.com/tshlabs/ext2edit/filewriter"
	"github.com/tshlabs/ext2edit/image"
	"github.com/tshlabs/ext2edit/pathutil"
	"github.com/tshlabs/ext2edit/resolver"
)

// List implements list(path) (spec.md §4.1): a regular file's own final
// segment, or a directory's entry names in on-disk order.
func List(sess *image.Session, path string) ([]string, error) {
	_, inode, err := resolver.Resolve(sess, path)
	if err != nil {
		return nil, err
	}

	if inode.IsRegular() {
		_, final := pathutil.Split(path)
		if final == "" {
			final = "/"
		}
		return []string{final}, nil
	}

	var names []string
	resolver.Walk(sess, inode, func(e resolver.Entry) bool {
		names = append(names, e.Name)
		return false
	})
	return names, nil
}

// MakeDirectory implements make-directory(path) (spec.md §4.1): path must
// be absent, its parent must exist, then a new directory inode with a
// single data block containing "." and ".." is linked into the parent.
func MakeDirectory(sess *image.Session, path string) error {
	if _, _, err := resolver.Resolve(sess, path); err == nil {
		return ferr.ErrExists
	}

	parentPath, name := pathutil.Split(path)
	parentInodeNum, parentInode, err := resolver.Resolve(sess, parentPath)
	if err != nil {
		return err
	}
	if !parentInode.IsDir() {
		return ferr.ErrNotADirectory
	}

	a := alloc.New(sess)
	newInodeNum, err := a.File(image.BlockSize, image.DefaultDirMode)
	if err != nil {
		return err
	}
	newInode := sess.ReadInode(newInodeNum)

	sess.ZeroBlock(newInode.Block[0])
	dirent.InitBlock(sess, newInode.Block[0])
	if err := dirent.Insert(sess, &newInode, newInodeNum, ".", image.FileTypeDirectory); err != nil {
		return err
	}
	newInode.LinksCount++
	if err := dirent.Insert(sess, &newInode, parentInodeNum, "..", image.FileTypeDirectory); err != nil {
		return err
	}
	sess.WriteInode(newInodeNum, newInode)

	if err := dirent.Insert(sess, &parentInode, newInodeNum, name, image.FileTypeDirectory); err != nil {
		return err
	}
	parentInode.LinksCount++
	sess.WriteInode(parentInodeNum, parentInode)

	return nil
}

// CopyIn implements copy-in(native-path, image-path) (spec.md §4.1): the
// external file's bytes are streamed into a freshly allocated regular-mode
// inode, then linked into its parent directory.
func CopyIn(sess *image.Session, nativePath, imagePath string) error {
	nativeFile, err := os.Open(nativePath)
	if err != nil {
		return ferr.ErrNotFound.WrapError(err)
	}
	defer nativeFile.Close()

	info, err := nativeFile.Stat()
	if err != nil {
		return ferr.ErrIO.WrapError(err)
	}

	if _, _, err := resolver.Resolve(sess, imagePath); err == nil {
		return ferr.ErrExists
	}

	parentPath, name := pathutil.Split(imagePath)
	parentInodeNum, parentInode, err := resolver.Resolve(sess, parentPath)
	if err != nil {
		return err
	}
	if !parentInode.IsDir() {
		return ferr.ErrNotADirectory
	}

	data, err := filewriter.ReadAll(nativeFile)
	if err != nil {
		return err
	}

	a := alloc.New(sess)
	newInodeNum, err := a.File(info.Size(), image.DefaultFileMode)
	if err != nil {
		return err
	}
	newInode := sess.ReadInode(newInodeNum)

	if err := filewriter.Write(sess, newInode, data); err != nil {
		return err
	}

	if err := dirent.Insert(sess, &parentInode, newInodeNum, name, image.FileTypeRegular); err != nil {
		return err
	}
	sess.WriteInode(parentInodeNum, parentInode)

	return nil
}

// HardLink implements hard-link(target, new-path) (spec.md §4.1): target
// must exist and be regular, new-path must be absent, and its parent must
// exist; target's link count is incremented and a new entry referencing its
// inode number is linked into the parent.
func HardLink(sess *image.Session, target, newPath string) error {
	targetInodeNum, targetInode, err := resolver.Resolve(sess, target)
	if err != nil {
		return err
	}
	if !targetInode.IsRegular() {
		return ferr.ErrIsADirectory
	}

	if _, _, err := resolver.Resolve(sess, newPath); err == nil {
		return ferr.ErrExists
	}

	parentPath, name := pathutil.Split(newPath)
	parentInodeNum, parentInode, err := resolver.Resolve(sess, parentPath)
	if err != nil {
		return err
	}
	if !parentInode.IsDir() {
		return ferr.ErrNotADirectory
	}

	targetInode.LinksCount++
	sess.WriteInode(targetInodeNum, targetInode)

	if err := dirent.Insert(sess, &parentInode, targetInodeNum, name, image.FileTypeRegular); err != nil {
		return err
	}
	sess.WriteInode(parentInodeNum, parentInode)

	return nil
}

// Remove implements remove(path) (spec.md §4.1): path must exist and be
// regular; its link count is decremented, its directory entry is
// tombstoned, and once the link count reaches zero its data blocks and
// inode bitmap bit are freed.
func Remove(sess *image.Session, path string) error {
	_, targetInode, err := resolver.Resolve(sess, path)
	if err != nil {
		return err
	}
	if !targetInode.IsRegular() {
		return ferr.ErrIsADirectory
	}

	_, entry, err := resolver.FindEntry(sess, path)
	if err != nil {
		return err
	}
	targetInodeNum := entry.Header.Inode

	dirent.Remove(sess, entry)

	targetInode.LinksCount--
	if targetInode.LinksCount == 0 {
		sess.WriteInode(targetInodeNum, targetInode)
		a := alloc.New(sess)
		a.Free(targetInodeNum, targetInode)
		return nil
	}

	sess.WriteInode(targetInodeNum, targetInode)
	return nil
}
