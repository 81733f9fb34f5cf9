package ext2edit_test

import (
	"errors"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tshlabs/ext2edit"
	ferr "github.com/tshlabs/ext2edit/errors"
)

func TestDriverErrorMessage(t *testing.T) {
	err := ext2edit.NewDriverErrorWithMessage(syscall.ENOENT, "/missing")
	assert.Equal(t, "no such file or directory: /missing", err.Error())
	assert.Equal(t, int(syscall.ENOENT), err.ExitCode())
}

func TestDriverErrorDefaultMessage(t *testing.T) {
	err := ext2edit.NewDriverError(syscall.ENOSPC)
	assert.Equal(t, syscall.ENOSPC.Error(), err.Error())
}

func TestDriverErrorUnwrapsToErrno(t *testing.T) {
	err := ext2edit.NewDriverError(syscall.EEXIST)
	assert.ErrorIs(t, err, syscall.EEXIST)
}

func TestToDriverErrorMapsSymbolicErrors(t *testing.T) {
	cases := []struct {
		in   error
		want syscall.Errno
	}{
		{ferr.ErrNotFound, syscall.ENOENT},
		{ferr.ErrExists, syscall.EEXIST},
		{ferr.ErrIsADirectory, syscall.EISDIR},
		{ferr.ErrNotADirectory, syscall.ENOTDIR},
		{ferr.ErrNoSpace, syscall.ENOSPC},
		{ferr.ErrIO, syscall.EIO},
		{ferr.ErrInvalidArgument, syscall.EINVAL},
	}

	for _, c := range cases {
		got := ext2edit.ToDriverError(c.in)
		assert.Equal(t, c.want, got.ErrnoCode, c.in)
	}
}

func TestToDriverErrorPreservesSentinelThroughWithMessage(t *testing.T) {
	wrapped := ferr.ErrExists.WithMessage("/a already exists")
	got := ext2edit.ToDriverError(wrapped)
	assert.Equal(t, syscall.EEXIST, got.ErrnoCode)
}

func TestToDriverErrorPreservesSentinelThroughWrapError(t *testing.T) {
	wrapped := ferr.ErrNotFound.WrapError(errors.New("open: no such file"))
	got := ext2edit.ToDriverError(wrapped)
	assert.Equal(t, syscall.ENOENT, got.ErrnoCode)
}

func TestToDriverErrorPassesThroughExistingDriverError(t *testing.T) {
	original := ext2edit.NewDriverError(syscall.EIO)
	got := ext2edit.ToDriverError(original)
	assert.Same(t, original, got)
}

func TestToDriverErrorNil(t *testing.T) {
	assert.Nil(t, ext2edit.ToDriverError(nil))
}
