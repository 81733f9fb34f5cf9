package ext2edit

import (
	"errors"
	"syscall"

	ferr "github.com/tshlabs/ext2edit/errors"
)

// ToDriverError maps one of this module's internal symbolic errors (raised
// by image/bitmap/alloc/dirent/resolver) onto a DriverError carrying the
// matching syscall.Errno, so a cmd/* binary can use it directly as a process
// exit code (spec.md §6, §7).
func ToDriverError(err error) *DriverError {
	if err == nil {
		return nil
	}

	var driverErr *DriverError
	if errors.As(err, &driverErr) {
		return driverErr
	}

	switch {
	case errors.Is(err, ferr.ErrNotFound):
		return NewDriverErrorWithMessage(syscall.ENOENT, err.Error())
	case errors.Is(err, ferr.ErrExists):
		return NewDriverErrorWithMessage(syscall.EEXIST, err.Error())
	case errors.Is(err, ferr.ErrIsADirectory):
		return NewDriverErrorWithMessage(syscall.EISDIR, err.Error())
	case errors.Is(err, ferr.ErrNotADirectory):
		return NewDriverErrorWithMessage(syscall.ENOTDIR, err.Error())
	case errors.Is(err, ferr.ErrNoSpace):
		return NewDriverErrorWithMessage(syscall.ENOSPC, err.Error())
	case errors.Is(err, ferr.ErrIO):
		return NewDriverErrorWithMessage(syscall.EIO, err.Error())
	case errors.Is(err, ferr.ErrInvalidArgument):
		return NewDriverErrorWithMessage(syscall.EINVAL, err.Error())
	default:
		return NewDriverErrorWithMessage(syscall.EIO, err.Error())
	}
}
