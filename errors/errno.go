// Package errors defines the symbolic error conditions ext2edit's internal
// packages (image, bitmap, alloc, dirent, resolver, filewriter) raise. Each
// one maps onto exactly one POSIX errno code (the five spec.md §7 documents,
// plus ENOTDIR and EINVAL); the root package translates them into a *ext2edit.DriverError carrying the
// matching syscall.Errno at the editor/cmd boundary.
package errors

import "fmt"

// DriverError is the interface a symbolic error satisfies once it has
// picked up a message (WithMessage) or wrapped a lower-level failure
// (WrapError). It stays distinct from Ext2Error so a caller can attach
// context without losing the ability to errors.Is against the original
// sentinel via Unwrap.
type DriverError interface {
	error
	WithMessage(message string) DriverError
	WrapError(err error) DriverError
}

// Ext2Error is one of the fixed set of conditions an ext2edit operation can
// fail with; its string form doubles as the default, context-free message.
type Ext2Error string

const ErrNotFound = Ext2Error("No such file or directory")
const ErrExists = Ext2Error("File exists")
const ErrIsADirectory = Ext2Error("Is a directory")
const ErrNotADirectory = Ext2Error("Not a directory")
const ErrNoSpace = Ext2Error("No space left on device")
const ErrIO = Ext2Error("Input/output error")
const ErrInvalidArgument = Ext2Error("Invalid argument")

func (e Ext2Error) Error() string {
	return string(e)
}

// WithMessage attaches path/operation context to a sentinel while keeping it
// reachable through errors.Is (see sentinelError.Unwrap).
func (e Ext2Error) WithMessage(message string) DriverError {
	return sentinelError{message: message, sentinel: e}
}

// WrapError folds a lower-level error's text into the sentinel's own
// message, e.g. an *os.PathError surfaced while reading a native file.
func (e Ext2Error) WrapError(err error) DriverError {
	return sentinelError{
		message:  fmt.Sprintf("%s: %s", e.Error(), err.Error()),
		sentinel: e,
	}
}

// sentinelError pairs a formatted message with the Ext2Error it originated
// from, so errors.Is/As can still recover the sentinel after WithMessage or
// WrapError has replaced the display text.
type sentinelError struct {
	message  string
	sentinel Ext2Error
}

func (e sentinelError) Error() string {
	return e.message
}

func (e sentinelError) WithMessage(message string) DriverError {
	return sentinelError{
		message:  fmt.Sprintf("%s: %s", e.message, message),
		sentinel: e.sentinel,
	}
}

func (e sentinelError) WrapError(err error) DriverError {
	return sentinelError{
		message:  fmt.Sprintf("%s: %s", e.Error(), err.Error()),
		sentinel: e.sentinel,
	}
}

func (e sentinelError) Unwrap() error {
	return e.sentinel
}
