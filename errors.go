package ext2edit

import (
	"fmt"
	"syscall"
)

// DriverError is a wrapper around a POSIX errno code, with a customizable
// error message. Command adapters use ErrnoCode directly as the process
// exit status (spec.md §6).
type DriverError struct {
	ErrnoCode syscall.Errno
	message   string
}

// Error implements the `error` interface.
func (e *DriverError) Error() string {
	if e.message != "" {
		return e.message
	}
	return e.ErrnoCode.Error()
}

// Unwrap lets errors.Is/As match against the underlying syscall.Errno.
func (e *DriverError) Unwrap() error {
	return e.ErrnoCode
}

// NewDriverError creates a DriverError with a default message derived from
// the errno code.
func NewDriverError(errnoCode syscall.Errno) *DriverError {
	return &DriverError{ErrnoCode: errnoCode, message: errnoCode.Error()}
}

// NewDriverErrorWithMessage creates a DriverError from an errno code with a
// custom message.
func NewDriverErrorWithMessage(errnoCode syscall.Errno, message string) *DriverError {
	return &DriverError{
		ErrnoCode: errnoCode,
		message:   fmt.Sprintf("%s: %s", errnoCode.Error(), message),
	}
}

// ExitCode returns the numeric errno value a cmd/* binary should exit with.
func (e *DriverError) ExitCode() int {
	return int(e.ErrnoCode)
}
