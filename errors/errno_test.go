package errors_test

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tshlabs/ext2edit/errors"
)

func TestExt2ErrorWithMessage(t *testing.T) {
	newErr := errors.ErrNotFound.WithMessage("/a/b")
	assert.Equal(t, "/a/b", newErr.Error())
	assert.ErrorIs(t, newErr, errors.ErrNotFound)
}

func TestExt2ErrorWrapError(t *testing.T) {
	originalErr := stderrors.New("open: permission denied")
	newErr := errors.ErrIO.WrapError(originalErr)

	assert.Equal(t, "Input/output error: open: permission denied", newErr.Error())
	assert.ErrorIs(t, newErr, errors.ErrIO)
}
