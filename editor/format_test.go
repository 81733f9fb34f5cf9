package editor_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tshlabs/ext2edit/editor"
	"github.com/tshlabs/ext2edit/image"
)

func freshImage(t *testing.T) *image.Session {
	t.Helper()
	sess := image.NewInMemory()
	require.NoError(t, editor.Format(sess))
	return sess
}

func TestFormatProducesRootWithLostFound(t *testing.T) {
	sess := freshImage(t)

	names, err := editor.List(sess, "/")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{".", "..", "lost+found"}, names)
}

func TestFormatWritesMagicAndNonZeroFreeCounters(t *testing.T) {
	sess := freshImage(t)
	sb := sess.ReadSuperblock()
	assert.Equal(t, image.Magic, int(sb.Magic))
	assert.Greater(t, sb.FreeBlocksCount, uint32(0))
	assert.Greater(t, sb.FreeInodesCount, uint32(0))
}
