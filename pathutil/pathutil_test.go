package pathutil_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tshlabs/ext2edit/pathutil"
)

func TestSplit(t *testing.T) {
	cases := []struct {
		path, wantParent, wantFinal string
	}{
		{"/", "/", ""},
		{"/a", "/", "a"},
		{"/a/b", "/a", "b"},
		{"/a/b/c", "/a/b", "c"},
		{"/a/b/", "/a", "b"},
	}
	for _, c := range cases {
		parent, final := pathutil.Split(c.path)
		assert.Equal(t, c.wantParent, parent, c.path)
		assert.Equal(t, c.wantFinal, final, c.path)
	}
}

func TestSegments(t *testing.T) {
	assert.Equal(t, []string{}, pathutil.Segments("/"))
	assert.Equal(t, []string{"a"}, pathutil.Segments("/a"))
	assert.Equal(t, []string{"a", "b", "c"}, pathutil.Segments("/a/b/c"))
	assert.Equal(t, []string{"a", "b"}, pathutil.Segments("/a//b/"))
}
