package bitmap_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tshlabs/ext2edit/bitmap"
)

type fakeCounter struct{ free uint32 }

func (c *fakeCounter) Free() uint32     { return c.free }
func (c *fakeCounter) SetFree(v uint32) { c.free = v }

func TestFindLowestFreeSkipsReserved(t *testing.T) {
	raw := make([]byte, 16)
	counter := &fakeCounter{free: 128 - 10}
	m := bitmap.NewManager(raw, 128, 11, counter)

	assert.Equal(t, uint32(11), m.FindLowestFree())
}

func TestMarkUnmarkMaintainsCounter(t *testing.T) {
	raw := make([]byte, 16)
	counter := &fakeCounter{free: 128}
	m := bitmap.NewManager(raw, 128, 1, counter)

	m.Mark(1)
	assert.True(t, m.IsMarked(1))
	assert.Equal(t, uint32(127), counter.Free())

	assert.Equal(t, uint32(2), m.FindLowestFree())

	m.Unmark(1)
	assert.False(t, m.IsMarked(1))
	assert.Equal(t, uint32(128), counter.Free())
}

func TestMarkAlreadyMarkedPanics(t *testing.T) {
	raw := make([]byte, 16)
	m := bitmap.NewManager(raw, 128, 1, &fakeCounter{free: 128})
	m.Mark(5)
	assert.Panics(t, func() { m.Mark(5) })
}

func TestUnmarkAlreadyClearPanics(t *testing.T) {
	raw := make([]byte, 16)
	m := bitmap.NewManager(raw, 128, 1, &fakeCounter{free: 128})
	assert.Panics(t, func() { m.Unmark(5) })
}

func TestFindLowestFreeNoneAvailable(t *testing.T) {
	raw := make([]byte, 2)
	m := bitmap.NewManager(raw, 16, 1, &fakeCounter{free: 0})
	for i := uint32(1); i <= 16; i++ {
		m.Mark(i)
	}
	require.Equal(t, uint32(0), m.FindLowestFree())
}

func TestCountFree(t *testing.T) {
	raw := make([]byte, 2)
	m := bitmap.NewManager(raw, 16, 1, &fakeCounter{free: 16})
	m.Mark(1)
	m.Mark(2)
	assert.Equal(t, uint32(14), m.CountFree())
}
