// Package bitmap implements component B: the lowest-numbered-free-bit
// scanner and mark/unmark operations spec.md §4.3 describes, shared by the
// inode and block bitmaps. It is grounded on the teacher's
// drivers/common/allocatormap.go, which wraps github.com/boljen/go-bitmap
// over an in-memory allocation table the same way; the difference is that
// here the underlying bytes live inside the mapped image buffer itself
// (bitmap.NewSlice is zero-copy), and every mark/unmark keeps a paired
// free-counter in the superblock in sync.
package bitmap

import (
	"fmt"

	gobitmap "github.com/boljen/go-bitmap"
)

// Counter is the superblock free-counter a Manager keeps in sync with the
// bits it flips. image.Session.BlockFreeCounter/InodeFreeCounter implement
// this.
type Counter interface {
	Free() uint32
	SetFree(uint32)
}

// Manager is a bitmap manager bound to one bitmap's backing bytes, its
// total bit count, and the superblock counter it must keep consistent
// (invariant 1, spec.md §3).
type Manager struct {
	bits        gobitmap.Bitmap
	total       uint32
	firstUsable uint32
	counter     Counter
}

// NewManager wraps raw (a bitmap's backing bytes, e.g.
// Session.InodeBitmapBytes()) with zero-copy mutation. firstUsable is the
// lowest 1-based index FindLowestFree will ever return; pass 1 for the
// block bitmap and image.FirstUsableInode for the inode bitmap so reserved
// low inode numbers are never handed out even though their bits start out
// clear (spec.md §9).
func NewManager(raw []byte, total uint32, firstUsable uint32, counter Counter) *Manager {
	return &Manager{
		bits:        gobitmap.NewSlice(raw),
		total:       total,
		firstUsable: firstUsable,
		counter:     counter,
	}
}

// FindLowestFree scans byte-by-byte, and within each byte from bit 0
// upward, for the first cleared bit at or above firstUsable. It returns 0
// if none is free (spec.md §4.3).
func (m *Manager) FindLowestFree() uint32 {
	for i := m.firstUsable; i <= m.total; i++ {
		if !m.bits.Get(int(i - 1)) {
			return i
		}
	}
	return 0
}

// Mark sets bit n-1 and decrements the free-counter. Marking an
// already-marked bit is a programming error per spec.md §4.3's contract and
// panics rather than silently corrupting the counter.
func (m *Manager) Mark(n uint32) {
	idx := int(n - 1)
	if m.bits.Get(idx) {
		panic(fmt.Sprintf("bitmap: bit %d is already marked", n))
	}
	m.bits.Set(idx, true)
	m.counter.SetFree(m.counter.Free() - 1)
}

// Unmark clears bit n-1 and increments the free-counter. Unmarking an
// already-clear bit is a programming error and panics.
func (m *Manager) Unmark(n uint32) {
	idx := int(n - 1)
	if !m.bits.Get(idx) {
		panic(fmt.Sprintf("bitmap: bit %d is already clear", n))
	}
	m.bits.Set(idx, false)
	m.counter.SetFree(m.counter.Free() + 1)
}

// IsMarked reports whether bit n-1 is set.
func (m *Manager) IsMarked(n uint32) bool {
	return m.bits.Get(int(n - 1))
}

// CountFree returns the number of cleared bits below total, used by tests
// to check invariant 1 (spec.md §8) against the superblock's counter.
func (m *Manager) CountFree() uint32 {
	free := uint32(0)
	for i := uint32(0); i < m.total; i++ {
		if !m.bits.Get(int(i)) {
			free++
		}
	}
	return free
}
