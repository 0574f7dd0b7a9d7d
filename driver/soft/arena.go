package soft

import "github.com/phoenixgfx/phoenix/internal/bitm"

// pageSize is the allocation granularity of the reference backend's
// host-visible arena. Real device allocators work in pages for the
// same reason: tracking byte-granular free lists does not scale.
const pageSize = 256

// arena is a page-granularity free-list allocator backing every
// Buffer the reference backend creates, grounded in internal/bitm's
// stated purpose ("resource management, e.g. memory allocation and
// free list implementations"). The bytes themselves still live in a
// per-Buffer slice — driver/soft never aliases device memory across
// buffers — but bitm's Bitm tracks which pages are in use so
// NewBuffer/Destroy can be reasoned about the same way a real
// allocator's block list would be.
type arena struct {
	pages bitm.Bitm[uint64]
}

// reserve marks enough pages used to cover size bytes and returns the
// page range, growing the bitmap if the arena has no contiguous free
// run of that length.
func (a *arena) reserve(size int64) (index, n int) {
	n = int((size + pageSize - 1) / pageSize)
	if n < 1 {
		n = 1
	}
	idx, ok := a.pages.SearchRange(n)
	if !ok {
		// Grow by whole words until a range of n bits is available.
		const wordBits = 64
		words := (n + wordBits - 1) / wordBits
		a.pages.Grow(words)
		idx, ok = a.pages.SearchRange(n)
		if !ok {
			// SearchRange can still fail if the free run is
			// fragmented across the old and new extent; grow once
			// more by the full requested width to guarantee room.
			a.pages.Grow((n + wordBits - 1) / wordBits)
			idx, _ = a.pages.SearchRange(n)
		}
	}
	for i := 0; i < n; i++ {
		a.pages.Set(idx + i)
	}
	return idx, n
}

// release returns a previously reserved page range to the free list.
func (a *arena) release(index, n int) {
	for i := 0; i < n; i++ {
		a.pages.Unset(index + i)
	}
}
