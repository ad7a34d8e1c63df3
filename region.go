package memkit

import (
	"log/slog"
	"sync/atomic"

	"github.com/pavanmanishd/memkit/internal/bitutil"
	"github.com/pavanmanishd/memkit/internal/debug"
)

// slab is one contiguous block owned by a Region.
type slab struct {
	buf  []byte  // backing memory
	head uintptr // bump cursor within buf
	next *slab   // older slab
}

// Region is a bump allocator over a LIFO stack of slabs. Objects cannot be
// freed individually; Clear or Destroy release everything at once.
//
// Pushing a new slab is a lock-free CAS, but the bump cursor is not
// synchronized: a Region must be owned by one goroutine at a time. Use
// SafeRegion when several goroutines share one.
type Region struct {
	parent   Allocator
	logger   *slog.Logger
	top      atomic.Pointer[slab]
	minSlab  int
	align    int
	released bool
}

// NewRegion creates an empty region. A nil parent selects DefaultVM.
// WithAlignment, WithMinSlabSize and WithLogger apply.
func NewRegion(parent Allocator, opts ...Option) *Region {
	c := newConfig(opts)
	return &Region{
		parent:  resolve(parent, DefaultVM),
		logger:  componentLogger(c.logger, "region"),
		minSlab: c.minSlabSize,
		align:   c.alignment,
	}
}

// Realloc implements Allocator. Only allocation is supported; a non-empty
// buf panics because regions never free individual objects.
func (r *Region) Realloc(buf []byte, newSize int) []byte {
	if len(buf) > 0 {
		panicerr("region: cannot free or resize a %d byte block, regions release in bulk", len(buf))
	}
	return r.Alloc(newSize)
}

// Alloc returns n bytes aligned to the region's default alignment.
// Returns nil if n <= 0.
func (r *Region) Alloc(n int) []byte {
	return r.AllocAligned(n, r.align)
}

// AllocAligned returns n bytes aligned to align, a power of two.
// Returns nil if n <= 0.
func (r *Region) AllocAligned(n, align int) []byte {
	r.panicIfReleased()
	if n <= 0 {
		return nil
	}
	if !bitutil.IsPowerOf2(align) {
		panicerr("region: alignment %d is not a power of two", align)
	}

	// Fast path: bump the top slab
	if s := r.top.Load(); s != nil {
		if b, ok := s.bump(n, align); ok {
			return b
		}
	}

	// Slow path: need a new slab
	s := r.grow(n + align - 1)
	b, ok := s.bump(n, align)
	debug.Assert(ok, "region: fresh slab cannot hold the request")
	return b
}

// EnsureCapacity makes sure the next Alloc(n) is served from the top slab,
// pushing a new slab if it would not be. n <= 0 is a no-op.
func (r *Region) EnsureCapacity(n int) {
	r.panicIfReleased()
	if n <= 0 {
		return
	}
	if s := r.top.Load(); s != nil {
		if _, ok := s.fits(n, r.align); ok {
			return
		}
	}
	r.grow(n + r.align - 1)
}

// Reset keeps only the most recent slab and rewinds it, returning every
// older slab to the parent. Previously returned memory becomes invalid.
func (r *Region) Reset() {
	r.panicIfReleased()
	s := r.top.Load()
	if s == nil {
		return
	}
	r.releaseChain(s.next)
	s.next, s.head = nil, 0
}

// Clear returns every slab to the parent. The region stays usable.
func (r *Region) Clear() {
	r.panicIfReleased()
	r.releaseChain(r.top.Swap(nil))
}

// Destroy returns every slab to the parent and makes the region unusable.
// Any subsequent operation other than Destroy panics.
func (r *Region) Destroy() {
	if r.released {
		return
	}
	r.releaseChain(r.top.Swap(nil))
	r.released = true
}

// grow pushes a slab able to hold at least n bytes.
func (r *Region) grow(n int) *slab {
	size := bitutil.NextPowerOf2(n)
	if size < r.minSlab {
		size = r.minSlab
	}
	s := &slab{buf: r.parent.Realloc(nil, size)}
	r.push(s)
	r.logger.Debug("slab pushed", slog.Int("size", size), slog.Int("request", n))
	return s
}

func (r *Region) push(s *slab) {
	for {
		top := r.top.Load()
		s.next = top
		if r.top.CompareAndSwap(top, s) {
			return
		}
	}
}

func (r *Region) releaseChain(s *slab) {
	for s != nil {
		next := s.next
		r.parent.Realloc(s.buf, 0)
		s.buf, s.next = nil, nil
		s = next
	}
}

// panicIfReleased panics if the region has been destroyed.
func (r *Region) panicIfReleased() {
	if r.released {
		panic("region: use after Destroy()")
	}
}

// bump carves n bytes aligned to align out of the slab.
func (s *slab) bump(n, align int) ([]byte, bool) {
	off, ok := s.fits(n, align)
	if !ok {
		return nil, false
	}
	end := off + n
	s.head = uintptr(end)
	debug.Assert(end <= len(s.buf), "region: cursor ran past the slab")
	return s.buf[off:end:end], true
}

// fits returns the aligned offset of the next n-byte block and whether it
// lies inside the slab.
func (s *slab) fits(n, align int) (int, bool) {
	base := addressOf(s.buf)
	off := int(bitutil.AlignUp(base+s.head, uintptr(align)) - base)
	return off, off+n <= len(s.buf)
}

var (
	_ Allocator = (*Region)(nil)
	_ Aligner   = (*Region)(nil)
)
