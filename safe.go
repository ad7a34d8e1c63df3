package memkit

import "sync"

// SafeRegion is a mutex-protected wrapper around Region for concurrent access.
// All operations are thread-safe but come with the overhead of mutex locking.
type SafeRegion struct {
	mu sync.Mutex
	r  *Region
}

// NewSafeRegion creates a thread-safe region. Arguments are as for NewRegion.
func NewSafeRegion(parent Allocator, opts ...Option) *SafeRegion {
	return &SafeRegion{r: NewRegion(parent, opts...)}
}

// Realloc thread-safely implements Allocator with Region semantics.
func (s *SafeRegion) Realloc(buf []byte, newSize int) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.Realloc(buf, newSize)
}

// Alloc thread-safely allocates n bytes. Returns nil if n <= 0.
func (s *SafeRegion) Alloc(n int) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.Alloc(n)
}

// AllocAligned thread-safely allocates n bytes aligned to align.
func (s *SafeRegion) AllocAligned(n, align int) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.AllocAligned(n, align)
}

// EnsureCapacity thread-safely ensures the top slab has at least n free bytes.
func (s *SafeRegion) EnsureCapacity(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.r.EnsureCapacity(n)
}

// Reset thread-safely rewinds the region to its most recent slab.
func (s *SafeRegion) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.r.Reset()
}

// Clear thread-safely returns every slab to the parent.
func (s *SafeRegion) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.r.Clear()
}

// Destroy thread-safely releases every slab and makes the region unusable.
func (s *SafeRegion) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.r.Destroy()
}

var (
	_ Allocator = (*SafeRegion)(nil)
	_ Aligner   = (*SafeRegion)(nil)
)
