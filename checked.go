package memkit

import (
	"os"
	"slices"
	"strconv"
	"sync"
)

// CheckedAllocator sits between an allocator under test and its parent and
// accounts for every byte that passes through it. Each live block remembers
// the site that requested it, so a test that ends with bytes outstanding
// can name the leak.
//
// CheckedAllocator is safe for concurrent use.
type CheckedAllocator struct {
	parent Allocator

	mu    sync.Mutex
	size  int
	live  map[uintptr]liveBlock
	depth int
}

type liveBlock struct {
	size int
	site Site
}

// leakSiteDepth is how many frames above the direct caller of Realloc the
// origin of a block is recorded. Requests usually come through a Region,
// Pool or Scratch, so the default skips those layers.
// MEMKIT_CHECKED_ALLOC_FRAMES overrides it.
var leakSiteDepth = 2

func init() {
	if v, ok := os.LookupEnv("MEMKIT_CHECKED_ALLOC_FRAMES"); ok {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			leakSiteDepth = n
		}
	}
}

// NewCheckedAllocator wraps parent. A nil parent wraps DefaultAllocator.
func NewCheckedAllocator(parent Allocator) *CheckedAllocator {
	return &CheckedAllocator{
		parent: resolve(parent, DefaultAllocator),
		live:   make(map[uintptr]liveBlock),
		depth:  leakSiteDepth,
	}
}

// CurrentAlloc returns the number of bytes currently outstanding.
func (a *CheckedAllocator) CurrentAlloc() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.size
}

// Realloc implements Allocator.
func (a *CheckedAllocator) Realloc(buf []byte, newSize int) []byte {
	a.forget(buf)
	out := a.parent.Realloc(buf, newSize)
	a.record(out, newSize)
	return out
}

// AllocAligned implements Aligner. The alignment is honoured when the parent
// is an Aligner; otherwise the parent's natural alignment applies.
func (a *CheckedAllocator) AllocAligned(n, align int) []byte {
	if n <= 0 {
		return nil
	}
	var out []byte
	if al, ok := a.parent.(Aligner); ok {
		out = al.AllocAligned(n, align)
	} else {
		out = a.parent.Realloc(nil, n)
	}
	a.record(out, n)
	return out
}

// forget drops buf from the live set before the parent can hand its address
// to another caller.
func (a *CheckedAllocator) forget(buf []byte) {
	if len(buf) == 0 {
		return
	}
	a.mu.Lock()
	delete(a.live, addressOf(buf))
	a.size -= len(buf)
	a.mu.Unlock()
}

func (a *CheckedAllocator) record(out []byte, n int) {
	if n <= 0 {
		return
	}
	site := callerSite(a.depth + 2)
	a.mu.Lock()
	a.live[addressOf(out)] = liveBlock{size: n, site: site}
	a.size += n
	a.mu.Unlock()
}

// TestingT is the subset of *testing.T used by the assertions below.
type TestingT interface {
	Errorf(format string, args ...interface{})
	Helper()
}

// AssertSize fails t unless exactly want bytes are outstanding. On failure
// every live block is reported with the site that allocated it, largest
// first.
func (a *CheckedAllocator) AssertSize(t TestingT, want int) {
	t.Helper()
	a.mu.Lock()
	got := a.size
	blocks := make([]liveBlock, 0, len(a.live))
	for _, b := range a.live {
		blocks = append(blocks, b)
	}
	a.mu.Unlock()

	if got == want {
		return
	}
	slices.SortFunc(blocks, func(x, y liveBlock) int { return y.size - x.size })
	for _, b := range blocks {
		t.Errorf("leaked %d bytes allocated at %s", b.size, b.site)
	}
	t.Errorf("outstanding bytes: want %d, got %d", want, got)
}

// CheckedAllocatorScope snapshots the outstanding byte count so a test can
// verify it returns to the same value.
type CheckedAllocatorScope struct {
	alloc *CheckedAllocator
	start int
}

// NewCheckedAllocatorScope records the current outstanding size of alloc.
func NewCheckedAllocatorScope(alloc *CheckedAllocator) *CheckedAllocatorScope {
	return &CheckedAllocatorScope{alloc: alloc, start: alloc.CurrentAlloc()}
}

// CheckSize fails t if the outstanding size moved since the scope began.
func (c *CheckedAllocatorScope) CheckSize(t TestingT) {
	t.Helper()
	c.alloc.AssertSize(t, c.start)
}

var (
	_ Allocator = (*CheckedAllocator)(nil)
	_ Aligner   = (*CheckedAllocator)(nil)
)
