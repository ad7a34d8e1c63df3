package memkit

import (
	"github.com/pavanmanishd/memkit/internal/bitutil"
	"github.com/pavanmanishd/memkit/internal/debug"
)

const scratchAlignment = 8

type scratchNode struct {
	buf  []byte
	next *scratchNode
}

// Scratch is a bump allocator for short-lived, task-scoped memory. The
// first ScratchInlineSize bytes come from a buffer embedded in the Scratch
// itself; once that is exhausted, overflow nodes are taken from the parent
// and the inline buffer is abandoned until Close. Close returns every node
// to the parent in one go.
//
// Free is a no-op. A Scratch must not be copied after Init and is not safe
// for concurrent use. The zero value is closed; call Init or use
// WithScratch.
type Scratch struct {
	inline [ScratchInlineSize]byte

	parent Allocator
	cur    []byte // active buffer, inline or the head node
	off    int    // bump offset into cur
	nodes  *scratchNode
	nnodes int

	inlineUsed int
	open       bool
}

// WithScratch runs fn with a scratch allocator over parent (nil selects
// DefaultAllocator) and closes it when fn returns or panics.
func WithScratch(parent Allocator, fn func(s *Scratch)) {
	var s Scratch
	s.Init(parent)
	defer s.Close()
	fn(&s)
}

// Init opens s over parent. A nil parent selects DefaultAllocator.
// Calling Init on an open scratch panics.
func (s *Scratch) Init(parent Allocator) {
	if s.open {
		panic("scratch: Init() on an open scratch, Close() it first")
	}
	s.parent = resolve(parent, DefaultAllocator)
	s.cur = s.inline[:]
	s.off = 0
	s.nodes, s.nnodes = nil, 0
	s.inlineUsed = 0
	s.open = true
}

// Close returns every overflow node to the parent. Memory handed out by s
// becomes invalid. Close on a closed scratch does nothing.
func (s *Scratch) Close() {
	if !s.open {
		return
	}
	for n := s.nodes; n != nil; {
		next := n.next
		s.parent.Realloc(n.buf, 0)
		n.buf, n.next = nil, nil
		n = next
	}
	s.nodes, s.nnodes = nil, 0
	s.cur, s.off = nil, 0
	s.open = false
}

// Alloc returns n bytes aligned to 8. Returns nil if n <= 0.
func (s *Scratch) Alloc(n int) []byte {
	return s.AllocAligned(n, scratchAlignment)
}

// AllocAligned returns n bytes aligned to align, a power of two.
func (s *Scratch) AllocAligned(n, align int) []byte {
	s.panicIfClosed()
	if n <= 0 {
		return nil
	}
	if !bitutil.IsPowerOf2(align) {
		panicerr("scratch: alignment %d is not a power of two", align)
	}
	if b, ok := s.bump(n, align); ok {
		return b
	}
	s.overflow(n + align - 1)
	b, ok := s.bump(n, align)
	debug.Assert(ok, "scratch: fresh node cannot hold the request")
	return b
}

// Realloc implements Allocator. Freeing is a no-op; shrinking reslices in
// place; growing allocates a new block and copies the old contents.
func (s *Scratch) Realloc(buf []byte, newSize int) []byte {
	switch {
	case newSize < 0:
		panicerr("scratch: negative size %d", newSize)
	case len(buf) == 0:
		return s.Alloc(newSize)
	case newSize == 0:
		s.panicIfClosed()
		return nil
	case newSize <= len(buf):
		s.panicIfClosed()
		return buf[:newSize]
	}
	out := s.Alloc(newSize)
	copy(out, buf)
	return out
}

// InlineUsed returns the bytes consumed from the inline buffer, including
// alignment padding. It stops changing once the scratch has overflowed.
func (s *Scratch) InlineUsed() int {
	if s.nodes == nil {
		return s.off
	}
	return s.inlineUsed
}

// Overflowed reports whether s has taken memory from its parent.
func (s *Scratch) Overflowed() bool { return s.nodes != nil }

// OverflowNodes returns the number of nodes taken from the parent.
func (s *Scratch) OverflowNodes() int { return s.nnodes }

func (s *Scratch) bump(n, align int) ([]byte, bool) {
	base := addressOf(s.cur)
	off := int(bitutil.AlignUp(base+uintptr(s.off), uintptr(align)) - base)
	if off+n > len(s.cur) {
		return nil, false
	}
	s.off = off + n
	return s.cur[off : off+n : off+n], true
}

// overflow links a node of at least n bytes at the head of the list.
func (s *Scratch) overflow(n int) {
	size := bitutil.NextPowerOf2(n)
	if size > ChunkSize {
		size = ChunkSize
	}
	if size < n {
		size = n
	}
	if s.nodes == nil {
		s.inlineUsed = s.off
	}
	s.nodes = &scratchNode{buf: s.parent.Realloc(nil, size), next: s.nodes}
	s.nnodes++
	s.cur, s.off = s.nodes.buf, 0
}

func (s *Scratch) panicIfClosed() {
	if !s.open {
		panic("scratch: use outside Init()/Close()")
	}
}

var (
	_ Allocator = (*Scratch)(nil)
	_ Aligner   = (*Scratch)(nil)
)
