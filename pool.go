package memkit

import (
	"fmt"
	"log/slog"
	"unsafe"

	"github.com/pavanmanishd/memkit/internal/bitutil"
	"github.com/pavanmanishd/memkit/internal/debug"
)

// Pool hands out objects of a single fixed size. Objects live in chunks
// obtained from the parent; freed objects go on a LIFO free list and are
// reused before the pool grows. Chunks are only returned to the parent by
// Clear or Destroy.
//
// Pool is not safe for concurrent use.
type Pool struct {
	parent   Allocator
	logger   *slog.Logger
	objSize  int
	perChunk int

	chunks [][]byte       // chunk table, entries past index are nil
	index  int            // current chunk, -1 when none is allocated
	next   int            // next never-used slot
	free   []int32        // free slot indices, last freed on top
	live   bitutil.Bitmap // one bit per slot, set while allocated
	used   int
	cap    int

	destroyed bool
}

// NewPool creates a pool of objectSize-byte objects, rounded up to pointer
// size. A nil parent selects DefaultAllocator. WithChunkSize and WithLogger
// apply.
func NewPool(objectSize int, parent Allocator, opts ...Option) *Pool {
	if objectSize <= 0 {
		panicerr("pool: invalid object size %d", objectSize)
	}
	c := newConfig(opts)
	objSize := bitutil.AlignUp(objectSize, int(unsafe.Sizeof(uintptr(0))))
	perChunk := c.chunkSize / objSize
	if perChunk == 0 {
		perChunk = 1
	}
	return &Pool{
		parent:   resolve(parent, DefaultAllocator),
		logger:   componentLogger(c.logger, "pool"),
		objSize:  objSize,
		perChunk: perChunk,
		index:    -1,
	}
}

// Realloc implements Allocator. Pools allocate (newSize must not exceed the
// object size) and free; resizing panics.
func (p *Pool) Realloc(buf []byte, newSize int) []byte {
	switch {
	case len(buf) == 0 && newSize == 0:
		return nil
	case len(buf) == 0:
		if newSize > p.objSize {
			panicerr("pool: request of %d bytes exceeds object size %d", newSize, p.objSize)
		}
		return p.Get()[:newSize]
	case newSize == 0:
		p.Put(buf)
		return nil
	}
	panicerr("pool: cannot resize %d -> %d, pools hold a single object size", len(buf), newSize)
	return nil
}

// Get allocates one object. The contents are not zeroed.
func (p *Pool) Get() []byte {
	p.panicIfDestroyed()

	var slot int
	if n := len(p.free); n > 0 {
		slot = int(p.free[n-1])
		p.free = p.free[:n-1]
	} else {
		if p.next == p.cap {
			p.grow()
		}
		slot = p.next
		p.next++
	}
	p.live.Set(slot)
	p.used++
	return p.slot(slot)
}

// Put frees an object returned by Get (or Realloc). Foreign pointers,
// pointers inside an object and double frees panic.
func (p *Pool) Put(buf []byte) {
	p.panicIfDestroyed()
	if len(buf) == 0 {
		panicerr("pool: free of empty buffer")
	}
	slot := p.find(buf)
	if !p.live.IsSet(slot) {
		panicerr("pool: double free of slot %d", slot)
	}
	p.live.Clear(slot)
	p.free = append(p.free, int32(slot))
	p.used--
}

// Clear returns every chunk to the parent. The chunk table is kept, so the
// pool can be used again. Outstanding objects become invalid.
func (p *Pool) Clear() {
	p.panicIfDestroyed()
	chunkBytes := p.chunkBytes()
	for i := 0; i <= p.index; i++ {
		p.parent.Realloc(p.chunks[i][:chunkBytes], 0)
		p.chunks[i] = nil
	}
	p.index, p.next = -1, 0
	p.used, p.cap = 0, 0
	p.free = p.free[:0]
	p.live.Reset()
}

// Destroy clears the pool and drops the chunk table. Live objects are
// reported as a warning, not an error. Any further use panics.
func (p *Pool) Destroy() {
	if p.destroyed {
		return
	}
	if p.used > 0 {
		p.logger.Warn("pool destroyed with live objects",
			slog.Int("live", p.used), slog.Int("object_size", p.objSize))
	}
	p.Clear()
	p.chunks, p.free = nil, nil
	p.destroyed = true
}

// ObjectSize returns the rounded size of every object.
func (p *Pool) ObjectSize() int { return p.objSize }

// Used returns the number of live objects.
func (p *Pool) Used() int { return p.used }

// Cap returns the number of slots in allocated chunks.
func (p *Pool) Cap() int { return p.cap }

func (p *Pool) grow() {
	p.index++
	if p.index == len(p.chunks) {
		n := len(p.chunks) * 2
		if n == 0 {
			n = 1
		}
		table := make([][]byte, n)
		copy(table, p.chunks)
		p.chunks = table
	}
	p.chunks[p.index] = p.parent.Realloc(nil, p.chunkBytes())
	p.cap += p.perChunk
	p.live.Grow(p.cap)
	debug.Log(func() string { return fmt.Sprintf("pool: chunk %d acquired, %d slots", p.index, p.cap) })
	debug.Assert(p.next/p.perChunk == p.index, "pool: cursor is not in the current chunk")
}

func (p *Pool) slot(i int) []byte {
	chunk := p.chunks[i/p.perChunk]
	off := (i % p.perChunk) * p.objSize
	return chunk[off : off+p.objSize : off+p.objSize]
}

// find maps a pointer back to its slot index.
func (p *Pool) find(buf []byte) int {
	addr := addressOf(buf)
	chunkBytes := uintptr(p.chunkBytes())
	for i := 0; i <= p.index; i++ {
		base := addressOf(p.chunks[i])
		if addr < base || addr >= base+chunkBytes {
			continue
		}
		diff := addr - base
		if diff%uintptr(p.objSize) != 0 {
			panicerr("pool: unaligned pointer %#x, offset %d in chunk %d", addr, diff, i)
		}
		return i*p.perChunk + int(diff/uintptr(p.objSize))
	}
	panicerr("pool: pointer %#x not owned by this pool", addr)
	return -1
}

func (p *Pool) chunkBytes() int { return p.perChunk * p.objSize }

func (p *Pool) panicIfDestroyed() {
	if p.destroyed {
		panic("pool: use after Destroy()")
	}
}

var _ Allocator = (*Pool)(nil)
