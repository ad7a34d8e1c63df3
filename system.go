package memkit

import "github.com/pavanmanishd/memkit/internal/bitutil"

const systemAlignment = 64

// DefaultAllocator is the parent used when a constructor receives a nil
// Allocator (except Region, which defaults to DefaultVM).
//
// DefaultAllocator is safe to use from multiple goroutines.
var DefaultAllocator Allocator = NewSystem()

// System allocates from the Go heap. Blocks are 64-byte aligned. Freed
// blocks are handed back to the garbage collector.
type System struct {
	profiler Profiler
}

// NewSystem returns a heap allocator. Only WithProfiler is meaningful.
func NewSystem(opts ...Option) *System {
	c := newConfig(opts)
	return &System{profiler: c.profiler}
}

// Realloc implements Allocator.
func (a *System) Realloc(buf []byte, newSize int) []byte {
	switch {
	case newSize < 0:
		panicerr("system: negative size %d", newSize)

	case len(buf) == 0 && newSize == 0:
		return nil

	case len(buf) == 0:
		out := a.allocate(newSize)
		if a.profiler != nil {
			a.profiler.OnAlloc(addressOf(out), newSize, callerSite(1))
		}
		return out

	case newSize == 0:
		if a.profiler != nil {
			a.profiler.OnFree(addressOf(buf), len(buf), callerSite(1))
		}
		return nil
	}

	var out []byte
	if newSize <= cap(buf) {
		out = buf[:newSize]
	} else {
		out = a.allocate(newSize)
		copy(out, buf)
	}
	if a.profiler != nil {
		a.profiler.OnResize(addressOf(buf), len(buf), addressOf(out), newSize, callerSite(1))
	}
	return out
}

func (a *System) allocate(size int) []byte {
	buf := make([]byte, size+systemAlignment) // padding for 64-byte alignment
	addr := addressOf(buf)
	next := bitutil.AlignUp(addr, systemAlignment)
	if addr != next {
		shift := int(next - addr)
		return buf[shift : size+shift : size+shift]
	}
	return buf[:size:size]
}

var _ Allocator = (*System)(nil)
