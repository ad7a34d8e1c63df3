package memkit

// DefaultVM is the parent a Region uses when it is given none.
var DefaultVM Allocator = NewVM()

// VM allocates whole pages straight from the operating system. Every block
// is its own mapping, so VM suits large, long-lived blocks such as Region
// slabs. Resizing never happens in place: a new mapping is made, the
// common prefix copied and the old mapping released.
//
// Memory handed out by VM is invisible to the garbage collector; it must
// not hold the only reference to Go heap objects.
type VM struct {
	profiler Profiler
}

// NewVM returns a page-mapping allocator. Only WithProfiler is meaningful.
func NewVM(opts ...Option) *VM {
	c := newConfig(opts)
	return &VM{profiler: c.profiler}
}

// Realloc implements Allocator.
func (v *VM) Realloc(buf []byte, newSize int) []byte {
	if newSize < 0 {
		panicerr("vm: negative size %d", newSize)
	}
	if len(buf) == 0 && newSize == 0 {
		return nil
	}

	var out []byte
	if newSize > 0 {
		out = mapPages(newSize)
		copy(out, buf)
	}
	if len(buf) > 0 {
		unmapPages(buf)
	}

	if v.profiler != nil {
		site := callerSite(1)
		switch {
		case len(buf) == 0:
			v.profiler.OnAlloc(addressOf(out), newSize, site)
		case newSize == 0:
			v.profiler.OnFree(addressOf(buf), len(buf), site)
		default:
			v.profiler.OnResize(addressOf(buf), len(buf), addressOf(out), newSize, site)
		}
	}
	return out
}

// PageSize reports the granularity VM rounds mappings to.
func PageSize() int { return pageSize }

var _ Allocator = (*VM)(nil)
