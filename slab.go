package memkit

import (
	"fmt"
	"log/slog"
	"sync/atomic"
	"unsafe"

	"golang.org/x/xerrors"

	"github.com/pavanmanishd/memkit/internal/bitutil"
	"github.com/pavanmanishd/memkit/internal/debug"
)

// Handle is a stable reference to an object in a ResourceSlab. A handle
// stays valid until the object is freed; after that it is rejected even
// if the slot has been reused. The zero Handle is never valid.
type Handle struct {
	Index uint32
	Gen   uint32
	Type  uint32
}

// IsZero reports whether h is the zero Handle.
func (h Handle) IsZero() bool { return h == Handle{} }

// Registry issues the type tags that distinguish slabs from one another.
// A Registry is safe for concurrent use; its zero value is ready.
type Registry struct {
	last atomic.Uint32
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry { return &Registry{} }

// Next returns a type tag never returned before by this registry. Tags
// start at 1.
func (r *Registry) Next() uint32 { return r.last.Add(1) }

// ResourceSlab stores fixed-size objects addressed by generational
// handles. Freeing an object bumps its slot's generation, so stale
// handles are detected instead of aliasing the slot's next occupant.
//
// ResourceSlab is not safe for concurrent use.
type ResourceSlab struct {
	parent   Allocator
	logger   *slog.Logger
	typ      uint32
	objSize  int
	perChunk int

	chunks  [][]byte
	entries []uint32 // current generation per slot
	free    []uint32 // free slot indices, next to hand out on top
	live    int

	destroyed bool
}

// NewResourceSlab creates a slab of objectSize-byte objects, tagged with a
// fresh type from reg. A nil reg uses a private registry. A nil parent
// selects DefaultAllocator. WithChunkSize and WithLogger apply.
func NewResourceSlab(reg *Registry, objectSize int, parent Allocator, opts ...Option) *ResourceSlab {
	if objectSize <= 0 {
		panicerr("slab: invalid object size %d", objectSize)
	}
	if reg == nil {
		reg = NewRegistry()
	}
	c := newConfig(opts)
	objSize := bitutil.AlignUp(objectSize, int(unsafe.Sizeof(uintptr(0))))
	perChunk := c.chunkSize / objSize
	if perChunk == 0 {
		perChunk = 1
	}
	typ := reg.Next()
	return &ResourceSlab{
		parent:   resolve(parent, DefaultAllocator),
		logger:   componentLogger(c.logger, "slab").With(slog.Uint64("type", uint64(typ))),
		typ:      typ,
		objSize:  objSize,
		perChunk: perChunk,
	}
}

// Alloc reserves a zeroed object and returns its handle.
func (s *ResourceSlab) Alloc() Handle {
	s.panicIfDestroyed()
	if len(s.free) == 0 {
		s.grow()
	}
	n := len(s.free) - 1
	idx := s.free[n]
	s.free = s.free[:n]
	s.live++
	clear(s.slot(idx))
	return Handle{Index: idx, Gen: s.entries[idx], Type: s.typ}
}

// Get returns the object h refers to. Stale or out-of-range handles yield
// an error wrapping ErrNotFound; handles from another slab yield one
// wrapping ErrWrongType.
func (s *ResourceSlab) Get(h Handle) ([]byte, error) {
	s.panicIfDestroyed()
	if err := s.validate(h, "get"); err != nil {
		return nil, err
	}
	return s.slot(h.Index), nil
}

// Free releases the object h refers to and invalidates every handle to it.
func (s *ResourceSlab) Free(h Handle) error {
	s.panicIfDestroyed()
	if err := s.validate(h, "free"); err != nil {
		return err
	}
	gen := s.entries[h.Index] + 1
	if gen == 0 {
		gen = 1
	}
	s.entries[h.Index] = gen
	s.free = append(s.free, h.Index)
	s.live--
	return nil
}

// Destroy returns all storage to the parent. Live objects are reported as
// a warning. Any further use panics.
func (s *ResourceSlab) Destroy() {
	if s.destroyed {
		return
	}
	if s.live > 0 {
		s.logger.Warn("slab destroyed with live handles",
			slog.Int("live", s.live), slog.Int("object_size", s.objSize))
	}
	chunkBytes := s.chunkBytes()
	for i, c := range s.chunks {
		s.parent.Realloc(c[:chunkBytes], 0)
		s.chunks[i] = nil
	}
	s.chunks, s.entries, s.free = nil, nil, nil
	s.live = 0
	s.destroyed = true
}

// Type returns the tag carried by every handle this slab issues.
func (s *ResourceSlab) Type() uint32 { return s.typ }

// ObjectSize returns the rounded size of every object.
func (s *ResourceSlab) ObjectSize() int { return s.objSize }

// Len returns the number of live objects.
func (s *ResourceSlab) Len() int { return s.live }

// Cap returns the number of slots in allocated chunks.
func (s *ResourceSlab) Cap() int { return len(s.entries) }

func (s *ResourceSlab) validate(h Handle, op string) error {
	var err error
	switch {
	case h.Type != s.typ:
		err = xerrors.Errorf("slab %s: handle of type %d: %w", op, h.Type, ErrWrongType)
	case int(h.Index) >= len(s.entries) || s.entries[h.Index] != h.Gen:
		err = xerrors.Errorf("slab %s: handle {index %d, gen %d}: %w", op, h.Index, h.Gen, ErrNotFound)
	default:
		return nil
	}
	s.logger.Error("invalid handle", slog.String("op", op),
		slog.Uint64("index", uint64(h.Index)), slog.Uint64("gen", uint64(h.Gen)),
		slog.Uint64("handle_type", uint64(h.Type)), slog.Any("err", err))
	return err
}

// grow adds one chunk, extending entries and the free stack in lockstep.
// Indices are pushed in reverse so the lowest one is handed out first.
func (s *ResourceSlab) grow() {
	s.chunks = append(s.chunks, s.parent.Realloc(nil, s.chunkBytes()))
	first := len(s.entries)
	last := first + s.perChunk
	for i := first; i < last; i++ {
		s.entries = append(s.entries, 1)
	}
	for i := last - 1; i >= first; i-- {
		s.free = append(s.free, uint32(i))
	}
	debug.Log(func() string { return fmt.Sprintf("slab %d: grew to %d slots", s.typ, last) })
}

func (s *ResourceSlab) slot(idx uint32) []byte {
	chunk := s.chunks[int(idx)/s.perChunk]
	off := (int(idx) % s.perChunk) * s.objSize
	return chunk[off : off+s.objSize : off+s.objSize]
}

func (s *ResourceSlab) chunkBytes() int { return s.perChunk * s.objSize }

func (s *ResourceSlab) panicIfDestroyed() {
	if s.destroyed {
		panic("slab: use after Destroy()")
	}
}
