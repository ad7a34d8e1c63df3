// Package memkit implements special-purpose memory allocators and a
// lock-free bounded queue for Go.
//
// # Overview
//
// Every allocator implements one capability, Allocator, whose single
// Realloc operation allocates, resizes or frees depending on the old size
// (len(buf)) and the new size. Call sites are written against the
// interface and never depend on which strategy backs it:
//
//   - System allocates from the Go heap (64-byte aligned).
//   - VM maps pages straight from the operating system.
//   - Pool hands out objects of one fixed size with O(1) reuse.
//   - Region bump-allocates over a stack of slabs, released in bulk.
//   - Scratch is a task-scoped bump allocator with an inline buffer.
//
// Every allocator except System and VM takes a parent to draw its backing
// memory from. A nil parent selects DefaultAllocator, or DefaultVM for a
// Region.
//
// # Basic Usage
//
//	r := memkit.NewRegion(nil)
//	defer r.Destroy()
//
//	// Allocate raw bytes
//	buf := r.Alloc(1024)
//
//	// Allocate typed values from any allocator
//	p := memkit.New[Vertex](r)
//	s := memkit.MakeSlice[float32](r, 100)
//
//	// Drop everything but the newest slab
//	r.Reset()
//
// Short-lived work can use a scratch allocator that is always closed:
//
//	memkit.WithScratch(nil, func(s *memkit.Scratch) {
//		tmp := s.Alloc(256)
//		...
//	})
//
// # Handles
//
// ResourceSlab stores fixed-size objects addressed by generational
// Handles. Freeing an object invalidates every outstanding handle to it,
// so a stale handle is reported as ErrNotFound instead of aliasing the
// slot's next occupant.
//
// # Thread Safety
//
// Pool, Region, Scratch and ResourceSlab are owned by one goroutine at a
// time. SafeRegion wraps a Region with a mutex. Queue is safe for any
// number of concurrent producers and consumers and never blocks. System,
// VM, CheckedAllocator, Stats and Registry are safe for concurrent use.
//
// # Important Notes
//
//   - Memory from these allocators is invisible to the garbage collector;
//     it must not hold the only reference to a Go heap object.
//   - Callers own the size bookkeeping: a block must be freed or resized
//     with the length it was allocated with.
//   - Contract violations (double free, freeing into a Region, use after
//     Destroy) panic.
//   - Build with -tags assert to enable internal invariant checks.
package memkit
