package memkit

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// SizeInUse returns the number of bytes handed out by the region, including
// alignment padding.
func (r *Region) SizeInUse() int {
	sum := 0
	for s := r.top.Load(); s != nil; s = s.next {
		sum += int(s.head)
	}
	return sum
}

// NumSlabs returns the number of slabs currently held by the region.
func (r *Region) NumSlabs() int {
	n := 0
	for s := r.top.Load(); s != nil; s = s.next {
		n++
	}
	return n
}

// Capacity returns the total size of all slabs in bytes.
func (r *Region) Capacity() int {
	sum := 0
	for s := r.top.Load(); s != nil; s = s.next {
		sum += len(s.buf)
	}
	return sum
}

// Utilization returns the ratio of bytes in use to total capacity (0.0 to 1.0).
// Returns 0.0 if the region holds no slabs.
func (r *Region) Utilization() float64 {
	return utilization(r.SizeInUse(), r.Capacity())
}

// MinSlabSize returns the smallest slab the region requests.
func (r *Region) MinSlabSize() int {
	return r.minSlab
}

// Metrics returns a snapshot of region statistics.
func (r *Region) Metrics() RegionMetrics {
	return RegionMetrics{
		SizeInUse:   r.SizeInUse(),
		Capacity:    r.Capacity(),
		NumSlabs:    r.NumSlabs(),
		MinSlabSize: r.MinSlabSize(),
		Utilization: r.Utilization(),
	}
}

// RegionMetrics contains statistical information about a region.
type RegionMetrics struct {
	SizeInUse   int     `json:"size_in_use"`   // Bytes currently allocated
	Capacity    int     `json:"capacity"`      // Total slab bytes
	NumSlabs    int     `json:"num_slabs"`     // Number of slabs
	MinSlabSize int     `json:"min_slab_size"` // Slab size floor
	Utilization float64 `json:"utilization"`   // Ratio of used to total capacity (0.0-1.0)
}

func (m RegionMetrics) String() string {
	return fmt.Sprintf("region: %s of %s in %d slabs (%.1f%%)",
		humanize.IBytes(uint64(m.SizeInUse)), humanize.IBytes(uint64(m.Capacity)),
		m.NumSlabs, m.Utilization*100)
}

// Metrics returns a snapshot of pool statistics.
func (p *Pool) Metrics() PoolMetrics {
	capacity := (p.index + 1) * p.chunkBytes()
	return PoolMetrics{
		ObjectSize:  p.objSize,
		Used:        p.used,
		Slots:       p.cap,
		NumChunks:   p.index + 1,
		Capacity:    capacity,
		Utilization: utilization(p.used*p.objSize, capacity),
	}
}

// PoolMetrics contains statistical information about a pool.
type PoolMetrics struct {
	ObjectSize  int     `json:"object_size"`
	Used        int     `json:"used"`       // Live objects
	Slots       int     `json:"slots"`      // Objects that fit in allocated chunks
	NumChunks   int     `json:"num_chunks"` // Chunks held from the parent
	Capacity    int     `json:"capacity"`   // Chunk bytes held from the parent
	Utilization float64 `json:"utilization"`
}

func (m PoolMetrics) String() string {
	return fmt.Sprintf("pool: %d/%d objects of %s in %d chunks (%s, %.1f%%)",
		m.Used, m.Slots, humanize.IBytes(uint64(m.ObjectSize)),
		m.NumChunks, humanize.IBytes(uint64(m.Capacity)), m.Utilization*100)
}

// Metrics returns a snapshot of slab statistics.
func (s *ResourceSlab) Metrics() SlabMetrics {
	capacity := len(s.chunks) * s.chunkBytes()
	return SlabMetrics{
		Type:        s.typ,
		ObjectSize:  s.objSize,
		Live:        s.live,
		Slots:       len(s.entries),
		NumChunks:   len(s.chunks),
		Capacity:    capacity,
		Utilization: utilization(s.live*s.objSize, capacity),
	}
}

// SlabMetrics contains statistical information about a resource slab.
type SlabMetrics struct {
	Type        uint32  `json:"type"`
	ObjectSize  int     `json:"object_size"`
	Live        int     `json:"live"`
	Slots       int     `json:"slots"`
	NumChunks   int     `json:"num_chunks"`
	Capacity    int     `json:"capacity"`
	Utilization float64 `json:"utilization"`
}

func (m SlabMetrics) String() string {
	return fmt.Sprintf("slab(type=%d): %d/%d objects of %s in %d chunks (%s, %.1f%%)",
		m.Type, m.Live, m.Slots, humanize.IBytes(uint64(m.ObjectSize)),
		m.NumChunks, humanize.IBytes(uint64(m.Capacity)), m.Utilization*100)
}

func utilization(used, capacity int) float64 {
	if capacity == 0 {
		return 0
	}
	return float64(used) / float64(capacity)
}

// Thread-safe metrics for SafeRegion

// SizeInUse thread-safely returns the number of bytes handed out.
func (s *SafeRegion) SizeInUse() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.SizeInUse()
}

// NumSlabs thread-safely returns the number of slabs.
func (s *SafeRegion) NumSlabs() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.NumSlabs()
}

// Capacity thread-safely returns the total size of all slabs.
func (s *SafeRegion) Capacity() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.Capacity()
}

// Utilization thread-safely returns the ratio of bytes in use to capacity.
func (s *SafeRegion) Utilization() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.Utilization()
}

// Metrics thread-safely returns a snapshot of region statistics.
func (s *SafeRegion) Metrics() RegionMetrics {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.Metrics()
}
