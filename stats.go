package memkit

import (
	"fmt"
	"sync/atomic"

	"github.com/dustin/go-humanize"
	"github.com/goccy/go-json"
)

// Stats is a Profiler that keeps running totals of the traffic it sees.
// Attach it with WithProfiler. Stats is safe for concurrent use.
type Stats struct {
	allocs      atomic.Int64
	frees       atomic.Int64
	resizes     atomic.Int64
	outstanding atomic.Int64
	peak        atomic.Int64
	total       atomic.Int64
}

// StatsSnapshot is a point-in-time copy of Stats.
type StatsSnapshot struct {
	Allocs      int64 `json:"allocs"`
	Frees       int64 `json:"frees"`
	Resizes     int64 `json:"resizes"`
	Outstanding int64 `json:"outstanding_bytes"`
	Peak        int64 `json:"peak_bytes"`
	Total       int64 `json:"total_bytes"`
}

// OnAlloc implements Profiler.
func (s *Stats) OnAlloc(addr uintptr, size int, site Site) {
	s.allocs.Add(1)
	s.total.Add(int64(size))
	s.grow(int64(size))
}

// OnFree implements Profiler.
func (s *Stats) OnFree(addr uintptr, size int, site Site) {
	s.frees.Add(1)
	s.outstanding.Add(-int64(size))
}

// OnResize implements Profiler.
func (s *Stats) OnResize(oldAddr uintptr, oldSize int, newAddr uintptr, newSize int, site Site) {
	s.resizes.Add(1)
	if delta := int64(newSize - oldSize); delta > 0 {
		s.total.Add(delta)
		s.grow(delta)
	} else {
		s.outstanding.Add(delta)
	}
}

func (s *Stats) grow(delta int64) {
	cur := s.outstanding.Add(delta)
	for {
		peak := s.peak.Load()
		if cur <= peak || s.peak.CompareAndSwap(peak, cur) {
			return
		}
	}
}

// Snapshot copies the current counters.
func (s *Stats) Snapshot() StatsSnapshot {
	return StatsSnapshot{
		Allocs:      s.allocs.Load(),
		Frees:       s.frees.Load(),
		Resizes:     s.resizes.Load(),
		Outstanding: s.outstanding.Load(),
		Peak:        s.peak.Load(),
		Total:       s.total.Load(),
	}
}

// MarshalJSON encodes a snapshot of the counters.
func (s *Stats) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Snapshot())
}

func (s *Stats) String() string {
	snap := s.Snapshot()
	return fmt.Sprintf("allocs=%d frees=%d resizes=%d outstanding=%s peak=%s total=%s",
		snap.Allocs, snap.Frees, snap.Resizes,
		humanBytes(snap.Outstanding), humanBytes(snap.Peak), humanBytes(snap.Total))
}

func humanBytes(n int64) string {
	if n < 0 {
		return "-" + humanize.IBytes(uint64(-n))
	}
	return humanize.IBytes(uint64(n))
}

var _ Profiler = (*Stats)(nil)
