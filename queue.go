package memkit

import (
	"sync/atomic"

	"golang.org/x/sys/cpu"

	"github.com/pavanmanishd/memkit/internal/bitutil"
)

type cell[T any] struct {
	seq atomic.Uint64
	val T
}

// Queue is a bounded multi-producer multi-consumer ring buffer. Put and Get
// never block and never take a lock: a full queue rejects Put and an empty
// one rejects Get. Any number of goroutines may call Put and Get at once.
//
// Each cell carries a sequence number telling which lap of which cursor
// owns it:
//
//	seq == pos        free, the producer at pos may claim it
//	seq == pos+1      filled, the consumer at pos may claim it
//	seq == pos+cap    drained, free for the producer on the next lap
//
// The ring is an ordinary Go slice rather than memory from an Allocator:
// T may hold pointers, and values parked in the ring must stay visible to
// the garbage collector. For the same reason Get clears the cell it drains.
type Queue[T any] struct {
	_      cpu.CacheLinePad
	enq    atomic.Uint64
	_      cpu.CacheLinePad
	deq    atomic.Uint64
	_      cpu.CacheLinePad
	mask   uint64
	cells  []cell[T]
	closed atomic.Bool
}

// NewQueue returns an empty queue holding up to capacity items. capacity
// must be a power of two and at least 2.
func NewQueue[T any](capacity int) *Queue[T] {
	if capacity < 2 || !bitutil.IsPowerOf2(capacity) {
		panicerr("queue: capacity %d is not a power of two >= 2", capacity)
	}
	q := &Queue[T]{
		mask:  uint64(capacity - 1),
		cells: make([]cell[T], capacity),
	}
	for i := range q.cells {
		q.cells[i].seq.Store(uint64(i))
	}
	return q
}

// Put appends v. It reports false if the queue is full.
func (q *Queue[T]) Put(v T) bool {
	q.panicIfDestroyed()
	pos := q.enq.Load()
	for {
		c := &q.cells[pos&q.mask]
		seq := c.seq.Load()
		switch diff := int64(seq) - int64(pos); {
		case diff == 0:
			if q.enq.CompareAndSwap(pos, pos+1) {
				c.val = v
				c.seq.Store(pos + 1)
				return true
			}
			pos = q.enq.Load()
		case diff < 0:
			return false
		default:
			pos = q.enq.Load()
		}
	}
}

// Get removes the oldest item. It reports false if the queue is empty.
func (q *Queue[T]) Get() (T, bool) {
	q.panicIfDestroyed()
	var zero T
	pos := q.deq.Load()
	for {
		c := &q.cells[pos&q.mask]
		seq := c.seq.Load()
		switch diff := int64(seq) - int64(pos+1); {
		case diff == 0:
			if q.deq.CompareAndSwap(pos, pos+1) {
				v := c.val
				c.val = zero
				c.seq.Store(pos + q.mask + 1)
				return v, true
			}
			pos = q.deq.Load()
		case diff < 0:
			return zero, false
		default:
			pos = q.deq.Load()
		}
	}
}

// Cap returns the capacity given to NewQueue.
func (q *Queue[T]) Cap() int { return len(q.cells) }

// Len returns the number of queued items. Under contention the value is
// only a snapshot.
func (q *Queue[T]) Len() int {
	for {
		deq := q.deq.Load()
		enq := q.enq.Load()
		if q.deq.Load() == deq {
			if n := int(enq - deq); n >= 0 {
				return min(n, len(q.cells))
			}
			return 0
		}
	}
}

// Destroy drops the ring. Calling Put or Get afterwards panics. Destroy
// must not race with Put or Get.
func (q *Queue[T]) Destroy() {
	if q.closed.Swap(true) {
		return
	}
	q.cells = nil
}

func (q *Queue[T]) panicIfDestroyed() {
	if q.closed.Load() {
		panic("queue: use after Destroy()")
	}
}
