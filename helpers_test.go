package memkit

import (
	"bytes"
	"log/slog"
	"sort"
	"sync"
	"testing"
)

type event struct {
	kind    string
	addr    uintptr
	size    int
	oldSize int
	site    Site
}

// recorder is a Profiler that keeps every event it sees.
type recorder struct {
	mu     sync.Mutex
	events []event
}

func (r *recorder) OnAlloc(addr uintptr, size int, site Site) {
	r.add(event{kind: "alloc", addr: addr, size: size, site: site})
}

func (r *recorder) OnFree(addr uintptr, size int, site Site) {
	r.add(event{kind: "free", addr: addr, size: size, site: site})
}

func (r *recorder) OnResize(oldAddr uintptr, oldSize int, newAddr uintptr, newSize int, site Site) {
	r.add(event{kind: "resize", addr: newAddr, size: newSize, oldSize: oldSize, site: site})
}

func (r *recorder) add(e event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) kinds() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.kind
	}
	return out
}

// testLogger returns a logger writing JSON records into the returned buffer.
func testLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})), &buf
}

// assertDisjoint fails if any two blocks share a byte.
func assertDisjoint(t *testing.T, blocks [][]byte) {
	t.Helper()
	type span struct{ lo, hi uintptr }
	spans := make([]span, 0, len(blocks))
	for _, b := range blocks {
		if len(b) == 0 {
			continue
		}
		lo := addressOf(b)
		spans = append(spans, span{lo, lo + uintptr(len(b))})
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].lo < spans[j].lo })
	for i := 1; i < len(spans); i++ {
		if spans[i].lo < spans[i-1].hi {
			t.Errorf("blocks overlap: [%#x,%#x) and [%#x,%#x)",
				spans[i-1].lo, spans[i-1].hi, spans[i].lo, spans[i].hi)
		}
	}
}

func fill(b []byte, v byte) {
	for i := range b {
		b[i] = v
	}
}

func allEqual(b []byte, v byte) bool {
	for _, c := range b {
		if c != v {
			return false
		}
	}
	return true
}
