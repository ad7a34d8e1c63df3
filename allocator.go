package memkit

import (
	"fmt"
	"runtime"
	"unsafe"
)

// Allocator is the capability every strategy in this package implements.
//
// A single operation covers allocate, resize and free, selected by the old
// size (len(buf)) and the new size:
//
//	len(buf) == 0, newSize > 0  allocate a block of newSize bytes
//	len(buf) > 0,  newSize == 0 free buf, the result is nil
//	len(buf) > 0,  newSize > 0  resize, keeping min(old, new) bytes
//	len(buf) == 0, newSize == 0 no-op
//
// Strategies may reject a combination (Pool cannot resize, Region cannot
// free); a rejected combination panics. Freshly allocated memory is not
// guaranteed to be zeroed. Callers own the size bookkeeping: buf must be
// passed back with the length it was allocated with.
type Allocator interface {
	Realloc(buf []byte, newSize int) []byte
}

// Aligner is implemented by allocators that take an explicit alignment.
type Aligner interface {
	AllocAligned(n, align int) []byte
}

// Alloc allocates n bytes from a.
func Alloc(a Allocator, n int) []byte {
	if n <= 0 {
		return nil
	}
	return a.Realloc(nil, n)
}

// Free returns buf to a. Empty buffers are ignored.
func Free(a Allocator, buf []byte) {
	if len(buf) == 0 {
		return
	}
	a.Realloc(buf, 0)
}

// Resize grows or shrinks buf to n bytes.
func Resize(a Allocator, buf []byte, n int) []byte {
	return a.Realloc(buf, n)
}

// Site identifies the code that issued an allocator request.
type Site struct {
	PC   uintptr
	File string
	Line int
}

func (s Site) String() string {
	if s.PC == 0 {
		return "unknown"
	}
	name := "?"
	if fn := runtime.FuncForPC(s.PC); fn != nil {
		name = fn.Name()
	}
	return fmt.Sprintf("%s (%s:%d)", name, s.File, s.Line)
}

func callerSite(skip int) Site {
	pc, file, line, ok := runtime.Caller(skip + 1)
	if !ok {
		return Site{}
	}
	return Site{PC: pc, File: file, Line: line}
}

// Profiler observes allocator traffic. Implementations must not change
// allocator behaviour; allocators work identically without one.
type Profiler interface {
	OnAlloc(addr uintptr, size int, site Site)
	OnFree(addr uintptr, size int, site Site)
	OnResize(oldAddr uintptr, oldSize int, newAddr uintptr, newSize int, site Site)
}

// resolve picks the default parent when none was supplied.
func resolve(parent, def Allocator) Allocator {
	if parent == nil {
		return def
	}
	return parent
}

func addressOf(b []byte) uintptr {
	if cap(b) == 0 {
		return 0
	}
	return uintptr(unsafe.Pointer(unsafe.SliceData(b)))
}

func panicerr(fmsg string, args ...interface{}) {
	panic(fmt.Errorf(fmsg, args...))
}
