package memkit

import (
	"runtime"
	"unsafe"
)

// New returns a pointer to a zeroed T stored in memory obtained from a.
// The pointer stays valid until the memory is returned to a (FreeObject,
// Region.Clear, Scratch.Close and so on).
//
// Allocator memory is invisible to the garbage collector: T must not hold
// the only reference to a Go heap object.
func New[T any](a Allocator) *T {
	p := NewUninitialized[T](a)
	*p = *new(T)
	return p
}

// NewUninitialized returns a *T in memory obtained from a without zeroing
// it. This is faster than New but the contents are undefined.
func NewUninitialized[T any](a Allocator) *T {
	var zero T
	size := int(unsafe.Sizeof(zero))
	if size == 0 {
		return new(T)
	}
	b := allocFor(a, size, int(unsafe.Alignof(zero)))
	return (*T)(unsafe.Pointer(unsafe.SliceData(b)))
}

// MakeSlice allocates a slice of n elements of type T from a.
// The elements are not initialized. Returns nil if n <= 0.
func MakeSlice[T any](a Allocator, n int) []T {
	if n <= 0 {
		return nil
	}
	var zero T
	elemSize := int(unsafe.Sizeof(zero))
	if elemSize == 0 {
		return make([]T, n)
	}
	b := allocFor(a, elemSize*n, int(unsafe.Alignof(zero)))
	return unsafe.Slice((*T)(unsafe.Pointer(unsafe.SliceData(b))), n)
}

// MakeSliceZeroed allocates a slice of n zeroed elements of type T from a.
func MakeSliceZeroed[T any](a Allocator, n int) []T {
	s := MakeSlice[T](a, n)
	clear(s)
	return s
}

// FreeObject returns the memory behind p to a. p must have come from New
// or NewUninitialized on the same allocator.
func FreeObject[T any](a Allocator, p *T) {
	size := int(unsafe.Sizeof(*p))
	if p == nil || size == 0 {
		return
	}
	a.Realloc(unsafe.Slice((*byte)(unsafe.Pointer(p)), size), 0)
}

// FreeSlice returns the memory behind s to a. s must have the length it was
// allocated with by MakeSlice or MakeSliceZeroed on the same allocator.
func FreeSlice[T any](a Allocator, s []T) {
	var zero T
	size := int(unsafe.Sizeof(zero)) * len(s)
	if size == 0 {
		return
	}
	a.Realloc(unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(s))), size), 0)
}

// KeepAlive returns t and calls runtime.KeepAlive on a.
// This keeps an allocator that owns the memory behind t reachable while the
// pointer is still in use in unsafe code.
func KeepAlive[T any](a Allocator, t *T) *T {
	runtime.KeepAlive(a)
	return t
}

// allocFor honours the type's alignment when the allocator can.
func allocFor(a Allocator, size, align int) []byte {
	if al, ok := a.(Aligner); ok {
		return al.AllocAligned(size, align)
	}
	return a.Realloc(nil, size)
}
