// Package bitutil holds the bit-array and power-of-two helpers shared by
// the allocators.
package bitutil

import (
	"math/bits"

	"golang.org/x/exp/constraints"
)

// IsPowerOf2 reports whether v is a positive power of two.
func IsPowerOf2[T constraints.Integer](v T) bool {
	return v > 0 && v&(v-1) == 0
}

// NextPowerOf2 rounds v up to the next power of two. Values <= 1 yield 1.
func NextPowerOf2[T constraints.Integer](v T) T {
	if v <= 1 {
		return 1
	}
	return T(1) << bits.Len64(uint64(v-1))
}

// AlignUp rounds v up to a multiple of align, which must be a power of two.
func AlignUp[T constraints.Integer](v, align T) T {
	mask := align - 1
	return (v + mask) &^ mask
}

// IsAligned reports whether v is a multiple of align (a power of two).
func IsAligned[T constraints.Integer](v, align T) bool {
	return v&(align-1) == 0
}

// Bitmap is a growable bit array, one bit per slot.
type Bitmap struct {
	words []uint64
	n     int
}

// Len returns the number of addressable bits.
func (b *Bitmap) Len() int { return b.n }

// Grow extends the bitmap to n bits. New bits are clear.
func (b *Bitmap) Grow(n int) {
	if n <= b.n {
		return
	}
	need := (n + 63) >> 6
	switch {
	case need <= len(b.words):
	case need <= cap(b.words):
		b.words = b.words[:need]
	default:
		words := make([]uint64, need, need*2)
		copy(words, b.words)
		b.words = words
	}
	b.n = n
}

// Set sets bit i.
func (b *Bitmap) Set(i int) {
	b.words[i>>6] |= 1 << uint(i&63)
}

// Clear clears bit i.
func (b *Bitmap) Clear(i int) {
	b.words[i>>6] &^= 1 << uint(i&63)
}

// IsSet reports whether bit i is set.
func (b *Bitmap) IsSet(i int) bool {
	return b.words[i>>6]&(1<<uint(i&63)) != 0
}

// Count returns the number of set bits.
func (b *Bitmap) Count() int {
	n := 0
	for _, w := range b.words {
		n += bits.OnesCount64(w)
	}
	return n
}

// Reset drops every bit, keeping the backing words for reuse.
func (b *Bitmap) Reset() {
	clear(b.words)
	b.words = b.words[:0]
	b.n = 0
}
