package memkit

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSystemAlignment(t *testing.T) {
	a := NewSystem()
	for _, n := range []int{1, 3, 63, 64, 65, 1000, 4096} {
		t.Run(fmt.Sprintf("size-%d", n), func(t *testing.T) {
			b := a.Realloc(nil, n)
			require.Len(t, b, n)
			assert.Equal(t, n, cap(b))
			assert.Zero(t, addressOf(b)%systemAlignment)
		})
	}
}

func TestSystemRealloc(t *testing.T) {
	a := NewSystem()

	assert.Nil(t, a.Realloc(nil, 0))
	assert.Panics(t, func() { a.Realloc(nil, -1) })

	b := a.Realloc(nil, 100)
	fill(b, 9)

	shrunk := a.Realloc(b, 40)
	assert.Equal(t, addressOf(b), addressOf(shrunk), "shrink stays in place")
	assert.Len(t, shrunk, 40)

	grown := a.Realloc(shrunk, 500)
	require.Len(t, grown, 500)
	assert.True(t, allEqual(grown[:40], 9), "prefix preserved")
	assert.Zero(t, addressOf(grown)%systemAlignment)

	assert.Nil(t, a.Realloc(grown, 0))
}

func TestSystemProfiler(t *testing.T) {
	rec := &recorder{}
	a := NewSystem(WithProfiler(rec))

	b := a.Realloc(nil, 32)
	b = a.Realloc(b, 64)
	a.Realloc(b, 0)
	a.Realloc(nil, 0)

	require.Equal(t, []string{"alloc", "resize", "free"}, rec.kinds())
	assert.Equal(t, 32, rec.events[0].size)
	assert.Equal(t, 32, rec.events[1].oldSize)
	assert.Equal(t, 64, rec.events[1].size)
	assert.Equal(t, 64, rec.events[2].size)

	for _, e := range rec.events {
		assert.True(t, strings.HasSuffix(e.site.File, "system_test.go"), "site %s", e.site)
		assert.Contains(t, e.site.String(), "TestSystemProfiler")
	}
}

func TestDefaultAllocator(t *testing.T) {
	_, ok := DefaultAllocator.(*System)
	assert.True(t, ok)

	b := Alloc(DefaultAllocator, 10)
	assert.Len(t, b, 10)
	Free(DefaultAllocator, b)
}
