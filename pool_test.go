package memkit

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPool(t *testing.T) {
	ptrSize := int(unsafe.Sizeof(uintptr(0)))

	tests := []struct {
		name     string
		size     int
		opts     []Option
		wantSize int
		perChunk int
	}{
		{"pointer sized", ptrSize, nil, ptrSize, ChunkSize / ptrSize},
		{"rounded up", ptrSize + 1, nil, 2 * ptrSize, ChunkSize / (2 * ptrSize)},
		{"small chunks", 16, []Option{WithChunkSize(64)}, 16, 4},
		{"object larger than chunk", 100, []Option{WithChunkSize(64)}, bitAlign(100, ptrSize), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPool(tt.size, nil, tt.opts...)
			defer p.Destroy()
			assert.Equal(t, tt.wantSize, p.ObjectSize())
			assert.Equal(t, tt.perChunk, p.perChunk)
			assert.Same(t, DefaultAllocator, p.parent)
		})
	}

	assert.Panics(t, func() { NewPool(0, nil) })
	assert.Panics(t, func() { NewPool(-8, nil) })
}

func bitAlign(v, a int) int { return (v + a - 1) / a * a }

func TestPoolReusesFreedSlot(t *testing.T) {
	p := NewPool(16, nil)
	defer p.Destroy()

	a := Alloc(p, 16)
	b := Alloc(p, 16)
	c := Alloc(p, 16)
	require.Len(t, b, 16)

	Free(p, b)
	d := Alloc(p, 16)
	assert.Equal(t, addressOf(b), addressOf(d))
	assert.NotEqual(t, addressOf(a), addressOf(d))
	assert.NotEqual(t, addressOf(c), addressOf(d))
	assert.Equal(t, 3, p.Used())
}

func TestPoolFreeListIsLIFO(t *testing.T) {
	p := NewPool(32, nil)
	defer p.Destroy()

	objs := make([][]byte, 4)
	for i := range objs {
		objs[i] = p.Get()
	}
	p.Put(objs[0])
	p.Put(objs[2])

	assert.Equal(t, addressOf(objs[2]), addressOf(p.Get()))
	assert.Equal(t, addressOf(objs[0]), addressOf(p.Get()))

	// Free list drained: the next object is fresh
	fresh := p.Get()
	for _, o := range objs {
		assert.NotEqual(t, addressOf(o), addressOf(fresh))
	}
}

func TestPoolGrowth(t *testing.T) {
	mem := NewCheckedAllocator(nil)
	p := NewPool(16, mem, WithChunkSize(64))
	defer p.Destroy()

	var objs [][]byte
	for i := 0; i < 10; i++ {
		o := p.Get()
		fill(o, byte(i))
		objs = append(objs, o)
	}

	assert.Equal(t, 10, p.Used())
	assert.Equal(t, 12, p.Cap())
	assert.Equal(t, 3*64, mem.CurrentAlloc())
	assert.Len(t, p.chunks, 4, "chunk table doubles")
	assertDisjoint(t, objs)
	for i, o := range objs {
		assert.True(t, allEqual(o, byte(i)), "object %d was overwritten", i)
	}
}

func TestPoolRealloc(t *testing.T) {
	p := NewPool(24, nil)
	defer p.Destroy()

	assert.Nil(t, p.Realloc(nil, 0))

	b := p.Realloc(nil, 10)
	assert.Len(t, b, 10)
	assert.Equal(t, p.ObjectSize(), cap(b))

	assert.Panics(t, func() { p.Realloc(b, 20) }, "resize")
	assert.Panics(t, func() { p.Realloc(nil, p.ObjectSize()+1) }, "oversize request")

	assert.Nil(t, p.Realloc(b, 0))
	assert.Zero(t, p.Used())
}

func TestPoolInvalidFrees(t *testing.T) {
	p := NewPool(16, nil)
	defer p.Destroy()

	obj := p.Get()
	p.Get()

	tests := []struct {
		name string
		buf  []byte
	}{
		{"foreign pointer", make([]byte, 16)},
		{"interior pointer", obj[1:]},
		{"empty buffer", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Panics(t, func() { p.Put(tt.buf) })
		})
	}

	t.Run("double free", func(t *testing.T) {
		p.Put(obj)
		assert.Panics(t, func() { p.Put(obj) })
	})
}

func TestPoolClear(t *testing.T) {
	mem := NewCheckedAllocator(nil)
	p := NewPool(16, mem, WithChunkSize(64))
	defer p.Destroy()

	for i := 0; i < 9; i++ {
		p.Get()
	}
	table := len(p.chunks)
	p.Clear()

	mem.AssertSize(t, 0)
	assert.Zero(t, p.Used())
	assert.Zero(t, p.Cap())
	assert.Len(t, p.chunks, table, "table is kept")

	// Usable again, and freed slots are not handed out twice
	a, b := p.Get(), p.Get()
	assert.NotEqual(t, addressOf(a), addressOf(b))
	assert.Equal(t, 64, mem.CurrentAlloc())
}

func TestPoolDestroy(t *testing.T) {
	logger, logs := testLogger()
	mem := NewCheckedAllocator(nil)
	p := NewPool(16, mem, WithLogger(logger))
	p.Get()
	p.Get()

	p.Destroy()
	mem.AssertSize(t, 0)
	assert.Contains(t, logs.String(), "pool destroyed with live objects")
	assert.Contains(t, logs.String(), `"live":2`)
	assert.Contains(t, logs.String(), `"allocator":"pool"`)

	assert.NotPanics(t, p.Destroy)
	assert.PanicsWithValue(t, "pool: use after Destroy()", func() { p.Get() })
	assert.PanicsWithValue(t, "pool: use after Destroy()", p.Clear)
}

func TestPoolDestroyQuietWhenEmpty(t *testing.T) {
	logger, logs := testLogger()
	p := NewPool(16, nil, WithLogger(logger))
	p.Put(p.Get())
	p.Destroy()
	assert.Empty(t, logs.String())
}

func BenchmarkPoolGetPut(b *testing.B) {
	p := NewPool(64, nil)
	defer p.Destroy()
	objs := make([][]byte, 100)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for j := range objs {
			objs[j] = p.Get()
		}
		for j := range objs {
			p.Put(objs[j])
		}
	}
}
