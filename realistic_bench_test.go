package memkit

import (
	"runtime"
	"testing"
)

// BenchmarkRealisticUsage tests scenarios where each strategy should excel
func BenchmarkRealisticUsage(b *testing.B) {

	// Test 1: Many small allocations with periodic cleanup
	b.Run("ManySmallAllocs/Region", func(b *testing.B) {
		r := NewRegion(nil)
		defer r.Destroy()
		b.ResetTimer()

		for i := 0; i < b.N; i++ {
			for j := 0; j < 100; j++ {
				r.Alloc(64)
			}
			// Simulates request cleanup
			r.Reset()
		}
	})

	b.Run("ManySmallAllocs/Scratch", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			WithScratch(nil, func(s *Scratch) {
				for j := 0; j < 100; j++ {
					s.Alloc(64)
				}
			})
		}
	})

	b.Run("ManySmallAllocs/Builtin", func(b *testing.B) {
		b.ResetTimer()

		for i := 0; i < b.N; i++ {
			objects := make([][]byte, 100)
			for j := 0; j < 100; j++ {
				objects[j] = make([]byte, 64)
			}
			if i%10 == 0 {
				runtime.GC()
			}
		}
	})

	// Test 2: Struct allocation patterns
	type testStruct struct {
		ID   int64
		Data [56]byte // Total 64 bytes
	}

	b.Run("StructAllocs/Region", func(b *testing.B) {
		r := NewRegion(nil)
		defer r.Destroy()
		b.ResetTimer()

		for i := 0; i < b.N; i++ {
			for j := 0; j < 50; j++ {
				s := New[testStruct](r)
				s.ID = int64(j)
			}
			r.Reset()
		}
	})

	b.Run("StructAllocs/Pool", func(b *testing.B) {
		p := NewPool(64, nil)
		defer p.Destroy()
		structs := make([]*testStruct, 50)
		b.ResetTimer()

		for i := 0; i < b.N; i++ {
			for j := range structs {
				structs[j] = New[testStruct](p)
				structs[j].ID = int64(j)
			}
			for _, s := range structs {
				FreeObject(p, s)
			}
		}
	})

	b.Run("StructAllocs/Slab", func(b *testing.B) {
		s := NewResourceSlab(nil, 64, nil)
		defer s.Destroy()
		handles := make([]Handle, 50)
		b.ResetTimer()

		for i := 0; i < b.N; i++ {
			for j := range handles {
				handles[j] = s.Alloc()
			}
			for _, h := range handles {
				if err := s.Free(h); err != nil {
					b.Fatal(err)
				}
			}
		}
	})

	b.Run("StructAllocs/Builtin", func(b *testing.B) {
		b.ResetTimer()

		for i := 0; i < b.N; i++ {
			structs := make([]*testStruct, 50)
			for j := 0; j < 50; j++ {
				structs[j] = &testStruct{ID: int64(j)}
			}
			if i%10 == 0 {
				runtime.GC()
			}
		}
	})

	// Test 3: Buffer reuse pattern
	b.Run("BufferReuse/Region", func(b *testing.B) {
		r := NewRegion(nil, WithMinSlabSize(1024*1024))
		defer r.Destroy()
		b.ResetTimer()

		for i := 0; i < b.N; i++ {
			for j := 0; j < 10; j++ {
				buf1 := r.Alloc(1024)
				buf2 := r.Alloc(2048)
				buf3 := r.Alloc(512)

				buf1[0] = byte(j)
				buf2[0] = byte(j)
				buf3[0] = byte(j)
			}
			r.Reset()
		}
	})

	b.Run("BufferReuse/Builtin", func(b *testing.B) {
		b.ResetTimer()

		for i := 0; i < b.N; i++ {
			buffers := make([][]byte, 30) // 3 buffers per item
			for j := 0; j < 10; j++ {
				buffers[j*3] = make([]byte, 1024)
				buffers[j*3+1] = make([]byte, 2048)
				buffers[j*3+2] = make([]byte, 512)

				buffers[j*3][0] = byte(j)
				buffers[j*3+1][0] = byte(j)
				buffers[j*3+2][0] = byte(j)
			}
			if i%5 == 0 {
				runtime.GC()
			}
		}
	})

	// Test 4: Cross-goroutine handoff
	b.Run("Handoff/Queue", func(b *testing.B) {
		q := NewQueue[*[64]byte](256)
		p := NewPool(64, NewSystem())
		defer p.Destroy()
		b.ResetTimer()

		for i := 0; i < b.N; i++ {
			for j := 0; j < 100; j++ {
				q.Put(New[[64]byte](p))
			}
			for {
				v, ok := q.Get()
				if !ok {
					break
				}
				FreeObject(p, v)
			}
		}
	})

	b.Run("Handoff/Channel", func(b *testing.B) {
		ch := make(chan *[64]byte, 256)
		b.ResetTimer()

		for i := 0; i < b.N; i++ {
			for j := 0; j < 100; j++ {
				ch <- new([64]byte)
			}
			for j := 0; j < 100; j++ {
				<-ch
			}
		}
	})
}
