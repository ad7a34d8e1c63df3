package memkit

import (
	"log/slog"

	"github.com/pavanmanishd/memkit/internal/bitutil"
)

const (
	// ChunkSize is the chunk granularity shared by Pool, ResourceSlab and
	// the Scratch overflow list (64 KiB).
	ChunkSize = 1 << 16

	// MinSlabSize is the smallest slab a Region requests from its parent.
	MinSlabSize = 1 << 16

	// ScratchInlineSize is the capacity of the buffer embedded in Scratch.
	ScratchInlineSize = 2048

	// DefaultAlignment is the Region alignment when none is requested.
	DefaultAlignment = 4
)

// Option configures an allocator at construction time.
type Option func(*config)

type config struct {
	logger      *slog.Logger
	profiler    Profiler
	alignment   int
	minSlabSize int
	chunkSize   int
}

func newConfig(opts []Option) config {
	c := config{
		alignment:   DefaultAlignment,
		minSlabSize: MinSlabSize,
		chunkSize:   ChunkSize,
	}
	for _, opt := range opts {
		opt(&c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// WithLogger routes diagnostics (leak warnings, stale handle errors) to
// logger instead of slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithProfiler reports every allocation, free and resize to p. Only the
// System and VM allocators issue events.
func WithProfiler(p Profiler) Option {
	return func(c *config) {
		c.profiler = p
	}
}

// WithAlignment sets the default Region alignment. align must be a power
// of two.
func WithAlignment(align int) Option {
	if !bitutil.IsPowerOf2(align) {
		panicerr("memkit: alignment %d is not a power of two", align)
	}
	return func(c *config) {
		c.alignment = align
	}
}

// WithMinSlabSize sets the floor for Region slab sizes. Values <= 0 keep
// MinSlabSize.
func WithMinSlabSize(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.minSlabSize = n
		}
	}
}

// WithChunkSize overrides the chunk size of a Pool or ResourceSlab. Values
// <= 0 keep ChunkSize.
func WithChunkSize(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.chunkSize = n
		}
	}
}
