//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package memkit

import (
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/pavanmanishd/memkit/internal/bitutil"
)

var pageSize = unix.Getpagesize()

// mapPages reserves and commits a private anonymous mapping of at least
// size bytes.
func mapPages(size int) []byte {
	length := bitutil.AlignUp(size, pageSize)
	b, err := unix.Mmap(-1, 0, length, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		panicerr("vm: mmap %d bytes: %v", length, err)
	}
	return b[:size:size]
}

// unmapPages releases the mapping that starts at buf. The mapping length is
// recovered from len(buf), which must be the size it was mapped with.
func unmapPages(buf []byte) {
	length := bitutil.AlignUp(len(buf), pageSize)
	full := unsafe.Slice(unsafe.SliceData(buf), length)
	if err := unix.Munmap(full); err != nil {
		panicerr("vm: munmap %d bytes at %#x: %v", length, addressOf(buf), err)
	}
}
