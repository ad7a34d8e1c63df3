//go:build !(linux || darwin || freebsd || netbsd || openbsd || dragonfly)

package memkit

import "os"

var pageSize = os.Getpagesize()

// mapPages falls back to page-rounded heap memory where anonymous mappings
// are not available.
func mapPages(size int) []byte {
	length := (size + pageSize - 1) &^ (pageSize - 1)
	return make([]byte, length)[:size:size]
}

func unmapPages(buf []byte) {}
