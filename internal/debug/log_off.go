//go:build !debug

package debug

// Log is a no-op without the debug tag.
func Log(msg interface{}) {}
