//go:build !assert

package debug

// Assert is a no-op without the assert tag.
func Assert(cond bool, msg interface{}) {}
