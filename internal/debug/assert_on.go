//go:build assert

package debug

// Assert panics with msg when cond is false. msg is a string, a
// func() string or a fmt.Stringer.
func Assert(cond bool, msg interface{}) {
	if cond {
		return
	}
	panic(message(msg))
}
