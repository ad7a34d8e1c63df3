//go:build debug || assert

package debug

import "fmt"

// message renders a lazily built message. Closures let callers skip the
// formatting cost when the tag that consumes it is off.
func message(v interface{}) string {
	switch m := v.(type) {
	case string:
		return m
	case func() string:
		return m()
	case fmt.Stringer:
		return m.String()
	}
	panic(fmt.Sprintf("debug: unsupported message type %T", v))
}
