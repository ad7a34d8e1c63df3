package memkit

import "log/slog"

func componentLogger(l *slog.Logger, kind string) *slog.Logger {
	return l.With(slog.String("component", "memkit"), slog.String("allocator", kind))
}
