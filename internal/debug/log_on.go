//go:build debug

package debug

import (
	"log/slog"
	"os"
)

var logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
	Level: slog.LevelDebug,
})).With(slog.String("component", "memkit/debug"))

// Log writes msg to stderr at debug level. msg takes the same forms as in
// Assert.
func Log(msg interface{}) {
	logger.Debug(message(msg))
}
