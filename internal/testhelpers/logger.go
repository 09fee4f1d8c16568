package testhelpers

import (
	"io"
	"log/slog"

	"github.com/rishi1508/zenith/internal/logging"
)

// NewLogger returns a debug-level text logger writing to out, typically a
// testhelpers.Writer so log lines land in the test output.
func NewLogger(out io.Writer) *slog.Logger {
	handler := slog.NewTextHandler(out, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})
	return slog.New(logging.NewContextHandler(handler))
}
