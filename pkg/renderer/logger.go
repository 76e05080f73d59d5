package renderer

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/df07/go-animated-raytracer/pkg/core"
)

// DefaultLogger implements core.Logger on top of a structured slog logger
type DefaultLogger struct {
	logger *slog.Logger
}

// Printf implements core.Logger. Lines starting with "Warning:" are logged
// at warn level and lines starting with "Debug:" at debug level; everything
// else is info.
func (dl *DefaultLogger) Printf(format string, args ...interface{}) {
	msg := strings.TrimSpace(fmt.Sprintf(format, args...))
	if msg == "" {
		return
	}
	if rest, ok := strings.CutPrefix(msg, "Warning:"); ok {
		dl.logger.Warn(strings.TrimSpace(rest))
		return
	}
	if rest, ok := strings.CutPrefix(msg, "Debug:"); ok {
		dl.logger.Debug(strings.TrimSpace(rest))
		return
	}
	dl.logger.Info(msg)
}

// NewLogger creates a text logger writing to w at the given level
func NewLogger(w io.Writer, level slog.Level) *DefaultLogger {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return &DefaultLogger{logger: slog.New(handler)}
}

var _ core.Logger = (*DefaultLogger)(nil)
