package errors

import (
	"context"
	"log/slog"
	"os"

	"github.com/ultraviolet-go/upf/pkg/logging"
)

// LogHandler is an ErrorHandler that writes errors as structured log
// records. It uses the shared logger from pkg/logging when one is enabled
// and falls back to a text handler on stderr otherwise, so reported errors
// are never lost.
type LogHandler struct {
	// Verbose enables detailed output including stack traces.
	Verbose bool
}

var stderrLogger = slog.New(slog.NewTextHandler(os.Stderr, nil))

func (h *LogHandler) logger() *slog.Logger {
	if l := logging.Logger(); l.Enabled(context.Background(), slog.LevelWarn) {
		return l
	}
	return stderrLogger
}

// HandleError logs a UVError.
func (h *LogHandler) HandleError(err *UVError) {
	if err == nil {
		return
	}
	attrs := []any{"op", err.Op, "kind", err.Kind.String(), "err", err.Err}
	if err.Property != "" {
		attrs = append(attrs, "property", err.Property)
	}
	if h.Verbose && err.StackTrace != "" {
		attrs = append(attrs, "stack", err.StackTrace)
	}
	h.logger().Error("upf error", attrs...)
}

// HandlePanic logs a PanicError.
func (h *LogHandler) HandlePanic(err *PanicError) {
	if err == nil {
		return
	}
	attrs := []any{"op", err.Op, "value", err.Value}
	if h.Verbose && err.StackTrace != "" {
		attrs = append(attrs, "stack", err.StackTrace)
	}
	h.logger().Error("upf panic", attrs...)
}

// HandlePipelineError logs a PipelineError.
func (h *LogHandler) HandlePipelineError(err *PipelineError) {
	if err == nil {
		return
	}
	attrs := []any{"pass", err.Pass, "node", err.Node, "err", err.Error()}
	if h.Verbose && err.StackTrace != "" {
		attrs = append(attrs, "stack", err.StackTrace)
	}
	h.logger().Warn("upf pipeline error", attrs...)
}

// HandleBindingError logs a BindingError.
func (h *LogHandler) HandleBindingError(err *BindingError) {
	if err == nil {
		return
	}
	h.logger().Warn("upf binding error",
		"expression", err.Expression,
		"property", err.Property,
		"err", err.Err,
	)
}
