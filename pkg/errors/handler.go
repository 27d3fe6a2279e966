package errors

import (
	"fmt"
	"runtime"
	"strings"
	"sync/atomic"
	"time"
)

// handler holds the installed ErrorHandler. A nil pointer means the
// default LogHandler.
var handler atomic.Pointer[ErrorHandler]

var defaultHandler ErrorHandler = &LogHandler{}

// SetHandler installs h as the process-wide error handler. Nil restores
// the default LogHandler.
func SetHandler(h ErrorHandler) {
	if h == nil {
		handler.Store(nil)
		return
	}
	handler.Store(&h)
}

// Handler returns the installed error handler.
func Handler() ErrorHandler {
	if h := handler.Load(); h != nil {
		return *h
	}
	return defaultHandler
}

// deliver stamps ts if unset and hands the report to the handler.
func deliver(ts *time.Time, fn func(ErrorHandler)) {
	if ts.IsZero() {
		*ts = time.Now()
	}
	fn(Handler())
}

// Report sends an error to the installed handler.
func Report(err *UVError) {
	if err != nil {
		deliver(&err.Timestamp, func(h ErrorHandler) { h.HandleError(err) })
	}
}

// ReportPanic sends a recovered panic to the installed handler.
func ReportPanic(err *PanicError) {
	if err != nil {
		deliver(&err.Timestamp, func(h ErrorHandler) { h.HandlePanic(err) })
	}
}

// ReportPipelineError sends a failed pipeline step to the installed
// handler.
func ReportPipelineError(err *PipelineError) {
	if err != nil {
		deliver(&err.Timestamp, func(h ErrorHandler) { h.HandlePipelineError(err) })
	}
}

// ReportBindingError sends a binding evaluation failure to the installed
// handler.
func ReportBindingError(err *BindingError) {
	if err != nil {
		deliver(&err.Timestamp, func(h ErrorHandler) { h.HandleBindingError(err) })
	}
}

// Recover reports a panic in progress as a PanicError for op. Use it
// deferred:
//
//	defer errors.Recover("style.Engine.ApplyStyle")
func Recover(op string) {
	if r := recover(); r != nil {
		reportRecovered(op, r)
	}
}

// RecoverWithCallback is Recover followed by callback(r) when a panic was
// recovered.
func RecoverWithCallback(op string, callback func(r any)) {
	if r := recover(); r != nil {
		reportRecovered(op, r)
		if callback != nil {
			callback(r)
		}
	}
}

func reportRecovered(op string, r any) {
	ReportPanic(&PanicError{Op: op, Value: r, StackTrace: CaptureStack()})
}

// CaptureStack formats up to 32 frames of the caller's stack, one
// "function\n\tfile:line" entry per frame.
func CaptureStack() string {
	var pcs [32]uintptr
	n := runtime.Callers(2, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])
	var sb strings.Builder
	for n > 0 {
		frame, more := frames.Next()
		fmt.Fprintf(&sb, "%s\n\t%s:%d\n", frame.Function, frame.File, frame.Line)
		if !more {
			break
		}
	}
	return sb.String()
}
