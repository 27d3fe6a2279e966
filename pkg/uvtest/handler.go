package uvtest

import (
	"sync"
	"testing"

	uverrors "github.com/ultraviolet-go/upf/pkg/errors"
)

// RecordingHandler is an errors.ErrorHandler that keeps every report.
type RecordingHandler struct {
	mu       sync.Mutex
	errors   []*uverrors.UVError
	panics   []*uverrors.PanicError
	pipeline []*uverrors.PipelineError
	bindings []*uverrors.BindingError
}

// InstallHandler installs a fresh RecordingHandler and restores the
// default handler when t finishes.
func InstallHandler(t testing.TB) *RecordingHandler {
	t.Helper()
	h := &RecordingHandler{}
	uverrors.SetHandler(h)
	t.Cleanup(func() { uverrors.SetHandler(nil) })
	return h
}

func (h *RecordingHandler) HandleError(err *uverrors.UVError) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.errors = append(h.errors, err)
}

func (h *RecordingHandler) HandlePanic(err *uverrors.PanicError) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.panics = append(h.panics, err)
}

func (h *RecordingHandler) HandlePipelineError(err *uverrors.PipelineError) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.pipeline = append(h.pipeline, err)
}

func (h *RecordingHandler) HandleBindingError(err *uverrors.BindingError) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.bindings = append(h.bindings, err)
}

// Errors returns the reported UVErrors.
func (h *RecordingHandler) Errors() []*uverrors.UVError {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]*uverrors.UVError(nil), h.errors...)
}

// Panics returns the recovered panics.
func (h *RecordingHandler) Panics() []*uverrors.PanicError {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]*uverrors.PanicError(nil), h.panics...)
}

// PipelineErrors returns the reported pipeline failures.
func (h *RecordingHandler) PipelineErrors() []*uverrors.PipelineError {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]*uverrors.PipelineError(nil), h.pipeline...)
}

// BindingErrors returns the reported binding failures.
func (h *RecordingHandler) BindingErrors() []*uverrors.BindingError {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]*uverrors.BindingError(nil), h.bindings...)
}

// Count returns the total number of reports of every kind.
func (h *RecordingHandler) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.errors) + len(h.panics) + len(h.pipeline) + len(h.bindings)
}

// Reset discards everything recorded so far.
func (h *RecordingHandler) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.errors, h.panics, h.pipeline, h.bindings = nil, nil, nil, nil
}
