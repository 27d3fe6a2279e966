// Package errors provides structured error handling for the UPF core.
//
// Configuration and setup failures (duplicate property registration,
// malformed binding expressions) are returned to the caller as *UVError
// values. Failures that happen while a frame is being processed (a binding
// whose source went away, a panicking measure override) are never returned:
// they are sent to the process-wide ErrorHandler so the frame can finish.
package errors

import (
	"fmt"
	"time"
)

// ErrorKind identifies the category of an error.
type ErrorKind int

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown ErrorKind = iota
	// KindRegistration indicates a dependency property registration or
	// lookup failure. Fatal at startup.
	KindRegistration
	// KindBinding indicates a binding that could not be set up.
	KindBinding
	// KindBindingEval indicates a binding that failed while being evaluated.
	// The value falls back to its default.
	KindBindingEval
	// KindPipeline indicates a failure inside a pipeline pass.
	KindPipeline
	// KindStyle indicates a style setter that could not be applied.
	KindStyle
	// KindContent indicates a content item that could not be loaded.
	KindContent
	// KindConfig indicates an invalid configuration file.
	KindConfig
	// KindPanic indicates a recovered panic.
	KindPanic
)

func (k ErrorKind) String() string {
	switch k {
	case KindRegistration:
		return "registration"
	case KindBinding:
		return "binding"
	case KindBindingEval:
		return "binding-eval"
	case KindPipeline:
		return "pipeline"
	case KindStyle:
		return "style"
	case KindContent:
		return "content"
	case KindConfig:
		return "config"
	case KindPanic:
		return "panic"
	default:
		return "unknown"
	}
}

// UVError represents a structured error in the UPF core.
type UVError struct {
	// Op is the operation that failed (e.g., "dependency.Register").
	Op string
	// Kind categorizes the error.
	Kind ErrorKind
	// Property is the dependency property involved, if any.
	Property string
	// Err is the underlying error.
	Err error
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *UVError) Error() string {
	if e.Property != "" {
		return fmt.Sprintf("%s [%s] property=%s: %v", e.Op, e.Kind, e.Property, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *UVError) Unwrap() error {
	return e.Err
}

// New returns a UVError for op and kind wrapping err.
func New(op string, kind ErrorKind, err error) *UVError {
	return &UVError{Op: op, Kind: kind, Err: err}
}

// PanicError represents a recovered panic.
type PanicError struct {
	// Op is the operation that panicked (e.g., "animation.Clock.Update").
	Op string
	// Value is the value passed to panic().
	Value any
	// StackTrace contains the call stack at the time of the panic.
	StackTrace string
	// Timestamp is when the panic occurred.
	Timestamp time.Time
}

func (e *PanicError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("panic in %s: %v", e.Op, e.Value)
	}
	return fmt.Sprintf("panic: %v", e.Value)
}

// PipelineError represents a node whose processing failed during a pass.
// The node has already been removed from the pass queue when this is
// reported.
type PipelineError struct {
	// Pass is the pipeline pass name ("measure", "arrange", ...).
	Pass string
	// Node describes the failing node (type and name).
	Node string
	// Recovered is the panic value (nil for regular errors).
	Recovered any
	// Err is the underlying error (nil for panics).
	Err error
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *PipelineError) Error() string {
	if e.Recovered != nil {
		return fmt.Sprintf("panic in %s pass for %s: %v", e.Pass, e.Node, e.Recovered)
	}
	if e.Err != nil {
		return fmt.Sprintf("error in %s pass for %s: %v", e.Pass, e.Node, e.Err)
	}
	return fmt.Sprintf("unknown error in %s pass for %s", e.Pass, e.Node)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// BindingError represents a binding that failed during evaluation.
type BindingError struct {
	// Expression is the binding path expression.
	Expression string
	// Property is the bound dependency property.
	Property string
	// Err is the underlying error.
	Err error
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *BindingError) Error() string {
	return fmt.Sprintf("binding %q on %s: %v", e.Expression, e.Property, e.Err)
}

func (e *BindingError) Unwrap() error {
	return e.Err
}

// ErrorHandler receives errors reported by the UPF core.
type ErrorHandler interface {
	// HandleError is called for general structured errors.
	HandleError(err *UVError)
	// HandlePanic is called when a panic is recovered.
	HandlePanic(err *PanicError)
	// HandlePipelineError is called when a node fails inside a pass.
	HandlePipelineError(err *PipelineError)
	// HandleBindingError is called when a binding fails during a digest.
	HandleBindingError(err *BindingError)
}
