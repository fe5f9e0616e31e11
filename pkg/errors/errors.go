// Package errors provides structured error reporting for the Ferry
// bridge runtime.
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
	// KindTransport indicates a failure sending or receiving on the
	// managed/native channel.
	KindTransport
	// KindTimeout indicates a request exceeded its deadline.
	KindTimeout
	// KindStyle indicates a style transform failure.
	KindStyle
	// KindCodec indicates a wire encoding or decoding failure.
	KindCodec
	// KindConfig indicates invalid runtime configuration.
	KindConfig
	// KindPanic indicates a recovered panic.
	KindPanic
)

func (k ErrorKind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindTimeout:
		return "timeout"
	case KindStyle:
		return "style"
	case KindCodec:
		return "codec"
	case KindConfig:
		return "config"
	case KindPanic:
		return "panic"
	default:
		return "unknown"
	}
}

// FerryError represents a structured error in the bridge runtime.
type FerryError struct {
	// Op is the operation that failed (e.g., "bridge.Flush").
	Op string
	// Kind categorizes the error.
	Kind ErrorKind
	// Err is the underlying error.
	Err error
	// MessageType is the bridge message type involved, if applicable.
	MessageType string
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *FerryError) Error() string {
	if e.MessageType != "" {
		return fmt.Sprintf("%s [%s] message=%s: %v", e.Op, e.Kind, e.MessageType, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *FerryError) Unwrap() error {
	return e.Err
}

// PanicError represents a recovered panic.
type PanicError struct {
	// Op is the operation that panicked (e.g., "bridge.dispatchInbound").
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

// ErrorHandler receives errors reported by the bridge runtime.
type ErrorHandler interface {
	// HandleError is called when an error occurs.
	HandleError(err *FerryError)
	// HandlePanic is called when a panic is recovered.
	HandlePanic(err *PanicError)
}
