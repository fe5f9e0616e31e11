package bridge

import (
	"fmt"
	"sync"

	"github.com/go-ferry/ferry/pkg/value"
)

// InboundHandler receives messages arriving from the native side.
type InboundHandler func(msgType string, payload value.Value)

// Transport is the channel batches cross the managed/native boundary
// on: native interop in production, a socket to a dev host during
// development, or Loopback in tests. Send either delivers the whole
// batch or fails it; partial delivery is a transport bug.
//
// The runtime registers its inbound handler exactly once, before any
// Send. Implementations must not call the handler concurrently with
// themselves.
type Transport interface {
	// Send delivers one batch. A non-nil error means the batch was
	// not delivered.
	Send(batch Batch) error

	// SetInboundHandler registers the receiver for native-to-managed
	// messages.
	SetInboundHandler(fn InboundHandler)
}

// TransportError wraps a transport-level send or receive failure.
// The pipeline never retries on its own; retry policy belongs to the
// transport adapter.
type TransportError struct {
	// Op is the transport operation that failed.
	Op string
	// Err is the underlying failure.
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Loopback is an in-process Transport for tests and dev harnesses.
// Outbound batches are handed to OnBatch; Emit injects messages in the
// inbound direction. When Codec is set, every batch is round-tripped
// through it before delivery so wire framing is exercised end to end.
type Loopback struct {
	// OnBatch receives every sent batch. Nil discards batches.
	OnBatch func(Batch)
	// Codec optionally frames batches through a wire codec.
	Codec BatchCodec

	mu      sync.Mutex
	handler InboundHandler
}

// NewLoopback creates a loopback transport that discards batches.
func NewLoopback() *Loopback {
	return &Loopback{}
}

// Send implements Transport.
func (l *Loopback) Send(batch Batch) error {
	if l.Codec != nil {
		data, err := l.Codec.EncodeBatch(batch)
		if err != nil {
			return err
		}
		decoded, err := l.Codec.DecodeBatch(data)
		if err != nil {
			return err
		}
		batch = decoded
	}
	if l.OnBatch != nil {
		l.OnBatch(batch)
	}
	return nil
}

// SetInboundHandler implements Transport.
func (l *Loopback) SetInboundHandler(fn InboundHandler) {
	l.mu.Lock()
	l.handler = fn
	l.mu.Unlock()
}

// Emit delivers a message to the registered inbound handler, as if it
// arrived from the native side. Messages emitted before a handler is
// registered are dropped.
func (l *Loopback) Emit(msgType string, payload value.Value) {
	l.mu.Lock()
	fn := l.handler
	l.mu.Unlock()
	if fn != nil {
		fn(msgType, payload)
	}
}
