package bridge

import (
	"sync"

	"github.com/go-ferry/ferry/pkg/value"
)

// Envelope wraps one outbound message. Envelopes are recycled through
// the pool after their batch is delivered, so callers must not retain a
// pointer past Flush.
type Envelope struct {
	// Type tags the message for routing on the native side.
	Type string
	// Payload is the JSON-compatible message body.
	Payload value.Value
	// Priority controls batch ordering.
	Priority Priority
	// Seq is assigned at enqueue time and strictly increases per queue.
	Seq uint64

	// requestID links the envelope to a pending request, 0 otherwise.
	// Used to fail the right requests when a batch send fails.
	requestID uint64
}

// reset clears every field so no stale data can leak into a reused
// envelope.
func (e *Envelope) reset() {
	*e = Envelope{}
}

// Batch is the ordered group of envelopes produced by one flush:
// priority-major, sequence-minor.
type Batch []*Envelope

// envelopePool recycles envelopes to avoid allocation churn on the
// enqueue hot path. Envelopes are reset on put, not on get.
type envelopePool struct {
	p sync.Pool
}

func newEnvelopePool() *envelopePool {
	return &envelopePool{
		p: sync.Pool{New: func() any { return new(Envelope) }},
	}
}

func (ep *envelopePool) get() *Envelope {
	return ep.p.Get().(*Envelope)
}

func (ep *envelopePool) put(e *Envelope) {
	if e == nil {
		return
	}
	e.reset()
	ep.p.Put(e)
}
