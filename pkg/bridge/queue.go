package bridge

import (
	"sync"

	"github.com/go-ferry/ferry/pkg/value"
)

// Queue buffers outbound messages and delivers them to the transport
// as ordered batches, amortizing the per-message boundary cost.
//
// Enqueue never blocks and may be called while a flush is in progress;
// such messages land in the next batch, never the one being drained.
// Flushes are serialized: no two run concurrently.
type Queue struct {
	transport Transport
	pool      *envelopePool

	// onSendFailure is invoked with the failed batch before its
	// envelopes are recycled. Set by the runtime to fail pending
	// requests riding in the batch.
	onSendFailure func(batch Batch, err error)

	mu      sync.Mutex
	nextSeq uint64
	// pending buckets indexed by priority rank; each bucket is FIFO,
	// so priority-major, sequence-minor order falls out of
	// concatenation at flush time.
	pending [3][]*Envelope

	flushMu sync.Mutex
}

// NewQueue creates a queue that flushes to the given transport.
func NewQueue(transport Transport) *Queue {
	return &Queue{
		transport: transport,
		pool:      newEnvelopePool(),
	}
}

// SetSendFailureHandler registers the callback invoked when a batch
// send fails. Must be set before the first flush.
func (q *Queue) SetSendFailureHandler(fn func(batch Batch, err error)) {
	q.onSendFailure = fn
}

// Enqueue appends one message to the pending set. The envelope comes
// from the pool and receives the next sequence number.
func (q *Queue) Enqueue(msgType string, payload value.Value, pri Priority) {
	q.enqueue(msgType, payload, pri, 0)
}

// enqueue is Enqueue plus the request correlation id for
// request-carrying envelopes.
func (q *Queue) enqueue(msgType string, payload value.Value, pri Priority, requestID uint64) {
	e := q.pool.get()
	e.Type = msgType
	e.Payload = payload
	e.Priority = pri
	e.requestID = requestID

	q.mu.Lock()
	q.nextSeq++
	e.Seq = q.nextSeq
	rank := pri.rank()
	q.pending[rank] = append(q.pending[rank], e)
	q.mu.Unlock()
}

// Flush drains the pending set into one batch ordered by priority then
// sequence and hands it to the transport. An empty pending set is a
// no-op. On send failure the batch is not retried: the failure handler
// runs (failing any requests in the batch) and the error is returned
// wrapped as a *TransportError. Envelopes are recycled in both the
// success and the failure case; the transport and failure handler must
// not retain them past their return.
func (q *Queue) Flush() error {
	q.flushMu.Lock()
	defer q.flushMu.Unlock()

	q.mu.Lock()
	size := len(q.pending[0]) + len(q.pending[1]) + len(q.pending[2])
	if size == 0 {
		q.mu.Unlock()
		return nil
	}
	batch := make(Batch, 0, size)
	for rank := range q.pending {
		batch = append(batch, q.pending[rank]...)
		q.pending[rank] = nil
	}
	q.mu.Unlock()

	// Batch is in flight from here until recycled.
	err := q.transport.Send(batch)
	if err != nil {
		terr, ok := err.(*TransportError)
		if !ok {
			terr = &TransportError{Op: "send", Err: err}
		}
		if q.onSendFailure != nil {
			q.onSendFailure(batch, terr)
		}
		q.release(batch)
		return terr
	}

	q.release(batch)
	return nil
}

func (q *Queue) release(batch Batch) {
	for _, e := range batch {
		q.pool.put(e)
	}
}

// Depth returns the number of messages waiting for the next flush.
func (q *Queue) Depth() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending[0]) + len(q.pending[1]) + len(q.pending[2])
}

// LastSeq returns the most recently assigned sequence number.
func (q *Queue) LastSeq() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.nextSeq
}
