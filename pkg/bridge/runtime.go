package bridge

import (
	stderrors "errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-ferry/ferry/pkg/errors"
	"github.com/go-ferry/ferry/pkg/style"
	"github.com/go-ferry/ferry/pkg/value"
)

// DefaultFlushInterval is one frame at 60Hz.
const DefaultFlushInterval = 16 * time.Millisecond

// ErrClosed is returned by operations on a closed runtime.
var ErrClosed = stderrors.New("bridge runtime closed")

// Options configures a Runtime.
type Options struct {
	// CacheCapacity bounds the style transform cache.
	// Zero means style.DefaultCapacity.
	CacheCapacity int
	// FlushInterval is the batching cadence. Zero means
	// DefaultFlushInterval.
	FlushInterval time.Duration
	// ImmediateHigh schedules an early flush whenever a high-priority
	// message is enqueued instead of waiting for the next tick.
	ImmediateHigh bool
}

// Stats is a snapshot of runtime health for diagnostics.
type Stats struct {
	Cache           style.Stats `json:"cache"`
	QueueDepth      int         `json:"queueDepth"`
	LastSeq         uint64      `json:"lastSeq"`
	PendingRequests int         `json:"pendingRequests"`
	Protocol        string      `json:"protocol"`
}

// Runtime is the bridge context object: it owns the style cache, the
// envelope pool and batching queue, and the pending-request table, and
// drives the flush cadence. Construct one per application instance and
// inject it wherever styles are transformed or messages enqueued;
// independent instances never share state, which keeps tests isolated.
type Runtime struct {
	opts      Options
	styles    *style.Cache
	queue     *Queue
	requests  *requestTable
	transport Transport

	listenerMu sync.Mutex
	listeners  map[string][]*listener

	kick    chan struct{}
	stop    chan struct{}
	done    chan struct{}
	started atomic.Bool
	closed  atomic.Bool
}

type listener struct {
	fn func(payload value.Value)
}

// New creates a runtime over the given transport and registers the
// inbound handler. The flush loop does not run until Start; until then
// batches leave only via explicit Flush calls.
func New(transport Transport, opts Options) *Runtime {
	if opts.FlushInterval <= 0 {
		opts.FlushInterval = DefaultFlushInterval
	}
	r := &Runtime{
		opts:      opts,
		styles:    style.NewCache(opts.CacheCapacity),
		queue:     NewQueue(transport),
		requests:  newRequestTable(),
		transport: transport,
		listeners: make(map[string][]*listener),
		kick:      make(chan struct{}, 1),
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
	r.queue.SetSendFailureHandler(r.failBatchRequests)
	transport.SetInboundHandler(r.handleInbound)
	return r
}

// Start launches the flush loop and opens the session with a
// high-priority handshake message.
func (r *Runtime) Start() error {
	if r.closed.Load() {
		return ErrClosed
	}
	if !r.started.CompareAndSwap(false, true) {
		return nil
	}
	r.Enqueue(MessageTypeHandshake, value.Object(map[string]value.Value{
		"protocol": value.String(ProtocolVersion),
	}), PriorityHigh)
	go r.flushLoop()
	return nil
}

// Close stops the flush loop, performs a final flush, and fails every
// outstanding request with ErrClosed. Safe to call more than once.
func (r *Runtime) Close() error {
	if !r.closed.CompareAndSwap(false, true) {
		return nil
	}
	if r.started.Load() {
		close(r.stop)
		<-r.done
	}
	err := r.queue.Flush()
	r.requests.failAll(ErrClosed)
	return err
}

// flushLoop drains the queue on the configured cadence and whenever
// kicked. It is the only goroutine calling Flush while running, so no
// two flushes overlap.
func (r *Runtime) flushLoop() {
	defer close(r.done)
	ticker := time.NewTicker(r.opts.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stop:
			return
		case <-ticker.C:
		case <-r.kick:
		}
		if err := r.queue.Flush(); err != nil {
			errors.Report(&errors.FerryError{
				Op:   "bridge.flushLoop",
				Kind: errors.KindTransport,
				Err:  err,
			})
		}
	}
}

// Transform memoizes the native-ready form of one style object.
// See style.Cache.Transform.
func (r *Runtime) Transform(s value.Value) (value.Value, error) {
	out, err := r.styles.Transform(s)
	if err != nil {
		errors.Report(&errors.FerryError{
			Op:   "bridge.Transform",
			Kind: errors.KindStyle,
			Err:  err,
		})
	}
	return out, err
}

// TransformMerged merges and transforms several optional styles.
// See style.Cache.TransformMerged.
func (r *Runtime) TransformMerged(styles ...value.Value) (value.Value, error) {
	out, err := r.styles.TransformMerged(styles...)
	if err != nil {
		errors.Report(&errors.FerryError{
			Op:   "bridge.TransformMerged",
			Kind: errors.KindStyle,
			Err:  err,
		})
	}
	return out, err
}

// StyleCache exposes the cache control surface (Invalidate, Clear,
// Stats).
func (r *Runtime) StyleCache() *style.Cache {
	return r.styles
}

// Enqueue adds one fire-and-forget message to the next batch.
// It never blocks; with ImmediateHigh set, a high-priority message
// also schedules an early flush.
func (r *Runtime) Enqueue(msgType string, payload value.Value, pri Priority) {
	if r.closed.Load() {
		return
	}
	r.queue.Enqueue(msgType, payload, pri)
	if pri == PriorityHigh && r.opts.ImmediateHigh {
		r.kickFlush()
	}
}

// Flush drains the pending set into one batch immediately. Hosts that
// drive their own frame tick call this instead of Start.
func (r *Runtime) Flush() error {
	return r.queue.Flush()
}

// kickFlush wakes the flush loop without blocking the caller.
func (r *Runtime) kickFlush() {
	select {
	case r.kick <- struct{}{}:
	default:
	}
}

// Request sends a message and blocks until a correlated response
// arrives or the timeout elapses. The correlation id is embedded in
// the payload under RequestIDKey; payload must be an object or null.
// On timeout the caller gets a *TimeoutError and any response arriving
// later for the same id is discarded. On batch send failure the caller
// gets the *TransportError; the batch is not retried.
func (r *Runtime) Request(msgType string, payload value.Value, timeout time.Duration) (value.Value, error) {
	if r.closed.Load() {
		return value.Value{}, ErrClosed
	}
	var fields map[string]value.Value
	switch payload.Kind() {
	case value.KindNull:
		fields = make(map[string]value.Value, 1)
	case value.KindObject:
		fields = make(map[string]value.Value, payload.Len()+1)
		for _, k := range payload.Keys() {
			f, _ := payload.Get(k)
			fields[k] = f
		}
	default:
		return value.Value{}, fmt.Errorf("request payload must be an object or null, got %s", payload.Kind())
	}

	pr := r.requests.add(msgType, timeout)
	fields[RequestIDKey] = value.Number(float64(pr.id))
	r.queue.enqueue(msgType, value.Object(fields), PriorityNormal, pr.id)
	r.kickFlush()

	<-pr.done
	return pr.result, pr.err
}

// OnMessage registers a handler for inbound messages of the given
// type. The returned function removes the registration.
func (r *Runtime) OnMessage(msgType string, fn func(payload value.Value)) (remove func()) {
	l := &listener{fn: fn}
	r.listenerMu.Lock()
	r.listeners[msgType] = append(r.listeners[msgType], l)
	r.listenerMu.Unlock()

	return func() {
		r.listenerMu.Lock()
		defer r.listenerMu.Unlock()
		ls := r.listeners[msgType]
		for i, cand := range ls {
			if cand == l {
				r.listeners[msgType] = append(ls[:i], ls[i+1:]...)
				break
			}
		}
	}
}

// Stats returns a snapshot of cache and queue health.
func (r *Runtime) Stats() Stats {
	return Stats{
		Cache:           r.styles.Stats(),
		QueueDepth:      r.queue.Depth(),
		LastSeq:         r.queue.LastSeq(),
		PendingRequests: r.requests.size(),
		Protocol:        ProtocolVersion,
	}
}

// failBatchRequests rejects every pending request riding in a failed
// batch. Fire-and-forget envelopes in the batch are dropped with it;
// the queue recycles all envelopes after this returns.
func (r *Runtime) failBatchRequests(batch Batch, err error) {
	for _, e := range batch {
		if e.requestID != 0 {
			r.requests.fail(e.requestID, err)
		}
	}
}

// handleInbound routes messages arriving from the native side:
// responses resolve pending requests, handshakes are verified, and
// everything else fans out to OnMessage listeners. A panicking
// listener is reported, never propagated into the transport.
func (r *Runtime) handleInbound(msgType string, payload value.Value) {
	defer errors.Recover("bridge.handleInbound")

	switch msgType {
	case MessageTypeResponse:
		r.handleResponse(payload)
	case MessageTypeHandshake:
		r.handleHandshake(payload)
	default:
		r.listenerMu.Lock()
		ls := make([]*listener, len(r.listeners[msgType]))
		copy(ls, r.listeners[msgType])
		r.listenerMu.Unlock()
		for _, l := range ls {
			l.fn(payload)
		}
	}
}

func (r *Runtime) handleResponse(payload value.Value) {
	idVal, ok := payload.Get(RequestIDKey)
	if !ok {
		r.reportInbound(MessageTypeResponse, fmt.Errorf("response missing %q", RequestIDKey))
		return
	}
	idNum, ok := idVal.AsNumber()
	if !ok {
		r.reportInbound(MessageTypeResponse, fmt.Errorf("response %q is not a number", RequestIDKey))
		return
	}
	id := uint64(idNum)

	if errField, ok := payload.Get("error"); ok && !errField.IsNull() {
		re := &ResponseError{Code: "unknown"}
		if code, ok := errField.Get("code"); ok {
			if s, ok := code.AsString(); ok {
				re.Code = s
			}
		}
		if msg, ok := errField.Get("message"); ok {
			if s, ok := msg.AsString(); ok {
				re.Message = s
			}
		}
		r.requests.fail(id, re)
		return
	}

	result, _ := payload.Get("result")
	r.requests.resolve(id, result)
}

func (r *Runtime) handleHandshake(payload value.Value) {
	versionVal, _ := payload.Get("protocol")
	version, _ := versionVal.AsString()
	if err := CheckProtocol(version); err != nil {
		r.reportInbound(MessageTypeHandshake, err)
	}
}

func (r *Runtime) reportInbound(msgType string, err error) {
	errors.Report(&errors.FerryError{
		Op:          "bridge.handleInbound",
		Kind:        errors.KindTransport,
		MessageType: msgType,
		Err:         err,
	})
}
