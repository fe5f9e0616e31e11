package bridge

import (
	"fmt"
	"sync"
	"time"

	"github.com/go-ferry/ferry/pkg/value"
)

// RequestIDKey is the payload field carrying the correlation id of a
// request and its response.
const RequestIDKey = "requestId"

// MessageTypeResponse tags inbound messages that resolve a pending
// request. The payload carries RequestIDKey plus either "result" or
// "error" {code, message}.
const MessageTypeResponse = "ferry/response"

// TimeoutError reports that a request exceeded its deadline before a
// correlated response arrived.
type TimeoutError struct {
	// MessageType is the request's message type.
	MessageType string
	// Timeout is the deadline that elapsed.
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("request %q timed out after %s", e.MessageType, e.Timeout)
}

// ResponseError is a failure returned by the native side for a request.
type ResponseError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *ResponseError) Error() string {
	if e.Message != "" {
		return e.Code + ": " + e.Message
	}
	return e.Code
}

// pendingRequest waits for a correlated response.
type pendingRequest struct {
	id      uint64
	msgType string
	timer   *time.Timer
	done    chan struct{}
	result  value.Value
	err     error
}

// requestTable correlates responses to waiting callers. A request is
// resolved exactly once: whichever of response, timeout, or shutdown
// removes the entry first wins, and anything arriving later finds no
// entry and is discarded.
type requestTable struct {
	mu      sync.Mutex
	nextID  uint64
	pending map[uint64]*pendingRequest
}

func newRequestTable() *requestTable {
	return &requestTable{pending: make(map[uint64]*pendingRequest)}
}

// add registers a new pending request and arms its timeout. The timer
// is armed under the lock so take never observes a half-built entry;
// AfterFunc fires on its own goroutine, so its fail call cannot
// deadlock here even with a zero timeout.
func (t *requestTable) add(msgType string, timeout time.Duration) *pendingRequest {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.nextID++
	pr := &pendingRequest{
		id:      t.nextID,
		msgType: msgType,
		done:    make(chan struct{}),
	}
	pr.timer = time.AfterFunc(timeout, func() {
		t.fail(pr.id, &TimeoutError{MessageType: msgType, Timeout: timeout})
	})
	t.pending[pr.id] = pr
	return pr
}

// take removes and returns the pending request with the given id.
// Returns nil when the id is unknown or already resolved.
func (t *requestTable) take(id uint64) *pendingRequest {
	t.mu.Lock()
	pr := t.pending[id]
	delete(t.pending, id)
	t.mu.Unlock()
	if pr != nil && pr.timer != nil {
		pr.timer.Stop()
	}
	return pr
}

// resolve completes the request with a result. Late or unknown ids are
// ignored.
func (t *requestTable) resolve(id uint64, result value.Value) {
	if pr := t.take(id); pr != nil {
		pr.result = result
		close(pr.done)
	}
}

// fail completes the request with an error. Late or unknown ids are
// ignored.
func (t *requestTable) fail(id uint64, err error) {
	if pr := t.take(id); pr != nil {
		pr.err = err
		close(pr.done)
	}
}

// failAll rejects every outstanding request, e.g. on runtime shutdown.
func (t *requestTable) failAll(err error) {
	t.mu.Lock()
	pending := t.pending
	t.pending = make(map[uint64]*pendingRequest)
	t.mu.Unlock()

	for _, pr := range pending {
		if pr.timer != nil {
			pr.timer.Stop()
		}
		pr.err = err
		close(pr.done)
	}
}

// size returns the number of outstanding requests.
func (t *requestTable) size() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pending)
}
