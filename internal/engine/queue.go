package engine

import (
	"sync"

	"github.com/AZOTHAZZA/ZA-MSGAI-ZA/internal/ir"
)

// RequestType distinguishes between request kinds.
type RequestType int

const (
	// RequestInvoke runs one act.
	RequestInvoke RequestType = iota + 1
	// RequestPass runs one rule pass.
	RequestPass
	// RequestClearHalt clears the halt flag.
	RequestClearHalt
)

// Request is a unit of work for the Run loop.
type Request struct {
	Type     RequestType
	Act      ir.ActID
	Params   ir.Params
	Operator string

	reply chan Response
}

// Response carries the outcome of a Request. Exactly one of the result
// fields is set, matching the request type.
type Response struct {
	Invoke  *InvokeResult
	Pass    *PassResult
	Cleared *ir.LogEntry
	Err     error
}

// requestQueue is a thread-safe FIFO queue for requests.
//
// The queue uses a channel for signaling to enable context-aware waiting
// in the Run loop (prevents goroutine hangs on context cancellation).
type requestQueue struct {
	mu       sync.Mutex
	requests []Request
	closed   bool
	signal   chan struct{} // Signals request availability (buffered, size 1)
}

func newRequestQueue() *requestQueue {
	return &requestQueue{
		requests: make([]Request, 0, 16),
		signal:   make(chan struct{}, 1),
	}
}

// Enqueue adds a request to the back of the queue.
// Returns false if the queue is closed.
func (q *requestQueue) Enqueue(r Request) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}

	q.requests = append(q.requests, r)

	// Non-blocking: buffer of 1 coalesces multiple signals
	select {
	case q.signal <- struct{}{}:
	default:
	}

	return true
}

// TryDequeue attempts to dequeue without blocking.
func (q *requestQueue) TryDequeue() (Request, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.requests) == 0 {
		return Request{}, false
	}

	r := q.requests[0]
	q.requests[0] = Request{}

	if len(q.requests) == 1 {
		q.requests = q.requests[:0]
	} else {
		q.requests = q.requests[1:]
	}

	return r, true
}

// Wait returns a channel that signals when requests may be available.
func (q *requestQueue) Wait() <-chan struct{} {
	return q.signal
}

// Len returns the current queue length.
func (q *requestQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.requests)
}

// Drained reports whether the queue is closed and empty.
func (q *requestQueue) Drained() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed && len(q.requests) == 0
}

// Close signals that no more requests will be enqueued and wakes waiters.
func (q *requestQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}

	q.closed = true
	close(q.signal)
}
