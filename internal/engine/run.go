package engine

import (
	"context"
	"fmt"
	"log/slog"
)

// Submit enqueues a request for the Run loop and waits for its response.
// Thread-safe: may be called from any goroutine.
func (e *Engine) Submit(ctx context.Context, req Request) (Response, error) {
	req.reply = make(chan Response, 1)
	if !e.queue.Enqueue(req) {
		return Response{}, errStopped
	}
	select {
	case <-ctx.Done():
		return Response{}, ctx.Err()
	case resp := <-req.reply:
		return resp, resp.Err
	}
}

// Run starts the single-writer request loop.
// Blocks until context is cancelled or Stop() is called.
//
// CRITICAL: Must be called from exactly ONE goroutine.
func (e *Engine) Run(ctx context.Context) error {
	slog.Info("engine starting")

	for {
		req, ok := e.queue.TryDequeue()
		if ok {
			req.reply <- e.handle(ctx, req)
			continue
		}

		select {
		case <-ctx.Done():
			slog.Info("engine stopping: context cancelled")
			e.queue.Close()
			e.drain()
			return ctx.Err()

		case <-e.queue.Wait():
			if e.queue.Drained() {
				slog.Info("engine stopping: queue closed")
				return nil
			}
		}
	}
}

// Stop closes the request queue; Run returns once queued work is done.
func (e *Engine) Stop() {
	e.queue.Close()
}

func (e *Engine) handle(ctx context.Context, req Request) Response {
	switch req.Type {
	case RequestInvoke:
		r := e.InvokeAct(ctx, req.Act, req.Params)
		return Response{Invoke: &r}
	case RequestPass:
		r := e.RunPass(ctx)
		return Response{Pass: &r}
	case RequestClearHalt:
		entry, ok := e.ClearHalt(ctx, req.Operator)
		if !ok {
			return Response{Err: errNotHalted}
		}
		return Response{Cleared: &entry}
	default:
		return Response{Err: fmt.Errorf("unknown request type: %d", req.Type)}
	}
}

// drain answers requests left in a closed queue.
func (e *Engine) drain() {
	for {
		req, ok := e.queue.TryDequeue()
		if !ok {
			return
		}
		req.reply <- Response{Err: errStopped}
	}
}
