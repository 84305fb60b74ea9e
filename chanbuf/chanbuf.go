// Package chanbuf implements the bounded-buffer contract on a buffered
// channel. External behavior matches the condition-variable buffer in the
// parent package: bounded capacity, blocking Put/Take, FIFO order, context
// cancellation, and an idempotent Close that releases every waiter. The
// runtime's channel machinery supplies the blocking and wakeup that the
// parent package spells out with a mutex and wait conditions.
//
// Close must not race with Put: producers are expected to finish (or be
// cancelled) before the buffer is closed, which is the discipline the
// pipeline package's orchestrator enforces.
package chanbuf

import (
	"context"
	"fmt"
	"sync"

	base "github.com/flowkit/boundedbuf"
)

// Buffer is a channel-backed blocking FIFO. The zero value is not ready
// for use; construct via New.
type Buffer[T any] struct {
	ch        chan T
	done      chan struct{}
	closeOnce sync.Once
}

// New creates a buffer holding at most capacity items. A capacity below 1
// is a configuration error and is reported immediately.
func New[T any](capacity int) (*Buffer[T], error) {
	if capacity < 1 {
		return nil, fmt.Errorf("chanbuf: capacity must be at least 1, got %d", capacity)
	}
	return &Buffer[T]{
		ch:   make(chan T, capacity),
		done: make(chan struct{}),
	}, nil
}

// Put appends v to the tail, blocking while the buffer is full. It returns
// base.ErrClosed if the buffer has been closed, or ctx.Err() if the
// context is done before space frees up.
func (b *Buffer[T]) Put(ctx context.Context, v T) error {
	if ctx == nil {
		ctx = context.Background()
	}
	select {
	case <-b.done:
		return base.ErrClosed
	default:
	}
	select {
	case b.ch <- v:
		return nil
	case <-b.done:
		return base.ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Take removes and returns the head item, blocking while the buffer is
// empty and still open. Once the buffer is closed and drained, Take
// returns the zero value and base.ErrClosed.
func (b *Buffer[T]) Take(ctx context.Context) (T, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	var zero T
	// Fast path: an item is already buffered.
	select {
	case v := <-b.ch:
		return v, nil
	default:
	}
	select {
	case v := <-b.ch:
		return v, nil
	case <-b.done:
		// Closure raced an in-flight item; drain before reporting the
		// sentinel. No sends happen after Close, so one re-check suffices.
		select {
		case v := <-b.ch:
			return v, nil
		default:
			return zero, base.ErrClosed
		}
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// TryPut appends v without blocking. It reports false when the buffer is
// full or closed.
func (b *Buffer[T]) TryPut(v T) bool {
	select {
	case <-b.done:
		return false
	default:
	}
	select {
	case b.ch <- v:
		return true
	default:
		return false
	}
}

// TryTake removes and returns the head item without blocking.
// ok is false when the buffer is empty.
func (b *Buffer[T]) TryTake() (v T, ok bool) {
	select {
	case v := <-b.ch:
		return v, true
	default:
		return v, false
	}
}

// Close marks the buffer as permanently finished. It is idempotent.
// Blocked takers drain any remaining items and then receive
// base.ErrClosed; blocked putters fail with base.ErrClosed.
func (b *Buffer[T]) Close() {
	b.closeOnce.Do(func() { close(b.done) })
}

// IsClosed reports whether Close has been called.
func (b *Buffer[T]) IsClosed() bool {
	select {
	case <-b.done:
		return true
	default:
		return false
	}
}

// Len returns the number of items currently buffered. The value is
// instantaneous and intended for observability only.
func (b *Buffer[T]) Len() int { return len(b.ch) }

// Cap returns the fixed capacity the buffer was constructed with.
func (b *Buffer[T]) Cap() int { return cap(b.ch) }
