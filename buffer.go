package boundedbuf

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrClosed is returned by Put after Close, and by Take once the buffer is
// both closed and empty. It is the terminal "no more items" sentinel.
var ErrClosed = errors.New("boundedbuf: buffer closed")

// Buffer is a fixed-capacity blocking FIFO. The zero value is not ready for
// use; construct via New. A single mutex guards the storage and both wait
// conditions, and it is never held while a caller sleeps outside a wait.
type Buffer[T any] struct {
	mu       sync.Mutex
	notFull  *sync.Cond // signaled after each removal
	notEmpty *sync.Cond // signaled after each insertion
	items    []T
	capacity int
	closed   bool
}

// New creates a buffer holding at most capacity items.
//
// A capacity below 1 is a configuration error and is reported immediately;
// no buffer is constructed.
func New[T any](capacity int) (*Buffer[T], error) {
	if capacity < 1 {
		return nil, fmt.Errorf("boundedbuf: capacity must be at least 1, got %d", capacity)
	}
	b := &Buffer[T]{
		items:    make([]T, 0, capacity),
		capacity: capacity,
	}
	b.notFull = sync.NewCond(&b.mu)
	b.notEmpty = sync.NewCond(&b.mu)
	return b, nil
}

// Put appends v to the tail, blocking while the buffer is full.
//
// It returns nil once the item is stored, ErrClosed if the buffer has been
// closed, or ctx.Err() if the context is done before space frees up. On a
// non-nil error the item has not been inserted. Exactly one waiting taker
// is woken per successful Put.
func (b *Buffer[T]) Put(ctx context.Context, v T) error {
	if ctx == nil {
		ctx = context.Background()
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for len(b.items) == b.capacity && !b.closed {
		if err := b.waitCtx(ctx, b.notFull); err != nil {
			// This waiter may have absorbed a Signal meant for another
			// putter; pass it on before giving up.
			b.notFull.Signal()
			return err
		}
	}
	if b.closed {
		return ErrClosed
	}
	b.items = append(b.items, v)
	b.notEmpty.Signal()
	return nil
}

// Take removes and returns the head item, blocking while the buffer is
// empty and still open.
//
// Once the buffer is closed and drained, Take returns the zero value and
// ErrClosed; every blocked taker is released this way by Close without a
// further Put. If ctx is done first, Take returns ctx.Err() and the buffer
// is left untouched. Exactly one waiting putter is woken per successful
// Take.
func (b *Buffer[T]) Take(ctx context.Context) (T, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	var zero T
	b.mu.Lock()
	defer b.mu.Unlock()
	for len(b.items) == 0 && !b.closed {
		if err := b.waitCtx(ctx, b.notEmpty); err != nil {
			// This waiter may have absorbed a Signal meant for another
			// taker; pass it on before giving up.
			b.notEmpty.Signal()
			return zero, err
		}
	}
	if len(b.items) == 0 {
		return zero, ErrClosed
	}
	v := b.items[0]
	b.items = b.items[1:]
	b.notFull.Signal()
	return v, nil
}

// TryPut appends v without blocking. It reports false when the buffer is
// full or closed.
func (b *Buffer[T]) TryPut(v T) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed || len(b.items) == b.capacity {
		return false
	}
	b.items = append(b.items, v)
	b.notEmpty.Signal()
	return true
}

// TryTake removes and returns the head item without blocking.
// ok is false when the buffer is empty.
func (b *Buffer[T]) TryTake() (v T, ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.items) == 0 {
		return v, false
	}
	v = b.items[0]
	b.items = b.items[1:]
	b.notFull.Signal()
	return v, true
}

// Peek returns the head item without removing it. ok is false when empty.
func (b *Buffer[T]) Peek() (v T, ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.items) == 0 {
		return v, false
	}
	return b.items[0], true
}

// Close marks the buffer as permanently finished. It is idempotent and
// monotonic: once closed, the buffer stays closed. All waiters are woken;
// blocked putters fail with ErrClosed, blocked takers drain any remaining
// items and then receive ErrClosed.
func (b *Buffer[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	b.notEmpty.Broadcast()
	b.notFull.Broadcast()
}

// IsClosed reports whether Close has been called.
func (b *Buffer[T]) IsClosed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}

// Len returns the number of items currently buffered. The value is
// instantaneous and may be stale by the time the caller uses it; it is
// intended for observability, not for control decisions.
func (b *Buffer[T]) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items)
}

// Cap returns the fixed capacity the buffer was constructed with.
func (b *Buffer[T]) Cap() int { return b.capacity }

// waitCtx waits on cv until woken or until ctx is done, whichever comes
// first. The caller must hold b.mu; the lock is released while suspended
// and re-acquired before returning. A short-lived watcher goroutine
// broadcasts on cancellation to wake the Wait; callers re-check their
// predicate in a loop, so the extra wakeup is harmless.
func (b *Buffer[T]) waitCtx(ctx context.Context, cv *sync.Cond) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if ctx.Done() == nil {
		cv.Wait()
		return nil
	}
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			b.mu.Lock()
			cv.Broadcast()
			b.mu.Unlock()
		case <-done:
		}
	}()
	cv.Wait() // releases and re-acquires b.mu
	close(done)
	return ctx.Err()
}
