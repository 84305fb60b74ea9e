package pipeline

import "context"

// Buffer is the contract producer and consumer units require from a
// bounded buffer. Both *boundedbuf.Buffer[T] and *chanbuf.Buffer[T]
// satisfy it; units hold the interface and never depend on a concrete
// backend.
type Buffer[T any] interface {
	// Put appends v, blocking while the buffer is full. It returns
	// boundedbuf.ErrClosed after Close, or ctx.Err() on cancellation.
	Put(ctx context.Context, v T) error
	// Take removes the head item, blocking while the buffer is empty and
	// open. It returns boundedbuf.ErrClosed once closed and drained.
	Take(ctx context.Context) (T, error)
	// Close marks the buffer finished; idempotent, wakes all waiters.
	Close()
	// Len is an instantaneous, possibly-stale count; observability only.
	Len() int
	// Cap is the fixed capacity.
	Cap() int
}
