package boundedbuf

// Choosing a backend
//
// Two interchangeable implementations of the bounded-buffer contract ship
// with this module: the condition-variable buffer in this package and the
// channel-backed buffer in the chanbuf subpackage. Their external behavior
// is identical: bounded capacity, blocking Put/Take, FIFO order, context
// cancellation, and idempotent Close. Callers can hold either behind a
// small interface and switch freely.
//
// Guidance:
//   - This package makes the monitor discipline explicit: one mutex, two
//     wait conditions, predicate re-checked in a loop. Prefer it when you
//     need TryPut/TryTake/Peek or want the synchronization visible for
//     inspection and instrumentation.
//   - chanbuf delegates blocking, wakeup, and FIFO hand-off to the runtime's
//     channel implementation. Prefer it when the buffer is pure plumbing
//     and select-based composition matters more than introspection.
//
// Minimal interface for backend-agnostic callers:
//
//	type Buffer[T any] interface {
//		Put(ctx context.Context, v T) error
//		Take(ctx context.Context) (T, error)
//		Close()
//		Len() int
//	}
//
// Both *boundedbuf.Buffer[T] and *chanbuf.Buffer[T] satisfy it. The
// pipeline subpackage uses exactly this interface to run producer and
// consumer units against either backend.
