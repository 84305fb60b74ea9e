// Package boundedbuf provides a generic, capacity-bounded blocking FIFO
// buffer for coordinating producer and consumer goroutines.
//
// The buffer is concurrency-safe: a single mutex guards the storage, the
// size, and both wait conditions, and all exported methods may be called
// from multiple goroutines. Put blocks while the buffer is full and Take
// blocks while it is empty; both accept a context for cancellation and
// re-validate their wait predicate in a loop, so spurious wakeups and
// racing waiters are handled. Close marks the buffer as permanently
// finished: it is idempotent, wakes every waiter, and turns further Take
// calls on an empty buffer into ErrClosed instead of a wait.
//
// Construct a buffer with New; capacity must be at least 1. For a
// channel-backed implementation of the same contract, see the chanbuf
// subpackage.
package boundedbuf
