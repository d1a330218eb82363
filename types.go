// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fifo

import "time"

// DequeueResult is the value delivered on the channel returned by
// WaitDequeueAsync: the dequeued element and the error WaitDequeue would
// have returned synchronously.
type DequeueResult[T any] struct {
	Value T
	Err   error
}

// Bounded is the contract satisfied by fixed-capacity queue engines
// ([FGB], [LFB]).
//
// TryEnqueue and TryDequeue never park the goroutine: FGB only takes a
// mutex, and LFB retries its CAS loop, with no retry limit, until it
// succeeds or observes the ring full or empty. WaitDequeue blocks up to
// timeout. Absence (queue full/empty,
// deadline expired, or FGB shutdown) is always reported as ErrWouldBlock,
// never a distinct error.
type Bounded[T any] interface {
	// TryEnqueue adds value if there is capacity. Returns ErrWouldBlock if
	// the queue is full (or, for FGB, closed).
	TryEnqueue(value T) error
	// TryDequeue removes and returns the head value if available. Returns
	// ErrWouldBlock if the queue is empty.
	TryDequeue() (T, error)
	// WaitDequeue removes and returns the head value, blocking up to
	// timeout. Returns ErrWouldBlock on deadline expiry or (FGB) shutdown.
	WaitDequeue(timeout time.Duration) (T, error)
	// WaitDequeueAsync schedules WaitDequeue(timeout) on a background
	// goroutine and returns a channel that receives exactly one
	// DequeueResult.
	WaitDequeueAsync(timeout time.Duration) <-chan DequeueResult[T]
	// IsEmpty reports whether the queue is empty. When precise is false
	// this is an approximate counter check; when true it takes the
	// relevant lock (FGB) or re-reads the head and tail positions up to a
	// bounded number of times to get a consistent pair (LFB). LFB does not
	// scan the ring slots themselves.
	IsEmpty(precise bool) bool
	// IsFull reports whether the queue is at capacity, with the same
	// precise/approximate distinction as IsEmpty.
	IsFull(precise bool) bool
	// Cap returns the queue's fixed capacity.
	Cap() int
}

// Unbounded is the contract satisfied by growable queue engines ([FGU],
// [LFU]). Identical to [Bounded] minus capacity-related operations;
// Enqueue never reports absence, only (LFU only) contention.
type Unbounded[T any] interface {
	// Enqueue adds value to the queue. On [FGU] this always returns nil.
	// On [LFU] it returns a *ContentionExceededError if the retry budget
	// was exhausted without installing the new node.
	Enqueue(value T) error
	// TryDequeue removes and returns the head value if available. Returns
	// ErrWouldBlock if the queue is empty, or a *ContentionExceededError
	// (LFU only) if the retry budget was exhausted.
	TryDequeue() (T, error)
	// WaitDequeue removes and returns the head value, blocking up to
	// timeout. Returns ErrWouldBlock on deadline expiry.
	WaitDequeue(timeout time.Duration) (T, error)
	// WaitDequeueAsync schedules WaitDequeue(timeout) on a background
	// goroutine and returns a channel that receives exactly one
	// DequeueResult.
	WaitDequeueAsync(timeout time.Duration) <-chan DequeueResult[T]
	// IsEmpty reports whether the queue is empty. On [LFU] precise works
	// as in [Bounded.IsEmpty]; [FGU] takes the head lock for both values
	// of precise. On [LFU],
	// precise panics with a *ContentionExceededError if the retry
	// budget is exhausted, since this method's bool-only return leaves
	// no room to report that fault otherwise.
	IsEmpty(precise bool) bool
}

// Closer is implemented by engines with an explicit shutdown primitive.
// Only [FGB] implements it: [LFU] and [LFB] require the caller to ensure
// externally that no goroutine is in or will enter a queue operation once
// the queue is dropped.
type Closer interface {
	// Close marks the queue shut down: all operations return
	// ErrWouldBlock from then on, and any goroutine parked in
	// WaitDequeue wakes immediately with ErrWouldBlock. Close is
	// idempotent.
	Close()
}

var (
	_ Unbounded[int] = (*FGU[int])(nil)
	_ Bounded[int]   = (*FGB[int])(nil)
	_ Closer         = (*FGB[int])(nil)
	_ Unbounded[int] = (*LFU[int])(nil)
	_ Bounded[int]   = (*LFB[int])(nil)
)
