// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fifo

import (
	"fmt"

	"code.hybscloud.com/iox"
)

// ErrWouldBlock indicates the operation cannot proceed immediately.
//
// For TryEnqueue: the queue is full (backpressure).
// For TryDequeue: the queue is empty (no data available).
// For WaitDequeue: the deadline expired, or (FGB only) the queue was closed.
//
// ErrWouldBlock is a control flow signal, not a failure. The caller should
// retry the operation later (with backoff) rather than propagating the
// error.
//
// This is an alias for [iox.ErrWouldBlock] for ecosystem consistency.
var ErrWouldBlock = iox.ErrWouldBlock

// IsWouldBlock reports whether err indicates the operation would block.
// Delegates to [iox.IsWouldBlock] for wrapped error support.
func IsWouldBlock(err error) bool {
	return iox.IsWouldBlock(err)
}

// IsSemantic reports whether err is a control flow signal (not a failure).
// Delegates to [iox.IsSemantic].
func IsSemantic(err error) bool {
	return iox.IsSemantic(err)
}

// IsNonFailure reports whether err represents a non-failure condition.
// Returns true for nil or ErrWouldBlock. Delegates to [iox.IsNonFailure].
func IsNonFailure(err error) bool {
	return iox.IsNonFailure(err)
}

// ContentionExceededError is returned by [LFU.Enqueue] and [LFU.TryDequeue]
// when the bounded retry budget (max_update_depth) is exhausted without
// making progress.
//
// Unlike ErrWouldBlock, this is a recoverable fault rather than an absence
// signal: it means the lock-free retry loop gave up under contention, not
// that the queue was observed empty or full. Callers may retry, construct
// the queue with a larger depth budget, or fall back to a different engine.
// [LFU.IsEmpty] can hit the same exhaustion but has no error return to
// report it through (its signature is shared with [Bounded.IsEmpty]), so it
// panics with this same type instead. It is never raised by FGU, FGB, or
// LFB.
type ContentionExceededError struct {
	// Op is the operation that exhausted its retry budget: "Enqueue",
	// "TryDequeue", or "IsEmpty".
	Op string
	// Depth is the retry budget that was exhausted.
	Depth int
}

func (e *ContentionExceededError) Error() string {
	return fmt.Sprintf("fifo: %s exceeded max update depth (%d); contention too high", e.Op, e.Depth)
}

// IsContentionExceeded reports whether err is a *ContentionExceededError.
func IsContentionExceeded(err error) bool {
	_, ok := err.(*ContentionExceededError)
	return ok
}
