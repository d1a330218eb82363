// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fifo

import (
	"sync/atomic"
	"time"

	"code.hybscloud.com/spin"

	"code.hybscloud.com/fifo/internal/semaphore"
)

// defaultMaxUpdateDepth is the retry budget used by NewLFUDefault.
const defaultMaxUpdateDepth = 100

// lfuNode is a Michael-Scott queue node. next is a real pointer-typed
// atomic so the garbage collector keeps tracing live nodes through it;
// atomix's word-sized atomics have no generic pointer variant, and
// round-tripping identity through atomix.Uintptr would leave a node
// reachable only through a uintptr, which the collector does not scan.
//
// Nodes are never explicitly freed. A dequeued node becomes unreachable
// once head advances past it and is reclaimed by the garbage collector;
// there is no hazard-pointer or epoch scheme here, unlike the original
// implementation's explicit delete.
type lfuNode[T any] struct {
	value T
	next  atomic.Pointer[lfuNode[T]]
}

func loadNext[T any](n *lfuNode[T]) *lfuNode[T] {
	return n.next.Load()
}

func casNext[T any](n *lfuNode[T], old, new *lfuNode[T]) bool {
	return n.next.CompareAndSwap(old, new)
}

// LFU is a lock-free unbounded FIFO queue implementing the Michael &
// Scott two-pointer algorithm: a singly linked list with a dummy
// sentinel, atomic head/tail pointers, and tail-helping on contention.
//
// Enqueue, TryDequeue, and IsEmpty each retry up to maxUpdateDepth times
// before giving up; under ordinary contention this never happens - a
// sustained bound is only reached when many goroutines are fighting over
// the same pointer continuously.
type LFU[T any] struct {
	_    pad
	head atomic.Pointer[lfuNode[T]]
	_    padPtr
	tail atomic.Pointer[lfuNode[T]]
	_    padPtr

	maxUpdateDepth int
	available      semaphore.Counting
}

// NewLFUDefault creates an empty lock-free unbounded queue with the
// default retry budget (100 attempts per TryDequeue/IsEmpty call).
func NewLFUDefault[T any]() *LFU[T] {
	return NewLFU[T](defaultMaxUpdateDepth)
}

// NewLFU creates an empty lock-free unbounded queue with an explicit
// per-operation retry budget. Panics if maxUpdateDepth is not positive.
func NewLFU[T any](maxUpdateDepth int) *LFU[T] {
	if maxUpdateDepth <= 0 {
		panic("fifo: LFU max update depth must be positive")
	}
	dummy := &lfuNode[T]{}
	q := &LFU[T]{maxUpdateDepth: maxUpdateDepth}
	q.head.Store(dummy)
	q.tail.Store(dummy)
	return q
}

func (q *LFU[T]) loadHead() *lfuNode[T] { return q.head.Load() }
func (q *LFU[T]) loadTail() *lfuNode[T] { return q.tail.Load() }

func (q *LFU[T]) casHead(old, new *lfuNode[T]) bool {
	return q.head.CompareAndSwap(old, new)
}

func (q *LFU[T]) casTail(old, new *lfuNode[T]) bool {
	return q.tail.CompareAndSwap(old, new)
}

// Enqueue adds value to the queue. Returns a [*ContentionExceededError]
// if maxUpdateDepth retries all fail to install the new node; under
// ordinary contention this never happens.
func (q *LFU[T]) Enqueue(value T) error {
	newNode := &lfuNode[T]{value: value}

	sw := spin.Wait{}
	for attempt := 0; attempt < q.maxUpdateDepth; attempt++ {
		last := q.loadTail()
		next := loadNext(last)

		if last != q.loadTail() {
			sw.Once()
			continue
		}
		if next == nil {
			if casNext(last, nil, newNode) {
				q.casTail(last, newNode)
				q.available.Release(1)
				return nil
			}
		} else {
			// tail lags the real end of the list; help it catch up.
			q.casTail(last, next)
		}
		sw.Once()
	}

	return &ContentionExceededError{Op: "Enqueue", Depth: q.maxUpdateDepth}
}

// TryDequeue removes and returns the head value if one is available.
// Returns ErrWouldBlock if the queue is empty, or a
// [*ContentionExceededError] if maxUpdateDepth consistency-check retries
// all failed to reach a stable answer.
func (q *LFU[T]) TryDequeue() (T, error) {
	var zero T
	sw := spin.Wait{}
	for attempt := 0; attempt < q.maxUpdateDepth; attempt++ {
		first := q.loadHead()
		last := q.loadTail()
		firstValuable := loadNext(first)

		if first != q.loadHead() {
			sw.Once()
			continue
		}
		if first == last {
			if firstValuable == nil {
				return zero, ErrWouldBlock
			}
			// tail lags; help it advance before retrying.
			q.casTail(last, firstValuable)
			sw.Once()
			continue
		}
		value := firstValuable.value
		if q.casHead(first, firstValuable) {
			return value, nil
		}
		// lost the race to another consumer; retry.
		sw.Once()
	}
	return zero, &ContentionExceededError{Op: "TryDequeue", Depth: q.maxUpdateDepth}
}

// WaitDequeue removes and returns the head value, blocking up to
// timeout. Returns ErrWouldBlock on deadline expiry, or whatever error
// TryDequeue's final attempt produced.
func (q *LFU[T]) WaitDequeue(timeout time.Duration) (T, error) {
	return q.waitDequeue(defaultClock, timeout)
}

func (q *LFU[T]) waitDequeue(clk Clock, timeout time.Duration) (T, error) {
	deadlineAt := deadline(clk, timeout)

	for {
		remaining := deadlineAt.Sub(clk.Now())
		if remaining <= 0 {
			break
		}
		if q.available.TryAcquireFor(remaining) {
			// As with the bounded ring, the semaphore only promises a
			// node existed at some point; a racing TryDequeue caller
			// may already have taken it.
			if value, err := q.TryDequeue(); err == nil {
				return value, nil
			}
			continue
		}
		break
	}

	return q.TryDequeue()
}

// WaitDequeueAsync schedules WaitDequeue(timeout) on a background
// goroutine and returns a channel that receives exactly one
// DequeueResult.
func (q *LFU[T]) WaitDequeueAsync(timeout time.Duration) <-chan DequeueResult[T] {
	result := make(chan DequeueResult[T], 1)
	go func() {
		v, err := q.WaitDequeue(timeout)
		result <- DequeueResult[T]{Value: v, Err: err}
	}()
	return result
}

// IsEmpty reports whether the queue currently holds no elements.
// precise retries the consistency check up to maxUpdateDepth times
// instead of accepting the first racy read. If every attempt is
// inconsistent, it panics with a [*ContentionExceededError]: the
// bool-only return leaves no channel to report that fault the way
// TryDequeue and Enqueue do, and the underlying algorithm offers no
// other answer once its retry budget is truly exhausted.
func (q *LFU[T]) IsEmpty(precise bool) bool {
	attempts := q.maxUpdateDepth
	if !precise {
		attempts = 1
	}
	for attempt := 0; attempt < attempts; attempt++ {
		first := q.loadHead()
		last := q.loadTail()
		if first == q.loadHead() {
			return first == last
		}
	}
	if !precise {
		return q.loadHead() == q.loadTail()
	}
	panic(&ContentionExceededError{Op: "IsEmpty", Depth: q.maxUpdateDepth})
}
