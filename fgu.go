// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fifo

import (
	"sync"
	"time"
)

// fguNode is a linked-list node: one value plus a next-link, protected by
// whichever of FGU's two locks currently owns it.
type fguNode[T any] struct {
	value T
	next  *fguNode[T]
}

// FGU is a fine-grained-lock unbounded FIFO queue.
//
// Two separate mutexes guard head and tail; a condition variable is
// associated with the head mutex. A dummy sentinel node (always present,
// value unused) makes head and tail independently lockable without
// coordinating on the last element: the list is empty iff head == tail,
// equivalently iff head.next == nil.
//
// Linearization point for Enqueue is the write to tail.next; for dequeue
// it is the reassignment of head.
type FGU[T any] struct {
	tailMu sync.Mutex
	tail   *fguNode[T]

	headMu   sync.Mutex
	notEmpty sync.Cond
	head     *fguNode[T]
}

// NewFGU creates an empty fine-grained-lock unbounded queue.
func NewFGU[T any]() *FGU[T] {
	dummy := &fguNode[T]{}
	q := &FGU[T]{head: dummy, tail: dummy}
	q.notEmpty.L = &q.headMu
	return q
}

// Enqueue adds value to the queue. Always returns nil: FGU has no retry
// budget to exhaust. The return value exists only to satisfy [Unbounded],
// whose [LFU] implementation can report contention on this same path.
func (q *FGU[T]) Enqueue(value T) error {
	node := &fguNode[T]{value: value}

	q.tailMu.Lock()
	q.tail.next = node
	q.tail = node
	q.tailMu.Unlock()

	// Signal does not require holding notEmpty.L; the head lock is only
	// needed to observe head.next, not to wake a waiter.
	q.notEmpty.Signal()
	return nil
}

// unsafeDequeue pops the head value. Caller must hold headMu.
func (q *FGU[T]) unsafeDequeue() (T, bool) {
	firstValuable := q.head.next
	if firstValuable == nil {
		var zero T
		return zero, false
	}
	value := firstValuable.value
	var clear T
	firstValuable.value = clear // drop the reference so the GC can reclaim it promptly
	q.head = firstValuable
	return value, true
}

// TryDequeue removes and returns the head value if available.
// Returns ErrWouldBlock if the queue is empty.
func (q *FGU[T]) TryDequeue() (T, error) {
	q.headMu.Lock()
	defer q.headMu.Unlock()
	v, ok := q.unsafeDequeue()
	if !ok {
		var zero T
		return zero, ErrWouldBlock
	}
	return v, nil
}

// WaitDequeue removes and returns the head value, blocking up to timeout.
// Returns ErrWouldBlock if timeout elapses with nothing available.
func (q *FGU[T]) WaitDequeue(timeout time.Duration) (T, error) {
	return q.waitDequeue(defaultClock, timeout)
}

func (q *FGU[T]) waitDequeue(clk Clock, timeout time.Duration) (T, error) {
	deadlineAt := deadline(clk, timeout)

	q.headMu.Lock()
	defer q.headMu.Unlock()
	for q.head.next == nil {
		if !clk.Now().Before(deadlineAt) {
			var zero T
			return zero, ErrWouldBlock
		}
		waitForCond(&q.notEmpty, deadlineAt)
	}
	v, _ := q.unsafeDequeue()
	return v, nil
}

// WaitDequeueAsync schedules WaitDequeue(timeout) on a background
// goroutine and returns a channel that receives exactly one
// DequeueResult.
func (q *FGU[T]) WaitDequeueAsync(timeout time.Duration) <-chan DequeueResult[T] {
	result := make(chan DequeueResult[T], 1)
	go func() {
		v, err := q.WaitDequeue(timeout)
		result <- DequeueResult[T]{Value: v, Err: err}
	}()
	return result
}

// IsEmpty reports whether the queue is empty. FGU has no approximate
// counter to check cheaply (only FGB does); both precise values take the
// head lock. The parameter is kept for symmetry with FGB/LFU/LFB.
func (q *FGU[T]) IsEmpty(bool) bool {
	q.headMu.Lock()
	defer q.headMu.Unlock()
	return q.head.next == nil
}
