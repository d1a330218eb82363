// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fifo

import (
	"sync"
	"time"

	"code.hybscloud.com/atomix"
)

// fgbNode is FGB's own linked-list node - kept independent from fguNode
// the way the original source keeps FGLockBoundedQueue's FGNode separate
// from FGLockUnboundedQueue's, since the two engines never share a list
// implementation.
type fgbNode[T any] struct {
	value T
	next  *fgbNode[T]
}

// FGB is a fine-grained-lock bounded FIFO queue: an [FGU]-shaped two-lock
// linked list plus an approximate size counter, a size limit, and a
// soft-shutdown flag.
//
// The size counter is eventually consistent with the list length; callers
// relying on an exact count must use the precise IsEmpty/IsFull queries.
type FGB[T any] struct {
	sizeLimit int64

	tailMu sync.Mutex
	tail   *fgbNode[T]

	headMu   sync.Mutex
	notEmpty sync.Cond
	head     *fgbNode[T]

	sizeCounter atomix.Int64
	isShutdown  atomix.Bool
}

// NewFGB creates an empty fine-grained-lock bounded queue with the given
// size limit. Panics if sizeLimit is not positive.
func NewFGB[T any](sizeLimit int) *FGB[T] {
	if sizeLimit <= 0 {
		panic("fifo: FGB size limit must be positive")
	}
	dummy := &fgbNode[T]{}
	q := &FGB[T]{sizeLimit: int64(sizeLimit), head: dummy, tail: dummy}
	q.notEmpty.L = &q.headMu
	return q
}

func (q *FGB[T]) operationsAllowed() bool {
	return !q.isShutdown.Load()
}

func (q *FGB[T]) unsafeIsEmpty() bool {
	return q.head.next == nil
}

// unsafeDequeue pops the head value. Caller must hold headMu.
func (q *FGB[T]) unsafeDequeue() (T, bool) {
	firstValuable := q.head.next
	if firstValuable == nil {
		var zero T
		return zero, false
	}
	value := firstValuable.value
	var clear T
	firstValuable.value = clear
	q.head = firstValuable
	return value, true
}

// TryEnqueue adds value if there is capacity and the queue is live.
// Returns ErrWouldBlock if the queue is full or closed.
func (q *FGB[T]) TryEnqueue(value T) error {
	// Fast path: decrease mutex contention when obviously full.
	if q.sizeCounter.Load() >= q.sizeLimit {
		return ErrWouldBlock
	}

	node := &fgbNode[T]{value: value}

	q.tailMu.Lock()
	if !q.operationsAllowed() {
		q.tailMu.Unlock()
		return ErrWouldBlock
	}
	// Reserve a slot by incrementing the counter and checking the bound;
	// roll back if we overshot.
	if q.sizeCounter.Add(1) > q.sizeLimit {
		q.sizeCounter.Add(-1)
		q.tailMu.Unlock()
		return ErrWouldBlock
	}
	q.tail.next = node
	q.tail = node
	q.tailMu.Unlock()

	q.notEmpty.Signal()
	return nil
}

// TryDequeue removes and returns the head value if available.
// Returns ErrWouldBlock if the queue is empty or closed.
func (q *FGB[T]) TryDequeue() (T, error) {
	var zero T
	// Fast path: decrease mutex contention when obviously empty.
	if q.sizeCounter.Load() == 0 {
		return zero, ErrWouldBlock
	}

	q.headMu.Lock()
	if !q.operationsAllowed() || q.unsafeIsEmpty() {
		q.headMu.Unlock()
		return zero, ErrWouldBlock
	}
	v, _ := q.unsafeDequeue()
	q.headMu.Unlock()

	q.sizeCounter.Add(-1)
	return v, nil
}

// WaitDequeue removes and returns the head value, blocking up to timeout.
// Returns ErrWouldBlock on deadline expiry or shutdown.
func (q *FGB[T]) WaitDequeue(timeout time.Duration) (T, error) {
	return q.waitDequeue(defaultClock, timeout)
}

func (q *FGB[T]) waitDequeue(clk Clock, timeout time.Duration) (T, error) {
	var zero T
	deadlineAt := deadline(clk, timeout)

	q.headMu.Lock()
	for q.operationsAllowed() && q.unsafeIsEmpty() {
		if !clk.Now().Before(deadlineAt) {
			q.headMu.Unlock()
			return zero, ErrWouldBlock
		}
		waitForCond(&q.notEmpty, deadlineAt)
	}
	if !q.operationsAllowed() {
		q.headMu.Unlock()
		return zero, ErrWouldBlock
	}
	v, ok := q.unsafeDequeue()
	q.headMu.Unlock()
	if !ok {
		return zero, ErrWouldBlock
	}

	q.sizeCounter.Add(-1)
	return v, nil
}

// WaitDequeueAsync schedules WaitDequeue(timeout) on a background
// goroutine and returns a channel that receives exactly one
// DequeueResult.
func (q *FGB[T]) WaitDequeueAsync(timeout time.Duration) <-chan DequeueResult[T] {
	result := make(chan DequeueResult[T], 1)
	go func() {
		v, err := q.WaitDequeue(timeout)
		result <- DequeueResult[T]{Value: v, Err: err}
	}()
	return result
}

// IsEmpty reports whether the queue is empty. The approximate form reads
// the size counter; precise takes the head lock.
func (q *FGB[T]) IsEmpty(precise bool) bool {
	if !precise {
		return q.sizeCounter.Load() == 0
	}
	q.headMu.Lock()
	defer q.headMu.Unlock()
	return q.unsafeIsEmpty()
}

// IsFull reports whether the queue is at capacity. The approximate form
// reads the size counter; precise takes the tail lock.
func (q *FGB[T]) IsFull(precise bool) bool {
	if !precise {
		return q.sizeCounter.Load() >= q.sizeLimit
	}
	q.tailMu.Lock()
	defer q.tailMu.Unlock()
	return q.sizeCounter.Load() >= q.sizeLimit
}

// Cap returns the queue's fixed size limit.
func (q *FGB[T]) Cap() int {
	return int(q.sizeLimit)
}

// Close shuts the queue down: every subsequent operation returns
// ErrWouldBlock, and any goroutine parked in WaitDequeue wakes immediately
// with ErrWouldBlock. Close is idempotent and safe to call concurrently
// with any other method.
func (q *FGB[T]) Close() {
	q.isShutdown.Store(true)
	// Wake every waiter; they will observe !operationsAllowed() and
	// return empty rather than re-checking the (now irrelevant) list.
	q.headMu.Lock()
	q.notEmpty.Broadcast()
	q.headMu.Unlock()
}
