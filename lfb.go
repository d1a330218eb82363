// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fifo

import (
	"time"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"

	"code.hybscloud.com/fifo/internal/semaphore"
)

// lfbSlot is one ring slot: a sequence number plus its value. The
// sequence takes one of two meanings relative to the slot's index i and
// the number of laps k already completed around the ring:
//   - i + k*capacity       : empty, ready for the k-th enqueue
//   - i + k*capacity + 1   : full, ready for the k-th dequeue
type lfbSlot[T any] struct {
	seq  atomix.Uint64
	data T
	_    padShort
}

// LFB is a lock-free bounded FIFO queue: a Vyukov-style ring buffer
// indexed by per-slot sequence numbers, giving every slot its own
// enqueue/dequeue handshake instead of a single lock or a pair of them.
//
// Capacity is rounded up to the next power of 2 (minimum 2) so slot
// indexing can use a bitmask; Cap reports the rounded value.
type LFB[T any] struct {
	_        pad
	tail     atomix.Uint64 // next position to enqueue
	_        pad
	head     atomix.Uint64 // next position to dequeue
	_        pad
	buffer   []lfbSlot[T]
	mask     uint64
	capacity uint64

	available semaphore.Counting
}

// NewLFB creates an empty lock-free bounded queue able to hold at least
// capacity elements. Panics if capacity is less than 1.
func NewLFB[T any](capacity int) *LFB[T] {
	if capacity < 1 {
		panic("fifo: LFB capacity must be positive")
	}
	n := uint64(roundToPow2(capacity))
	q := &LFB[T]{
		buffer:   make([]lfbSlot[T], n),
		mask:     n - 1,
		capacity: n,
	}
	for i := uint64(0); i < n; i++ {
		q.buffer[i].seq.StoreRelaxed(i)
	}
	return q
}

// TryEnqueue adds value if the ring has a free slot.
// Returns ErrWouldBlock if the queue is full.
func (q *LFB[T]) TryEnqueue(value T) error {
	sw := spin.Wait{}
	for {
		tail := q.tail.LoadAcquire()
		slot := &q.buffer[tail&q.mask]
		seq := slot.seq.LoadAcquire()
		diff := int64(seq) - int64(tail)

		switch {
		case diff == 0:
			if q.tail.CompareAndSwapAcqRel(tail, tail+1) {
				slot.data = value
				slot.seq.StoreRelease(tail + 1)
				q.available.Release(1)
				return nil
			}
		case diff < 0:
			// The slot this position would claim is still on the
			// previous lap: re-read tail once before declaring full,
			// since a concurrent dequeue may have just freed it.
			if q.tail.LoadAcquire() == tail {
				return ErrWouldBlock
			}
		}
		sw.Once()
	}
}

// TryDequeue removes and returns the head value if one is available.
// Returns ErrWouldBlock if the queue is empty.
func (q *LFB[T]) TryDequeue() (T, error) {
	return q.tryDequeue(true)
}

// tryDequeue pops the head slot. takePermit is false when the caller has
// already taken the semaphore permit for this element (WaitDequeue).
func (q *LFB[T]) tryDequeue(takePermit bool) (T, error) {
	sw := spin.Wait{}
	for {
		head := q.head.LoadAcquire()
		slot := &q.buffer[head&q.mask]
		seq := slot.seq.LoadAcquire()
		diff := int64(seq) - int64(head+1)

		switch {
		case diff == 0:
			if q.head.CompareAndSwapAcqRel(head, head+1) {
				value := slot.data
				var zero T
				slot.data = zero
				slot.seq.StoreRelease(head + q.capacity)
				// Keep the semaphore's count in step with the number
				// of filled slots still waiting to be taken, whether
				// this dequeue arrived via TryDequeue directly or via
				// WaitDequeue's TryAcquireFor (which already took the
				// permit). A miss here (count already at zero because a
				// racing waiter drained it first) is harmless: it only
				// means one fewer future TryAcquireFor call returns
				// instantly.
				if takePermit {
					q.available.TryAcquire()
				}
				return value, nil
			}
		case diff < 0:
			var zero T
			return zero, ErrWouldBlock
		}
		sw.Once()
	}
}

// WaitDequeue removes and returns the head value, blocking up to
// timeout. Returns ErrWouldBlock on deadline expiry.
func (q *LFB[T]) WaitDequeue(timeout time.Duration) (T, error) {
	return q.waitDequeue(defaultClock, timeout)
}

func (q *LFB[T]) waitDequeue(clk Clock, timeout time.Duration) (T, error) {
	deadlineAt := deadline(clk, timeout)

	for {
		remaining := deadlineAt.Sub(clk.Now())
		if remaining <= 0 {
			break
		}
		if q.available.TryAcquireFor(remaining) {
			// The semaphore only promises a slot was filled at some
			// point; a racing TryDequeue caller may have already
			// taken it, so this can still come back empty.
			if value, err := q.tryDequeue(false); err == nil {
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
func (q *LFB[T]) WaitDequeueAsync(timeout time.Duration) <-chan DequeueResult[T] {
	result := make(chan DequeueResult[T], 1)
	go func() {
		v, err := q.WaitDequeue(timeout)
		result <- DequeueResult[T]{Value: v, Err: err}
	}()
	return result
}

// IsEmpty reports whether the queue currently holds no elements.
// precise is honored on a best-effort basis: lock-free engines have no
// single authoritative snapshot, so both forms compare the current head
// and tail positions; precise additionally retries a bounded number of
// times to settle a position that is changing concurrently.
func (q *LFB[T]) IsEmpty(precise bool) bool {
	attempts := 1
	if precise {
		attempts = 8
	}
	for i := 0; i < attempts; i++ {
		head := q.head.LoadAcquire()
		tail := q.tail.LoadAcquire()
		if head == q.head.LoadAcquire() {
			return head == tail
		}
	}
	return q.head.LoadAcquire() == q.tail.LoadAcquire()
}

// IsFull reports whether the queue currently has no free slot. See
// IsEmpty for the meaning of precise.
func (q *LFB[T]) IsFull(precise bool) bool {
	attempts := 1
	if precise {
		attempts = 8
	}
	for i := 0; i < attempts; i++ {
		head := q.head.LoadAcquire()
		tail := q.tail.LoadAcquire()
		if head == q.head.LoadAcquire() {
			return tail-head >= q.capacity
		}
	}
	head := q.head.LoadAcquire()
	tail := q.tail.LoadAcquire()
	return tail-head >= q.capacity
}

// Cap returns the ring's capacity, rounded up from the requested value
// to the next power of 2.
func (q *LFB[T]) Cap() int {
	return int(q.capacity)
}
