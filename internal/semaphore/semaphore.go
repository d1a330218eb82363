// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package semaphore provides the counting semaphore used by the lock-free
// queue engines to implement WaitDequeue: Release(1) per successful
// enqueue, TryAcquireFor(timeout) per blocking dequeue attempt.
//
// This is the blocking signal named as an external collaborator in the
// parent package's design (the core algorithms only require release/
// try-acquire-with-timeout semantics); no dependency in this module's
// stack (atomix, iox, spin) provides a counting semaphore, and
// golang.org/x/sync/semaphore.Weighted is shaped for admission control
// (it starts full, not empty) rather than a zero-start event counter, so
// it is not a fit here. The implementation below follows the same
// mutex+condition-variable shape used elsewhere in the corpus for
// cancelable waits, with a one-shot timer standing in for the missing
// timed variant of sync.Cond.Wait.
package semaphore

import (
	"sync"
	"time"
)

// Counting is an unbounded counting semaphore: Release may be called any
// number of times before a matching Acquire, and the count has no upper
// bound.
type Counting struct {
	mu    sync.Mutex
	cond  sync.Cond
	count int64

	condInit sync.Once
}

func (s *Counting) init() {
	s.condInit.Do(func() { s.cond.L = &s.mu })
}

// Release increments the semaphore's count by n and wakes waiters.
func (s *Counting) Release(n int64) {
	if n <= 0 {
		return
	}
	s.init()
	s.mu.Lock()
	s.count += n
	s.mu.Unlock()
	if n == 1 {
		s.cond.Signal()
	} else {
		s.cond.Broadcast()
	}
}

// TryAcquire attempts to decrement the count by 1 without blocking.
// Reports whether it succeeded.
func (s *Counting) TryAcquire() bool {
	s.init()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.count > 0 {
		s.count--
		return true
	}
	return false
}

// TryAcquireFor blocks until the count becomes positive (decrementing it
// by 1) or timeout elapses, whichever comes first. Reports whether it
// acquired.
func (s *Counting) TryAcquireFor(timeout time.Duration) bool {
	s.init()

	if timeout <= 0 {
		return s.TryAcquire()
	}

	deadlineAt := time.Now().Add(timeout)

	// A one-shot timer broadcasts once the deadline passes, waking every
	// goroutine parked on s.cond so each can re-check its own deadline.
	// sync.Cond has no timed Wait; this is the standard substitute.
	timer := time.AfterFunc(timeout, func() {
		s.mu.Lock()
		s.cond.Broadcast()
		s.mu.Unlock()
	})
	defer timer.Stop()

	s.mu.Lock()
	defer s.mu.Unlock()
	for s.count == 0 {
		if !time.Now().Before(deadlineAt) {
			return false
		}
		s.cond.Wait()
	}
	s.count--
	return true
}
