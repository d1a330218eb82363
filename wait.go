// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fifo

import (
	"sync"
	"time"
)

// waitForCond parks the calling goroutine on cond (whose associated mutex
// must already be held) until another goroutine wakes it or deadlineAt
// passes, whichever comes first.
//
// sync.Cond has no timed Wait; a one-shot timer broadcasting at the
// deadline is the standard substitute (the same shape used by
// internal/semaphore.Counting.TryAcquireFor). Callers must re-check their
// own predicate and deadline after this returns - spurious wakeups and
// deadline-driven wakeups look identical to the caller.
func waitForCond(cond *sync.Cond, deadlineAt time.Time) {
	remaining := time.Until(deadlineAt)
	if remaining <= 0 {
		return
	}
	// Broadcast under cond.L so the wakeup cannot slip in before this
	// goroutine has entered cond.Wait.
	timer := time.AfterFunc(remaining, func() {
		cond.L.Lock()
		cond.Broadcast()
		cond.L.Unlock()
	})
	defer timer.Stop()
	cond.Wait()
}
