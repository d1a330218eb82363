// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fifo

import "time"

// Clock is the abstract monotonic time source used to compute deadlines
// for WaitDequeue. The default implementation ([systemClock]) wraps
// time.Now, whose returned values already carry a monotonic reading on
// every supported platform.
//
// No library in this module's dependency set (atomix, iox, spin) exposes
// a clock abstraction; Clock is deliberately minimal so a fake clock can
// be substituted in deadline-bound tests without pulling in a dependency
// whose only job here is two methods.
type Clock interface {
	// Now returns the current instant.
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// defaultClock is shared by every engine constructor that does not take
// an explicit Clock.
var defaultClock Clock = systemClock{}

// deadline computes the instant timeout in the future, per clock.
func deadline(clk Clock, timeout time.Duration) time.Time {
	return clk.Now().Add(timeout)
}
