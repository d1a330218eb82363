// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fifo

import "unsafe"

// ptrSize is the size of a pointer in bytes.
const ptrSize = int(unsafe.Sizeof(uintptr(0)))

// pad is cache line padding to prevent false sharing between unrelated
// hot fields of the lock-free engines.
type pad [64]byte

// padShort is padding to fill a cache line after an 8-byte field.
type padShort [64 - 8]byte

// padPtr is padding to fill a cache line after a pointer-sized field.
type padPtr [64 - ptrSize]byte

// roundToPow2 rounds n up to the next power of 2, with a minimum of 2
// (n < 2 yields 2). LFB rounds its requested
// capacity this way so slot indexing can use a bitmask instead of a
// modulo; Cap reports the rounded value, which is always >= the
// requested capacity.
func roundToPow2(n int) int {
	if n < 2 {
		return 2
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return n + 1
}
