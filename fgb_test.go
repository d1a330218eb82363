// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fifo_test

import (
	"errors"
	"testing"
	"time"

	"code.hybscloud.com/fifo"
)

func TestFGBBasic(t *testing.T) {
	q := fifo.NewFGB[int](4)

	if q.Cap() != 4 {
		t.Fatalf("Cap: got %d, want 4", q.Cap())
	}

	for i := range 4 {
		if err := q.TryEnqueue(i + 100); err != nil {
			t.Fatalf("TryEnqueue(%d): %v", i, err)
		}
	}

	if !q.IsFull(true) {
		t.Fatalf("IsFull after filling to capacity: got false, want true")
	}
	if err := q.TryEnqueue(999); !errors.Is(err, fifo.ErrWouldBlock) {
		t.Fatalf("TryEnqueue on full queue: got %v, want ErrWouldBlock", err)
	}

	for i := range 4 {
		v, err := q.TryDequeue()
		if err != nil {
			t.Fatalf("TryDequeue(%d): %v", i, err)
		}
		if v != i+100 {
			t.Fatalf("TryDequeue(%d): got %d, want %d", i, v, i+100)
		}
	}

	if !q.IsEmpty(true) {
		t.Fatalf("IsEmpty after draining: got false, want true")
	}
	if _, err := q.TryDequeue(); !errors.Is(err, fifo.ErrWouldBlock) {
		t.Fatalf("TryDequeue on empty queue: got %v, want ErrWouldBlock", err)
	}
}

func TestFGBOverflowThenDrainRefillsCapacity(t *testing.T) {
	q := fifo.NewFGB[int](2)

	if err := q.TryEnqueue(1); err != nil {
		t.Fatalf("TryEnqueue(1): %v", err)
	}
	if err := q.TryEnqueue(2); err != nil {
		t.Fatalf("TryEnqueue(2): %v", err)
	}
	if err := q.TryEnqueue(3); !errors.Is(err, fifo.ErrWouldBlock) {
		t.Fatalf("TryEnqueue beyond capacity: got %v, want ErrWouldBlock", err)
	}

	if v, err := q.TryDequeue(); err != nil || v != 1 {
		t.Fatalf("TryDequeue: got (%d, %v), want (1, nil)", v, err)
	}

	if err := q.TryEnqueue(3); err != nil {
		t.Fatalf("TryEnqueue(3) after freeing a slot: %v", err)
	}
}

func TestFGBWaitDequeueTimeout(t *testing.T) {
	q := fifo.NewFGB[int](4)

	start := time.Now()
	_, err := q.WaitDequeue(20 * time.Millisecond)
	elapsed := time.Since(start)

	if !errors.Is(err, fifo.ErrWouldBlock) {
		t.Fatalf("WaitDequeue on empty: got %v, want ErrWouldBlock", err)
	}
	if elapsed < 20*time.Millisecond {
		t.Fatalf("WaitDequeue returned after %v, want >= 20ms", elapsed)
	}
}

func TestFGBCloseWakesWaiters(t *testing.T) {
	q := fifo.NewFGB[int](4)
	done := make(chan error, 1)

	go func() {
		_, err := q.WaitDequeue(time.Second)
		done <- err
	}()

	time.Sleep(10 * time.Millisecond)
	q.Close()

	select {
	case err := <-done:
		if !errors.Is(err, fifo.ErrWouldBlock) {
			t.Fatalf("WaitDequeue after Close: got %v, want ErrWouldBlock", err)
		}
	case <-time.After(time.Second):
		t.Fatal("WaitDequeue did not wake up after Close")
	}

	if err := q.TryEnqueue(1); !errors.Is(err, fifo.ErrWouldBlock) {
		t.Fatalf("TryEnqueue after Close: got %v, want ErrWouldBlock", err)
	}
	if _, err := q.TryDequeue(); !errors.Is(err, fifo.ErrWouldBlock) {
		t.Fatalf("TryDequeue after Close: got %v, want ErrWouldBlock", err)
	}
}

func TestFGBCloseIsIdempotent(t *testing.T) {
	q := fifo.NewFGB[int](4)
	q.Close()
	q.Close()
}

func TestFGBNewPanicsOnNonPositiveSizeLimit(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("NewFGB(0): expected panic, got none")
		}
	}()
	fifo.NewFGB[int](0)
}
