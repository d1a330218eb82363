// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package fifo provides concurrent first-in/first-out queue engines for
// producer/consumer pipelines, worker pools, and bounded buffering between
// pipeline stages.
//
// Four engines are provided behind two contracts:
//
//   - [Bounded]: fixed capacity, enqueue may fail ([FGB], [LFB]).
//   - [Unbounded]: grows on demand, enqueue always succeeds ([FGU], [LFU]).
//
// Each contract has a fine-grained-lock implementation (separate head/tail
// mutexes over a linked list with a dummy sentinel) and a lock-free
// implementation (atomic operations with explicit memory ordering):
//
//	FGU - fine-grained-lock unbounded queue (two-lock linked list)
//	FGB - fine-grained-lock bounded queue (FGU + capacity counter + shutdown)
//	LFU - lock-free unbounded queue (Michael-Scott linked list)
//	LFB - lock-free bounded queue (Vyukov sequence-number ring)
//
// # Quick Start
//
//	q := fifo.NewLFB[Event](1024)
//
//	err := q.TryEnqueue(ev)
//	if fifo.IsWouldBlock(err) {
//	    // queue full - handle backpressure
//	}
//
//	elem, err := q.TryDequeue()
//	if err == nil {
//	    process(elem)
//	}
//
// # Blocking consumers
//
// All four engines support a blocking dequeue with a deadline:
//
//	elem, err := q.WaitDequeue(50 * time.Millisecond)
//	if fifo.IsWouldBlock(err) {
//	    // deadline expired with nothing available
//	}
//
// For callers that want to poll without parking a goroutine directly,
// WaitDequeueAsync schedules the wait on a background goroutine and hands
// back a channel:
//
//	result := <-q.WaitDequeueAsync(time.Second)
//	if result.Err == nil {
//	    process(result.Value)
//	}
//
// # Worker pool
//
//	jobs := fifo.NewLFB[Job](4096)
//
//	for range numWorkers {
//	    go func() {
//	        for {
//	            job, err := jobs.WaitDequeue(time.Second)
//	            if err == nil {
//	                job.Run()
//	            }
//	        }
//	    }()
//	}
//
//	func Submit(j Job) error {
//	    return jobs.TryEnqueue(j)
//	}
//
// # Pipeline stage (unbounded)
//
//	stage := fifo.NewLFU[Record](100) // max_update_depth = 100
//
//	go func() { // producer
//	    for r := range source {
//	        for fifo.IsContentionExceeded(stage.Enqueue(r)) {
//	            // pathological contention on the retry budget; back off
//	        }
//	    }
//	}()
//
//	go func() { // consumer
//	    for {
//	        r, err := stage.TryDequeue()
//	        if fifo.IsContentionExceeded(err) {
//	            // pathological contention on the retry budget; back off
//	            continue
//	        }
//	        if err == nil {
//	            sink(r)
//	        }
//	    }
//	}()
//
// # Choosing an engine
//
// FGU/FGB trade raw throughput for simplicity: two mutexes, a condition
// variable, predictable latency under any access pattern, and (FGB only)
// an explicit [Closer.Close] for graceful shutdown. LFU/LFB avoid blocking
// on the fast paths (TryEnqueue/TryDequeue never park a goroutine), at the
// cost of CAS retry loops and, for LFU, a bounded contention budget that
// can be exceeded under pathological contention (see
// [ContentionExceededError]). LFB's ring-buffer protocol carries no such
// budget: TryEnqueue/TryDequeue retry their CAS loop, with no retry limit,
// until they succeed or observe the ring full or empty.
//
// # Lifetime and shutdown
//
// Only [FGB] has a shutdown primitive. Calling [FGB.Close] while
// goroutines are parked in WaitDequeue wakes them all with ErrWouldBlock;
// subsequent operations on a closed FGB also return ErrWouldBlock. [LFU]
// and [LFB] have no equivalent: the caller must arrange externally that no
// goroutine is in, or will enter, a queue operation once the queue value
// is dropped. This is a correctness requirement for the CAS protocols
// themselves, not just a memory-safety one.
//
// # Error handling
//
// Queues return [ErrWouldBlock] when an operation cannot proceed
// immediately; this is a control-flow signal, never a failure.
//
//	for {
//	    err := q.TryEnqueue(item)
//	    if err == nil {
//	        break
//	    }
//	    if !fifo.IsWouldBlock(err) {
//	        return err // unexpected
//	    }
//	    time.Sleep(time.Microsecond)
//	}
//
// [LFU] additionally returns a [ContentionExceededError] from Enqueue and
// TryDequeue when its bounded retry budget (max_update_depth) is exhausted
// without making progress; this is a recoverable fault distinct from
// absence, never raised by the other three engines. See
// [IsContentionExceeded]. IsEmpty(precise=true) has no error return to
// report the same exhaustion through, so it panics with the same type
// instead.
//
// # Dependencies
//
// This package uses [code.hybscloud.com/iox] for semantic errors,
// [code.hybscloud.com/atomix] for atomic primitives with explicit memory
// ordering, and [code.hybscloud.com/spin] for CPU pause instructions in
// the lock-free engines' retry loops.
package fifo
