// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fifo_test

import (
	"sync"
	"testing"
	"time"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/iox"
	"code.hybscloud.com/fifo"
)

// mpmcLinearizability drives numP producers, each producing itemsPerProd
// items, and numC consumers, which together consume all numP*itemsPerProd
// items, through enqueue/dequeue closures supplied by the caller, then
// checks that every value was
// consumed exactly once: no duplicates (a linearizability violation)
// and, since none of this module's engines ever legitimately drops an
// item a caller keeps retrying to enqueue, no missing values either.
//
// Values are encoded as producerID*100000 + sequence.
type mpmcLinearizability struct {
	t            *testing.T
	numP, numC   int
	itemsPerProd int
	timeout      time.Duration
}

func (lt *mpmcLinearizability) run(
	enqueue func(v int) error,
	dequeue func() (int, error),
) {
	t := lt.t
	if fifo.RaceEnabled {
		t.Skip("skip: linearizability test requires concurrent access")
	}

	var wg sync.WaitGroup
	expectedTotal := lt.numP * lt.itemsPerProd
	seen := make([]atomix.Int32, expectedTotal)
	var consumedCount atomix.Int64
	var timedOut atomix.Bool

	for p := range lt.numP {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			deadline := time.Now().Add(lt.timeout)
			backoff := iox.Backoff{}
			for i := range lt.itemsPerProd {
				v := id*100000 + i
				for enqueue(v) != nil {
					if time.Now().After(deadline) {
						timedOut.Store(true)
						return
					}
					backoff.Wait()
				}
				backoff.Reset()
			}
		}(p)
	}

	for range lt.numC {
		wg.Add(1)
		go func() {
			defer wg.Done()
			deadline := time.Now().Add(lt.timeout)
			backoff := iox.Backoff{}
			for consumedCount.Load() < int64(expectedTotal) {
				if time.Now().After(deadline) {
					timedOut.Store(true)
					return
				}
				v, err := dequeue()
				if err != nil {
					backoff.Wait()
					continue
				}
				producerID := v / 100000
				seq := v % 100000
				if producerID < 0 || producerID >= lt.numP || seq < 0 || seq >= lt.itemsPerProd {
					t.Errorf("value out of range: %d", v)
					consumedCount.Add(1)
					continue
				}
				idx := producerID*lt.itemsPerProd + seq
				seen[idx].Add(1)
				consumedCount.Add(1)
				backoff.Reset()
			}
		}()
	}

	wg.Wait()

	if timedOut.Load() {
		t.Fatalf("timed out: consumed %d/%d", consumedCount.Load(), expectedTotal)
	}

	var missing, duplicates int
	for i := range expectedTotal {
		switch count := seen[i].Load(); {
		case count == 0:
			missing++
		case count > 1:
			duplicates++
		}
	}
	if duplicates > 0 {
		t.Errorf("linearizability violation: %d duplicates detected", duplicates)
	}
	if missing > 0 {
		t.Errorf("%d items never consumed (expected exactly-once delivery)", missing)
	}
}

// scale returns the stress matrix's producer/consumer/item counts,
// scaled down unless -short is absent, matching the full 8x8x10000
// matrix only in long-running CI invocations.
func scale(t *testing.T) (numP, numC, itemsPerProd int) {
	if testing.Short() {
		return 4, 4, 200
	}
	t.Log("running full stress matrix (8 producers x 8 consumers x 10000 items)")
	return 8, 8, 10000
}

func TestLFUMPMCStress(t *testing.T) {
	numP, numC, itemsPerProd := scale(t)
	q := fifo.NewLFUDefault[int]()
	lt := &mpmcLinearizability{t: t, numP: numP, numC: numC, itemsPerProd: itemsPerProd, timeout: 30 * time.Second}
	lt.run(
		q.Enqueue,
		q.TryDequeue,
	)
}

func TestLFBMPMCStress(t *testing.T) {
	numP, numC, itemsPerProd := scale(t)
	q := fifo.NewLFB[int](1024)
	lt := &mpmcLinearizability{t: t, numP: numP, numC: numC, itemsPerProd: itemsPerProd, timeout: 30 * time.Second}
	lt.run(q.TryEnqueue, q.TryDequeue)
}

func TestFGUMPMCStress(t *testing.T) {
	numP, numC, itemsPerProd := scale(t)
	q := fifo.NewFGU[int]()
	lt := &mpmcLinearizability{t: t, numP: numP, numC: numC, itemsPerProd: itemsPerProd, timeout: 30 * time.Second}
	lt.run(
		q.Enqueue,
		q.TryDequeue,
	)
}

func TestFGBMPMCStress(t *testing.T) {
	numP, numC, itemsPerProd := scale(t)
	q := fifo.NewFGB[int](1024)
	lt := &mpmcLinearizability{t: t, numP: numP, numC: numC, itemsPerProd: itemsPerProd, timeout: 30 * time.Second}
	lt.run(q.TryEnqueue, q.TryDequeue)
}
