package asymbarrier_test

import (
	"fmt"
	"sync"
	"sync/atomic"

	asymbarrier "github.com/joeycumines/go-asymbarrier"
)

// Demonstrates the asymmetric form: one updater publishes epochs, readers
// pay a single load per iteration while no epoch is open.
func Example() {
	const waiters = 2

	u, w, err := asymbarrier.New(waiters)
	if err != nil {
		panic(err)
	}

	var (
		shared atomic.Uint64
		stop   atomic.Bool
		wg     sync.WaitGroup
	)

	for i := 0; i < waiters; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var last uint64
			for !stop.Load() {
				w.Check()
				// the value never regresses: every update happened inside
				// an epoch this reader acknowledged
				if v := shared.Load(); v < last {
					panic(`observed stale value`)
				} else {
					last = v
				}
			}
		}()
	}

	for i := 0; i < 3; i++ {
		u.Update(true) // all readers are now parked inside Check
		shared.Add(1)
		u.Commit() // readers resume
	}

	stop.Store(true)
	wg.Wait()

	fmt.Println(shared.Load())

	// output:
	// 3
}

// Demonstrates the symmetric form: every peer takes the updater role in
// turn, and peers that finish early keep servicing the barrier until all
// have drained.
func ExampleSymmBarrier() {
	const peers = 3

	s, err := asymbarrier.NewSymm(peers)
	if err != nil {
		panic(err)
	}

	var (
		counter atomic.Uint64
		pending atomic.Uint64
		wg      sync.WaitGroup
	)
	pending.Store(peers)

	for i := 0; i < peers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for n := 0; n < 2; n++ {
				s.Update(true)
				// exclusive: a plain read-modify-write cannot be torn
				counter.Store(counter.Load() + 1)
				s.Commit()
			}

			// drain: peers still iterating count on us as a waiter
			pending.Add(^uint64(0))
			for pending.Load() != 0 {
				s.Check()
			}
		}()
	}

	wg.Wait()

	fmt.Println(counter.Load())

	// output:
	// 6
}
