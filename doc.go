// Package asymbarrier provides an asymmetric barrier, a synchronization
// primitive for read-mostly concurrent systems in which one updater
// occasionally publishes a new epoch and must be certain every waiter has
// observed the transition, while waiters on their fast path pay a single
// atomic load.
//
// # Architecture
//
// The core primitive is [Barrier]: one designated updater and a fixed number
// of waiters, coordinated through three cache-line padded counters. The
// updater opens an epoch with [Barrier.Update], and closes it with
// [Barrier.Commit]; each waiter acknowledges any open epoch on its next
// [Barrier.Check], which is a no-op (one load) while no epoch is open.
//
// [SymmBarrier] layers a ticket-lock discipline on top, promoting any of N
// peer goroutines to the updater role one at a time. While a peer waits for
// its turn it is not idle: the wait loop participates as one of the inner
// barrier's waiters, which is what makes the primitive symmetric.
//
// # Roles
//
// At most one goroutine may act as updater on a [Barrier] at a time, and
// exactly as many goroutines as the configured waiter count must act as
// waiters. [New] returns a pair of role handles, [Updater] and [Waiter], so
// that the updater surface can be owned exclusively and waiter code cannot
// accidentally open or close epochs. The methods on [Barrier] itself remain
// available for callers that manage role discipline by other means.
//
// # Ordering
//
// Every write the updater performs before [Barrier.Update] is visible to a
// waiter once its [Barrier.Check] returns from the slow path, and every
// write a waiter performs before reaching the sync point of its check is
// visible to the updater once [Barrier.Commit] returns. All counter accesses
// use sequentially consistent atomics, which subsume the (weaker) orderings
// the protocol requires.
//
// # Spinning
//
// All waits are busy-spins punctuated by a relaxation hint; no operation
// sleeps, parks, or enters the kernel. The default hint yields the processor
// ([runtime.Gosched]), which keeps tight loops safe when goroutines
// outnumber cores; [WithRelax] substitutes a different hint where spin
// latency matters more. The primitive suits short epochs with all peers
// runnable, and does not suit workloads where a peer may block on an
// unrelated resource mid-epoch.
//
// There is no cancellation and there are no timeouts. A missing waiter
// deadlocks the updater, and a peer that enters [SymmBarrier.Update] but
// never reaches [SymmBarrier.Commit] deadlocks all others; both are caller
// bugs the primitive cannot detect. Shutdown is layered above, e.g. by
// opening a final epoch that instructs waiters to exit.
//
// # Usage
//
//	u, w, err := asymbarrier.New(3)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// each of the 3 waiter goroutines:
//	for !done.Load() {
//	    w.Check()
//	    // ... read shared state ...
//	}
//
//	// the updater goroutine:
//	u.Update(true) // all waiters are now parked inside Check
//	// ... mutate shared state ...
//	u.Commit() // waiters resume
//
// Passing synced=false to Update returns immediately after the epoch is
// announced, allowing the updater to overlap its own work with waiter
// acknowledgement; the following Commit still waits for the full handshake.
package asymbarrier
