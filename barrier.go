package asymbarrier

import (
	"sync/atomic"

	"github.com/joeycumines/logiface"
)

// cacheLine is the assumed coherence granularity, in bytes. The counters are
// padded so that updater-written and waiter-written words never share a line
// with adjacent caller data.
const cacheLine = 64

type (
	// Barrier is an asymmetric barrier: one updater goroutine issues epochs,
	// and a fixed number of waiter goroutines acknowledge them.
	//
	// The zero value is a usable barrier for zero waiters; call Init, or use
	// the New factory, to configure a waiter count. Instances must not be
	// copied after first use.
	//
	// Role discipline is the caller's responsibility when using Barrier
	// directly: at most one goroutine may call Update/Commit concurrently,
	// and exactly as many goroutines as the configured waiter count must
	// call Check. The New factory returns Updater and Waiter handles that
	// encode this split in the type system.
	Barrier struct {
		// refcnt is the fixed waiter count, written at init only.
		refcnt atomic.Uint64
		_      [cacheLine - 8]byte

		// wcount holds the pending acknowledgements of the current epoch,
		// zero while no epoch is open. The updater stores refcnt to open an
		// epoch; each waiter decrements once.
		wcount atomic.Uint64
		_      [cacheLine - 8]byte

		// synced counts waiters that reached the sync point. Waiters
		// increment; the updater clears it to close the epoch.
		synced atomic.Uint64
		_      [cacheLine - 8]byte

		relax   func()
		logger  *logiface.Logger[logiface.Event]
		metrics *metrics
	}

	// Updater is the exclusive updater-role handle for a Barrier, returned
	// by New. It should be owned by a single goroutine.
	Updater struct {
		b *Barrier
	}

	// Waiter is the waiter-role handle for a Barrier, returned by New. The
	// same handle is shared by all waiter goroutines.
	Waiter struct {
		b *Barrier
	}
)

// New initializes a Barrier for the given number of waiters, returning the
// pair of role handles. The updater handle must end up owned by exactly one
// goroutine; the waiter handle is shared by exactly waiters goroutines.
//
// A zero waiter count is legal: epochs open and commit immediately, and
// Check never takes the slow path.
func New(waiters uint64, opts ...Option) (*Updater, *Waiter, error) {
	cfg, err := resolveOptions(opts)
	if err != nil {
		return nil, nil, err
	}

	b := newBarrier(cfg)
	b.Init(waiters)

	b.logger.Debug().
		Uint64(`waiters`, waiters).
		Bool(`metrics`, b.metrics != nil).
		Log(`asymbarrier: barrier initialized`)

	return &Updater{b: b}, &Waiter{b: b}, nil
}

func newBarrier(cfg *barrierOptions) *Barrier {
	b := Barrier{
		relax:  cfg.relax,
		logger: cfg.logger,
	}
	if cfg.metricsEnabled {
		b.metrics = new(metrics)
	}
	return &b
}

func (b *Barrier) ok() bool {
	return b != nil
}

// Init configures the barrier for the given number of waiters and resets it
// to the idle state. Calling Init on a barrier with active updater or waiter
// goroutines corrupts the protocol.
func (b *Barrier) Init(waiters uint64) {
	if !b.ok() {
		return
	}

	b.refcnt.Store(waiters)
	b.wcount.Store(0)
	b.synced.Store(0)
}

// Waiters returns the fixed waiter count the barrier was initialized with.
func (b *Barrier) Waiters() uint64 {
	if !b.ok() {
		return 0
	}
	return b.refcnt.Load()
}

// Update opens a new epoch. Updater role only.
//
// The store that opens the epoch also publishes every write the updater made
// beforehand; callers mutate shared state immediately before Update (or
// between Update and Commit, for state waiters only read after the epoch).
//
// If synced is true, Update spins until every waiter has observed the epoch,
// i.e. all waiters are parked inside Check when it returns. If synced is
// false it returns as soon as the epoch is announced, letting the updater
// overlap work with waiter acknowledgement; the following Commit still waits
// for the full handshake.
func (b *Barrier) Update(synced bool) {
	if !b.ok() {
		return
	}

	if m := b.metrics; m != nil {
		m.epochsOpened.Add(1)
	}

	b.wcount.Store(b.refcnt.Load())

	for synced && b.wcount.Load() != 0 {
		b.pause()
	}
}

// Commit closes the epoch opened by the previous Update, releasing all
// waiters from their sync point. Updater role only.
//
// When Commit returns the barrier is idle again, and every write the waiters
// made before reaching their sync point is visible to the updater.
func (b *Barrier) Commit() {
	if !b.ok() {
		return
	}

	for b.synced.Load() != b.refcnt.Load() {
		b.pause()
	}

	b.synced.Store(0)

	if m := b.metrics; m != nil {
		m.epochsCommitted.Add(1)
	}
}

// Check acknowledges any open epoch. Waiter role only.
//
// While no epoch is open this is the fast path: a single atomic load. During
// an epoch, Check decrements the acknowledgement counter, waits for every
// other waiter to do the same, then gathers at the sync point until the
// updater commits.
func (b *Barrier) Check() {
	if !b.ok() {
		return
	}

	if b.wcount.Load() == 0 {
		if m := b.metrics; m != nil {
			m.checksFast.Add(1)
		}
		return
	}

	if m := b.metrics; m != nil {
		m.checksSlow.Add(1)
	}

	b.wcount.Add(^uint64(0))

	for b.wcount.Load() != 0 {
		b.pause()
	}

	b.synced.Add(1)

	for b.synced.Load() != 0 {
		b.pause()
	}
}

// pause emits the spin relaxation hint, falling back to the package default
// so that a zero-value Barrier never spins bare.
func (b *Barrier) pause() {
	if m := b.metrics; m != nil {
		m.spins.Add(1)
	}
	if b.relax != nil {
		b.relax()
	} else {
		defaultRelax()
	}
}

func (x *Updater) ok() bool {
	return x != nil && x.b != nil
}

// Update opens a new epoch, see Barrier.Update.
func (x *Updater) Update(synced bool) {
	if x.ok() {
		x.b.Update(synced)
	}
}

// Commit closes the current epoch, see Barrier.Commit.
func (x *Updater) Commit() {
	if x.ok() {
		x.b.Commit()
	}
}

// Barrier returns the underlying barrier.
func (x *Updater) Barrier() *Barrier {
	if x == nil {
		return nil
	}
	return x.b
}

func (x *Waiter) ok() bool {
	return x != nil && x.b != nil
}

// Check acknowledges any open epoch, see Barrier.Check.
func (x *Waiter) Check() {
	if x.ok() {
		x.b.Check()
	}
}

// Barrier returns the underlying barrier.
func (x *Waiter) Barrier() *Barrier {
	if x == nil {
		return nil
	}
	return x.b
}
