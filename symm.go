package asymbarrier

import "sync/atomic"

// SymmBarrier is a symmetric barrier built on the asymmetric one: any of N
// peer goroutines may take the updater role, one at a time, serialized by a
// ticket-lock discipline. Peers waiting for their ticket are not idle - the
// wait loop participates as one of the inner barrier's waiters, serving
// whichever peer currently holds the updater role.
//
// The zero value is a usable barrier for a single peer (all operations are
// no-ops); call Init, or use the NewSymm factory, to configure a peer count.
// Instances must not be copied after first use.
//
// A peer that stops calling Check (or Update) while others still iterate may
// deadlock them: the remaining peers count on it as an inner-barrier waiter.
// Callers that let peers finish at different times should keep a pending-peer
// count and have finished peers loop on Check until it drains.
type SymmBarrier struct {
	// workers is the fixed peer count, written at init only.
	workers atomic.Uint64
	_       [cacheLine - 8]byte

	// waiting is the next-ticket counter; each Update draws from it.
	waiting atomic.Uint64
	_       [cacheLine - 8]byte

	// serving is the now-serving counter; the peer whose ticket matches it
	// holds the updater role.
	serving atomic.Uint64
	_       [cacheLine - 8]byte

	// asymb is the inner barrier, sized for workers-1 waiters.
	asymb Barrier
}

// NewSymm initializes a SymmBarrier for the given number of peer goroutines.
//
// A peer count of zero or one yields a degenerate barrier whose operations
// are all no-ops - one goroutine does not need a barrier to itself.
func NewSymm(workers uint64, opts ...Option) (*SymmBarrier, error) {
	cfg, err := resolveOptions(opts)
	if err != nil {
		return nil, err
	}

	var s SymmBarrier
	s.asymb.relax = cfg.relax
	s.asymb.logger = cfg.logger
	if cfg.metricsEnabled {
		s.asymb.metrics = new(metrics)
	}
	s.Init(workers)

	s.asymb.logger.Debug().
		Uint64(`workers`, workers).
		Bool(`metrics`, s.asymb.metrics != nil).
		Log(`asymbarrier: symmetric barrier initialized`)

	return &s, nil
}

func (s *SymmBarrier) ok() bool {
	return s != nil
}

// active reports whether the barrier coordinates more than one peer; all
// operations short-circuit otherwise.
func (s *SymmBarrier) active() bool {
	return s.ok() && s.workers.Load() > 1
}

// Init configures the barrier for the given number of peers and resets the
// ticket counters. Calling Init with active peer goroutines corrupts the
// protocol.
func (s *SymmBarrier) Init(workers uint64) {
	if !s.ok() {
		return
	}

	s.workers.Store(workers)
	s.waiting.Store(0)
	s.serving.Store(0)

	if workers > 1 {
		s.asymb.Init(workers - 1)
	}
}

// Workers returns the fixed peer count the barrier was initialized with.
func (s *SymmBarrier) Workers() uint64 {
	if !s.ok() {
		return 0
	}
	return s.workers.Load()
}

// Update acquires the updater role for the calling peer, then opens a new
// epoch on the inner barrier, see Barrier.Update for the synced flag.
//
// Peers draw tickets in call order and are served in ticket order; while a
// peer waits for its turn it services the current updater's epochs as an
// inner-barrier waiter, so the wait makes progress rather than burning CPU
// against the ticket counter alone.
func (s *SymmBarrier) Update(synced bool) {
	if !s.active() {
		return
	}

	ticket := s.waiting.Add(1) - 1
	for ticket != s.serving.Load() {
		s.asymb.Check()
	}

	s.asymb.Update(synced)
}

// Commit closes the current epoch and passes the updater role to the next
// ticket holder.
func (s *SymmBarrier) Commit() {
	if !s.active() {
		return
	}

	s.asymb.Commit()
	s.serving.Add(1)
}

// Check participates as a waiter in the current peer's epoch, if any, see
// Barrier.Check. Cheap while no peer holds the updater role.
func (s *SymmBarrier) Check() {
	if s.active() {
		s.asymb.Check()
	}
}

// Stats returns a snapshot of the inner barrier's counters, all zero unless
// the barrier was built with WithMetrics(true).
func (s *SymmBarrier) Stats() Stats {
	if !s.ok() {
		return Stats{}
	}
	return s.asymb.Stats()
}
