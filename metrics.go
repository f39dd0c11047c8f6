package asymbarrier

import "sync/atomic"

// Stats is a snapshot of a barrier's counters, as returned by Barrier.Stats.
// All fields are zero unless the barrier was built with WithMetrics(true).
type Stats struct {
	// EpochsOpened counts Update calls.
	EpochsOpened uint64

	// EpochsCommitted counts Commit calls that returned.
	EpochsCommitted uint64

	// ChecksFast counts Check calls that observed no open epoch.
	ChecksFast uint64

	// ChecksSlow counts Check calls that acknowledged an epoch.
	ChecksSlow uint64

	// Spins counts relaxation-hint emissions across all spin loops, a rough
	// proxy for time spent waiting.
	Spins uint64
}

// metrics backs Stats; a nil pointer means collection is disabled.
type metrics struct {
	epochsOpened    atomic.Uint64
	epochsCommitted atomic.Uint64
	checksFast      atomic.Uint64
	checksSlow      atomic.Uint64
	spins           atomic.Uint64
}

func (m *metrics) snapshot() Stats {
	if m == nil {
		return Stats{}
	}
	return Stats{
		EpochsOpened:    m.epochsOpened.Load(),
		EpochsCommitted: m.epochsCommitted.Load(),
		ChecksFast:      m.checksFast.Load(),
		ChecksSlow:      m.checksSlow.Load(),
		Spins:           m.spins.Load(),
	}
}

// Stats returns a snapshot of the barrier's counters. Safe to call from any
// goroutine; the fields are individually consistent, not a single atomic
// cut across all counters.
func (b *Barrier) Stats() Stats {
	if !b.ok() {
		return Stats{}
	}
	return b.metrics.snapshot()
}
