package asymbarrier

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestSymmBarrier_NilReceiver(t *testing.T) {
	var s *SymmBarrier

	s.Init(3)
	s.Update(true)
	s.Commit()
	s.Check()

	if s.Workers() != 0 {
		t.Fatal("expected zero workers on nil barrier")
	}
	if s.Stats() != (Stats{}) {
		t.Fatal("expected zero stats on nil barrier")
	}
}

func TestNewSymm_Degenerate(t *testing.T) {
	for _, workers := range []uint64{0, 1} {
		s, err := NewSymm(workers)
		if err != nil {
			t.Fatalf("workers=%d: unexpected error: %v", workers, err)
		}
		if got := s.Workers(); got != workers {
			t.Fatalf("Workers() = %d, expected %d", got, workers)
		}

		// all operations are no-ops, callable freely from one goroutine
		for i := 0; i < 10; i++ {
			s.Update(true)
			s.Check()
			s.Commit()
		}

		if s.asymb.refcnt.Load() != 0 {
			t.Fatal("expected inner barrier to stay unconfigured")
		}
		if s.waiting.Load() != 0 || s.serving.Load() != 0 {
			t.Fatal("expected ticket counters untouched")
		}
	}
}

func TestNewSymm(t *testing.T) {
	s, err := NewSymm(3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := s.Workers(); got != 3 {
		t.Fatalf("Workers() = %d, expected 3", got)
	}
	if got := s.asymb.refcnt.Load(); got != 2 {
		t.Fatalf("inner waiter count = %d, expected 2", got)
	}
}

func TestNewSymm_OptionError(t *testing.T) {
	if _, err := NewSymm(2, WithRelax(nil)); err == nil {
		t.Fatal("expected error for nil relax hint")
	}
}

// Peers update in ticket order with mutual exclusion; no increments are lost
// and no two peers ever hold the updater role at once.
func TestSymmBarrier_MutualExclusion(t *testing.T) {
	const (
		peers      = 3
		iterations = 200
	)

	s, err := NewSymm(peers)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var (
		counter   atomic.Uint64
		inCrit    atomic.Int64
		violation atomic.Bool
		pending   atomic.Uint64
		wg        sync.WaitGroup
	)
	pending.Store(peers)

	for i := 0; i < peers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for n := 0; n < iterations; n++ {
				s.Update(true)
				if inCrit.Add(1) != 1 {
					violation.Store(true)
				}
				counter.Store(counter.Load() + 1)
				inCrit.Add(-1)
				s.Commit()
			}

			pending.Add(^uint64(0))
			for pending.Load() != 0 {
				s.Check()
			}
		}()
	}

	runWithDeadline(t, 120*time.Second, wg.Wait)

	if violation.Load() {
		t.Fatal("two peers held the updater role at once")
	}
	if got := counter.Load(); got != peers*iterations {
		t.Fatalf("counter = %d, expected %d (lost or duplicated updates)", got, peers*iterations)
	}
	if s.waiting.Load() != s.serving.Load() {
		t.Fatalf("waiting = %d, serving = %d, expected equal after drain",
			s.waiting.Load(), s.serving.Load())
	}
	if got := s.waiting.Load(); got != peers*iterations {
		t.Fatalf("tickets drawn = %d, expected %d", got, peers*iterations)
	}
}

// Check with no ticket drawn is cheap and has no effect.
func TestSymmBarrier_CheckIdle(t *testing.T) {
	s, err := NewSymm(4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := 0; i < 100; i++ {
		s.Check()
	}

	if s.asymb.wcount.Load() != 0 || s.asymb.synced.Load() != 0 {
		t.Fatal("expected inner barrier idle")
	}
	if s.waiting.Load() != 0 || s.serving.Load() != 0 {
		t.Fatal("expected no tickets drawn")
	}
}

func TestSymmBarrier_TwoPeers(t *testing.T) {
	const iterations = 300

	s, err := NewSymm(2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var (
		counter atomic.Uint64
		pending atomic.Uint64
		wg      sync.WaitGroup
	)
	pending.Store(2)

	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for n := 0; n < iterations; n++ {
				s.Update(true)
				counter.Store(counter.Load() + 1)
				s.Commit()
			}
			pending.Add(^uint64(0))
			for pending.Load() != 0 {
				s.Check()
			}
		}()
	}

	runWithDeadline(t, 120*time.Second, wg.Wait)

	if got := counter.Load(); got != 2*iterations {
		t.Fatalf("counter = %d, expected %d", got, 2*iterations)
	}
}
