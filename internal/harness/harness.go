// Package harness stresses the barrier implementations with the
// demonstration workload: one updater incrementing a shared counter under a
// fixed number of reader threads, counting the iterations where a reader's
// two consecutive loads differ by more than one. Without a barrier that
// count is nonzero; with one it must be zero.
package harness

import (
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	asymbarrier "github.com/joeycumines/go-asymbarrier"
)

const (
	// DefaultThreads is the demonstration workload's reader count.
	DefaultThreads = 3

	// DefaultEpochs is the demonstration workload's update count.
	DefaultEpochs = 10_000_000
)

// Scenario names, in canonical run order.
const (
	ScenarioUnsafe = `UNSAFE`
	ScenarioSynced = `SYNCED`
	ScenarioSymm   = `SYMMBR`
)

type (
	// Config parameterizes a scenario run. The zero value uses the default
	// demonstration constants.
	Config struct {
		// Threads is the reader (waiter/peer) count, DefaultThreads if <= 0.
		Threads int

		// Epochs is the number of updates to perform, DefaultEpochs if 0.
		Epochs uint64

		// Options are applied to the barrier under test.
		Options []asymbarrier.Option
	}

	// Result is one scenario's outcome.
	Result struct {
		// Scenario is one of the Scenario* constants.
		Scenario string

		// Failed counts reader iterations whose two loads of the shared
		// counter differed by more than one.
		Failed uint64

		// Tested is the observed update count times the reader count.
		Tested uint64

		// Total is the configured epoch count times the reader count.
		Total uint64

		// Stats is the barrier's counter snapshot, populated for the
		// barrier-backed scenarios when built with asymbarrier.WithMetrics.
		Stats asymbarrier.Stats
	}

	// scenarioState carries the shared counters of one scenario run; it is
	// passed to every goroutine rather than living at module scope, and all
	// access is via atomics.
	scenarioState struct {
		exit    atomic.Bool
		update  atomic.Uint64
		failed  atomic.Uint64
		pending atomic.Uint64
	}
)

func (c Config) norm() (threads int, epochs uint64) {
	threads = c.Threads
	if threads <= 0 {
		threads = DefaultThreads
	}
	epochs = c.Epochs
	if epochs == 0 {
		epochs = DefaultEpochs
	}
	return
}

// observe performs one reader iteration against the shared update counter,
// advancing the reader's local count and recording a failure if the second
// load ran more than one update ahead of the first.
func (st *scenarioState) observe(local uint64) uint64 {
	if first := st.update.Load(); local < first {
		local++
		if second := st.update.Load(); local < second-1 {
			local++
			st.failed.Add(1)
		}
	}
	return local
}

// RunUnsafe runs the no-barrier baseline: the updater free-runs, so readers
// are expected to observe jumps (nonzero Result.Failed) on any parallel
// hardware.
func RunUnsafe(cfg Config) (Result, error) {
	threads, epochs := cfg.norm()

	var st scenarioState
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		for st.update.Load() < epochs {
			st.update.Add(1)
		}
		st.exit.Store(true)
	}()

	for i := 0; i < threads; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var local uint64
			for !st.exit.Load() {
				local = st.observe(local)
			}
		}()
	}

	wg.Wait()

	return Result{
		Scenario: ScenarioUnsafe,
		Failed:   st.failed.Load(),
		Tested:   st.update.Load() * uint64(threads),
		Total:    epochs * uint64(threads),
	}, nil
}

// RunSynced runs the asymmetric-barrier scenario: the updater increments only
// inside an epoch, readers check before observing. Result.Failed must be
// zero.
func RunSynced(cfg Config) (Result, error) {
	threads, epochs := cfg.norm()

	u, w, err := asymbarrier.New(uint64(threads), cfg.Options...)
	if err != nil {
		return Result{}, err
	}

	var st scenarioState
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		for st.update.Load() < epochs {
			u.Update(true)
			st.update.Add(1)
			u.Commit()
		}
		st.exit.Store(true)
	}()

	for i := 0; i < threads; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var local uint64
			for !st.exit.Load() {
				w.Check()
				local = st.observe(local)
			}
		}()
	}

	wg.Wait()

	return Result{
		Scenario: ScenarioSynced,
		Failed:   st.failed.Load(),
		Tested:   st.update.Load() * uint64(threads),
		Total:    epochs * uint64(threads),
		Stats:    u.Barrier().Stats(),
	}, nil
}

// RunSymm runs the symmetric-barrier scenario: every peer takes the updater
// role in turn and self-checks its increment for lost updates, which also
// feed Result.Failed. Peers that finish early keep servicing the inner
// barrier until all peers have drained - the pattern callers must follow to
// avoid the termination hazard.
func RunSymm(cfg Config) (Result, error) {
	threads, epochs := cfg.norm()

	s, err := asymbarrier.NewSymm(uint64(threads), cfg.Options...)
	if err != nil {
		return Result{}, err
	}

	var st scenarioState
	var wg sync.WaitGroup

	// Registered up front: a peer that finished must not stop checking
	// before every other peer has started, let alone finished.
	st.pending.Store(uint64(threads))

	for i := 0; i < threads; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for st.update.Load() < epochs {
				s.Update(true)
				local := st.update.Load()
				st.update.Store(local + 1)
				if local != st.update.Load()-1 {
					st.failed.Add(1)
				}
				s.Commit()
			}

			st.pending.Add(^uint64(0))
			for st.pending.Load() != 0 {
				s.Check()
			}
		}()
	}

	wg.Wait()

	return Result{
		Scenario: ScenarioSymm,
		Failed:   st.failed.Load(),
		Tested:   st.update.Load() * uint64(threads),
		Total:    epochs * uint64(threads),
		Stats:    s.Stats(),
	}, nil
}

// RunAll runs the three scenarios sequentially, in canonical order.
func RunAll(cfg Config) ([]Result, error) {
	results := make([]Result, 0, 3)
	for _, run := range []func(Config) (Result, error){RunUnsafe, RunSynced, RunSymm} {
		r, err := run(cfg)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, nil
}

// WriteResults renders results as three fixed-width columns.
func WriteResults(w io.Writer, results []Result) error {
	if _, err := fmt.Fprintf(w, "RESULT: %20s/%20s/%20s\n", `FAILED`, `TESTED`, `TSTNUM`); err != nil {
		return err
	}
	for _, r := range results {
		if _, err := fmt.Fprintf(w, "%s: %20d/%20d/%20d\n", r.Scenario, r.Failed, r.Tested, r.Total); err != nil {
			return err
		}
	}
	return nil
}
