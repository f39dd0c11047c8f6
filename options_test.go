package asymbarrier

import (
	"bytes"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

func TestResolveOptions_NilSkipped(t *testing.T) {
	u, w, err := New(1, nil, WithMetrics(true), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u == nil || w == nil {
		t.Fatal("expected handles")
	}
	if u.Barrier().metrics == nil {
		t.Fatal("expected metrics enabled")
	}
}

func TestWithLogger_Nil(t *testing.T) {
	u, _, err := New(1, WithLogger(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u == nil {
		t.Fatal("expected handles")
	}
}

func TestWithLogger_InitEvent(t *testing.T) {
	var buf bytes.Buffer
	logger := stumpy.L.New(
		stumpy.L.WithStumpy(stumpy.WithWriter(&buf), stumpy.WithTimeField(``)),
		stumpy.L.WithLevel(logiface.LevelDebug),
	).Logger()

	if _, _, err := New(2, WithLogger(logger)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if out := buf.String(); !strings.Contains(out, `asymbarrier: barrier initialized`) {
		t.Fatalf("expected init event, got %q", out)
	}

	buf.Reset()
	if _, err := NewSymm(3, WithLogger(logger)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out := buf.String(); !strings.Contains(out, `symmetric barrier initialized`) {
		t.Fatalf("expected init event, got %q", out)
	}
}

func TestWithRelax_HintRuns(t *testing.T) {
	var hints atomic.Uint64
	u, w, err := New(1, WithRelax(func() {
		hints.Add(1)
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		// delay acknowledgement so the updater must spin
		time.Sleep(10 * time.Millisecond)
		w.Check()
	}()

	runWithDeadline(t, 30*time.Second, func() {
		u.Update(true)
		u.Commit()
		wg.Wait()
	})

	if hints.Load() == 0 {
		t.Fatal("expected the relax hint to run while spinning")
	}
}
