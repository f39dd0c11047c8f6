package asymbarrier

import "runtime"

// defaultRelax is the relaxation hint emitted between spin iterations when
// none was configured. Yielding the processor is deliberately heavier than a
// PAUSE-style instruction: Go offers no portable single-instruction hint,
// and yielding keeps the tight loops live when spinning goroutines outnumber
// cores, where a raw busy-wait could starve the very peer being waited on.
//
// Callers on pinned OS threads with dedicated cores can substitute a tighter
// hint via WithRelax.
func defaultRelax() {
	runtime.Gosched()
}
