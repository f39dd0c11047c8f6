package asymbarrier

import (
	"errors"

	"github.com/joeycumines/logiface"
)

// barrierOptions holds configuration options for barrier creation.
type barrierOptions struct {
	relax          func()
	logger         *logiface.Logger[logiface.Event]
	metricsEnabled bool
}

// Option configures a Barrier or SymmBarrier instance.
type Option interface {
	apply(*barrierOptions) error
}

// optionImpl implements Option.
type optionImpl struct {
	applyFunc func(*barrierOptions) error
}

func (o *optionImpl) apply(opts *barrierOptions) error {
	return o.applyFunc(opts)
}

// WithRelax sets the relaxation hint emitted between spin iterations, in
// place of the default processor yield. The hint runs on every iteration of
// every spin loop, so it must not block, allocate, or panic; on common
// targets it wraps a single PAUSE/YIELD-style instruction.
//
// A nil hint is rejected: the spin loops are tight and will starve peers on
// shared cores without one.
func WithRelax(relax func()) Option {
	return &optionImpl{func(opts *barrierOptions) error {
		if relax == nil {
			return errors.New(`asymbarrier: nil relax hint`)
		}
		opts.relax = relax
		return nil
	}}
}

// WithLogger sets the structured logger used for construction-time and other
// coarse-grained events. The barrier never logs from within an epoch or a
// spin loop. A nil logger disables logging (the default).
func WithLogger(logger *logiface.Logger[logiface.Event]) Option {
	return &optionImpl{func(opts *barrierOptions) error {
		opts.logger = logger
		return nil
	}}
}

// WithMetrics enables per-barrier counters, accessible via Stats. The
// counters are updated with plain atomic increments on the operation paths
// (including one per spin iteration); leave disabled where the fast path
// must stay a single load.
func WithMetrics(enabled bool) Option {
	return &optionImpl{func(opts *barrierOptions) error {
		opts.metricsEnabled = enabled
		return nil
	}}
}

// resolveOptions applies Option instances to barrierOptions.
func resolveOptions(opts []Option) (*barrierOptions, error) {
	cfg := &barrierOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue // Skip nil options gracefully
		}
		if err := opt.apply(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
