package reconciler

import (
	"time"

	"github.com/dialoggauge/catalogsync/pkg/errors"
)

// options configures a reconciler.
type options struct {
	clock func() time.Time
}

func defaultOptions() *options {
	return &options{
		clock: time.Now,
	}
}

// Option is a function that configures a Reconciler.
type Option func(*options) error

func (o *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// newOptions returns reconciler options with default values.
func newOptions(opts ...Option) (*options, error) {
	return defaultOptions().apply(opts...)
}

// WithClock sets the time source used for result timestamps. Tests use
// it to make timings deterministic.
func WithClock(clock func() time.Time) Option {
	return func(o *options) error {
		if clock == nil {
			return &errors.ValidationError{Field: "clock", Message: "cannot be nil"}
		}
		o.clock = clock
		return nil
	}
}
