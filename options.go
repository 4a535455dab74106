package catalogsync

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/dialoggauge/catalogsync/pkg/catalogs"
	"github.com/dialoggauge/catalogsync/pkg/errors"
	"github.com/dialoggauge/catalogsync/pkg/logging"
)

// config holds the engine configuration.
type config struct {
	references catalogs.ReferenceTable
	logger     *zerolog.Logger
	clock      func() time.Time
	concurrent bool
	sortByID   bool
	renumber   bool
}

func defaultConfig() *config {
	return &config{
		references: catalogs.DefaultReferences(),
		logger:     logging.Default(),
		clock:      time.Now,
	}
}

// Option configures an Engine.
type Option func(*config) error

// newConfig returns engine configuration with defaults applied.
func newConfig(opts ...Option) (*config, error) {
	c := defaultConfig()
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// WithReferences replaces the declarative foreign-key table that drives
// cascading rewrites and the dependency ordering between collections.
func WithReferences(refs catalogs.ReferenceTable) Option {
	return func(c *config) error {
		if refs == nil {
			return &errors.ValidationError{Field: "references", Message: "cannot be nil"}
		}
		c.references = refs
		return nil
	}
}

// WithLogger sets the engine's logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(c *config) error {
		if logger == nil {
			return &errors.ValidationError{Field: "logger", Message: "cannot be nil"}
		}
		c.logger = logger
		return nil
	}
}

// WithConcurrency enables processing independent entity types in
// parallel. Dependency ordering from the reference table still holds:
// a dependent collection is rewritten only after the mapping of the
// collection it references is final.
func WithConcurrency(enabled bool) Option {
	return func(c *config) error {
		c.concurrent = enabled
		return nil
	}
}

// WithClock sets the time source for run timestamps.
func WithClock(clock func() time.Time) Option {
	return func(c *config) error {
		if clock == nil {
			return &errors.ValidationError{Field: "clock", Message: "cannot be nil"}
		}
		c.clock = clock
		return nil
	}
}

// WithSortByID reorders each reconciled collection by ascending final
// identifier before it is returned.
func WithSortByID(enabled bool) Option {
	return func(c *config) error {
		c.sortByID = enabled
		return nil
	}
}

// WithSortOrderRenumber renumbers the sort_order field 1..n after
// reconciliation on collections that carry it. Protected sort_order
// fields are left alone.
func WithSortOrderRenumber(enabled bool) Option {
	return func(c *config) error {
		c.renumber = enabled
		return nil
	}
}
