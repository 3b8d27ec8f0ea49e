package dnd

import (
	"log/slog"
	"time"
)

// Coordinator is the coordination context shared by every participant in a
// drag. Construct one per UI root (per session in a server-driven app) and
// pass it to lists and bindings.
type Coordinator struct {
	bus    *Bus
	store  *Store
	lists  *ListState
	base   *slog.Logger
	logger *slog.Logger
}

type options struct {
	logger    *slog.Logger
	observers []Observer
	now       func() time.Time
}

// Option configures a Coordinator.
type Option func(*options)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithObserver adds a lifecycle observer. May be given more than once.
func WithObserver(obs Observer) Option {
	return func(o *options) {
		if obs != nil {
			o.observers = append(o.observers, obs)
		}
	}
}

// withClock overrides time.Now for tests.
func withClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// New creates a Coordinator with an idle store, no subscribers and empty
// list state.
func New(opts ...Option) *Coordinator {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	logger := o.logger.With("component", "dnd")

	bus := NewBus()
	store := &Store{
		bus:    bus,
		logger: logger,
		now:    o.now,
	}
	for _, obs := range o.observers {
		store.Observe(obs)
	}
	return &Coordinator{
		bus:    bus,
		store:  store,
		lists:  NewListState(logger),
		base:   o.logger,
		logger: logger,
	}
}

// Bus returns the signal bus.
func (c *Coordinator) Bus() *Bus { return c.bus }

// Store returns the interaction store.
func (c *Coordinator) Store() *Store { return c.store }

// Lists returns the list coordination state.
func (c *Coordinator) Lists() *ListState { return c.lists }

// Logger returns the coordinator's logger, tagged component=dnd.
func (c *Coordinator) Logger() *slog.Logger { return c.logger }

// ComponentLogger returns the logger given to New tagged with component
// instead of "dnd".
func (c *Coordinator) ComponentLogger(component string) *slog.Logger {
	return c.base.With("component", component)
}
