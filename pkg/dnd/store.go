package dnd

import (
	"encoding/json"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vango-dev/dndlist/internal/errors"
)

// Interaction is the single in-flight drag record.
// Source is empty exactly when Payload is zero.
type Interaction struct {
	// ID identifies this interaction for logs, traces and the inspector.
	ID string

	// Source is the originating component or list.
	Source string

	// Payload is the deep-copied dragged data.
	Payload Payload

	// StartedAt is when Start was called.
	StartedAt time.Time

	// Notified is true when a dragstart signal was emitted for this
	// interaction.
	Notified bool
}

// Active reports whether the interaction is in flight.
func (i Interaction) Active() bool {
	return i.Source != ""
}

// interactionView is the diagnostic JSON shape: {"source": ..., "data": ...}.
type interactionView struct {
	Source *string `json:"source"`
	Data   Payload `json:"data"`
}

// InteractionJSON renders i as indented JSON. Idle interactions render as
// {"source": null, "data": null}.
func InteractionJSON(i Interaction) ([]byte, error) {
	view := interactionView{Data: i.Payload}
	if i.Active() {
		source := i.Source
		view.Source = &source
	}
	return json.MarshalIndent(view, "", "  ")
}

// Store holds the current Interaction. There is exactly one slot: starting
// while another interaction is active replaces it.
type Store struct {
	mu      sync.Mutex
	current Interaction
	bus     *Bus
	logger  *slog.Logger
	now     func() time.Time

	obsMu     sync.Mutex
	observers []*observerEntry
}

type observerEntry struct {
	Observer
}

// Observe adds an observer after construction. The returned function
// removes it and is safe to call more than once.
func (s *Store) Observe(o Observer) (remove func()) {
	if o == nil {
		return func() {}
	}
	entry := &observerEntry{o}
	s.obsMu.Lock()
	s.observers = append(s.observers, entry)
	s.obsMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.obsMu.Lock()
			s.observers = slices.DeleteFunc(s.observers, func(e *observerEntry) bool { return e == entry })
			s.obsMu.Unlock()
		})
	}
}

func (s *Store) observing() []*observerEntry {
	s.obsMu.Lock()
	defer s.obsMu.Unlock()
	return slices.Clone(s.observers)
}

// Start records a new interaction without emitting a signal. List
// components use it because they snapshot their own state.
func (s *Store) Start(source string, data any) error {
	return s.start(source, data, false)
}

// StartNotify records a new interaction and emits SignalDragStart so lists
// can snapshot their items in case the drag is cancelled. External drag
// sources use it.
func (s *Store) StartNotify(source string, data any) error {
	return s.start(source, data, true)
}

func (s *Store) start(source string, data any, notify bool) error {
	if source == "" {
		return errors.New("D002").WithDetail("Start requires a non-empty source.")
	}
	if data == nil {
		return errors.New("D002").WithSource(source).WithDetail("Start requires non-nil data.")
	}

	payload, err := Clone(data)
	if err != nil {
		cerr := errors.FromError(err, "D001").WithSource(source)
		for _, o := range s.observing() {
			o.CloneFailed(source, cerr)
		}
		return cerr
	}
	if payload.IsZero() {
		return errors.New("D002").WithSource(source).WithDetail("Start requires a non-empty payload.")
	}

	next := Interaction{
		ID:        uuid.NewString(),
		Source:    source,
		Payload:   payload,
		StartedAt: s.now(),
		Notified:  notify,
	}

	s.mu.Lock()
	prev := s.current
	s.current = next
	s.mu.Unlock()

	if prev.Active() {
		s.logger.Debug("interaction replaced", "previous", prev.ID, "source", prev.Source)
		s.ended(prev, OutcomeReplaced)
	}

	s.logger.Debug("interaction started", "id", next.ID, "source", source, "notify", notify)
	for _, o := range s.observing() {
		o.InteractionStarted(next)
	}

	if notify {
		s.emit(Signal{Name: SignalDragStart, Source: source})
	}
	return nil
}

// End clears the interaction. It is called after a successful drop, once the
// target has read the payload. No signal is emitted.
func (s *Store) End() {
	s.finish(OutcomeCompleted)
}

// Cancel emits SignalCancel for source and then clears the interaction.
// Subscribers still see the payload while handling the signal.
func (s *Store) Cancel(source string) {
	s.emit(Signal{Name: SignalCancel, Source: source})
	s.finish(OutcomeCancelled)
}

func (s *Store) finish(outcome Outcome) {
	s.mu.Lock()
	prev := s.current
	s.current = Interaction{}
	s.mu.Unlock()

	if prev.Active() {
		s.logger.Debug("interaction ended", "id", prev.ID, "source", prev.Source, "outcome", outcome)
		s.ended(prev, outcome)
	}
}

func (s *Store) ended(i Interaction, outcome Outcome) {
	for _, o := range s.observing() {
		o.InteractionEnded(i, outcome)
	}
}

func (s *Store) emit(sig Signal) {
	s.bus.Emit(sig)
	for _, o := range s.observing() {
		o.SignalEmitted(sig)
	}
}

// Snapshot returns the current interaction.
func (s *Store) Snapshot() Interaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Active reports whether an interaction is in flight.
func (s *Store) Active() bool {
	return s.Snapshot().Active()
}

// Source returns the current source, or "" when idle.
func (s *Store) Source() string {
	return s.Snapshot().Source
}

// Data returns a fresh copy of the current payload value, or nil when idle.
func (s *Store) Data() (any, error) {
	return s.Snapshot().Payload.Value()
}

// Decode copies the current payload into v. It fails with D003 when no
// interaction is active.
func (s *Store) Decode(v any) error {
	snap := s.Snapshot()
	if !snap.Active() {
		return errors.New("D003").WithDetail("No interaction is active.")
	}
	return snap.Payload.Decode(v)
}

// JSON returns the diagnostic view of the current interaction. It is
// recomputed on every call.
func (s *Store) JSON() string {
	snap := s.Snapshot()
	data, err := InteractionJSON(snap)
	if err != nil {
		s.logger.Warn("interaction not representable as JSON", "id", snap.ID, "error", err)
		data, _ = json.MarshalIndent(map[string]any{
			"source": snap.Source,
			"data":   nil,
			"error":  err.Error(),
		}, "", "  ")
	}
	return string(data)
}
