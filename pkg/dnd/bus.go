package dnd

import (
	"slices"
	"sync"
	"sync/atomic"
)

// SignalName identifies a lifecycle signal.
type SignalName string

const (
	// SignalDragStart is emitted when an external drag source starts an
	// interaction. Lists snapshot their items so a cancel can restore them.
	SignalDragStart SignalName = "dragstart"

	// SignalCancel is emitted when a drag ends without any target
	// accepting the drop.
	SignalCancel SignalName = "cancel"
)

// Signal is a fire-and-forget notification. Source is the body's
// originating component.
type Signal struct {
	Name   SignalName `json:"name"`
	Source string     `json:"source"`
}

// Handler receives signals.
type Handler func(Signal)

type subscription struct {
	handler Handler
	removed atomic.Bool
}

// Bus is a synchronous publish/subscribe channel keyed by signal name.
// It keeps no state beyond its subscribers: a signal emitted with no
// subscribers is dropped.
type Bus struct {
	mu   sync.Mutex
	subs map[SignalName][]*subscription
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[SignalName][]*subscription)}
}

// Subscribe registers h for name and returns a disposer. Calling the
// disposer more than once is harmless; other subscribers are unaffected.
func (b *Bus) Subscribe(name SignalName, h Handler) (dispose func()) {
	if h == nil {
		return func() {}
	}

	sub := &subscription{handler: h}

	b.mu.Lock()
	b.subs[name] = append(b.subs[name], sub)
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			sub.removed.Store(true)

			b.mu.Lock()
			defer b.mu.Unlock()
			b.subs[name] = slices.DeleteFunc(b.subs[name], func(s *subscription) bool {
				return s == sub
			})
			if len(b.subs[name]) == 0 {
				delete(b.subs, name)
			}
		})
	}
}

// Emit delivers sig to the subscribers registered when Emit was called, in
// subscription order. Handlers added during delivery wait for the next
// emission; handlers disposed during delivery are skipped.
func (b *Bus) Emit(sig Signal) {
	b.mu.Lock()
	subs := slices.Clone(b.subs[sig.Name])
	b.mu.Unlock()

	for _, sub := range subs {
		if sub.removed.Load() {
			continue
		}
		sub.handler(sig)
	}
}

// Len returns the number of subscribers for name.
func (b *Bus) Len(name SignalName) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[name])
}
