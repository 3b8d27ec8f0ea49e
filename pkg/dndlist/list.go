package dndlist

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/vango-dev/dndlist/internal/errors"
	"github.com/vango-dev/dndlist/pkg/dnd"
	"github.com/vango-dev/dndlist/pkg/dom"
)

// Mode decides what happens to the source list when its item is dropped on
// another list.
type Mode int

const (
	// ModeMove removes the item from the source list.
	ModeMove Mode = iota

	// ModeCopy leaves the source list unchanged.
	ModeCopy
)

// Effect returns the drop effect the mode produces.
func (m Mode) Effect() string {
	if m == ModeCopy {
		return dom.DropEffectCopy
	}
	return dom.DropEffectMove
}

// Group is a set of lists sharing one coordinator.
type Group[T any] struct {
	coord  *dnd.Coordinator
	logger *slog.Logger

	mu    sync.Mutex
	lists map[dnd.ListID]*List[T]
}

// NewGroup creates an empty group.
func NewGroup[T any](coord *dnd.Coordinator) *Group[T] {
	return &Group[T]{
		coord:  coord,
		logger: coord.ComponentLogger("dndlist"),
		lists:  make(map[dnd.ListID]*List[T]),
	}
}

// ListOption configures a List.
type ListOption func(*listOptions)

type listOptions struct {
	mode Mode
}

// WithMode sets the cross-list drop mode. Default: ModeMove.
func WithMode(m Mode) ListOption {
	return func(o *listOptions) {
		o.mode = m
	}
}

// NewList adds a list to the group. An empty id is replaced by a generated
// one. Items are copied.
func (g *Group[T]) NewList(id dnd.ListID, items []T, opts ...ListOption) *List[T] {
	var o listOptions
	for _, opt := range opts {
		opt(&o)
	}
	if id == "" {
		id = dnd.ListID(uuid.NewString())
	}

	l := &List[T]{
		id:    id,
		group: g,
		mode:  o.mode,
		items: slices.Clone(items),
	}

	bus := g.coord.Bus()
	l.disposers = append(l.disposers,
		bus.Subscribe(dnd.SignalDragStart, func(dnd.Signal) { l.takeSnapshot() }),
		bus.Subscribe(dnd.SignalCancel, func(dnd.Signal) { l.restore() }),
	)

	g.mu.Lock()
	prev := g.lists[id]
	g.lists[id] = l
	g.mu.Unlock()
	if prev != nil {
		prev.Close()
	}

	return l
}

// List returns the list registered under id.
func (g *Group[T]) List(id dnd.ListID) (*List[T], bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	l, ok := g.lists[id]
	return l, ok
}

// Close unsubscribes every list in the group.
func (g *Group[T]) Close() {
	g.mu.Lock()
	lists := make([]*List[T], 0, len(g.lists))
	for _, l := range g.lists {
		lists = append(lists, l)
	}
	g.mu.Unlock()

	for _, l := range lists {
		l.Close()
	}
}

func (g *Group[T]) each(fn func(*List[T])) {
	g.mu.Lock()
	lists := make([]*List[T], 0, len(g.lists))
	for _, l := range g.lists {
		lists = append(lists, l)
	}
	g.mu.Unlock()

	for _, l := range lists {
		fn(l)
	}
}

// DropResult describes a completed drop.
type DropResult[T any] struct {
	// Item is the decoded payload that was inserted.
	Item T

	// From is the source list, or "" for external sources.
	From dnd.ListID

	// FromIndex is the item's index in the source list, or dnd.NoIndex.
	FromIndex int

	// To is the list that received the drop.
	To dnd.ListID

	// Index is where the item now sits in To.
	Index int

	// Effect is the drop effect to report back to the drag source.
	Effect string
}

// List is an ordered, drag-aware collection.
type List[T any] struct {
	id    dnd.ListID
	group *Group[T]
	mode  Mode

	mu          sync.Mutex
	items       []T
	snapshot    []T
	hasSnapshot bool
	disposers   []func()
}

// ID returns the list's identity.
func (l *List[T]) ID() dnd.ListID { return l.id }

// Mode returns the cross-list drop mode.
func (l *List[T]) Mode() Mode { return l.mode }

// Items returns a copy of the items.
func (l *List[T]) Items() []T {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.items)
}

// Len returns the number of items.
func (l *List[T]) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.items)
}

// Close unsubscribes the list from the bus and removes it from its group.
func (l *List[T]) Close() {
	l.mu.Lock()
	disposers := l.disposers
	l.disposers = nil
	l.mu.Unlock()

	for _, dispose := range disposers {
		dispose()
	}

	g := l.group
	g.mu.Lock()
	if g.lists[l.id] == l {
		delete(g.lists, l.id)
	}
	g.mu.Unlock()
}

// IsSource reports whether this list is the current drag source.
func (l *List[T]) IsSource() bool {
	return l.group.coord.Lists().IsSource(l.id)
}

// IsTarget reports whether this list is the current drop candidate.
func (l *List[T]) IsTarget() bool {
	return l.group.coord.Lists().IsTarget(l.id)
}

// DragStart picks up the item at index. The interaction is started without a
// signal; the group snapshots its own lists instead.
func (l *List[T]) DragStart(index int) error {
	l.mu.Lock()
	if index < 0 || index >= len(l.items) {
		n := len(l.items)
		l.mu.Unlock()
		return errors.New("D004").WithSource(string(l.id)).
			WithDetail(fmt.Sprintf("index %d, list has %d items", index, n))
	}
	item := l.items[index]
	l.mu.Unlock()

	coord := l.group.coord
	if err := coord.Store().Start(string(l.id), item); err != nil {
		return err
	}
	coord.Lists().Reset()
	coord.Lists().Patch(dnd.NewPatch().SourceList(l.id).SourceIndex(index))
	l.group.each(func(other *List[T]) { other.takeSnapshot() })
	coord.Lists().Log("list drag started")
	return nil
}

// DragOver marks this list as the drop candidate at index. It reports false
// when no interaction is active.
func (l *List[T]) DragOver(index int, pos dnd.Position) bool {
	coord := l.group.coord
	if !coord.Store().Active() {
		return false
	}
	coord.Lists().Patch(dnd.NewPatch().TargetList(l.id).TargetIndex(index).TargetPosition(pos))
	return true
}

// DragLeave clears the target role if this list holds it.
func (l *List[T]) DragLeave() {
	lists := l.group.coord.Lists()
	if lists.IsTarget(l.id) {
		lists.ClearTarget()
	}
}

// Drop inserts the in-flight payload into this list. Same-list drops
// reorder; drops from a sibling in ModeMove remove the item from the
// sibling; external drops insert a copy. The list state is reset and all
// snapshots are committed. The drag source finishes the interaction on its
// dragend.
func (l *List[T]) Drop() (DropResult[T], error) {
	coord := l.group.coord
	lists := coord.Lists()
	state := lists.Snapshot()

	var item T
	if err := coord.Store().Decode(&item); err != nil {
		l.group.logger.Warn("drop rejected", "list", l.id, "error", err)
		lists.ClearTarget()
		return DropResult[T]{}, err
	}

	res := DropResult[T]{
		Item:      item,
		From:      state.SourceList,
		FromIndex: state.SourceIndex,
		To:        l.id,
		Effect:    dom.DropEffectCopy,
	}

	switch source, isSibling := l.group.List(state.SourceList); {
	case state.SourceList == l.id:
		res.Index = l.reorder(state.SourceIndex, l.insertIndex(state))
		res.Effect = dom.DropEffectMove
	case isSibling:
		res.Index = l.insertAt(l.insertIndex(state), item)
		if source.mode == ModeMove {
			source.removeAt(state.SourceIndex)
		}
		res.Effect = source.mode.Effect()
	default:
		res.From, res.FromIndex = "", dnd.NoIndex
		res.Index = l.insertAt(l.insertIndex(state), item)
	}

	l.group.each(func(other *List[T]) { other.dropSnapshot() })
	l.group.logger.Debug("list drop",
		"from", res.From,
		"fromIndex", res.FromIndex,
		"to", res.To,
		"index", res.Index,
		"effect", res.Effect,
	)
	lists.Reset()
	return res, nil
}

// DragEnd finishes a drag this list started. DropEffectNone cancels (every
// list restores its snapshot); anything else ends the interaction.
func (l *List[T]) DragEnd(dropEffect string) {
	coord := l.group.coord
	store := coord.Store()

	if store.Source() == string(l.id) {
		if dropEffect == dom.DropEffectNone {
			store.Cancel(string(l.id))
		} else {
			store.End()
		}
	}
	l.group.each(func(other *List[T]) { other.dropSnapshot() })
	coord.Lists().Reset()
}

// insertIndex resolves the drop position against this list's items.
// Without a target index the item goes to the end.
func (l *List[T]) insertIndex(state dnd.ListCoordination) int {
	l.mu.Lock()
	n := len(l.items)
	l.mu.Unlock()

	if state.TargetList != l.id || state.TargetIndex == dnd.NoIndex {
		return n
	}
	idx := state.TargetIndex
	if state.TargetPosition == dnd.PositionAfter {
		idx++
	}
	return min(max(idx, 0), n)
}

func (l *List[T]) insertAt(idx int, item T) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	idx = min(max(idx, 0), len(l.items))
	l.items = slices.Insert(l.items, idx, item)
	return idx
}

func (l *List[T]) removeAt(idx int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if idx < 0 || idx >= len(l.items) {
		return
	}
	l.items = slices.Delete(l.items, idx, idx+1)
}

// reorder moves the item at from so it lands at insertion point to, where to
// is counted before removal. It returns the item's new index.
func (l *List[T]) reorder(from, to int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if from < 0 || from >= len(l.items) {
		return from
	}
	item := l.items[from]
	l.items = slices.Delete(l.items, from, from+1)
	if to > from {
		to--
	}
	to = min(max(to, 0), len(l.items))
	l.items = slices.Insert(l.items, to, item)
	return to
}

func (l *List[T]) takeSnapshot() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.snapshot = slices.Clone(l.items)
	l.hasSnapshot = true
}

func (l *List[T]) restore() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.hasSnapshot {
		return
	}
	l.items = l.snapshot
	l.snapshot = nil
	l.hasSnapshot = false
}

func (l *List[T]) dropSnapshot() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.snapshot = nil
	l.hasSnapshot = false
}
