// Package dnd coordinates a single drag-and-drop interaction across
// components that do not know about each other.
//
// A Coordinator is the composition root: the application constructs one and
// hands it to every list, binding and diagnostic consumer. It owns three
// pieces of shared state:
//
//   - Store: the single-slot Interaction (source + deep-copied payload).
//   - Bus: synchronous "dragstart" and "cancel" signals.
//   - ListState: which list is the source/target of a list-to-list move.
//
// # Lifecycle
//
//	coord := dnd.New(dnd.WithLogger(logger))
//
//	// An external drag source (see package dragsource) starts and notifies:
//	err := coord.Store().StartNotify("palette", map[string]any{"id": 7})
//
//	// Lists snapshot on dragstart and restore on cancel:
//	dispose := coord.Bus().Subscribe(dnd.SignalCancel, func(s dnd.Signal) {
//	    items = snapshot
//	})
//	defer dispose()
//
//	// On drag end the binding inspects the drop effect:
//	coord.Store().Cancel("palette") // dropped nowhere
//	coord.Store().End()             // dropped on a target
//
// # Payloads
//
// Payloads are copied at start by a CBOR round trip and kept encoded, so every
// read returns an independent value. Data that cannot be encoded fails the
// start with error code D001 and leaves no interaction behind.
//
// # Observers
//
// An Observer sees every start, end (completed, cancelled or replaced), clone
// failure and emitted signal. Pass observers with WithObserver or attach them
// later with Store.Observe; packages metrics, tracing and inspect provide
// implementations.
//
// # Concurrency
//
// Drag callbacks are serialized by the UI event loop. The store and list
// state are still guarded by mutexes because the server may deliver events
// from several goroutines; signals and observers run after the lock is
// released so handlers may call back into the store.
package dnd
