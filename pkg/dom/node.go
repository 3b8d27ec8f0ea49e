package dom

import (
	"slices"
	"sync"
)

// Element is anything drag behavior can attach to. Implementations must be
// comparable (typically a pointer) so bindings can be tracked per element.
type Element interface {
	// SetAttribute sets an attribute value.
	SetAttribute(name, value string)

	// AddEventListener registers fn for event and returns a function that
	// removes exactly this registration.
	AddEventListener(event string, fn Listener) (remove func())
}

// Cleaner is implemented by elements that run cleanup functions when they are
// destroyed (unmounted).
type Cleaner interface {
	// OnCleanup registers fn to run on destroy and returns a function that
	// unregisters it.
	OnCleanup(fn func()) (cancel func())
}

type listenerEntry struct {
	fn Listener
}

type cleanupEntry struct {
	fn func()
}

// Node is an in-memory element.
type Node struct {
	Tag string
	ID  string

	mu        sync.Mutex
	attrs     map[string]string
	listeners map[string][]*listenerEntry
	cleanups  []*cleanupEntry
	destroyed bool
}

// NewNode creates a detached element.
func NewNode(tag, id string) *Node {
	return &Node{
		Tag:       tag,
		ID:        id,
		attrs:     make(map[string]string),
		listeners: make(map[string][]*listenerEntry),
	}
}

// SetAttribute implements Element.
func (n *Node) SetAttribute(name, value string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.attrs[name] = value
}

// Attribute returns an attribute value and whether it is set.
func (n *Node) Attribute(name string) (string, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	v, ok := n.attrs[name]
	return v, ok
}

// RemoveAttribute deletes an attribute.
func (n *Node) RemoveAttribute(name string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.attrs, name)
}

// AddEventListener implements Element. Adding a listener to a destroyed node
// is a no-op.
func (n *Node) AddEventListener(event string, fn Listener) (remove func()) {
	if fn == nil {
		return func() {}
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	if n.destroyed {
		return func() {}
	}

	entry := &listenerEntry{fn: fn}
	n.listeners[event] = append(n.listeners[event], entry)

	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		n.listeners[event] = slices.DeleteFunc(n.listeners[event], func(e *listenerEntry) bool {
			return e == entry
		})
		if len(n.listeners[event]) == 0 {
			delete(n.listeners, event)
		}
	}
}

// ListenerCount returns the number of listeners registered for event.
func (n *Node) ListenerCount(event string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.listeners[event])
}

// Dispatch delivers e to the listeners registered for e.Type, in
// registration order. e.Target is set to n.
func (n *Node) Dispatch(e *DragEvent) {
	if e == nil {
		return
	}

	n.mu.Lock()
	entries := slices.Clone(n.listeners[e.Type])
	n.mu.Unlock()

	e.Target = n
	if e.DataTransfer == nil {
		e.DataTransfer = NewDataTransfer()
	}
	for _, entry := range entries {
		entry.fn(e)
	}
}

// OnCleanup implements Cleaner.
func (n *Node) OnCleanup(fn func()) (cancel func()) {
	if fn == nil {
		return func() {}
	}

	n.mu.Lock()
	if n.destroyed {
		n.mu.Unlock()
		fn()
		return func() {}
	}
	entry := &cleanupEntry{fn: fn}
	n.cleanups = append(n.cleanups, entry)
	n.mu.Unlock()

	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		n.cleanups = slices.DeleteFunc(n.cleanups, func(e *cleanupEntry) bool {
			return e == entry
		})
	}
}

// Destroy runs cleanup functions in reverse registration order, then drops
// any listeners that are still registered. Destroy is idempotent.
func (n *Node) Destroy() {
	n.mu.Lock()
	if n.destroyed {
		n.mu.Unlock()
		return
	}
	n.destroyed = true
	cleanups := n.cleanups
	n.cleanups = nil
	n.mu.Unlock()

	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i].fn()
	}

	n.mu.Lock()
	n.listeners = make(map[string][]*listenerEntry)
	n.mu.Unlock()
}

// Destroyed reports whether Destroy has been called.
func (n *Node) Destroyed() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.destroyed
}
