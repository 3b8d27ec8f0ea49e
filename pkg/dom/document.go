package dom

import (
	"sort"
	"sync"
)

// Document is a registry of elements addressable by id, used to route client
// events to server-side nodes.
type Document struct {
	mu    sync.RWMutex
	nodes map[string]*Node
}

// NewDocument creates an empty document.
func NewDocument() *Document {
	return &Document{nodes: make(map[string]*Node)}
}

// CreateElement creates and registers a node. An existing node with the same
// id is destroyed and replaced.
func (d *Document) CreateElement(tag, id string) *Node {
	n := NewNode(tag, id)

	d.mu.Lock()
	old := d.nodes[id]
	d.nodes[id] = n
	d.mu.Unlock()

	if old != nil {
		old.Destroy()
	}
	return n
}

// GetElementByID returns the node registered under id.
func (d *Document) GetElementByID(id string) (*Node, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	n, ok := d.nodes[id]
	return n, ok
}

// Remove unregisters and destroys the node with id.
func (d *Document) Remove(id string) bool {
	d.mu.Lock()
	n, ok := d.nodes[id]
	delete(d.nodes, id)
	d.mu.Unlock()

	if ok {
		n.Destroy()
	}
	return ok
}

// IDs returns the registered ids in sorted order.
func (d *Document) IDs() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	ids := make([]string, 0, len(d.nodes))
	for id := range d.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
