// Package dragsource makes arbitrary elements act as drag sources for a
// dnd.Coordinator.
//
// A bound element gets draggable="true" and two listeners:
//   - dragstart: sets the drop effect to "copy", deep-copies the bound data
//     and starts a notifying interaction (lists receive "dragstart").
//   - dragend: if the browser reports DropEffect "none" the interaction is
//     cancelled (lists receive "cancel" and roll back), otherwise it ends.
//
// Example:
//
//	src := dragsource.New(coord)
//	b := src.Bind(node, dragsource.Config{Source: "palette", Data: item})
//	defer b.Release()
package dragsource

import (
	"log/slog"
	"sync"

	"github.com/vango-dev/dndlist/pkg/dnd"
	"github.com/vango-dev/dndlist/pkg/dom"
)

// Config is the bound value: where the drag comes from and what it carries.
type Config struct {
	Source string
	Data   any
}

// Directive binds elements to one coordinator.
type Directive struct {
	coord   *dnd.Coordinator
	logger  *slog.Logger
	onError func(error)

	mu       sync.Mutex
	bindings map[dom.Element]*Binding
}

// Option configures a Directive.
type Option func(*Directive)

// WithLogger sets the logger. Default: the coordinator's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Directive) {
		d.logger = logger
	}
}

// WithErrorHandler receives drag start failures (e.g. D001) in addition to
// the error log line.
func WithErrorHandler(fn func(error)) Option {
	return func(d *Directive) {
		d.onError = fn
	}
}

// New creates a Directive for coord.
func New(coord *dnd.Coordinator, opts ...Option) *Directive {
	d := &Directive{
		coord:    coord,
		bindings: make(map[dom.Element]*Binding),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = coord.ComponentLogger("dragsource")
	} else {
		d.logger = d.logger.With("component", "dragsource")
	}
	return d
}

// Bind makes el a drag source for cfg. Binding an element that is already
// bound releases the previous binding first. When el implements dom.Cleaner
// the binding is released automatically when el is destroyed.
func (d *Directive) Bind(el dom.Element, cfg Config) *Binding {
	d.mu.Lock()
	prev := d.bindings[el]
	d.mu.Unlock()
	if prev != nil {
		prev.Release()
	}

	b := &Binding{d: d, el: el, cfg: cfg}
	el.SetAttribute("draggable", "true")
	b.release = append(b.release,
		el.AddEventListener(dom.EventDragStart, b.onDragStart),
		el.AddEventListener(dom.EventDragEnd, b.onDragEnd),
	)

	d.mu.Lock()
	d.bindings[el] = b
	d.mu.Unlock()

	// A destroyed element runs the cleanup at once, releasing b here.
	if c, ok := el.(dom.Cleaner); ok {
		cancel := c.OnCleanup(b.Release)
		b.mu.Lock()
		if b.released {
			b.mu.Unlock()
			cancel()
		} else {
			b.release = append(b.release, cancel)
			b.mu.Unlock()
		}
	}

	return b
}

// Unbind releases the binding on el. It reports whether el was bound.
func (d *Directive) Unbind(el dom.Element) bool {
	b, ok := d.Lookup(el)
	if ok {
		b.Release()
	}
	return ok
}

// Lookup returns the active binding for el.
func (d *Directive) Lookup(el dom.Element) (*Binding, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	b, ok := d.bindings[el]
	return b, ok
}

// Len returns the number of bound elements.
func (d *Directive) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.bindings)
}

func (d *Directive) report(source string, err error) {
	d.logger.Error("drag start failed", "source", source, "error", err)
	if d.onError != nil {
		d.onError(err)
	}
}

// Binding is one element's drag source registration.
type Binding struct {
	d  *Directive
	el dom.Element

	mu       sync.Mutex
	cfg      Config
	started  bool
	released bool
	release  []func()
}

// Config returns the bound value.
func (b *Binding) Config() Config {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cfg
}

// Update replaces the bound value. A drag already in flight keeps the
// payload it copied at start.
func (b *Binding) Update(cfg Config) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cfg = cfg
}

// Release removes the listeners this binding installed. Attributes and the
// coordinator's state are left untouched. Release is idempotent.
func (b *Binding) Release() {
	b.mu.Lock()
	if b.released {
		b.mu.Unlock()
		return
	}
	b.released = true
	release := b.release
	b.release = nil
	b.mu.Unlock()

	for _, fn := range release {
		fn()
	}

	b.d.mu.Lock()
	if b.d.bindings[b.el] == b {
		delete(b.d.bindings, b.el)
	}
	b.d.mu.Unlock()
}

// Released reports whether Release has run.
func (b *Binding) Released() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.released
}

func (b *Binding) onDragStart(e *dom.DragEvent) {
	if e.DataTransfer != nil {
		e.DataTransfer.DropEffect = dom.DropEffectCopy
		e.DataTransfer.EffectAllowed = dom.DropEffectCopy
	}

	cfg := b.Config()
	err := b.d.coord.Store().StartNotify(cfg.Source, cfg.Data)

	b.mu.Lock()
	b.started = err == nil
	b.mu.Unlock()

	if err != nil {
		b.d.report(cfg.Source, err)
	}
}

func (b *Binding) onDragEnd(e *dom.DragEvent) {
	b.mu.Lock()
	started := b.started
	b.started = false
	source := b.cfg.Source
	b.mu.Unlock()

	if !started {
		b.d.logger.Debug("dragend without an interaction", "source", source)
		return
	}

	store := b.d.coord.Store()
	if e.DataTransfer == nil || e.DataTransfer.DropEffect == dom.DropEffectNone {
		store.Cancel(source)
		return
	}
	store.End()
}
