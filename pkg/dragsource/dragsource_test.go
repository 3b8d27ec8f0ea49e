package dragsource

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/vango-dev/dndlist/internal/errors"
	"github.com/vango-dev/dndlist/pkg/dnd"
	"github.com/vango-dev/dndlist/pkg/dom"
)

type signalLog struct {
	signals []dnd.Signal
}

func (l *signalLog) attach(c *dnd.Coordinator) {
	record := func(s dnd.Signal) { l.signals = append(l.signals, s) }
	c.Bus().Subscribe(dnd.SignalDragStart, record)
	c.Bus().Subscribe(dnd.SignalCancel, record)
}

func (l *signalLog) count(name dnd.SignalName) int {
	n := 0
	for _, s := range l.signals {
		if s.Name == name {
			n++
		}
	}
	return n
}

func dragStart(n *dom.Node) *dom.DragEvent {
	e := dom.NewDragEvent(dom.EventDragStart)
	n.Dispatch(e)
	return e
}

func dragEnd(n *dom.Node, effect string) {
	e := dom.NewDragEvent(dom.EventDragEnd)
	e.DataTransfer.DropEffect = effect
	n.Dispatch(e)
}

func TestBindSetsDraggable(t *testing.T) {
	c := dnd.New()
	node := dom.NewNode("li", "card")
	New(c).Bind(node, Config{Source: "listA", Data: 1})

	if v, ok := node.Attribute("draggable"); !ok || v != "true" {
		t.Errorf("draggable = %q, %v", v, ok)
	}
	if node.ListenerCount(dom.EventDragStart) != 1 || node.ListenerCount(dom.EventDragEnd) != 1 {
		t.Error("expected one dragstart and one dragend listener")
	}
}

func TestDragCancelledScenario(t *testing.T) {
	c := dnd.New()
	log := &signalLog{}
	log.attach(c)

	node := dom.NewNode("li", "card")
	New(c).Bind(node, Config{Source: "listA", Data: map[string]any{"id": 7}})

	e := dragStart(node)
	if e.DataTransfer.DropEffect != dom.DropEffectCopy || e.DataTransfer.EffectAllowed != dom.DropEffectCopy {
		t.Errorf("effects = %q/%q, want copy/copy", e.DataTransfer.DropEffect, e.DataTransfer.EffectAllowed)
	}

	store := c.Store()
	if store.Source() != "listA" {
		t.Fatalf("Source() = %q, want listA", store.Source())
	}
	var data struct {
		ID int `json:"id"`
	}
	if err := store.Decode(&data); err != nil || data.ID != 7 {
		t.Fatalf("Decode = %+v, %v", data, err)
	}
	if log.count(dnd.SignalDragStart) != 1 {
		t.Errorf("expected one dragstart signal, got %v", log.signals)
	}

	dragEnd(node, dom.DropEffectNone)

	if log.count(dnd.SignalCancel) != 1 {
		t.Fatalf("expected one cancel signal, got %v", log.signals)
	}
	last := log.signals[len(log.signals)-1]
	if last != (dnd.Signal{Name: dnd.SignalCancel, Source: "listA"}) {
		t.Errorf("cancel signal = %+v", last)
	}
	if store.Active() {
		t.Error("store should be idle after cancel")
	}
}

func TestDragCompletedScenario(t *testing.T) {
	c := dnd.New()
	log := &signalLog{}
	log.attach(c)

	node := dom.NewNode("li", "card")
	New(c).Bind(node, Config{Source: "listA", Data: map[string]any{"id": 7}})

	dragStart(node)
	dragEnd(node, dom.DropEffectCopy)

	if log.count(dnd.SignalCancel) != 0 {
		t.Errorf("no cancel expected, got %v", log.signals)
	}
	if c.Store().Active() {
		t.Error("store should be idle after end")
	}
}

func TestDragEndWithoutDropCancels(t *testing.T) {
	c := dnd.New()
	log := &signalLog{}
	log.attach(c)

	node := dom.NewNode("li", "card")
	New(c).Bind(node, Config{Source: "s", Data: 1})
	dragStart(node)

	// A dragend carrying a fresh transfer reports DropEffect "none".
	node.Dispatch(&dom.DragEvent{Type: dom.EventDragEnd})

	if log.count(dnd.SignalCancel) != 1 {
		t.Errorf("expected cancel, got %v", log.signals)
	}
}

func TestDragCopyIsolation(t *testing.T) {
	c := dnd.New()
	data := map[string]any{"title": "draft"}
	node := dom.NewNode("li", "card")
	New(c).Bind(node, Config{Source: "s", Data: data})

	dragStart(node)
	data["title"] = "changed mid-drag"

	var got map[string]string
	if err := c.Store().Decode(&got); err != nil {
		t.Fatal(err)
	}
	if got["title"] != "draft" {
		t.Errorf("payload followed source mutation: %v", got)
	}
}

func TestDragStartFailure(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	c := dnd.New()
	log := &signalLog{}
	log.attach(c)

	var reported []error
	node := dom.NewNode("li", "card")
	New(c, WithLogger(logger), WithErrorHandler(func(err error) {
		reported = append(reported, err)
	})).Bind(node, Config{Source: "s", Data: map[string]any{"fn": func() {}}})

	dragStart(node)

	if len(reported) != 1 || !errors.HasCode(reported[0], "D001") {
		t.Fatalf("reported = %v", reported)
	}
	if !strings.Contains(buf.String(), "drag start failed") {
		t.Errorf("failure should be logged:\n%s", buf.String())
	}
	if c.Store().Active() {
		t.Error("failed drag must leave no interaction")
	}

	dragEnd(node, dom.DropEffectNone)
	if len(log.signals) != 0 {
		t.Errorf("failed drag must publish no signals, got %v", log.signals)
	}
}

func TestDragStartNilData(t *testing.T) {
	c := dnd.New()
	var reported []error
	node := dom.NewNode("li", "card")
	New(c, WithErrorHandler(func(err error) { reported = append(reported, err) })).
		Bind(node, Config{Source: "s"})

	dragStart(node)

	if len(reported) != 1 || !errors.HasCode(reported[0], "D002") {
		t.Errorf("reported = %v", reported)
	}
	if c.Store().Active() {
		t.Error("nil data must not start an interaction")
	}
}

func TestRebindReplacesListeners(t *testing.T) {
	c := dnd.New()
	d := New(c)
	node := dom.NewNode("li", "card")

	first := d.Bind(node, Config{Source: "a", Data: 1})
	second := d.Bind(node, Config{Source: "b", Data: 2})

	if !first.Released() {
		t.Error("rebinding should release the previous binding")
	}
	if node.ListenerCount(dom.EventDragStart) != 1 || node.ListenerCount(dom.EventDragEnd) != 1 {
		t.Errorf("listeners leaked: start=%d end=%d",
			node.ListenerCount(dom.EventDragStart), node.ListenerCount(dom.EventDragEnd))
	}
	if got, _ := d.Lookup(node); got != second {
		t.Error("Lookup should return the new binding")
	}
	if d.Len() != 1 {
		t.Errorf("Len = %d", d.Len())
	}

	dragStart(node)
	if c.Store().Source() != "b" {
		t.Errorf("Source() = %q, want b", c.Store().Source())
	}
}

func TestUnbind(t *testing.T) {
	c := dnd.New()
	d := New(c)
	node := dom.NewNode("li", "card")
	other := func(*dom.DragEvent) {}
	node.AddEventListener(dom.EventDragStart, other)

	d.Bind(node, Config{Source: "a", Data: 1})
	_ = c.Store().Start("someone-else", 1)
	c.Lists().Patch(dnd.NewPatch().SourceList("L"))

	if !d.Unbind(node) {
		t.Fatal("Unbind should report true")
	}
	if d.Unbind(node) {
		t.Error("second Unbind should report false")
	}

	if node.ListenerCount(dom.EventDragStart) != 1 {
		t.Error("Unbind must remove only its own listeners")
	}
	if node.ListenerCount(dom.EventDragEnd) != 0 {
		t.Error("dragend listener not removed")
	}
	if v, _ := node.Attribute("draggable"); v != "true" {
		t.Error("Unbind must leave attributes untouched")
	}
	if c.Store().Source() != "someone-else" || !c.Lists().IsSource("L") {
		t.Error("Unbind must leave shared state untouched")
	}
}

func TestReleaseOnDestroy(t *testing.T) {
	c := dnd.New()
	d := New(c)
	node := dom.NewNode("li", "card")
	b := d.Bind(node, Config{Source: "a", Data: 1})

	node.Destroy()

	if !b.Released() {
		t.Error("destroying the element should release the binding")
	}
	if d.Len() != 0 {
		t.Error("released binding should leave the directive")
	}
}

func TestUpdate(t *testing.T) {
	c := dnd.New()
	node := dom.NewNode("li", "card")
	b := New(c).Bind(node, Config{Source: "a", Data: "old"})

	b.Update(Config{Source: "a", Data: "new"})
	dragStart(node)

	var got string
	if err := c.Store().Decode(&got); err != nil || got != "new" {
		t.Errorf("Decode = %q, %v", got, err)
	}
	if b.Config().Data != "new" {
		t.Error("Config() should return the updated value")
	}
}

type plainElement struct {
	attrs     map[string]string
	listeners map[string]int
}

func (p *plainElement) SetAttribute(name, value string) { p.attrs[name] = value }

func (p *plainElement) AddEventListener(event string, fn dom.Listener) func() {
	p.listeners[event]++
	return func() { p.listeners[event]-- }
}

func TestBindCustomElement(t *testing.T) {
	el := &plainElement{attrs: map[string]string{}, listeners: map[string]int{}}
	d := New(dnd.New())

	b := d.Bind(el, Config{Source: "x", Data: 1})
	if el.attrs["draggable"] != "true" || el.listeners[dom.EventDragStart] != 1 {
		t.Errorf("custom element not bound: %+v", el)
	}

	b.Release()
	b.Release()
	if el.listeners[dom.EventDragStart] != 0 || el.listeners[dom.EventDragEnd] != 0 {
		t.Errorf("listeners not released: %+v", el.listeners)
	}
}

type cloneFailures struct {
	dnd.NopObserver
	sources []string
}

func (o *cloneFailures) CloneFailed(source string, _ error) { o.sources = append(o.sources, source) }

func TestDragStartFailureReachesObservers(t *testing.T) {
	obs := &cloneFailures{}
	c := dnd.New(dnd.WithObserver(obs))
	node := dom.NewNode("li", "card")
	New(c).Bind(node, Config{Source: "s", Data: map[string]any{"f": func() {}}})

	dragStart(node)

	if len(obs.sources) != 1 || obs.sources[0] != "s" {
		t.Errorf("CloneFailed sources = %v, want [s]", obs.sources)
	}
	if c.Store().Active() {
		t.Error("failed drag must leave no interaction")
	}
}

func TestBindDestroyedElement(t *testing.T) {
	c := dnd.New()
	d := New(c)
	node := dom.NewNode("li", "card")
	node.Destroy()

	b := d.Bind(node, Config{Source: "a", Data: 1})

	if !b.Released() {
		t.Error("binding a destroyed element should release at once")
	}
	if d.Len() != 0 {
		t.Errorf("Len() = %d, want 0", d.Len())
	}
	if _, ok := d.Lookup(node); ok {
		t.Error("released binding should not be looked up")
	}
}

func TestLoggerComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	c := dnd.New(dnd.WithLogger(logger))
	node := dom.NewNode("li", "card")
	New(c).Bind(node, Config{Source: "s"})

	dragStart(node)

	out := buf.String()
	if !strings.Contains(out, "component=dragsource") {
		t.Fatalf("missing component=dragsource:\n%s", out)
	}
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "drag start failed") && strings.Contains(line, "component=dnd") {
			t.Errorf("dragsource line carries the dnd component too: %s", line)
		}
	}
}
