// Package tracing records drag-and-drop interactions as OpenTelemetry spans.
//
// Each interaction becomes one "dnd.interaction" span, started when the
// payload is captured and ended with its outcome. Signals emitted while the
// span is open are added as span events. Payloads that fail to clone produce
// a short "dnd.clone" span with error status.
//
//	coord := dnd.New(dnd.WithObserver(tracing.New(
//	    tracing.WithTracerName("my-app"),
//	)))
//
// The observer uses the global OpenTelemetry tracer provider unless
// WithTracerProvider is given. Configure it in main() before starting
// interactions:
//
//	otel.SetTracerProvider(tp)
package tracing

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/dndlist/pkg/dnd"
)

// Default tracer name.
const defaultTracerName = "dndlist"

// Span names.
const (
	SpanInteraction = "dnd.interaction"
	SpanClone       = "dnd.clone"
)

// Attribute keys.
const (
	AttrSource        = attribute.Key("dnd.source")
	AttrInteractionID = attribute.Key("dnd.interaction_id")
	AttrNotified      = attribute.Key("dnd.notified")
	AttrOutcome       = attribute.Key("dnd.outcome")
	AttrSignal        = attribute.Key("dnd.signal")
)

// Config configures the tracing observer.
type Config struct {
	// TracerName is the name of the tracer (default: "dndlist").
	TracerName string

	// Provider supplies the tracer. Default: the global provider.
	Provider trace.TracerProvider
}

// Option configures the tracing observer.
type Option func(*Config)

// WithTracerName sets the tracer name.
func WithTracerName(name string) Option {
	return func(c *Config) {
		c.TracerName = name
	}
}

// WithTracerProvider sets the tracer provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Config) {
		c.Provider = tp
	}
}

// Observer implements dnd.Observer with OpenTelemetry spans.
type Observer struct {
	tracer trace.Tracer

	mu      sync.Mutex
	spans   map[string]trace.Span
	current string
}

var _ dnd.Observer = (*Observer)(nil)

// New creates a tracing observer.
func New(opts ...Option) *Observer {
	config := Config{TracerName: defaultTracerName}
	for _, opt := range opts {
		opt(&config)
	}
	if config.TracerName == "" {
		config.TracerName = defaultTracerName
	}
	if config.Provider == nil {
		config.Provider = otel.GetTracerProvider()
	}

	return &Observer{
		tracer: config.Provider.Tracer(config.TracerName),
		spans:  make(map[string]trace.Span),
	}
}

// InteractionStarted opens the interaction span.
func (o *Observer) InteractionStarted(i dnd.Interaction) {
	startOpts := []trace.SpanStartOption{
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			AttrSource.String(i.Source),
			AttrInteractionID.String(i.ID),
			AttrNotified.Bool(i.Notified),
		),
	}
	if !i.StartedAt.IsZero() {
		startOpts = append(startOpts, trace.WithTimestamp(i.StartedAt))
	}
	_, span := o.tracer.Start(context.Background(), SpanInteraction, startOpts...)

	o.mu.Lock()
	o.spans[i.ID] = span
	o.current = i.ID
	o.mu.Unlock()
}

// InteractionEnded closes the interaction span with its outcome.
func (o *Observer) InteractionEnded(i dnd.Interaction, outcome dnd.Outcome) {
	o.mu.Lock()
	span, ok := o.spans[i.ID]
	delete(o.spans, i.ID)
	if o.current == i.ID {
		o.current = ""
	}
	o.mu.Unlock()

	if !ok {
		return
	}
	span.SetAttributes(AttrOutcome.String(string(outcome)))
	if outcome == dnd.OutcomeCompleted {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// CloneFailed records a failed payload clone as an error span.
func (o *Observer) CloneFailed(source string, err error) {
	_, span := o.tracer.Start(context.Background(), SpanClone,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(AttrSource.String(source)),
	)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	span.End()
}

// SignalEmitted adds the signal as an event on the open interaction span.
func (o *Observer) SignalEmitted(sig dnd.Signal) {
	o.mu.Lock()
	span := o.spans[o.current]
	o.mu.Unlock()

	if span == nil {
		return
	}
	span.AddEvent("dnd.signal", trace.WithAttributes(
		AttrSignal.String(string(sig.Name)),
		AttrSource.String(sig.Source),
	))
}

// Open returns the number of interaction spans not yet ended.
func (o *Observer) Open() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.spans)
}
