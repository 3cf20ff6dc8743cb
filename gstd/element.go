package gstd

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Element addresses an element inside a pipeline.
type Element struct {
	pipeline Pipeline
	name     string
}

func (e Element) Name() string       { return e.name }
func (e Element) Pipeline() Pipeline { return e.pipeline }

func (e Element) path(segments ...string) string {
	return e.pipeline.path(append([]string{"elements", escapeSegment(e.name)}, segments...)...)
}

// Properties returns the element's property listing.
func (e Element) Properties(ctx context.Context) (*Envelope, error) {
	return e.pipeline.client.request(ctx, "element.properties", http.MethodGet, e.path("properties"), nil)
}

// Property returns a handle for one element property.
func (e Element) Property(name string) ElementProperty {
	return ElementProperty{element: e, name: name}
}

// SignalConnect blocks until the element emits signal or the signal
// timeout expires, and returns the callback envelope.
func (e Element) SignalConnect(ctx context.Context, signal string) (*Envelope, error) {
	return e.pipeline.client.request(ctx, "element.signal.connect", http.MethodGet,
		e.path("signals", escapeSegment(signal), "callback"), nil)
}

// SignalDisconnect releases a pending SignalConnect.
func (e Element) SignalDisconnect(ctx context.Context, signal string) error {
	return e.pipeline.client.command(ctx, "element.signal.disconnect", http.MethodGet,
		e.path("signals", escapeSegment(signal), "disconnect"), nil)
}

// SetSignalTimeout bounds how long SignalConnect waits. A negative timeout
// waits forever.
func (e Element) SetSignalTimeout(ctx context.Context, signal string, timeout time.Duration) error {
	return e.pipeline.client.command(ctx, "element.signal.timeout", http.MethodPut,
		e.path("signals", escapeSegment(signal), "timeout"), url.Values{"name": {nanos(timeout)}})
}

// ElementProperty addresses one property of an element.
type ElementProperty struct {
	element Element
	name    string
}

func (p ElementProperty) Name() string     { return p.name }
func (p ElementProperty) Element() Element { return p.element }

func (p ElementProperty) path() string {
	return p.element.path("properties", escapeSegment(p.name))
}

// Get reads the property's current value and metadata.
func (p ElementProperty) Get(ctx context.Context) (*Property, error) {
	const op = "element.property.get"
	env, err := p.element.pipeline.client.request(ctx, op, http.MethodGet, p.path(), nil)
	if err != nil {
		return nil, err
	}
	if env.Response.Kind != PayloadProperty {
		return nil, unexpectedPayload(op, PayloadProperty, env.Response.Kind)
	}
	return env.Response.Property, nil
}

// Set writes value, encoded according to its kind.
func (p ElementProperty) Set(ctx context.Context, value PropertyValue) error {
	return p.element.pipeline.client.command(ctx, "element.property.set", http.MethodPut, p.path(),
		url.Values{"name": {value.String()}})
}

// nanos renders d in nanoseconds; negative durations become -1.
func nanos(d time.Duration) string {
	if d < 0 {
		return "-1"
	}
	return strconv.FormatInt(d.Nanoseconds(), 10)
}
