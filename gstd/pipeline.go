package gstd

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
)

var errEmptyName = errors.New("pipeline name is empty")

// Pipeline addresses one named pipeline. It is a value type; creating one
// does not contact the daemon.
type Pipeline struct {
	client *Client
	name   string
}

// Name returns the pipeline name.
func (p Pipeline) Name() string { return p.name }

func (p Pipeline) path(segments ...string) string {
	out := "pipelines/" + escapeSegment(p.name)
	for _, s := range segments {
		out += "/" + s
	}
	return out
}

// Create registers the pipeline with the given gst-launch description.
// The description is passed through verbatim.
func (p Pipeline) Create(ctx context.Context, description string) error {
	if p.name == "" {
		return newError(KindInvalidRequestPath, "pipeline.create", errEmptyName)
	}
	return p.client.command(ctx, "pipeline.create", http.MethodPost, "pipelines", url.Values{
		"name":        {p.name},
		"description": {description},
	})
}

// Destroy removes the pipeline from the daemon.
func (p Pipeline) Destroy(ctx context.Context) error {
	if p.name == "" {
		return newError(KindInvalidRequestPath, "pipeline.destroy", errEmptyName)
	}
	return p.client.command(ctx, "pipeline.destroy", http.MethodDelete, "pipelines", url.Values{
		"name": {p.name},
	})
}

// Play moves the pipeline to the playing state.
func (p Pipeline) Play(ctx context.Context) error { return p.setState(ctx, "playing") }

// Pause moves the pipeline to the paused state.
func (p Pipeline) Pause(ctx context.Context) error { return p.setState(ctx, "paused") }

// Stop moves the pipeline to the null state.
func (p Pipeline) Stop(ctx context.Context) error { return p.setState(ctx, "null") }

func (p Pipeline) setState(ctx context.Context, state string) error {
	return p.client.command(ctx, "pipeline.state", http.MethodPut, p.path("state"), url.Values{
		"name": {state},
	})
}

// Graph returns the pipeline graph envelope.
func (p Pipeline) Graph(ctx context.Context) (*Envelope, error) {
	return p.client.request(ctx, "pipeline.graph", http.MethodGet, p.path("graph"), nil)
}

// Elements lists the pipeline's elements.
func (p Pipeline) Elements(ctx context.Context) ([]Node, error) {
	props, err := p.client.properties(ctx, "pipeline.elements", http.MethodGet, p.path("elements"), nil)
	if err != nil {
		return nil, err
	}
	return props.Nodes, nil
}

// Properties returns the pipeline's own properties.
func (p Pipeline) Properties(ctx context.Context) (*Envelope, error) {
	return p.client.request(ctx, "pipeline.properties", http.MethodGet, p.path(), nil)
}

// SetVerbose toggles verbose state-change reporting. Only supported by
// daemons built with verbose support.
func (p Pipeline) SetVerbose(ctx context.Context, on bool) error {
	return p.client.command(ctx, "pipeline.verbose", http.MethodPut, p.path("verbose"), url.Values{
		"name": {strconv.FormatBool(on)},
	})
}

// EmitEOS sends an end-of-stream event.
func (p Pipeline) EmitEOS(ctx context.Context) error {
	return p.event(ctx, "eos", "")
}

// FlushStart sends a flush-start event.
func (p Pipeline) FlushStart(ctx context.Context) error {
	return p.event(ctx, "flush_start", "")
}

// FlushStop sends a flush-stop event; reset clears the running time.
func (p Pipeline) FlushStop(ctx context.Context, reset bool) error {
	return p.event(ctx, "flush_stop", strconv.FormatBool(reset))
}

// Seek sends a seek event.
func (p Pipeline) Seek(ctx context.Context, seek SeekEvent) error {
	return p.event(ctx, "seek", seek.String())
}

func (p Pipeline) event(ctx context.Context, name, description string) error {
	q := url.Values{"name": {name}}
	if description != "" {
		q.Set("description", description)
	}
	return p.client.command(ctx, "pipeline.event."+name, http.MethodPost, p.path("event"), q)
}

// Element returns a handle for a child element.
func (p Pipeline) Element(name string) Element {
	return Element{pipeline: p, name: name}
}

// Bus returns the handle for the pipeline's message bus.
func (p Pipeline) Bus() Bus {
	return Bus{pipeline: p}
}
