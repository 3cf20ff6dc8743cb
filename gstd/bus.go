package gstd

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Bus addresses a pipeline's message bus.
type Bus struct {
	pipeline Pipeline
}

func (b Bus) path(segment string) string {
	return b.pipeline.path("bus", segment)
}

// Read pops the next message. A nil message with a nil error means the
// bus was empty when the timeout expired.
func (b Bus) Read(ctx context.Context) (*BusMessage, error) {
	const op = "bus.read"
	env, err := b.pipeline.client.request(ctx, op, http.MethodGet, b.path("message"), nil)
	if err != nil {
		return nil, err
	}
	if env.Response.Kind != PayloadBus {
		return nil, unexpectedPayload(op, PayloadBus, env.Response.Kind)
	}
	return env.Response.Bus, nil
}

// SetTimeout sets how long Read waits for a message. A negative timeout
// waits forever.
func (b Bus) SetTimeout(ctx context.Context, timeout time.Duration) error {
	return b.pipeline.client.command(ctx, "bus.timeout", http.MethodPut, b.path("timeout"),
		url.Values{"name": {nanos(timeout)}})
}

// SetFilter restricts Read to the given message types, e.g. "eos", "error".
func (b Bus) SetFilter(ctx context.Context, types ...string) error {
	return b.pipeline.client.command(ctx, "bus.filter", http.MethodPut, b.path("types"),
		url.Values{"name": {strings.Join(types, "+")}})
}
