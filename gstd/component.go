package gstd

import (
	"context"
	"fmt"

	"github.com/kbukum/gstclient/component"
)

// Component adapts a Client to the component lifecycle.
type Component struct {
	client *Client
	name   string
}

var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
)

// NewComponent wraps c under the given registry name.
func NewComponent(name string, c *Client) *Component {
	if name == "" {
		name = "gstd"
	}
	return &Component{client: c, name: name}
}

func (g *Component) Name() string    { return g.name }
func (g *Component) Client() *Client { return g.client }

// Start is a no-op; the client connects lazily.
func (g *Component) Start(context.Context) error { return nil }

func (g *Component) Stop(ctx context.Context) error {
	return g.client.Close(ctx)
}

// Health lists pipelines. Unreachable daemons are unhealthy; daemons that
// answer with something unexpected are degraded.
func (g *Component) Health(ctx context.Context) component.Health {
	h := component.Health{Name: g.name}
	nodes, err := g.client.Pipelines(ctx)
	switch {
	case err == nil:
		h.Status = component.StatusHealthy
		h.Message = fmt.Sprintf("%d pipeline(s)", len(nodes))
	case IsKind(err, KindTransport), IsKind(err, KindHTTPStatus), IsKind(err, KindInvalidRequestPath):
		h.Status = component.StatusUnhealthy
		h.Message = err.Error()
	default:
		h.Status = component.StatusDegraded
		h.Message = err.Error()
	}
	return h
}

func (g *Component) Describe() component.Description {
	return component.Description{
		Name:    g.name,
		Type:    "gstd",
		Details: g.client.BaseURL().Redacted(),
	}
}
