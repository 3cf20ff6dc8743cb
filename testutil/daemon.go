package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/gstclient/component"
	"github.com/kbukum/gstclient/testutil/fixtures"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// Reply is a scripted response.
type Reply struct {
	Status int
	Body   []byte
	// Headers are set on the response before the body is written.
	Headers map[string]string
}

// Request is a request the daemon received.
type Request struct {
	Method string
	// Path is the escaped request path.
	Path   string
	Query  url.Values
	Header http.Header
}

type route struct {
	method string
	path   string
}

type daemonState struct {
	routes   map[route]Reply
	requests []Request
}

// Daemon is a fake gstd backed by gin and httptest.Server. Unscripted
// requests get a 404 with a plain text body.
type Daemon struct {
	mu      sync.RWMutex
	engine  *gin.Engine
	ts      *httptest.Server
	started bool
	state   daemonState
}

var (
	_ component.Component = (*Daemon)(nil)
	_ TestComponent       = (*Daemon)(nil)
)

// NewDaemon creates a stopped daemon with no scripted routes.
func NewDaemon() *Daemon {
	d := &Daemon{state: daemonState{routes: make(map[route]Reply)}}
	d.engine = gin.New()
	d.engine.UseRawPath = true
	d.engine.Any("/*path", d.serve)
	return d
}

func (d *Daemon) serve(c *gin.Context) {
	req := Request{
		Method: c.Request.Method,
		Path:   c.Request.URL.EscapedPath(),
		Query:  c.Request.URL.Query(),
		Header: c.Request.Header.Clone(),
	}
	_, _ = io.Copy(io.Discard, c.Request.Body)

	d.mu.Lock()
	d.state.requests = append(d.state.requests, req)
	reply, ok := d.state.routes[route{method: req.Method, path: req.Path}]
	d.mu.Unlock()

	if !ok {
		c.String(http.StatusNotFound, "no route for %s %s", req.Method, req.Path)
		return
	}
	for k, v := range reply.Headers {
		c.Header(k, v)
	}
	c.Data(reply.Status, "application/json", reply.Body)
}

// Handle scripts the reply for method and escaped path, replacing any
// earlier script for the same pair.
func (d *Daemon) Handle(method, path string, status int, body []byte) {
	d.HandleReply(method, path, Reply{Status: status, Body: body})
}

// HandleReply scripts a full reply.
func (d *Daemon) HandleReply(method, path string, reply Reply) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state.routes[route{method: method, path: path}] = reply
}

// HandleFixture replies 200 with an embedded fixture.
func (d *Daemon) HandleFixture(method, path, name string) {
	d.Handle(method, path, http.StatusOK, fixtures.MustLoad(name))
}

// HandleEnvelope replies 200 with an envelope built from its parts.
// A nil response is encoded as JSON null.
func (d *Daemon) HandleEnvelope(method, path string, code int, description string, response any) {
	body, err := json.Marshal(map[string]any{
		"code":        code,
		"description": description,
		"response":    response,
	})
	if err != nil {
		panic(fmt.Sprintf("testutil: encode envelope: %v", err))
	}
	d.Handle(method, path, http.StatusOK, body)
}

// URL returns the daemon base URL, or "" before Start.
func (d *Daemon) URL() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.ts == nil {
		return ""
	}
	return d.ts.URL
}

// Requests returns the requests received so far, oldest first.
func (d *Daemon) Requests() []Request {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]Request, len(d.state.requests))
	copy(out, d.state.requests)
	return out
}

// LastRequest returns the most recent request.
func (d *Daemon) LastRequest() (Request, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if len(d.state.requests) == 0 {
		return Request{}, false
	}
	return d.state.requests[len(d.state.requests)-1], true
}

func (d *Daemon) Name() string { return "gstd-fake" }

func (d *Daemon) Start(_ context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started {
		return fmt.Errorf("component already started")
	}
	d.ts = httptest.NewServer(d.engine)
	d.started = true
	return nil
}

func (d *Daemon) Stop(_ context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.started {
		return nil
	}
	d.ts.Close()
	d.started = false
	return nil
}

func (d *Daemon) Health(_ context.Context) component.Health {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if !d.started {
		return component.Health{Name: d.Name(), Status: component.StatusUnhealthy, Message: "not started"}
	}
	return component.Health{Name: d.Name(), Status: component.StatusHealthy}
}

// Reset drops all scripted routes and recorded requests. The server keeps
// its address.
func (d *Daemon) Reset(_ context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state = daemonState{routes: make(map[route]Reply)}
	return nil
}

// Snapshot captures scripted routes and recorded requests.
func (d *Daemon) Snapshot(_ context.Context) (interface{}, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.state.clone(), nil
}

func (d *Daemon) Restore(_ context.Context, snapshot interface{}) error {
	s, ok := snapshot.(daemonState)
	if !ok {
		return fmt.Errorf("invalid snapshot type %T", snapshot)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state = s.clone()
	return nil
}

func (s daemonState) clone() daemonState {
	out := daemonState{
		routes:   make(map[route]Reply, len(s.routes)),
		requests: make([]Request, len(s.requests)),
	}
	for k, v := range s.routes {
		out.routes[k] = v
	}
	copy(out.requests, s.requests)
	return out
}
