package gstd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kbukum/gstclient/httpclient"
	"github.com/kbukum/gstclient/logger"
	"github.com/kbukum/gstclient/observability"
	"github.com/kbukum/gstclient/validation"
	"github.com/kbukum/gstclient/version"
)

// DefaultBaseURL is where gstd listens when started with its HTTP defaults.
const DefaultBaseURL = "http://127.0.0.1:5000"

const defaultTimeout = 30 * time.Second

// Config configures a Client.
type Config struct {
	BaseURL   string            `yaml:"base_url" mapstructure:"base_url" validate:"required"`
	Timeout   time.Duration     `yaml:"timeout" mapstructure:"timeout" validate:"gte=0"`
	UserAgent string            `yaml:"user_agent" mapstructure:"user_agent"`
	Headers   map[string]string `yaml:"headers" mapstructure:"headers"`
	// Username and Password enable basic auth, for daemons behind a proxy.
	Username string `yaml:"username" mapstructure:"username"`
	Password string `yaml:"password" mapstructure:"password" validate:"required_with=Username"`
	// Token is sent as a bearer credential instead of basic auth.
	Token string `yaml:"token" mapstructure:"token" validate:"excluded_with=Username"`
}

// DefaultConfig returns a configuration targeting DefaultBaseURL.
func DefaultConfig() Config {
	return Config{
		BaseURL:   DefaultBaseURL,
		Timeout:   defaultTimeout,
		UserAgent: version.UserAgent(),
	}
}

// ApplyDefaults fills in zero-value fields.
func (c *Config) ApplyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.UserAgent == "" {
		c.UserAgent = version.UserAgent()
	}
}

// HTTP returns the transport configuration derived from c.
func (c Config) HTTP() httpclient.Config {
	hc := httpclient.Config{
		Timeout:   c.Timeout,
		UserAgent: c.UserAgent,
		Headers:   c.Headers,
	}
	switch {
	case c.Token != "":
		hc.Auth = httpclient.BearerAuth(c.Token)
	case c.Username != "":
		hc.Auth = httpclient.BasicAuth(c.Username, c.Password)
	}
	return hc
}

// Transport sends one request and returns the response for any HTTP status.
// *httpclient.Adapter is the default implementation.
type Transport interface {
	Do(ctx context.Context, req httpclient.Request) (*httpclient.Response, error)
}

// Option configures a Client.
type Option func(*Client)

// WithTransport replaces the default HTTP transport.
func WithTransport(t Transport) Option {
	return func(c *Client) { c.transport = t }
}

// WithLogger sets the logger. The default logger discards everything.
func WithLogger(l *logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l.WithComponent("gstd")
		}
	}
}

// WithMetrics records request metrics for every exchange.
func WithMetrics(m *observability.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// Client talks to one daemon. It is immutable after construction and safe
// for concurrent use.
type Client struct {
	base      *url.URL
	transport Transport
	log       *logger.Logger
	metrics   *observability.Metrics
}

// New validates baseURL and returns a client. No request is sent.
func New(baseURL string, opts ...Option) (*Client, error) {
	cfg := DefaultConfig()
	cfg.BaseURL = baseURL
	return newClient(cfg, opts)
}

// NewFromConfig builds a client from cfg after applying defaults.
func NewFromConfig(cfg Config, opts ...Option) (*Client, error) {
	cfg.ApplyDefaults()
	return newClient(cfg, opts)
}

func newClient(cfg Config, opts []Option) (*Client, error) {
	base, err := parseBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, err
	}
	if err := validation.Validate(cfg); err != nil {
		return nil, newError(KindInvalidBaseAddress, "", err)
	}

	c := &Client{base: base, log: logger.Nop()}
	for _, opt := range opts {
		opt(c)
	}
	if c.transport == nil {
		adapter, err := httpclient.New(cfg.HTTP(), httpclient.WithLogger(c.log))
		if err != nil {
			return nil, err
		}
		c.transport = adapter
	}
	return c, nil
}

func parseBaseURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, newError(KindInvalidBaseAddress, "", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, newError(KindInvalidBaseAddress, "", fmt.Errorf("%q: scheme must be http or https", raw))
	}
	if u.Host == "" {
		return nil, newError(KindInvalidBaseAddress, "", fmt.Errorf("%q: missing host", raw))
	}
	return u, nil
}

// BaseURL returns a copy of the daemon base address.
func (c *Client) BaseURL() *url.URL {
	u := *c.base
	if c.base.User != nil {
		user := *c.base.User
		u.User = &user
	}
	return &u
}

// Close releases the transport's idle connections when it supports that.
func (c *Client) Close(ctx context.Context) error {
	if closer, ok := c.transport.(interface{ Close(context.Context) error }); ok {
		return closer.Close(ctx)
	}
	return nil
}

// Get sends a GET to path relative to the base address and returns the raw
// response. Only KindInvalidRequestPath and KindTransport errors occur.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*httpclient.Response, error) {
	return c.raw(ctx, http.MethodGet, path, query)
}

func (c *Client) Post(ctx context.Context, path string, query url.Values) (*httpclient.Response, error) {
	return c.raw(ctx, http.MethodPost, path, query)
}

func (c *Client) Put(ctx context.Context, path string, query url.Values) (*httpclient.Response, error) {
	return c.raw(ctx, http.MethodPut, path, query)
}

func (c *Client) Delete(ctx context.Context, path string, query url.Values) (*httpclient.Response, error) {
	return c.raw(ctx, http.MethodDelete, path, query)
}

// Do sends a request and decodes the reply envelope. A nil error means the
// daemon reported success.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values) (*Envelope, error) {
	return c.request(ctx, method+" "+path, method, path, query)
}

// Pipelines lists the pipelines known to the daemon.
func (c *Client) Pipelines(ctx context.Context) ([]Node, error) {
	props, err := c.properties(ctx, "pipelines.list", http.MethodGet, "pipelines", nil)
	if err != nil {
		return nil, err
	}
	return props.Nodes, nil
}

// Pipeline returns a handle for the named pipeline.
func (c *Client) Pipeline(name string) Pipeline {
	return Pipeline{client: c, name: name}
}

// Debug returns the handle for the daemon's debug subsystem.
func (c *Client) Debug() Debug {
	return Debug{client: c}
}

func (c *Client) raw(ctx context.Context, method, path string, query url.Values) (*httpclient.Response, error) {
	resp, _, err := c.exchange(ctx, method+" "+path, method, path, query, false)
	return resp, err
}

func (c *Client) request(ctx context.Context, op, method, path string, query url.Values) (*Envelope, error) {
	_, env, err := c.exchange(ctx, op, method, path, query, true)
	return env, err
}

// command issues a request whose payload is of no interest.
func (c *Client) command(ctx context.Context, op, method, path string, query url.Values) error {
	_, err := c.request(ctx, op, method, path, query)
	return err
}

func (c *Client) properties(ctx context.Context, op, method, path string, query url.Values) (*Properties, error) {
	env, err := c.request(ctx, op, method, path, query)
	if err != nil {
		return nil, err
	}
	if env.Response.Kind != PayloadProperties {
		return nil, unexpectedPayload(op, PayloadProperties, env.Response.Kind)
	}
	return env.Response.Properties, nil
}

func unexpectedPayload(op string, want, got PayloadKind) *Error {
	return newError(KindMalformedBody, op, fmt.Errorf("expected %s payload, got %s", want, got))
}

// exchange runs one request inside a span. With decode set the body is
// decoded into an envelope and any failure is classified.
func (c *Client) exchange(ctx context.Context, op, method, path string, query url.Values, decode bool) (*httpclient.Response, *Envelope, error) {
	requestID := uuid.NewString()
	oc := observability.NewOperationContext(op, method, requestID, c.metrics)
	ctx, span := oc.Start(ctx, observability.SpanGstdRequest)

	resp, env, err := c.send(ctx, op, method, path, query, requestID, decode)

	fields := logger.MergeWithDuration(logger.Fields(
		logger.FieldOperation, op,
		logger.FieldMethod, method,
		logger.FieldPath, path,
		logger.FieldRequestID, requestID,
	), oc.Duration())
	if resp != nil {
		fields[logger.FieldHTTPStatus] = resp.StatusCode
	}
	log := c.log.WithContext(ctx)

	if err != nil {
		var gerr *Error
		kind := KindTransport
		if errors.As(err, &gerr) {
			kind = gerr.Kind
			if gerr.Kind == KindDomain {
				fields[logger.FieldResponseCode] = int(gerr.Code)
			}
		}
		oc.End(ctx, span, "error", kind.String(), err)
		log.Warn("gstd request failed", logger.MergeWithError(fields, err))
		return nil, nil, err
	}

	oc.End(ctx, span, "ok", "", nil)
	log.Debug("gstd request completed", fields)
	return resp, env, nil
}

func (c *Client) send(ctx context.Context, op, method, path string, query url.Values, requestID string, decode bool) (*httpclient.Response, *Envelope, error) {
	target, err := c.resolve(path)
	if err != nil {
		return nil, nil, newError(KindInvalidRequestPath, op, err)
	}
	observability.SetSpanAttribute(ctx, observability.AttrHTTPURL, target.Redacted())

	resp, err := c.transport.Do(ctx, httpclient.Request{
		Method:  method,
		Path:    target.String(),
		Query:   query,
		Headers: map[string]string{httpclient.HeaderRequestID: requestID},
	})
	if err != nil {
		if httpclient.IsInvalidRequest(err) {
			return nil, nil, newError(KindInvalidRequestPath, op, err)
		}
		return nil, nil, newError(KindTransport, op, err)
	}
	observability.SetSpanAttribute(ctx, observability.AttrHTTPStatus, resp.StatusCode)
	if !decode {
		return resp, nil, nil
	}

	env, err := decodeResponse(resp.StatusCode, resp.Body)
	if env != nil {
		observability.SetSpanAttribute(ctx, observability.AttrResponseCode, int(env.Code))
	}
	if err != nil {
		var gerr *Error
		if errors.As(err, &gerr) {
			gerr.Op = op
		}
		return resp, nil, err
	}
	return resp, env, nil
}

// resolve joins an escaped relative path onto the base address, keeping any
// base path prefix. Empty and dot segments are rejected.
func (c *Client) resolve(path string) (*url.URL, error) {
	rel := strings.TrimLeft(path, "/")
	for _, seg := range strings.Split(rel, "/") {
		switch seg {
		case "":
			return nil, fmt.Errorf("path %q has an empty segment", path)
		case ".", "..":
			return nil, fmt.Errorf("path %q has a dot segment", path)
		}
	}
	raw := strings.TrimRight(c.base.EscapedPath(), "/") + "/" + rel
	unescaped, err := url.PathUnescape(raw)
	if err != nil {
		return nil, err
	}
	target := *c.base
	target.Path = unescaped
	target.RawPath = raw
	target.RawQuery = ""
	target.Fragment = ""
	return &target, nil
}

// escapeSegment escapes one path segment. "." and ".." are percent-encoded
// so they address a resource with that name.
func escapeSegment(s string) string {
	switch s {
	case ".":
		return "%2E"
	case "..":
		return "%2E%2E"
	}
	return url.PathEscape(s)
}
