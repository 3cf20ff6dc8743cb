package httpclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/kbukum/gstclient/logger"
)

// HeaderRequestID carries the per-request correlation id.
const HeaderRequestID = "X-Request-ID"

// Adapter sends requests over a single pooled http.Client. It is safe for
// concurrent use.
type Adapter struct {
	httpClient *http.Client
	config     Config
	log        *logger.Logger
	propagator propagation.TextMapPropagator
	newID      func() string
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithHTTPClient replaces the underlying http.Client. Config.Timeout is not
// applied to a supplied client.
func WithHTTPClient(hc *http.Client) Option {
	return func(a *Adapter) { a.httpClient = hc }
}

// WithLogger sets the logger used for per-exchange debug lines.
func WithLogger(l *logger.Logger) Option {
	return func(a *Adapter) { a.log = l.WithComponent("httpclient") }
}

// WithPropagator sets the propagator used to inject trace context.
// Defaults to the global otel propagator.
func WithPropagator(p propagation.TextMapPropagator) Option {
	return func(a *Adapter) { a.propagator = p }
}

// WithRequestIDFunc overrides X-Request-ID generation.
func WithRequestIDFunc(fn func() string) Option {
	return func(a *Adapter) { a.newID = fn }
}

// New creates an HTTP adapter with the given configuration.
func New(cfg Config, opts ...Option) (*Adapter, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a := &Adapter{
		httpClient: &http.Client{
			Transport: http.DefaultTransport.(*http.Transport).Clone(),
			Timeout:   cfg.Timeout,
		},
		config: cfg,
		log:    logger.Nop(),
		newID:  func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Do sends req and returns the response for any HTTP status. The error is
// non-nil only when no response was obtained, and is then an *Error.
func (a *Adapter) Do(ctx context.Context, req Request) (*Response, error) {
	httpReq, requestID, err := a.buildRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		classified := classifySendError(ctx, err)
		a.log.Debug("request failed", logger.MergeWithError(a.exchangeFields(httpReq, requestID, start), classified))
		return nil, classified
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classifySendError(ctx, fmt.Errorf("read response body: %w", err))
	}

	fields := a.exchangeFields(httpReq, requestID, start)
	fields[logger.FieldHTTPStatus] = resp.StatusCode
	a.log.Debug("request completed", fields)

	return &Response{
		StatusCode: resp.StatusCode,
		Headers:    flattenHeaders(resp.Header),
		Body:       body,
		RequestID:  requestID,
	}, nil
}

// Close releases idle connections.
func (a *Adapter) Close(_ context.Context) error {
	a.httpClient.CloseIdleConnections()
	return nil
}

// GetConfig returns the adapter's configuration.
func (a *Adapter) GetConfig() Config {
	return a.config
}

// ResolveURL returns the absolute URL req targets, with its query merged.
func (a *Adapter) ResolveURL(req Request) (*url.URL, error) {
	u, err := url.Parse(req.Path)
	if err != nil {
		return nil, NewInvalidRequestError("parse url", err)
	}
	if !u.IsAbs() || u.Host == "" {
		return nil, NewInvalidRequestError(fmt.Sprintf("url %q is not absolute", req.Path), nil)
	}

	if len(req.Query) > 0 {
		q := u.Query()
		for k, vs := range req.Query {
			q[k] = append(q[k], vs...)
		}
		u.RawQuery = q.Encode()
	}
	return u, nil
}

func (a *Adapter) buildRequest(ctx context.Context, req Request) (*http.Request, string, error) {
	u, err := a.ResolveURL(req)
	if err != nil {
		return nil, "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, u.String(), nil)
	if err != nil {
		return nil, "", NewInvalidRequestError("create request", err)
	}

	httpReq.Header.Set("Accept", "application/json")
	if a.config.UserAgent != "" {
		httpReq.Header.Set("User-Agent", a.config.UserAgent)
	}
	for k, v := range a.config.Headers {
		httpReq.Header.Set(k, v)
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	requestID := httpReq.Header.Get(HeaderRequestID)
	if requestID == "" {
		requestID = a.newID()
		httpReq.Header.Set(HeaderRequestID, requestID)
	}

	auth := a.config.Auth
	if req.Auth != nil {
		auth = req.Auth
	}
	auth.apply(httpReq)

	propagator := a.propagator
	if propagator == nil {
		propagator = otel.GetTextMapPropagator()
	}
	propagator.Inject(ctx, propagation.HeaderCarrier(httpReq.Header))

	return httpReq, requestID, nil
}

func (a *Adapter) exchangeFields(req *http.Request, requestID string, start time.Time) map[string]interface{} {
	return logger.MergeWithDuration(logger.Fields(
		logger.FieldMethod, req.Method,
		logger.FieldPath, req.URL.RequestURI(),
		logger.FieldRequestID, requestID,
	), time.Since(start))
}

// flattenHeaders converts multi-value headers to single-value.
func flattenHeaders(h http.Header) map[string]string {
	result := make(map[string]string, len(h))
	for k, v := range h {
		if len(v) > 0 {
			result[k] = v[0]
		}
	}
	return result
}
