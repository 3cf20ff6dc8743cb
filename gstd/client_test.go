package gstd

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	apperrors "github.com/kbukum/gstclient/errors"
	"github.com/kbukum/gstclient/httpclient"
	"github.com/kbukum/gstclient/logger"
	"github.com/kbukum/gstclient/observability"
	"github.com/kbukum/gstclient/testutil"
)

const testPipeline = "test_pipeline"

func newDaemon(t *testing.T) *testutil.Daemon {
	t.Helper()
	d := testutil.NewDaemon()
	testutil.T(t).Setup(d)
	return d
}

func newTestClient(t *testing.T, d *testutil.Daemon, opts ...Option) *Client {
	t.Helper()
	c, err := New(d.URL(), opts...)
	if err != nil {
		t.Fatalf("New(%q): %v", d.URL(), err)
	}
	return c
}

// failingTransport fails the test if a request is ever sent.
type failingTransport struct{ t *testing.T }

func (f failingTransport) Do(context.Context, httpclient.Request) (*httpclient.Response, error) {
	f.t.Error("unexpected request")
	return nil, errors.New("unexpected request")
}

func TestNew_BaseURLRoundTrip(t *testing.T) {
	for _, raw := range []string{
		"http://127.0.0.1:5000",
		"https://gstd.example.com",
		"http://localhost:5000/gstd/",
		"http://[::1]:5000",
	} {
		c, err := New(raw, WithTransport(failingTransport{t}))
		if err != nil {
			t.Fatalf("New(%q): %v", raw, err)
		}
		if got := c.BaseURL().String(); got != raw {
			t.Errorf("BaseURL() = %q, want %q", got, raw)
		}
	}
}

func TestNew_BaseURLIsACopy(t *testing.T) {
	c, err := New(DefaultBaseURL, WithTransport(failingTransport{t}))
	if err != nil {
		t.Fatal(err)
	}
	u := c.BaseURL()
	u.Host = "evil:1"
	if c.BaseURL().Host != "127.0.0.1:5000" {
		t.Errorf("base mutated to %s", c.BaseURL())
	}
}

func TestNew_InvalidBaseAddress(t *testing.T) {
	for _, raw := range []string{
		"",
		"127.0.0.1:5000",
		"localhost:5000",
		"ftp://127.0.0.1:5000",
		"http://",
		"/pipelines",
		"http://a b",
	} {
		_, err := New(raw, WithTransport(failingTransport{t}))
		if !IsKind(err, KindInvalidBaseAddress) {
			t.Errorf("New(%q) err = %v, want invalid base address", raw, err)
		}
	}
}

func TestNewFromConfig(t *testing.T) {
	d := newDaemon(t)
	d.HandleFixture(http.MethodGet, "/pipelines", "retrieve_pipelines_empty.json")

	cfg := Config{
		BaseURL:  d.URL(),
		Headers:  map[string]string{"X-Tenant": "lab"},
		Username: "admin",
		Password: "secret",
	}
	c, err := NewFromConfig(cfg)
	if err != nil {
		t.Fatalf("NewFromConfig: %v", err)
	}
	if _, err := c.Pipelines(context.Background()); err != nil {
		t.Fatalf("Pipelines: %v", err)
	}
	req, _ := d.LastRequest()
	if req.Header.Get("X-Tenant") != "lab" {
		t.Errorf("X-Tenant = %q", req.Header.Get("X-Tenant"))
	}
	if user, pass, ok := (&http.Request{Header: req.Header}).BasicAuth(); !ok || user != "admin" || pass != "secret" {
		t.Errorf("basic auth = %q %q %v", user, pass, ok)
	}
}

func TestNewFromConfig_Defaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	if cfg.BaseURL != DefaultBaseURL || cfg.Timeout != 30*time.Second || cfg.UserAgent == "" {
		t.Errorf("defaults = %+v", cfg)
	}
	if DefaultConfig().BaseURL != DefaultBaseURL {
		t.Error("DefaultConfig should target DefaultBaseURL")
	}
}

func TestNewFromConfig_BearerToken(t *testing.T) {
	d := newDaemon(t)
	d.HandleFixture(http.MethodGet, "/pipelines", "retrieve_pipelines_empty.json")

	c, err := NewFromConfig(Config{BaseURL: d.URL(), Token: "t0k"})
	if err != nil {
		t.Fatalf("NewFromConfig: %v", err)
	}
	if _, err := c.Pipelines(context.Background()); err != nil {
		t.Fatalf("Pipelines: %v", err)
	}
	req, _ := d.LastRequest()
	if got := req.Header.Get("Authorization"); got != "Bearer t0k" {
		t.Errorf("Authorization = %q", got)
	}
}

func TestNewFromConfig_TokenExcludesUsername(t *testing.T) {
	cfg := Config{BaseURL: DefaultBaseURL, Username: "admin", Password: "secret", Token: "t0k"}
	_, err := NewFromConfig(cfg, WithTransport(failingTransport{t}))
	if !IsKind(err, KindInvalidBaseAddress) {
		t.Fatalf("err = %v, want invalid base address", err)
	}
	if !apperrors.IsAppError(err) {
		t.Error("validation details should stay reachable through the chain")
	}
}

func TestNewFromConfig_PasswordRequiredWithUsername(t *testing.T) {
	_, err := NewFromConfig(Config{BaseURL: DefaultBaseURL, Username: "admin"}, WithTransport(failingTransport{t}))
	if !IsKind(err, KindInvalidBaseAddress) {
		t.Fatalf("err = %v, want invalid base address", err)
	}
}

func TestClient_CreatePipelineQuery(t *testing.T) {
	d := newDaemon(t)
	d.HandleFixture(http.MethodPost, "/pipelines", "create_pipeline.json")
	c := newTestClient(t, d)

	if err := c.Pipeline(testPipeline).Create(context.Background(), "videotestsrc pattern=ball"); err != nil {
		t.Fatalf("Create: %v", err)
	}

	req, ok := d.LastRequest()
	if !ok {
		t.Fatal("no request")
	}
	want := url.Values{"name": {testPipeline}, "description": {"videotestsrc pattern=ball"}}
	if req.Method != http.MethodPost || req.Path != "/pipelines" || req.Query.Encode() != want.Encode() {
		t.Errorf("got %s %s?%s", req.Method, req.Path, req.Query.Encode())
	}
}

func TestClient_Pipelines(t *testing.T) {
	tests := []struct {
		fixture string
		want    []string
	}{
		{"retrieve_pipelines.json", []string{testPipeline}},
		{"retrieve_pipelines_empty.json", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.fixture, func(t *testing.T) {
			d := newDaemon(t)
			d.HandleFixture(http.MethodGet, "/pipelines", tt.fixture)

			nodes, err := newTestClient(t, d).Pipelines(context.Background())
			if err != nil {
				t.Fatalf("Pipelines: %v", err)
			}
			if nodes == nil || len(nodes) != len(tt.want) {
				t.Fatalf("nodes = %#v, want %v", nodes, tt.want)
			}
			for i, n := range nodes {
				if n.Name != tt.want[i] {
					t.Errorf("nodes[%d] = %q, want %q", i, n.Name, tt.want[i])
				}
			}
		})
	}
}

func TestClient_DomainFailure(t *testing.T) {
	d := newDaemon(t)
	d.HandleFixture(http.MethodPost, "/pipelines", "create_pipeline_existing.json")

	err := newTestClient(t, d).Pipeline(testPipeline).Create(context.Background(), "fakesrc ! fakesink")
	if !IsDomainCode(err, CodeExistingName) {
		t.Fatalf("err = %v, want existing-name", err)
	}
	var gerr *Error
	errors.As(err, &gerr)
	if gerr.Op != "pipeline.create" || gerr.Retryable() {
		t.Errorf("op = %q retryable = %v", gerr.Op, gerr.Retryable())
	}
}

func TestClient_HTTPStatusEvenWithEnvelope(t *testing.T) {
	d := newDaemon(t)
	d.Handle(http.MethodGet, "/pipelines", http.StatusInternalServerError,
		[]byte(`{"code":0,"description":"Success","response":{"properties":[],"nodes":[]}}`))

	_, err := newTestClient(t, d).Pipelines(context.Background())
	var gerr *Error
	if !errors.As(err, &gerr) || gerr.Kind != KindHTTPStatus || gerr.StatusCode != http.StatusInternalServerError {
		t.Fatalf("err = %v, want http status 500", err)
	}
	if !gerr.Retryable() {
		t.Error("http status failures are retryable")
	}
}

func TestClient_UnscriptedRouteIsHTTPStatus(t *testing.T) {
	d := newDaemon(t)
	_, err := newTestClient(t, d).Pipeline("nope").Properties(context.Background())
	if !IsKind(err, KindHTTPStatus) {
		t.Fatalf("err = %v, want http status", err)
	}
}

func TestClient_TransportFailure(t *testing.T) {
	d := testutil.NewDaemon()
	cleanup, err := testutil.Setup(d)
	if err != nil {
		t.Fatal(err)
	}
	c := newTestClient(t, d)
	if err := cleanup(); err != nil {
		t.Fatal(err)
	}

	_, err = c.Pipelines(context.Background())
	var gerr *Error
	if !errors.As(err, &gerr) || gerr.Kind != KindTransport {
		t.Fatalf("err = %v, want transport", err)
	}
	if !gerr.Retryable() {
		t.Error("connection failures are retryable")
	}
	if !httpclient.IsConnection(err) {
		t.Errorf("cause = %v, want connection error", gerr.Err)
	}
}

func TestClient_CanceledContext(t *testing.T) {
	d := newDaemon(t)
	d.HandleFixture(http.MethodGet, "/pipelines", "retrieve_pipelines.json")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestClient(t, d).Pipelines(ctx)
	var gerr *Error
	if !errors.As(err, &gerr) || gerr.Kind != KindTransport {
		t.Fatalf("err = %v, want transport", err)
	}
	if gerr.Retryable() {
		t.Error("cancellation is not retryable")
	}
}

func TestClient_BasePathPrefix(t *testing.T) {
	d := newDaemon(t)
	d.HandleFixture(http.MethodGet, "/api/v1/pipelines", "retrieve_pipelines.json")

	for _, base := range []string{d.URL() + "/api/v1", d.URL() + "/api/v1/"} {
		c, err := New(base)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := c.Pipelines(context.Background()); err != nil {
			t.Errorf("base %q: %v", base, err)
		}
	}
}

func TestClient_PathSegmentsAreEscaped(t *testing.T) {
	d := newDaemon(t)
	d.HandleFixture(http.MethodGet, "/pipelines/my%20pipe%2F1/elements", "retrieve_pipeline_elements.json")

	nodes, err := newTestClient(t, d).Pipeline("my pipe/1").Elements(context.Background())
	if err != nil {
		t.Fatalf("Elements: %v", err)
	}
	if len(nodes) != 2 {
		t.Errorf("nodes = %v", nodes)
	}
}

func TestClient_RawVerbs(t *testing.T) {
	d := newDaemon(t)
	c := newTestClient(t, d)
	ctx := context.Background()

	verbs := []struct {
		method string
		call   func(context.Context, string, url.Values) (*httpclient.Response, error)
	}{
		{http.MethodGet, c.Get},
		{http.MethodPost, c.Post},
		{http.MethodPut, c.Put},
		{http.MethodDelete, c.Delete},
	}
	for _, v := range verbs {
		resp, err := v.call(ctx, "/anything", url.Values{"k": {"v"}})
		if err != nil {
			t.Fatalf("%s: %v", v.method, err)
		}
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("%s status = %d, raw verbs must not classify", v.method, resp.StatusCode)
		}
		req, _ := d.LastRequest()
		if req.Method != v.method || req.Query.Get("k") != "v" {
			t.Errorf("recorded %s %v", req.Method, req.Query)
		}
	}
}

func TestClient_InvalidRequestPath(t *testing.T) {
	d := newDaemon(t)
	_, err := newTestClient(t, d).Get(context.Background(), "bad%zz", nil)
	if !IsKind(err, KindInvalidRequestPath) {
		t.Fatalf("err = %v, want invalid request path", err)
	}
	if len(d.Requests()) != 0 {
		t.Error("no request should reach the daemon")
	}
}

func TestClient_Do(t *testing.T) {
	d := newDaemon(t)
	d.HandleFixture(http.MethodGet, "/pipelines/test_pipeline/graph", "retrieve_pipeline_graph.json")

	env, err := newTestClient(t, d).Do(context.Background(), http.MethodGet, "pipelines/test_pipeline/graph", nil)
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if env.Code != CodeSuccess || env.Response.Kind != PayloadProperty {
		t.Errorf("envelope = %+v", env)
	}
}

func TestClient_RequestHeaders(t *testing.T) {
	d := newDaemon(t)
	d.HandleFixture(http.MethodGet, "/pipelines", "retrieve_pipelines.json")
	if _, err := newTestClient(t, d).Pipelines(context.Background()); err != nil {
		t.Fatal(err)
	}
	req, _ := d.LastRequest()
	if ua := req.Header.Get("User-Agent"); !strings.HasPrefix(ua, "gstclient/") {
		t.Errorf("User-Agent = %q", ua)
	}
	if id := req.Header.Get(httpclient.HeaderRequestID); len(id) != 36 {
		t.Errorf("X-Request-ID = %q", id)
	}
	if req.Header.Get("Accept") != "application/json" {
		t.Errorf("Accept = %q", req.Header.Get("Accept"))
	}
}

func TestClient_LogsFailuresAtWarn(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(&logger.Config{Level: "warn", Format: "json", Writer: &buf}, "gstd-test")

	d := newDaemon(t)
	d.HandleFixture(http.MethodDelete, "/pipelines", "no_pipeline.json")
	c := newTestClient(t, d, WithLogger(log))

	if err := c.Pipeline("ghost").Destroy(context.Background()); !IsDomainCode(err, CodeNoPipeline) {
		t.Fatalf("err = %v", err)
	}
	out := buf.String()
	for _, want := range []string{`"gstd request failed"`, `"operation":"pipeline.destroy"`, `"response_code":5`, `"component":"gstd"`} {
		if !strings.Contains(out, want) {
			t.Errorf("log missing %s:\n%s", want, out)
		}
	}
}

func TestClient_RecordsMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer mp.Shutdown(context.Background())
	metrics, err := observability.NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatal(err)
	}

	d := newDaemon(t)
	d.HandleFixture(http.MethodGet, "/pipelines", "retrieve_pipelines.json")
	c := newTestClient(t, d, WithMetrics(metrics))
	if _, err := c.Pipelines(context.Background()); err != nil {
		t.Fatal(err)
	}
	_, _ = c.Pipeline("ghost").Properties(context.Background())

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatal(err)
	}
	var total int64
	errorsSeen := false
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			switch m.Name {
			case "gstd.client.request.total":
				if sum, ok := m.Data.(metricdata.Sum[int64]); ok {
					for _, dp := range sum.DataPoints {
						total += dp.Value
					}
				}
			case "gstd.client.error.total":
				errorsSeen = true
			}
		}
	}
	if total != 2 {
		t.Errorf("request total = %d, want 2", total)
	}
	if !errorsSeen {
		t.Error("expected error metric for the failed request")
	}
}

func TestClient_ConcurrentUse(t *testing.T) {
	d := newDaemon(t)
	d.HandleFixture(http.MethodGet, "/pipelines", "retrieve_pipelines.json")
	c := newTestClient(t, d)

	const n = 16
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		go func() {
			_, err := c.Pipelines(context.Background())
			errs <- err
		}()
	}
	for i := 0; i < n; i++ {
		if err := <-errs; err != nil {
			t.Errorf("concurrent Pipelines: %v", err)
		}
	}
	if got := len(d.Requests()); got != n {
		t.Errorf("daemon saw %d requests, want %d", got, n)
	}
}

func TestClient_Close(t *testing.T) {
	c, err := New(DefaultBaseURL)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Close(context.Background()); err != nil {
		t.Errorf("Close: %v", err)
	}
	c, _ = New(DefaultBaseURL, WithTransport(failingTransport{t}))
	if err := c.Close(context.Background()); err != nil {
		t.Errorf("Close without closer: %v", err)
	}
}
