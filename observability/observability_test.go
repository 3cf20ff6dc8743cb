package observability

import (
	"context"
	"fmt"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func withRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	})
	return rec
}

func attrValue(attrs []attribute.KeyValue, key string) (attribute.Value, bool) {
	for _, kv := range attrs {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestDefaultConfigs(t *testing.T) {
	tc := DefaultTracerConfig()
	if tc.Enabled {
		t.Error("expected tracing disabled by default")
	}
	if tc.Endpoint != "localhost:4318" || tc.SampleRate != 1.0 || !tc.Insecure {
		t.Errorf("unexpected tracer defaults %+v", tc)
	}

	mc := DefaultMeterConfig()
	if mc.Enabled {
		t.Error("expected metrics disabled by default")
	}
	if mc.Interval != 15*time.Second {
		t.Errorf("expected Interval 15s, got %v", mc.Interval)
	}
}

func TestSampler(t *testing.T) {
	tests := []struct {
		rate float64
		want string
	}{
		{1.0, "AlwaysOnSampler"},
		{2.0, "AlwaysOnSampler"},
		{0, "AlwaysOffSampler"},
		{-1, "AlwaysOffSampler"},
	}
	for _, tc := range tests {
		if got := sampler(tc.rate).Description(); got != tc.want {
			t.Errorf("sampler(%v) = %s, want %s", tc.rate, got, tc.want)
		}
	}
	if got := sampler(0.5).Description(); got == "AlwaysOnSampler" || got == "AlwaysOffSampler" {
		t.Errorf("expected ratio sampler, got %s", got)
	}
}

func TestNewResource(t *testing.T) {
	res, err := newResource(ServiceInfo{Name: "gstctl", Version: "1.2.3", Environment: "test"})
	if err != nil {
		t.Fatalf("newResource: %v", err)
	}
	v, ok := attrValue(res.Attributes(), "service.name")
	if !ok || v.AsString() != "gstctl" {
		t.Errorf("expected service.name=gstctl, got %v", v)
	}
	v, ok = attrValue(res.Attributes(), "service.version")
	if !ok || v.AsString() != "1.2.3" {
		t.Errorf("expected service.version=1.2.3, got %v", v)
	}
}

func TestStartSpanIsClientKind(t *testing.T) {
	rec := withRecorder(t)

	_, span := StartSpan(context.Background(), SpanGstdRequest)
	span.End()

	spans := rec.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].Name() != SpanGstdRequest {
		t.Errorf("expected span name %q, got %q", SpanGstdRequest, spans[0].Name())
	}
	if spans[0].SpanKind().String() != "client" {
		t.Errorf("expected client span, got %s", spans[0].SpanKind())
	}
}

func TestSetSpanAttribute(t *testing.T) {
	rec := withRecorder(t)

	ctx, span := StartSpan(context.Background(), "attrs")
	SetSpanAttribute(ctx, "string-key", "value")
	SetSpanAttribute(ctx, "int-key", 42)
	SetSpanAttribute(ctx, "int64-key", int64(100))
	SetSpanAttribute(ctx, "float-key", 3.14)
	SetSpanAttribute(ctx, "bool-key", true)
	SetSpanAttribute(ctx, "slice-key", []string{"a", "b"})
	SetSpanAttribute(ctx, "unsupported-key", struct{}{})
	span.End()

	attrs := rec.Ended()[0].Attributes()
	if v, ok := attrValue(attrs, "int-key"); !ok || v.AsInt64() != 42 {
		t.Errorf("expected int-key=42, got %v", v)
	}
	if _, ok := attrValue(attrs, "unsupported-key"); ok {
		t.Error("expected unsupported value to be ignored")
	}
}

func TestSetSpanAttributeNoSpan(t *testing.T) {
	SetSpanAttribute(context.Background(), "key", "value")
}

func TestOperationContextFromContext(t *testing.T) {
	if OperationContextFromContext(context.Background()) != nil {
		t.Error("expected nil when operation context not set")
	}

	oc := NewOperationContext("pipeline.create", "POST", "req-1", nil)
	ctx := WithOperationContext(context.Background(), oc)
	if got := OperationContextFromContext(ctx); got != oc {
		t.Errorf("expected stored operation context, got %v", got)
	}
}

func TestOperationContextDuration(t *testing.T) {
	oc := NewOperationContext("op", "GET", "", nil)
	oc.StartTime = time.Now().Add(-50 * time.Millisecond)
	if d := oc.Duration(); d < 45*time.Millisecond || d > time.Second {
		t.Errorf("expected duration around 50ms, got %v", d)
	}
}

func TestOperationContextSpanLifecycle(t *testing.T) {
	rec := withRecorder(t)

	oc := NewOperationContext("pipeline.create", "POST", "req-1", nil)
	ctx, span := oc.Start(context.Background(), SpanGstdRequest)
	if OperationContextFromContext(ctx) != oc {
		t.Error("expected Start to store the operation context")
	}
	oc.End(ctx, span, "error", "domain", fmt.Errorf("existing name"))

	ended := rec.Ended()
	if len(ended) != 1 {
		t.Fatalf("expected 1 span, got %d", len(ended))
	}
	s := ended[0]
	if s.Status().Code != codes.Error {
		t.Errorf("expected error status, got %v", s.Status())
	}
	for key, want := range map[string]string{
		AttrOperationName: "pipeline.create",
		AttrHTTPMethod:    "POST",
		AttrRequestID:     "req-1",
		AttrErrorKind:     "domain",
		AttrStatus:        "error",
	} {
		if v, ok := attrValue(s.Attributes(), key); !ok || v.AsString() != want {
			t.Errorf("attribute %s = %v, want %q", key, v, want)
		}
	}
}

func TestMetricsRecorded(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer mp.Shutdown(context.Background())

	metrics, err := NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}

	oc := NewOperationContext("bus.read", "GET", "", metrics)
	ctx, span := oc.Start(context.Background(), SpanGstdRequest)
	oc.End(ctx, span, "error", "transport", fmt.Errorf("refused"))

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	seen := map[string]bool{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			seen[m.Name] = true
		}
	}
	for _, name := range []string{
		"gstd.client.request.total",
		"gstd.client.request.duration",
		"gstd.client.request.active",
		"gstd.client.error.total",
	} {
		if !seen[name] {
			t.Errorf("expected metric %s to be recorded", name)
		}
	}
}

func TestNoopMetrics(t *testing.T) {
	metrics, err := NewMetrics(noop.NewMeterProvider().Meter("test"))
	if err != nil {
		t.Fatalf("unexpected error creating metrics: %v", err)
	}
	ctx := context.Background()
	metrics.RecordRequestStart(ctx)
	metrics.RecordRequestEnd(ctx, "GET", "pipelines", "ok", 100*time.Millisecond)
	metrics.RecordError(ctx, "http_status", "pipelines")
}

func TestSetupDisabled(t *testing.T) {
	shutdown, err := Setup(context.Background(), DefaultTracerConfig(), DefaultMeterConfig(), ServiceInfo{Name: "gstctl"})
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("shutdown: %v", err)
	}
}

func TestSetupEnabled(t *testing.T) {
	prevTP, prevMP := otel.GetTracerProvider(), otel.GetMeterProvider()
	defer func() {
		otel.SetTracerProvider(prevTP)
		otel.SetMeterProvider(prevMP)
	}()

	tc := DefaultTracerConfig()
	tc.Enabled = true
	mc := DefaultMeterConfig()
	mc.Enabled = true

	// Exporters connect lazily, so no collector is needed to construct them.
	shutdown, err := Setup(context.Background(), tc, mc, ServiceInfo{Name: "gstctl", Version: "test"})
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_ = shutdown(ctx)
}
