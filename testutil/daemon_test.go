package testutil_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/kbukum/gstclient/component"
	"github.com/kbukum/gstclient/testutil"
	"github.com/kbukum/gstclient/testutil/fixtures"
)

func get(t *testing.T, rawURL string) (int, []byte) {
	t.Helper()
	resp, err := http.Get(rawURL)
	if err != nil {
		t.Fatalf("GET %s: %v", rawURL, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, body
}

func TestDaemon_ScriptedReply(t *testing.T) {
	d := testutil.NewDaemon()
	testutil.T(t).Setup(d)

	d.HandleFixture(http.MethodGet, "/pipelines", "retrieve_pipelines.json")

	status, body := get(t, d.URL()+"/pipelines?x=1")
	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	if string(body) != string(fixtures.MustLoad("retrieve_pipelines.json")) {
		t.Errorf("body = %s", body)
	}

	req, ok := d.LastRequest()
	if !ok {
		t.Fatal("no request recorded")
	}
	if req.Method != http.MethodGet || req.Path != "/pipelines" || req.Query.Get("x") != "1" {
		t.Errorf("recorded %+v", req)
	}
}

func TestDaemon_UnscriptedIs404(t *testing.T) {
	d := testutil.NewDaemon()
	testutil.T(t).Setup(d)

	status, _ := get(t, d.URL()+"/pipelines/missing")
	if status != http.StatusNotFound {
		t.Errorf("status = %d, want 404", status)
	}
	if got := len(d.Requests()); got != 1 {
		t.Errorf("recorded %d requests, want 1", got)
	}
}

func TestDaemon_EscapedPathIsKept(t *testing.T) {
	d := testutil.NewDaemon()
	testutil.T(t).Setup(d)
	d.HandleEnvelope(http.MethodGet, "/pipelines/a%20b", 0, "Success", nil)

	status, _ := get(t, d.URL()+"/pipelines/a%20b")
	if status != http.StatusOK {
		t.Errorf("status = %d, want 200", status)
	}
}

func TestDaemon_HandleEnvelope(t *testing.T) {
	d := testutil.NewDaemon()
	testutil.T(t).Setup(d)
	d.HandleEnvelope(http.MethodGet, "/x", 5, "The requested pipeline was not found", nil)

	_, body := get(t, d.URL()+"/x")
	var env struct {
		Code        int             `json:"code"`
		Description string          `json:"description"`
		Response    json.RawMessage `json:"response"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if env.Code != 5 || string(env.Response) != "null" {
		t.Errorf("envelope = %+v", env)
	}
}

func TestDaemon_ResetSnapshotRestore(t *testing.T) {
	d := testutil.NewDaemon()
	h := testutil.T(t)
	h.Setup(d)

	d.HandleEnvelope(http.MethodGet, "/pipelines", 0, "Success", nil)
	snap := h.Snapshot(d)

	h.Reset(d)
	if status, _ := get(t, d.URL()+"/pipelines"); status != http.StatusNotFound {
		t.Errorf("after reset status = %d, want 404", status)
	}
	if got := len(d.Requests()); got != 1 {
		t.Errorf("after reset recorded %d, want 1", got)
	}

	h.Restore(d, snap)
	if status, _ := get(t, d.URL()+"/pipelines"); status != http.StatusOK {
		t.Errorf("after restore status = %d, want 200", status)
	}
	if got := len(d.Requests()); got != 1 {
		t.Errorf("after restore recorded %d, want 1", got)
	}
}

func TestDaemon_RestoreRejectsForeignSnapshot(t *testing.T) {
	d := testutil.NewDaemon()
	if err := d.Restore(context.Background(), "nope"); err == nil {
		t.Error("expected error for foreign snapshot")
	}
}

func TestDaemon_Lifecycle(t *testing.T) {
	ctx := context.Background()
	d := testutil.NewDaemon()

	if h := d.Health(ctx); h.Status != component.StatusUnhealthy {
		t.Errorf("health before start = %s", h.Status)
	}
	if d.URL() != "" {
		t.Errorf("URL before start = %q", d.URL())
	}

	cleanup, err := testutil.Setup(d)
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if err := d.Start(ctx); err == nil {
		t.Error("second Start should fail")
	}
	if h := d.Health(ctx); h.Status != component.StatusHealthy {
		t.Errorf("health after start = %s", h.Status)
	}
	if err := cleanup(); err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if err := d.Stop(ctx); err != nil {
		t.Errorf("second Stop: %v", err)
	}
}

func TestFixtures_AllAreEnvelopes(t *testing.T) {
	names := fixtures.Names()
	if len(names) == 0 {
		t.Fatal("no fixtures embedded")
	}
	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			if err := fixtures.Validate(fixtures.MustLoad(name)); err != nil {
				t.Error(err)
			}
		})
	}
}

func TestFixtures_ValidateRejects(t *testing.T) {
	tests := map[string]string{
		"missing response":  `{"code":0,"description":"Success"}`,
		"code out of range": `{"code":19,"description":"?","response":null}`,
		"float value":       `{"code":0,"description":"Success","response":{"name":"rate","value":1.5,"param":{}}}`,
		"partial bus":       `{"code":0,"description":"Success","response":{"type":"eos","source":"p0"}}`,
		"not an object":     `[]`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			if err := fixtures.Validate([]byte(body)); err == nil {
				t.Error("expected schema violation")
			}
		})
	}
}

func TestFixtures_UnknownName(t *testing.T) {
	if _, err := fixtures.Load("missing.json"); err == nil {
		t.Error("expected error")
	}
}
