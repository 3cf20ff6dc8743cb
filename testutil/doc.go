// Package testutil provides test infrastructure for code that talks to gstd.
//
// Daemon is an in-process fake of the gstd HTTP API. It replies to each
// method and path with a scripted status and body and records every request
// so tests can assert on the exact wire traffic:
//
//	func TestCreate(t *testing.T) {
//	    d := testutil.NewDaemon()
//	    testutil.T(t).Setup(d)
//	    d.HandleFixture(http.MethodPost, "/pipelines", "create_pipeline.json")
//	    // point a client at d.URL() ...
//	}
//
// Canned envelopes recorded from a real daemon live in the fixtures
// subpackage.
//
// Daemon implements TestComponent, so it can be started, reset between
// cases, snapshotted and restored like any other test component.
package testutil
