package gstd

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// Debug addresses the daemon's global GStreamer debug settings.
type Debug struct {
	client *Client
}

func (d Debug) Enable(ctx context.Context) error  { return d.put(ctx, "enable", "true") }
func (d Debug) Disable(ctx context.Context) error { return d.put(ctx, "enable", "false") }

// Threshold sets the debug threshold, e.g. "3" or "*:2,videotestsrc:5".
func (d Debug) Threshold(ctx context.Context, level string) error {
	return d.put(ctx, "threshold", level)
}

// ColorOutput toggles colored debug output.
func (d Debug) ColorOutput(ctx context.Context, on bool) error {
	return d.put(ctx, "color", strconv.FormatBool(on))
}

// Reset controls whether the threshold replaces or extends the current
// configuration.
func (d Debug) Reset(ctx context.Context, on bool) error {
	return d.put(ctx, "reset", strconv.FormatBool(on))
}

func (d Debug) put(ctx context.Context, setting, value string) error {
	return d.client.command(ctx, "debug."+setting, http.MethodPut, "debug/"+setting, url.Values{"name": {value}})
}
