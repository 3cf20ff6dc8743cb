// Package httpclient is the HTTP transport under the gstd client.
//
// An Adapter sends one request per call over a pooled connection set and
// returns the raw response whatever its status. Only failures to obtain a
// response are errors: timeouts, cancelled contexts, connection failures and
// requests that cannot be built. Interpreting status codes and bodies is the
// caller's job.
//
// Every request carries a User-Agent, an X-Request-ID (a fresh UUID unless
// the caller set one) and the W3C trace context of ctx.
//
//	a, err := httpclient.New(httpclient.Config{Timeout: 10 * time.Second})
//	resp, err := a.Do(ctx, httpclient.Request{
//	    Method: http.MethodGet,
//	    Path:   "http://127.0.0.1:5000/pipelines",
//	})
package httpclient
