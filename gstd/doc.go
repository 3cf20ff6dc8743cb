// Package gstd is a typed client for the GStreamer Daemon (gstd) HTTP API.
//
// A Client owns the daemon base address and a Transport. Resources are
// addressed through stateless handles built on demand:
//
//	c, err := gstd.New(gstd.DefaultBaseURL)
//	p := c.Pipeline("p0")
//	if err := p.Create(ctx, "videotestsrc pattern=ball ! autovideosink"); err != nil {
//	    return err
//	}
//	live, err := p.Element("videotestsrc0").Property("is-live").Get(ctx)
//
// Every daemon reply is a {code, description, response} envelope. The
// response payload carries no tag and is resolved by shape in a fixed
// order: bus message, then properties collection, then single property.
//
// Failures come back as *Error with one of six kinds. Transport and HTTP
// status failures may succeed on retry; domain failures (a non-zero code in
// an HTTP 200 reply) will not without changing the request. The client never
// retries on its own.
package gstd
