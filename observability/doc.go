// Package observability wires OpenTelemetry tracing and metrics for gstclient.
//
// The gstd client opens one span per daemon exchange and records request
// metrics when a *Metrics is configured. Exporters are only started when the
// CLI enables them:
//
//	shutdown, err := observability.Setup(ctx, cfg.Tracing, cfg.Metrics, observability.ServiceInfo{
//	    Name: "gstctl", Version: version.GetShortVersion(),
//	})
//	defer shutdown(ctx)
//
//	metrics, err := observability.NewMetrics(observability.Meter(observability.InstrumentationName))
package observability
