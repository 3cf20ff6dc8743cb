// Package component defines the lifecycle interface shared by the
// long-lived pieces of gstctl: the daemon client and the telemetry
// exporters.
//
// A Registry starts components in registration order, stops them in
// reverse, and aggregates their health for `gstctl health`.
package component
