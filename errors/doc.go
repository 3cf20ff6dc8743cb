// Package errors provides the presentation error type shared by gstclient
// tools. It carries a machine-readable code, a retryable flag, structured
// details and the process exit code a CLI should use for the failure.
package errors
