// Package version carries gstctl build metadata.
//
// Values are injected at link time:
//
//	go build -ldflags "-X github.com/kbukum/gstclient/version.Version=0.3.0" ./cmd/gstctl
//
// and fall back to the VCS stamp recorded by the Go toolchain.
package version
