// Package fixtures holds gstd reply bodies captured from a running daemon.
package fixtures

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed *.json
var files embed.FS

//go:embed schema/envelope.json
var envelopeSchema []byte

// Load returns the named fixture.
func Load(name string) ([]byte, error) {
	return files.ReadFile(name)
}

// MustLoad is Load for test setup; it panics on unknown names.
func MustLoad(name string) []byte {
	b, err := Load(name)
	if err != nil {
		panic(fmt.Sprintf("fixtures: %v", err))
	}
	return b
}

// Names lists every fixture.
func Names() []string {
	names, _ := fs.Glob(files, "*.json")
	return names
}

// Validate checks body against the envelope schema gstd replies follow.
func Validate(body []byte) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(envelopeSchema),
		gojsonschema.NewBytesLoader(body),
	)
	if err != nil {
		return fmt.Errorf("fixtures: schema validation: %w", err)
	}
	if result.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("fixtures: invalid envelope: %s", strings.Join(msgs, "; "))
}
