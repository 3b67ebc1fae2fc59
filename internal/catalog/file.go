package catalog

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var seedYAML []byte

// FileSource reads a YAML catalog. An empty Path uses the built-in seed.
type FileSource struct {
	Path string
}

// Load decodes and validates the YAML catalog.
func (s FileSource) Load(ctx context.Context) (*Catalog, error) {
	if s.Path == "" {
		return Decode(bytes.NewReader(seedYAML))
	}

	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog file: %w", err)
	}
	defer f.Close()

	return Decode(f)
}

// Decode parses and validates a YAML catalog document
func Decode(r io.Reader) (*Catalog, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var c Catalog
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}
