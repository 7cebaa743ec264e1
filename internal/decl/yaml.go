package decl

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadYAML reads and parses a YAML declaration file.
func LoadYAML(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read declaration file: %w", err)
	}
	return ParseYAML(data)
}

// ParseYAML parses a YAML declaration. Unknown fields are rejected.
func ParseYAML(data []byte) (*File, error) {
	var f File
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // catches typos like "colums:"
	if err := decoder.Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := f.validate(); err != nil {
		return nil, fmt.Errorf("invalid declaration: %w", err)
	}
	return &f, nil
}
