// Package patterns reads and writes scorer pattern sets as YAML and ships
// the built-in phrase lists.
package patterns

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/rcliao/memory-authenticity/internal/scorer"
)

//go:embed default.yaml
var defaultYAML []byte

// Default returns the built-in pattern set.
func Default() scorer.PatternSet {
	ps, err := Parse(defaultYAML)
	if err != nil {
		panic(fmt.Sprintf("patterns: embedded default is invalid: %v", err))
	}
	return ps
}

// Parse decodes a YAML pattern set. Unknown fields are rejected.
func Parse(data []byte) (scorer.PatternSet, error) {
	var ps scorer.PatternSet
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&ps); err != nil && !errors.Is(err, io.EOF) {
		return scorer.PatternSet{}, fmt.Errorf("%w: parse patterns: %v", scorer.ErrConfiguration, err)
	}
	return ps, nil
}

// Load reads a pattern file. An empty path returns the built-in set.
func Load(path string) (scorer.PatternSet, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return scorer.PatternSet{}, fmt.Errorf("read patterns: %w", err)
	}
	return Parse(data)
}

// Marshal encodes a pattern set as YAML.
func Marshal(ps scorer.PatternSet) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(ps); err != nil {
		return nil, fmt.Errorf("encode patterns: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode patterns: %w", err)
	}
	return buf.Bytes(), nil
}
