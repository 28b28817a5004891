package bank

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format is the on-disk encoding of a bank file.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported bank file extension %q (want .json, .yaml or .yml)", filepath.Ext(path))
	}
}

// Parse decodes, schema-checks and validates a bank document.
// YAML input is normalized to JSON first so both formats share one schema.
func Parse(data []byte, format Format, source string) (*Bank, error) {
	jsonDoc, err := toJSON(data, format)
	if err != nil {
		return nil, &ParseError{Source: source, Err: err}
	}

	if err := validateDocument(jsonDoc); err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			pe.Source = source
		}
		return nil, err
	}

	var b Bank
	dec := json.NewDecoder(bytes.NewReader(jsonDoc))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&b); err != nil {
		return nil, &ParseError{Source: source, Err: err}
	}
	b.Source = source

	if err := Validate(&b); err != nil {
		return nil, err
	}
	return &b, nil
}

// LoadFile reads and parses a bank file, picking the format from its extension.
func LoadFile(path string) (*Bank, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read bank: %w", err)
	}
	return Parse(data, format, path)
}

// Encode serializes a bank in the given format.
func Encode(b *Bank, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		out, err := json.MarshalIndent(b, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode bank: %w", err)
		}
		return append(out, '\n'), nil
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(b); err != nil {
			return nil, fmt.Errorf("encode bank: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("encode bank: %w", err)
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unknown bank format %q", format)
	}
}

// WriteFile encodes b using the format implied by path and writes it.
func WriteFile(path string, b *Bank) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	data, err := Encode(b, format)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create bank dir: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func toJSON(data []byte, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		if !json.Valid(data) {
			var v any
			return nil, json.Unmarshal(data, &v)
		}
		return data, nil
	case FormatYAML:
		var doc any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
		return json.Marshal(doc)
	default:
		return nil, fmt.Errorf("unknown bank format %q", format)
	}
}
