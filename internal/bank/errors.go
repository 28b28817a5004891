package bank

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when no bank has the requested slug.
var ErrNotFound = errors.New("question bank not found")

// ParseError indicates the file is not well-formed JSON or YAML.
type ParseError struct {
	Source string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("parse %s: %v", e.Source, e.Err)
	}
	return fmt.Sprintf("parse bank: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// SchemaError indicates the document does not match the bank schema.
type SchemaError struct {
	Err error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("bank schema violation: %v", e.Err)
}

func (e *SchemaError) Unwrap() error { return e.Err }

// ValidationError lists semantic problems found in a structurally valid bank.
type ValidationError struct {
	Slug     string
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid bank %q: %s", e.Slug, strings.Join(e.Problems, "; "))
}
