package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

var compiled sync.Map // schema name -> *jsonschema.Schema

// checkSchema returns *InvalidOutputError when raw is not JSON or does not
// satisfy s.
func checkSchema(s *Schema, raw json.RawMessage) error {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return &InvalidOutputError{Content: raw, Err: fmt.Errorf("not JSON: %w", err)}
	}

	sch, err := compile(s)
	if err != nil {
		return &InvalidOutputError{Content: raw, Err: err}
	}
	if err := sch.Validate(doc); err != nil {
		return &InvalidOutputError{Content: raw, Err: err}
	}
	return nil
}

func compile(s *Schema) (*jsonschema.Schema, error) {
	if v, ok := compiled.Load(s.Name); ok {
		return v.(*jsonschema.Schema), nil
	}

	// AddResource wants plain decoded JSON, not Go maps with typed values.
	raw, err := json.Marshal(s.Definition)
	if err != nil {
		return nil, fmt.Errorf("marshal schema %q: %w", s.Name, err)
	}
	def, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode schema %q: %w", s.Name, err)
	}

	url := "mem://llm/" + s.Name + ".json"
	c := jsonschema.NewCompiler()
	if err := c.AddResource(url, def); err != nil {
		return nil, fmt.Errorf("add schema %q: %w", s.Name, err)
	}
	sch, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile schema %q: %w", s.Name, err)
	}
	compiled.Store(s.Name, sch)
	return sch, nil
}
