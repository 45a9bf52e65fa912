package schema

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.schema.json
var files embed.FS

const (
	Info       = "info.schema.json"
	Definition = "via.schema.json"
)

const baseURL = "https://codeberg.org/miketth/kleboard/schemas/"

// Validator checks generated documents against the bundled schemas.
type Validator struct {
	schemas map[string]*jsonschema.Schema
}

func New() (*Validator, error) {
	compiler := jsonschema.NewCompiler()
	v := &Validator{schemas: map[string]*jsonschema.Schema{}}

	for _, name := range []string{Info, Definition} {
		data, err := files.ReadFile("schemas/" + name)
		if err != nil {
			return nil, fmt.Errorf("read schema %s: %w", name, err)
		}
		if err := compiler.AddResource(baseURL+name, bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("add schema resource %s: %w", name, err)
		}
	}
	for _, name := range []string{Info, Definition} {
		s, err := compiler.Compile(baseURL + name)
		if err != nil {
			return nil, fmt.Errorf("compile schema %s: %w", name, err)
		}
		v.schemas[name] = s
	}

	return v, nil
}

// Validate checks a JSON document against the named schema.
func (v *Validator) Validate(name string, data []byte) error {
	s, ok := v.schemas[name]
	if !ok {
		return fmt.Errorf("unknown schema %q", name)
	}

	var instance any
	if err := json.Unmarshal(data, &instance); err != nil {
		return fmt.Errorf("unmarshal instance: %w", err)
	}
	if err := s.Validate(instance); err != nil {
		return fmt.Errorf("validate against %s: %w", name, err)
	}
	return nil
}

// ValidateValue marshals v and validates the result.
func (v *Validator) ValidateValue(name string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal instance: %w", err)
	}
	return v.Validate(name, data)
}
