package client

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// schemaDef is a named JSON Schema for one response body.
type schemaDef struct {
	Name       string
	Definition map[string]any
}

var feedbackSchema = &schemaDef{
	Name: "feedback",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"response": map[string]any{"type": "string"},
			"error":    map[string]any{"type": "string"},
		},
		"anyOf": []any{
			map[string]any{"required": []any{"response"}},
			map[string]any{"required": []any{"error"}},
		},
	},
}

var questionSchema = &schemaDef{
	Name: "question",
	Definition: map[string]any{
		"type":     "object",
		"required": []any{"success"},
		"properties": map[string]any{
			"success":       map[string]any{"type": "boolean"},
			"message":       map[string]any{"type": "string"},
			"question":      map[string]any{"type": "string"},
			"question_text": map[string]any{"type": "string"},
			"insert_text":   map[string]any{"type": []any{"string", "null"}},
			"marks":         map[string]any{"type": "integer"},
			"number":        map[string]any{"type": "integer", "minimum": 0},
			"total":         map[string]any{"type": "integer", "minimum": 0},
		},
		"if": map[string]any{
			"properties": map[string]any{"success": map[string]any{"const": true}},
		},
		"then": map[string]any{"required": []any{"question_text", "marks"}},
		"else": map[string]any{"required": []any{"message"}},
	},
}

var navigationSchema = &schemaDef{
	Name: "navigation",
	Definition: map[string]any{
		"type":     "object",
		"required": []any{"number", "total"},
		"properties": map[string]any{
			"number": map[string]any{"type": "integer", "minimum": 0},
			"total":  map[string]any{"type": "integer", "minimum": 0},
		},
	},
}

// schemaCache caches compiled JSON schemas by name.
var schemaCache sync.Map // map[string]*jsonschema.Schema

// validate checks raw against schema. Returns *ErrInvalidPayload on failure.
func validate(schema *schemaDef, raw []byte) error {
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return &ErrInvalidPayload{Schema: schema.Name, Body: raw, Err: fmt.Errorf("invalid JSON: %w", err)}
	}

	compiled, err := compiledSchema(schema)
	if err != nil {
		return &ErrInvalidPayload{Schema: schema.Name, Body: raw, Err: fmt.Errorf("compile schema: %w", err)}
	}

	if err := compiled.Validate(parsed); err != nil {
		return &ErrInvalidPayload{Schema: schema.Name, Body: raw, Err: err}
	}
	return nil
}

// compiledSchema returns a cached compiled schema or compiles and caches it.
func compiledSchema(schema *schemaDef) (*jsonschema.Schema, error) {
	if cached, ok := schemaCache.Load(schema.Name); ok {
		return cached.(*jsonschema.Schema), nil
	}

	// The compiler wants plain decoded JSON values, not Go literals.
	defBytes, err := json.Marshal(schema.Definition)
	if err != nil {
		return nil, fmt.Errorf("marshal schema definition: %w", err)
	}
	var defParsed any
	if err := json.Unmarshal(defBytes, &defParsed); err != nil {
		return nil, fmt.Errorf("parse schema definition: %w", err)
	}

	c := jsonschema.NewCompiler()
	schemaURL := fmt.Sprintf("schema://%s.json", schema.Name)
	if err := c.AddResource(schemaURL, defParsed); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}
	compiled, err := c.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}

	schemaCache.Store(schema.Name, compiled)
	return compiled, nil
}
