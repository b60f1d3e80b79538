package llm

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// SchemaError reports that the model's output did not match the
// function schema.
type SchemaError struct {
	Function string
	Cause    error
}

// Error describes the failed validation.
func (e *SchemaError) Error() string {
	return fmt.Sprintf("llm: output for %s does not match schema: %v", e.Function, e.Cause)
}

// Unwrap exposes the validator's cause.
func (e *SchemaError) Unwrap() error { return e.Cause }

// validateAgainstSchema checks the assembled arguments against the
// function's parameter schema.
func validateAgainstSchema(args json.RawMessage, schema FunctionSchema) error {
	if len(schema.Parameters) == 0 {
		return nil
	}
	compiler := jsonschema.NewCompiler()
	resource := schema.Name + ".schema.json"
	if err := compiler.AddResource(resource, bytes.NewReader(schema.Parameters)); err != nil {
		return fmt.Errorf("llm: invalid parameter schema for %s: %w", schema.Name, err)
	}
	compiled, err := compiler.Compile(resource)
	if err != nil {
		return fmt.Errorf("llm: compile parameter schema for %s: %w", schema.Name, err)
	}
	var doc any
	if err := json.Unmarshal(args, &doc); err != nil {
		return &SchemaError{Function: schema.Name, Cause: err}
	}
	if err := compiled.Validate(doc); err != nil {
		return &SchemaError{Function: schema.Name, Cause: err}
	}
	return nil
}
