package llm

import (
	"encoding/json"
	"fmt"
	"os"
)

// extractFunctionName is the tool name forced for structured extraction.
const extractFunctionName = "extract"

// LoadFunctionSchema reads a JSON schema file and wraps it as the
// extraction function definition.
func LoadFunctionSchema(path string) (FunctionSchema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return FunctionSchema{}, fmt.Errorf("read schema: %w", err)
	}
	if !json.Valid(data) {
		return FunctionSchema{}, fmt.Errorf("schema %s is not valid JSON", path)
	}
	return FunctionSchema{
		Name:        extractFunctionName,
		Description: "Extract structured findings from research output",
		Parameters:  json.RawMessage(data),
	}, nil
}
