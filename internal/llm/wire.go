package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"drill/internal/upstream"
)

// completionRequest is the JSON payload sent to the provider.
type completionRequest struct {
	Model       string      `json:"model"`
	Stream      bool        `json:"stream,omitempty"`
	Messages    []message   `json:"messages"`
	Tools       []tool      `json:"tools,omitempty"`
	ToolChoice  *toolChoice `json:"tool_choice,omitempty"`
	Temperature float64     `json:"temperature,omitempty"`
}

// message represents a single chat message.
type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// tool describes a function tool for the provider.
type tool struct {
	Type     string             `json:"type"`
	Function functionDefinition `json:"function"`
}

// functionDefinition describes a tool's function signature.
type functionDefinition struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters,omitempty"`
}

// toolChoice forces the model to call a specific function.
type toolChoice struct {
	Type     string             `json:"type"`
	Function toolChoiceFunction `json:"function"`
}

// toolChoiceFunction names the forced function.
type toolChoiceFunction struct {
	Name string `json:"name"`
}

// completionResponse is the non-streaming response shape.
type completionResponse struct {
	Choices []choice `json:"choices"`
}

// choice holds one completion alternative.
type choice struct {
	Message responseMessage `json:"message"`
}

// responseMessage carries content and any tool calls the model made.
type responseMessage struct {
	Content   string     `json:"content"`
	ToolCalls []toolCall `json:"tool_calls"`
}

// toolCall represents a tool call emitted by the model.
type toolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Function functionCall `json:"function"`
}

// functionCall holds the name and JSON-encoded arguments of a call.
type functionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// buildCompletionRequest assembles the provider payload for a
// structured-output call.
func buildCompletionRequest(model string, req GenerateRequest, stream bool) completionRequest {
	messages := make([]message, 0, 2)
	if strings.TrimSpace(req.SystemPrompt) != "" {
		messages = append(messages, message{Role: "system", Content: req.SystemPrompt})
	}
	messages = append(messages, message{Role: "user", Content: req.Content})
	return completionRequest{
		Model:       model,
		Stream:      stream,
		Messages:    messages,
		Temperature: req.Temperature,
		Tools: []tool{{
			Type: "function",
			Function: functionDefinition{
				Name:        req.Schema.Name,
				Description: req.Schema.Description,
				Parameters:  req.Schema.Parameters,
			},
		}},
		ToolChoice: &toolChoice{
			Type:     "function",
			Function: toolChoiceFunction{Name: req.Schema.Name},
		},
	}
}

// extractFunctionArguments pulls the forced function's arguments out of
// a completion response.
func extractFunctionArguments(res completionResponse, name string) (json.RawMessage, error) {
	for _, ch := range res.Choices {
		for _, call := range ch.Message.ToolCalls {
			if call.Function.Name != name {
				continue
			}
			args := strings.TrimSpace(call.Function.Arguments)
			if args == "" {
				return nil, fmt.Errorf("llm: function %s called with empty arguments", name)
			}
			return json.RawMessage(args), nil
		}
	}
	return nil, fmt.Errorf("llm: response contains no call to function %s", name)
}

// errorResponse is the provider's error body shape.
type errorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// decodeError maps a non-2xx response to a typed upstream error.
func decodeError(status int, body []byte) error {
	var res errorResponse
	message := ""
	if err := json.Unmarshal(body, &res); err == nil {
		message = res.Error.Message
	}
	if message == "" {
		message = strings.TrimSpace(string(body))
	}
	return upstream.NewError(providerName, status, message)
}
