// Package llm implements the client for the language-model provider.
// Structured output is obtained through function calling: the model is
// forced to call a named function whose parameters describe the
// desired JSON shape.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
)

const (
	providerName   = "llm"
	defaultBaseURL = "https://openrouter.ai/api/v1"
)

// HTTPDoer abstracts the HTTP client used by the provider.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// FunctionSchema names a function and the JSON shape of its arguments.
type FunctionSchema struct {
	Name        string
	Description string
	Parameters  json.RawMessage
}

// GenerateRequest describes a structured-output generation call.
type GenerateRequest struct {
	Content      string
	SystemPrompt string
	Schema       FunctionSchema
	Temperature  float64
}

// Client talks to an OpenRouter-compatible chat-completions API.
type Client struct {
	APIKey  string
	BaseURL string
	Model   string
	Client  HTTPDoer
}

// New constructs a client with explicit settings.
func New(model, apiKey, baseURL string, client HTTPDoer) (*Client, error) {
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("llm: model is required")
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("llm: api key is required")
	}
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Client{
		APIKey:  apiKey,
		BaseURL: strings.TrimRight(baseURL, "/"),
		Model:   model,
		Client:  client,
	}, nil
}

// FromEnv builds a client using environment configuration.
func FromEnv(model string, client HTTPDoer) (*Client, error) {
	apiKey := strings.TrimSpace(os.Getenv("LLM_API_KEY"))
	if apiKey == "" {
		return nil, fmt.Errorf("llm: LLM_API_KEY is required")
	}
	return New(model, apiKey, os.Getenv("LLM_BASE_URL"), client)
}

// GenerateStructured requests a completed JSON payload matching the
// request schema and validates it before returning.
func (c *Client) GenerateStructured(ctx context.Context, req GenerateRequest) (json.RawMessage, error) {
	body, err := c.complete(ctx, req, false)
	if err != nil {
		return nil, err
	}
	var res completionResponse
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("llm: parse response: %w", err)
	}
	args, err := extractFunctionArguments(res, req.Schema.Name)
	if err != nil {
		return nil, err
	}
	if err := validateAgainstSchema(args, req.Schema); err != nil {
		return nil, err
	}
	return args, nil
}

// GenerateStructuredStream is the streaming variant: partial tool-call
// fragments are accumulated until the completion marker, then the
// assembled arguments are validated like the non-streaming path.
func (c *Client) GenerateStructuredStream(ctx context.Context, req GenerateRequest) (json.RawMessage, error) {
	body, err := c.completeStream(ctx, req)
	if err != nil {
		return nil, err
	}
	args, err := parseStreamArguments(body, req.Schema.Name)
	if err != nil {
		return nil, err
	}
	if err := validateAgainstSchema(args, req.Schema); err != nil {
		return nil, err
	}
	return args, nil
}

// complete performs a chat-completions request and returns the body.
func (c *Client) complete(ctx context.Context, req GenerateRequest, stream bool) ([]byte, error) {
	resp, err := c.post(ctx, req, stream)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return body, nil
}

// completeStream performs a streaming request and returns the SSE body.
func (c *Client) completeStream(ctx context.Context, req GenerateRequest) (io.ReadCloser, error) {
	resp, err := c.post(ctx, req, true)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// post sends the chat-completions request and maps non-2xx statuses to
// typed upstream errors.
func (c *Client) post(ctx context.Context, req GenerateRequest, stream bool) (*http.Response, error) {
	payload, err := json.Marshal(buildCompletionRequest(c.Model, req, stream))
	if err != nil {
		return nil, fmt.Errorf("llm: marshal request: %w", err)
	}
	endpoint := c.BaseURL + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("llm: create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")
	resp, err := c.Client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, decodeError(resp.StatusCode, body)
	}
	return resp, nil
}
