// Package research implements the client for the web-research provider.
// Every call is paced through a rate-limited request queue when one is
// attached.
package research

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"drill/internal/upstream"
	"drill/pkg/requestqueue"
)

const providerName = "research"

// Client talks to the research provider's deep-research API.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
	queue   *requestqueue.Queue
}

// New constructs a client for the given base URL and API key. A nil
// queue disables admission pacing.
func New(baseURL, apiKey string, queue *requestqueue.Queue) *Client {
	return NewWithTimeout(baseURL, apiKey, queue, 0)
}

// NewWithTimeout constructs a client with a per-request HTTP timeout.
func NewWithTimeout(baseURL, apiKey string, queue *requestqueue.Queue, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
		queue:   queue,
	}
}

// Start submits a research job and returns its identifier and status.
func (c *Client) Start(ctx context.Context, req Request) (Job, error) {
	if strings.TrimSpace(req.Query) == "" {
		return Job{}, fmt.Errorf("research: query is required")
	}
	var job Job
	err := c.through(ctx, func(ctx context.Context) error {
		payload, err := json.Marshal(req)
		if err != nil {
			return err
		}
		body, status, err := c.do(ctx, http.MethodPost, "/v1/deep-research", payload)
		if err != nil {
			return err
		}
		if status != http.StatusOK {
			return decodeError(status, body)
		}
		var res startResponse
		if err := json.Unmarshal(body, &res); err != nil {
			return err
		}
		if !res.Success || res.ID == "" {
			return fmt.Errorf("research: submission rejected")
		}
		job = Job{ID: res.ID, Status: StatusPending}
		return nil
	})
	return job, err
}

// Status fetches the current state of a research job.
func (c *Client) Status(ctx context.Context, jobID string) (Job, error) {
	if strings.TrimSpace(jobID) == "" {
		return Job{}, fmt.Errorf("research: job id is required")
	}
	var job Job
	err := c.through(ctx, func(ctx context.Context) error {
		body, status, err := c.do(ctx, http.MethodGet, "/v1/deep-research/"+jobID, nil)
		if err != nil {
			return err
		}
		if status != http.StatusOK {
			return decodeError(status, body)
		}
		var res statusResponse
		if err := json.Unmarshal(body, &res); err != nil {
			return err
		}
		job = Job{
			ID:       jobID,
			Status:   res.Status,
			Analysis: res.Data.FinalAnalysis,
			Sources:  res.Data.Sources,
			Error:    res.Error,
		}
		return nil
	})
	return job, err
}

// through routes a call via the request queue when one is attached.
func (c *Client) through(ctx context.Context, task requestqueue.Task) error {
	if c.queue == nil {
		return task(ctx)
	}
	return c.queue.Do(ctx, task)
}

// do performs an HTTP request with bearer authorization.
func (c *Client) do(ctx context.Context, method, path string, payload []byte) ([]byte, int, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return body, resp.StatusCode, nil
}

// errorResponse is the provider's error body shape.
type errorResponse struct {
	Error string `json:"error"`
}

// decodeError maps a non-2xx response to a typed upstream error.
func decodeError(status int, body []byte) error {
	var res errorResponse
	message := ""
	if err := json.Unmarshal(body, &res); err == nil {
		message = res.Error
	}
	return upstream.NewError(providerName, status, message)
}
