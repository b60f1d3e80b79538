package research

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"drill/internal/upstream"
	"drill/pkg/requestqueue"
)

func TestClient_StartSubmitsJob(t *testing.T) {
	var gotAuth string
	var gotBody Request
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/deep-research" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "id": "job-123"})
	}))
	defer server.Close()

	client := New(server.URL, "secret-key", nil)
	job, err := client.Start(context.Background(), Request{
		Query:     "solid state batteries",
		MaxDepth:  5,
		TimeLimit: 180,
		MaxURLs:   15,
	})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if job.ID != "job-123" || job.Status != StatusPending {
		t.Fatalf("job = %+v, want pending job-123", job)
	}
	if gotAuth != "Bearer secret-key" {
		t.Fatalf("authorization = %q, want bearer token", gotAuth)
	}
	if gotBody.Query != "solid state batteries" || gotBody.MaxDepth != 5 || gotBody.TimeLimit != 180 || gotBody.MaxURLs != 15 {
		t.Fatalf("request body = %+v", gotBody)
	}
}

func TestClient_StartRequiresQuery(t *testing.T) {
	client := New("http://unused", "key", nil)
	if _, err := client.Start(context.Background(), Request{}); err == nil {
		t.Fatalf("empty query accepted")
	}
}

func TestClient_RateLimitErrorIsTyped(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":"rate limit exceeded"}`))
	}))
	defer server.Close()

	client := New(server.URL, "key", nil)
	_, err := client.Start(context.Background(), Request{Query: "q"})
	var apiErr *upstream.Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want upstream.Error", err)
	}
	if apiErr.Kind != upstream.KindRateLimit || !apiErr.RateLimit() {
		t.Fatalf("kind = %q, want rate_limit", apiErr.Kind)
	}
	if apiErr.Status != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", apiErr.Status)
	}
	if !strings.Contains(apiErr.Error(), "rate limit exceeded") {
		t.Fatalf("message lost: %v", apiErr)
	}
}

func TestClient_TransientErrorIsNotRateLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := New(server.URL, "key", nil)
	_, err := client.Status(context.Background(), "job-1")
	var apiErr *upstream.Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want upstream.Error", err)
	}
	if apiErr.Kind != upstream.KindTransient || apiErr.RateLimit() {
		t.Fatalf("kind = %q, want transient", apiErr.Kind)
	}
	if requestqueue.IsRateLimit(err) {
		t.Fatalf("transient error classified as rate limit")
	}
}

func TestClient_QueueRetriesRateLimitedCalls(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) <= 2 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "id": "job-7"})
	}))
	defer server.Close()

	queue, err := requestqueue.New(requestqueue.Options{
		RequestsPerMinute: 1000,
		RetryCount:        3,
		RetryDelay:        time.Millisecond,
	})
	if err != nil {
		t.Fatalf("new queue: %v", err)
	}
	defer queue.Close()

	client := New(server.URL, "key", queue)
	job, err := client.Start(context.Background(), Request{Query: "q"})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if job.ID != "job-7" {
		t.Fatalf("job = %+v", job)
	}
	if got := calls.Load(); got != 3 {
		t.Fatalf("calls = %d, want 2 rejections plus 1 success", got)
	}
}

func TestClient_StatusReturnsCompletedJob(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/deep-research/job-9" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"status":  "completed",
			"data": map[string]any{
				"finalAnalysis": "synthesized findings",
				"sources": []map[string]string{
					{"url": "https://example.com/a", "title": "A"},
					{"url": "https://example.com/b", "title": "B"},
				},
			},
		})
	}))
	defer server.Close()

	client := New(server.URL, "key", nil)
	job, err := client.Status(context.Background(), "job-9")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if job.Status != StatusCompleted || job.Analysis != "synthesized findings" {
		t.Fatalf("job = %+v", job)
	}
	if len(job.Sources) != 2 || job.Sources[0].URL != "https://example.com/a" {
		t.Fatalf("sources = %+v", job.Sources)
	}
}

func TestClient_WaitPollsUntilCompleted(t *testing.T) {
	var polls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		switch polls.Add(1) {
		case 1:
			_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "status": "pending"})
		case 2:
			_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "status": "in_progress"})
		default:
			_ = json.NewEncoder(w).Encode(map[string]any{
				"success": true,
				"status":  "completed",
				"data":    map[string]any{"finalAnalysis": "done"},
			})
		}
	}))
	defer server.Close()

	client := New(server.URL, "key", nil)
	job, err := client.Wait(context.Background(), "job-2", time.Millisecond, time.Second)
	if err != nil {
		t.Fatalf("wait: %v", err)
	}
	if job.Status != StatusCompleted || job.Analysis != "done" {
		t.Fatalf("job = %+v", job)
	}
	if polls.Load() < 3 {
		t.Fatalf("polls = %d, want at least 3", polls.Load())
	}
}

func TestClient_WaitReportsFailedJob(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "status": "failed", "error": "crawl blocked"})
	}))
	defer server.Close()

	client := New(server.URL, "key", nil)
	_, err := client.Wait(context.Background(), "job-3", time.Millisecond, time.Second)
	if err == nil || !strings.Contains(err.Error(), "crawl blocked") {
		t.Fatalf("error = %v, want failure with provider message", err)
	}
}

func TestClient_WaitHonorsBudget(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "status": "in_progress"})
	}))
	defer server.Close()

	client := New(server.URL, "key", nil)
	_, err := client.Wait(context.Background(), "job-4", time.Millisecond, 30*time.Millisecond)
	if err == nil || !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("error = %v, want deadline exceeded", err)
	}
}
