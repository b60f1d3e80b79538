package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"drill/internal/llm"
	"drill/internal/research"
)

// fakeResearcher serves canned jobs and records requests.
type fakeResearcher struct {
	mu       sync.Mutex
	started  []research.Request
	failFor  map[string]error
	analysis map[string]string
	nextID   int
}

func newFakeResearcher() *fakeResearcher {
	return &fakeResearcher{failFor: map[string]error{}, analysis: map[string]string{}}
}

func (f *fakeResearcher) Start(_ context.Context, req research.Request) (research.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.failFor[req.Query]; ok {
		return research.Job{}, err
	}
	f.started = append(f.started, req)
	f.nextID++
	id := fmt.Sprintf("job-%d", f.nextID)
	f.analysis[id] = "analysis of " + req.Query
	return research.Job{ID: id, Status: research.StatusPending}, nil
}

func (f *fakeResearcher) Wait(_ context.Context, jobID string, _, _ time.Duration) (research.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return research.Job{
		ID:       jobID,
		Status:   research.StatusCompleted,
		Analysis: f.analysis[jobID],
		Sources:  []research.Source{{URL: "https://example.com/" + jobID}},
	}, nil
}

// fakeGenerator echoes the content back as structured JSON.
type fakeGenerator struct {
	mu    sync.Mutex
	calls []llm.GenerateRequest
	err   error
}

func (f *fakeGenerator) GenerateStructured(_ context.Context, req llm.GenerateRequest) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.calls = append(f.calls, req)
	payload, _ := json.Marshal(map[string]string{"summary": req.Content})
	return payload, nil
}

// eventRecorder collects observer events.
type eventRecorder struct {
	mu     sync.Mutex
	events []QueryEvent
	runs   int
	ends   int
}

func (r *eventRecorder) OnRunStart(string, []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs++
}

func (r *eventRecorder) OnQueryEvent(event QueryEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *eventRecorder) OnRunEnd(Results) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ends++
}

func (r *eventRecorder) typesFor(index int) []QueryEventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	var types []QueryEventType
	for _, event := range r.events {
		if event.Index == index {
			types = append(types, event.Type)
		}
	}
	return types
}

func testDeps(researcher Researcher, generator Generator, observer Observer) Deps {
	return Deps{
		Research:     researcher,
		LLM:          generator,
		Schema:       llm.FunctionSchema{Name: "extract", Parameters: json.RawMessage(`{"type":"object"}`)},
		SystemPrompt: "extract insights",
		Observer:     observer,
	}
}

func testParams() Params {
	return Params{
		MaxConcurrent: 2,
		MaxDepth:      3,
		TimeLimit:     60,
		MaxURLs:       10,
		PollInterval:  time.Millisecond,
	}
}

func TestRun_ProcessesQueriesInOrder(t *testing.T) {
	researcher := newFakeResearcher()
	generator := &fakeGenerator{}
	recorder := &eventRecorder{}
	queries := []string{"alpha", "beta", "gamma"}

	results, err := Run(context.Background(), queries, testDeps(researcher, generator, recorder), testParams())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if results.RunID == "" {
		t.Fatalf("missing run id")
	}
	if len(results.QueryResults) != 3 || results.FailedCount != 0 {
		t.Fatalf("results = %+v", results)
	}
	for i, qr := range results.QueryResults {
		if qr.Query != queries[i] {
			t.Fatalf("result order = %v", results.QueryResults)
		}
		if !strings.Contains(qr.Analysis, queries[i]) {
			t.Fatalf("analysis = %q", qr.Analysis)
		}
		var structured struct {
			Summary string `json:"summary"`
		}
		if err := json.Unmarshal(qr.Structured, &structured); err != nil {
			t.Fatalf("structured output: %v", err)
		}
	}
	if recorder.runs != 1 || recorder.ends != 1 {
		t.Fatalf("run events = %d/%d", recorder.runs, recorder.ends)
	}
}

func TestRun_QueryEventLifecycle(t *testing.T) {
	recorder := &eventRecorder{}
	_, err := Run(context.Background(), []string{"solo"}, testDeps(newFakeResearcher(), &fakeGenerator{}, recorder), testParams())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	got := recorder.typesFor(0)
	want := []QueryEventType{QueryQueued, QueryResearching, QueryPolling, QueryExtracting, QueryDone}
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("events = %v, want %v", got, want)
		}
	}
}

func TestRun_PartialFailureKeepsSurvivors(t *testing.T) {
	researcher := newFakeResearcher()
	researcher.failFor["beta"] = fmt.Errorf("crawl refused")
	recorder := &eventRecorder{}
	var verbose bytes.Buffer
	deps := testDeps(researcher, &fakeGenerator{}, recorder)
	deps.Verbose = true
	deps.VerboseWriter = &verbose
	deps.NoColor = true

	results, err := Run(context.Background(), []string{"alpha", "beta", "gamma"}, deps, testParams())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(results.QueryResults) != 2 || results.FailedCount != 1 {
		t.Fatalf("results = %+v", results)
	}
	if results.QueryResults[0].Query != "alpha" || results.QueryResults[1].Query != "gamma" {
		t.Fatalf("survivor order = %v", results.QueryResults)
	}
	if len(results.Errors) != 1 || !strings.Contains(results.Errors[0].Error(), "crawl refused") {
		t.Fatalf("errors = %v", results.Errors)
	}
	if !strings.Contains(verbose.String(), "1 tasks failed") {
		t.Fatalf("partial warning missing from verbose output:\n%s", verbose.String())
	}
	failedTypes := recorder.typesFor(1)
	if failedTypes[len(failedTypes)-1] != QueryFailed {
		t.Fatalf("failed query events = %v", failedTypes)
	}
}

func TestRun_AbortOnErrorPropagates(t *testing.T) {
	researcher := newFakeResearcher()
	researcher.failFor["bad"] = fmt.Errorf("boom")
	params := testParams()
	params.AbortOnError = true
	params.MaxConcurrent = 1

	_, err := Run(context.Background(), []string{"bad", "good"}, testDeps(researcher, &fakeGenerator{}, &eventRecorder{}), params)
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("error = %v, want aborted run", err)
	}
}

func TestRun_ExtractionFailureIsQueryFailure(t *testing.T) {
	generator := &fakeGenerator{err: fmt.Errorf("schema mismatch")}
	results, err := Run(context.Background(), []string{"alpha"}, testDeps(newFakeResearcher(), generator, &eventRecorder{}), testParams())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(results.QueryResults) != 0 || results.FailedCount != 1 {
		t.Fatalf("results = %+v", results)
	}
}

func TestRun_EmptyQueries(t *testing.T) {
	results, err := Run(context.Background(), nil, testDeps(newFakeResearcher(), &fakeGenerator{}, &eventRecorder{}), testParams())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(results.QueryResults) != 0 || results.FailedCount != 0 {
		t.Fatalf("results = %+v", results)
	}
}

func TestWriteResults(t *testing.T) {
	dir := t.TempDir()
	results := Results{RunID: "20260830T120000Z-abcdef", Queries: []string{"q"}}
	path, err := WriteResults(dir, results)
	if err != nil {
		t.Fatalf("write results: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	var decoded Results
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.RunID != results.RunID {
		t.Fatalf("round trip = %+v", decoded)
	}
}

func TestNewRunID_Format(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	id, err := NewRunIDWithRand(now, bytes.NewReader([]byte{1, 2, 3, 4, 5, 6}))
	if err != nil {
		t.Fatalf("new run id: %v", err)
	}
	if id != "20260830T120000Z-010203040506" {
		t.Fatalf("id = %q", id)
	}
	if _, err := NewRunIDWithRand(now, nil); err == nil {
		t.Fatalf("nil reader accepted")
	}
}
