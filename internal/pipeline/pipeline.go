// Package pipeline chains the research and language-model providers
// into a deep-research run: each query is researched, its synthesized
// analysis is reshaped into structured JSON, and queries fan out with
// bounded concurrency.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"drill/internal/llm"
	"drill/internal/research"
	"drill/pkg/batch"
)

// Researcher is the research provider surface the pipeline needs.
type Researcher interface {
	Start(ctx context.Context, req research.Request) (research.Job, error)
	Wait(ctx context.Context, jobID string, pollInterval, budget time.Duration) (research.Job, error)
}

// Generator is the language-model surface the pipeline needs.
type Generator interface {
	GenerateStructured(ctx context.Context, req llm.GenerateRequest) (json.RawMessage, error)
}

// Deps bundles the collaborators for a pipeline run.
type Deps struct {
	Research     Researcher
	LLM          Generator
	Schema       llm.FunctionSchema
	SystemPrompt string
	Temperature  float64
	Observer     Observer

	Verbose       bool
	VerboseWriter io.Writer
	NoColor       bool
}

// Params configures a single pipeline run.
type Params struct {
	MaxConcurrent int
	AbortOnError  bool
	Timeout       time.Duration

	MaxDepth     int
	TimeLimit    int
	MaxURLs      int
	PollInterval time.Duration
	Budget       time.Duration
}

// QueryResult is the outcome of one successfully processed query.
type QueryResult struct {
	Query      string            `json:"query"`
	JobID      string            `json:"job_id"`
	Analysis   string            `json:"analysis"`
	Sources    []research.Source `json:"sources,omitempty"`
	Structured json.RawMessage   `json:"structured"`
	Elapsed    float64           `json:"elapsed_seconds"`
}

// Results aggregates a pipeline run. QueryResults preserves the
// relative order of the input queries, with failures omitted.
type Results struct {
	RunID        string        `json:"run_id"`
	Queries      []string      `json:"queries"`
	QueryResults []QueryResult `json:"results"`
	FailedCount  int           `json:"failed_count"`
	StartedAt    time.Time     `json:"started_at"`
	Elapsed      float64       `json:"elapsed_seconds"`

	// Errors carries the per-query failures of a partial-mode run.
	Errors []error `json:"-"`
}

// Run executes the pipeline over the given queries.
func Run(ctx context.Context, queries []string, deps Deps, params Params) (Results, error) {
	runID, err := NewRunID()
	if err != nil {
		return Results{}, err
	}
	observer := deps.Observer
	if observer == nil {
		observer = NopObserver{}
	}
	startedAt := time.Now()
	observer.OnRunStart(runID, queries)
	deps.logVerbose(styleRun, fmt.Sprintf("Run %s queries=%d concurrency=%d", runID, len(queries), params.MaxConcurrent))

	tasks := make([]batch.Task[QueryResult], len(queries))
	for index, query := range queries {
		tasks[index] = deps.queryTask(index, query, params, observer)
		observer.OnQueryEvent(QueryEvent{Index: index, Query: query, Type: QueryQueued, EmittedAt: time.Now()})
	}

	outcome, err := batch.Run(ctx, tasks, batch.Options{
		MaxConcurrent: params.MaxConcurrent,
		AbortOnError:  params.AbortOnError,
		Timeout:       params.Timeout,
	})
	if err != nil {
		deps.logVerbose(styleError, fmt.Sprintf("Run %s aborted: %v", runID, err))
		observer.OnRunEnd(Results{RunID: runID, Queries: queries, StartedAt: startedAt})
		return Results{}, err
	}
	if summary := outcome.ErrorSummary(); summary != "" {
		deps.logVerbose(styleError, fmt.Sprintf("Run %s partial: %s", runID, summary))
	}

	results := Results{
		RunID:        runID,
		Queries:      queries,
		QueryResults: outcome.Values,
		FailedCount:  len(outcome.Errors),
		Errors:       outcome.Errors,
		StartedAt:    startedAt,
		Elapsed:      time.Since(startedAt).Seconds(),
	}
	observer.OnRunEnd(results)
	return results, nil
}

// queryTask builds the batch task for one query: submit research, wait
// for the synthesized analysis, then extract structured JSON.
func (d Deps) queryTask(index int, query string, params Params, observer Observer) batch.Task[QueryResult] {
	return func(ctx context.Context) (QueryResult, error) {
		started := time.Now()
		emit := func(eventType QueryEventType, jobID, errMessage string) {
			observer.OnQueryEvent(QueryEvent{
				Index:     index,
				Query:     query,
				Type:      eventType,
				JobID:     jobID,
				Error:     errMessage,
				Elapsed:   time.Since(started),
				EmittedAt: time.Now(),
			})
		}

		emit(QueryResearching, "", "")
		d.logVerbose(styleQuery, fmt.Sprintf("Query %d researching: %s", index+1, query))
		job, err := d.Research.Start(ctx, research.Request{
			Query:     query,
			MaxDepth:  params.MaxDepth,
			TimeLimit: params.TimeLimit,
			MaxURLs:   params.MaxURLs,
		})
		if err != nil {
			emit(QueryFailed, "", err.Error())
			return QueryResult{}, fmt.Errorf("query %d: submit research: %w", index+1, err)
		}

		emit(QueryPolling, job.ID, "")
		job, err = d.Research.Wait(ctx, job.ID, params.PollInterval, params.Budget)
		if err != nil {
			emit(QueryFailed, job.ID, err.Error())
			return QueryResult{}, fmt.Errorf("query %d: research: %w", index+1, err)
		}

		emit(QueryExtracting, job.ID, "")
		d.logVerbose(styleQuery, fmt.Sprintf("Query %d extracting job=%s sources=%d", index+1, job.ID, len(job.Sources)))
		structured, err := d.LLM.GenerateStructured(ctx, llm.GenerateRequest{
			Content:      job.Analysis,
			SystemPrompt: d.SystemPrompt,
			Schema:       d.Schema,
			Temperature:  d.Temperature,
		})
		if err != nil {
			emit(QueryFailed, job.ID, err.Error())
			return QueryResult{}, fmt.Errorf("query %d: structured extraction: %w", index+1, err)
		}

		emit(QueryDone, job.ID, "")
		return QueryResult{
			Query:      query,
			JobID:      job.ID,
			Analysis:   job.Analysis,
			Sources:    job.Sources,
			Structured: structured,
			Elapsed:    time.Since(started).Seconds(),
		}, nil
	}
}
