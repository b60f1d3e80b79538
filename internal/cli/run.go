package cli

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"drill/internal/config"
	"drill/internal/llm"
	"drill/internal/pipeline"
	"drill/internal/research"
	"drill/internal/spec"
	"drill/internal/ui/live"
	"drill/pkg/requestqueue"
)

// runPipeline is a seam for tests.
var runPipeline = pipeline.Run

// defaultSystemPrompt frames the extraction call for the model.
const defaultSystemPrompt = "You are a research analyst. Extract the requested structured data from the provided research findings. Be precise and only use information present in the findings."

// runRun builds the handler for the run command.
func runRun(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}

		flags := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		flags.SetOutput(stderr)
		configPath := flags.String("config", "drill.yml", "Path to drill.yml")
		queriesFile := flags.String("queries", "", "File with one query per line")
		outputDir := flags.String("output-dir", "", "Override output directory")
		uiMode := flags.String("ui", "auto", "UI mode: auto, live or plain")
		verbose := flags.Bool("verbose", false, "Log query progress to stderr")
		noColor := flags.Bool("no-color", false, "Disable colored output")
		if err := flags.Parse(args); err != nil {
			if err == flag.ErrHelp {
				printCommandUsage(cmd, stdout)
				return ExitOK
			}
			fmt.Fprintf(stderr, "invalid arguments: %v\n", err)
			printCommandUsage(cmd, stderr)
			return ExitUsage
		}

		cfg, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to load config: %v\n", err)
			return ExitError
		}

		queries, err := gatherQueries(flags.Args(), *queriesFile)
		if err != nil {
			fmt.Fprintf(stderr, "%v\n", err)
			return ExitUsage
		}

		decision, err := resolveUIMode(*uiMode, *verbose, stdout)
		if err != nil {
			fmt.Fprintf(stderr, "%v\n", err)
			return ExitUsage
		}
		if decision.warning != "" {
			fmt.Fprintln(stderr, decision.warning)
		}

		return executeRun(cfg, *configPath, queries, runOptions{
			outputDir: *outputDir,
			useLive:   decision.useLive,
			verbose:   *verbose,
			noColor:   *noColor,
		}, stdout, stderr)
	}
}

// runOptions carries resolved run command flags.
type runOptions struct {
	outputDir string
	useLive   bool
	verbose   bool
	noColor   bool
}

// executeRun wires providers together and runs the pipeline.
func executeRun(cfg spec.Config, configPath string, queries []string, opts runOptions, stdout, stderr io.Writer) int {
	researchKey := os.Getenv(cfg.Research.APIKeyEnv)
	if researchKey == "" {
		fmt.Fprintf(stderr, "Missing research API key: set %s\n", cfg.Research.APIKeyEnv)
		return ExitError
	}
	llmKey := os.Getenv(cfg.LLM.APIKeyEnv)
	if llmKey == "" {
		fmt.Fprintf(stderr, "Missing LLM API key: set %s\n", cfg.LLM.APIKeyEnv)
		return ExitError
	}

	baseDir := filepath.Dir(configPath)
	schema, err := llm.LoadFunctionSchema(resolvePath(baseDir, cfg.Output.Schema))
	if err != nil {
		fmt.Fprintf(stderr, "Failed to load extraction schema: %v\n", err)
		return ExitError
	}

	queue, err := requestqueue.New(requestqueue.Options{
		RequestsPerMinute: cfg.RateLimit.RequestsPerMinute,
		RetryCount:        cfg.RateLimit.RetryCount,
		RetryDelay:        time.Duration(cfg.RateLimit.RetryDelayMs) * time.Millisecond,
	})
	if err != nil {
		fmt.Fprintf(stderr, "Failed to start request queue: %v\n", err)
		return ExitError
	}
	defer queue.Close()

	researcher := research.New(cfg.Research.BaseURL, researchKey, queue)
	generator, err := newGenerator(cfg.LLM, llmKey, queue)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to build LLM client: %v\n", err)
		return ExitError
	}

	var observer pipeline.Observer = pipeline.NopObserver{}
	var controller *live.Controller
	if opts.useLive {
		controller = live.Start(stdout, live.Options{NoColor: opts.noColor})
		observer = controller
	}

	deps := pipeline.Deps{
		Research:      researcher,
		LLM:           generator,
		Schema:        schema,
		SystemPrompt:  defaultSystemPrompt,
		Temperature:   cfg.LLM.Temperature,
		Observer:      observer,
		Verbose:       opts.verbose,
		VerboseWriter: stderr,
		NoColor:       opts.noColor,
	}
	params := pipeline.Params{
		MaxConcurrent: cfg.Batch.MaxConcurrent,
		AbortOnError:  cfg.Batch.AbortOnError,
		Timeout:       time.Duration(cfg.Batch.TimeoutMs) * time.Millisecond,
		MaxDepth:      cfg.Research.MaxDepth,
		TimeLimit:     cfg.Research.TimeLimitSeconds,
		MaxURLs:       cfg.Research.MaxURLs,
		PollInterval:  time.Duration(cfg.Research.PollIntervalMs) * time.Millisecond,
		Budget:        time.Duration(cfg.Research.BudgetSeconds) * time.Second,
	}

	results, err := runPipeline(context.Background(), queries, deps, params)
	if controller != nil {
		controller.Close()
		controller.Wait()
	}
	if err != nil {
		fmt.Fprintf(stderr, "Run failed: %v\n", err)
		return ExitError
	}

	dir := opts.outputDir
	if dir == "" {
		dir = resolvePath(baseDir, cfg.Output.Dir)
	}
	path, err := pipeline.WriteResults(dir, results)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to write results: %v\n", err)
		return ExitError
	}

	fmt.Fprintf(stdout, "Run %s completed: %d/%d queries succeeded\n",
		results.RunID, len(results.QueryResults), len(results.Queries))
	fmt.Fprintf(stdout, "Results: %s\n", path)
	if results.FailedCount > 0 {
		if len(results.Errors) > 0 {
			fmt.Fprintf(stderr, "Warning: %d queries failed; first: %v\n", results.FailedCount, results.Errors[0])
		} else {
			fmt.Fprintf(stderr, "Warning: %d queries failed\n", results.FailedCount)
		}
	}
	return ExitOK
}

// resolvePath makes a relative path absolute against the config dir.
func resolvePath(baseDir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}

// newGenerator builds the structured-output generator, routing calls
// through the request queue and honoring the streaming setting.
func newGenerator(cfg spec.LLMConfig, apiKey string, queue *requestqueue.Queue) (pipeline.Generator, error) {
	client, err := llm.New(cfg.Model, apiKey, cfg.BaseURL, nil)
	if err != nil {
		return nil, err
	}
	return queuedGenerator{client: client, queue: queue, stream: cfg.Stream}, nil
}

// queuedGenerator admits structured-output calls through the queue.
type queuedGenerator struct {
	client *llm.Client
	queue  *requestqueue.Queue
	stream bool
}

// GenerateStructured runs a structured-output call under rate limiting.
func (g queuedGenerator) GenerateStructured(ctx context.Context, req llm.GenerateRequest) (json.RawMessage, error) {
	var out json.RawMessage
	err := g.queue.Do(ctx, func(ctx context.Context) error {
		var callErr error
		if g.stream {
			out, callErr = g.client.GenerateStructuredStream(ctx, req)
		} else {
			out, callErr = g.client.GenerateStructured(ctx, req)
		}
		return callErr
	})
	return out, err
}
