package config

import (
	"fmt"
	"strings"

	"drill/internal/spec"
)

// Issue captures a validation problem with a config field.
type Issue struct {
	Field   string
	Message string
}

// ValidationError aggregates config validation issues.
type ValidationError struct {
	Issues []Issue
}

// Error renders validation errors as a multi-line string.
func (err *ValidationError) Error() string {
	if err == nil || len(err.Issues) == 0 {
		return "config validation failed"
	}
	lines := make([]string, 0, len(err.Issues))
	for _, issue := range err.Issues {
		lines = append(lines, fmt.Sprintf("%s: %s", issue.Field, issue.Message))
	}
	return strings.Join(lines, "\n")
}

// Validate checks a normalized config for correctness.
func Validate(cfg *spec.Config) error {
	var issues []Issue
	add := func(field, message string) {
		issues = append(issues, Issue{Field: field, Message: message})
	}

	if cfg.Version == 0 {
		add("version", "is required")
	} else if cfg.Version != 1 {
		add("version", fmt.Sprintf("unsupported version %d", cfg.Version))
	}

	validateResearch(cfg.Research, add)
	validateLLM(cfg.LLM, add)
	validateRateLimit(cfg.RateLimit, add)
	validateBatch(cfg.Batch, add)

	if len(issues) > 0 {
		return &ValidationError{Issues: issues}
	}
	return nil
}

// validateResearch checks the research provider section.
func validateResearch(cfg spec.ResearchConfig, add func(field, message string)) {
	if !strings.HasPrefix(cfg.BaseURL, "http://") && !strings.HasPrefix(cfg.BaseURL, "https://") {
		add("research.base_url", "must be an http(s) URL")
	}
	if strings.TrimSpace(cfg.APIKeyEnv) == "" {
		add("research.api_key_env", "is required")
	}
	if cfg.MaxDepth < 1 {
		add("research.max_depth", "must be >= 1")
	}
	if cfg.TimeLimitSeconds < 1 {
		add("research.time_limit_seconds", "must be >= 1")
	}
	if cfg.MaxURLs < 1 {
		add("research.max_urls", "must be >= 1")
	}
	if cfg.PollIntervalMs < 1 {
		add("research.poll_interval_ms", "must be >= 1")
	}
	if cfg.BudgetSeconds < 0 {
		add("research.budget_seconds", "must be >= 0")
	}
}

// validateLLM checks the language-model provider section.
func validateLLM(cfg spec.LLMConfig, add func(field, message string)) {
	if !strings.HasPrefix(cfg.BaseURL, "http://") && !strings.HasPrefix(cfg.BaseURL, "https://") {
		add("llm.base_url", "must be an http(s) URL")
	}
	if strings.TrimSpace(cfg.APIKeyEnv) == "" {
		add("llm.api_key_env", "is required")
	}
	if strings.TrimSpace(cfg.Model) == "" {
		add("llm.model", "is required")
	}
	if cfg.Temperature < 0 || cfg.Temperature > 2 {
		add("llm.temperature", "must be between 0 and 2")
	}
}

// validateRateLimit checks the request queue section.
func validateRateLimit(cfg spec.RateLimitConfig, add func(field, message string)) {
	if cfg.RequestsPerMinute < 1 {
		add("rate_limit.requests_per_minute", "must be >= 1")
	}
	if cfg.RetryCount < 0 {
		add("rate_limit.retry_count", "must be >= 0")
	}
	if cfg.RetryDelayMs < 1 {
		add("rate_limit.retry_delay_ms", "must be >= 1")
	}
}

// validateBatch checks the fan-out section.
func validateBatch(cfg spec.BatchConfig, add func(field, message string)) {
	if cfg.MaxConcurrent < 1 {
		add("batch.max_concurrent", "must be >= 1")
	}
	if cfg.TimeoutMs < 0 {
		add("batch.timeout_ms", "must be >= 0")
	}
}
