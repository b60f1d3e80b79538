package config

import "drill/internal/spec"

// Defaults applied by Normalize for fields left unset.
const (
	DefaultResearchBaseURL   = "https://api.firecrawl.dev"
	DefaultResearchKeyEnv    = "FIRECRAWL_API_KEY"
	DefaultLLMBaseURL        = "https://openrouter.ai/api/v1"
	DefaultLLMKeyEnv         = "LLM_API_KEY"
	DefaultMaxDepth          = 7
	DefaultTimeLimitSeconds  = 270
	DefaultMaxURLs           = 20
	DefaultPollIntervalMs    = 2000
	DefaultBudgetSeconds     = 420
	DefaultRequestsPerMinute = 10
	DefaultRetryCount        = 3
	DefaultRetryDelayMs      = 1000
	DefaultMaxConcurrent     = 3
	DefaultTimeoutMs         = 300000
	DefaultOutputDir         = "./out"
)

// Normalize fills unset config fields with their defaults.
func Normalize(cfg *spec.Config) {
	if cfg.Research.BaseURL == "" {
		cfg.Research.BaseURL = DefaultResearchBaseURL
	}
	if cfg.Research.APIKeyEnv == "" {
		cfg.Research.APIKeyEnv = DefaultResearchKeyEnv
	}
	if cfg.Research.MaxDepth == 0 {
		cfg.Research.MaxDepth = DefaultMaxDepth
	}
	if cfg.Research.TimeLimitSeconds == 0 {
		cfg.Research.TimeLimitSeconds = DefaultTimeLimitSeconds
	}
	if cfg.Research.MaxURLs == 0 {
		cfg.Research.MaxURLs = DefaultMaxURLs
	}
	if cfg.Research.PollIntervalMs == 0 {
		cfg.Research.PollIntervalMs = DefaultPollIntervalMs
	}
	if cfg.Research.BudgetSeconds == 0 {
		cfg.Research.BudgetSeconds = DefaultBudgetSeconds
	}
	if cfg.LLM.BaseURL == "" {
		cfg.LLM.BaseURL = DefaultLLMBaseURL
	}
	if cfg.LLM.APIKeyEnv == "" {
		cfg.LLM.APIKeyEnv = DefaultLLMKeyEnv
	}
	if cfg.RateLimit.RequestsPerMinute == 0 {
		cfg.RateLimit.RequestsPerMinute = DefaultRequestsPerMinute
	}
	if cfg.RateLimit.RetryCount == 0 {
		cfg.RateLimit.RetryCount = DefaultRetryCount
	}
	if cfg.RateLimit.RetryDelayMs == 0 {
		cfg.RateLimit.RetryDelayMs = DefaultRetryDelayMs
	}
	if cfg.Batch.MaxConcurrent == 0 {
		cfg.Batch.MaxConcurrent = DefaultMaxConcurrent
	}
	if cfg.Batch.TimeoutMs == 0 {
		cfg.Batch.TimeoutMs = DefaultTimeoutMs
	}
	if cfg.Output.Dir == "" {
		cfg.Output.Dir = DefaultOutputDir
	}
}
