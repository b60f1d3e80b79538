package spec

// Config is the parsed drill.yml configuration.
type Config struct {
	Version   int             `yaml:"version"`
	Research  ResearchConfig  `yaml:"research"`
	LLM       LLMConfig       `yaml:"llm"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Batch     BatchConfig     `yaml:"batch"`
	Output    OutputConfig    `yaml:"output"`
}

// ResearchConfig configures the web-research provider.
type ResearchConfig struct {
	BaseURL          string `yaml:"base_url"`
	APIKeyEnv        string `yaml:"api_key_env"`
	MaxDepth         int    `yaml:"max_depth"`
	TimeLimitSeconds int    `yaml:"time_limit_seconds"`
	MaxURLs          int    `yaml:"max_urls"`
	PollIntervalMs   int    `yaml:"poll_interval_ms"`
	BudgetSeconds    int    `yaml:"budget_seconds"`
}

// LLMConfig configures the language-model provider.
type LLMConfig struct {
	BaseURL     string  `yaml:"base_url"`
	APIKeyEnv   string  `yaml:"api_key_env"`
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
	Stream      bool    `yaml:"stream"`
}

// RateLimitConfig configures the outbound request queue.
type RateLimitConfig struct {
	RequestsPerMinute int `yaml:"requests_per_minute"`
	RetryCount        int `yaml:"retry_count"`
	RetryDelayMs      int `yaml:"retry_delay_ms"`
}

// BatchConfig configures query fan-out.
type BatchConfig struct {
	MaxConcurrent int  `yaml:"max_concurrent"`
	AbortOnError  bool `yaml:"abort_on_error"`
	TimeoutMs     int  `yaml:"timeout_ms"`
}

// OutputConfig configures where results and the extraction schema live.
type OutputConfig struct {
	Dir    string `yaml:"dir"`
	Schema string `yaml:"schema"`
}
