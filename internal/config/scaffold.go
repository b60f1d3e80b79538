package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const scaffoldConfig = `version: 1

research:
  base_url: https://api.firecrawl.dev
  api_key_env: FIRECRAWL_API_KEY
  max_depth: 7
  time_limit_seconds: 270
  max_urls: 20
  poll_interval_ms: 2000

llm:
  base_url: https://openrouter.ai/api/v1
  api_key_env: LLM_API_KEY
  model: openai/o3-mini
  temperature: 0.7

rate_limit:
  requests_per_minute: 10
  retry_count: 3
  retry_delay_ms: 1000

batch:
  max_concurrent: 3
  abort_on_error: false
  timeout_ms: 300000

output:
  dir: ./out
  schema: extract.schema.json
`

const scaffoldSchema = `{
  "type": "object",
  "properties": {
    "summary": {
      "type": "string",
      "description": "Concise synthesis of the research findings"
    },
    "key_points": {
      "type": "array",
      "items": {"type": "string"},
      "description": "The most important individual findings"
    },
    "confidence": {
      "type": "string",
      "enum": ["low", "medium", "high"]
    }
  },
  "required": ["summary", "key_points"]
}
`

// Scaffold writes a starter drill.yml and extraction schema into dir.
// Existing files are left untouched.
func Scaffold(dir string) ([]string, error) {
	written := []string{}
	files := map[string]string{
		"drill.yml":           scaffoldConfig,
		"extract.schema.json": scaffoldSchema,
	}
	for name, content := range files {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			continue
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return written, fmt.Errorf("write %s: %w", name, err)
		}
		written = append(written, path)
	}
	return written, nil
}
