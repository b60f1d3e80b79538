package llm

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// streamChunk is a partial SSE payload.
type streamChunk struct {
	Choices []streamChoice `json:"choices"`
}

// streamChoice contains a delta event from the provider.
type streamChoice struct {
	Delta        streamDelta `json:"delta"`
	FinishReason string      `json:"finish_reason"`
}

// streamDelta contains incremental content or tool-call fragments.
type streamDelta struct {
	Content   string           `json:"content"`
	ToolCalls []streamToolCall `json:"tool_calls"`
}

// streamToolCall represents a streaming tool-call delta.
type streamToolCall struct {
	Index    int          `json:"index"`
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Function functionCall `json:"function"`
}

// argumentAccumulator gathers streaming tool-call fragments.
type argumentAccumulator struct {
	Name      string
	Arguments strings.Builder
}

// parseStreamArguments reads an SSE body and assembles the arguments of
// the named function from its deltas. The stream ends at the [DONE]
// completion marker.
func parseStreamArguments(body io.ReadCloser, name string) (json.RawMessage, error) {
	defer body.Close()
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	accumulators := make(map[int]*argumentAccumulator)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "[DONE]" {
			break
		}
		var chunk streamChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			return nil, fmt.Errorf("llm: parse stream chunk: %w", err)
		}
		for _, ch := range chunk.Choices {
			for _, call := range ch.Delta.ToolCalls {
				acc := accumulators[call.Index]
				if acc == nil {
					acc = &argumentAccumulator{}
					accumulators[call.Index] = acc
				}
				if call.Function.Name != "" {
					acc.Name = call.Function.Name
				}
				if call.Function.Arguments != "" {
					acc.Arguments.WriteString(call.Function.Arguments)
				}
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	for _, acc := range accumulators {
		if acc.Name != name || acc.Arguments.Len() == 0 {
			continue
		}
		return json.RawMessage(acc.Arguments.String()), nil
	}
	return nil, fmt.Errorf("llm: stream contains no call to function %s", name)
}
