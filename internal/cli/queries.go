package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// gatherQueries resolves the query list from positional args or a file.
// Positional args win when both are provided.
func gatherQueries(args []string, queriesFile string) ([]string, error) {
	queries := make([]string, 0, len(args))
	for _, arg := range args {
		if trimmed := strings.TrimSpace(arg); trimmed != "" {
			queries = append(queries, trimmed)
		}
	}
	if len(queries) > 0 {
		return queries, nil
	}
	if queriesFile == "" {
		return nil, fmt.Errorf("no queries given; pass them as arguments or via --queries")
	}
	return readQueriesFile(queriesFile)
}

// readQueriesFile loads one query per line, skipping blanks and comments.
func readQueriesFile(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open queries file: %w", err)
	}
	defer file.Close()

	var queries []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		queries = append(queries, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read queries file: %w", err)
	}
	if len(queries) == 0 {
		return nil, fmt.Errorf("queries file %s contains no queries", path)
	}
	return queries, nil
}
