package cmd

import (
	"encoding/json"
	"fmt"
	"strings"
)

func parseGridJSON(s string) ([][]any, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	var out [][]any
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil, newUsageError(fmt.Errorf("invalid --values-json (expected [[...],...]): %w", err))
	}
	return out, nil
}

func parseRowJSON(s string) ([]any, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, newUsageError(fmt.Errorf("missing --values-json"))
	}
	var out []any
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil, newUsageError(fmt.Errorf("invalid --values-json (expected [...]): %w", err))
	}
	return out, nil
}
