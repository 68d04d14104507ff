// Package ai implements the AI-backed ports of the meal plan engine:
// ingredient scaling and shopping list aggregation, on top of a provider
// neutral TextGenerator.
package ai

import (
	"encoding/json"
	"fmt"
	"strings"
)

// extractJSON returns the JSON document embedded in a model reply, dropping
// markdown code fences and any prose around the outermost object or array
func extractJSON(reply string) (string, error) {
	text := strings.TrimSpace(reply)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		if i := strings.LastIndex(text, "```"); i >= 0 {
			text = text[:i]
		}
		text = strings.TrimSpace(text)
	}

	start := strings.IndexAny(text, "{[")
	if start < 0 {
		return "", fmt.Errorf("no JSON found in reply")
	}
	closing := byte('}')
	if text[start] == '[' {
		closing = ']'
	}
	end := strings.LastIndexByte(text, closing)
	if end < start {
		return "", fmt.Errorf("unterminated JSON in reply")
	}
	return text[start : end+1], nil
}

// decodeReply extracts and unmarshals the JSON of a model reply into v
func decodeReply(reply string, v interface{}) error {
	raw, err := extractJSON(reply)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return fmt.Errorf("decode reply: %w", err)
	}
	return nil
}

// cleanLines trims lines and drops empty ones
func cleanLines(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
