package planner

import (
	"encoding/json"
	"fmt"
	"strings"
)

// extractJSON finds and returns the JSON object embedded in a model
// response. Models routinely wrap JSON in markdown code fences or
// surround it with commentary, so three patterns are tried in order:
// the full response, the fence-stripped response, and the substring
// between the first '{' and last '}'.
func extractJSON(response string) (string, error) {
	response = stripMarkdownFences(response)

	var probe any
	if err := json.Unmarshal([]byte(response), &probe); err == nil {
		return response, nil
	}

	start := strings.Index(response, "{")
	if start != -1 {
		end := strings.LastIndex(response, "}")
		if end > start {
			candidate := response[start : end+1]
			if err := json.Unmarshal([]byte(candidate), &probe); err == nil {
				return candidate, nil
			}
		}
	}

	preview := response
	if len(preview) > 100 {
		preview = preview[:100] + "..."
	}
	return "", fmt.Errorf("no valid JSON in model response: %q", preview)
}

// stripMarkdownFences removes ```json / ``` wrappers from a response.
func stripMarkdownFences(response string) string {
	trimmed := strings.TrimSpace(response)
	if strings.HasPrefix(trimmed, "```json") {
		trimmed = strings.TrimSpace(strings.TrimPrefix(trimmed, "```json"))
	} else if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimSpace(strings.TrimPrefix(trimmed, "```"))
	}
	if strings.HasSuffix(trimmed, "```") {
		trimmed = strings.TrimSpace(strings.TrimSuffix(trimmed, "```"))
	}
	return trimmed
}

// decodeInto extracts the JSON portion of a response and unmarshals it.
func decodeInto(response string, out any) error {
	jsonStr, err := extractJSON(response)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(jsonStr), out); err != nil {
		return fmt.Errorf("unmarshal model response: %w", err)
	}
	return nil
}
