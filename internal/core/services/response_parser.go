package services

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var (
	jsonFenceRe  = regexp.MustCompile("```json\n?")
	plainFenceRe = regexp.MustCompile("```\n?")
)

// ParseError reports backend output that does not contain a JSON object
type ParseError struct {
	Raw    string
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse meal plan response: %s", e.Reason)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ParseResponse extracts the JSON object embedded in raw backend text.
// Markdown code fences are stripped and the span from the first "{" to the
// last "}" is decoded.
func ParseResponse(raw string) (map[string]interface{}, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = jsonFenceRe.ReplaceAllString(cleaned, "")
	cleaned = plainFenceRe.ReplaceAllString(cleaned, "")

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start == -1 || end < start {
		return nil, parseFailure(raw, "no valid JSON found in response", nil)
	}

	var parsed map[string]interface{}
	if err := json.Unmarshal([]byte(cleaned[start:end+1]), &parsed); err != nil {
		return nil, parseFailure(raw, err.Error(), err)
	}
	return parsed, nil
}

func parseFailure(raw, reason string, err error) *ParseError {
	logEvent("mealplan_parse_failed", map[string]interface{}{
		"reason":       reason,
		"raw_response": raw,
	})
	return &ParseError{Raw: raw, Reason: reason, Err: err}
}
