package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrJSONFormat is returned when no valid JSON document can be recovered from
// a model response.
var ErrJSONFormat = errors.New("response is not valid JSON")

// FormatError carries an excerpt of the text that failed to parse.
type FormatError struct {
	Excerpt string
	Err     error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v (%q)", ErrJSONFormat, e.Err, e.Excerpt)
	}
	return fmt.Sprintf("%s (%q)", ErrJSONFormat, e.Excerpt)
}

func (e *FormatError) Is(target error) bool { return target == ErrJSONFormat }

func (e *FormatError) Unwrap() error { return e.Err }

// NewFormatError builds a FormatError for text, keeping only a short excerpt.
func NewFormatError(text string, err error) *FormatError {
	return &FormatError{Excerpt: LimitStr(strings.TrimSpace(text), 120), Err: err}
}

// StripThink drops a leading <think>...</think> block emitted by reasoning models.
func StripThink(s string) string {
	if strings.Contains(s, "<think>") {
		if idx := strings.LastIndex(s, "</think>"); idx != -1 {
			s = s[idx+len("</think>"):]
		}
	}
	return s
}

// ExtractJSON recovers a JSON document from a model response. It strips code
// fences, tries the text as-is, and then falls back to the span between the
// first opening bracket and the last matching closer.
func ExtractJSON(text string) (json.RawMessage, error) {
	cleaned := CleanJSON(StripThink(text))
	if cleaned == "" {
		return nil, NewFormatError(text, errors.New("empty response"))
	}
	if json.Valid([]byte(cleaned)) {
		return json.RawMessage(cleaned), nil
	}

	start := strings.IndexAny(cleaned, "{[")
	if start == -1 {
		return nil, NewFormatError(text, errors.New("no JSON object or array found"))
	}
	closer := "}"
	if cleaned[start] == '[' {
		closer = "]"
	}
	end := strings.LastIndex(cleaned, closer)
	if end <= start {
		return nil, NewFormatError(text, errors.New("unterminated JSON"))
	}

	candidate := cleaned[start : end+1]
	if !json.Valid([]byte(candidate)) {
		return nil, NewFormatError(text, errors.New("no valid JSON span"))
	}
	return json.RawMessage(candidate), nil
}

// ParseJSON recovers and decodes a JSON document into T. It never returns a
// partially decoded value.
func ParseJSON[T any](text string) (T, error) {
	var zero T
	raw, err := ExtractJSON(text)
	if err != nil {
		return zero, err
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return zero, NewFormatError(text, err)
	}
	return v, nil
}

// CleanJSON removes markdown code blocks from a string to extract raw JSON.
func CleanJSON(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		lines := strings.Split(s, "\n")
		if len(lines) >= 2 {
			if strings.HasPrefix(lines[0], "```") {
				lines = lines[1:]
			}
			if len(lines) > 0 && strings.HasPrefix(strings.TrimSpace(lines[len(lines)-1]), "```") {
				lines = lines[:len(lines)-1]
			}
			s = strings.Join(lines, "\n")
		} else {
			s = strings.Trim(strings.TrimPrefix(s, "```json"), "`")
		}
	}
	return strings.TrimSpace(s)
}
