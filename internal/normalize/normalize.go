// Package normalize turns free-form model output into the reply shape the UI
// renders. It never fails: text it cannot decode is passed through verbatim
// with a fallback set of suggestions.
package normalize

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"unicode"

	"chatbot-backend/internal/models"
)

// Outcome tags how a reply was produced.
type Outcome int

const (
	// Parsed means the model returned a JSON object we could decode.
	Parsed Outcome = iota + 1
	// Fallback means the raw text was used as the response.
	Fallback
)

func (o Outcome) String() string {
	switch o {
	case Parsed:
		return "parsed"
	case Fallback:
		return "fallback"
	default:
		return "unknown"
	}
}

// Result is the outcome of a single Normalize call. Err carries the decode
// failure for Fallback results and is only meant for diagnostics.
type Result struct {
	Outcome Outcome
	Reply   models.NormalizedReply
	Err     error
}

var errNotObject = errors.New("model output is not a JSON object")

const fence = "```"

// StripFences removes a leading code fence (with an optional language tag)
// and a trailing fence, plus the whitespace around them.
func StripFences(text string) string {
	s := strings.TrimSpace(text)
	if strings.HasPrefix(s, fence) {
		s = s[len(fence):]
		tag := 0
		for tag < len(s) && isTagByte(s[tag]) {
			tag++
		}
		// Only drop the tag when it is clearly a tag and not the first word of prose:
		// what follows it, past spaces and tabs, must be a line break, a JSON
		// opener or the end of input.
		rest := strings.TrimLeftFunc(s[tag:], func(r rune) bool { return r != '\n' && r != '\r' && unicode.IsSpace(r) })
		if rest == "" || strings.ContainsRune("\r\n{[", rune(rest[0])) {
			s = rest
		}
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, fence)
	return strings.TrimSpace(s)
}

func isTagByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '-' || c == '_' || c == '+'
}

// Normalize makes a single attempt to decode raw as {response, suggestions}.
// A missing or empty response falls back to raw itself; missing or non-array
// suggestions fall back to a copy of fallback. Non-string suggestion entries
// are dropped.
func Normalize(raw string, fallback []string) Result {
	cleaned := StripFences(raw)

	if !strings.HasPrefix(cleaned, "{") {
		return fallbackResult(raw, fallback, errNotObject)
	}

	var payload struct {
		Response    json.RawMessage `json:"response"`
		Suggestions json.RawMessage `json:"suggestions"`
	}
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return fallbackResult(raw, fallback, err)
	}

	reply := models.NormalizedReply{Response: raw}
	var response string
	if json.Unmarshal(payload.Response, &response) == nil && response != "" {
		reply.Response = response
	}

	if suggestions, ok := decodeSuggestions(payload.Suggestions); ok {
		reply.Suggestions = suggestions
	} else {
		reply.Suggestions = Copy(fallback)
	}

	return Result{Outcome: Parsed, Reply: reply}
}

func decodeSuggestions(raw json.RawMessage) ([]string, bool) {
	var items []json.RawMessage
	if len(raw) == 0 || json.Unmarshal(raw, &items) != nil || items == nil {
		return nil, false
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = bytes.TrimSpace(item)
		if len(item) == 0 || item[0] != '"' {
			continue
		}
		var s string
		if json.Unmarshal(item, &s) == nil {
			out = append(out, s)
		}
	}
	return out, true
}

func fallbackResult(raw string, fallback []string, err error) Result {
	return Result{
		Outcome: Fallback,
		Reply:   models.NormalizedReply{Response: raw, Suggestions: Copy(fallback)},
		Err:     err,
	}
}

// Copy returns a non-nil copy of list.
func Copy(list []string) []string {
	out := make([]string, len(list))
	copy(out, list)
	return out
}
