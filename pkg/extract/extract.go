// Package extract turns free-form model output into validated records.
//
// Model responses arrive in unpredictable shapes: clean JSON, JSON inside
// ```json fences, JSON buried in prose, or pure markdown. Extraction tries a
// fixed chain of strategies and never returns an error; callers treat a nil
// result as "no structured content found".
package extract

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Shape is the expected top-level JSON type of an extraction.
type Shape int

const (
	ShapeObject Shape = iota
	ShapeArray
)

var (
	fencedJSONRe = regexp.MustCompile("(?is)```json\\s*(.*?)\\s*```")
	fencedAnyRe  = regexp.MustCompile("(?s)```(?:\\w*)\\s*(.*?)\\s*```")
)

type strategy func(text string) json.RawMessage

// Extract applies the strategy chain in priority order and returns the first
// parse whose top-level type matches shape. If no strategy produces a type
// match but one produced valid non-empty JSON, that value is returned as a
// last resort; callers still validate against the target record shape.
func Extract(text string, shape Shape) (json.RawMessage, bool) {
	if strings.TrimSpace(text) == "" {
		return nil, false
	}

	strategies := []strategy{
		tryCleanJSON,
		tryFencedJSON,
		tryFencedAny,
		tryBracketBounds,
		tryLineByLine,
	}

	var fallback json.RawMessage
	for _, s := range strategies {
		raw := s(text)
		if raw == nil {
			continue
		}
		if matchesShape(raw, shape) {
			return raw, true
		}
		if fallback == nil && !isEmptyValue(raw) {
			fallback = raw
		}
	}

	if fallback != nil {
		return fallback, true
	}
	return nil, false
}

func matchesShape(raw json.RawMessage, shape Shape) bool {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" {
		return false
	}
	switch shape {
	case ShapeArray:
		return trimmed[0] == '['
	default:
		return trimmed[0] == '{'
	}
}

func isEmptyValue(raw json.RawMessage) bool {
	trimmed := strings.TrimSpace(string(raw))
	switch trimmed {
	case "", "{}", "[]", "null", `""`:
		return true
	}
	return false
}

func parseValid(candidate string) json.RawMessage {
	candidate = strings.TrimSpace(candidate)
	if candidate == "" {
		return nil
	}
	var v interface{}
	if err := json.Unmarshal([]byte(candidate), &v); err != nil {
		return nil
	}
	// Only objects and arrays are useful downstream; a bare string or number
	// parsed out of prose is noise.
	if candidate[0] != '{' && candidate[0] != '[' {
		return nil
	}
	return json.RawMessage(candidate)
}

// Strategy 1: the whole trimmed text is JSON.
func tryCleanJSON(text string) json.RawMessage {
	return parseValid(text)
}

// Strategy 2: fenced blocks explicitly tagged json, in document order.
func tryFencedJSON(text string) json.RawMessage {
	for _, m := range fencedJSONRe.FindAllStringSubmatch(text, -1) {
		if raw := parseValid(m[1]); raw != nil {
			return raw
		}
	}
	return nil
}

// Strategy 3: any fenced block regardless of tag.
func tryFencedAny(text string) json.RawMessage {
	for _, m := range fencedAnyRe.FindAllStringSubmatch(text, -1) {
		if raw := parseValid(m[1]); raw != nil {
			return raw
		}
	}
	return nil
}

// Strategy 4: longest balanced bracket span starting at the first '[' or
// '{'. Arrays are tried before objects.
func tryBracketBounds(text string) json.RawMessage {
	if start := strings.IndexByte(text, '['); start != -1 {
		if span := balancedSpan(text, start, '[', ']'); span != "" {
			if raw := parseValid(span); raw != nil {
				return raw
			}
		}
	}
	if start := strings.IndexByte(text, '{'); start != -1 {
		if span := balancedSpan(text, start, '{', '}'); span != "" {
			if raw := parseValid(span); raw != nil {
				return raw
			}
		}
	}
	return nil
}

// balancedSpan returns the span from start to the bracket closing it.
// Characters inside a double-quoted string never affect depth; backslash
// escapes inside strings are honored.
func balancedSpan(text string, start int, open, close byte) string {
	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(text); i++ {
		c := text[i]
		if escaped {
			escaped = false
			continue
		}
		if c == '\\' && inString {
			escaped = true
			continue
		}
		if c == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}
		switch c {
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return text[start : i+1]
			}
		}
	}
	return ""
}

// Strategy 5: accumulate lines from the first line opening a JSON value,
// attempting a parse each time a line ends with a closer.
func tryLineByLine(text string) json.RawMessage {
	lines := strings.Split(text, "\n")
	var jsonLines []string
	inJSON := false

	for _, line := range lines {
		stripped := strings.TrimSpace(line)
		if !inJSON {
			if strings.HasPrefix(stripped, "{") || strings.HasPrefix(stripped, "[") {
				inJSON = true
				jsonLines = []string{line}
			}
			continue
		}
		jsonLines = append(jsonLines, line)
		if strings.HasSuffix(stripped, "}") || strings.HasSuffix(stripped, "]") {
			if raw := parseValid(strings.Join(jsonLines, "\n")); raw != nil {
				return raw
			}
		}
	}
	return nil
}
