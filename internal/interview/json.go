package interview

import (
	"encoding/json"
	"regexp"
	"strings"
)

var fenceRe = regexp.MustCompile("(?is)```(?:json)?\\s*(.*?)```")

// extractJSON pulls a JSON document out of raw model output. Models wrap
// JSON in prose or code fences often enough that this needs multiple
// strategies: whole text, fenced block, then first balanced object or
// array. Returns "{}" when nothing plausible is found.
func extractJSON(raw string) string {
	text := strings.TrimSpace(raw)
	if text == "" {
		return "{}"
	}

	if json.Valid([]byte(text)) {
		return text
	}

	if m := fenceRe.FindStringSubmatch(text); m != nil {
		if candidate := strings.TrimSpace(m[1]); candidate != "" {
			return candidate
		}
	}

	if block := balancedBlock(text, '{', '}'); block != "" {
		return block
	}
	if block := balancedBlock(text, '[', ']'); block != "" {
		return block
	}

	return "{}"
}

func balancedBlock(s string, open, close byte) string {
	depth := 0
	start := -1
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case open:
			if depth == 0 {
				start = i
			}
			depth++
		case close:
			if depth > 0 {
				depth--
				if depth == 0 && start >= 0 {
					return s[start : i+1]
				}
			}
		}
	}
	return ""
}

// decodeJSON parses model output into v, extracting the JSON payload
// first. Reports whether decoding succeeded.
func decodeJSON(raw string, v any) bool {
	candidate := extractJSON(raw)
	return json.Unmarshal([]byte(candidate), v) == nil
}
