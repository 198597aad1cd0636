package llm

import (
	"encoding/json"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// ParseStrategy extracts a JSON candidate from model output.
// Extract returns false when the strategy has nothing to offer.
type ParseStrategy struct {
	Name    string
	Extract func(text string) (string, bool)
}

// Strategies returns the recovery chain in precedence order:
// strict, then brace extraction, then the repair library.
func Strategies() []ParseStrategy {
	return []ParseStrategy{
		{Name: "strict", Extract: strictCandidate},
		{Name: "braces", Extract: braceCandidate},
		{Name: "repair", Extract: repairCandidate},
	}
}

// ParseJSONResponse decodes the first valid JSON candidate produced by the
// strategy chain into v. When every strategy fails it returns a
// MalformedResponseError carrying a preview of text.
func ParseJSONResponse(text string, v any) error {
	var lastErr error
	for _, strategy := range Strategies() {
		candidate, ok := strategy.Extract(text)
		if !ok {
			continue
		}
		if err := json.Unmarshal([]byte(candidate), v); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return NewMalformedResponse("no JSON object could be recovered from model output", text, lastErr)
}

// StripCodeFence removes a leading ``` fence (with optional language tag)
// and the matching closing fence. Text without a fence is only trimmed.
func StripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	text = strings.TrimPrefix(text, "```")
	if idx := strings.Index(text, "\n"); idx >= 0 {
		tag := strings.TrimSpace(text[:idx])
		if isFenceTag(tag) {
			text = text[idx+1:]
		}
	} else {
		text = strings.TrimLeft(text, " \t")
		if tag, rest, found := strings.Cut(text, " "); found && isFenceTag(tag) {
			text = rest
		}
	}

	if idx := strings.LastIndex(text, "```"); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}

// isFenceTag reports whether s looks like a language identifier
func isFenceTag(s string) bool {
	if len(s) >= 20 || strings.ContainsAny(s, " {[\"") {
		return false
	}
	return true
}

func strictCandidate(text string) (string, bool) {
	return validCandidate(StripCodeFence(text))
}

func braceCandidate(text string) (string, bool) {
	sub, ok := braceSubstring(text)
	if !ok {
		return "", false
	}
	return validCandidate(sub)
}

func repairCandidate(text string) (string, bool) {
	target, ok := braceSubstring(text)
	if !ok {
		if !strings.ContainsAny(text, "{[") {
			return "", false
		}
		target = StripCodeFence(text)
	}

	repaired, err := jsonrepair.JSONRepair(target)
	if err != nil {
		return "", false
	}
	return validCandidate(repaired)
}

// braceSubstring returns text from the first '{' to the last '}'
func braceSubstring(text string) (string, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}

// validCandidate accepts only well-formed JSON objects or arrays
func validCandidate(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || (s[0] != '{' && s[0] != '[') {
		return "", false
	}
	if !json.Valid([]byte(s)) {
		return "", false
	}
	return s, true
}
