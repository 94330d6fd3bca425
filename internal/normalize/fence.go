package normalize

import (
	"encoding/json"
	"strings"
)

const fence = "```"

// StripCodeFences removes markdown code fence wrapping from a model reply.
// Handles ```json, ``` and other language tags. Text without fences is
// returned trimmed, so applying it twice gives the same result as once.
func StripCodeFences(s string) string {
	trimmed := strings.TrimSpace(s)

	open := strings.Index(trimmed, fence)
	if open == -1 {
		return trimmed
	}

	// Skip the language tag up to the end of the opening fence line.
	body := trimmed[open+len(fence):]
	if nl := strings.IndexByte(body, '\n'); nl != -1 {
		tag := strings.TrimSpace(body[:nl])
		if tag == "" || isFenceTag(tag) {
			body = body[nl+1:]
		}
	} else {
		body = strings.TrimPrefix(body, "json")
		body = strings.TrimPrefix(body, "JSON")
	}

	if end := strings.LastIndex(body, fence); end != -1 {
		body = body[:end]
	}
	return strings.TrimSpace(body)
}

func isFenceTag(tag string) bool {
	if strings.ContainsAny(tag, "{[\"") {
		return false
	}
	return !strings.ContainsAny(tag, " \t")
}

// extractEmbeddedJSON finds the outermost JSON object or array inside mixed
// prose, e.g. "Here are the cases: {...} Let me know!". Returns "" if none
// parses.
func extractEmbeddedJSON(s string) string {
	for _, pair := range [][2]byte{{'{', '}'}, {'[', ']'}} {
		start := strings.IndexByte(s, pair[0])
		end := strings.LastIndexByte(s, pair[1])
		if start == -1 || end <= start {
			continue
		}
		candidate := s[start : end+1]
		if json.Valid([]byte(candidate)) {
			return candidate
		}
	}
	return ""
}
