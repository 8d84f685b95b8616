package api

import (
	"regexp"
	"strings"
)

// fencedJSON matches a markdown code block, optionally tagged json, and
// captures its body. Models frequently wrap JSON responses this way even
// when asked not to.
var fencedJSON = regexp.MustCompile("```(?:json)?\\s*([\\s\\S]*?)\\s*```")

// StripFences removes a fenced code block wrapper from a model response,
// returning the inner body. Input without fences is returned trimmed.
func StripFences(s string) string {
	if m := fencedJSON.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(s)
}

// Excerpt truncates raw response text for diagnostics.
func Excerpt(raw string, n int) string {
	if len(raw) <= n {
		return raw
	}
	return raw[:n]
}
