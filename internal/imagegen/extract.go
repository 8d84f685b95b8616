package imagegen

import (
	"encoding/json"
	"sort"
	"strings"
)

// imageHints are substrings that mark an http URL as image-like during the
// deep search. File extensions plus common storage/asset keywords.
var imageHints = []string{"webp", "png", "jpg", "jpeg", "asset", "storage"}

// ExtractURL pulls an image URL out of an arbitrarily-shaped response
// body. Extraction attempts, in priority order:
//
//  1. the body itself, if it is a JSON string with an http or data:image
//     prefix;
//  2. a fixed set of common field names (url, imageUrl, image_url, image,
//     or nested under data/results);
//  3. a recursive depth-first search for any string value with an http
//     prefix and an image-related substring.
//
// Returns false if the structure holds nothing usable.
func ExtractURL(body []byte) (string, bool) {
	var root interface{}
	if err := json.Unmarshal(body, &root); err != nil {
		// Not JSON; the raw body may itself be a URL.
		s := strings.TrimSpace(string(body))
		if isDirectURL(s) {
			return s, true
		}
		return "", false
	}
	return extractValue(root)
}

func extractValue(root interface{}) (string, bool) {
	if s, ok := root.(string); ok && isDirectURL(s) {
		return s, true
	}

	obj, ok := root.(map[string]interface{})
	if !ok {
		return deepSearch(root)
	}

	// Priority fields first.
	for _, key := range []string{"url", "imageUrl", "image_url", "image"} {
		if s, ok := obj[key].(string); ok && s != "" {
			return s, true
		}
	}
	if data, ok := obj["data"].(map[string]interface{}); ok {
		if s, ok := data["url"].(string); ok && s != "" {
			return s, true
		}
	}
	if results, ok := obj["results"].([]interface{}); ok && len(results) > 0 {
		if first, ok := results[0].(map[string]interface{}); ok {
			if s, ok := first["url"].(string); ok && s != "" {
				return s, true
			}
		}
	}

	return deepSearch(obj)
}

// deepSearch walks the structure depth-first looking for an image-like
// http URL. Map keys are visited in sorted order so extraction is
// deterministic.
func deepSearch(node interface{}) (string, bool) {
	switch v := node.(type) {
	case string:
		if strings.HasPrefix(v, "http") && hasImageHint(v) {
			return v, true
		}
	case map[string]interface{}:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if s, ok := deepSearch(v[k]); ok {
				return s, true
			}
		}
	case []interface{}:
		for _, item := range v {
			if s, ok := deepSearch(item); ok {
				return s, true
			}
		}
	}
	return "", false
}

func isDirectURL(s string) bool {
	return strings.HasPrefix(s, "http") || strings.HasPrefix(s, "data:image")
}

func hasImageHint(s string) bool {
	for _, hint := range imageHints {
		if strings.Contains(s, hint) {
			return true
		}
	}
	return false
}
