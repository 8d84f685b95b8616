package hydrate

import "strings"

// placeholderHosts are substrings of stock-photo or placeholder-hosting
// URLs. A product image matching any of them is treated as "needs
// enrichment" just like an empty one.
var placeholderHosts = []string{
	"placehold",
	"via.placeholder",
	"dummyimage",
	"picsum",
	"unsplash",
	"pexels",
	"loremflickr",
}

// NeedsImage reports whether a product's current image should be replaced
// by a generated one.
func NeedsImage(imageURL string) bool {
	if strings.TrimSpace(imageURL) == "" {
		return true
	}
	lower := strings.ToLower(imageURL)
	for _, host := range placeholderHosts {
		if strings.Contains(lower, host) {
			return true
		}
	}
	return false
}
