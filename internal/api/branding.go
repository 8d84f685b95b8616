package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ShayCichocki/topshelf/pkg/models"
)

// Fixed paths the branding synthesizer must populate.
const (
	ThemeFilePath    = "template/styles/theme.json"
	FooterFilePath   = "template/components/Footer.tsx"
	ProductsFilePath = "template/data/products.ts"
)

// sampleSize is how many products accompany the synthesis request as
// styling context.
const sampleSize = 3

// BrandingSynthesizer produces the branded file map for a storefront.
// The production implementation is Client; tests substitute fakes.
type BrandingSynthesizer interface {
	Synthesize(ctx context.Context, brand models.BrandContext, products []models.Product) (map[string]string, error)
}

const brandingSystemPrompt = `You are a specialized code-transformer. You have access to a standard E-commerce Boilerplate.
Your task is to personalize this boilerplate using the provided brand context and product sample.
Do not change the core architecture. Only update the data layer and style configurations.

Return only a JSON object mapping file paths to file contents, including:
- "template/styles/theme.json": brand colors and fonts derived from the context.
- "template/components/Footer.tsx": the personalized footer (must include 'Powered by TopShelf AI').`

// Synthesize issues one branding call and returns the resulting file map.
// The map never includes the product data file; the payload assembler adds
// that from the hydrated product list.
func (c *Client) Synthesize(ctx context.Context, brand models.BrandContext, products []models.Product) (map[string]string, error) {
	sample := products
	if len(sample) > sampleSize {
		sample = sample[:sampleSize]
	}

	brandJSON, err := json.Marshal(brand)
	if err != nil {
		return nil, fmt.Errorf("encoding brand context: %w", err)
	}
	sampleJSON, err := json.Marshal(sample)
	if err != nil {
		return nil, fmt.Errorf("encoding product sample: %w", err)
	}

	prompt := fmt.Sprintf("User Context: %s\nProduct Sample: %s", brandJSON, sampleJSON)

	text, err := c.complete(ctx, brandingSystemPrompt, prompt, 4096)
	if err != nil {
		return nil, fmt.Errorf("branding call: %w", err)
	}

	return ParseFileMap(text)
}

// ParseFileMap decodes a branding response into a path → content map,
// tolerating code-fence wrapping and an optional top-level "files" key.
func ParseFileMap(raw string) (map[string]string, error) {
	cleaned := StripFences(raw)

	// Preferred shape: {"files": {...}}
	var wrapped struct {
		Files map[string]string `json:"files"`
	}
	if err := json.Unmarshal([]byte(cleaned), &wrapped); err == nil && len(wrapped.Files) > 0 {
		return wrapped.Files, nil
	}

	// Bare shape: {"path": "content", ...}
	var bare map[string]string
	if err := json.Unmarshal([]byte(cleaned), &bare); err == nil && len(bare) > 0 {
		return bare, nil
	}

	return nil, &MalformedResponseError{
		Call:    "branding synthesis",
		Excerpt: Excerpt(raw, excerptLen),
		Err:     fmt.Errorf("no file map in response"),
	}
}
