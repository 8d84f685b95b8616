package models

// Product represents one validated row of the uploaded catalog CSV.
type Product struct {
	// Name is the product display name. Never empty after validation.
	Name string `json:"name"`
	// Price is the sanitized unit price. Always finite and non-negative.
	Price float64 `json:"price"`
	// Description is the product copy. Never empty after validation.
	Description string `json:"description"`
	// Category is the product category, defaulting to "General".
	Category string `json:"category"`
	// Image is an optional image URL from the CSV. May be empty or a
	// stock-photo placeholder, in which case hydration generates one.
	Image string `json:"image,omitempty"`
	// Options holds an optional free-form variant string (e.g. "S,M,L").
	Options string `json:"options,omitempty"`
}

// HydratedProduct is a Product after the hydration pipeline has resolved
// its image and assigned it an identifier and a stock count. Immutable
// within a run once created.
type HydratedProduct struct {
	// ID is the stable positional identifier (1-based).
	ID int `json:"id"`
	// Name, Price, Description, Category and Options carry over unchanged
	// from the source Product.
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Options     string  `json:"options,omitempty"`
	// Image is the resolved image URL: generated, passed through, or the
	// placeholder fallback if generation failed.
	Image string `json:"image"`
	// Stock is the randomized stock count assigned at hydration time.
	Stock int `json:"stock"`
}

// BrandContext holds the brand identity the user builds up over the
// conversation. Mutated only through shallow merges of set_branding
// action payloads.
type BrandContext struct {
	CompanyName    string `json:"companyName"`
	PrimaryColor   string `json:"primaryColor"`
	SecondaryColor string `json:"secondaryColor"`
}

// DefaultBrandContext returns the starting brand palette.
func DefaultBrandContext() BrandContext {
	return BrandContext{
		PrimaryColor:   "#6366f1",
		SecondaryColor: "#ec4899",
	}
}

// Merge returns a copy of b with the non-empty fields of patch applied.
// Empty patch fields leave the existing values untouched.
func (b BrandContext) Merge(patch BrandContext) BrandContext {
	out := b
	if patch.CompanyName != "" {
		out.CompanyName = patch.CompanyName
	}
	if patch.PrimaryColor != "" {
		out.PrimaryColor = patch.PrimaryColor
	}
	if patch.SecondaryColor != "" {
		out.SecondaryColor = patch.SecondaryColor
	}
	return out
}
