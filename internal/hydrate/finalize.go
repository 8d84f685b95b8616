package hydrate

import (
	"math/rand"
	"net/url"

	"github.com/ShayCichocki/topshelf/pkg/models"
)

// Stock counts are drawn from [StockMin, StockMin+StockRange).
const (
	StockMin   = 5
	StockRange = 50
)

// FallbackImage returns the placeholder URL used when a product still has
// no image after hydration.
func FallbackImage(name string) string {
	return "https://placehold.co/600x750?text=" + url.QueryEscape(name)
}

// Finalize converts hydrated products into their deliverable form,
// assigning each a stable 1-based positional identifier, a randomized
// stock count, and a fallback image if hydration left it empty. The rng
// is injected so runs can be reproduced in tests.
func Finalize(products []models.Product, rng *rand.Rand) []models.HydratedProduct {
	out := make([]models.HydratedProduct, len(products))
	for i, p := range products {
		image := p.Image
		if image == "" {
			image = FallbackImage(p.Name)
		}
		out[i] = models.HydratedProduct{
			ID:          i + 1,
			Name:        p.Name,
			Price:       p.Price,
			Description: p.Description,
			Category:    p.Category,
			Options:     p.Options,
			Image:       image,
			Stock:       StockMin + rng.Intn(StockRange),
		}
	}
	return out
}

// FinalizeSeeded is Finalize with a seed, for callers that don't carry an
// rng of their own.
func FinalizeSeeded(products []models.Product, seed int64) []models.HydratedProduct {
	return Finalize(products, rand.New(rand.NewSource(seed)))
}
