package orchestrator

import (
	"strings"
	"testing"

	"github.com/ShayCichocki/topshelf/internal/api"
	"github.com/ShayCichocki/topshelf/pkg/models"
)

func hydratedFixture() []models.HydratedProduct {
	return []models.HydratedProduct{
		{ID: 1, Name: "Mug", Price: 12.5, Description: "A mug", Category: "Kitchen", Image: "https://cdn.example/mug.png", Stock: 12},
		{ID: 2, Name: "Bowl", Price: 8, Description: "A bowl", Category: "Kitchen", Image: "https://cdn.example/bowl.png", Stock: 40},
	}
}

func TestAssemblePayloadMergesProductsFile(t *testing.T) {
	files := map[string]string{
		api.ThemeFilePath:  `{"colors":{"primary":"#6366f1"}}`,
		api.FooterFilePath: "export const Footer = () => null;",
	}

	payload, err := AssemblePayload(files, hydratedFixture())
	if err != nil {
		t.Fatalf("AssemblePayload failed: %v", err)
	}

	if len(payload) != 3 {
		t.Fatalf("payload has %d entries, want 3", len(payload))
	}
	if payload[api.ThemeFilePath] != files[api.ThemeFilePath] {
		t.Error("theme file changed during assembly")
	}

	products := payload[api.ProductsFilePath]
	if !strings.HasPrefix(products, "export const products = [") || !strings.HasSuffix(products, "];") {
		t.Errorf("products file has wrong shape: %.60s ... %s", products, products[len(products)-10:])
	}
	if !strings.Contains(products, `"name": "Mug"`) {
		t.Error("products file missing product data")
	}
}

func TestAssemblePayloadIdempotent(t *testing.T) {
	files := map[string]string{api.ThemeFilePath: "{}"}
	products := hydratedFixture()

	first, err := AssemblePayload(files, products)
	if err != nil {
		t.Fatalf("first assembly failed: %v", err)
	}
	second, err := AssemblePayload(files, products)
	if err != nil {
		t.Fatalf("second assembly failed: %v", err)
	}

	if len(first) != len(second) {
		t.Fatalf("assemblies differ in size: %d vs %d", len(first), len(second))
	}
	for k, v := range first {
		if second[k] != v {
			t.Errorf("file %s differs between assemblies", k)
		}
	}
}

func TestAssemblePayloadDoesNotMutateInput(t *testing.T) {
	files := map[string]string{api.ThemeFilePath: "{}"}
	if _, err := AssemblePayload(files, hydratedFixture()); err != nil {
		t.Fatalf("AssemblePayload failed: %v", err)
	}
	if len(files) != 1 {
		t.Errorf("input map mutated: %d entries", len(files))
	}
}
