package orchestrator

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/ShayCichocki/topshelf/internal/api"
	"github.com/ShayCichocki/topshelf/pkg/models"
)

// AssemblePayload merges the branded file map with the serialized product
// data file. The inputs are not mutated, and the same inputs always
// produce a byte-identical payload, so a retried assembly step can never
// diverge from the first.
func AssemblePayload(files map[string]string, products []models.HydratedProduct) (map[string]string, error) {
	data, err := json.MarshalIndent(products, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("serializing products: %w", err)
	}

	out := make(map[string]string, len(files)+1)
	for k, v := range files {
		out[k] = v
	}
	out[api.ProductsFilePath] = fmt.Sprintf("export const products = %s;", data)
	return out, nil
}

// WritePayload materializes a payload's file map under dir, creating
// intermediate directories as needed. Files are written in sorted path
// order.
func WritePayload(dir string, payload map[string]string) error {
	if len(payload) == 0 {
		return fmt.Errorf("no payload to write")
	}

	paths := make([]string, 0, len(payload))
	for p := range payload {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, p := range paths {
		dest := filepath.Join(dir, filepath.FromSlash(p))
		if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
			return fmt.Errorf("creating %s: %w", filepath.Dir(dest), err)
		}
		if err := os.WriteFile(dest, []byte(payload[p]), 0644); err != nil {
			return fmt.Errorf("writing %s: %w", dest, err)
		}
	}
	return nil
}
