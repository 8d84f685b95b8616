// Package catalog parses and validates the uploaded product CSV.
package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/ShayCichocki/topshelf/pkg/models"
)

// ErrNoProducts is returned when the CSV contains no usable rows.
var ErrNoProducts = errors.New("no valid products found: ensure columns 'name', 'price', and 'description' exist")

// DefaultCategory is assigned to rows without a category column or value.
const DefaultCategory = "General"

// ParseFile reads and validates a product CSV from disk.
func ParseFile(path string) ([]models.Product, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening catalog %s: %w", path, err)
	}
	defer f.Close()

	products, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parsing catalog %s: %w", path, err)
	}
	return products, nil
}

// Parse reads a product CSV with a header row. Rows missing any of name,
// price, or description are dropped. Returns ErrNoProducts when nothing
// survives validation.
func Parse(r io.Reader) ([]models.Product, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrNoProducts
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	cols := indexColumns(header)
	if _, ok := cols["name"]; !ok {
		return nil, ErrNoProducts
	}

	var products []models.Product
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Skip structurally broken rows, keep the rest.
			continue
		}

		p := models.Product{
			Name:        field(record, cols, "name"),
			Description: field(record, cols, "description"),
			Category:    field(record, cols, "category"),
			Image:       field(record, cols, "image"),
			Options:     field(record, cols, "options"),
		}

		rawPrice := field(record, cols, "price")
		if p.Name == "" || p.Description == "" || rawPrice == "" {
			continue
		}
		p.Price = SanitizePrice(rawPrice)

		if p.Category == "" {
			p.Category = DefaultCategory
		}

		products = append(products, p)
	}

	if len(products) == 0 {
		return nil, ErrNoProducts
	}
	return products, nil
}

// indexColumns maps lowercased, trimmed header names to their positions.
func indexColumns(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\uFEFF")))
		if key == "" {
			continue
		}
		if _, exists := cols[key]; !exists {
			cols[key] = i
		}
	}
	return cols
}

func field(record []string, cols map[string]int, name string) string {
	idx, ok := cols[name]
	if !ok || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

// SanitizePrice parses a price string tolerantly. Currency symbols,
// thousands separators, and any other non-numeric characters are stripped
// before parsing; unparsable input yields 0. The result is always a finite
// non-negative number.
func SanitizePrice(raw string) float64 {
	var b strings.Builder
	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}

	price, err := strconv.ParseFloat(b.String(), 64)
	if err != nil || price < 0 {
		return 0
	}
	return price
}
