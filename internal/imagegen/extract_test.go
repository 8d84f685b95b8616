package imagegen

import "testing"

func TestExtractURL(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		want  string
		found bool
	}{
		{
			name:  "top-level url field",
			body:  `{"url":"https://x.com/a.png"}`,
			want:  "https://x.com/a.png",
			found: true,
		},
		{
			name:  "nested data url",
			body:  `{"data":{"url":"https://x.com/a.png"}}`,
			want:  "https://x.com/a.png",
			found: true,
		},
		{
			name:  "results array",
			body:  `{"results":[{"url":"https://x.com/b.png"}]}`,
			want:  "https://x.com/b.png",
			found: true,
		},
		{
			name:  "imageUrl variant",
			body:  `{"imageUrl":"https://x.com/c.png"}`,
			want:  "https://x.com/c.png",
			found: true,
		},
		{
			name:  "snake case variant",
			body:  `{"image_url":"https://x.com/d.png"}`,
			want:  "https://x.com/d.png",
			found: true,
		},
		{
			name:  "deep search finds nested asset",
			body:  `{"foo":{"bar":"https://cdn.example/img/asset123.webp"}}`,
			want:  "https://cdn.example/img/asset123.webp",
			found: true,
		},
		{
			name:  "body itself is a url string",
			body:  `"https://x.com/direct.png"`,
			want:  "https://x.com/direct.png",
			found: true,
		},
		{
			name:  "body itself is a data image",
			body:  `"data:image/png;base64,iVBORw0KG"`,
			want:  "data:image/png;base64,iVBORw0KG",
			found: true,
		},
		{
			name:  "no url anywhere",
			body:  `{"status":"ok"}`,
			found: false,
		},
		{
			name:  "http string without image hint is skipped",
			body:  `{"docs":"https://example.com/help"}`,
			found: false,
		},
		{
			name:  "not json, raw url",
			body:  `https://x.com/raw.png`,
			want:  "https://x.com/raw.png",
			found: true,
		},
		{
			name:  "not json, not a url",
			body:  `internal server error`,
			found: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := ExtractURL([]byte(tt.body))
			if found != tt.found {
				t.Fatalf("found = %v, want %v", found, tt.found)
			}
			if got != tt.want {
				t.Errorf("url = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractURLDeterministic(t *testing.T) {
	// Multiple candidates: sorted-key traversal must always pick the same one.
	body := `{"b":"https://x.com/b-asset.png","a":"https://x.com/a-asset.png"}`
	first, ok := ExtractURL([]byte(body))
	if !ok {
		t.Fatal("expected a match")
	}
	for i := 0; i < 20; i++ {
		got, _ := ExtractURL([]byte(body))
		if got != first {
			t.Fatalf("extraction not deterministic: %q vs %q", got, first)
		}
	}
	if first != "https://x.com/a-asset.png" {
		t.Errorf("expected sorted-first key, got %q", first)
	}
}
