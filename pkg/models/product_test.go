package models

import "testing"

func TestBrandContextMerge(t *testing.T) {
	base := BrandContext{
		CompanyName:    "Acme",
		PrimaryColor:   "#000000",
		SecondaryColor: "#ffffff",
	}

	tests := []struct {
		name  string
		patch BrandContext
		want  BrandContext
	}{
		{
			name:  "empty patch leaves everything",
			patch: BrandContext{},
			want:  base,
		},
		{
			name:  "single field overwrite",
			patch: BrandContext{PrimaryColor: "#111"},
			want:  BrandContext{CompanyName: "Acme", PrimaryColor: "#111", SecondaryColor: "#ffffff"},
		},
		{
			name:  "full overwrite",
			patch: BrandContext{CompanyName: "Globex", PrimaryColor: "#222", SecondaryColor: "#333"},
			want:  BrandContext{CompanyName: "Globex", PrimaryColor: "#222", SecondaryColor: "#333"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := base.Merge(tt.patch)
			if got != tt.want {
				t.Errorf("Merge() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestBrandContextMergeDoesNotMutateReceiver(t *testing.T) {
	base := BrandContext{CompanyName: "Acme"}
	_ = base.Merge(BrandContext{CompanyName: "Globex"})
	if base.CompanyName != "Acme" {
		t.Errorf("receiver mutated: %+v", base)
	}
}

func TestDefaultBrandContext(t *testing.T) {
	ctx := DefaultBrandContext()
	if ctx.CompanyName != "" {
		t.Errorf("expected empty company name, got %q", ctx.CompanyName)
	}
	if ctx.PrimaryColor == "" || ctx.SecondaryColor == "" {
		t.Errorf("expected default palette, got %+v", ctx)
	}
}

func TestPipelineStatus(t *testing.T) {
	for _, s := range []PipelineStatus{StatusIdle, StatusParsing, StatusGenerating, StatusSuccess, StatusError} {
		if !s.Valid() {
			t.Errorf("%s should be valid", s)
		}
	}
	if PipelineStatus("bogus").Valid() {
		t.Error("bogus status should not be valid")
	}
	if StatusGenerating.Terminal() {
		t.Error("generating is not terminal")
	}
	if !StatusSuccess.Terminal() || !StatusError.Terminal() {
		t.Error("success and error are terminal")
	}
}
