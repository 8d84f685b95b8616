package deploy

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ShayCichocki/topshelf/internal/config"
)

func TestDeploy(t *testing.T) {
	c := NewClient("test-key")
	c.SetDelay(0)

	d, err := c.Deploy(context.Background(), "Top Shelf Luxury")
	if err != nil {
		t.Fatalf("Deploy failed: %v", err)
	}
	if d.URL != "https://top-shelf-luxury.zeabur.app" {
		t.Errorf("url = %q", d.URL)
	}
	if d.ProjectID == "" {
		t.Error("expected a project ID")
	}
	if !strings.Contains(d.Message, "Top Shelf Luxury") {
		t.Errorf("message = %q", d.Message)
	}
}

func TestDeployRequiresCompanyName(t *testing.T) {
	c := NewClient("test-key")
	c.SetDelay(0)

	for _, name := range []string{"", "   "} {
		if _, err := c.Deploy(context.Background(), name); !errors.Is(err, ErrNoCompanyName) {
			t.Errorf("Deploy(%q): expected ErrNoCompanyName, got %v", name, err)
		}
	}
}

func TestDeployUnconfiguredKey(t *testing.T) {
	for _, key := range []string{"", "YOUR_ZEABUR_API_KEY_HERE"} {
		c := NewClient(key)
		c.SetDelay(0)

		_, err := c.Deploy(context.Background(), "Acme")
		if !errors.Is(err, config.ErrNotConfigured) {
			t.Fatalf("Deploy with key %q: expected ErrNotConfigured, got %v", key, err)
		}
		if !strings.Contains(err.Error(), "ZEABUR_API_KEY") {
			t.Errorf("error %q should name the env var to set", err)
		}
	}
}

func TestDeployCanceled(t *testing.T) {
	c := NewClient("test-key")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.Deploy(ctx, "Acme"); err == nil {
		t.Fatal("expected error for canceled context")
	}
}

func TestSlug(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Top Shelf", "top-shelf"},
		{"ACME & Co.", "acme--co"},
		{"  spaced  ", "spaced"},
		{"!!!", "storefront"},
	}
	for _, tt := range tests {
		if got := Slug(tt.name); got != tt.want {
			t.Errorf("Slug(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}
