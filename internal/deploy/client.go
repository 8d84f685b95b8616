// Package deploy publishes the generated storefront through the Zeabur
// zero-config deployment lifecycle.
package deploy

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ShayCichocki/topshelf/internal/config"
)

// ErrNoCompanyName is returned when a deploy is requested before the
// brand has a name to slug into a domain.
var ErrNoCompanyName = errors.New("company name is required for deployment")

// Deployment describes a completed deploy.
type Deployment struct {
	ProjectID string `json:"project_id"`
	URL       string `json:"url"`
	Message   string `json:"message"`
}

// Deployer publishes a storefront. The production implementation is
// Client; tests substitute fakes.
type Deployer interface {
	Deploy(ctx context.Context, companyName string) (*Deployment, error)
}

// Client drives the deployment lifecycle. The full Zeabur GraphQL
// integration (create project, create service, upload build artifacts) is
// out of scope; the lifecycle is simulated end to end the way the original
// system does it.
type Client struct {
	apiKey string
	// delay simulates the build-and-healthcheck wait. Tests shorten it.
	delay time.Duration
}

// NewClient creates a deployment client. The API key is validated on
// Deploy, not here, so an unconfigured client can still be wired up.
func NewClient(apiKey string) *Client {
	return &Client{apiKey: apiKey, delay: 4500 * time.Millisecond}
}

// SetDelay overrides the simulated deployment wait (for tests).
func (c *Client) SetDelay(d time.Duration) {
	c.delay = d
}

// Deploy publishes the storefront for the given company and returns the
// resulting project and URL.
func (c *Client) Deploy(ctx context.Context, companyName string) (*Deployment, error) {
	if err := config.ValidateKey(config.ServiceZeabur, c.apiKey); err != nil {
		return nil, err
	}
	if strings.TrimSpace(companyName) == "" {
		return nil, ErrNoCompanyName
	}

	log.Printf("[deploy] starting deployment for %s", companyName)

	// Step 1: create project / service
	// Step 2: push generated build files
	// Step 3: wait for healthcheck
	projectID := uuid.New().String()[:8]
	url := fmt.Sprintf("https://%s.zeabur.app", Slug(companyName))

	select {
	case <-time.After(c.delay):
	case <-ctx.Done():
		return nil, fmt.Errorf("deployment canceled: %w", ctx.Err())
	}

	return &Deployment{
		ProjectID: projectID,
		URL:       url,
		Message:   fmt.Sprintf("Successfully deployed %s to the Zeabur Cloud.", companyName),
	}, nil
}

var slugStrip = regexp.MustCompile(`[^a-z0-9-]+`)

// Slug lowercases a company name and collapses it into a DNS-safe label.
func Slug(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.ReplaceAll(s, " ", "-")
	s = slugStrip.ReplaceAllString(s, "")
	s = strings.Trim(s, "-")
	if s == "" {
		s = "storefront"
	}
	return s
}
