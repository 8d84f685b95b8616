// Package imagegen calls the hosted image generation service to produce
// product photography for hydration.
package imagegen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// promptTemplate is the studio-photography prompt sent per product.
const promptTemplate = "Professional e-commerce product photography of %s. " +
	"Shot perfectly centered on a pure white seamless background. " +
	"Soft, diffused, high-key studio lighting that eliminates harsh shadows. " +
	"A very subtle, natural-looking drop shadow grounding the object. " +
	"Photorealistic, macro lens, sharp edge-to-edge focus, highly detailed, 8k resolution. " +
	"Clean, premium, and clinical aesthetic."

// Generator produces an image URL for a product name. The production
// implementation is Client; tests substitute fakes.
type Generator interface {
	Generate(ctx context.Context, productName string) (string, error)
}

// Client talks to the Wavespeed text-to-image endpoint.
type Client struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
}

// NewClient creates an image generation client. The API key must already
// be validated by the caller.
func NewClient(apiKey, baseURL string, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		apiKey:     apiKey,
		baseURL:    baseURL,
	}
}

type generateRequest struct {
	EnableBase64Output bool   `json:"enable_base64_output"`
	EnableSyncMode     bool   `json:"enable_sync_mode"`
	OutputFormat       string `json:"output_format"`
	Prompt             string `json:"prompt"`
	Resolution         string `json:"resolution"`
}

// Generate requests one product image and extracts its URL from the
// response. Any failure (non-2xx, network error, or a response with no
// extractable URL) is returned as an error; the batcher treats these as
// per-product failures.
func (c *Client) Generate(ctx context.Context, productName string) (string, error) {
	body, err := json.Marshal(generateRequest{
		EnableSyncMode: true, // sync keeps hydration immediate
		OutputFormat:   "png",
		Prompt:         fmt.Sprintf(promptTemplate, productName),
		Resolution:     "1k",
	})
	if err != nil {
		return "", fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("image request for %q: %w", productName, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading image response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("image service returned %d for %q: %s", resp.StatusCode, productName, truncate(respBody, 200))
	}

	url, ok := ExtractURL(respBody)
	if !ok {
		return "", fmt.Errorf("no image URL found in response for %q", productName)
	}
	return url, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n])
}
