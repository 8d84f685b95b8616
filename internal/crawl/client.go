// Package crawl extracts page content from a URL via the hosted scraping
// service, used for brand research during the conversation.
package crawl

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrNoURL is returned when Extract is called with an empty URL.
var ErrNoURL = errors.New("no URL provided")

// Extraction is cleaned page content ready for the assistant to read.
type Extraction struct {
	// Content is markdown-ish main-content text.
	Content string `json:"content"`
	// Title is the page title, when the service reports one.
	Title string `json:"title,omitempty"`
}

// Extractor fetches page content. The production implementation is Client;
// tests substitute fakes.
type Extractor interface {
	Extract(ctx context.Context, url string) (*Extraction, error)
}

// Client talks to the Firecrawl scrape endpoint.
type Client struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
}

// NewClient creates a content extraction client.
func NewClient(apiKey, baseURL string, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		apiKey:     apiKey,
		baseURL:    baseURL,
	}
}

type scrapeRequest struct {
	URL             string   `json:"url"`
	Formats         []string `json:"formats"`
	OnlyMainContent bool     `json:"onlyMainContent"`
}

// scrapeResponse tolerates both the flat and the data-wrapped response
// shapes the service has used.
type scrapeResponse struct {
	Markdown string `json:"markdown"`
	Metadata struct {
		Title string `json:"title"`
	} `json:"metadata"`
	Data *struct {
		Markdown string `json:"markdown"`
		Metadata struct {
			Title string `json:"title"`
		} `json:"metadata"`
	} `json:"data"`
}

// Extract scrapes one URL and returns its main content as markdown.
func (c *Client) Extract(ctx context.Context, url string) (*Extraction, error) {
	if url == "" {
		return nil, ErrNoURL
	}

	body, err := json.Marshal(scrapeRequest{
		URL:             url,
		Formats:         []string{"markdown"},
		OnlyMainContent: true,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("scrape request for %s: %w", url, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading scrape response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("scrape service returned %d for %s", resp.StatusCode, url)
	}

	var parsed scrapeResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("decoding scrape response: %w", err)
	}

	out := &Extraction{Content: parsed.Markdown, Title: parsed.Metadata.Title}
	if parsed.Data != nil && parsed.Data.Markdown != "" {
		out.Content = parsed.Data.Markdown
		out.Title = parsed.Data.Metadata.Title
	}
	if out.Content == "" {
		out.Content = "No content extracted."
	}
	return out, nil
}
