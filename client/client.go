// Package client talks to a hymods server over its HTTP API. It covers the
// read and download-counter surface the browser needs in server mode.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"hymods/config"
	"hymods/content"
)

// Client handles communication with the hymods server API.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates an API client from the loaded configuration.
func NewClient(cfg config.Config) (*Client, error) {
	if cfg.ServerURL == "" {
		return nil, fmt.Errorf("SERVER_URL is not configured")
	}
	return &Client{
		BaseURL: cfg.ServerURL,
		HTTPClient: &http.Client{
			Timeout: time.Duration(cfg.HTTPTimeout) * time.Second,
		},
	}, nil
}

func (c *Client) makeRequest(ctx context.Context, method, path string, target interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("api request failed: status %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	if target != nil {
		if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
			return fmt.Errorf("failed to decode json response: %w", err)
		}
	}
	return nil
}

// ListAll fetches every record in a category from the server.
func (c *Client) ListAll(ctx context.Context, cat content.Category) ([]content.Record, error) {
	var records []content.Record
	err := c.makeRequest(ctx, http.MethodGet, fmt.Sprintf("/api/%s", cat), &records)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", cat, err)
	}
	return records, nil
}

// IncrementDownloads asks the server to bump a record's download counter.
func (c *Client) IncrementDownloads(ctx context.Context, cat content.Category, id string) error {
	var result struct {
		Success bool `json:"success"`
	}
	err := c.makeRequest(ctx, http.MethodPost, fmt.Sprintf("/api/download/%s/%s", cat, id), &result)
	if err != nil {
		return fmt.Errorf("failed to record download for %s/%s: %w", cat, id, err)
	}
	if !result.Success {
		return fmt.Errorf("server rejected download count for %s/%s", cat, id)
	}
	return nil
}
