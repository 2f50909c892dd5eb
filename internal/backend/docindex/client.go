// Package docindex adapts the internal document index service into unified documents.
package docindex

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Sentinel errors for the adapter boundary.
var (
	// ErrUnavailable signals a transport or server failure from the index service.
	ErrUnavailable = errors.New("document index unavailable")
	// ErrMalformedResponse signals an unparsable index payload.
	ErrMalformedResponse = errors.New("malformed document index response")
)

// ClientConfig holds index service connection settings.
type ClientConfig struct {
	BaseURL    string
	Token      string        // optional bearer token
	Timeout    time.Duration // 0 = 15s
	MaxRetries uint64        // retries on 5xx, default 2
}

// Client calls the internal index's search endpoint.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	maxRetries uint64
}

// NewClient creates an index service client.
func NewClient(cfg ClientConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	retries := cfg.MaxRetries
	if retries == 0 {
		retries = 2
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		token:      cfg.Token,
		maxRetries: retries,
	}
}

type searchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

// Item is one backend-native index hit. The wire schema is owned by the index
// service; this client only maps it.
type Item struct {
	ID       string  `json:"id"`
	URL      string  `json:"url"`
	DocName  string  `json:"docName"`
	Snippet  string  `json:"snippet"`
	DocType  string  `json:"docType"`
	Position int     `json:"position"`
	Score    float64 `json:"score"`
}

type searchResponse struct {
	Items []Item `json:"items"`
}

// Search queries the index and returns its pre-ranked hits.
// Server-side (5xx) failures are retried with exponential backoff before
// the call degrades at the adapter boundary.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]Item, error) {
	reqBody, err := json.Marshal(searchRequest{Query: query, Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("marshal index request: %w", err)
	}

	var items []Item
	op := func() error {
		req, err := http.NewRequestWithContext(
			ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(reqBody),
		)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("build index request: %w", err))
		}
		req.Header.Set("Content-Type", "application/json")
		if c.token != "" {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("index request: %v: %w", err, ErrUnavailable)
		}
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode >= http.StatusInternalServerError {
			_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
			return fmt.Errorf("index status %d: %w", resp.StatusCode, ErrUnavailable)
		}
		if resp.StatusCode != http.StatusOK {
			return backoff.Permanent(fmt.Errorf("index status %d: %w", resp.StatusCode, ErrUnavailable))
		}

		var sr searchResponse
		if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
			return backoff.Permanent(fmt.Errorf("decode index response: %v: %w", err, ErrMalformedResponse))
		}
		items = sr.Items
		return nil
	}

	b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.maxRetries), ctx)
	if err := backoff.Retry(op, b); err != nil {
		return nil, err
	}
	return items, nil
}
