// Package yandex adapts the Yandex Cloud web-search API into unified documents.
package yandex

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Sentinel errors for the adapter boundary.
var (
	// ErrUnavailable signals a transport, auth or quota failure from the search API.
	ErrUnavailable = errors.New("yandex search unavailable")
	// ErrMalformedResponse signals an unparsable search API payload.
	ErrMalformedResponse = errors.New("malformed yandex search response")
)

// DefaultEndpoint is the Yandex Cloud Search API v2 web-search endpoint.
const DefaultEndpoint = "https://searchapi.api.cloud.yandex.net/v2/web/search"

// searchTypeRussian requests the fixed Russian search locale.
const searchTypeRussian = "SEARCH_TYPE_RU"

// ClientConfig holds search API credentials and transport settings.
type ClientConfig struct {
	FolderID string
	APIKey   string
	Endpoint string        // "" = DefaultEndpoint
	Timeout  time.Duration // 0 = 15s
}

// Client calls the web-search API and returns result links.
type Client struct {
	httpClient *http.Client
	endpoint   string
	folderID   string
	apiKey     string
}

// NewClient creates a search API client.
func NewClient(cfg ClientConfig) *Client {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		endpoint:   endpoint,
		folderID:   cfg.FolderID,
		apiKey:     cfg.APIKey,
	}
}

type searchRequest struct {
	Query          searchQuery `json:"query"`
	FolderID       string      `json:"folderId"`
	ResponseFormat string      `json:"responseFormat"`
}

type searchQuery struct {
	SearchType string `json:"searchType"`
	QueryText  string `json:"queryText"`
}

type searchResponse struct {
	RawData string `json:"rawData"`
}

// xmlResults mirrors the relevant slice of the search API's XML payload:
// grouped documents, each carrying a URL.
type xmlResults struct {
	XMLName  xml.Name `xml:"yandexsearch"`
	Response struct {
		Error *struct {
			Code string `xml:"code,attr"`
			Text string `xml:",chardata"`
		} `xml:"error"`
		Results struct {
			Groupings []struct {
				Groups []struct {
					Docs []struct {
						URL string `xml:"url"`
					} `xml:"doc"`
				} `xml:"group"`
			} `xml:"grouping"`
		} `xml:"results"`
	} `xml:"response"`
}

// Links runs a web search and returns up to n result URLs in rank order.
func (c *Client) Links(ctx context.Context, query string, n int) ([]string, error) {
	reqBody, err := json.Marshal(searchRequest{
		Query:          searchQuery{SearchType: searchTypeRussian, QueryText: query},
		FolderID:       c.folderID,
		ResponseFormat: "FORMAT_XML",
	})
	if err != nil {
		return nil, fmt.Errorf("marshal search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Api-Key "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: %v: %w", err, ErrUnavailable)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("search API status %d: %s: %w", resp.StatusCode, bytes.TrimSpace(body), ErrUnavailable)
	}

	var sr searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("decode search response: %v: %w", err, ErrMalformedResponse)
	}

	rawXML, err := base64.StdEncoding.DecodeString(sr.RawData)
	if err != nil {
		return nil, fmt.Errorf("decode rawData: %v: %w", err, ErrMalformedResponse)
	}

	var results xmlResults
	if err := xml.Unmarshal(rawXML, &results); err != nil {
		return nil, fmt.Errorf("parse result XML: %v: %w", err, ErrMalformedResponse)
	}
	if e := results.Response.Error; e != nil {
		return nil, fmt.Errorf("search API error %s: %s: %w", e.Code, e.Text, ErrUnavailable)
	}

	var links []string
	for _, grouping := range results.Response.Results.Groupings {
		for _, group := range grouping.Groups {
			for _, d := range group.Docs {
				if d.URL == "" {
					continue
				}
				links = append(links, d.URL)
				if len(links) >= n {
					return links, nil
				}
			}
		}
	}
	return links, nil
}
