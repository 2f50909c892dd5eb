// Package extract fetches web pages and converts markup into readable text.
package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"go.uber.org/zap"
	"golang.org/x/net/html/charset"
	"golang.org/x/sync/errgroup"

	"github.com/lexora-cloud/docfuse/internal/domain/doc"
	"github.com/lexora-cloud/docfuse/internal/metrics"
)

// ErrorTitle marks a placeholder page produced for a failed fetch.
const ErrorTitle = "Error"

// DefaultUserAgent is a realistic desktop browser user-agent.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/134.0.0.0 Safari/537.36 Edg/134.0.0.0"

// DefaultTimeout bounds one page fetch end to end.
const DefaultTimeout = 30 * time.Second

// maxBodyBytes caps how much of a page body is read.
const maxBodyBytes = 8 << 20 // 8MB

// Page is the extraction outcome for one URL. A failed fetch yields a
// diagnostic placeholder (Title == ErrorTitle), never an error.
type Page struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// IsPlaceholder reports whether the page is a fetch-failure placeholder.
func (p Page) IsPlaceholder() bool { return p.Title == ErrorTitle }

// Cache stores extracted pages keyed by URL. Implementations must degrade
// silently: a lookup miss or store failure falls back to a live fetch.
type Cache interface {
	GetPage(ctx context.Context, pageURL string) (Page, bool)
	PutPage(ctx context.Context, pageURL string, page Page)
}

// Result pairs a fetched page with the URL it was fetched for, so out-of-order
// completion cannot misattribute content.
type Result struct {
	URL  string
	Page Page
}

// Config holds Fetcher settings.
type Config struct {
	Timeout   time.Duration // 0 = DefaultTimeout
	UserAgent string        // "" = DefaultUserAgent
	Proxy     string        // "" = taken from HTTP_PROXY / HTTPS_PROXY
	Cache     Cache         // optional
	Logger    *zap.Logger
}

// Fetcher downloads pages and extracts a title and readable body from each.
// One Fetcher owns one HTTP client shared by all fetches.
type Fetcher struct {
	client  *http.Client
	ua      string
	timeout time.Duration
	cache   Cache
	logger  *zap.Logger
}

// NewFetcher creates a Fetcher. The proxy is resolved once here, not per call.
func NewFetcher(cfg Config) *Fetcher {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	proxyURL := cfg.Proxy
	if proxyURL == "" {
		proxyURL = ProxyFromEnv()
	}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		} else {
			logger.Warn("ignoring malformed proxy URL", zap.String("proxy", proxyURL), zap.Error(err))
		}
	}

	return &Fetcher{
		client:  &http.Client{Transport: transport, Timeout: timeout},
		ua:      ua,
		timeout: timeout,
		cache:   cfg.Cache,
		logger:  logger,
	}
}

// ProxyFromEnv returns the outbound proxy URL from HTTP_PROXY / HTTPS_PROXY,
// first non-empty wins.
func ProxyFromEnv() string {
	for _, name := range []string{"HTTP_PROXY", "HTTPS_PROXY"} {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}

// Fetch downloads one page and extracts {title, content}. Every failure mode
// returns a diagnostic placeholder instead of an error, so one bad page cannot
// abort a batch.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) (page Page) {
	// go-readability can panic on pathological markup; convert to a placeholder
	// like any other extraction failure.
	defer func() {
		if r := recover(); r != nil {
			f.logger.Error("extraction panic", zap.String("url", pageURL), zap.Any("panic", r))
			page = Page{Title: ErrorTitle, Content: fmt.Sprintf("Extraction failed for %s: %v", pageURL, r)}
		}
	}()

	if f.cache != nil {
		if cached, ok := f.cache.GetPage(ctx, pageURL); ok {
			metrics.PageCacheTotal.WithLabelValues("hit").Inc()
			return cached
		}
		metrics.PageCacheTotal.WithLabelValues("miss").Inc()
	}

	start := time.Now()
	page, ok := f.fetch(ctx, pageURL)
	metrics.PageFetchDuration.Observe(time.Since(start).Seconds())

	if ok && f.cache != nil {
		f.cache.PutPage(ctx, pageURL, page)
	}
	return page
}

// fetch does the actual HTTP round trip and extraction. ok is true only for a
// successfully extracted page (placeholder pages are not cached).
func (f *Fetcher) fetch(ctx context.Context, pageURL string) (Page, bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, http.NoBody)
	if err != nil {
		metrics.PageFetchTotal.WithLabelValues("transport_error").Inc()
		return Page{Title: ErrorTitle, Content: err.Error()}, false
	}
	req.Header.Set("User-Agent", f.ua)

	resp, err := f.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			metrics.PageFetchTotal.WithLabelValues("timeout").Inc()
			f.logger.Debug("page fetch timed out", zap.String("url", pageURL))
			return Page{Title: ErrorTitle, Content: "Timeout fetching " + pageURL}, false
		}
		metrics.PageFetchTotal.WithLabelValues("transport_error").Inc()
		f.logger.Debug("page fetch failed", zap.String("url", pageURL), zap.Error(err))
		return Page{Title: ErrorTitle, Content: err.Error()}, false
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		metrics.PageFetchTotal.WithLabelValues("http_error").Inc()
		return Page{Title: ErrorTitle, Content: fmt.Sprintf("HTTP status: %d", resp.StatusCode)}, false
	}

	// Decode tolerantly: charset sniffing never fails on malformed bytes.
	reader, err := charset.NewReader(io.LimitReader(resp.Body, maxBodyBytes), resp.Header.Get("Content-Type"))
	if err != nil {
		reader = io.LimitReader(resp.Body, maxBodyBytes)
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		if isTimeout(err) {
			metrics.PageFetchTotal.WithLabelValues("timeout").Inc()
			return Page{Title: ErrorTitle, Content: "Timeout fetching " + pageURL}, false
		}
		metrics.PageFetchTotal.WithLabelValues("transport_error").Inc()
		return Page{Title: ErrorTitle, Content: err.Error()}, false
	}

	metrics.PageFetchTotal.WithLabelValues("ok").Inc()
	return f.extractPage(pageURL, body), true
}

// extractPage pulls a title and readable body text out of raw markup.
func (f *Fetcher) extractPage(pageURL string, body []byte) Page {
	gq, gqErr := goquery.NewDocumentFromReader(bytes.NewReader(body))

	title := doc.PlaceholderTitle
	if gqErr == nil {
		title = extractTitle(gq)
	}

	// Primary strategy: readability-style main-content extraction.
	parsedURL, _ := url.Parse(pageURL)
	if article, err := readability.FromReader(bytes.NewReader(body), parsedURL); err == nil {
		if content := doc.NormalizeWhitespace(article.TextContent); content != "" {
			return Page{Title: title, Content: content}
		}
	}

	// Fallback: strip chrome elements and take the remaining visible text.
	if gqErr != nil {
		return Page{Title: ErrorTitle, Content: "Extraction failed for " + pageURL + ": " + gqErr.Error()}
	}
	gq.Find("script, style, header, footer, nav, aside").Remove()
	content := doc.NormalizeWhitespace(gq.Text())
	return Page{Title: title, Content: content}
}

// extractTitle resolves the page title: <title> text, then og:title,
// then twitter:title, then the placeholder.
func extractTitle(gq *goquery.Document) string {
	if t := strings.TrimSpace(gq.Find("title").First().Text()); t != "" {
		return t
	}
	if c, ok := gq.Find(`meta[property="og:title"]`).First().Attr("content"); ok {
		if t := strings.TrimSpace(c); t != "" {
			return t
		}
	}
	if c, ok := gq.Find(`meta[name="twitter:title"]`).First().Attr("content"); ok {
		if t := strings.TrimSpace(c); t != "" {
			return t
		}
	}
	return doc.PlaceholderTitle
}

// FetchAll fetches all URLs concurrently over the shared client, one goroutine
// per URL. Failures stay isolated per task: a slow or broken page becomes a
// placeholder in its own slot and cannot cancel the other fetches.
func (f *Fetcher) FetchAll(ctx context.Context, urls []string) []Result {
	results := make([]Result, len(urls))

	var g errgroup.Group
	for i, u := range urls {
		g.Go(func() error {
			results[i] = Result{URL: u, Page: f.Fetch(ctx, u)}
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// isTimeout reports whether err is a deadline or client-timeout failure.
func isTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}
