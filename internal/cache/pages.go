// Package cache stores extracted pages in Redis so repeated queries that hit
// the same URLs skip the refetch.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/rueidis"
	"go.uber.org/zap"

	"github.com/lexora-cloud/docfuse/internal/domain/doc"
	"github.com/lexora-cloud/docfuse/internal/extract"
)

// Config holds connection parameters for the page cache.
type Config struct {
	Addrs     []string
	Password  string
	KeyPrefix string        // default "docfuse:"
	TTL       time.Duration // default 1h
	Logger    *zap.Logger
}

// Pages implements extract.Cache via rueidis. All failures degrade silently
// to a live fetch: the cache is an optimization, never a dependency.
type Pages struct {
	client rueidis.Client
	prefix string
	ttl    time.Duration
	logger *zap.Logger
}

// Compile-time check: Pages implements extract.Cache.
var _ extract.Cache = (*Pages)(nil)

// New creates a Redis-backed page cache.
func New(cfg Config) (*Pages, error) {
	if len(cfg.Addrs) == 0 {
		return nil, fmt.Errorf("addrs is required")
	}

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  cfg.Addrs,
		Password:     cfg.Password,
		DisableCache: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = "docfuse:"
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Pages{client: client, prefix: prefix, ttl: ttl, logger: logger}, nil
}

// GetPage looks up an extracted page by URL.
func (p *Pages) GetPage(ctx context.Context, pageURL string) (extract.Page, bool) {
	cmd := p.client.B().Get().Key(p.key(pageURL)).Build()
	data, err := p.client.Do(ctx, cmd).AsBytes()
	if err != nil {
		if !rueidis.IsRedisNil(err) {
			p.logger.Warn("page cache get failed", zap.String("url", pageURL), zap.Error(err))
		}
		return extract.Page{}, false
	}

	var page extract.Page
	if err := json.Unmarshal(data, &page); err != nil {
		p.logger.Warn("page cache entry corrupt", zap.String("url", pageURL), zap.Error(err))
		return extract.Page{}, false
	}
	return page, true
}

// PutPage stores an extracted page with the configured TTL.
func (p *Pages) PutPage(ctx context.Context, pageURL string, page extract.Page) {
	data, err := json.Marshal(page)
	if err != nil {
		p.logger.Warn("page cache marshal failed", zap.String("url", pageURL), zap.Error(err))
		return
	}

	cmd := p.client.B().Set().Key(p.key(pageURL)).Value(string(data)).
		ExSeconds(int64(p.ttl.Seconds())).Build()
	if err := p.client.Do(ctx, cmd).Error(); err != nil {
		p.logger.Warn("page cache put failed", zap.String("url", pageURL), zap.Error(err))
	}
}

// Ping checks connectivity.
func (p *Pages) Ping(ctx context.Context) error {
	cmd := p.client.B().Ping().Build()
	if err := p.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Close shuts down the client.
func (p *Pages) Close() {
	p.client.Close()
}

// key derives the cache key from the URL's content identity hash, keeping
// keys bounded regardless of URL length.
func (p *Pages) key(pageURL string) string {
	return p.prefix + "page:" + doc.ContentID("", pageURL)
}
