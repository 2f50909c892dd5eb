package cache

import (
	"time"

	"github.com/redis/rueidis"
	"go.uber.org/zap"
)

// NewForTest creates a Pages cache with the provided rueidis client (test-only).
func NewForTest(c rueidis.Client, prefix string, ttl time.Duration) *Pages {
	return &Pages{client: c, prefix: prefix, ttl: ttl, logger: zap.NewNop()}
}
