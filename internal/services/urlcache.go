package services

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/sharebox/sharebox/internal/storage"
	"github.com/sharebox/sharebox/pkg/logger"
)

// URLCache holds presigned download URLs keyed by blob reference. It caches
// signatures only; blob existence is checked on every read.
type URLCache struct {
	cache *expirable.LRU[string, string]
	ttl   time.Duration
}

// NewURLCache builds a cache whose TTL stays below urlLifetime, the presign
// lifetime of the store. A ttl at or above it is clamped to half.
func NewURLCache(maxSize int, ttl, urlLifetime time.Duration) *URLCache {
	if maxSize <= 0 {
		maxSize = 1024
	}
	if urlLifetime <= 0 {
		urlLifetime = storage.DefaultURLExpiry
	}
	if ttl <= 0 || ttl >= urlLifetime {
		clamped := urlLifetime / 2
		logger.Warn("url_cache_ttl_clamped", map[string]interface{}{
			"requested_ttl": ttl.String(),
			"url_lifetime":  urlLifetime.String(),
			"ttl":           clamped.String(),
		})
		ttl = clamped
	}
	return &URLCache{cache: expirable.NewLRU[string, string](maxSize, nil, ttl), ttl: ttl}
}

func (c *URLCache) TTL() time.Duration {
	if c == nil {
		return 0
	}
	return c.ttl
}

func (c *URLCache) Get(blobRef string) (string, bool) {
	if c == nil {
		return "", false
	}
	val, ok := c.cache.Get(blobRef)
	if ok {
		urlCacheHitsTotal.Inc()
		return val, true
	}
	urlCacheMissesTotal.Inc()
	return "", false
}

func (c *URLCache) Set(blobRef, url string) {
	if c == nil || url == "" {
		return
	}
	c.cache.Add(blobRef, url)
}

func (c *URLCache) Delete(blobRef string) {
	if c == nil {
		return
	}
	c.cache.Remove(blobRef)
}

func (c *URLCache) Len() int {
	if c == nil {
		return 0
	}
	return c.cache.Len()
}
