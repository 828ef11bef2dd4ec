package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"kismet/internal/config"

	"github.com/sirupsen/logrus"
)

// Backend is a string key/value store with expiry
type Backend interface {
	Name() string
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	Close() error
}

// Page is a rendered document together with the template source it used
type Page struct {
	HTML   string `json:"html"`
	Source string `json:"source"`
}

// DefaultKey is the cache key of the no-artist document
const DefaultKey = "_default"

// PageCache provides convenience methods for caching rendered documents.
// Every Clear starts a new generation; pages rendered from a template
// acquired in an older generation are not stored.
type PageCache struct {
	Backend

	mu  sync.RWMutex
	gen atomic.Uint64
}

// NewPageCache picks the backend described by cfg: Redis when a URL is set
// and reachable, memory otherwise.
func NewPageCache(ctx context.Context, cfg config.CacheConfig, logger logrus.FieldLogger) *PageCache {
	ttl := time.Duration(cfg.TTL) * time.Second

	if cfg.RedisURL != "" {
		redisCache, err := NewRedisCache(ctx, cfg.RedisURL, cfg.KeyPrefix, ttl)
		if err == nil {
			logger.Info("Using Redis page cache")
			return &PageCache{Backend: redisCache}
		}
		logger.WithError(err).Warn("Redis connection failed, using memory cache")
	}

	return &PageCache{Backend: NewMemoryCache(ttl)}
}

// GetPage retrieves a cached page
func (pc *PageCache) GetPage(ctx context.Context, key string) (Page, bool, error) {
	raw, ok, err := pc.Get(ctx, key)
	if err != nil || !ok {
		return Page{}, false, err
	}

	var page Page
	if err := json.Unmarshal([]byte(raw), &page); err != nil {
		return Page{}, false, fmt.Errorf("corrupt cache entry %s: %w", key, err)
	}
	return page, true, nil
}

// SetPage caches a rendered page
func (pc *PageCache) SetPage(ctx context.Context, key string, page Page) error {
	data, err := json.Marshal(page)
	if err != nil {
		return fmt.Errorf("failed to encode page: %w", err)
	}
	return pc.Set(ctx, key, string(data))
}

// Generation returns the current cache generation. Take it before acquiring
// the template a page is rendered from.
func (pc *PageCache) Generation() uint64 {
	return pc.gen.Load()
}

// Clear drops every page and starts a new generation
func (pc *PageCache) Clear(ctx context.Context) error {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	pc.gen.Add(1)
	return pc.Backend.Clear(ctx)
}

// SetPageAt caches page only if no Clear happened since gen was read. It
// reports whether the page was stored.
func (pc *PageCache) SetPageAt(ctx context.Context, key string, page Page, gen uint64) (bool, error) {
	pc.mu.RLock()
	defer pc.mu.RUnlock()

	if pc.gen.Load() != gen {
		return false, nil
	}
	if err := pc.SetPage(ctx, key, page); err != nil {
		return false, err
	}
	return true, nil
}
