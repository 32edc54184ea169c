package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/foxxcyber/grocery-assistant/internal/models"
)

// ErrCacheMiss is returned by a SearchCache when no fresh entry exists
var ErrCacheMiss = errors.New("cache miss")

// SearchCache stores product search results per store and search term.
// Terms are matched case-insensitively.
type SearchCache interface {
	Get(ctx context.Context, storeNumber int, term string) ([]models.Product, error)
	Set(ctx context.Context, storeNumber int, term string, products []models.Product) error
}

func cacheTerm(term string) string {
	return strings.ToLower(strings.TrimSpace(term))
}

type cacheEntry struct {
	products  []models.Product
	expiresAt time.Time
}

// MemorySearchCache is a process-local SearchCache used when no shared
// cache is configured
type MemorySearchCache struct {
	ttl   time.Duration
	mu    sync.RWMutex
	items map[string]cacheEntry
	now   func() time.Time
}

// NewMemorySearchCache creates an empty in-memory cache
func NewMemorySearchCache(ttl time.Duration) *MemorySearchCache {
	return &MemorySearchCache{
		ttl:   ttl,
		items: make(map[string]cacheEntry),
		now:   time.Now,
	}
}

func memoryKey(storeNumber int, term string) string {
	return fmt.Sprintf("%d:%s", storeNumber, cacheTerm(term))
}

func (c *MemorySearchCache) Get(ctx context.Context, storeNumber int, term string) ([]models.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.items[memoryKey(storeNumber, term)]
	if !ok || c.now().After(entry.expiresAt) {
		return nil, ErrCacheMiss
	}

	out := make([]models.Product, len(entry.products))
	copy(out, entry.products)
	return out, nil
}

func (c *MemorySearchCache) Set(ctx context.Context, storeNumber int, term string, products []models.Product) error {
	stored := make([]models.Product, len(products))
	copy(stored, products)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[memoryKey(storeNumber, term)] = cacheEntry{
		products:  stored,
		expiresAt: c.now().Add(c.ttl),
	}
	return nil
}

// Purge drops expired entries and returns how many were removed
func (c *MemorySearchCache) Purge() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for key, entry := range c.items {
		if now.After(entry.expiresAt) {
			delete(c.items, key)
			removed++
		}
	}
	return removed
}

// RedisSearchCache shares search results between API instances
type RedisSearchCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSearchCache connects to Redis and verifies the connection
func NewRedisSearchCache(ctx context.Context, redisURL string, ttl time.Duration) (*RedisSearchCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisSearchCache{client: client, ttl: ttl}, nil
}

func redisKey(storeNumber int, term string) string {
	return fmt.Sprintf("search:%d:%s", storeNumber, cacheTerm(term))
}

func (c *RedisSearchCache) Get(ctx context.Context, storeNumber int, term string) ([]models.Product, error) {
	data, err := c.client.Get(ctx, redisKey(storeNumber, term)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to get cache: %w", err)
	}

	var products []models.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cache: %w", err)
	}
	return products, nil
}

func (c *RedisSearchCache) Set(ctx context.Context, storeNumber int, term string, products []models.Product) error {
	data, err := json.Marshal(products)
	if err != nil {
		return fmt.Errorf("failed to marshal products: %w", err)
	}

	if err := c.client.Set(ctx, redisKey(storeNumber, term), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}
	return nil
}

func (c *RedisSearchCache) Close() error {
	return c.client.Close()
}

// CachedSearcher puts a SearchCache in front of a ProductSearcher.
// Cache failures are logged and treated as misses.
type CachedSearcher struct {
	searcher ProductSearcher
	cache    SearchCache
	logger   *zap.Logger
}

func NewCachedSearcher(searcher ProductSearcher, cache SearchCache, logger *zap.Logger) *CachedSearcher {
	return &CachedSearcher{searcher: searcher, cache: cache, logger: logger}
}

// Search returns products for term and whether they came from the cache
func (s *CachedSearcher) Search(ctx context.Context, term string, maxResults, storeNumber int) ([]models.Product, bool, error) {
	cached, err := s.cache.Get(ctx, storeNumber, term)
	switch {
	case err == nil && len(cached) > 0:
		if maxResults > 0 && len(cached) > maxResults {
			cached = cached[:maxResults]
		}
		return cached, true, nil
	case err != nil && !errors.Is(err, ErrCacheMiss):
		s.logger.Warn("search cache read failed",
			zap.String("term", term),
			zap.Int("store", storeNumber),
			zap.Error(err),
		)
	}

	products, err := s.searcher.SearchProducts(ctx, term, maxResults, storeNumber)
	if err != nil {
		return nil, false, err
	}

	if len(products) > 0 {
		if err := s.cache.Set(ctx, storeNumber, term, products); err != nil {
			s.logger.Warn("search cache write failed",
				zap.String("term", term),
				zap.Int("store", storeNumber),
				zap.Error(err),
			)
		}
	}

	return products, false, nil
}

// SearchProducts lets a CachedSearcher stand in wherever a ProductSearcher is expected
func (s *CachedSearcher) SearchProducts(ctx context.Context, term string, maxResults, storeNumber int) ([]models.Product, error) {
	products, _, err := s.Search(ctx, term, maxResults, storeNumber)
	return products, err
}
