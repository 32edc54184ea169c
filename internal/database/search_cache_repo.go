package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/foxxcyber/grocery-assistant/internal/models"
	"github.com/foxxcyber/grocery-assistant/internal/services"
)

// SearchCache stores product search results in the search_cache table
type SearchCache struct {
	db  *DB
	ttl time.Duration
}

var _ services.SearchCache = (*SearchCache)(nil)

func NewSearchCache(db *DB, ttl time.Duration) *SearchCache {
	return &SearchCache{db: db, ttl: ttl}
}

func (c *SearchCache) Get(ctx context.Context, storeNumber int, term string) ([]models.Product, error) {
	term = strings.ToLower(strings.TrimSpace(term))

	var raw []byte
	err := c.db.Pool.QueryRow(ctx, `
		SELECT results_json
		FROM search_cache
		WHERE search_term = $1 AND store_number = $2
		  AND cached_at > NOW() - make_interval(secs => $3)
	`, term, storeNumber, c.ttl.Seconds()).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, services.ErrCacheMiss
		}
		return nil, err
	}

	var products []models.Product
	if err := json.Unmarshal(raw, &products); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached results: %w", err)
	}

	// hit counting is best effort
	if _, err := c.db.Pool.Exec(ctx, `
		UPDATE search_cache SET hit_count = hit_count + 1
		WHERE search_term = $1 AND store_number = $2
	`, term, storeNumber); err != nil {
		c.db.logger.Warn("failed to update cache hit count", zap.String("term", term), zap.Error(err))
	}

	return products, nil
}

func (c *SearchCache) Set(ctx context.Context, storeNumber int, term string, products []models.Product) error {
	data, err := json.Marshal(products)
	if err != nil {
		return fmt.Errorf("failed to marshal products: %w", err)
	}

	_, err = c.db.Pool.Exec(ctx, `
		INSERT INTO search_cache (search_term, store_number, results_json, cached_at, hit_count)
		VALUES ($1, $2, $3, NOW(), 0)
		ON CONFLICT (store_number, search_term) DO UPDATE SET
			results_json = EXCLUDED.results_json,
			cached_at = NOW()
	`, strings.ToLower(strings.TrimSpace(term)), storeNumber, data)
	if err != nil {
		return fmt.Errorf("failed to cache search results: %w", err)
	}
	return nil
}

// PurgeExpired deletes cache rows older than the TTL
func (c *SearchCache) PurgeExpired(ctx context.Context) (int64, error) {
	tag, err := c.db.Pool.Exec(ctx, `
		DELETE FROM search_cache WHERE cached_at < NOW() - make_interval(secs => $1)
	`, c.ttl.Seconds())
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
