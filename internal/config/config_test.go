package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "STORE_NUMBER", "SEARCH_MAX_RESULTS", "SEARCH_CACHE_DAYS", "MATCH_MAX_RESULTS",
		"ALGOLIA_INDEX", "ALGOLIA_APP_ID", "ALGOLIA_BASE_URL", "S3_ENDPOINT",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 86, cfg.StoreNumber)
	assert.Equal(t, 10, cfg.SearchMaxResults)
	assert.Equal(t, 7*24*time.Hour, cfg.SearchCacheTTL)
	assert.Equal(t, 3, cfg.MatchMaxResults)
	assert.Equal(t, "products", cfg.AlgoliaIndex)
	assert.Equal(t, "https://qgppr19v8v-dsn.algolia.net", cfg.AlgoliaBaseURL)
	assert.False(t, cfg.StorageEnabled())
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("STORE_NUMBER", "12")
	t.Setenv("SEARCH_CACHE_DAYS", "1")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("RATE_LIMIT_ENABLED", "false")
	t.Setenv("ALGOLIA_APP_ID", "ABC123")
	t.Setenv("S3_ENDPOINT", "localhost:9000")
	t.Setenv("S3_ACCESS_KEY", "key")
	t.Setenv("S3_SECRET_KEY", "secret")

	cfg := Load()

	assert.Equal(t, "9090", cfg.Port)
	assert.True(t, cfg.IsProduction())
	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, 12, cfg.StoreNumber)
	assert.Equal(t, 24*time.Hour, cfg.SearchCacheTTL)
	assert.Equal(t, 2.5, cfg.RateLimitRPS)
	assert.False(t, cfg.RateLimitEnabled)
	assert.Equal(t, "https://abc123-dsn.algolia.net", cfg.AlgoliaBaseURL)
	assert.True(t, cfg.StorageEnabled())
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("STORE_NUMBER", "not-a-number")
	t.Setenv("OCR_ENABLED", "maybe")

	cfg := Load()

	assert.Equal(t, 86, cfg.StoreNumber)
	assert.True(t, cfg.OCREnabled)
}
