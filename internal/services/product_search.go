package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/foxxcyber/grocery-assistant/internal/models"
)

// ErrSearchFailed is returned when the product index cannot be queried
var ErrSearchFailed = errors.New("product search failed")

// ProductSearcher finds store products for a free-text query
type ProductSearcher interface {
	SearchProducts(ctx context.Context, query string, maxResults, storeNumber int) ([]models.Product, error)
}

// AlgoliaSearcher queries the store's public Algolia product index directly
type AlgoliaSearcher struct {
	client      *resty.Client
	index       string
	rateLimiter *rate.Limiter
	logger      *zap.Logger
}

// AlgoliaConfig holds connection details for the product index
type AlgoliaConfig struct {
	BaseURL   string
	AppID     string
	APIKey    string
	Index     string
	RateLimit float64 // requests per second
	Timeout   time.Duration
}

// NewAlgoliaSearcher creates a product index client
func NewAlgoliaSearcher(cfg AlgoliaConfig, logger *zap.Logger) *AlgoliaSearcher {
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = 10
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("x-algolia-api-key", cfg.APIKey).
		SetHeader("x-algolia-application-id", cfg.AppID).
		SetHeader("Content-Type", "application/json").
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond)

	return &AlgoliaSearcher{
		client:      client,
		index:       cfg.Index,
		rateLimiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), int(cfg.RateLimit)+1),
		logger:      logger,
	}
}

type algoliaQuery struct {
	IndexName   string `json:"indexName"`
	Query       string `json:"query"`
	HitsPerPage int    `json:"hitsPerPage"`
	Filters     string `json:"filters"`
}

type algoliaResponse struct {
	Results []struct {
		Hits []algoliaHit `json:"hits"`
	} `json:"results"`
}

type algoliaHit struct {
	ProductName    string        `json:"productName"`
	PriceInStore   *algoliaPrice `json:"price_inStore"`
	Planogram      *algoliaShelf `json:"planogram"`
	Categories     []any         `json:"categories"`
	Images         []string      `json:"images"`
	IsSoldByWeight bool          `json:"isSoldByWeight"`
	SellByUnit     *string       `json:"onlineSellByUnit"`
	ApproxWeight   *float64      `json:"onlineApproxUnitWeight"`
}

type algoliaPrice struct {
	Amount    float64 `json:"amount"`
	UnitPrice any     `json:"unitPrice"`
}

type algoliaShelf struct {
	Aisle any `json:"aisle"`
}

// SearchProducts returns up to maxResults in-store products for the query
func (s *AlgoliaSearcher) SearchProducts(ctx context.Context, query string, maxResults, storeNumber int) ([]models.Product, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.Product{}, nil
	}

	if err := s.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	body := map[string][]algoliaQuery{
		"requests": {{
			IndexName:   s.index,
			Query:       query,
			HitsPerPage: maxResults,
			Filters:     fmt.Sprintf("storeNumber:%d AND fulfilmentType:instore", storeNumber),
		}},
	}

	var result algoliaResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&result).
		Post("/1/indexes/*/queries")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchFailed, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d: %s", ErrSearchFailed, resp.StatusCode(), resp.String())
	}

	if len(result.Results) == 0 {
		s.logger.Warn("no results from product index", zap.String("query", query))
		return []models.Product{}, nil
	}

	hits := result.Results[0].Hits
	products := make([]models.Product, 0, len(hits))
	for _, hit := range hits {
		if hit.ProductName == "" {
			continue
		}
		products = append(products, hit.toProduct(query))
	}

	s.logger.Debug("product search",
		zap.String("query", query),
		zap.Int("store", storeNumber),
		zap.Int("hits", len(hits)),
		zap.Int("products", len(products)),
	)
	return products, nil
}

func (h algoliaHit) toProduct(query string) models.Product {
	product := models.Product{
		Name:           h.ProductName,
		Price:          "$0.00",
		Aisle:          "Unknown",
		IsSoldByWeight: h.IsSoldByWeight,
		SellByUnit:     "Each",
		ApproxWeight:   1.0,
		SearchTerm:     query,
	}

	if h.PriceInStore != nil {
		if h.PriceInStore.Amount != 0 {
			product.Price = fmt.Sprintf("$%.2f", h.PriceInStore.Amount)
		}
		if h.PriceInStore.UnitPrice != nil {
			unit := fmt.Sprint(h.PriceInStore.UnitPrice)
			product.UnitPrice = &unit
		}
	}

	switch {
	case h.Planogram != nil && h.Planogram.Aisle != nil && fmt.Sprint(h.Planogram.Aisle) != "":
		product.Aisle = fmt.Sprint(h.Planogram.Aisle)
	case len(h.Categories) > 0:
		if category, ok := h.Categories[0].(string); ok {
			product.Aisle = category
		}
	}

	if len(h.Images) > 0 {
		product.Image = h.Images[0]
	}
	if h.SellByUnit != nil {
		product.SellByUnit = *h.SellByUnit
	}
	if h.ApproxWeight != nil {
		product.ApproxWeight = *h.ApproxWeight
	}

	return product
}
