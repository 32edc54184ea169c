package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/foxxcyber/grocery-assistant/internal/models"
)

const (
	maxSearchResults = 50
	maxImageFetch    = 20
)

// SearchProducts searches the product index at the user's store
func (h *Handler) SearchProducts(c *fiber.Ctx) error {
	_, store, err := h.currentUser(c)
	if err != nil {
		return err
	}

	var req models.SearchRequest
	if err := c.BodyParser(&req); err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	req.SearchTerm = strings.TrimSpace(req.SearchTerm)
	if req.SearchTerm == "" {
		return Error(c, fiber.StatusBadRequest, "search_term is required")
	}

	maxResults := req.MaxResults
	if maxResults <= 0 {
		maxResults = h.cfg.SearchMaxResults
	}
	if maxResults > maxSearchResults {
		maxResults = maxSearchResults
	}

	products, fromCache, err := h.search.Search(c.UserContext(), req.SearchTerm, maxResults, store)
	if err != nil {
		h.logger.Warn("product search failed",
			zap.String("term", req.SearchTerm),
			zap.Int("store", store),
			zap.Error(err),
		)
		return Error(c, fiber.StatusBadGateway, "product search failed")
	}

	return c.JSON(models.SearchResponse{Products: products, FromCache: fromCache})
}

// FetchImages looks up one thumbnail per product name
func (h *Handler) FetchImages(c *fiber.Ctx) error {
	_, store, err := h.currentUser(c)
	if err != nil {
		return err
	}

	var req models.FetchImagesRequest
	if err := c.BodyParser(&req); err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	if len(req.ProductNames) > maxImageFetch {
		return Error(c, fiber.StatusBadRequest, "too many products (max 20)")
	}

	results := make([]fiber.Map, 0, len(req.ProductNames))
	found := 0
	for _, name := range req.ProductNames {
		imageURL := ""
		products, _, err := h.search.Search(c.UserContext(), name, 1, store)
		if err != nil {
			h.logger.Debug("image lookup failed", zap.String("product", name), zap.Error(err))
		} else if len(products) > 0 {
			imageURL = products[0].Image
		}

		if imageURL != "" {
			found++
		}
		results = append(results, fiber.Map{
			"product_name": name,
			"image_url":    imageURL,
			"success":      imageURL != "",
		})
	}

	return c.JSON(fiber.Map{
		"results":       results,
		"success_count": found,
		"total_count":   len(req.ProductNames),
	})
}
