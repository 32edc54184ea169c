package handlers

import (
	"errors"
	"io"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/foxxcyber/grocery-assistant/internal/middleware"
	"github.com/foxxcyber/grocery-assistant/internal/models"
	"github.com/foxxcyber/grocery-assistant/internal/services"
)

const (
	maxRecipePhotoBytes = 10 * 1024 * 1024
	maxMatchIngredients = 50
	maxMatchResults     = 10

	recipePhotoURLExpiry = time.Hour
)

// ParseRecipe extracts ingredient names from pasted recipe text
func (h *Handler) ParseRecipe(c *fiber.Ctx) error {
	var req models.RecipeTextImportRequest
	if err := c.BodyParser(&req); err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(req.Text) == "" {
		return Error(c, fiber.StatusBadRequest, "recipe text is required")
	}

	resp := h.importer.ImportText(req.Text, services.SourceText)
	h.logger.Debug("parsed recipe text",
		zap.Int("chars", len(req.Text)),
		zap.Int("ingredients", resp.Count),
		zap.String("language", resp.Language),
	)
	return c.JSON(resp)
}

// ImportRecipeURL fetches a recipe page and parses its ingredient list
func (h *Handler) ImportRecipeURL(c *fiber.Ctx) error {
	var req models.RecipeURLImportRequest
	if err := c.BodyParser(&req); err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	resp, err := h.importer.ImportURL(c.UserContext(), req.URL)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidRecipeURL):
			return Error(c, fiber.StatusBadRequest, "a valid http(s) recipe URL is required")
		case errors.Is(err, services.ErrNoIngredientsFound):
			return Error(c, fiber.StatusUnprocessableEntity, "no ingredients found on that page")
		case errors.Is(err, services.ErrRecipeFetchFailed):
			h.logger.Warn("recipe fetch failed", zap.String("url", req.URL), zap.Error(err))
			return Error(c, fiber.StatusBadGateway, "could not fetch that recipe page")
		}
		h.logger.Error("recipe import failed", zap.String("url", req.URL), zap.Error(err))
		return Error(c, fiber.StatusInternalServerError, "failed to import recipe")
	}

	return c.JSON(resp)
}

// ImportRecipeImage reads a photographed recipe with OCR and parses it
func (h *Handler) ImportRecipeImage(c *fiber.Ctx) error {
	if !h.OCREnabled() {
		return Error(c, fiber.StatusServiceUnavailable, "photo import is not available")
	}

	file, err := c.FormFile("image")
	if err != nil {
		return Error(c, fiber.StatusBadRequest, "image file is required")
	}

	contentType := file.Header.Get("Content-Type")
	if !isValidImageType(contentType) {
		return Error(c, fiber.StatusBadRequest, "invalid image type. Supported: JPEG, PNG, WebP")
	}
	if file.Size > maxRecipePhotoBytes {
		return Error(c, fiber.StatusBadRequest, "file too large. Maximum size is 10MB")
	}

	src, err := file.Open()
	if err != nil {
		return Error(c, fiber.StatusInternalServerError, "failed to read file")
	}
	defer src.Close()

	imageBytes, err := io.ReadAll(src)
	if err != nil {
		return Error(c, fiber.StatusInternalServerError, "failed to read file")
	}

	var imageKey string
	if h.photos != nil {
		user := middleware.GetUser(c)
		imageKey, err = h.photos.SaveRecipePhoto(c.UserContext(), user.ID, imageBytes, contentType)
		if err != nil {
			h.logger.Warn("failed to store recipe photo", zap.String("user_id", user.ID), zap.Error(err))
			imageKey = ""
		}
	}

	result, err := h.ocr.ProcessImage(imageBytes)
	if err != nil {
		if errors.Is(err, services.ErrOCRUnavailable) {
			return Error(c, fiber.StatusServiceUnavailable, "photo import is not available")
		}
		h.logger.Error("OCR processing failed", zap.Error(err))
		return Error(c, fiber.StatusInternalServerError, "OCR processing failed")
	}

	resp := h.importer.ImportText(result.Text, services.SourceImage)
	resp.ImageKey = imageKey
	resp.ImageURL = h.recipePhotoURL(c, imageKey)
	if resp.Count == 0 {
		return Error(c, fiber.StatusUnprocessableEntity, "no ingredients found in that image")
	}
	return c.JSON(resp)
}

// recipePhotoURL presigns a download link for a stored photo. Failures only
// drop the link.
func (h *Handler) recipePhotoURL(c *fiber.Ctx, key string) string {
	if key == "" || h.photos == nil {
		return ""
	}
	u, err := h.photos.PhotoURL(c.UserContext(), key, recipePhotoURLExpiry)
	if err != nil {
		h.logger.Warn("failed to presign recipe photo", zap.String("key", key), zap.Error(err))
		return ""
	}
	return u
}

func isValidImageType(contentType string) bool {
	switch contentType {
	case "image/jpeg", "image/jpg", "image/png", "image/webp":
		return true
	}
	return false
}

// MatchIngredients finds store products for each parsed ingredient name
func (h *Handler) MatchIngredients(c *fiber.Ctx) error {
	_, store, err := h.currentUser(c)
	if err != nil {
		return err
	}

	var req models.MatchIngredientsRequest
	if err := c.BodyParser(&req); err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	if len(req.Ingredients) == 0 {
		return Error(c, fiber.StatusBadRequest, "ingredients are required")
	}
	if len(req.Ingredients) > maxMatchIngredients {
		return Error(c, fiber.StatusBadRequest, "too many ingredients (max 50)")
	}

	maxResults := req.MaxResults
	if maxResults <= 0 {
		maxResults = h.cfg.MatchMaxResults
	}
	if maxResults > maxMatchResults {
		maxResults = maxMatchResults
	}

	matches := h.matcher.MatchIngredients(c.UserContext(), req.Ingredients, maxResults, store)
	matched, unmatched := services.CountMatched(matches)

	return c.JSON(models.MatchIngredientsResponse{
		Matches:        matches,
		MatchedCount:   matched,
		UnmatchedCount: unmatched,
	})
}
