package handlers

import (
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/foxxcyber/grocery-assistant/internal/models"
)

const frequentItemsLimit = 20

// productNameParam decodes a product name passed as a path segment
func productNameParam(c *fiber.Ctx) (string, error) {
	name, err := url.PathUnescape(c.Params("product_name"))
	if err != nil || strings.TrimSpace(name) == "" {
		return "", fiber.NewError(fiber.StatusBadRequest, "invalid product name")
	}
	return name, nil
}

// GetFavorites returns the user's starred products
func (h *Handler) GetFavorites(c *fiber.Ctx) error {
	user, store, err := h.currentUser(c)
	if err != nil {
		return err
	}

	favorites, err := h.db.GetFavorites(c.UserContext(), user.ID, store)
	if err != nil {
		return h.storeError(c, err, "favorite")
	}
	return c.JSON(fiber.Map{"favorites": favorites})
}

// AddFavorite stars a product
func (h *Handler) AddFavorite(c *fiber.Ctx) error {
	user, store, err := h.currentUser(c)
	if err != nil {
		return err
	}

	var req models.FavoriteRequest
	if err := c.BodyParser(&req); err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	req.ProductName = strings.TrimSpace(req.ProductName)
	if req.ProductName == "" {
		return Error(c, fiber.StatusBadRequest, "product_name is required")
	}

	if err := h.db.AddFavorite(c.UserContext(), user.ID, store, req); err != nil {
		return h.storeError(c, err, "favorite")
	}
	return c.JSON(fiber.Map{"success": true, "product_name": req.ProductName})
}

// RemoveFavorite unstars a product
func (h *Handler) RemoveFavorite(c *fiber.Ctx) error {
	user, store, err := h.currentUser(c)
	if err != nil {
		return err
	}

	name, err := productNameParam(c)
	if err != nil {
		return err
	}

	if err := h.db.RemoveFavorite(c.UserContext(), user.ID, store, name); err != nil {
		return h.storeError(c, err, "favorite")
	}
	return c.JSON(fiber.Map{"success": true, "product_name": name})
}

// CheckFavorite reports whether a product is starred
func (h *Handler) CheckFavorite(c *fiber.Ctx) error {
	user, store, err := h.currentUser(c)
	if err != nil {
		return err
	}

	name, err := productNameParam(c)
	if err != nil {
		return err
	}

	favorited, err := h.db.IsFavorite(c.UserContext(), user.ID, store, name)
	if err != nil {
		return h.storeError(c, err, "favorite")
	}
	return c.JSON(fiber.Map{"is_favorited": favorited, "product_name": name})
}

// GetFrequentItems returns products the user has bought repeatedly
func (h *Handler) GetFrequentItems(c *fiber.Ctx) error {
	user, store, err := h.currentUser(c)
	if err != nil {
		return err
	}

	items, err := h.db.GetFrequentItems(c.UserContext(), user.ID, store, frequentItemsLimit)
	if err != nil {
		return h.storeError(c, err, "frequent items")
	}
	return c.JSON(fiber.Map{"items": items})
}
