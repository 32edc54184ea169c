package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/foxxcyber/grocery-assistant/internal/models"
)

func (h *Handler) cartResponse(c *fiber.Ctx, userID string, store int, extra fiber.Map) error {
	cart, err := h.db.GetCart(c.UserContext(), userID, store)
	if err != nil {
		return h.storeError(c, err, "cart")
	}

	body := fiber.Map{"success": true, "cart": cart}
	for k, v := range extra {
		body[k] = v
	}
	return c.JSON(body)
}

// GetCart returns the cart at the user's store
func (h *Handler) GetCart(c *fiber.Ctx) error {
	user, store, err := h.currentUser(c)
	if err != nil {
		return err
	}
	return h.cartResponse(c, user.ID, store, nil)
}

// AddToCart adds a searched product, adding to the quantity if it is already there
func (h *Handler) AddToCart(c *fiber.Ctx) error {
	user, store, err := h.currentUser(c)
	if err != nil {
		return err
	}

	var req models.AddToCartRequest
	if err := c.BodyParser(&req); err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return Error(c, fiber.StatusBadRequest, "product name is required")
	}

	if err := h.db.AddToCart(c.UserContext(), user.ID, store, req); err != nil {
		return h.storeError(c, err, "cart")
	}
	return h.cartResponse(c, user.ID, store, nil)
}

// UpdateCartQuantity sets the quantity of a cart line
func (h *Handler) UpdateCartQuantity(c *fiber.Ctx) error {
	user, store, err := h.currentUser(c)
	if err != nil {
		return err
	}

	var req models.UpdateCartQuantityRequest
	if err := c.BodyParser(&req); err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	if req.Quantity <= 0 {
		return Error(c, fiber.StatusBadRequest, "quantity must be positive")
	}

	if err := h.db.UpdateCartQuantity(c.UserContext(), user.ID, store, req.CartItemID, req.Quantity); err != nil {
		return h.storeError(c, err, "cart item")
	}
	return h.cartResponse(c, user.ID, store, nil)
}

// RemoveFromCart deletes one cart line
func (h *Handler) RemoveFromCart(c *fiber.Ctx) error {
	user, store, err := h.currentUser(c)
	if err != nil {
		return err
	}

	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	if err := h.db.RemoveFromCart(c.UserContext(), user.ID, store, id); err != nil {
		return h.storeError(c, err, "cart item")
	}
	return h.cartResponse(c, user.ID, store, nil)
}

// ClearCart empties the cart
func (h *Handler) ClearCart(c *fiber.Ctx) error {
	user, store, err := h.currentUser(c)
	if err != nil {
		return err
	}

	if err := h.db.ClearCart(c.UserContext(), user.ID, store); err != nil {
		return h.storeError(c, err, "cart")
	}
	return c.JSON(fiber.Map{"success": true, "cart": []models.CartItem{}})
}

// CompleteShopping records the cart as a purchase and clears it
func (h *Handler) CompleteShopping(c *fiber.Ctx) error {
	user, store, err := h.currentUser(c)
	if err != nil {
		return err
	}

	if err := h.db.CompleteShopping(c.UserContext(), user.ID, store); err != nil {
		return h.storeError(c, err, "cart")
	}
	return c.JSON(fiber.Map{
		"success": true,
		"cart":    []models.CartItem{},
		"message": "Shopping completed",
	})
}

// UpdateFrequentItems records the cart as a purchase without clearing it
func (h *Handler) UpdateFrequentItems(c *fiber.Ctx) error {
	user, store, err := h.currentUser(c)
	if err != nil {
		return err
	}

	if err := h.db.UpdateFrequentItems(c.UserContext(), user.ID, store); err != nil {
		return h.storeError(c, err, "cart")
	}
	return h.cartResponse(c, user.ID, store, fiber.Map{"message": "Frequent items updated"})
}
