package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/foxxcyber/grocery-assistant/internal/models"
)

// GetRecipes returns the user's recipes at their store
func (h *Handler) GetRecipes(c *fiber.Ctx) error {
	user, store, err := h.currentUser(c)
	if err != nil {
		return err
	}

	recipes, err := h.db.GetRecipes(c.UserContext(), user.ID, store)
	if err != nil {
		return h.storeError(c, err, "recipe")
	}
	return c.JSON(fiber.Map{"recipes": recipes})
}

// CreateRecipe creates an empty recipe
func (h *Handler) CreateRecipe(c *fiber.Ctx) error {
	user, store, err := h.currentUser(c)
	if err != nil {
		return err
	}

	var req models.CreateRecipeRequest
	if err := c.BodyParser(&req); err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return Error(c, fiber.StatusBadRequest, "recipe name is required")
	}

	id, err := h.db.CreateRecipe(c.UserContext(), user.ID, store, req.Name, req.Description)
	if err != nil {
		return h.storeError(c, err, "recipe")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "recipe_id": id, "name": req.Name})
}

// SaveCartAsRecipe turns the current cart into a recipe
func (h *Handler) SaveCartAsRecipe(c *fiber.Ctx) error {
	user, store, err := h.currentUser(c)
	if err != nil {
		return err
	}

	var req models.CreateRecipeRequest
	if err := c.BodyParser(&req); err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return Error(c, fiber.StatusBadRequest, "recipe name is required")
	}

	size, err := h.db.CartSize(c.UserContext(), user.ID, store)
	if err != nil {
		return h.storeError(c, err, "cart")
	}
	if size == 0 {
		return Error(c, fiber.StatusBadRequest, "cart is empty")
	}

	id, err := h.db.SaveCartAsRecipe(c.UserContext(), user.ID, store, req.Name, req.Description)
	if err != nil {
		return h.storeError(c, err, "recipe")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":    true,
		"recipe_id":  id,
		"name":       req.Name,
		"item_count": size,
	})
}

// AddRecipeItem appends a searched product to a recipe
func (h *Handler) AddRecipeItem(c *fiber.Ctx) error {
	user, _, err := h.currentUser(c)
	if err != nil {
		return err
	}

	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var req models.AddRecipeItemRequest
	if err := c.BodyParser(&req); err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return Error(c, fiber.StatusBadRequest, "product name is required")
	}

	if err := h.db.AddRecipeItem(c.UserContext(), user.ID, id, req); err != nil {
		return h.storeError(c, err, "recipe")
	}
	return c.JSON(fiber.Map{"success": true})
}

// UpdateRecipeItemQuantity sets the quantity of one recipe item
func (h *Handler) UpdateRecipeItemQuantity(c *fiber.Ctx) error {
	user, _, err := h.currentUser(c)
	if err != nil {
		return err
	}

	itemID, err := paramID(c, "item_id")
	if err != nil {
		return err
	}

	var req models.UpdateQuantityRequest
	if err := c.BodyParser(&req); err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	if req.Quantity <= 0 {
		return Error(c, fiber.StatusBadRequest, "quantity must be positive")
	}

	if err := h.db.UpdateRecipeItemQuantity(c.UserContext(), user.ID, itemID, req.Quantity); err != nil {
		return h.storeError(c, err, "recipe item")
	}
	return c.JSON(fiber.Map{"success": true})
}

// RemoveRecipeItem deletes one recipe item
func (h *Handler) RemoveRecipeItem(c *fiber.Ctx) error {
	user, _, err := h.currentUser(c)
	if err != nil {
		return err
	}

	itemID, err := paramID(c, "item_id")
	if err != nil {
		return err
	}

	if err := h.db.RemoveRecipeItem(c.UserContext(), user.ID, itemID); err != nil {
		return h.storeError(c, err, "recipe item")
	}
	return c.JSON(fiber.Map{"success": true})
}

// UpdateRecipe renames a recipe or changes its description
func (h *Handler) UpdateRecipe(c *fiber.Ctx) error {
	user, _, err := h.currentUser(c)
	if err != nil {
		return err
	}

	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var req models.UpdateRecipeRequest
	if err := c.BodyParser(&req); err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.db.UpdateRecipe(c.UserContext(), user.ID, id, req); err != nil {
		return h.storeError(c, err, "recipe")
	}
	return c.JSON(fiber.Map{"success": true})
}

// DeleteRecipe removes a recipe and its items
func (h *Handler) DeleteRecipe(c *fiber.Ctx) error {
	user, store, err := h.currentUser(c)
	if err != nil {
		return err
	}

	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	if err := h.db.DeleteRecipe(c.UserContext(), user.ID, store, id); err != nil {
		return h.storeError(c, err, "recipe")
	}
	return c.JSON(fiber.Map{"success": true})
}

// LoadRecipeToCart adds a recipe's items, or a chosen subset, to the cart
func (h *Handler) LoadRecipeToCart(c *fiber.Ctx) error {
	user, store, err := h.currentUser(c)
	if err != nil {
		return err
	}

	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var req models.LoadRecipeRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return Error(c, fiber.StatusBadRequest, "invalid request body")
		}
	}

	if err := h.db.LoadRecipeToCart(c.UserContext(), user.ID, store, id, req.ItemIDs); err != nil {
		return h.storeError(c, err, "recipe")
	}
	return h.cartResponse(c, user.ID, store, nil)
}
