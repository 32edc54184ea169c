package handlers

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/foxxcyber/grocery-assistant/internal/database"
	"github.com/foxxcyber/grocery-assistant/internal/models"
)

// GetLists returns the saved lists at the user's store
func (h *Handler) GetLists(c *fiber.Ctx) error {
	user, store, err := h.currentUser(c)
	if err != nil {
		return err
	}

	lists, err := h.db.GetLists(c.UserContext(), user.ID, store)
	if err != nil {
		return h.storeError(c, err, "list")
	}
	return c.JSON(fiber.Map{"lists": lists})
}

func listName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "Shopping List " + time.Now().Format("2006-01-02")
	}
	return name
}

// SaveList snapshots the cart as a named list
func (h *Handler) SaveList(c *fiber.Ctx) error {
	user, store, err := h.currentUser(c)
	if err != nil {
		return err
	}

	var req models.SaveListRequest
	if err := c.BodyParser(&req); err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	size, err := h.db.CartSize(c.UserContext(), user.ID, store)
	if err != nil {
		return h.storeError(c, err, "list")
	}
	if size == 0 {
		return Error(c, fiber.StatusBadRequest, "cart is empty")
	}

	name := listName(req.Name)
	id, err := h.db.SaveCartAsList(c.UserContext(), user.ID, store, name, false)
	if err != nil {
		return h.storeError(c, err, "list")
	}

	return c.JSON(fiber.Map{"success": true, "list_id": id, "name": name})
}

// AutoSaveList keeps one list per name and day in sync with the cart
func (h *Handler) AutoSaveList(c *fiber.Ctx) error {
	user, store, err := h.currentUser(c)
	if err != nil {
		return err
	}

	var req models.SaveListRequest
	if err := c.BodyParser(&req); err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	size, err := h.db.CartSize(c.UserContext(), user.ID, store)
	if err != nil {
		return h.storeError(c, err, "list")
	}
	if size == 0 {
		return c.JSON(fiber.Map{"success": true, "saved": false, "message": "Cart is empty, nothing to save"})
	}

	name := listName(req.Name)
	id, updated, err := h.db.AutoSaveList(c.UserContext(), user.ID, store, name)
	if err != nil {
		return h.storeError(c, err, "list")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"saved":   true,
		"list_id": id,
		"name":    name,
		"updated": updated,
	})
}

// GetTodaysList reports today's auto-saved list, if any
func (h *Handler) GetTodaysList(c *fiber.Ctx) error {
	user, store, err := h.currentUser(c)
	if err != nil {
		return err
	}

	list, err := h.db.GetTodaysAutoSavedList(c.UserContext(), user.ID, store)
	if errors.Is(err, database.ErrNotFound) {
		return c.JSON(fiber.Map{"exists": false})
	}
	if err != nil {
		return h.storeError(c, err, "list")
	}
	return c.JSON(fiber.Map{"exists": true, "list": list})
}

// LoadList replaces the cart with a saved list
func (h *Handler) LoadList(c *fiber.Ctx) error {
	user, store, err := h.currentUser(c)
	if err != nil {
		return err
	}

	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	name, err := h.db.LoadListToCart(c.UserContext(), user.ID, store, id)
	if err != nil {
		return h.storeError(c, err, "list")
	}
	return h.cartResponse(c, user.ID, store, fiber.Map{"list_name": name})
}

// DeleteList removes a list and backs its products out of frequent items
func (h *Handler) DeleteList(c *fiber.Ctx) error {
	user, store, err := h.currentUser(c)
	if err != nil {
		return err
	}

	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	if err := h.db.DeleteList(c.UserContext(), user.ID, store, id); err != nil {
		return h.storeError(c, err, "list")
	}
	return c.JSON(fiber.Map{"success": true})
}
