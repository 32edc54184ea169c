package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/foxxcyber/grocery-assistant/internal/models"
)

// GetStore returns the store the user is shopping at
func (h *Handler) GetStore(c *fiber.Ctx) error {
	_, store, err := h.currentUser(c)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"store_number": store})
}

// UpdateStore switches stores. Data saved at the old store stays there.
func (h *Handler) UpdateStore(c *fiber.Ctx) error {
	user, oldStore, err := h.currentUser(c)
	if err != nil {
		return err
	}

	var req models.UpdateStoreRequest
	if err := c.BodyParser(&req); err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	if req.StoreNumber <= 0 {
		return Error(c, fiber.StatusBadRequest, "store_number must be positive")
	}

	if err := h.db.UpdateUserStore(c.UserContext(), user.ID, req.StoreNumber); err != nil {
		return h.storeError(c, err, "user")
	}

	return c.JSON(fiber.Map{
		"success":   true,
		"old_store": oldStore,
		"new_store": req.StoreNumber,
		"message":   fmt.Sprintf("Switched to store %d", req.StoreNumber),
	})
}

// SwitchStoreClear switches stores and wipes whatever the user had saved at
// the new store
func (h *Handler) SwitchStoreClear(c *fiber.Ctx) error {
	user, oldStore, err := h.currentUser(c)
	if err != nil {
		return err
	}

	var req models.UpdateStoreRequest
	if err := c.BodyParser(&req); err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	if req.StoreNumber <= 0 {
		return Error(c, fiber.StatusBadRequest, "store_number must be positive")
	}

	if err := h.db.SwitchStoreClearingData(c.UserContext(), user.ID, req.StoreNumber); err != nil {
		return h.storeError(c, err, "user")
	}

	return c.JSON(fiber.Map{
		"success":      true,
		"old_store":    oldStore,
		"new_store":    req.StoreNumber,
		"data_cleared": true,
		"message":      fmt.Sprintf("Switched to store %d and cleared its saved data", req.StoreNumber),
	})
}
