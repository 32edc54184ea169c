package handlers

import (
	"context"
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/foxxcyber/grocery-assistant/internal/config"
	"github.com/foxxcyber/grocery-assistant/internal/database"
	"github.com/foxxcyber/grocery-assistant/internal/middleware"
	"github.com/foxxcyber/grocery-assistant/internal/models"
	"github.com/foxxcyber/grocery-assistant/internal/services"
)

// StoreResolver looks up the store a user is shopping at
type StoreResolver interface {
	GetUserStore(ctx context.Context, userID string) (int, error)
}

// Services are the collaborators behind the recipe and search endpoints.
// OCR and Photos may be nil.
type Services struct {
	Search   *services.CachedSearcher
	Matcher  *services.IngredientMatcher
	Importer *services.RecipeImporter
	OCR      services.TextRecognizer
	Photos   services.PhotoStore
}

// Handler holds all handler dependencies
type Handler struct {
	db       *database.DB
	stores   StoreResolver
	cfg      *config.Config
	logger   *zap.Logger
	search   *services.CachedSearcher
	matcher  *services.IngredientMatcher
	importer *services.RecipeImporter
	ocr      services.TextRecognizer
	photos   services.PhotoStore
}

// New creates a new Handler instance
func New(db *database.DB, cfg *config.Config, logger *zap.Logger, svc Services) *Handler {
	h := &Handler{
		db:       db,
		cfg:      cfg,
		logger:   logger,
		search:   svc.Search,
		matcher:  svc.Matcher,
		importer: svc.Importer,
		ocr:      svc.OCR,
		photos:   svc.Photos,
	}
	if db != nil {
		h.stores = db
	}
	return h
}

// WithStoreResolver overrides where user stores are read from
func (h *Handler) WithStoreResolver(stores StoreResolver) *Handler {
	h.stores = stores
	return h
}

// OCREnabled reports whether photo import can be served
func (h *Handler) OCREnabled() bool {
	return h.ocr != nil
}

// ErrorHandler is a custom error handler for Fiber
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		message = e.Message
	}

	return Error(c, code, message)
}

// APIResponse is the error envelope shared by every endpoint
type APIResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Error returns an error response
func Error(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(APIResponse{
		Success: false,
		Error:   message,
	})
}

// storeError maps repository errors to HTTP responses. what names the
// resource in a 404 message.
func (h *Handler) storeError(c *fiber.Ctx, err error, what string) error {
	switch {
	case errors.Is(err, database.ErrNotFound):
		return Error(c, fiber.StatusNotFound, what+" not found")
	case errors.Is(err, database.ErrStoreMismatch):
		return Error(c, fiber.StatusConflict, err.Error())
	}

	h.logger.Error("request failed",
		zap.String("path", c.Path()),
		zap.String("resource", what),
		zap.String("user_id", middleware.GetUserID(c)),
		zap.Error(err),
	)
	return Error(c, fiber.StatusInternalServerError, "Internal Server Error")
}

// currentUser returns the caller and the store they are shopping at
func (h *Handler) currentUser(c *fiber.Ctx) (models.AuthUser, int, error) {
	user := middleware.GetUser(c)
	if user.ID == "" {
		return user, 0, fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}
	if h.stores == nil {
		return user, h.defaultStore(), nil
	}

	store, err := h.stores.GetUserStore(c.UserContext(), user.ID)
	if err != nil {
		h.logger.Warn("failed to load user store, using default",
			zap.String("user_id", user.ID), zap.Error(err))
		return user, h.defaultStore(), nil
	}
	return user, store, nil
}

func (h *Handler) defaultStore() int {
	if h.cfg != nil && h.cfg.StoreNumber > 0 {
		return h.cfg.StoreNumber
	}
	return models.DefaultStoreNumber
}

func paramID(c *fiber.Ctx, name string) (int, error) {
	id, err := strconv.Atoi(c.Params(name))
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}
