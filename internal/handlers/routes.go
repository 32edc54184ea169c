package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/foxxcyber/grocery-assistant/internal/middleware"
)

// RegisterRoutes mounts the health check and the /api routes. users may be
// nil when no user table is available.
func (h *Handler) RegisterRoutes(app fiber.Router, users middleware.UserEnsurer) {
	app.Get("/health", h.Health)

	optional := middleware.AuthOptional(h.cfg, users, h.logger)
	required := middleware.AuthRequired(h.cfg, users, h.logger)

	api := app.Group("/api")

	// Recipe import and matching
	recipes := api.Group("/recipes", optional)
	recipes.Post("/parse", h.ParseRecipe)
	recipes.Post("/import-url", h.ImportRecipeURL)
	recipes.Post("/import-image", h.ImportRecipeImage)
	recipes.Post("/match-ingredients", h.MatchIngredients)

	// Saved recipes
	recipes.Get("/", h.GetRecipes)
	recipes.Post("/create", h.CreateRecipe)
	recipes.Post("/save-cart", h.SaveCartAsRecipe)
	recipes.Put("/items/:item_id/quantity", h.UpdateRecipeItemQuantity)
	recipes.Delete("/items/:item_id", h.RemoveRecipeItem)
	recipes.Post("/:id/items", h.AddRecipeItem)
	recipes.Post("/:id/add-to-cart", h.LoadRecipeToCart)
	recipes.Put("/:id", h.UpdateRecipe)
	recipes.Delete("/:id", h.DeleteRecipe)

	// Search
	api.Post("/search", optional, h.SearchProducts)
	api.Post("/images/fetch", optional, h.FetchImages)
	api.Get("/frequent", optional, h.GetFrequentItems)

	// Cart
	cart := api.Group("/cart", optional)
	cart.Get("/", h.GetCart)
	cart.Post("/add", h.AddToCart)
	cart.Put("/quantity", h.UpdateCartQuantity)
	cart.Post("/complete", h.CompleteShopping)
	cart.Post("/update-frequent", h.UpdateFrequentItems)
	cart.Delete("/:id", h.RemoveFromCart)
	cart.Delete("/", h.ClearCart)

	// Saved lists
	lists := api.Group("/lists", optional)
	lists.Get("/", h.GetLists)
	lists.Get("/today", h.GetTodaysList)
	lists.Post("/save", h.SaveList)
	lists.Post("/auto-save", h.AutoSaveList)
	lists.Post("/:id/load", h.LoadList)
	lists.Delete("/:id", h.DeleteList)

	// Store selection
	store := api.Group("/store", required)
	store.Get("/", h.GetStore)
	store.Put("/", h.UpdateStore)
	store.Post("/switch-clear", h.SwitchStoreClear)

	// Favorites
	favorites := api.Group("/favorites", required)
	favorites.Get("/", h.GetFavorites)
	favorites.Post("/add", h.AddFavorite)
	favorites.Get("/check/:product_name", h.CheckFavorite)
	favorites.Delete("/:product_name", h.RemoveFavorite)
}
