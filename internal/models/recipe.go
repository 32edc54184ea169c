package models

import (
	"time"
)

// Recipe is a named, reusable set of products for one store
type Recipe struct {
	ID            int          `json:"id"`
	Name          string       `json:"name"`
	Description   *string      `json:"description,omitempty"`
	StoreNumber   int          `json:"store_number"`
	CreatedAt     time.Time    `json:"created_at"`
	LastUpdated   time.Time    `json:"last_updated"`
	ItemCount     int          `json:"item_count"`
	TotalQuantity float64      `json:"total_quantity"`
	TotalPrice    float64      `json:"total_price"`
	Items         []RecipeItem `json:"items"`
}

// RecipeItem is a product line inside a recipe
type RecipeItem struct {
	ID             int     `json:"id"`
	ProductName    string  `json:"product_name"`
	Price          float64 `json:"price"`
	Quantity       float64 `json:"quantity"`
	Aisle          *string `json:"aisle,omitempty"`
	ImageURL       *string `json:"image_url,omitempty"`
	SearchTerm     string  `json:"search_term"`
	IsSoldByWeight bool    `json:"is_sold_by_weight"`
	UnitPrice      *string `json:"unit_price,omitempty"`
}

// CreateRecipeRequest is the API request body for an empty recipe
type CreateRecipeRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

// AddRecipeItemRequest adds a searched product to a recipe
type AddRecipeItemRequest struct {
	Name           string  `json:"name"`
	Price          string  `json:"price"`
	Quantity       float64 `json:"quantity"`
	Aisle          *string `json:"aisle,omitempty"`
	Image          *string `json:"image,omitempty"`
	SearchTerm     string  `json:"search_term"`
	IsSoldByWeight bool    `json:"is_sold_by_weight"`
	UnitPrice      *string `json:"unit_price,omitempty"`
}

// UpdateRecipeRequest changes recipe metadata; nil fields are left alone
type UpdateRecipeRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

// UpdateQuantityRequest sets a new quantity
type UpdateQuantityRequest struct {
	Quantity float64 `json:"quantity"`
}

// LoadRecipeRequest optionally limits which recipe items go to the cart
type LoadRecipeRequest struct {
	ItemIDs []int `json:"item_ids,omitempty"`
}
