package models

import (
	"time"
)

// CartItem is one product line in a user's cart for a store
type CartItem struct {
	ID             int       `json:"id"`
	UserID         string    `json:"user_id"`
	StoreNumber    int       `json:"store_number"`
	ProductName    string    `json:"product_name"`
	Price          float64   `json:"price"`
	Quantity       float64   `json:"quantity"` // Decimal for items sold by weight
	Aisle          *string   `json:"aisle,omitempty"`
	ImageURL       *string   `json:"image_url,omitempty"`
	SearchTerm     string    `json:"search_term"`
	IsSoldByWeight bool      `json:"is_sold_by_weight"`
	UnitPrice      *string   `json:"unit_price,omitempty"`
	AddedAt        time.Time `json:"added_at"`
}

// AddToCartRequest is the API request body for adding a product to the cart
type AddToCartRequest struct {
	Name           string  `json:"name"`
	Price          string  `json:"price"`
	Quantity       float64 `json:"quantity"`
	Aisle          *string `json:"aisle,omitempty"`
	Image          *string `json:"image,omitempty"`
	SearchTerm     string  `json:"search_term"`
	IsSoldByWeight bool    `json:"is_sold_by_weight"`
	UnitPrice      *string `json:"unit_price,omitempty"`
}

// UpdateCartQuantityRequest changes the quantity of a cart line
type UpdateCartQuantityRequest struct {
	CartItemID int     `json:"cart_item_id"`
	Quantity   float64 `json:"quantity"`
}
