package models

import (
	"time"
)

// SavedList is a named snapshot of a cart for one store
type SavedList struct {
	ID            int             `json:"id"`
	Name          string          `json:"name"`
	StoreNumber   int             `json:"store_number"`
	IsAutoSaved   bool            `json:"is_auto_saved"`
	CreatedAt     time.Time       `json:"created_at"`
	ItemCount     int             `json:"item_count"`
	TotalQuantity float64         `json:"total_quantity"`
	TotalPrice    float64         `json:"total_price"`
	Items         []SavedListItem `json:"items"`
}

// SavedListItem is a product line stored in a saved list
type SavedListItem struct {
	ProductName    string  `json:"product_name"`
	Price          float64 `json:"price"`
	Quantity       float64 `json:"quantity"`
	Aisle          *string `json:"aisle,omitempty"`
	IsSoldByWeight bool    `json:"is_sold_by_weight"`
}

// SaveListRequest is the API request body for saving the cart as a list
type SaveListRequest struct {
	Name string `json:"name"`
}
