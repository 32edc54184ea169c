package models

import (
	"time"
)

// FrequentItem is a product a user buys often or has starred manually
type FrequentItem struct {
	ID             int       `json:"id"`
	ProductName    string    `json:"product_name"`
	Price          float64   `json:"price"`
	Aisle          *string   `json:"aisle,omitempty"`
	ImageURL       *string   `json:"image_url,omitempty"`
	PurchaseCount  int       `json:"purchase_count"`
	IsManual       bool      `json:"is_manual"`
	IsSoldByWeight bool      `json:"is_sold_by_weight"`
	LastPurchased  time.Time `json:"last_purchased"`
}

// FavoriteRequest is the API request body for starring a product
type FavoriteRequest struct {
	ProductName    string `json:"product_name"`
	Price          string `json:"price"`
	Aisle          string `json:"aisle"`
	ImageURL       string `json:"image_url"`
	IsSoldByWeight bool   `json:"is_sold_by_weight"`
}

// RemoveFavoriteRequest identifies the product to unstar
type RemoveFavoriteRequest struct {
	ProductName string `json:"product_name"`
}
