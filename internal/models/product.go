package models

// Product is a single search hit from the store's product index
type Product struct {
	Name           string  `json:"name" yaml:"name"`
	Price          string  `json:"price" yaml:"price"`
	Aisle          string  `json:"aisle" yaml:"aisle"`
	Image          string  `json:"image,omitempty" yaml:"image,omitempty"`
	IsSoldByWeight bool    `json:"is_sold_by_weight" yaml:"is_sold_by_weight"`
	UnitPrice      *string `json:"unit_price,omitempty" yaml:"unit_price,omitempty"`
	SellByUnit     string  `json:"sell_by_unit,omitempty" yaml:"sell_by_unit,omitempty"`
	ApproxWeight   float64 `json:"approx_weight,omitempty" yaml:"approx_weight,omitempty"`
	SearchTerm     string  `json:"search_term,omitempty" yaml:"search_term,omitempty"`
}

// SearchRequest is the API request body for a product search
type SearchRequest struct {
	SearchTerm string `json:"search_term" yaml:"search_term"`
	MaxResults int    `json:"max_results" yaml:"max_results"`
}

// SearchResponse wraps search hits with their cache provenance
type SearchResponse struct {
	Products  []Product `json:"products" yaml:"products"`
	FromCache bool      `json:"from_cache" yaml:"from_cache"`
}

// FetchImagesRequest asks for one thumbnail per product name
type FetchImagesRequest struct {
	ProductNames []string `json:"product_names" yaml:"product_names"`
}
