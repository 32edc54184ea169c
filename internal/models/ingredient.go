package models

// Confidence is a coarse quality signal attached to a parsed ingredient name
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// ParsedIngredient represents a single ingredient line extracted from recipe text
type ParsedIngredient struct {
	Original   string     `json:"original" yaml:"original"`
	Name       string     `json:"name" yaml:"name"`
	Section    *string    `json:"section,omitempty" yaml:"section,omitempty"`
	Optional   bool       `json:"optional" yaml:"optional"`
	Confidence Confidence `json:"confidence" yaml:"confidence"`
}

// RecipeTextImportRequest is the API request body for pasted recipe text
type RecipeTextImportRequest struct {
	Text string `json:"text" yaml:"text"`
}

// RecipeURLImportRequest is the API request body for importing a recipe page
type RecipeURLImportRequest struct {
	URL string `json:"url" yaml:"url"`
}

// RecipeImportResponse is returned by every recipe import endpoint
type RecipeImportResponse struct {
	Success     bool               `json:"success" yaml:"success"`
	Ingredients []ParsedIngredient `json:"ingredients" yaml:"ingredients"`
	Count       int                `json:"count" yaml:"count"`
	Language    string             `json:"language,omitempty" yaml:"language,omitempty"`
	Source      string             `json:"source,omitempty" yaml:"source,omitempty"`
	ImageKey    string             `json:"image_key,omitempty" yaml:"image_key,omitempty"`
	ImageURL    string             `json:"image_url,omitempty" yaml:"image_url,omitempty"`
}

// MatchIngredientsRequest asks for product candidates for each ingredient name
type MatchIngredientsRequest struct {
	Ingredients []string `json:"ingredients" yaml:"ingredients"`
	MaxResults  int      `json:"max_results" yaml:"max_results"`
}

// IngredientMatch pairs one ingredient name with its candidate products
type IngredientMatch struct {
	Ingredient string    `json:"ingredient" yaml:"ingredient"`
	Products   []Product `json:"products" yaml:"products"`
	IsMatched  bool      `json:"is_matched" yaml:"is_matched"`
	Error      string    `json:"error,omitempty" yaml:"error,omitempty"`
}

// MatchIngredientsResponse is the API response for batch matching
type MatchIngredientsResponse struct {
	Matches        []IngredientMatch `json:"matches" yaml:"matches"`
	MatchedCount   int               `json:"matched_count" yaml:"matched_count"`
	UnmatchedCount int               `json:"unmatched_count" yaml:"unmatched_count"`
}
