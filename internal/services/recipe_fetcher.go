package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"github.com/go-shiori/go-readability"
	"go.uber.org/zap"

	"github.com/foxxcyber/grocery-assistant/internal/models"
)

var (
	// ErrInvalidRecipeURL is returned for anything but an absolute http(s) URL
	ErrInvalidRecipeURL = errors.New("invalid recipe URL")
	// ErrRecipeFetchFailed is returned when the recipe page cannot be downloaded
	ErrRecipeFetchFailed = errors.New("failed to fetch recipe page")
	// ErrNoIngredientsFound is returned when a source yields no ingredient lines
	ErrNoIngredientsFound = errors.New("no ingredients found")
)

// Where the ingredient lines of a page came from
const (
	SourceText        = "text"
	SourceImage       = "image"
	SourceJSONLD      = "json-ld"
	SourceMarkup      = "markup"
	SourceReadability = "readability"
)

// Ingredient list markup used by the common recipe card plugins, most specific first
var ingredientSelectors = []string{
	`[itemprop="recipeIngredient"]`,
	`.wprm-recipe-ingredient`,
	`.tasty-recipes-ingredients li`,
	`.mv-create-ingredients li`,
	`[class*="ingredient"] li`,
}

// FetchedRecipe is the raw ingredient text pulled from a recipe page
type FetchedRecipe struct {
	URL    string
	Title  string
	Lines  []string
	Source string
}

// Text joins the ingredient lines the way a user would paste them
func (r *FetchedRecipe) Text() string {
	return strings.Join(r.Lines, "\n")
}

// RecipeFetcher downloads recipe pages and extracts their ingredient lists
type RecipeFetcher struct {
	client *resty.Client
	logger *zap.Logger
}

func NewRecipeFetcher(timeout time.Duration, logger *zap.Logger) *RecipeFetcher {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	client := resty.New().
		SetTimeout(timeout).
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(5)).
		SetHeader("User-Agent", "Mozilla/5.0 (compatible; GroceryAssistant/1.0)").
		SetHeader("Accept", "text/html,application/xhtml+xml")

	return &RecipeFetcher{client: client, logger: logger}
}

// Fetch downloads rawURL and extracts its ingredient lines
func (f *RecipeFetcher) Fetch(ctx context.Context, rawURL string) (*FetchedRecipe, error) {
	pageURL, err := validateRecipeURL(rawURL)
	if err != nil {
		return nil, err
	}

	resp, err := f.client.R().
		SetContext(ctx).
		Get(pageURL.String())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRecipeFetchFailed, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrRecipeFetchFailed, resp.StatusCode())
	}

	recipe, err := ExtractRecipe(pageURL, string(resp.Body()))
	if err != nil {
		return nil, err
	}

	f.logger.Info("recipe page fetched",
		zap.String("url", recipe.URL),
		zap.String("source", recipe.Source),
		zap.Int("lines", len(recipe.Lines)),
	)
	return recipe, nil
}

func validateRecipeURL(rawURL string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecipeURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRecipeURL, rawURL)
	}
	return u, nil
}

// ExtractRecipe finds ingredient lines in a recipe page. Structured data is
// preferred, then plugin markup, then list items from the readable content.
func ExtractRecipe(pageURL *url.URL, page string) (*FetchedRecipe, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	recipe := &FetchedRecipe{
		URL:   pageURL.String(),
		Title: pageTitle(doc),
	}

	if lines := jsonLDIngredients(doc); len(lines) > 0 {
		recipe.Lines = lines
		recipe.Source = SourceJSONLD
		return recipe, nil
	}

	if lines := markupIngredients(doc); len(lines) > 0 {
		recipe.Lines = lines
		recipe.Source = SourceMarkup
		return recipe, nil
	}

	rp := readability.NewParser()
	article, err := rp.Parse(strings.NewReader(page), pageURL)
	if err == nil {
		if recipe.Title == "" {
			recipe.Title = article.Title
		}
		if lines := articleListItems(article.Content); len(lines) > 0 {
			recipe.Lines = lines
			recipe.Source = SourceReadability
			return recipe, nil
		}
	}

	return nil, ErrNoIngredientsFound
}

func pageTitle(doc *goquery.Document) string {
	if title, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok && strings.TrimSpace(title) != "" {
		return strings.TrimSpace(title)
	}
	return collapseSpace(doc.Find("title").First().Text())
}

func jsonLDIngredients(doc *goquery.Document) []string {
	var lines []string
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var data any
		if err := json.Unmarshal([]byte(s.Text()), &data); err != nil {
			return true
		}
		lines = findRecipeIngredients(data)
		return len(lines) == 0
	})
	return lines
}

// findRecipeIngredients walks a JSON-LD value looking for the first Recipe node
func findRecipeIngredients(node any) []string {
	switch v := node.(type) {
	case []any:
		for _, item := range v {
			if lines := findRecipeIngredients(item); len(lines) > 0 {
				return lines
			}
		}
	case map[string]any:
		if isRecipeType(v["@type"]) {
			if lines := stringList(v["recipeIngredient"]); len(lines) > 0 {
				return lines
			}
			// older markup
			if lines := stringList(v["ingredients"]); len(lines) > 0 {
				return lines
			}
		}
		if graph, ok := v["@graph"]; ok {
			return findRecipeIngredients(graph)
		}
	}
	return nil
}

func isRecipeType(t any) bool {
	switch v := t.(type) {
	case string:
		return v == "Recipe"
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok && s == "Recipe" {
				return true
			}
		}
	}
	return false
}

func stringList(v any) []string {
	var out []string
	add := func(s string) {
		if s = collapseSpace(html.UnescapeString(s)); s != "" {
			out = append(out, s)
		}
	}

	switch val := v.(type) {
	case string:
		for _, line := range strings.Split(val, "\n") {
			add(line)
		}
	case []any:
		for _, item := range val {
			if s, ok := item.(string); ok {
				add(s)
			}
		}
	}
	return out
}

func markupIngredients(doc *goquery.Document) []string {
	for _, selector := range ingredientSelectors {
		var lines []string
		doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
			if text := collapseSpace(s.Text()); text != "" {
				lines = append(lines, text)
			}
		})
		if len(lines) > 0 {
			return lines
		}
	}
	return nil
}

func articleListItems(content string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return nil
	}

	var lines []string
	doc.Find("li").Each(func(_ int, s *goquery.Selection) {
		// nested lists are visited on their own
		if s.Find("li").Length() > 0 {
			return
		}
		if text := collapseSpace(s.Text()); text != "" {
			lines = append(lines, text)
		}
	})
	return lines
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// RecipeImporter turns recipe sources into parsed ingredients
type RecipeImporter struct {
	parser   *RecipeParser
	fetcher  *RecipeFetcher
	language *LanguageDetector
}

func NewRecipeImporter(parser *RecipeParser, fetcher *RecipeFetcher, language *LanguageDetector) *RecipeImporter {
	return &RecipeImporter{parser: parser, fetcher: fetcher, language: language}
}

// ImportText parses pasted recipe text
func (i *RecipeImporter) ImportText(text, source string) models.RecipeImportResponse {
	ingredients := i.parser.Parse(text)

	resp := models.RecipeImportResponse{
		Success:     true,
		Ingredients: ingredients,
		Count:       len(ingredients),
		Source:      source,
	}
	if i.language != nil && len(ingredients) > 0 {
		resp.Language = i.language.Detect(text)
	}
	return resp
}

// ImportURL fetches a recipe page and parses its ingredient list
func (i *RecipeImporter) ImportURL(ctx context.Context, rawURL string) (models.RecipeImportResponse, error) {
	recipe, err := i.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return models.RecipeImportResponse{}, err
	}

	resp := i.ImportText(recipe.Text(), recipe.Source)
	if resp.Count == 0 {
		return models.RecipeImportResponse{}, ErrNoIngredientsFound
	}
	return resp, nil
}
