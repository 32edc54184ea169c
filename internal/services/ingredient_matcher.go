package services

import (
	"context"
	"regexp"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/foxxcyber/grocery-assistant/internal/models"
)

// IngredientMatcher looks up store products for parsed ingredient names
type IngredientMatcher struct {
	searcher    ProductSearcher
	concurrency int
	logger      *zap.Logger
}

// NewIngredientMatcher creates a matcher that runs at most concurrency
// searches at once
func NewIngredientMatcher(searcher ProductSearcher, concurrency int, logger *zap.Logger) *IngredientMatcher {
	if concurrency < 1 {
		concurrency = 1
	}
	return &IngredientMatcher{
		searcher:    searcher,
		concurrency: concurrency,
		logger:      logger,
	}
}

// MatchIngredients searches once per ingredient name. Results keep the input
// order; a failed lookup is reported on its entry and does not fail the batch.
func (m *IngredientMatcher) MatchIngredients(ctx context.Context, names []string, maxResults, storeNumber int) []models.IngredientMatch {
	wanted := make([]string, 0, len(names))
	for _, name := range names {
		if strings.TrimSpace(name) != "" {
			wanted = append(wanted, strings.TrimSpace(name))
		}
	}

	matches := make([]models.IngredientMatch, len(wanted))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.concurrency)

	for i, name := range wanted {
		g.Go(func() error {
			match := models.IngredientMatch{Ingredient: name, Products: []models.Product{}}

			products, err := m.searcher.SearchProducts(gctx, SearchQuery(name), maxResults, storeNumber)
			if err != nil {
				m.logger.Warn("ingredient lookup failed",
					zap.String("ingredient", name),
					zap.Error(err),
				)
				match.Error = err.Error()
			} else if len(products) > 0 {
				match.Products = products
				match.IsMatched = true
			}

			matches[i] = match
			return nil
		})
	}
	_ = g.Wait()

	return matches
}

// CountMatched returns how many entries found at least one product
func CountMatched(matches []models.IngredientMatch) (matched, unmatched int) {
	for _, m := range matches {
		if m.IsMatched {
			matched++
		} else {
			unmatched++
		}
	}
	return matched, unmatched
}

var queryAbbreviations = map[string]string{
	"evoo":  "extra virgin olive oil",
	"pkg":   "package",
	"choc":  "chocolate",
	"veg":   "vegetable",
	"parm":  "parmesan",
	"mozz":  "mozzarella",
	"bbq":   "barbecue",
	"worcs": "worcestershire",
}

var nonWordRun = regexp.MustCompile(`[^\p{L}\p{N}'&\- ]+`)

// SearchQuery turns an ingredient name into a product search query
func SearchQuery(name string) string {
	name = strings.ToLower(name)
	name = nonWordRun.ReplaceAllString(name, " ")

	words := strings.Fields(name)
	for i, w := range words {
		if full, ok := queryAbbreviations[w]; ok {
			words[i] = full
		}
	}
	return strings.Join(words, " ")
}
