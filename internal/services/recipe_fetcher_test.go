package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const jsonLDGraphPage = `<!doctype html>
<html><head>
<title>Weeknight Chili | Example Kitchen</title>
<meta property="og:title" content="Weeknight Chili">
<script type="application/ld+json">{"@context":"https://schema.org","@type":"WebSite","name":"Example Kitchen"}</script>
<script type="application/ld+json">
{"@context":"https://schema.org","@graph":[
  {"@type":"Organization","name":"Example Kitchen"},
  {"@type":["Recipe","NewsArticle"],"name":"Weeknight Chili","recipeIngredient":[
    "1 tablespoon olive oil",
    "1 pound ground beef",
    "2 (15 ounce) cans kidney beans, drained",
    "1 &frac12; cups beef broth",
    "   "
  ]}
]}
</script>
</head><body><ul class="ingredients"><li>decoy</li></ul></body></html>`

const markupPage = `<!doctype html>
<html><head><title>Grandma's Pancakes</title></head><body>
<div class="wprm-recipe-ingredients-container">
  <ul>
    <li class="wprm-recipe-ingredient"><span>1 1/2</span> <span>cups</span> <span>all-purpose flour</span></li>
    <li class="wprm-recipe-ingredient"><span>2</span> <span>tbsp</span> <span>sugar</span></li>
    <li class="wprm-recipe-ingredient"><span>1</span> <span>large</span> <span>egg</span></li>
  </ul>
</div>
</body></html>`

const articlePage = `<!doctype html>
<html><head><title>Overnight Oats</title></head><body>
<nav><a href="/">Home</a> <a href="/recipes">Recipes</a></nav>
<article>
<h1>Overnight Oats</h1>
<p>Overnight oats are the breakfast we come back to every week when mornings get busy. You stir everything together before bed, leave the jar in the fridge, and wake up to something creamy and ready to eat without turning on the stove.</p>
<p>The ratio matters more than the exact brand of oats. Rolled oats soak up the milk slowly and keep some bite, while quick oats turn soft and a little pasty by morning, so we always reach for the old fashioned kind.</p>
<p>Here is what goes into a single large jar, which is enough for two smaller breakfasts or one very hungry person after an early run.</p>
<ul>
<li>1 cup rolled oats</li>
<li>1 cup milk</li>
<li>2 tablespoons chia seeds</li>
<li>1 tablespoon maple syrup</li>
</ul>
<p>Stir well, cover the jar, and refrigerate for at least six hours. In the morning, loosen it with a splash of milk and top with whatever fruit is in season. Berries in summer and sliced pears in the fall are our favorites.</p>
<p>The oats keep for three days in the fridge, so it is easy to make a few jars on Sunday and have breakfast sorted for most of the week without any extra effort.</p>
</article>
<footer><p>Copyright Example Kitchen</p></footer>
</body></html>`

const proseOnlyPage = `<!doctype html><html><head><title>About us</title></head>
<body><p>We love cooking.</p></body></html>`

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func TestExtractRecipe_JSONLDGraph(t *testing.T) {
	recipe, err := ExtractRecipe(mustURL(t, "https://example.com/chili"), jsonLDGraphPage)
	require.NoError(t, err)

	assert.Equal(t, SourceJSONLD, recipe.Source)
	assert.Equal(t, "Weeknight Chili", recipe.Title)
	assert.Equal(t, []string{
		"1 tablespoon olive oil",
		"1 pound ground beef",
		"2 (15 ounce) cans kidney beans, drained",
		"1 ½ cups beef broth",
	}, recipe.Lines)
}

func TestExtractRecipe_Markup(t *testing.T) {
	recipe, err := ExtractRecipe(mustURL(t, "https://example.com/pancakes"), markupPage)
	require.NoError(t, err)

	assert.Equal(t, SourceMarkup, recipe.Source)
	assert.Equal(t, "Grandma's Pancakes", recipe.Title)
	assert.Equal(t, []string{
		"1 1/2 cups all-purpose flour",
		"2 tbsp sugar",
		"1 large egg",
	}, recipe.Lines)

	parsed := ParseRecipeText(recipe.Text())
	require.Len(t, parsed, 3)
	assert.Equal(t, "sugar", parsed[1].Name)
}

func TestExtractRecipe_ArticleFallback(t *testing.T) {
	recipe, err := ExtractRecipe(mustURL(t, "https://example.com/oats"), articlePage)
	require.NoError(t, err)

	assert.Equal(t, SourceReadability, recipe.Source)
	assert.Equal(t, "Overnight Oats", recipe.Title)
	assert.Contains(t, recipe.Lines, "1 cup rolled oats")
	assert.Contains(t, recipe.Lines, "2 tablespoons chia seeds")
}

func TestExtractRecipe_NothingFound(t *testing.T) {
	_, err := ExtractRecipe(mustURL(t, "https://example.com/about"), proseOnlyPage)
	assert.ErrorIs(t, err, ErrNoIngredientsFound)
}

func TestFindRecipeIngredients(t *testing.T) {
	tests := []struct {
		name string
		node any
		want []string
	}{
		{
			name: "single recipe",
			node: map[string]any{"@type": "Recipe", "recipeIngredient": []any{"1 egg", "salt"}},
			want: []string{"1 egg", "salt"},
		},
		{
			name: "array of nodes",
			node: []any{
				map[string]any{"@type": "BreadcrumbList"},
				map[string]any{"@type": "Recipe", "recipeIngredient": []any{"2 cups rice"}},
			},
			want: []string{"2 cups rice"},
		},
		{
			name: "legacy ingredients string",
			node: map[string]any{"@type": "Recipe", "ingredients": "1 cup milk\n2 eggs"},
			want: []string{"1 cup milk", "2 eggs"},
		},
		{
			name: "not a recipe",
			node: map[string]any{"@type": "Article", "recipeIngredient": []any{"1 egg"}},
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, findRecipeIngredients(tt.node))
		})
	}
}

func TestRecipeFetcher_Fetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/chili":
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write([]byte(jsonLDGraphPage))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	fetcher := NewRecipeFetcher(5*time.Second, zap.NewNop())

	recipe, err := fetcher.Fetch(context.Background(), server.URL+"/chili")
	require.NoError(t, err)
	assert.Len(t, recipe.Lines, 4)

	_, err = fetcher.Fetch(context.Background(), server.URL+"/missing")
	assert.ErrorIs(t, err, ErrRecipeFetchFailed)
}

func TestRecipeFetcher_InvalidURL(t *testing.T) {
	fetcher := NewRecipeFetcher(time.Second, zap.NewNop())

	for _, raw := range []string{"", "not a url", "ftp://example.com/recipe", "/relative/path", "https://"} {
		_, err := fetcher.Fetch(context.Background(), raw)
		assert.ErrorIs(t, err, ErrInvalidRecipeURL, raw)
	}
}

func TestRecipeImporter_ImportURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/about" {
			_, _ = w.Write([]byte(proseOnlyPage))
			return
		}
		_, _ = w.Write([]byte(jsonLDGraphPage))
	}))
	defer server.Close()

	importer := NewRecipeImporter(NewRecipeParser(), NewRecipeFetcher(5*time.Second, zap.NewNop()), nil)

	resp, err := importer.ImportURL(context.Background(), server.URL+"/chili")
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, SourceJSONLD, resp.Source)
	assert.Equal(t, 4, resp.Count)
	assert.Equal(t, "olive oil", resp.Ingredients[0].Name)
	assert.Equal(t, "ground beef", resp.Ingredients[1].Name)

	_, err = importer.ImportURL(context.Background(), server.URL+"/about")
	assert.ErrorIs(t, err, ErrNoIngredientsFound)
}

func TestRecipeImporter_ImportText(t *testing.T) {
	importer := NewRecipeImporter(NewRecipeParser(), nil, nil)

	resp := importer.ImportText("Ingredients:\n- 2 cups flour\n- 1 tsp salt", SourceText)
	assert.True(t, resp.Success)
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, SourceText, resp.Source)
	assert.Empty(t, resp.Language)

	empty := importer.ImportText("", SourceText)
	assert.True(t, empty.Success)
	assert.Equal(t, 0, empty.Count)
	assert.NotNil(t, empty.Ingredients)
}
