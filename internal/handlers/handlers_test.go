package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/foxxcyber/grocery-assistant/internal/config"
	"github.com/foxxcyber/grocery-assistant/internal/middleware"
	"github.com/foxxcyber/grocery-assistant/internal/models"
	"github.com/foxxcyber/grocery-assistant/internal/services"
)

const testStore = 42

type fixedStore struct{ store int }

func (f fixedStore) GetUserStore(ctx context.Context, userID string) (int, error) {
	return f.store, nil
}

type catalogSearcher struct {
	mu      sync.Mutex
	catalog map[string][]models.Product
	stores  []int
	calls   int
	err     error
}

func (s *catalogSearcher) SearchProducts(ctx context.Context, query string, maxResults, storeNumber int) ([]models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.stores = append(s.stores, storeNumber)
	if s.err != nil {
		return nil, s.err
	}
	products := s.catalog[query]
	if maxResults > 0 && len(products) > maxResults {
		products = products[:maxResults]
	}
	return products, nil
}

type fakeOCR struct {
	text string
	err  error
}

func (f *fakeOCR) ProcessImage(imageBytes []byte) (*services.OCRResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &services.OCRResult{Text: f.text, Lines: strings.Split(f.text, "\n")}, nil
}

func (f *fakeOCR) Close() error { return nil }

type fakePhotos struct {
	saved  []string
	err    error
	urlErr error
}

func (f *fakePhotos) SaveRecipePhoto(ctx context.Context, userID string, data []byte, contentType string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	key := fmt.Sprintf("recipes/%s/photo-%d", userID, len(f.saved))
	f.saved = append(f.saved, key)
	return key, nil
}

func (f *fakePhotos) PhotoURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	if f.urlErr != nil {
		return "", f.urlErr
	}
	return fmt.Sprintf("https://photos.test/%s?expires=%s", key, expiry), nil
}

func (f *fakePhotos) DeleteUserPhotos(ctx context.Context, userID string) error {
	return nil
}

type testDeps struct {
	searcher *catalogSearcher
	ocr      services.TextRecognizer
	photos   services.PhotoStore
}

func newTestApp(t *testing.T, deps testDeps) *fiber.App {
	t.Helper()

	cfg := &config.Config{
		JWTSecret:        "test-secret",
		StoreNumber:      86,
		SearchMaxResults: 10,
		MatchMaxResults:  3,
	}
	logger := zap.NewNop()

	if deps.searcher == nil {
		deps.searcher = &catalogSearcher{}
	}
	search := services.NewCachedSearcher(deps.searcher, services.NewMemorySearchCache(time.Hour), logger)

	h := New(nil, cfg, logger, Services{
		Search:   search,
		Matcher:  services.NewIngredientMatcher(search, 2, logger),
		Importer: services.NewRecipeImporter(services.NewRecipeParser(), services.NewRecipeFetcher(5*time.Second, logger), nil),
		OCR:      deps.ocr,
		Photos:   deps.photos,
	}).WithStoreResolver(fixedStore{store: testStore})

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	h.RegisterRoutes(app, nil)
	return app
}

func postJSON(t *testing.T, app *fiber.App, path string, body any) *http.Response {
	t.Helper()
	var payload []byte
	switch b := body.(type) {
	case string:
		payload = []byte(b)
	default:
		var err error
		payload, err = json.Marshal(b)
		require.NoError(t, err)
	}

	req := httptest.NewRequest("POST", path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, 5000)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func ingredientNames(resp models.RecipeImportResponse) []string {
	out := make([]string, len(resp.Ingredients))
	for i, ing := range resp.Ingredients {
		out[i] = ing.Name
	}
	return out
}

func TestParseRecipe(t *testing.T) {
	app := newTestApp(t, testDeps{})

	resp := postJSON(t, app, "/api/recipes/parse", models.RecipeTextImportRequest{
		Text: "Ingredients:\n1 cup flour\n2 eggs",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(middleware.AnonymousIDHeader))

	body := decode[models.RecipeImportResponse](t, resp)
	assert.True(t, body.Success)
	assert.Equal(t, 2, body.Count)
	assert.Equal(t, []string{"flour", "eggs"}, ingredientNames(body))
	assert.Equal(t, services.SourceText, body.Source)
}

func TestParseRecipe_BadRequests(t *testing.T) {
	app := newTestApp(t, testDeps{})

	tests := []struct {
		name string
		body any
	}{
		{"empty text", models.RecipeTextImportRequest{Text: ""}},
		{"whitespace text", models.RecipeTextImportRequest{Text: " \n\t "}},
		{"malformed json", `{"text":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postJSON(t, app, "/api/recipes/parse", tt.body)
			assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

			body := decode[APIResponse](t, resp)
			assert.False(t, body.Success)
			assert.NotEmpty(t, body.Error)
		})
	}
}

func TestParseRecipe_NoIngredientsIsNotAnError(t *testing.T) {
	app := newTestApp(t, testDeps{})

	resp := postJSON(t, app, "/api/recipes/parse", models.RecipeTextImportRequest{Text: "Instructions:\n"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decode[models.RecipeImportResponse](t, resp)
	assert.True(t, body.Success)
	assert.Equal(t, 0, body.Count)
	assert.Empty(t, body.Ingredients)
}

func TestImportRecipeURL(t *testing.T) {
	pages := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/soup":
			w.Header().Set("Content-Type", "text/html")
			io.WriteString(w, `<html><head><title>Soup</title>
<script type="application/ld+json">{"@context":"https://schema.org","@type":"Recipe","name":"Soup",
"recipeIngredient":["2 tablespoons olive oil","1 medium onion, chopped"]}</script>
</head><body><p>Soup.</p></body></html>`)
		case "/essay":
			w.Header().Set("Content-Type", "text/html")
			io.WriteString(w, `<html><head><title>Thoughts</title></head><body><p>Just words.</p></body></html>`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer pages.Close()

	app := newTestApp(t, testDeps{})

	t.Run("json-ld page", func(t *testing.T) {
		resp := postJSON(t, app, "/api/recipes/import-url", models.RecipeURLImportRequest{URL: pages.URL + "/soup"})
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		body := decode[models.RecipeImportResponse](t, resp)
		assert.Equal(t, []string{"olive oil", "onion"}, ingredientNames(body))
		assert.Equal(t, services.SourceJSONLD, body.Source)
	})

	tests := []struct {
		name   string
		url    string
		status int
	}{
		{"invalid url", "ftp://example.com/recipe", fiber.StatusBadRequest},
		{"missing url", "", fiber.StatusBadRequest},
		{"upstream 404", pages.URL + "/missing", fiber.StatusBadGateway},
		{"no ingredient list", pages.URL + "/essay", fiber.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postJSON(t, app, "/api/recipes/import-url", models.RecipeURLImportRequest{URL: tt.url})
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func multipartImage(t *testing.T, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="image"; filename="card.png"`)
	header.Set("Content-Type", contentType)
	part, err := w.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	return &buf, w.FormDataContentType()
}

func postImage(t *testing.T, app *fiber.App, contentType string) *http.Response {
	t.Helper()
	body, formType := multipartImage(t, contentType, []byte("fake image bytes"))
	req := httptest.NewRequest("POST", "/api/recipes/import-image", body)
	req.Header.Set("Content-Type", formType)
	resp, err := app.Test(req, 5000)
	require.NoError(t, err)
	return resp
}

func TestImportRecipeImage(t *testing.T) {
	photos := &fakePhotos{}
	app := newTestApp(t, testDeps{
		ocr:    &fakeOCR{text: "INGREDIENTS\n2 cups flour\n1 tsp salt"},
		photos: photos,
	})

	resp := postImage(t, app, "image/png")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decode[models.RecipeImportResponse](t, resp)
	assert.Equal(t, []string{"flour", "salt"}, ingredientNames(body))
	assert.Equal(t, services.SourceImage, body.Source)
	require.Len(t, photos.saved, 1)
	assert.Equal(t, photos.saved[0], body.ImageKey)
	assert.Equal(t, "https://photos.test/"+photos.saved[0]+"?expires=1h0m0s", body.ImageURL)
}

func TestImportRecipeImage_Failures(t *testing.T) {
	t.Run("unsupported type", func(t *testing.T) {
		app := newTestApp(t, testDeps{ocr: &fakeOCR{text: "2 cups flour"}})
		resp := postImage(t, app, "image/gif")
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("storage failure does not block import", func(t *testing.T) {
		app := newTestApp(t, testDeps{
			ocr:    &fakeOCR{text: "2 cups flour"},
			photos: &fakePhotos{err: errors.New("bucket gone")},
		})
		resp := postImage(t, app, "image/jpeg")
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		body := decode[models.RecipeImportResponse](t, resp)
		assert.Empty(t, body.ImageKey)
		assert.Empty(t, body.ImageURL)
		assert.Equal(t, 1, body.Count)
	})

	t.Run("presign failure keeps the key", func(t *testing.T) {
		photos := &fakePhotos{urlErr: errors.New("clock skew")}
		app := newTestApp(t, testDeps{
			ocr:    &fakeOCR{text: "2 cups flour"},
			photos: photos,
		})
		resp := postImage(t, app, "image/png")
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		body := decode[models.RecipeImportResponse](t, resp)
		require.Len(t, photos.saved, 1)
		assert.Equal(t, photos.saved[0], body.ImageKey)
		assert.Empty(t, body.ImageURL)
	})

	t.Run("ocr failure", func(t *testing.T) {
		app := newTestApp(t, testDeps{ocr: &fakeOCR{err: errors.New("tesseract crashed")}})
		resp := postImage(t, app, "image/png")
		assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	})

	t.Run("nothing readable", func(t *testing.T) {
		app := newTestApp(t, testDeps{ocr: &fakeOCR{text: "   "}})
		resp := postImage(t, app, "image/png")
		assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	})

	t.Run("unavailable without ocr", func(t *testing.T) {
		app := newTestApp(t, testDeps{})
		resp := postImage(t, app, "image/png")
		assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
	})
}

func TestMatchIngredients(t *testing.T) {
	searcher := &catalogSearcher{catalog: map[string][]models.Product{
		"flour": {{Name: "King Arthur Flour", Price: "$5.49"}, {Name: "Store Brand Flour", Price: "$2.99"}},
	}}
	app := newTestApp(t, testDeps{searcher: searcher})

	resp := postJSON(t, app, "/api/recipes/match-ingredients", models.MatchIngredientsRequest{
		Ingredients: []string{"Flour", "unobtainium", "  "},
		MaxResults:  1,
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decode[models.MatchIngredientsResponse](t, resp)
	require.Len(t, body.Matches, 2)
	assert.Equal(t, "Flour", body.Matches[0].Ingredient)
	assert.True(t, body.Matches[0].IsMatched)
	assert.Len(t, body.Matches[0].Products, 1)
	assert.False(t, body.Matches[1].IsMatched)
	assert.Equal(t, 1, body.MatchedCount)
	assert.Equal(t, 1, body.UnmatchedCount)

	for _, store := range searcher.stores {
		assert.Equal(t, testStore, store)
	}
}

func TestMatchIngredients_Validation(t *testing.T) {
	app := newTestApp(t, testDeps{})

	resp := postJSON(t, app, "/api/recipes/match-ingredients", models.MatchIngredientsRequest{})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	tooMany := make([]string, maxMatchIngredients+1)
	for i := range tooMany {
		tooMany[i] = fmt.Sprintf("item %d", i)
	}
	resp = postJSON(t, app, "/api/recipes/match-ingredients", models.MatchIngredientsRequest{Ingredients: tooMany})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestSearchProducts_CachesResults(t *testing.T) {
	searcher := &catalogSearcher{catalog: map[string][]models.Product{
		"milk": {{Name: "Whole Milk", Price: "$3.29", Image: "https://img.example/milk.jpg"}},
	}}
	app := newTestApp(t, testDeps{searcher: searcher})

	first := decode[models.SearchResponse](t, postJSON(t, app, "/api/search", models.SearchRequest{SearchTerm: "milk"}))
	second := decode[models.SearchResponse](t, postJSON(t, app, "/api/search", models.SearchRequest{SearchTerm: "milk"}))

	assert.False(t, first.FromCache)
	assert.True(t, second.FromCache)
	assert.Equal(t, first.Products, second.Products)
	assert.Equal(t, 1, searcher.calls)
}

func TestSearchProducts_Errors(t *testing.T) {
	app := newTestApp(t, testDeps{searcher: &catalogSearcher{err: services.ErrSearchFailed}})

	resp := postJSON(t, app, "/api/search", models.SearchRequest{SearchTerm: ""})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = postJSON(t, app, "/api/search", models.SearchRequest{SearchTerm: "milk"})
	assert.Equal(t, fiber.StatusBadGateway, resp.StatusCode)
}

func TestFetchImages(t *testing.T) {
	searcher := &catalogSearcher{catalog: map[string][]models.Product{
		"Whole Milk": {{Name: "Whole Milk", Image: "https://img.example/milk.jpg"}},
	}}
	app := newTestApp(t, testDeps{searcher: searcher})

	resp := postJSON(t, app, "/api/images/fetch", models.FetchImagesRequest{ProductNames: []string{"Whole Milk", "Mystery Box"}})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decode[struct {
		Results []struct {
			ProductName string `json:"product_name"`
			ImageURL    string `json:"image_url"`
			Success     bool   `json:"success"`
		} `json:"results"`
		SuccessCount int `json:"success_count"`
		TotalCount   int `json:"total_count"`
	}](t, resp)

	require.Len(t, body.Results, 2)
	assert.Equal(t, "https://img.example/milk.jpg", body.Results[0].ImageURL)
	assert.True(t, body.Results[0].Success)
	assert.False(t, body.Results[1].Success)
	assert.Equal(t, 1, body.SuccessCount)
	assert.Equal(t, 2, body.TotalCount)

	tooMany := make([]string, maxImageFetch+1)
	resp = postJSON(t, app, "/api/images/fetch", models.FetchImagesRequest{ProductNames: tooMany})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestHealth_WithoutDatabase(t *testing.T) {
	app := newTestApp(t, testDeps{})

	resp, err := app.Test(httptest.NewRequest("GET", "/health", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decode[map[string]string](t, resp)
	assert.Equal(t, "degraded", body["status"])
	assert.Equal(t, "grocery-assistant", body["service"])
}

func TestErrorHandler(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Get("/teapot", func(c *fiber.Ctx) error { return fiber.NewError(fiber.StatusTeapot, "short and stout") })
	app.Get("/boom", func(c *fiber.Ctx) error { return errors.New("secret detail") })

	resp, err := app.Test(httptest.NewRequest("GET", "/teapot", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTeapot, resp.StatusCode)
	assert.Equal(t, APIResponse{Success: false, Error: "short and stout"}, decode[APIResponse](t, resp))

	resp, err = app.Test(httptest.NewRequest("GET", "/boom", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "Internal Server Error", decode[APIResponse](t, resp).Error)
}
