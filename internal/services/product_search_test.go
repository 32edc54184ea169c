package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestSearcher(url string) *AlgoliaSearcher {
	return NewAlgoliaSearcher(AlgoliaConfig{
		BaseURL: url,
		AppID:   "APP",
		APIKey:  "test-key",
		Index:   "products",
	}, zap.NewNop())
}

func TestAlgoliaSearcher_SearchProducts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/1/indexes/*/queries", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "test-key", r.Header.Get("x-algolia-api-key"))
		assert.Equal(t, "APP", r.Header.Get("x-algolia-application-id"))

		var body struct {
			Requests []algoliaQuery `json:"requests"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Len(t, body.Requests, 1)
		assert.Equal(t, "products", body.Requests[0].IndexName)
		assert.Equal(t, "milk", body.Requests[0].Query)
		assert.Equal(t, 5, body.Requests[0].HitsPerPage)
		assert.Equal(t, "storeNumber:86 AND fulfilmentType:instore", body.Requests[0].Filters)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results":[{"hits":[
			{"productName":"Whole Milk","price_inStore":{"amount":3.5,"unitPrice":"$0.03/fl oz"},
			 "planogram":{"aisle":"12"},"images":["https://img/milk.jpg"],"isSoldByWeight":false},
			{"productName":"","price_inStore":{"amount":1}},
			{"productName":"Bananas","price_inStore":{"amount":0.25},"categories":["Produce"],
			 "isSoldByWeight":true,"onlineSellByUnit":"Lb","onlineApproxUnitWeight":0.4},
			{"productName":"Mystery","categories":[{"id":1}]}
		]}]}`))
	}))
	defer server.Close()

	products, err := newTestSearcher(server.URL).SearchProducts(context.Background(), "  milk ", 5, 86)
	require.NoError(t, err)
	require.Len(t, products, 3)

	milk := products[0]
	assert.Equal(t, "Whole Milk", milk.Name)
	assert.Equal(t, "$3.50", milk.Price)
	assert.Equal(t, "12", milk.Aisle)
	assert.Equal(t, "https://img/milk.jpg", milk.Image)
	require.NotNil(t, milk.UnitPrice)
	assert.Equal(t, "$0.03/fl oz", *milk.UnitPrice)
	assert.Equal(t, "Each", milk.SellByUnit)
	assert.Equal(t, 1.0, milk.ApproxWeight)
	assert.Equal(t, "milk", milk.SearchTerm)

	bananas := products[1]
	assert.Equal(t, "$0.25", bananas.Price)
	assert.Equal(t, "Produce", bananas.Aisle)
	assert.True(t, bananas.IsSoldByWeight)
	assert.Equal(t, "Lb", bananas.SellByUnit)
	assert.Equal(t, 0.4, bananas.ApproxWeight)
	assert.Nil(t, bananas.UnitPrice)

	mystery := products[2]
	assert.Equal(t, "$0.00", mystery.Price)
	assert.Equal(t, "Unknown", mystery.Aisle)
}

func TestAlgoliaSearcher_EmptyQuery(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	products, err := newTestSearcher(server.URL).SearchProducts(context.Background(), "   ", 5, 86)
	require.NoError(t, err)
	assert.Empty(t, products)
	assert.False(t, called)
}

func TestAlgoliaSearcher_NoResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results":[]}`))
	}))
	defer server.Close()

	products, err := newTestSearcher(server.URL).SearchProducts(context.Background(), "unobtainium", 5, 86)
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestAlgoliaSearcher_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"message":"Invalid API key"}`))
	}))
	defer server.Close()

	_, err := newTestSearcher(server.URL).SearchProducts(context.Background(), "milk", 5, 86)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSearchFailed)
}

func TestAlgoliaSearcher_CancelledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results":[]}`))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestSearcher(server.URL).SearchProducts(ctx, "milk", 5, 86)
	assert.Error(t, err)
}
