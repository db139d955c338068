package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"quiz-match/internal/config"
	"quiz-match/internal/domain"

	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(config.CatalogConfig{BaseURL: srv.URL + "/", AccessToken: "tok", Timeout: time.Second}, nil)
}

func TestClient_SearchProducts(t *testing.T) {
	var got searchRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/products/search", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"products":[
			{"id":"p1","variantId":"v1","title":"Runner","handle":"runner","status":"ACTIVE","availableForSale":true,
			 "price":{"amount":"79.50","currencyCode":"USD"},"imageUrl":"https://cdn/x.jpg","images":["https://cdn/x.jpg"],"url":"https://shop/p/runner"},
			{"id":"p2","status":"DRAFT","price":{"amount":12,"currencyCode":"USD"}}
		]}`))
	})

	lo := 50.0
	products, err := client.SearchProducts(context.Background(), domain.CatalogQuery{Tags: []string{"casual"}, MinPrice: &lo, Limit: 6})

	require.NoError(t, err)
	assert.Equal(t, "tag:'casual' AND variants.price:>=50 AND status:active AND available_for_sale:true", got.Query)
	assert.Equal(t, 6, got.First)
	require.Len(t, products, 2)
	assert.Equal(t, domain.Money{Amount: 79.5, Currency: "USD"}, products[0].Price)
	assert.True(t, products[0].Sellable())
	assert.Equal(t, float64(12), products[1].Price.Amount)
	assert.False(t, products[1].Sellable())
}

func TestClient_ProductsByIDs(t *testing.T) {
	var got searchRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"products":[]}`))
	})

	products, err := client.ProductsByIDs(context.Background(), []string{"p1", "p2"})
	require.NoError(t, err)
	assert.Empty(t, products)
	assert.Equal(t, []string{"p1", "p2"}, got.IDs)
	assert.Equal(t, 2, got.First)

	// No ids: no request.
	products, err = client.ProductsByIDs(context.Background(), nil)
	assert.NoError(t, err)
	assert.Nil(t, products)
}

func TestClient_UpstreamErrorOpensBreaker(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "boom", http.StatusBadGateway)
	})

	for i := 0; i < breakerThreshold; i++ {
		_, err := client.AnyProducts(context.Background(), 6)
		assert.ErrorContains(t, err, "status 502")
	}

	_, err := client.AnyProducts(context.Background(), 6)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, int32(breakerThreshold), atomic.LoadInt32(&calls))
}

func TestClient_ContextTimeout(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := client.AnyProducts(ctx, 6)
	assert.Error(t, err)
}

func TestClient_AnyProductsSendsSellablePredicate(t *testing.T) {
	var got searchRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"products":[]}`))
	})

	_, err := client.AnyProducts(context.Background(), 24)
	require.NoError(t, err)
	assert.Equal(t, "status:active AND available_for_sale:true", got.Query)
	assert.Equal(t, 24, got.First)
	assert.Empty(t, got.IDs)
}

func TestBuildSearchQuery(t *testing.T) {
	lo, hi := 50.0, 149.99
	tests := []struct {
		name string
		q    domain.CatalogQuery
		want string
	}{
		{"empty", domain.CatalogQuery{}, sellablePredicate},
		{"single tag", domain.CatalogQuery{Tags: []string{"casual"}}, "tag:'casual' AND " + sellablePredicate},
		{
			"tags and types with price",
			domain.CatalogQuery{Tags: []string{"casual", "summer"}, Types: []string{"Sneakers"}, MinPrice: &lo, MaxPrice: &hi},
			"(tag:'casual' OR tag:'summer' OR product_type:'Sneakers') AND variants.price:>=50 AND variants.price:<=149.99 AND " + sellablePredicate,
		},
		{"quote escaping", domain.CatalogQuery{Tags: []string{"men's"}}, `tag:'men\'s' AND ` + sellablePredicate},
		{"price only", domain.CatalogQuery{MaxPrice: &hi}, "variants.price:<=149.99 AND " + sellablePredicate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BuildSearchQuery(tt.q))
		})
	}
}
