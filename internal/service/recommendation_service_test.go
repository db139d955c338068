package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"quiz-match/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func product(id string, price float64) domain.CatalogProduct {
	return domain.CatalogProduct{
		ID:               id,
		VariantID:        id + "-v1",
		Title:            "Product " + id,
		Handle:           id,
		Status:           "ACTIVE",
		AvailableForSale: true,
		Price:            domain.Money{Amount: price, Currency: "USD"},
		URL:              "https://shop.example/products/" + id,
	}
}

func products(n int, price float64) []domain.CatalogProduct {
	out := make([]domain.CatalogProduct, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, product(fmt.Sprintf("p-%d", i), price))
	}
	return out
}

func ids(recs []domain.RecommendedProduct) []string {
	out := make([]string, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.ID)
	}
	return out
}

func TestResolve_ExactTierSkipsTagSearch(t *testing.T) {
	catalog := new(MockCatalogService)
	draft := product("p-2", 10)
	draft.Status = "DRAFT"
	catalog.On("ProductsByIDs", mock.Anything, []string{"p-1", "p-2", "p-3"}).
		Return([]domain.CatalogProduct{product("p-3", 10), draft, product("p-1", 10)}, nil)

	svc := NewRecommendationService(catalog, time.Second)
	recs := svc.Resolve(context.Background(), domain.MatchCriteria{
		ExactProductIDs: []string{"p-1", "p-2", "p-3"},
		Tags:            []string{"casual"},
	})

	assert.Equal(t, []string{"p-1", "p-3"}, ids(recs))
	catalog.AssertNotCalled(t, "SearchProducts", mock.Anything, mock.Anything)
	catalog.AssertNotCalled(t, "AnyProducts", mock.Anything, mock.Anything)
}

func TestResolve_EmptyExactTierFallsBackWithoutSearch(t *testing.T) {
	catalog := new(MockCatalogService)
	catalog.On("ProductsByIDs", mock.Anything, mock.Anything).Return(nil, errors.New("boom"))
	catalog.On("AnyProducts", mock.Anything, candidatePoolSize).Return(products(2, 10), nil)

	recs := NewRecommendationService(catalog, time.Second).Resolve(context.Background(), domain.MatchCriteria{
		ExactProductIDs: []string{"gone"},
		Tags:            []string{"casual"},
	})

	assert.Equal(t, []string{"p-0", "p-1"}, ids(recs))
	catalog.AssertNotCalled(t, "SearchProducts", mock.Anything, mock.Anything)
}

func TestResolve_TagTierRechecksPrice(t *testing.T) {
	catalog := new(MockCatalogService)
	lo, hi := 50.0, 150.0
	criteria := domain.MatchCriteria{Tags: []string{"casual"}, Types: []string{"Sneakers"}, MinPrice: &lo, MaxPrice: &hi}
	catalog.On("SearchProducts", mock.Anything, domain.CatalogQuery{
		Tags: []string{"casual"}, Types: []string{"Sneakers"}, MinPrice: &lo, MaxPrice: &hi, Limit: candidatePoolSize,
	}).Return([]domain.CatalogProduct{
		product("cheap", 20),
		product("ok", 50),
		product("pricey", 300),
		product("ok", 50),
		product("top", 150),
	}, nil)

	recs := NewRecommendationService(catalog, time.Second).Resolve(context.Background(), criteria)

	assert.Equal(t, []string{"ok", "top"}, ids(recs))
	catalog.AssertNotCalled(t, "AnyProducts", mock.Anything, mock.Anything)
}

func TestResolve_PriceBandBeforeUnconstrainedFallback(t *testing.T) {
	catalog := new(MockCatalogService)
	lo, hi := 50.0, 150.0
	criteria := domain.MatchCriteria{Tags: []string{"casual"}, MinPrice: &lo, MaxPrice: &hi}
	catalog.On("SearchProducts", mock.Anything, domain.CatalogQuery{
		Tags: []string{"casual"}, MinPrice: &lo, MaxPrice: &hi, Limit: candidatePoolSize,
	}).Return([]domain.CatalogProduct{product("casual-pricey", 400)}, nil)
	catalog.On("SearchProducts", mock.Anything, domain.CatalogQuery{
		MinPrice: &lo, MaxPrice: &hi, Limit: candidatePoolSize,
	}).Return([]domain.CatalogProduct{product("out-of-band", 500), product("in-band", 80)}, nil)

	recs := NewRecommendationService(catalog, time.Second).Resolve(context.Background(), criteria)

	assert.Equal(t, []string{"in-band"}, ids(recs))
	catalog.AssertNumberOfCalls(t, "SearchProducts", 2)
	catalog.AssertNotCalled(t, "AnyProducts", mock.Anything, mock.Anything)
}

func TestResolve_PriceOnlyCriteria(t *testing.T) {
	catalog := new(MockCatalogService)
	hi := 30.0
	catalog.On("SearchProducts", mock.Anything, domain.CatalogQuery{MaxPrice: &hi, Limit: candidatePoolSize}).
		Return([]domain.CatalogProduct{product("cheap", 25), product("dear", 90)}, nil)

	recs := NewRecommendationService(catalog, time.Second).Resolve(context.Background(), domain.MatchCriteria{MaxPrice: &hi})

	assert.Equal(t, []string{"cheap"}, ids(recs))
	catalog.AssertNotCalled(t, "AnyProducts", mock.Anything, mock.Anything)
}

func TestResolve_EmptyPriceBandFallsBackToAnything(t *testing.T) {
	catalog := new(MockCatalogService)
	lo := 1000.0
	catalog.On("SearchProducts", mock.Anything, mock.Anything).Return([]domain.CatalogProduct{product("p-x", 20)}, nil)
	catalog.On("AnyProducts", mock.Anything, candidatePoolSize).Return(products(1, 20), nil)

	recs := NewRecommendationService(catalog, time.Second).Resolve(context.Background(), domain.MatchCriteria{MinPrice: &lo})

	assert.Equal(t, []string{"p-0"}, ids(recs))
}

func TestResolve_CapsAtSix(t *testing.T) {
	catalog := new(MockCatalogService)
	catalog.On("SearchProducts", mock.Anything, mock.Anything).Return(products(20, 10), nil)

	recs := NewRecommendationService(catalog, time.Second).Resolve(context.Background(), domain.MatchCriteria{Tags: []string{"x"}})
	assert.Len(t, recs, domain.MaxRecommendations)
}

func TestResolve_NoCriteriaUsesFallback(t *testing.T) {
	catalog := new(MockCatalogService)
	unavailable := product("sold-out", 10)
	unavailable.AvailableForSale = false
	catalog.On("AnyProducts", mock.Anything, candidatePoolSize).
		Return(append([]domain.CatalogProduct{unavailable}, products(8, 10)...), nil)

	recs := NewRecommendationService(catalog, time.Second).Resolve(context.Background(), domain.MatchCriteria{})

	assert.Len(t, recs, domain.MaxRecommendations)
	assert.NotContains(t, ids(recs), "sold-out")
	catalog.AssertNotCalled(t, "ProductsByIDs", mock.Anything, mock.Anything)
	catalog.AssertNotCalled(t, "SearchProducts", mock.Anything, mock.Anything)
}

func TestResolve_AllTiersEmpty(t *testing.T) {
	catalog := new(MockCatalogService)
	catalog.On("SearchProducts", mock.Anything, mock.Anything).Return(nil, errors.New("upstream 502"))
	catalog.On("AnyProducts", mock.Anything, mock.Anything).Return([]domain.CatalogProduct{}, nil)

	recs := NewRecommendationService(catalog, time.Second).Resolve(context.Background(), domain.MatchCriteria{Types: []string{"Hat"}})

	require.NotNil(t, recs)
	assert.Empty(t, recs)
}

func TestResolve_PerCallTimeout(t *testing.T) {
	catalog := new(MockCatalogService)
	catalog.On("SearchProducts", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			<-args.Get(0).(context.Context).Done()
		}).
		Return(nil, context.DeadlineExceeded)
	catalog.On("AnyProducts", mock.Anything, mock.Anything).Return(products(1, 10), nil)

	start := time.Now()
	recs := NewRecommendationService(catalog, 20*time.Millisecond).Resolve(context.Background(), domain.MatchCriteria{Tags: []string{"x"}})

	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, []string{"p-0"}, ids(recs))
}

func TestResolve_ProjectsRecommendationFields(t *testing.T) {
	catalog := new(MockCatalogService)
	p := product("p-1", 42.5)
	p.ImageURL = "https://cdn.example/p-1.jpg"
	catalog.On("AnyProducts", mock.Anything, mock.Anything).Return([]domain.CatalogProduct{p}, nil)

	recs := NewRecommendationService(catalog, 0).Resolve(context.Background(), domain.MatchCriteria{})

	require.Len(t, recs, 1)
	assert.Equal(t, domain.RecommendedProduct{
		ID:        "p-1",
		VariantID: "p-1-v1",
		Title:     "Product p-1",
		Handle:    "p-1",
		Price:     domain.Money{Amount: 42.5, Currency: "USD"},
		ImageURL:  "https://cdn.example/p-1.jpg",
		Images:    []string{},
		URL:       "https://shop.example/products/p-1",
	}, recs[0])
}
