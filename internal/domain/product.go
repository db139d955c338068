package domain

import (
	"context"
	"strings"
)

// MaxRecommendations caps every resolution tier.
const MaxRecommendations = 6

// MatchCriteria is the catalog intent accumulated from one set of answers.
type MatchCriteria struct {
	Tags            []string
	Types           []string
	ExactProductIDs []string
	MinPrice        *float64
	MaxPrice        *float64
}

// HasPriceBounds reports whether at least one price bound was set.
func (c MatchCriteria) HasPriceBounds() bool {
	return c.MinPrice != nil || c.MaxPrice != nil
}

// PriceWithin checks amount against the bounds (inclusive).
func (c MatchCriteria) PriceWithin(amount float64) bool {
	if c.MinPrice != nil && amount < *c.MinPrice {
		return false
	}
	if c.MaxPrice != nil && amount > *c.MaxPrice {
		return false
	}
	return true
}

// Money is an amount in a currency, as reported by the catalog.
type Money struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// CatalogProduct is a candidate item returned by the catalog service.
type CatalogProduct struct {
	ID               string
	VariantID        string
	Title            string
	Handle           string
	ProductType      string
	Tags             []string
	Status           string
	AvailableForSale bool
	Price            Money
	ImageURL         string
	Images           []string
	URL              string
}

// Sellable reports whether the item is currently eligible for purchase.
func (p CatalogProduct) Sellable() bool {
	return strings.EqualFold(p.Status, "active") && p.AvailableForSale
}

// RecommendedProduct is what the shopper receives and what is serialized into the result.
type RecommendedProduct struct {
	ID        string   `json:"id"`
	VariantID string   `json:"variantId"`
	Title     string   `json:"title"`
	Handle    string   `json:"handle"`
	Price     Money    `json:"price"`
	ImageURL  string   `json:"imageUrl"`
	Images    []string `json:"images"`
	URL       string   `json:"url"`
}

// ToRecommendation projects a catalog item to its public shape.
func (p CatalogProduct) ToRecommendation() RecommendedProduct {
	images := p.Images
	if images == nil {
		images = []string{}
	}
	return RecommendedProduct{
		ID:        p.ID,
		VariantID: p.VariantID,
		Title:     p.Title,
		Handle:    p.Handle,
		Price:     p.Price,
		ImageURL:  p.ImageURL,
		Images:    images,
		URL:       p.URL,
	}
}

// CatalogQuery is the tag/type tier query. Tags and Types are OR'ed; the price clamp is AND'ed.
// The catalog treats price bounds as a pre-filter only.
type CatalogQuery struct {
	Tags     []string
	Types    []string
	MinPrice *float64
	MaxPrice *float64
	Limit    int
}

// CatalogService is the external product search backend.
type CatalogService interface {
	ProductsByIDs(ctx context.Context, ids []string) ([]CatalogProduct, error)
	SearchProducts(ctx context.Context, query CatalogQuery) ([]CatalogProduct, error)
	AnyProducts(ctx context.Context, limit int) ([]CatalogProduct, error)
}
