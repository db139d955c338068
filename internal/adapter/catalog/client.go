// Package catalog is the HTTP client for the storefront product search service.
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"quiz-match/internal/config"
	"quiz-match/internal/domain"
	"quiz-match/internal/logger"
	"quiz-match/internal/metrics"

	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

const (
	searchPath       = "/products/search"
	breakerName      = "catalog"
	breakerThreshold = 5
)

// Client calls POST {base}/products/search through a circuit breaker.
type Client struct {
	baseURL     string
	accessToken string
	httpClient  *http.Client
	breaker     *gobreaker.CircuitBreaker[[]domain.CatalogProduct]
}

func NewClient(cfg config.CatalogConfig, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	settings := gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Get().Warn("Circuit breaker state changed",
				zap.String("name", name), zap.String("from", from.String()), zap.String("to", to.String()))
			metrics.SetCircuitBreakerState(name, int(to))
		},
	}

	return &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		accessToken: cfg.AccessToken,
		httpClient:  httpClient,
		breaker:     gobreaker.NewCircuitBreaker[[]domain.CatalogProduct](settings),
	}
}

type searchRequest struct {
	Query string   `json:"query,omitempty"`
	IDs   []string `json:"ids,omitempty"`
	First int      `json:"first"`
}

type searchResponse struct {
	Products []productPayload `json:"products"`
}

type productPayload struct {
	ID               string   `json:"id"`
	VariantID        string   `json:"variantId"`
	Title            string   `json:"title"`
	Handle           string   `json:"handle"`
	ProductType      string   `json:"productType"`
	Tags             []string `json:"tags"`
	Status           string   `json:"status"`
	AvailableForSale bool     `json:"availableForSale"`
	Price            struct {
		Amount   amount `json:"amount"`
		Currency string `json:"currencyCode"`
	} `json:"price"`
	ImageURL string   `json:"imageUrl"`
	Images   []string `json:"images"`
	URL      string   `json:"url"`
}

// amount accepts both 19.99 and "19.99".
type amount float64

func (a *amount) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*a = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid price amount %s: %w", b, err)
	}
	*a = amount(v)
	return nil
}

func (c *Client) ProductsByIDs(ctx context.Context, ids []string) ([]domain.CatalogProduct, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return c.search(ctx, searchRequest{IDs: ids, First: len(ids)})
}

func (c *Client) SearchProducts(ctx context.Context, query domain.CatalogQuery) ([]domain.CatalogProduct, error) {
	return c.search(ctx, searchRequest{Query: BuildSearchQuery(query), First: limitOrDefault(query.Limit)})
}

func (c *Client) AnyProducts(ctx context.Context, limit int) ([]domain.CatalogProduct, error) {
	return c.search(ctx, searchRequest{Query: BuildSearchQuery(domain.CatalogQuery{}), First: limitOrDefault(limit)})
}

func (c *Client) search(ctx context.Context, req searchRequest) ([]domain.CatalogProduct, error) {
	return c.breaker.Execute(func() ([]domain.CatalogProduct, error) {
		return c.do(ctx, req)
	})
}

func (c *Client) do(ctx context.Context, req searchRequest) ([]domain.CatalogProduct, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode catalog request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+searchPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build catalog request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if c.accessToken != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.accessToken)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("catalog request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("catalog returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var decoded searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode catalog response: %w", err)
	}

	products := make([]domain.CatalogProduct, 0, len(decoded.Products))
	for _, p := range decoded.Products {
		products = append(products, domain.CatalogProduct{
			ID:               p.ID,
			VariantID:        p.VariantID,
			Title:            p.Title,
			Handle:           p.Handle,
			ProductType:      p.ProductType,
			Tags:             p.Tags,
			Status:           p.Status,
			AvailableForSale: p.AvailableForSale,
			Price:            domain.Money{Amount: float64(p.Price.Amount), Currency: p.Price.Currency},
			ImageURL:         p.ImageURL,
			Images:           p.Images,
			URL:              p.URL,
		})
	}
	return products, nil
}

func limitOrDefault(limit int) int {
	if limit <= 0 {
		return domain.MaxRecommendations
	}
	return limit
}
