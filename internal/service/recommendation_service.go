package service

import (
	"context"
	"time"

	"quiz-match/internal/domain"
	"quiz-match/internal/logger"
	"quiz-match/internal/metrics"

	"go.uber.org/zap"
)

// candidatePoolSize over-fetches so local filtering can still fill the cap.
const candidatePoolSize = domain.MaxRecommendations * 4

// RecommendationService turns match criteria into at most MaxRecommendations products.
type RecommendationService interface {
	// Resolve never fails: catalog errors degrade to the next tier and finally to an empty list.
	Resolve(ctx context.Context, criteria domain.MatchCriteria) []domain.RecommendedProduct
}

type recommendationService struct {
	catalog domain.CatalogService
	timeout time.Duration
}

// NewRecommendationService bounds every catalog call by timeout; zero means no extra bound.
func NewRecommendationService(catalog domain.CatalogService, timeout time.Duration) RecommendationService {
	return &recommendationService{catalog: catalog, timeout: timeout}
}

func (s *recommendationService) Resolve(ctx context.Context, criteria domain.MatchCriteria) []domain.RecommendedProduct {
	if len(criteria.ExactProductIDs) > 0 {
		products := s.query(ctx, metrics.TierExact, func(ctx context.Context) ([]domain.CatalogProduct, error) {
			return s.catalog.ProductsByIDs(ctx, criteria.ExactProductIDs)
		})
		if recs := pick(orderByIDs(products, criteria.ExactProductIDs), nil); len(recs) > 0 {
			return served(metrics.TierExact, recs)
		}
	} else if len(criteria.Tags) > 0 || len(criteria.Types) > 0 {
		query := domain.CatalogQuery{
			Tags:     criteria.Tags,
			Types:    criteria.Types,
			MinPrice: criteria.MinPrice,
			MaxPrice: criteria.MaxPrice,
			Limit:    candidatePoolSize,
		}
		products := s.query(ctx, metrics.TierTagType, func(ctx context.Context) ([]domain.CatalogProduct, error) {
			return s.catalog.SearchProducts(ctx, query)
		})
		// The catalog's price filter is advisory, so bounds are rechecked here.
		if recs := pick(products, &criteria); len(recs) > 0 {
			return served(metrics.TierTagType, recs)
		}
	}

	if criteria.HasPriceBounds() {
		query := domain.CatalogQuery{MinPrice: criteria.MinPrice, MaxPrice: criteria.MaxPrice, Limit: candidatePoolSize}
		products := s.query(ctx, metrics.TierPriceBand, func(ctx context.Context) ([]domain.CatalogProduct, error) {
			return s.catalog.SearchProducts(ctx, query)
		})
		if recs := pick(products, &criteria); len(recs) > 0 {
			return served(metrics.TierPriceBand, recs)
		}
	}

	products := s.query(ctx, metrics.TierFallback, func(ctx context.Context) ([]domain.CatalogProduct, error) {
		return s.catalog.AnyProducts(ctx, candidatePoolSize)
	})
	if recs := pick(products, nil); len(recs) > 0 {
		return served(metrics.TierFallback, recs)
	}
	return served(metrics.TierEmpty, []domain.RecommendedProduct{})
}

func (s *recommendationService) query(ctx context.Context, tier string,
	fn func(ctx context.Context) ([]domain.CatalogProduct, error)) []domain.CatalogProduct {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	products, err := fn(ctx)
	if err != nil {
		metrics.RecordCatalogFailure(tier)
		logger.Get().Warn("RecommendationService: catalog query failed, degrading",
			zap.String("tier", tier), zap.Error(domain.NewUpstreamCatalogError(tier, err)))
		return nil
	}
	return products
}

func served(tier string, recs []domain.RecommendedProduct) []domain.RecommendedProduct {
	metrics.RecordRecommendationTier(tier)
	return recs
}

// pick keeps sellable, in-budget, distinct products up to the cap. bounds may be nil.
func pick(products []domain.CatalogProduct, bounds *domain.MatchCriteria) []domain.RecommendedProduct {
	recs := make([]domain.RecommendedProduct, 0, domain.MaxRecommendations)
	seen := make(map[string]struct{}, len(products))
	for _, p := range products {
		if len(recs) == domain.MaxRecommendations {
			break
		}
		if !p.Sellable() {
			continue
		}
		if bounds != nil && !bounds.PriceWithin(p.Price.Amount) {
			continue
		}
		if _, dup := seen[p.ID]; dup {
			continue
		}
		seen[p.ID] = struct{}{}
		recs = append(recs, p.ToRecommendation())
	}
	return recs
}

// orderByIDs returns products in the order the merchant listed them; unlisted ones are dropped.
func orderByIDs(products []domain.CatalogProduct, ids []string) []domain.CatalogProduct {
	byID := make(map[string]domain.CatalogProduct, len(products))
	for _, p := range products {
		if _, ok := byID[p.ID]; !ok {
			byID[p.ID] = p
		}
	}
	ordered := make([]domain.CatalogProduct, 0, len(products))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			ordered = append(ordered, p)
		}
	}
	return ordered
}
