package service

import (
	"context"
	"fmt"
	"time"

	"quiz-match/internal/domain"
	"quiz-match/internal/logger"
	"quiz-match/internal/metrics"
	"quiz-match/internal/util"

	"go.uber.org/zap"
)

// UsageService enforces per-shop monthly completion limits.
type UsageService interface {
	// CheckAndAdvance lazily creates the counter and rolls an ended period over before checking.
	CheckAndAdvance(ctx context.Context, shopID string) (*domain.UsageCheck, error)
	// IncrementCompletion is best effort. The returned error has already been logged.
	IncrementCompletion(ctx context.Context, shopID string) error
	Status(ctx context.Context, shopID string) (*domain.UsageCheck, error)
}

type usageService struct {
	repo domain.UsageRepository
	now  func() time.Time
}

func NewUsageService(repo domain.UsageRepository) UsageService {
	return &usageService{repo: repo, now: time.Now}
}

func (s *usageService) Status(ctx context.Context, shopID string) (*domain.UsageCheck, error) {
	return s.CheckAndAdvance(ctx, shopID)
}

func (s *usageService) CheckAndAdvance(ctx context.Context, shopID string) (*domain.UsageCheck, error) {
	// Same precision as stored timestamps, so the in-memory and SQL comparisons agree.
	now := util.DBTime(s.now())

	counter, err := s.repo.GetByShopID(ctx, shopID)
	if err != nil {
		return nil, domain.NewPersistenceError("Failed to read usage counter", err)
	}
	if counter == nil {
		if counter, err = s.create(ctx, shopID, now); err != nil {
			return nil, err
		}
	}

	if counter.PeriodExpired(now) {
		newEnd := util.AddMonthClamped(now, 1)
		applied, err := s.repo.ResetPeriod(ctx, shopID, now, newEnd)
		if err != nil {
			return nil, domain.NewPersistenceError("Failed to roll over usage period", err)
		}
		if applied {
			counter.CurrentPeriodCompletions = 0
			counter.CurrentPeriodStart = now
			counter.CurrentPeriodEnd = newEnd
		} else {
			// Another request rolled the period over first.
			if counter, err = s.reread(ctx, shopID); err != nil {
				return nil, err
			}
		}
	}

	return evaluate(counter), nil
}

func (s *usageService) IncrementCompletion(ctx context.Context, shopID string) error {
	if err := s.repo.IncrementCompletions(ctx, shopID); err != nil {
		metrics.RecordSideEffectFailure("usage")
		sideErr := domain.NewSideEffectError("usage", err)
		logger.Get().Error("UsageService: failed to increment completions",
			zap.String("shop_id", shopID), zap.Error(sideErr))
		return sideErr
	}
	return nil
}

func (s *usageService) create(ctx context.Context, shopID string, now time.Time) (*domain.UsageCounter, error) {
	counter := &domain.UsageCounter{
		ShopID:             shopID,
		Tier:               domain.TierFree,
		CurrentPeriodStart: now,
		CurrentPeriodEnd:   util.AddMonthClamped(now, 1),
		Status:             domain.SubscriptionActive,
	}
	if err := s.repo.Create(ctx, counter); err != nil {
		// Lost the insert race to a concurrent first submission.
		existing, rerr := s.repo.GetByShopID(ctx, shopID)
		if rerr != nil || existing == nil {
			return nil, domain.NewPersistenceError("Failed to create usage counter", err)
		}
		return existing, nil
	}
	logger.Get().Info("UsageService: created usage counter",
		zap.String("shop_id", shopID), zap.Time("period_end", counter.CurrentPeriodEnd))
	return counter, nil
}

func (s *usageService) reread(ctx context.Context, shopID string) (*domain.UsageCounter, error) {
	counter, err := s.repo.GetByShopID(ctx, shopID)
	if err != nil {
		return nil, domain.NewPersistenceError("Failed to read usage counter", err)
	}
	if counter == nil {
		return nil, domain.NewPersistenceError("Usage counter disappeared during rollover", nil)
	}
	return counter, nil
}

func evaluate(counter *domain.UsageCounter) *domain.UsageCheck {
	limit := counter.Tier.MonthlyLimit()
	check := &domain.UsageCheck{
		Allowed:      true,
		CurrentUsage: counter.CurrentPeriodCompletions,
		Limit:        limit,
		Tier:         counter.Tier,
		PeriodEnd:    counter.CurrentPeriodEnd,
	}
	switch {
	case counter.Status != domain.SubscriptionActive:
		check.Allowed = false
		check.Reason = fmt.Sprintf("Subscription is %s", counter.Status)
	case limit != domain.UnlimitedCompletions && counter.CurrentPeriodCompletions >= limit:
		check.Allowed = false
		check.Reason = fmt.Sprintf("Monthly completion limit reached (%d/%d) for the %s plan",
			counter.CurrentPeriodCompletions, limit, counter.Tier)
	}
	return check
}
