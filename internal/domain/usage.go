package domain

import (
	"context"
	"time"
)

// Tier is a named subscription level.
type Tier string

const (
	TierFree       Tier = "free"
	TierStarter    Tier = "starter"
	TierGrowth     Tier = "growth"
	TierEnterprise Tier = "enterprise"
)

// UnlimitedCompletions is the limit sentinel for tiers without a monthly cap.
const UnlimitedCompletions = -1

var tierLimits = map[Tier]int{
	TierFree:       100,
	TierStarter:    1000,
	TierGrowth:     5000,
	TierEnterprise: UnlimitedCompletions,
}

// MonthlyLimit returns the completion cap for the tier. Unknown tiers get the free cap.
func (t Tier) MonthlyLimit() int {
	if limit, ok := tierLimits[t]; ok {
		return limit
	}
	return tierLimits[TierFree]
}

// Subscription statuses as mirrored from billing.
const (
	SubscriptionActive    = "active"
	SubscriptionCancelled = "cancelled"
	SubscriptionPastDue   = "past_due"
)

// UsageCounter tracks billed completions of one shop in its current period.
type UsageCounter struct {
	ShopID                   string
	Tier                     Tier
	CurrentPeriodStart       time.Time
	CurrentPeriodEnd         time.Time
	CurrentPeriodCompletions int
	Status                   string
	CreatedAt                time.Time
	UpdatedAt                time.Time
}

// PeriodExpired reports whether now is past the period end.
func (u *UsageCounter) PeriodExpired(now time.Time) bool {
	return now.After(u.CurrentPeriodEnd)
}

// UsageCheck is the outcome of a limit check.
type UsageCheck struct {
	Allowed      bool      `json:"allowed"`
	Reason       string    `json:"reason,omitempty"`
	CurrentUsage int       `json:"currentUsage"`
	Limit        int       `json:"limit"`
	Tier         Tier      `json:"tier"`
	PeriodEnd    time.Time `json:"periodEnd"`
}

// UsageRepository persists usage counters.
type UsageRepository interface {
	// GetByShopID returns nil, nil when the shop has no counter yet.
	GetByShopID(ctx context.Context, shopID string) (*UsageCounter, error)
	// Create inserts a fresh counter. It fails if one already exists for the shop.
	Create(ctx context.Context, counter *UsageCounter) error
	// ResetPeriod zeroes completions and moves the period only if the stored period ended
	// before now. It reports whether this call performed the reset.
	ResetPeriod(ctx context.Context, shopID string, now, newEnd time.Time) (bool, error)
	// IncrementCompletions adds one completion atomically.
	IncrementCompletions(ctx context.Context, shopID string) error
}
