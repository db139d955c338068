package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"quiz-match/internal/domain"
	"quiz-match/internal/repository/models"
	"quiz-match/internal/util"

	"github.com/jmoiron/sqlx"
)

// ErrUsageCounterMissing is returned by IncrementCompletions when the shop has no counter row.
var ErrUsageCounterMissing = errors.New("usage counter not found")

type sqlxUsageRepository struct {
	db  DBTX
	now func() time.Time
}

func NewSQLXUsageRepository(db *sqlx.DB) domain.UsageRepository {
	return &sqlxUsageRepository{db: db, now: time.Now}
}

func (r *sqlxUsageRepository) GetByShopID(ctx context.Context, shopID string) (*domain.UsageCounter, error) {
	var m models.UsageCounter
	exec := GetExecutor(ctx, r.db)
	err := exec.GetContext(ctx, &m, exec.Rebind(
		`SELECT shop_id, tier, current_period_start, current_period_end, current_period_completions,
		        status, created_at, updated_at
		 FROM usage_counters WHERE shop_id = ?`), shopID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get usage counter for shop %s: %w", shopID, err)
	}
	return toDomainUsage(&m), nil
}

// Create fails on the shop_id primary key when another request created the row first.
func (r *sqlxUsageRepository) Create(ctx context.Context, counter *domain.UsageCounter) error {
	now := util.DBTime(r.now())
	counter.CurrentPeriodStart = util.DBTime(counter.CurrentPeriodStart)
	counter.CurrentPeriodEnd = util.DBTime(counter.CurrentPeriodEnd)
	counter.CreatedAt, counter.UpdatedAt = now, now

	exec := GetExecutor(ctx, r.db)
	_, err := exec.ExecContext(ctx, exec.Rebind(
		`INSERT INTO usage_counters (shop_id, tier, current_period_start, current_period_end,
		        current_period_completions, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
		counter.ShopID, string(counter.Tier), counter.CurrentPeriodStart, counter.CurrentPeriodEnd,
		counter.CurrentPeriodCompletions, counter.Status, counter.CreatedAt, counter.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create usage counter for shop %s: %w", counter.ShopID, err)
	}
	return nil
}

// ResetPeriod is a compare-and-set on current_period_end; only one of several
// concurrent callers sees a matched row.
func (r *sqlxUsageRepository) ResetPeriod(ctx context.Context, shopID string, now, newEnd time.Time) (bool, error) {
	now = util.DBTime(now)
	newEnd = util.DBTime(newEnd)

	exec := GetExecutor(ctx, r.db)
	res, err := exec.ExecContext(ctx, exec.Rebind(
		`UPDATE usage_counters
		 SET current_period_completions = 0, current_period_start = ?, current_period_end = ?, updated_at = ?
		 WHERE shop_id = ? AND current_period_end < ?`),
		now, newEnd, now, shopID, now)
	if err != nil {
		return false, fmt.Errorf("failed to reset usage period for shop %s: %w", shopID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n == 1, nil
}

func (r *sqlxUsageRepository) IncrementCompletions(ctx context.Context, shopID string) error {
	exec := GetExecutor(ctx, r.db)
	res, err := exec.ExecContext(ctx, exec.Rebind(
		`UPDATE usage_counters
		 SET current_period_completions = current_period_completions + 1, updated_at = ?
		 WHERE shop_id = ?`),
		util.DBTime(r.now()), shopID)
	if err != nil {
		return fmt.Errorf("failed to increment usage for shop %s: %w", shopID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("shop %s: %w", shopID, ErrUsageCounterMissing)
	}
	return nil
}

func toDomainUsage(m *models.UsageCounter) *domain.UsageCounter {
	return &domain.UsageCounter{
		ShopID:                   m.ShopID,
		Tier:                     domain.Tier(m.Tier),
		CurrentPeriodStart:       m.CurrentPeriodStart,
		CurrentPeriodEnd:         m.CurrentPeriodEnd,
		CurrentPeriodCompletions: m.CurrentPeriodCompletions,
		Status:                   m.Status,
		CreatedAt:                m.CreatedAt,
		UpdatedAt:                m.UpdatedAt,
	}
}
