package models

import (
	"database/sql"
	"time"

	"quiz-match/internal/domain"
)

type QuizResult struct {
	ID                  string                              `db:"id"`
	QuizID              string                              `db:"quiz_id"`
	Email               sql.NullString                      `db:"email"`
	Answers             JSONList[domain.Answer]             `db:"answers"`
	RecommendedProducts JSONList[domain.RecommendedProduct] `db:"recommended_products"`
	CreatedAt           time.Time                           `db:"created_at"`
	UpdatedAt           time.Time                           `db:"updated_at"`
}

type QuizAnalytics struct {
	QuizID            string    `db:"quiz_id"`
	TotalViews        int64     `db:"total_views"`
	TotalCompletions  int64     `db:"total_completions"`
	EmailCaptureCount int64     `db:"email_capture_count"`
	UpdatedAt         time.Time `db:"updated_at"`
}

type UsageCounter struct {
	ShopID                   string    `db:"shop_id"`
	Tier                     string    `db:"tier"`
	CurrentPeriodStart       time.Time `db:"current_period_start"`
	CurrentPeriodEnd         time.Time `db:"current_period_end"`
	CurrentPeriodCompletions int       `db:"current_period_completions"`
	Status                   string    `db:"status"`
	CreatedAt                time.Time `db:"created_at"`
	UpdatedAt                time.Time `db:"updated_at"`
}
