package domain

import (
	"context"
	"time"
)

// QuizResult is the durable record of one completed submission.
type QuizResult struct {
	ID                  string
	QuizID              string
	Email               string
	Answers             []Answer
	RecommendedProducts []RecommendedProduct
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// QuizAnalytics holds the monotonically increasing counters of one quiz.
type QuizAnalytics struct {
	QuizID            string    `json:"quizId"`
	TotalViews        int64     `json:"totalViews"`
	TotalCompletions  int64     `json:"totalCompletions"`
	EmailCaptureCount int64     `json:"emailCaptureCount"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// QuizRepository reads quizzes with their question tree. Editing is handled elsewhere.
type QuizRepository interface {
	// GetQuizWithQuestions returns nil, nil when the quiz does not exist.
	GetQuizWithQuestions(ctx context.Context, quizID string) (*Quiz, error)
}

// ResultRepository persists quiz results.
type ResultRepository interface {
	Create(ctx context.Context, result *QuizResult) error
	// DeleteByEmail removes a shop's results captured for email and returns the row count.
	DeleteByEmail(ctx context.Context, shopID, email string) (int64, error)
}

// AnalyticsRepository applies store-level increments; it never reads before writing.
type AnalyticsRepository interface {
	IncrementViews(ctx context.Context, quizID string) error
	IncrementCompletions(ctx context.Context, quizID string, emailCaptured bool) error
	RecordQuestionTiming(ctx context.Context, quizID string, timing QuestionTiming) error
	// GetByQuizID returns nil, nil when no counters exist yet.
	GetByQuizID(ctx context.Context, quizID string) (*QuizAnalytics, error)
}

// TransactionManager runs fn in one store transaction. Repositories called with the context
// passed to fn join that transaction.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Notifier delivers events to the shop's webhook subscribers.
type Notifier interface {
	Deliver(ctx context.Context, shopID, event string, payload map[string]interface{}) error
}

// RateLimiter decides whether a keyed request may proceed in the current window.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// Event names sent through Notifier.
const (
	EventQuizCompleted = "quiz.completed"
)
