package dto

import "quiz-match/internal/domain"

// UsageResponse is returned by GET /api/shop/usage.
type UsageResponse struct {
	Success bool               `json:"success"`
	Usage   *domain.UsageCheck `json:"usage"`
}

// AnalyticsResponse is returned by GET /api/shop/quizzes/{quizId}/analytics.
type AnalyticsResponse struct {
	Success   bool                  `json:"success"`
	Analytics *domain.QuizAnalytics `json:"analytics"`
}

// RedactResponse is returned by DELETE /api/shop/results.
type RedactResponse struct {
	Success bool  `json:"success"`
	Deleted int64 `json:"deleted"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}
