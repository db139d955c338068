package dto

import "quiz-match/internal/domain"

// ErrorResponse is the body of every non-2xx response.
// @Description Error envelope
type ErrorResponse struct {
	Success      bool                `json:"success"`
	Error        string              `json:"error"`
	Code         string              `json:"code"`
	CurrentUsage *int                `json:"currentUsage,omitempty"`
	Limit        *int                `json:"limit,omitempty"`
	Tier         string              `json:"tier,omitempty"`
	Errors       []domain.FieldError `json:"errors,omitempty"`
}
