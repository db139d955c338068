package handler

import (
	"quiz-match/internal/cache"
	"quiz-match/internal/domain"
	"quiz-match/internal/dto"
	"quiz-match/internal/logger"
	"quiz-match/internal/metrics"
	"quiz-match/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	endpointSubmit = "submit"
	endpointView   = "view"
)

// SubmissionHandler handles the storefront quiz endpoints
type SubmissionHandler struct {
	service service.SubmissionService
	limiter domain.RateLimiter
}

// NewSubmissionHandler creates a new SubmissionHandler. A nil limiter disables rate limiting.
func NewSubmissionHandler(service service.SubmissionService, limiter domain.RateLimiter) *SubmissionHandler {
	return &SubmissionHandler{service: service, limiter: limiter}
}

// SubmitQuiz godoc
// @Summary Submit a completed quiz
// @Description Validates the answers, resolves up to six product recommendations and stores the result
// @Tags quiz
// @Accept json
// @Produce json
// @Param submission body dto.SubmitQuizRequest true "Quiz submission"
// @Success 200 {object} dto.SubmitQuizResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 429 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /quiz/submit [post]
func (h *SubmissionHandler) SubmitQuiz(c *fiber.Ctx) error {
	var req dto.SubmitQuizRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Get().Debug("Failed to parse submission body", zap.Error(err))
		return domain.NewInvalidInputError("Invalid request body")
	}

	if err := h.allow(c, endpointSubmit, req.QuizID); err != nil {
		return err
	}

	resp, err := h.service.Submit(c.UserContext(), &req)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// RecordView godoc
// @Summary Record a quiz view
// @Description Increments the view counter of an active quiz
// @Tags quiz
// @Param quizId path string true "Quiz ID"
// @Success 204
// @Failure 404 {object} dto.ErrorResponse
// @Failure 429 {object} dto.ErrorResponse
// @Router /quiz/{quizId}/view [post]
func (h *SubmissionHandler) RecordView(c *fiber.Ctx) error {
	quizID := c.Params("quizId")
	if err := h.allow(c, endpointView, quizID); err != nil {
		return err
	}
	if err := h.service.RecordView(c.UserContext(), quizID); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// allow applies the per (endpoint, quiz, client ip) window. Limiter failures fail open.
func (h *SubmissionHandler) allow(c *fiber.Ctx, endpoint, quizID string) error {
	if h.limiter == nil {
		return nil
	}
	allowed, err := h.limiter.Allow(c.UserContext(), cache.RateLimitKey(endpoint, quizID, c.IP()))
	if err != nil {
		logger.Get().Warn("Rate limiter unavailable, allowing request",
			zap.String("endpoint", endpoint), zap.Error(err))
		return nil
	}
	if !allowed {
		metrics.RecordRateLimited(endpoint)
		return domain.NewRateLimitedError()
	}
	return nil
}
