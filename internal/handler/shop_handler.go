package handler

import (
	"quiz-match/internal/dto"
	"quiz-match/internal/middleware"
	"quiz-match/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ShopHandler serves merchant endpoints. Routes must sit behind middleware.ShopAuth.
type ShopHandler struct {
	submissions service.SubmissionService
	usage       service.UsageService
}

func NewShopHandler(submissions service.SubmissionService, usage service.UsageService) *ShopHandler {
	return &ShopHandler{submissions: submissions, usage: usage}
}

// GetUsage godoc
// @Summary Current usage of the authenticated shop
// @Tags shop
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} dto.UsageResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /shop/usage [get]
func (h *ShopHandler) GetUsage(c *fiber.Ctx) error {
	check, err := h.usage.Status(c.UserContext(), middleware.ShopID(c))
	if err != nil {
		return err
	}
	return c.JSON(dto.UsageResponse{Success: true, Usage: check})
}

// GetQuizAnalytics godoc
// @Summary Counters of one quiz owned by the authenticated shop
// @Tags shop
// @Produce json
// @Security ApiKeyAuth
// @Param quizId path string true "Quiz ID"
// @Success 200 {object} dto.AnalyticsResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /shop/quizzes/{quizId}/analytics [get]
func (h *ShopHandler) GetQuizAnalytics(c *fiber.Ctx) error {
	analytics, err := h.submissions.GetAnalytics(c.UserContext(), middleware.ShopID(c), c.Params("quizId"))
	if err != nil {
		return err
	}
	return c.JSON(dto.AnalyticsResponse{Success: true, Analytics: analytics})
}

// RedactResults godoc
// @Summary Delete a shopper's results
// @Description Removes every result of the authenticated shop captured for the given email
// @Tags shop
// @Produce json
// @Security ApiKeyAuth
// @Param email query string true "Shopper email"
// @Success 200 {object} dto.RedactResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /shop/results [delete]
func (h *ShopHandler) RedactResults(c *fiber.Ctx) error {
	deleted, err := h.submissions.RedactResults(c.UserContext(), middleware.ShopID(c), c.Query("email"))
	if err != nil {
		return err
	}
	return c.JSON(dto.RedactResponse{Success: true, Deleted: deleted})
}
