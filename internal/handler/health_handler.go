package handler

import (
	"context"
	"time"

	"quiz-match/internal/domain"
	"quiz-match/internal/dto"

	"github.com/gofiber/fiber/v2"
)

const healthCheckTimeout = 2 * time.Second

// Pinger is satisfied by *sqlx.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthHandler struct {
	db    Pinger
	cache domain.Cache // optional
}

func NewHealthHandler(db Pinger, cache domain.Cache) *HealthHandler {
	return &HealthHandler{db: db, cache: cache}
}

// Health godoc
// @Summary Liveness and dependency check
// @Tags health
// @Produce json
// @Success 200 {object} dto.HealthResponse
// @Failure 503 {object} dto.HealthResponse
// @Router /health [get]
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), healthCheckTimeout)
	defer cancel()

	resp := dto.HealthResponse{Status: "ok", Checks: map[string]string{}}
	if err := h.db.PingContext(ctx); err != nil {
		resp.Status = "degraded"
		resp.Checks["database"] = "unavailable"
	} else {
		resp.Checks["database"] = "ok"
	}
	// The cache is an optimisation; its failure does not degrade the service.
	if h.cache != nil {
		if err := h.cache.Ping(ctx); err != nil {
			resp.Checks["cache"] = "unavailable"
		} else {
			resp.Checks["cache"] = "ok"
		}
	}

	if resp.Status != "ok" {
		return c.Status(fiber.StatusServiceUnavailable).JSON(resp)
	}
	return c.JSON(resp)
}
