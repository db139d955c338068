package middleware

import (
	"errors"
	"net/http"

	"quiz-match/internal/domain"
	"quiz-match/internal/dto"
	"quiz-match/internal/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const genericServerError = "An unexpected error occurred, please try again later"

// ErrorHandler renders every returned error as a dto.ErrorResponse.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		log := logger.Get()

		var validationErrs domain.ValidationErrors
		if errors.As(err, &validationErrs) {
			log.Warn("Validation errors occurred",
				zap.String("path", c.Path()),
				zap.Int("error_count", len(validationErrs)),
			)
			return c.Status(http.StatusBadRequest).JSON(dto.ErrorResponse{
				Error:  "Request validation failed",
				Code:   string(domain.CodeValidation),
				Errors: validationErrs,
			})
		}

		var domainErr *domain.DomainError
		if errors.As(err, &domainErr) {
			status := mapDomainErrorToHTTPStatus(domainErr)
			resp := dto.ErrorResponse{Error: domainErr.Message, Code: string(domainErr.Code)}

			if status >= http.StatusInternalServerError {
				log.Error("Domain error occurred",
					zap.String("path", c.Path()),
					zap.String("code", string(domainErr.Code)),
					zap.String("message", domainErr.Message),
					zap.Error(domainErr.Cause),
				)
				resp.Error = genericServerError
			} else {
				log.Debug("Request rejected",
					zap.String("path", c.Path()),
					zap.String("code", string(domainErr.Code)),
					zap.Int("status", status),
				)
			}

			if domainErr.Code == domain.CodeLimitReached {
				if v, ok := domainErr.Context["currentUsage"].(int); ok {
					resp.CurrentUsage = &v
				}
				if v, ok := domainErr.Context["limit"].(int); ok {
					resp.Limit = &v
				}
				resp.Tier, _ = domainErr.Context["tier"].(string)
			}
			return c.Status(status).JSON(resp)
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			log.Warn("Fiber error occurred",
				zap.Int("code", fiberErr.Code),
				zap.String("message", fiberErr.Message),
			)
			return c.Status(fiberErr.Code).JSON(dto.ErrorResponse{
				Error: fiberErr.Message,
				Code:  "HTTP_ERROR",
			})
		}

		log.Error("Unknown error occurred",
			zap.String("path", c.Path()),
			zap.Error(err),
		)
		return c.Status(http.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: genericServerError,
			Code:  string(domain.CodeInternal),
		})
	}
}

// mapDomainErrorToHTTPStatus maps domain errors to HTTP status codes
func mapDomainErrorToHTTPStatus(err *domain.DomainError) int {
	switch err.Code {
	case domain.CodeNotFound, domain.CodeQuizNotFound:
		return http.StatusNotFound
	case domain.CodeInvalidInput, domain.CodeValidation:
		return http.StatusBadRequest
	case domain.CodeLimitReached, domain.CodeRateLimited:
		return http.StatusTooManyRequests
	case domain.CodeUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
