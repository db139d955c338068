package handler

import (
	"quiz-match/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes mounts the HTTP API. Shop routes require a token signed with jwtSecret.
func RegisterRoutes(app *fiber.App, submissions *SubmissionHandler, shop *ShopHandler, health *HealthHandler, jwtSecret string) {
	app.Get("/health", health.Health)

	api := app.Group("/api")

	quiz := api.Group("/quiz")
	quiz.Post("/submit", submissions.SubmitQuiz)
	quiz.Post("/:quizId/view", submissions.RecordView)

	shopGroup := api.Group("/shop", middleware.ShopAuth(jwtSecret))
	shopGroup.Get("/usage", shop.GetUsage)
	shopGroup.Get("/quizzes/:quizId/analytics", shop.GetQuizAnalytics)
	shopGroup.Delete("/results", shop.RedactResults)
}
