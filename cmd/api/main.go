// @title Quiz Match API
// @version 1.0
// @description Storefront quiz submissions with product recommendations and per-shop usage limits.
// @host localhost:8090
// @BasePath /api
// @schemes http https
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
// @description Type 'Bearer YOUR_SHOP_TOKEN' to authorize.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"quiz-match/internal/adapter"
	"quiz-match/internal/adapter/catalog"
	"quiz-match/internal/adapter/webhook"
	"quiz-match/internal/cache"
	"quiz-match/internal/config"
	"quiz-match/internal/database"
	"quiz-match/internal/domain"
	"quiz-match/internal/handler"
	"quiz-match/internal/logger"
	"quiz-match/internal/middleware"
	"quiz-match/internal/ratelimit"
	"quiz-match/internal/repository"
	"quiz-match/internal/service"

	_ "quiz-match/cmd/api/docs"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	if err := logger.Initialize(cfg.Logger); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	appLogger := logger.Get()
	defer logger.Sync()

	// Connect to database
	db, err := database.NewSQLXDB(cfg)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err), zap.String("driver", cfg.DB.Driver))
	}
	defer db.Close()
	if cfg.DB.Driver == database.DriverSQLite {
		// Local runs create their schema on boot; shared stores use cmd/migrate.
		if err := database.RunMigrations(db); err != nil {
			appLogger.Fatal("Failed to run migrations", zap.Error(err))
		}
	}

	// Redis is optional: it backs the quiz cache and the shared rate limiter.
	var redisClient redis.Cmdable
	var quizCache domain.Cache
	if cfg.Redis.Address != "" {
		client, err := cache.NewRedisClient(cfg.Redis)
		if err != nil {
			appLogger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer client.Close()
		redisClient = client
		quizCache = adapter.NewRedisCacheAdapter(client)
		appLogger.Info("Successfully connected to Redis", zap.String("address", cfg.Redis.Address))
	} else {
		appLogger.Info("Redis not configured, quiz cache disabled")
	}

	limiter, err := ratelimit.New(cfg.RateLimit, redisClient)
	if err != nil {
		appLogger.Fatal("Failed to create rate limiter", zap.Error(err))
	}

	// Initialize repositories
	quizRepository := repository.NewSQLXQuizRepository(db)
	resultRepository := repository.NewSQLXResultRepository(db)
	analyticsRepository := repository.NewSQLXAnalyticsRepository(db)
	usageRepository := repository.NewSQLXUsageRepository(db)
	txManager := repository.NewTransactionManagerAdapter(db)

	// External collaborators
	catalogClient := catalog.NewClient(cfg.Catalog, nil)
	notifier := webhook.NewNotifier(cfg.Webhook, nil)
	if cfg.Webhook.URL == "" {
		appLogger.Info("Webhook URL not configured, completion notifications disabled")
	}

	// Initialize services
	quizLoader := service.NewQuizLoader(quizRepository, quizCache, cfg.Cache.QuizTTL)
	usageService := service.NewUsageService(usageRepository)
	recommendationService := service.NewRecommendationService(catalogClient, cfg.Catalog.Timeout)
	submissionService := service.NewSubmissionService(
		quizLoader,
		usageService,
		recommendationService,
		resultRepository,
		analyticsRepository,
		txManager,
		notifier,
		cfg.Submission,
	)

	// Initialize handlers
	submissionHandler := handler.NewSubmissionHandler(submissionService, limiter)
	shopHandler := handler.NewShopHandler(submissionService, usageService)
	healthHandler := handler.NewHealthHandler(db, quizCache)

	if cfg.Auth.JWTSecret == "" {
		appLogger.Warn("auth.jwt_secret is empty, shop endpoints will reject every token")
	}

	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.ReadTimeout,
		BodyLimit:    cfg.Server.BodyLimit,
		ErrorHandler: middleware.ErrorHandler(),
	})

	app.Use(middleware.RequestLogger())
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{AllowOrigins: "*", AllowMethods: "GET,POST,DELETE,OPTIONS", AllowHeaders: "Origin,Content-Type,Accept,Authorization", MaxAge: 300}))

	app.Get("/swagger/*", swagger.HandlerDefault)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	handler.RegisterRoutes(app, submissionHandler, shopHandler, healthHandler, cfg.Auth.JWTSecret)

	go func() {
		appLogger.Info("Starting server", zap.Int("port", cfg.Server.Port), zap.String("env", cfg.Logger.Env))
		if err := app.Listen(":" + strconv.Itoa(cfg.Server.Port)); err != nil {
			appLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := app.ShutdownWithContext(ctx); err != nil {
		appLogger.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := submissionService.Shutdown(ctx); err != nil {
		appLogger.Warn("Pending notifications were abandoned", zap.Error(err))
	}
	appLogger.Info("Server exited gracefully")
}
