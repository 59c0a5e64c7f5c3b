package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/rohankatakam/foryou-podcast-core/internal/config"
	"github.com/rohankatakam/foryou-podcast-core/internal/database"
	"github.com/rohankatakam/foryou-podcast-core/internal/handlers"
	"github.com/rohankatakam/foryou-podcast-core/internal/middleware"
	"github.com/rohankatakam/foryou-podcast-core/internal/services"
)

type App struct {
	config   *config.Config
	logger   *logrus.Logger
	db       *database.Database
	services *services.Services
	handlers *handlers.Handlers
	router   *gin.Engine
}

func New(cfg *config.Config) (*App, error) {
	app := &App{
		config: cfg,
		logger: setupLogger(cfg),
	}

	// Initialize database connections
	db, err := database.New(cfg, app.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	// Initialize services
	svc, err := services.New(cfg, app.logger, db)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}
	app.services = svc

	// Initialize handlers
	app.handlers = handlers.New(app.logger, svc)

	// Setup router
	app.setupRouter()

	return app, nil
}

func (a *App) Router() *gin.Engine {
	return a.router
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("Shutting down application...")

	if err := a.db.Close(); err != nil {
		a.logger.WithError(err).Error("Error closing database connections")
		return err
	}

	return nil
}

func setupLogger(cfg *config.Config) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Logging.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return logger
}

func (a *App) setupRouter() {
	if a.config.Server.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(middleware.Logger(a.logger))
	router.Use(middleware.Recovery(a.logger))
	router.Use(middleware.CORS(a.config))
	router.Use(middleware.CompressionMiddleware())

	// Health check (no auth required, S7)
	router.GET("/health", a.handlers.Health.Check)

	// Prometheus metrics endpoint (no auth required)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API routes (S1-S6)
	api := router.Group("/api/v1")
	{
		api.Use(middleware.Auth(a.services.Auth, a.logger))
		api.Use(middleware.RateLimit(a.services.RateLimit, a.logger))

		sessions := api.Group("/sessions")
		{
			sessions.POST("", a.handlers.Session.Create)          // S1 create_session
			sessions.GET("/:sessionId/more", a.handlers.Session.LoadMore) // S2 load_more
		}

		api.POST("/engagements", a.handlers.Engagement.Append) // S3 append_engagement

		users := api.Group("/users")
		{
			users.POST("/:userId/engagements/reset", a.handlers.Engagement.Reset) // S4 reset_engagements
		}

		api.GET("/categories", a.handlers.Catalog.Categories)       // S5 get_categories
		api.GET("/episodes/:episodeId", a.handlers.Catalog.Episode) // S6 episode lookup
	}

	a.router = router
}
