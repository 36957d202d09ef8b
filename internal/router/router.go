package router

import (
	"context"
	"fmt"
	"net/http"

	"github.com/campusnet/backend/internal/handlers"
	"github.com/campusnet/backend/internal/metrics"
	"github.com/campusnet/backend/internal/middleware"
	"github.com/campusnet/backend/internal/models"
	"github.com/campusnet/backend/internal/repositories"
	"github.com/campusnet/backend/internal/services"
	"github.com/campusnet/backend/internal/validators"
	"github.com/campusnet/backend/pkg/config"
	"github.com/campusnet/backend/pkg/firebase"
	"github.com/campusnet/backend/pkg/logger"
	"github.com/campusnet/backend/pkg/media"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Deps is everything the API needs from the outside world
type Deps struct {
	Config   *config.Config
	DB       *config.DB
	Verifier firebase.IdentityVerifier // nil disables Firebase login
	Uploader media.Uploader            // nil disables uploads
	Registry *prometheus.Registry
	Metrics  *metrics.Metrics
	Log      zerolog.Logger
}

// Services are handed back for the job scheduler
type Services struct {
	Notifications *services.NotificationService
	Content       *services.ContentService
}

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo, cfg *config.Config, m *metrics.Metrics, log zerolog.Logger) {
	e.HideBanner = true
	e.Validator = validators.NewValidator()

	e.Use(eMiddleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(log))
	e.Use(m.Middleware())
	e.Use(eMiddleware.CORSWithConfig(eMiddleware.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	e.Use(eMiddleware.BodyLimit("110M"))
	log.Info().Msg("global middleware configured")
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(ctx context.Context, e *echo.Echo, d Deps) (*Services, error) {
	cfg, log := d.Config, d.Log
	pgdb := d.DB.Postgres
	mgdb := d.DB.Mongo.Database(cfg.MongoDatabase)

	err := pgdb.AutoMigrate(
		&models.User{},
		&models.Follow{},
		&models.FollowRequest{},
		&models.SavedPost{},
		&models.StoryView{},
	)
	if err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	log.Info().Msg("PostgreSQL auto-migrations completed")

	if err := repositories.EnsureIndexes(ctx, mgdb); err != nil {
		return nil, err
	}
	log.Info().Msg("MongoDB indexes ensured")

	// --- Repositories ---
	userRepo := repositories.NewPostgresUserRepository(pgdb)
	followRepo := repositories.NewPostgresFollowRepository(pgdb)
	savedPostRepo := repositories.NewPostgresSavedPostRepository(pgdb)
	postRepo := repositories.NewMongoPostRepository(mgdb)
	storyRepo := repositories.NewStoryRepository(mgdb, pgdb)
	notificationRepo := repositories.NewMongoNotificationRepository(mgdb)
	messageRepo := repositories.NewMongoMessageRepository(mgdb)
	announcementRepo := repositories.NewMongoAnnouncementRepository(mgdb)
	reportRepo := repositories.NewMongoReportRepository(mgdb)

	// --- Services ---
	notifier := services.NewNotificationService(notificationRepo, d.Metrics, log, cfg.AnnouncementBatchSize)
	relationships := services.NewRelationshipService(userRepo, followRepo, notifier, d.Metrics, log)
	content := services.NewContentService(userRepo, followRepo, postRepo, savedPostRepo, storyRepo, notifier, log)
	messaging := services.NewMessagingService(userRepo, followRepo, messageRepo, notifier, log)
	announcements := services.NewAnnouncementService(userRepo, announcementRepo, notifier, log)
	moderation := services.NewModerationService(userRepo, postRepo, savedPostRepo, reportRepo, log)

	// --- Operational endpoints ---
	checks := map[string]handlers.Pinger{
		"postgres": handlers.PingFunc(func(ctx context.Context) error {
			sqlDB, err := pgdb.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}),
		"mongo": handlers.PingFunc(func(ctx context.Context) error {
			return d.DB.Mongo.Ping(ctx, nil)
		}),
	}
	if d.DB.Redis != nil {
		checks["redis"] = handlers.PingFunc(func(ctx context.Context) error {
			return d.DB.Redis.Ping(ctx).Err()
		})
	}
	e.GET("/health", handlers.NewHealthHandler(checks).HealthCheck)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{})))
	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"message": "campusnet api"})
	})

	// --- Unprotected routes for authentication ---
	var counter middleware.WindowCounter
	if d.DB.Redis != nil {
		counter = middleware.NewRedisCounter(d.DB.Redis)
	}
	limiter := middleware.NewRateLimiter(counter, "auth", cfg.AuthRateLimit, cfg.AuthRateWindow, logger.Component(log, "ratelimit"))

	authGroup := e.Group("/api/v1/auth", limiter.Middleware(middleware.KeyByIP))
	authHandler := handlers.NewAuthHandler(userRepo, d.Verifier, cfg.JWTSecret, cfg.JWTTTL, logger.Component(log, "auth"))
	authHandler.RegisterAuthRoutes(authGroup)
	log.Info().Msg("auth routes configured")

	// --- Protected routes (require JWT authentication) ---
	api := e.Group("/api/v1")
	api.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret, userRepo))

	handlers.NewUserHandler(userRepo, relationships).RegisterProfileRoutes(api)
	log.Info().Msg("user profile routes configured")

	handlers.NewFollowHandler(relationships).RegisterFollowRoutes(api)
	log.Info().Msg("follow routes configured")

	handlers.NewPostHandler(content).RegisterPostRoutes(api)
	handlers.NewFeedHandler(content).RegisterFeedRoutes(api)
	handlers.NewLikeHandler(content).RegisterLikeRoutes(api)
	handlers.NewCommentHandler(content).RegisterCommentRoutes(api)
	handlers.NewSavedPostHandler(content).RegisterSavedPostRoutes(api)
	handlers.NewStoryHandler(content).RegisterStoryRoutes(api)
	handlers.NewUploadHandler(d.Uploader, logger.Component(log, "uploads")).RegisterUploadRoutes(api)
	log.Info().Msg("content routes configured")

	handlers.NewNotificationHandler(notifier, userRepo).RegisterNotificationRoutes(api)
	log.Info().Msg("notification routes configured")

	handlers.NewMessageHandler(messaging).RegisterMessageRoutes(api)
	log.Info().Msg("message routes configured")

	// --- Admin routes ---
	admin := api.Group("/admin", middleware.RequireRoles(models.RoleAdmin))

	announcementHandler := handlers.NewAnnouncementHandler(announcements, logger.Component(log, "announcements"))
	announcementHandler.RegisterAnnouncementRoutes(api)
	announcementHandler.RegisterAdminRoutes(admin)

	moderationHandler := handlers.NewModerationHandler(moderation)
	moderationHandler.RegisterReportRoutes(api)
	moderationHandler.RegisterAdminRoutes(admin)
	log.Info().Msg("announcement and moderation routes configured")

	log.Info().Int("routes", len(e.Routes())).Msg("all routes configured")
	return &Services{Notifications: notifier, Content: content}, nil
}
