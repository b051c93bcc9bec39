package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/flickster/flickster/backend/internal/config"
	"github.com/flickster/flickster/backend/internal/handler"
	"github.com/flickster/flickster/backend/internal/repository"
	"github.com/flickster/flickster/backend/internal/service"
	"github.com/flickster/flickster/backend/pkg/database"
	"github.com/flickster/flickster/backend/pkg/logger"
	"github.com/flickster/flickster/backend/pkg/storage"
	"github.com/flickster/flickster/backend/pkg/token"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	// Initialize structured logger
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logFormat := os.Getenv("LOG_FORMAT")
	if logFormat == "" {
		logFormat = "json"
	}
	logger.Init(logger.Config{
		Level:  logLevel,
		Format: logFormat,
		Output: os.Stdout,
	})

	// Load configuration
	cfg := config.Load()

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("Configuration error")
	}

	logger.Info().
		Str("bind_address", cfg.Server.BindAddress).
		Str("port", cfg.Server.Port).
		Str("log_level", logLevel).
		Msg("Starting Flickster server")

	// Initialize database
	db, err := database.Initialize(cfg.Database.Path)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize database")
	}
	logger.Info().Str("path", cfg.Database.Path).Msg("Database initialized")

	// Initialize schema
	if err := database.InitSchema(db); err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize schema")
	}
	logger.Info().Msg("Database schema initialized")

	// Initialize object storage
	store, err := storage.NewS3Store(context.Background(), storage.Config{
		Bucket:    cfg.Storage.Bucket,
		Region:    cfg.Storage.Region,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		Endpoint:  cfg.Storage.Endpoint,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize object storage")
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	genreRepo := repository.NewGenreRepository(db)
	movieRepo := repository.NewMovieRepository(db)
	serieRepo := repository.NewSerieRepository(db)
	seasonRepo := repository.NewSeasonRepository(db)
	episodeRepo := repository.NewEpisodeRepository(db)

	// Initialize services
	codec := token.NewCodec(cfg.Auth.JWTSecret)
	mediaSvc := service.NewMediaService(store)
	mailer := service.NewSMTPMailer(cfg.Mail, cfg.IsProduction)
	authSvc := service.NewAuthService(userRepo, codec, cfg)
	userSvc := service.NewUserService(userRepo, mediaSvc)
	genreSvc := service.NewGenreService(genreRepo)
	movieSvc := service.NewMovieService(movieRepo, genreRepo, mediaSvc)
	serieSvc := service.NewSerieService(serieRepo, seasonRepo, episodeRepo, genreRepo, mediaSvc)
	seasonSvc := service.NewSeasonService(seasonRepo, serieRepo, episodeRepo, mediaSvc)
	episodeSvc := service.NewEpisodeService(episodeRepo, seasonRepo, mediaSvc)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authSvc, userSvc, mailer, cfg.Auth.PasswordResetDomain)
	userHandler := handler.NewUserHandler(userSvc)
	genreHandler := handler.NewGenreHandler(genreSvc)
	movieHandler := handler.NewMovieHandler(movieSvc)
	serieHandler := handler.NewSerieHandler(serieSvc)
	seasonHandler := handler.NewSeasonHandler(seasonSvc)
	episodeHandler := handler.NewEpisodeHandler(episodeSvc)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:               1024 * 1024 * 1024, // 1GB, movie files are large
		DisableKeepalive:        false,
		ReadTimeout:             10 * time.Second,
		WriteTimeout:            30 * time.Second,
		IdleTimeout:             60 * time.Second,
		ProxyHeader:             fiber.HeaderXForwardedFor,
		EnableTrustedProxyCheck: true,
		TrustedProxies:          cfg.Server.TrustedProxies,
		EnableIPValidation:      true,
	})

	logger.Info().
		Strs("trusted_proxies", cfg.Server.TrustedProxies).
		Msg("Trusted proxy configuration loaded")

	// Middleware
	app.Use(recover.New())
	app.Use(compress.New(compress.Config{
		Level: compress.LevelDefault,
	}))
	app.Use(handler.SecurityHeadersMiddleware())
	app.Use(handler.RequestIDMiddleware())
	app.Use(handler.MetricsMiddleware())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Request-ID",
		AllowMethods:     "GET, POST, PATCH, DELETE, OPTIONS",
		AllowCredentials: true,
		MaxAge:           3600, // Cache preflight responses for 1 hour
	}))
	app.Use(logger.Middleware())

	// Routes
	api := app.Group("/api/v1")

	// Rate limiters: auth uses IP-only (runs before auth), catalog mutations
	// use IP+UserID. Backed by DB so counters persist across restarts.
	authRateLimiter := handler.NewPersistentRateLimiter(db, "auth", 10, 1*time.Minute)
	catalogRateLimiter := handler.NewPersistentRateLimiterWithKey(db, "catalog", 30, 1*time.Minute, handler.IPAndUserKey)

	authGate := handler.AuthMiddleware(authSvc)
	optionalGate := handler.OptionalAuthMiddleware(authSvc)
	adminOnly := handler.AdminOnlyMiddleware()

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/sign-up", authRateLimiter.Middleware(), authHandler.SignUp)
	auth.Post("/login", authRateLimiter.Middleware(), authHandler.Login)
	auth.Post("/forget-password", authRateLimiter.Middleware(), authHandler.ForgetPassword)
	auth.Post("/change-password/:token", authRateLimiter.Middleware(), authHandler.ChangePassword)
	auth.Get("/me", authGate, authHandler.Me)

	// User routes
	users := api.Group("/users", authGate)
	users.Get("/", adminOnly, userHandler.List)
	users.Get("/:id", handler.SelfOrAdminMiddleware("id"), userHandler.Get)
	users.Patch("/:id", handler.SelfOrAdminMiddleware("id"), userHandler.Update)
	users.Patch("/:id/image", handler.SelfOrAdminMiddleware("id"), catalogRateLimiter.Middleware(), userHandler.UpdateImage)
	users.Delete("/:id", handler.SelfOrAdminMiddleware("id"), userHandler.Delete)

	// Catalog routes: reads are public (identity attached when a token is
	// presented), mutations are admin only.
	movies := api.Group("/movies")
	movies.Get("/", optionalGate, movieHandler.List)
	movies.Get("/:id", optionalGate, movieHandler.Get)
	movies.Post("/", authGate, adminOnly, catalogRateLimiter.Middleware(), movieHandler.Create)
	movies.Patch("/:id", authGate, adminOnly, catalogRateLimiter.Middleware(), movieHandler.Update)
	movies.Delete("/:id", authGate, adminOnly, movieHandler.Delete)

	series := api.Group("/series")
	series.Get("/", optionalGate, serieHandler.List)
	series.Get("/:id", optionalGate, serieHandler.Get)
	series.Post("/", authGate, adminOnly, serieHandler.Create)
	series.Patch("/:id", authGate, adminOnly, serieHandler.Update)
	series.Delete("/:id", authGate, adminOnly, serieHandler.Delete)

	seasons := api.Group("/seasons")
	seasons.Get("/", optionalGate, seasonHandler.List)
	seasons.Get("/:id", optionalGate, seasonHandler.Get)
	seasons.Post("/", authGate, adminOnly, catalogRateLimiter.Middleware(), seasonHandler.Create)
	seasons.Patch("/:id", authGate, adminOnly, catalogRateLimiter.Middleware(), seasonHandler.Update)
	seasons.Delete("/:id", authGate, adminOnly, seasonHandler.Delete)

	episodes := api.Group("/episodes")
	episodes.Get("/", optionalGate, episodeHandler.List)
	episodes.Get("/:id", optionalGate, episodeHandler.Get)
	episodes.Post("/", authGate, adminOnly, catalogRateLimiter.Middleware(), episodeHandler.Create)
	episodes.Patch("/:id", authGate, adminOnly, catalogRateLimiter.Middleware(), episodeHandler.Update)
	episodes.Delete("/:id", authGate, adminOnly, episodeHandler.Delete)

	genres := api.Group("/genres")
	genres.Get("/", optionalGate, genreHandler.List)
	genres.Get("/:id", optionalGate, genreHandler.Get)
	genres.Post("/", authGate, adminOnly, genreHandler.Create)
	genres.Patch("/:id", authGate, adminOnly, genreHandler.Update)
	genres.Delete("/:id", authGate, adminOnly, genreHandler.Delete)

	// Health check handler
	healthHandler := handler.NewHealthHandler(db)
	app.Get("/health", healthHandler.Liveness)
	app.Get("/health/ready", healthHandler.Readiness)

	// Metrics endpoint
	metricsHandler := handler.NewMetricsHandler()
	if cfg.Observability.MetricsEnabled {
		if cfg.IsProduction {
			app.Get("/metrics", handler.BearerTokenMiddleware(cfg.Observability.MetricsToken), metricsHandler.Handler())
		} else {
			app.Get("/metrics", metricsHandler.Handler())
		}
	} else {
		logger.Info().Msg("Metrics endpoint disabled")
	}

	// Start server in goroutine
	go func() {
		addr := net.JoinHostPort(cfg.Server.BindAddress, cfg.Server.Port)
		logger.Info().
			Str("address", addr).
			Bool("metrics_enabled", cfg.Observability.MetricsEnabled).
			Msg("HTTP server listening")
		if err := app.Listen(addr); err != nil {
			logger.Error().Err(err).Msg("Server stopped")
		}
	}()

	// Graceful shutdown setup
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Wait for shutdown signal
	sig := <-quit
	logger.Info().Str("signal", sig.String()).Msg("Received shutdown signal")

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Stop background jobs
	logger.Info().Msg("Stopping background jobs...")
	authRateLimiter.Stop()
	catalogRateLimiter.Stop()

	// Shutdown Fiber app
	logger.Info().Msg("Shutting down HTTP server...")
	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error().Err(err).Msg("Error during shutdown")
	}

	// Close database connection
	logger.Info().Msg("Closing database connection...")
	if err := db.Close(); err != nil {
		logger.Error().Err(err).Msg("Error closing database")
	}

	logger.Info().Msg("Server stopped gracefully")
}
