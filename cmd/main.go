package main

import (
	"context"
	"fmt"
	"os"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/random"
	"github.com/rs/zerolog"

	"salesops/internal/caching"
	"salesops/internal/config"
	"salesops/internal/handlers"
	"salesops/internal/jobs"
	"salesops/internal/jobs/background"
	"salesops/internal/middleware"
	"salesops/internal/models"
	"salesops/internal/repositories"
	"salesops/internal/services"
	"salesops/pkg/database"
)

func main() {
	log := zerolog.New(os.Stdout).With().Timestamp().Str("service", "salesops").Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	if cfg.DatabaseURL == "" {
		log.Fatal().Msg("DATABASE_URL environment variable is required")
	}
	if cfg.JWTSecret == "" {
		if cfg.Env != "development" {
			log.Fatal().Msg("JWT_SECRET environment variable is required")
		}
		cfg.JWTSecret = random.String(32)
		log.Warn().Msg("JWT_SECRET not set, using a generated development secret")
	}

	ctx := context.Background()

	pool, err := database.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	defer pool.Close()

	storage, err := services.NewMinioStorage(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioUseSSL, cfg.RecordingBucket)
	if err != nil {
		log.Fatal().Err(err).Msg("object storage client failed")
	}
	if err := storage.EnsureBucket(ctx); err != nil {
		log.Fatal().Err(err).Msg("recording bucket unavailable")
	}

	cacheSvc := caching.NewRedisCacheService(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)

	// Repositories
	orgRepo := repositories.NewOrganizationRepo(pool)
	userRepo := repositories.NewUserRepo(pool)
	callRepo := repositories.NewCallRepo(pool)
	analysisRepo := repositories.NewAnalysisRepo(pool)

	// Services
	authSvc := services.NewAuthService(cfg.JWTSecret, log)
	accountSvc := services.NewAccountService(pool, orgRepo, userRepo, authSvc, cfg.TokenTTL, log)
	settingsSvc := services.NewSettingsService(orgRepo, cacheSvc, log)
	transcriber := services.WithTimeout(services.NewLocalTranscriber(), services.DefaultTranscribeTimeout)
	pipelineSvc := services.NewPipelineService(callRepo, analysisRepo, transcriber, cacheSvc, log)
	dispatcher := jobs.NewDispatcher(pipelineSvc, log)

	scheduler, err := background.NewScheduler(callRepo, dispatcher, log)
	if err != nil {
		log.Fatal().Err(err).Msg("scheduler init failed")
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Handlers
	authHandlers := handlers.NewAuthHandlers(accountSvc, cacheSvc)
	callHandlers := handlers.NewCallHandlers(cfg, callRepo, analysisRepo, storage, dispatcher, cacheSvc, log)
	settingsHandlers := handlers.NewSettingsHandlers(settingsSvc)
	userHandlers := handlers.NewUserHandlers(accountSvc, userRepo)
	healthHandlers := handlers.NewHealthHandlers(pool, cacheSvc, storage)

	e := echo.New()
	e.HideBanner = true

	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORSWithConfig(echoMiddleware.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
	}))
	e.Use(echoMiddleware.RemoveTrailingSlash())
	e.Use(middleware.RequestLogger(log))

	e.GET("/health", healthHandlers.Live)
	e.GET("/health/ready", healthHandlers.Ready)

	v1 := e.Group("/v1")

	auth := v1.Group("/auth")
	auth.POST("/register", authHandlers.Register)
	auth.POST("/login", authHandlers.Login)

	protected := v1.Group("")
	protected.Use(middleware.Authenticate(authSvc, userRepo))

	protected.GET("/auth/me", authHandlers.Me)

	protected.POST("/calls", callHandlers.Upload)
	protected.GET("/calls", callHandlers.List)
	protected.GET("/calls/:id", callHandlers.Get)
	protected.GET("/calls/:id/analysis", callHandlers.GetAnalysis)
	protected.GET("/calls/:id/recording", callHandlers.GetRecording)

	settings := protected.Group("/settings", middleware.RequireSettingsManager())
	settings.GET("/templates", settingsHandlers.GetTemplates)
	settings.PUT("/templates", settingsHandlers.UpdateTemplates)

	users := protected.Group("/users", middleware.RequireRole(models.RoleAdmin))
	users.POST("", userHandlers.Create)
	users.GET("", userHandlers.List)

	log.Info().Int("port", cfg.Port).Str("env", cfg.Env).Msg("server starting")
	if err := e.Start(fmt.Sprintf(":%d", cfg.Port)); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
