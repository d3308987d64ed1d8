package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/scholarship-portal-api/api/swagger"
	"github.com/noah-isme/scholarship-portal-api/internal/handler"
	"github.com/noah-isme/scholarship-portal-api/internal/middleware"
	"github.com/noah-isme/scholarship-portal-api/internal/models"
	"github.com/noah-isme/scholarship-portal-api/internal/repository"
	"github.com/noah-isme/scholarship-portal-api/internal/service"
	"github.com/noah-isme/scholarship-portal-api/pkg/cache"
	"github.com/noah-isme/scholarship-portal-api/pkg/config"
	"github.com/noah-isme/scholarship-portal-api/pkg/database"
	"github.com/noah-isme/scholarship-portal-api/pkg/jobs"
	"github.com/noah-isme/scholarship-portal-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/scholarship-portal-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/scholarship-portal-api/pkg/middleware/requestid"
	"github.com/noah-isme/scholarship-portal-api/pkg/storage"
)

// @title Scholarship Portal API
// @version 1.0.0
// @description Scholarship application lifecycle service
// @BasePath /
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	var cacheRepo service.CacheRepository
	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, dashboard caching disabled", "error", err)
	} else {
		defer redisClient.Close()
		cacheRepo = repository.NewCacheRepository(redisClient, logr)
	}

	userRepo := repository.NewUserRepository(db)
	scholarshipRepo := repository.NewScholarshipRepository(db)
	applicationRepo := repository.NewApplicationRepository(db)

	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Dashboard.CacheTTL, logr, cfg.Dashboard.CacheEnabled)

	authSvc := service.NewAuthService(userRepo, service.BcryptVerifier{}, nil, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})

	scholarshipSvc := service.NewScholarshipService(scholarshipRepo, logr)
	if cfg.Catalog.SeedOnStartup {
		if err := scholarshipSvc.Seed(context.Background()); err != nil {
			logr.Sugar().Fatalw("failed to seed scholarship catalog", "error", err)
		}
	}

	notifier := service.NewNotificationService(jobs.QueueConfig{
		Workers:    cfg.Notifications.Workers,
		BufferSize: cfg.Notifications.BufferSize,
		MaxRetries: cfg.Notifications.MaxRetries,
		Logger:     logr,
	}, logr)
	notifier.Start(context.Background())
	defer notifier.Stop()

	applicationSvc := service.NewApplicationService(service.ApplicationServiceParams{
		Repo:         applicationRepo,
		Scholarships: scholarshipRepo,
		Users:        userRepo,
		Cache:        cacheSvc,
		Notifier:     notifier,
		Metrics:      metricsSvc,
		Logger:       logr,
	})
	dashboardSvc := service.NewDashboardService(applicationRepo, scholarshipRepo, cacheSvc, logr, cfg.Dashboard.CacheTTL)
	exportSvc := service.NewExportService(applicationRepo, nil, nil, logr)

	if cfg.Letters.ArchiveEnabled {
		letterStore, err := storage.NewLetterStore(cfg.Letters.Dir)
		if err != nil {
			logr.Sugar().Fatalw("failed to init letter archive", "error", err)
		}
		linkSecret := cfg.Letters.LinkSecret
		if linkSecret == "" {
			linkSecret = cfg.JWT.Secret
		}
		exportSvc.EnableLetterArchive(letterStore, storage.NewSignedURLSigner(linkSecret, cfg.Letters.LinkTTL))

		if cfg.Letters.Retention > 0 {
			if removed, err := letterStore.CleanupOlderThan(cfg.Letters.Retention); err != nil {
				logr.Sugar().Warnw("letter archive cleanup failed", "error", err)
			} else if len(removed) > 0 {
				logr.Sugar().Infow("expired letters removed", "count", len(removed))
			}
		}
	}

	authHandler := handler.NewAuthHandler(authSvc)
	scholarshipHandler := handler.NewScholarshipHandler(scholarshipSvc)
	applicationHandler := handler.NewApplicationHandler(applicationSvc, exportSvc)
	dashboardHandler := handler.NewDashboardHandler(dashboardSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.GET("/me", middleware.JWT(authSvc), authHandler.Me)

	protected := api.Group("")
	protected.Use(middleware.JWT(authSvc))

	protected.GET("/scholarships", scholarshipHandler.List)
	protected.GET("/scholarships/:id", scholarshipHandler.Get)

	protected.POST("/applications",
		middleware.RequireRoles(models.RoleStudent),
		applicationHandler.Create)
	protected.GET("/applications", applicationHandler.List)
	protected.GET("/applications/export",
		middleware.RequireRoles(models.RoleReviewBureau, models.RoleFundingBureau),
		middleware.Audit(userRepo, "APPLICATION_EXPORT", "application"),
		applicationHandler.Export)
	protected.GET("/applications/:id", applicationHandler.Get)
	protected.PATCH("/applications/:id/status",
		middleware.RequireRoles(models.RoleReviewBureau, models.RoleFundingBureau),
		applicationHandler.UpdateStatus)
	protected.GET("/applications/:id/sanction-letter",
		middleware.Audit(userRepo, "SANCTION_LETTER_DOWNLOAD", "application"),
		applicationHandler.SanctionLetter)
	protected.GET("/applications/:id/sanction-letter/link",
		middleware.Audit(userRepo, "SANCTION_LETTER_LINK", "application"),
		applicationHandler.SanctionLetterLink)

	protected.GET("/dashboard/stats", dashboardHandler.Stats)

	// Signed-link downloads authenticate through the token itself.
	r.GET("/letters/:token", applicationHandler.DownloadLetter)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
