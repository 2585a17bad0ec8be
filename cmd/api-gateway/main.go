package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/practicum-journal-api/api/swagger"
	"github.com/noah-isme/practicum-journal-api/internal/handler"
	internalmiddleware "github.com/noah-isme/practicum-journal-api/internal/middleware"
	"github.com/noah-isme/practicum-journal-api/internal/repository"
	"github.com/noah-isme/practicum-journal-api/internal/service"
	"github.com/noah-isme/practicum-journal-api/pkg/cache"
	"github.com/noah-isme/practicum-journal-api/pkg/config"
	"github.com/noah-isme/practicum-journal-api/pkg/database"
	"github.com/noah-isme/practicum-journal-api/pkg/export"
	"github.com/noah-isme/practicum-journal-api/pkg/jobs"
	"github.com/noah-isme/practicum-journal-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/practicum-journal-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/practicum-journal-api/pkg/middleware/requestid"
	"github.com/noah-isme/practicum-journal-api/pkg/storage"
)

// @title Practicum Journal API
// @version 1.0.0
// @description Observation forms, reflective journal, calendar and PDF exports for teaching practicum students.
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("database unavailable", "error", err)
	}
	defer db.Close()

	var redisClient *redis.Client
	if cfg.Calendar.CacheEnabled {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, calendar cache disabled", "error", err)
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	location, err := time.LoadLocation(cfg.Reports.Timezone)
	if err != nil {
		logr.Sugar().Warnw("unknown report timezone, using UTC", "timezone", cfg.Reports.Timezone, "error", err)
		location = time.UTC
	}

	metrics := service.NewMetricsService()
	validate := service.NewValidator(cfg.Profiles.Semesters)

	observationRepo := repository.NewObservationRepository(db)
	journalRepo := repository.NewJournalRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	exportRepo := repository.NewExportJobRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, "practicum:", logr)

	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Calendar.CacheTTL, logr, cfg.Calendar.CacheEnabled && redisClient != nil)
	profiles := service.NewProfileService(profileRepo, cfg.Profiles.Semesters, validate, logr)
	sessions := service.NewSessionService(profiles, logr, service.SessionConfig{
		Secret:   cfg.JWT.Secret,
		Issuer:   cfg.JWT.Issuer,
		Audience: cfg.JWT.Audience,
	})
	calendarSvc := service.NewCalendarService(observationRepo, journalRepo, cacheSvc, logr, service.CalendarConfig{
		WeekStart:   cfg.Calendar.WeekStart,
		Location:    location,
		InlineLimit: cfg.Calendar.InlineLimit,
		CacheTTL:    cfg.Calendar.CacheTTL,
	})
	observations := service.NewObservationService(observationRepo, profiles, calendarSvc, validate, logr)
	journals := service.NewJournalService(journalRepo, profiles, calendarSvc, validate, logr)

	renderer := export.NewDocumentRenderer(export.RendererConfig{
		Labels:   export.LabelsFor(cfg.Reports.Locale),
		Location: location,
	})
	documents := service.NewDocumentService(observations, journals, renderer, metrics, logr, cfg.Reports.Locale)

	fileStore, err := storage.NewLocalStorage(cfg.Reports.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("export storage unavailable", "dir", cfg.Reports.StorageDir, "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Reports.SignedURLSecret, cfg.Reports.SignedURLTTL)

	exports := service.NewExportService(exportRepo, fileStore, signer, nil, metrics, validate, logr, service.ExportConfig{
		APIPrefix:       cfg.APIPrefix,
		MaxBatch:        cfg.Reports.MaxBatch,
		ResultTTL:       cfg.Reports.SignedURLTTL,
		CleanupInterval: cfg.Reports.CleanupInterval,
	})
	worker := service.NewExportWorker(exportRepo, documents, fileStore, metrics, cfg.Reports.ItemDelay, logr)

	// A single worker keeps batch exports strictly sequential.
	queue := jobs.NewQueue[string]("exports", worker.Handle, jobs.QueueConfig{
		Workers:    1,
		BufferSize: cfg.Reports.MaxBatch,
		MaxRetries: cfg.Reports.WorkerRetries,
		RetryDelay: 2 * time.Second,
		Logger:     logr,
	})
	queue.OnGiveUp(exports.MarkFailed)
	exports.SetQueue(queue)
	queue.Start(ctx)
	defer queue.Stop()

	go exports.RecoverPendingJobs(ctx)
	exports.StartCleanup(ctx)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr, internalmiddleware.UserID))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metrics))
	r.Use(internalmiddleware.WithResponseMeta())

	metricsHandler := handler.NewMetricsHandler(metrics)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", readiness(db.PingContext))
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.GET("/metrics/summary", internalmiddleware.JWT(sessions), metricsHandler.Summary)
	registerRoutes(api, internalmiddleware.JWT(sessions), routeHandlers{
		observations: handler.NewObservationHandler(observations, documents),
		journal:      handler.NewJournalHandler(journals, documents),
		calendar:     handler.NewCalendarHandler(calendarSvc),
		exports:      handler.NewExportHandler(exports),
		profile:      handler.NewProfileHandler(sessions, profiles),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}

func readiness(ping func(context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	}
}
