package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/student-desk-api/internal/handler"
	"github.com/noah-isme/student-desk-api/internal/middleware"
	"github.com/noah-isme/student-desk-api/internal/models"
	"github.com/noah-isme/student-desk-api/internal/repository"
	"github.com/noah-isme/student-desk-api/internal/service"
	"github.com/noah-isme/student-desk-api/pkg/cache"
	"github.com/noah-isme/student-desk-api/pkg/config"
	"github.com/noah-isme/student-desk-api/pkg/jobs"
	"github.com/noah-isme/student-desk-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/student-desk-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/student-desk-api/pkg/middleware/requestid"
	"github.com/noah-isme/student-desk-api/pkg/storage"
)

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

	if err := os.MkdirAll(cfg.Data.Dir, 0o755); err != nil {
		logr.Sugar().Fatalw("failed to create data directory", "dir", cfg.Data.Dir, "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics := service.NewMetricsService()
	validate := validator.New()

	studentRepo := repository.NewStudentRepository(cfg.Data.Dir, logr)
	principalRepo := repository.NewPrincipalRepository(cfg.Data.Dir, logr)
	leaveRepo := repository.NewLeaveRepository(cfg.Data.Dir, logr)
	eventRepo := repository.NewEventRepository(cfg.Data.Dir, logr)
	emergencyRepo := repository.NewEmergencyRepository(cfg.Data.Dir, logr)
	auditRepo := repository.NewAuditRepository(cfg.Data.Dir, logr)

	studentRepo.Collection().Observe(metrics.ObserveStoreOp)
	principalRepo.Collection().Observe(metrics.ObserveStoreOp)
	leaveRepo.Collection().Observe(metrics.ObserveStoreOp)
	eventRepo.Collection().Observe(metrics.ObserveStoreOp)
	emergencyRepo.Collection().Observe(metrics.ObserveStoreOp)
	auditRepo.Collection().Observe(metrics.ObserveStoreOp)

	var cacheSvc *service.CacheService
	if cfg.Cache.Enabled {
		client, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		} else {
			defer client.Close() //nolint:errcheck
			cacheRepo := repository.NewCacheRepository(client, logr)
			cacheSvc = service.NewCacheService(cacheRepo, metrics, cfg.Cache.TTL, logr, true)
		}
	}

	authSvc := service.NewAuthService(principalRepo, validate, logr)
	studentSvc := service.NewStudentService(studentRepo, cacheSvc, validate, logr)
	leaveSvc := service.NewLeaveService(leaveRepo, studentRepo, validate, logr)
	eventSvc := service.NewEventService(eventRepo, studentRepo, validate, logr)
	emergencySvc := service.NewEmergencyService(emergencyRepo, studentRepo, validate, logr)
	auditSvc := service.NewAuditService(auditRepo, logr)

	var exportSvc *service.ExportService
	var exportQueue *jobs.Queue
	if cfg.Exports.Enabled {
		exportStore, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
		if err != nil {
			logr.Sugar().Fatalw("failed to init export storage", "error", err)
		}
		signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
		exportRepo := repository.NewExportJobRepository(cfg.Data.Dir, logr)
		exportRepo.Collection().Observe(metrics.ObserveStoreOp)

		exportSvc = service.NewExportService(exportRepo, service.RegisterSources{
			Students:    studentRepo,
			Leave:       leaveRepo,
			Events:      eventRepo,
			Emergencies: emergencyRepo,
		}, exportStore, signer, validate, logr, service.ExportServiceConfig{
			ResultTTL:        cfg.Exports.SignedURLTTL,
			DownloadBasePath: cfg.APIPrefix + "/exports/download",
		})

		exportQueue = jobs.NewQueue("exports", exportSvc.Process, jobs.QueueConfig{
			Workers:    cfg.Exports.WorkerConcurrency,
			MaxRetries: cfg.Exports.WorkerRetries,
			Logger:     logr,
		})
		exportSvc.SetQueue(exportQueue)
		exportQueue.Start(ctx)
		defer exportQueue.Stop()

		exportSvc.RecoverPendingJobs(ctx)
		go runExportCleanup(ctx, exportSvc, cfg.Exports.CleanupInterval)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	registerRoutes(r, cfg, authSvc, studentSvc, leaveSvc, eventSvc, emergencySvc, auditSvc, exportSvc, metrics)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}

func registerRoutes(
	r *gin.Engine,
	cfg *config.Config,
	authSvc *service.AuthService,
	studentSvc *service.StudentService,
	leaveSvc *service.LeaveService,
	eventSvc *service.EventService,
	emergencySvc *service.EmergencyService,
	auditSvc *service.AuditService,
	exportSvc *service.ExportService,
	metrics *service.MetricsService,
) {
	authHandler := handler.NewAuthHandler(authSvc)
	studentHandler := handler.NewStudentHandler(studentSvc)
	leaveHandler := handler.NewLeaveHandler(leaveSvc, authSvc)
	eventHandler := handler.NewEventHandler(eventSvc, authSvc)
	emergencyHandler := handler.NewEmergencyHandler(emergencySvc, authSvc)
	metricsHandler := handler.NewMetricsHandler(metrics, cfg.Data.Dir)

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	requirePrincipal := middleware.RequirePrincipal(authSvc)
	api := r.Group(cfg.APIPrefix)

	students := api.Group("/students")
	students.POST("", middleware.Audit(auditSvc, models.AuditActionStudentRegister, "students"), studentHandler.Register)
	students.GET("", studentHandler.List)
	students.PUT("/:roll", middleware.Audit(auditSvc, models.AuditActionStudentUpdate, "students"), studentHandler.Update)
	students.DELETE("/:roll", middleware.Audit(auditSvc, models.AuditActionStudentDelete, "students"), studentHandler.Delete)

	principals := api.Group("/principals")
	principals.POST("", middleware.Audit(auditSvc, models.AuditActionPrincipalRegister, "principals"), authHandler.Register)
	principals.POST("/login", middleware.Audit(auditSvc, models.AuditActionPrincipalLogin, "principals"), authHandler.Login)

	leave := api.Group("/leave-requests")
	leave.POST("", middleware.Audit(auditSvc, models.AuditActionLeaveSubmit, "leave-requests"), leaveHandler.Submit)
	leave.GET("", leaveHandler.List)
	leave.PUT("/:id/status", requirePrincipal, middleware.Audit(auditSvc, models.AuditActionLeaveReview, "leave-requests"), leaveHandler.UpdateStatus)

	events := api.Group("/events")
	events.POST("", middleware.Audit(auditSvc, models.AuditActionEventSubmit, "events"), eventHandler.Submit)
	events.GET("", eventHandler.List)
	events.PATCH("/:id", requirePrincipal, middleware.Audit(auditSvc, models.AuditActionEventUpdate, "events"), eventHandler.Update)
	events.DELETE("/:id", requirePrincipal, middleware.Audit(auditSvc, models.AuditActionEventDelete, "events"), eventHandler.Delete)

	auditHandler := handler.NewAuditHandler(auditSvc)
	api.GET("/audit", requirePrincipal, auditHandler.List)

	emergencies := api.Group("/emergencies")
	emergencies.POST("", middleware.Audit(auditSvc, models.AuditActionEmergencySubmit, "emergencies"), emergencyHandler.Submit)
	emergencies.GET("", emergencyHandler.List)
	emergencies.PUT("/:id/status", requirePrincipal, middleware.Audit(auditSvc, models.AuditActionEmergencyReview, "emergencies"), emergencyHandler.UpdateStatus)

	if exportSvc != nil {
		exportHandler := handler.NewExportHandler(exportSvc)
		exports := api.Group("/exports")
		exports.GET("/download", exportHandler.Download)
		exports.POST("", requirePrincipal, middleware.Audit(auditSvc, models.AuditActionExportRequest, "exports"), exportHandler.Create)
		exports.GET("/:id", requirePrincipal, exportHandler.Status)
	}
}

func runExportCleanup(ctx context.Context, exportSvc *service.ExportService, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			exportSvc.CleanupExpired()
		}
	}
}
