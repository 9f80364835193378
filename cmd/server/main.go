package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/lexcase/lexcase-backend/config"
	"github.com/lexcase/lexcase-backend/internal/app/controller"
	"github.com/lexcase/lexcase-backend/internal/app/model"
	"github.com/lexcase/lexcase-backend/internal/app/repository"
	"github.com/lexcase/lexcase-backend/internal/app/service"
	"github.com/lexcase/lexcase-backend/internal/db"
	"github.com/lexcase/lexcase-backend/internal/middleware"
	"github.com/lexcase/lexcase-backend/internal/router"
	"github.com/lexcase/lexcase-backend/internal/scheduler"
	"github.com/lexcase/lexcase-backend/internal/storage"
	"github.com/lexcase/lexcase-backend/internal/websocket"
	"github.com/lexcase/lexcase-backend/pkg/logger"
	"github.com/lexcase/lexcase-backend/pkg/redis"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := "info"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      "console", // Use "json" for production
		EnableColor: true,
	})

	logger.Info("Starting LexCase Backend Server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	// Initialize database
	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	// Run migrations
	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	// Initialize Redis (optional; idempotency falls back to the database)
	if err := redis.Init(&cfg.Redis); err != nil {
		logger.Warn("Redis unavailable, continuing without fast-path idempotency", map[string]interface{}{
			"error": err.Error(),
		})
	}
	defer func() {
		if err := redis.Close(); err != nil {
			logger.Error("Failed to close Redis connection", err)
		}
	}()

	// Storage backends
	s3Storage := storage.NewS3Storage(
		cfg.Storage.S3.Region,
		cfg.Storage.S3.Bucket,
		cfg.Storage.S3.AccessKeyID,
		cfg.Storage.S3.SecretAccessKey,
		cfg.Storage.S3.BaseURL,
	)
	localStorage, err := storage.NewLocalStorage(cfg.Storage.LocalDir)
	if err != nil {
		logger.Fatal("Failed to initialize local storage", err)
	}
	storageRegistry := storage.NewRegistry(
		model.StorageBackendType(cfg.Storage.DefaultBackend),
		s3Storage,
		localStorage,
	)

	// WebSocket hub
	hub := websocket.NewHub()
	go hub.Run()

	// Initialize repositories
	userRepo := repository.NewUserRepository(db.GetDB())
	verificationRepo := repository.NewVerificationRepository(db.GetDB())
	caseRepo := repository.NewCaseRepository(db.GetDB())
	documentRepo := repository.NewDocumentRepository(db.GetDB())
	auditRepo := repository.NewAuditRepository(db.GetDB())
	notificationRepo := repository.NewNotificationRepository(db.GetDB())

	// Initialize services
	authService := service.NewAuthService(
		userRepo,
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	auditService := service.NewAuditService(auditRepo, cfg.Audit.MaxRetries)
	notificationService := service.NewNotificationService(notificationRepo, hub)
	dispatcher := service.NewSideEffectDispatcher(auditService, notificationService, cfg.Audit.AppendTimeout)
	verificationService := service.NewVerificationService(db.GetDB(), verificationRepo, dispatcher)
	documentService := service.NewDocumentService(documentRepo, storageRegistry)
	caseService := service.NewCaseService(caseRepo, verificationService, documentService, dispatcher)
	reconciliationService := service.NewReconciliationService(documentRepo, verificationRepo, dispatcher)
	aiService := service.NewAIService(cfg)

	// Reconciliation sweep
	reconciliationScheduler := scheduler.NewReconciliationScheduler(reconciliationService, cfg.Audit.ReconcileCron)
	if err := reconciliationScheduler.Start(); err != nil {
		logger.Fatal("Failed to start reconciliation scheduler", err)
	}
	defer reconciliationScheduler.Stop()

	// Initialize controllers
	authController := controller.NewAuthController(authService)
	verificationController := controller.NewVerificationController(verificationService)
	caseController := controller.NewCaseController(caseService, aiService)
	documentController := controller.NewDocumentController(documentService)
	notificationController := controller.NewNotificationController(notificationService)
	auditController := controller.NewAuditController(auditService)
	uploadController := controller.NewUploadController(s3Storage)
	wsController := controller.NewWebSocketController(hub)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret)

	// Setup router
	r := router.NewRouter(
		authController,
		verificationController,
		caseController,
		documentController,
		notificationController,
		auditController,
		uploadController,
		wsController,
		authMiddleware,
		cfg,
	)
	engine := r.Setup()

	// Start server in a goroutine
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server started successfully", map[string]interface{}{
			"address": addr,
			"pid":     os.Getpid(),
		})
		if err := engine.Run(addr); err != nil {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")
	logger.Info("Server stopped successfully")
}
