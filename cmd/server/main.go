package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "equiprent-backend/internal/api/http"
	"equiprent-backend/internal/config"
	"equiprent-backend/internal/jobs"
	"equiprent-backend/internal/live"
	"equiprent-backend/internal/logger"
	"equiprent-backend/internal/repository/postgres"
	"equiprent-backend/internal/scheduler"
	"equiprent-backend/internal/security"
	"equiprent-backend/internal/service"
	"equiprent-backend/internal/storage"

	_ "github.com/lib/pq"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting EquipRent Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress(), "environment", cfg.Server.Environment)
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)

	// Initialize Database
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Test database connection
	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	// Initialize Repositories
	store := postgres.NewStore(db)

	// Initialize Security
	tokenManager := security.NewTokenManager(cfg.JWT.Secret, int32(cfg.JWT.ExpiryHours))

	// Initialize Storage
	files, err := storage.NewLocalStorage(cfg.Storage.UploadDir, cfg.Storage.BaseURL)
	if err != nil {
		logger.Error("Failed to initialize file storage", "error", err)
		log.Fatalf("Failed to initialize file storage: %v", err)
	}
	logger.Info("File storage initialized", "upload_dir", cfg.Storage.UploadDir)

	// Initialize websocket hub
	hub := live.NewHub()
	go hub.Run()

	// Initialize Services
	emailSvc := service.NewEmailService(cfg.Email.APIKey, cfg.Email.From, cfg.Email.FromName)
	notificationSvc := service.NewNotificationService(store.NotificationRepository, hub)
	authSvc := service.NewAuthService(store.UserRepository, tokenManager, emailSvc, files)
	equipmentSvc := service.NewEquipmentService(store.EquipmentRepository, files)
	bookingSvc := service.NewBookingService(
		store.BookingRepository,
		store.EquipmentRepository,
		store.UserRepository,
		emailSvc,
		notificationSvc,
	)
	reviewSvc := service.NewReviewService(store.ReviewRepository, store.BookingRepository, notificationSvc)
	checklistSvc := service.NewChecklistService(
		store.ChecklistRepository,
		store.BookingRepository,
		store.EquipmentRepository,
		files,
	)
	logisticsSvc := service.NewLogisticsService(store.LogisticsRepository, store.BookingRepository, notificationSvc)
	adminSvc := service.NewAdminService(
		store.UserRepository,
		store.EquipmentRepository,
		store.BookingRepository,
		store.ReviewRepository,
		store.AdminLogRepository,
		emailSvc,
		notificationSvc,
	)

	// Initialize background jobs
	jobRunner := jobs.NewJobRunner(db, store, &jobs.Services{
		Email:         emailSvc,
		Notifications: notificationSvc,
	}, cfg)
	cronScheduler := scheduler.NewScheduler(jobRunner)
	cronScheduler.Start()

	// Set up HTTP server
	server := httpapi.NewServer(
		authSvc,
		equipmentSvc,
		bookingSvc,
		reviewSvc,
		notificationSvc,
		checklistSvc,
		logisticsSvc,
		adminSvc,
		hub,
		files,
		tokenManager,
		store.UserRepository,
	)

	httpServer := &http.Server{
		Addr:         cfg.GetServerAddress(),
		Handler:      server.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", "address", cfg.GetServerAddress())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down server...")
	cronScheduler.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}
	logger.Info("Server stopped. Goodbye!")
}
