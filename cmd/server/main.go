package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "gomate-backend/internal/api/http"
	"gomate-backend/internal/config"
	"gomate-backend/internal/logger"
	"gomate-backend/internal/repository/postgres"
	"gomate-backend/internal/security"
	"gomate-backend/internal/service"
	"gomate-backend/internal/storage"

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
	logger.Info("Starting GoMate Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress())
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)

	// Initialize Database
	logger.Debug("Connecting to database...", "connection_string", fmt.Sprintf("%s@%s:%d/%s", cfg.Database.User, cfg.Database.Host, cfg.Database.Port, cfg.Database.Database))
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
	tokenManager := security.NewTokenManager(
		cfg.JWT.Secret,
		time.Duration(cfg.JWT.AccessTokenExpiry)*time.Minute,
		time.Duration(cfg.JWT.RefreshTokenExpiry)*time.Minute,
	)

	// Initialize Storage Backend
	var backend storage.Backend
	var localBackend *storage.LocalBackend
	switch cfg.Storage.Type {
	case "", "local":
		logger.Info("Using local storage", "upload_dir", cfg.Storage.UploadDir)
		localBackend, err = storage.NewLocalBackend(cfg.Storage.BaseURL, cfg.Storage.UploadDir)
		if err != nil {
			logger.Error("Failed to initialize local storage", "error", err)
			log.Fatalf("Failed to initialize local storage: %v", err)
		}
		backend = localBackend
	case "firebase":
		logger.Info("Using firebase storage", "bucket", cfg.Storage.FirebaseBucket)
		backend, err = storage.NewFirebaseBackend(context.Background(), cfg.Storage.FirebaseBucket, cfg.Storage.CredentialsFile)
		if err != nil {
			logger.Error("Failed to initialize firebase storage", "error", err)
			log.Fatalf("Failed to initialize firebase storage: %v", err)
		}
	default:
		log.Fatalf("Unknown storage type: %s", cfg.Storage.Type)
	}

	// Initialize Services
	emailSvc := service.NewEmailService(cfg.Email.SendGridAPIKey, cfg.Email.FromEmail, cfg.Email.FromName)
	authSvc := service.NewAuthService(store.UserRepository, tokenManager)
	userSvc := service.NewUserService(store.UserRepository, backend, cfg.Storage.AllowedTypes)
	locationSvc := service.NewLocationService(store.LocationRepository)
	noteSvc := service.NewNotificationService(store.NotificationRepository)
	teamSvc := service.NewTeamService(
		store.TeamRepository,
		store.UserRepository,
		store.LocationRepository,
		store.NotificationRepository,
		emailSvc,
	)

	// Initialize Rate Limiters
	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	createLimiter := httpapi.NewLimiter(cfg.RateLimit.MaxTeamCreates, window)
	joinLimiter := httpapi.NewLimiter(cfg.RateLimit.MaxJoins, window)

	// Build the HTTP router
	router := httpapi.NewRouter(httpapi.RouterConfig{
		TokenManager:  tokenManager,
		AuthSvc:       authSvc,
		UserSvc:       userSvc,
		LocationSvc:   locationSvc,
		TeamSvc:       teamSvc,
		NoteSvc:       noteSvc,
		CreateLimiter: createLimiter,
		JoinLimiter:   joinLimiter,
		LocalStorage:  localBackend,
		AllowedTypes:  cfg.Storage.AllowedTypes,
	})

	srv := &http.Server{
		Addr:         cfg.GetServerAddress(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", "address", cfg.GetServerAddress())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", "error", err)
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Failed to shut down cleanly", "error", err)
	}
	logger.Info("Server stopped. Goodbye!")
}
