package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/kitengela/studio/internal/auth"
	"github.com/kitengela/studio/internal/background"
	"github.com/kitengela/studio/internal/config"
	"github.com/kitengela/studio/internal/database"
	"github.com/kitengela/studio/internal/handlers"
	middlewareCustom "github.com/kitengela/studio/internal/middleware"
	"github.com/kitengela/studio/internal/repositories"
	"github.com/kitengela/studio/internal/routes"
	"github.com/kitengela/studio/internal/services"
	"github.com/kitengela/studio/internal/storage"
	pkgauth "github.com/kitengela/studio/pkg/auth"
	pkglogger "github.com/kitengela/studio/pkg/logger"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger = pkglogger.New(os.Stdout, cfg.Server.LogLevel)
	slog.SetDefault(logger)
	logger.Info("configuration loaded", slog.String("env", cfg.Server.Env))

	// Initialize database
	db, err := database.NewConnection(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		err := db.Migrate(ctx)
		cancel()
		if err != nil {
			logger.Error("failed to apply migrations", slog.Any("error", err))
			os.Exit(1)
		}
	}

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	fileRepo := repositories.NewFileRepository(db)
	activityRepo := repositories.NewActivityLogRepository(db)
	backupRepo := repositories.NewBackupRepository(db)

	// Audit sink
	dispatcher := background.NewAuditDispatcher(activityRepo, logger, cfg.Audit.QueueSize)
	dispatcher.Start()
	auditService := services.NewAuditService(dispatcher, logger)

	// Initialize services
	hasher := pkgauth.NewHasher(cfg.Auth.BcryptCost)
	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenExpiry)
	authService := services.NewAuthService(userRepo, tokenManager, hasher, auditService, logger)

	// Bootstrap the admin account
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := authService.SeedAdmin(ctx, cfg.Auth.AdminName, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword); err != nil {
		logger.Error("failed to ensure admin user", slog.Any("error", err))
	}
	cancel()

	var notifier services.Notifier = services.NewLogNotifier(logger)
	if cfg.Email.Enabled {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		sesNotifier, err := services.NewSESNotifier(ctx, cfg.Email.AWSRegion, cfg.Email.FromAddress, cfg.Email.LoginURL, logger)
		cancel()
		if err != nil {
			logger.Error("failed to initialize email service", slog.Any("error", err))
			os.Exit(1)
		}
		notifier = sesNotifier
	}

	uploads, err := storage.NewDiskStore(cfg.Storage.UploadDir)
	if err != nil {
		logger.Error("failed to prepare upload directory", slog.Any("error", err))
		os.Exit(1)
	}
	fileBackups, err := storage.NewDiskStore(cfg.Storage.FileBackupDir)
	if err != nil {
		logger.Error("failed to prepare file backup directory", slog.Any("error", err))
		os.Exit(1)
	}
	fileService := services.NewFileService(fileRepo, uploads, fileBackups, auditService, logger)

	var offsite services.OffsiteUploader
	if cfg.Backup.S3Bucket != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		uploader, err := storage.NewS3Uploader(ctx, &cfg.Backup)
		cancel()
		if err != nil {
			logger.Error("failed to initialize offsite backup storage", slog.Any("error", err))
			os.Exit(1)
		}
		offsite = uploader
		logger.Info("offsite backups enabled", slog.String("bucket", uploader.Bucket()))
	}

	backupService, err := services.NewBackupService(backupRepo, services.ExecRunner{}, offsite, cfg.Database, cfg.Backup, auditService, logger)
	if err != nil {
		logger.Error("failed to initialize backup service", slog.Any("error", err))
		os.Exit(1)
	}

	adminService := services.NewAdminService(userRepo, fileRepo, activityRepo, backupRepo, notifier, auditService, logger)

	// Initialize cleanup manager
	cleanupManager := background.NewCleanupManager(activityRepo, logger, cfg.Audit.CleanupInterval, cfg.Audit.RetentionDays)

	// Setup router
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middlewareCustom.SecurityHeaders(middlewareCustom.SecurityHeadersConfig{Env: cfg.Server.Env}))
	router.Use(middlewareCustom.CORS(middlewareCustom.DefaultCORSConfig(cfg.Server.AllowedOrigins)))
	router.Use(middlewareCustom.RequestLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(cfg.Server.WriteTimeout))

	// Register routes
	routes.RegisterRoutes(router, routes.Handlers{
		Auth:   handlers.NewAuthHandler(authService),
		Files:  handlers.NewFileHandler(fileService, cfg.Storage.MaxUploadSize),
		Admin:  handlers.NewAdminHandler(adminService),
		Backup: handlers.NewBackupHandler(backupService),
		Health: handlers.NewHealthHandler(db),
	}, tokenManager, middlewareCustom.RateLimitConfig{RequestsPerMinute: cfg.Server.AuthRateLimit})

	// Create server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start cleanup task
	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	defer cleanupCancel()

	go cleanupManager.Start(cleanupCtx)

	// Start server
	go func() {
		logger.Info("starting server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
	}

	cleanupCancel()
	cleanupManager.Stop()

	if err := dispatcher.Stop(shutdownCtx); err != nil {
		logger.Warn("audit queue not fully drained",
			slog.Int("pending", dispatcher.Pending()),
			slog.Any("error", err))
	}

	logger.Info("server stopped gracefully", slog.Int64("audit_dropped", dispatcher.Dropped()))
}
