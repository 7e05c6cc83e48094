package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"tour-booking/internal/config"
	"tour-booking/internal/credential"
	"tour-booking/internal/infrastructure/database/postgres"
	storage "tour-booking/internal/infrastructure/storage/s3"
	"tour-booking/internal/logger"
	"tour-booking/internal/middleware"
	"tour-booking/internal/notifier"
	"tour-booking/internal/realtime"
	"tour-booking/internal/routes"
	"tour-booking/internal/usecase/auth"
	"tour-booking/internal/usecase/booking"
	"tour-booking/internal/usecase/review"
	"tour-booking/internal/usecase/tour"
	"tour-booking/internal/usecase/user"
	"tour-booking/pkg/mqtt"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("Failed to load configuration: " + err.Error() + "\n")
		os.Exit(1)
	}

	env := cfg.Server.Environment
	if env == "" {
		env = "development"
	}
	if err := logger.Init(env); err != nil {
		os.Stderr.WriteString("Failed to initialize logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("environment", env),
	)

	if cfg.Database.Host == "" || cfg.Database.DBName == "" {
		logger.Fatal("Database configuration is missing. Please set DB_HOST and DB_NAME environment variables.")
	}
	if cfg.JWT.Secret == "" {
		logger.Fatal("JWT secret is missing. Please set JWT_SECRET environment variable.")
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	db, err := postgres.NewDB(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", zap.Error(err))
		}
	}()

	if cfg.Database.MigrateOnStart {
		if err := db.Migrate(ctx); err != nil {
			logger.Fatal("Failed to apply migrations", zap.Error(err))
		}
	}

	userRepository, err := postgres.NewUserRepository(db)
	if err != nil {
		logger.Fatal("Failed to build user repository", zap.Error(err))
	}
	tourRepository, err := postgres.NewTourRepository(db)
	if err != nil {
		logger.Fatal("Failed to build tour repository", zap.Error(err))
	}
	reviewRepository, err := postgres.NewReviewRepository(db)
	if err != nil {
		logger.Fatal("Failed to build review repository", zap.Error(err))
	}
	bookingRepository, err := postgres.NewBookingRepository(db)
	if err != nil {
		logger.Fatal("Failed to build booking repository", zap.Error(err))
	}

	codec, err := credential.NewCodec(cfg.JWT)
	if err != nil {
		logger.Fatal("Failed to build credential codec", zap.Error(err))
	}

	var broker *mqtt.Client
	var publisher notifier.Publisher
	if cfg.Notifier.Driver == "mqtt" {
		broker = mqtt.NewClient(mqtt.FromConfig(cfg.MQTT))
		if err := broker.Connect(); err != nil {
			logger.Fatal("Failed to connect to MQTT broker", zap.Error(err))
		}
		defer broker.Disconnect()
		publisher = broker
	}

	mailer, err := notifier.New(cfg, publisher)
	if err != nil {
		logger.Fatal("Failed to build notifier", zap.Error(err))
	}

	var userUploads user.Presigner
	var tourUploads tour.Presigner
	if cfg.S3.Bucket != "" {
		presigner, err := storage.NewFilePresigner(ctx, cfg.S3)
		if err != nil {
			logger.Fatal("Failed to build S3 presigner", zap.Error(err))
		}
		userUploads, tourUploads = presigner, presigner
	} else {
		logger.Warn("S3 bucket is not configured, uploads are disabled")
	}

	hub := realtime.NewHub(cfg.CORS.AllowedOrigins)

	limiter := middleware.NewRateLimiter(cfg.RateLimit.GeneralRPS, cfg.RateLimit.GeneralBurst)
	defer limiter.Close()

	maxLimit := cfg.Pagination.MaxLimit
	userService := user.NewService(userRepository, codec, mailer, userUploads, cfg)
	tourService := tour.NewService(tourRepository, tourUploads, maxLimit)

	// Start token cleanup job
	cleanup, err := userService.StartTokenCleanupJob(ctx, cfg.Jobs.TokenCleanupSchedule)
	if err != nil {
		logger.Fatal("Failed to schedule token cleanup", zap.Error(err))
	}

	router, err := routes.SetupRoutes(cfg, &routes.Services{
		Gate:     auth.NewGate(codec, userRepository),
		Users:    userService,
		Admin:    user.NewAdminService(userRepository, maxLimit),
		Tours:    tourService,
		Reviews:  review.NewService(reviewRepository, tourRepository, maxLimit),
		Bookings: booking.NewService(bookingRepository, tourRepository, hub, maxLimit),
		Live:     hub,
		Limiter:  limiter,
		Health:   db.Health,
	})
	if err != nil {
		logger.Fatal("Failed to set up routes", zap.Error(err))
	}

	host := cfg.Server.Host
	if host == "" {
		host = "0.0.0.0"
	}
	port := cfg.Server.Port
	if port == "" {
		port = "8080"
	}
	addr := net.JoinHostPort(host, port)

	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start goroutine
	go func() {
		logger.Info("Server starting",
			zap.String("address", addr),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutdown Server ...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	stop()
	<-cleanup.Stop().Done()
	hub.Close()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Failed to shutdown server", zap.Error(err))
	}

	log.Println("Server exited properly")
}
