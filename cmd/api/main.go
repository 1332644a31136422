package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"skillmatch-backend/config"
	_ "skillmatch-backend/docs" // Important for Swagger
	"skillmatch-backend/internal/delivery/http/middleware"
	v1 "skillmatch-backend/internal/delivery/http/v1"
	"skillmatch-backend/internal/domain"
	"skillmatch-backend/internal/repository/postgres"
	"skillmatch-backend/internal/usecase"
	"skillmatch-backend/pkg/aiclient"
	"skillmatch-backend/pkg/auth"
	"skillmatch-backend/pkg/database"
	"skillmatch-backend/pkg/email"
	"skillmatch-backend/pkg/logger"
	"skillmatch-backend/pkg/redis"
	"skillmatch-backend/pkg/security"
	"skillmatch-backend/pkg/storage"
	"skillmatch-backend/pkg/validation"
)

// @title           SkillMatch API
// @version         1.0
// @description     Professional networking and job board backend.
// @host            localhost:8080
// @BasePath        /v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Setup Loggers
	logger.Init(cfg.LogLevel)
	logger.Log.Info("Starting skillmatch backend", "port", cfg.Port, "env", cfg.AppEnv)
	secLogger := security.InitSecurityLogger("skillmatch-backend", cfg.AppEnv)
	defer secLogger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. Setup Database
	dbPool, err := database.NewPostgresPool(ctx, cfg.DBUrl, database.PoolOptions{})
	if err != nil {
		logger.Log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	// 4. Setup Redis (optional)
	redisClient, err := redis.Connect(ctx, redis.Config{URL: cfg.UpstashRedisURL, Password: cfg.UpstashRedisPassword})
	switch {
	case errors.Is(err, redis.ErrNotConfigured):
		redisClient = nil
	case err != nil:
		logger.Log.Warn("Redis unavailable, rate limiting falls back to memory", "error", err)
		redisClient = nil
	default:
		defer redisClient.Close()
	}

	// 5. Setup Storage, Mail and the analysis client
	fileStorage, err := newStorage(ctx, cfg)
	if err != nil {
		logger.Log.Error("Failed to initialize file storage", "driver", cfg.StorageDriver, "error", err)
		os.Exit(1)
	}

	mailer, closeMailer, err := newMailer(cfg)
	if err != nil {
		logger.Log.Error("Failed to initialize mailer", "transport", cfg.MailTransport, "error", err)
		os.Exit(1)
	}
	defer closeMailer()

	analyzer := aiclient.New(cfg.AIServiceURL, cfg.AIServiceTimeout())

	// 6. Setup Repositories
	userRepo := postgres.NewUserRepository(dbPool)
	profileRepo := postgres.NewProfileRepository(dbPool)
	connRepo := postgres.NewConnectionRepository(dbPool)
	postRepo := postgres.NewPostRepository(dbPool)
	notificationRepo := postgres.NewNotificationRepository(dbPool)
	jobRepo := postgres.NewJobRepository(dbPool)
	applicationRepo := postgres.NewApplicationRepository(dbPool)

	// 7. Setup UseCases
	validate := validation.New()
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTExpiry())

	notificationUC := usecase.NewNotificationUsecase(notificationRepo, connRepo)
	authUC := usecase.NewAuthUsecase(userRepo, tokens, validate, secLogger)
	userUC := usecase.NewUserUsecase(userRepo, profileRepo, fileStorage, validate, secLogger)
	connectionUC := usecase.NewConnectionUsecase(connRepo, userRepo, profileRepo, notificationUC)
	feedUC := usecase.NewFeedUsecase(postRepo, connRepo, fileStorage, notificationUC)
	jobUC := usecase.NewJobUsecase(jobRepo, validate, notificationUC)
	applicationUC := usecase.NewApplicationUsecase(applicationRepo, jobRepo, fileStorage, mailer, notificationUC)
	resumeMatchUC := usecase.NewResumeMatchUsecase(analyzer)

	checks := map[string]usecase.Pinger{"database": dbPool}
	if redisClient != nil {
		checks["redis"] = redisPinger{client: redisClient}
	}
	healthUC := usecase.NewHealthUsecase(checks)

	rateLimiter := middleware.NewRateLimiter(redisClient, secLogger)
	go rateLimiter.RunCleanup(ctx, 10*time.Minute)

	// 8. Setup Router
	router := v1.NewRouter(v1.RouterDeps{
		AuthUC:         authUC,
		UserUC:         userUC,
		ConnectionUC:   connectionUC,
		FeedUC:         feedUC,
		NotificationUC: notificationUC,
		JobUC:          jobUC,
		ApplicationUC:  applicationUC,
		ResumeMatchUC:  resumeMatchUC,
		HealthUC:       healthUC,
		Tokens:         tokens,
		SecLogger:      secLogger,
		RateLimiter:    rateLimiter,
		Config:         cfg,
	})

	// 9. Start Server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		// resume analysis can take up to the AI timeout
		WriteTimeout: cfg.AIServiceTimeout() + 15*time.Second,
		IdleTimeout:  2 * time.Minute,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Error("Listen failed", "error", err)
			stop()
		}
	}()

	// Graceful Shutdown
	<-ctx.Done()
	logger.Log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}

	logger.Log.Info("Server exiting")
}

type redisPinger struct {
	client *goredis.Client
}

func (p redisPinger) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

func newStorage(ctx context.Context, cfg *config.Config) (domain.FileStorage, error) {
	if cfg.StorageDriver == "s3" {
		return storage.NewS3Storage(ctx, storage.S3Config{
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			Region:          cfg.S3Region,
			Bucket:          cfg.S3Bucket,
			Endpoint:        cfg.S3Endpoint,
		})
	}
	return storage.NewLocalStorage(cfg.UploadDir)
}

// newMailer returns the configured transport and its release func.
func newMailer(cfg *config.Config) (domain.Mailer, func(), error) {
	if cfg.MailTransport == "amqp" {
		q, err := email.NewQueueMailer(cfg.RabbitMQURL)
		if err != nil {
			return nil, nil, err
		}
		return q, func() { _ = q.Close() }, nil
	}

	smtpMailer := email.NewSMTPMailer(cfg)
	if !smtpMailer.IsConfigured() {
		logger.Log.Warn("SMTP not fully configured - application status emails will fail")
	}
	return smtpMailer, func() {}, nil
}
