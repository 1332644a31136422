package v1

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"skillmatch-backend/config"
	"skillmatch-backend/internal/delivery/http/middleware"
	"skillmatch-backend/internal/delivery/http/response"
	"skillmatch-backend/internal/domain"
	"skillmatch-backend/pkg/security"
)

// HealthChecker reports per-dependency status for /v1/health.
type HealthChecker interface {
	Check(ctx context.Context) (map[string]string, bool)
}

type RouterDeps struct {
	AuthUC         domain.AuthUsecase
	UserUC         domain.UserUsecase
	ConnectionUC   domain.ConnectionUsecase
	FeedUC         domain.FeedUsecase
	NotificationUC domain.NotificationUsecase
	JobUC          domain.JobUsecase
	ApplicationUC  domain.ApplicationUsecase
	ResumeMatchUC  domain.ResumeMatchUsecase
	HealthUC       HealthChecker
	Tokens         middleware.TokenParser
	SecLogger      *security.SecurityLogger
	RateLimiter    *middleware.RateLimiter
	Config         *config.Config
}

func NewRouter(deps RouterDeps) *gin.Engine {
	cfg := deps.Config

	r := gin.New()
	r.MaxMultipartMemory = 8 << 20

	// Global Middlewares
	r.Use(middleware.CORSMiddleware(cfg.FrontendURL, cfg.IsDevelopment())) // CORS must be first!
	r.Use(gin.Recovery())
	r.Use(gin.Logger())
	r.Use(middleware.RequestID())
	r.Use(middleware.SecurityHeadersMiddleware(strings.HasPrefix(cfg.FrontendURL, "https://")))
	r.Use(middleware.ErrorHandler(cfg.IsDevelopment()))

	window := cfg.RateLimitWindow()
	if deps.RateLimiter != nil {
		r.Use(deps.RateLimiter.Middleware(middleware.GlobalRateLimitConfig(cfg.RateLimitGlobalThreshold, window)))
	}

	if cfg.StorageDriver == "local" {
		r.Static("/uploads", cfg.UploadDir)
	}

	v1 := r.Group("/v1")

	v1.GET("/health", func(c *gin.Context) {
		status, healthy := deps.HealthUC.Check(c)
		if !healthy {
			c.JSON(http.StatusServiceUnavailable, response.Response{
				Success:   false,
				Message:   "System degraded",
				Data:      status,
				RequestID: c.GetString(response.RequestIDKey),
			})
			return
		}
		response.Success(c, http.StatusOK, "System operational", status)
	})

	if cfg.SwaggerEnabled {
		v1.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	authLimiter := func(c *gin.Context) { c.Next() }
	if deps.RateLimiter != nil {
		authLimiter = deps.RateLimiter.Middleware(middleware.AuthRateLimitConfig(cfg.RateLimitAuthThreshold, window))
	}

	// Protected routes
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(deps.Tokens, deps.AuthUC, deps.SecLogger))
	{
		NewAuthHandler(v1, protected, deps.AuthUC, authLimiter)
		NewUserHandler(protected, deps.UserUC)
		NewConnectionHandler(protected, deps.ConnectionUC)
		NewPostHandler(protected, deps.FeedUC)
		NewNotificationHandler(protected, deps.NotificationUC)
		NewJobHandler(protected, deps.JobUC)
		NewApplicationHandler(protected, deps.ApplicationUC)
		NewResumeMatchHandler(protected, deps.ResumeMatchUC)
	}

	return r
}
