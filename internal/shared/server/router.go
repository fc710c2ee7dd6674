package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/resumes"
	"resume-builder/internal/services/health"
	"resume-builder/internal/shared/config"
	"resume-builder/internal/shared/metrics"
	"resume-builder/internal/shared/server/middleware"
	"resume-builder/internal/shared/server/respond"
)

const generateRateLimitGroup = "GENERATE"

// RouterDeps holds handlers required by the router.
type RouterDeps struct {
	Config  config.Config
	Health  *health.Service
	Resumes *resumes.Handler
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Tracing(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)

	// Pages and the API draw from the same per-client budget.
	limiter := middleware.NewRateLimiter(nil)
	generateLimit := func(onLimited func(*gin.Context, time.Duration)) gin.HandlerFunc {
		return middleware.RateLimit(middleware.RateLimitConfig{
			DefaultGroup: generateRateLimitGroup,
			Limiter:      limiter,
			Rules: map[string]middleware.RateLimitRule{
				generateRateLimitGroup: middleware.PerMinute(deps.Config.GenerateRPM, deps.Config.GenerateBurst),
			},
			OnLimited: func(c *gin.Context, retryAfter time.Duration) {
				metrics.IncGeneration(metrics.OutcomeRateLimited)
				onLimited(c, retryAfter)
			},
		})
	}

	healthSvc := deps.Health
	if healthSvc == nil {
		healthSvc = health.NewService()
	}

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		status := healthSvc.Status(c.Request.Context())
		code := http.StatusOK
		if ok, _ := status["ok"].(bool); !ok {
			code = http.StatusServiceUnavailable
		}
		respond.JSON(c, code, status)
	})
	r.GET("/metrics", metrics.Handler())

	if deps.Resumes != nil {
		resumes.LoadTemplates(r)
		deps.Resumes.RegisterPages(r, generateLimit(deps.Resumes.RateLimitedPage))
		deps.Resumes.RegisterRoutes(api, generateLimit(middleware.RateLimitedJSON))
	}

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
