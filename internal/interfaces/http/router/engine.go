package router

import (
	"github.com/agence/backoffice/internal/infrastructure/config"
	"github.com/agence/backoffice/internal/infrastructure/logger"
	"github.com/agence/backoffice/internal/infrastructure/metrics"
	"github.com/agence/backoffice/internal/interfaces/http/handler"
	"github.com/agence/backoffice/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// EngineOptions holds the collaborators of the HTTP engine
type EngineOptions struct {
	HTTP        config.HTTPConfig
	Logger      *zap.Logger
	Health      *handler.HealthHandler
	Metrics     *metrics.Collector // nil disables the metrics endpoint
	MetricsPath string
}

// NewEngine builds the gin engine with the global middleware stack and the
// unversioned operational endpoints. API routes are added through a Router.
func NewEngine(opts EngineOptions) *gin.Engine {
	engine := gin.New()

	if len(opts.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(opts.HTTP.TrustedProxies); err != nil {
			opts.Logger.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Order matters: the request id must exist before the logger reads it and
	// the metrics middleware must see the error code set by the handlers.
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(opts.Logger))
	engine.Use(logger.GinMiddleware(opts.Logger))
	if opts.Metrics != nil {
		engine.Use(opts.Metrics.GinMiddleware())
	}
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORS(middleware.CORSConfigFromHTTP(opts.HTTP)))
	engine.Use(middleware.BodyLimit(opts.HTTP.MaxBodySize))

	if opts.Health != nil {
		engine.GET("/health", opts.Health.Health)
	}
	if opts.Metrics != nil {
		path := opts.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		engine.GET(path, gin.WrapH(opts.Metrics.Handler()))
	}

	return engine
}
