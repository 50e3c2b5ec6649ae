package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/ainews-backend/internal/http/handlers"
	httpMW "github.com/yungbote/ainews-backend/internal/http/middleware"
	"github.com/yungbote/ainews-backend/internal/observability"
	"github.com/yungbote/ainews-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	Metrics     *observability.Metrics
	ServiceName string
	CORSOrigins []string

	HealthHandler *httpH.HealthHandler
	RunHandler    *httpH.RunHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthz", cfg.HealthHandler.HealthCheck)
	}

	// Runs
	if cfg.RunHandler != nil {
		r.GET("/runs", cfg.RunHandler.ListRuns)
		r.GET("/runs/latest", cfg.RunHandler.GetLatest)
	}

	// Prometheus
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	return r
}
