// Package router 提供 HTTP 路由配置
package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"layr-ai-api/internal/config"
	"layr-ai-api/internal/interfaces/http/handler"
	"layr-ai-api/internal/interfaces/http/middleware"
)

// Handlers 路由依赖的处理器；为 nil 的处理器对应的路由不注册
type Handlers struct {
	Health   *handler.HealthHandler
	Plans    *handler.PlanHandler
	Provider *handler.ProviderHandler
	Relay    *handler.RelayHandler
}

// Options 路由选项
type Options struct {
	Limiter middleware.RateLimiter
	KeyFunc middleware.KeyFunc
	// Scope 限流命名空间
	Scope string
}

// Router HTTP 路由器
type Router struct {
	engine   *gin.Engine
	cfg      *config.Config
	handlers Handlers
	opts     Options
}

// New 创建新的路由器
func New(cfg *config.Config, handlers Handlers, opts Options) *Router {
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := &Router{
		engine:   gin.New(),
		cfg:      cfg,
		handlers: handlers,
		opts:     opts,
	}

	r.setupMiddleware()
	r.setupRoutes()

	return r
}

// Engine 返回 Gin Engine
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

// setupMiddleware 配置中间件
func (r *Router) setupMiddleware() {
	// 基础中间件
	r.engine.Use(middleware.Recovery())
	r.engine.Use(middleware.RequestID())

	r.engine.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins: r.cfg.Security.CORS.AllowedOrigins,
		AllowedMethods: r.cfg.Security.CORS.AllowedMethods,
		AllowedHeaders: r.cfg.Security.CORS.AllowedHeaders,
	}))

	probes := r.probePaths()
	if r.cfg.Observability.Tracing.Enabled {
		r.engine.Use(middleware.Trace(r.cfg.App.Name, probes...))
		r.engine.Use(middleware.TraceContext())
	}

	if r.cfg.Observability.Metrics.Enabled {
		r.engine.Use(middleware.Metrics(probes...))
	}

	r.engine.Use(middleware.AccessLog(probes...))
}

// probePaths 探活与指标抓取路径，不计入访问日志、指标和追踪
func (r *Router) probePaths() []string {
	return []string{"/health", "/live", "/ready", r.metricsPath()}
}

func (r *Router) metricsPath() string {
	if path := r.cfg.Observability.Metrics.Path; path != "" {
		return path
	}
	return "/metrics"
}

// setupRoutes 配置路由
func (r *Router) setupRoutes() {
	if h := r.handlers.Health; h != nil {
		r.engine.GET("/health", h.Health)
		r.engine.GET("/ready", h.Ready)
		r.engine.GET("/live", h.Live)
	}

	if r.cfg.Observability.Metrics.Enabled {
		r.engine.GET(r.metricsPath(), gin.WrapH(promhttp.Handler()))
	}

	limit := middleware.RateLimit(middleware.RateLimitConfig{
		Enabled:           r.cfg.Security.RateLimit.Enabled,
		RequestsPerWindow: r.cfg.Security.RateLimit.RequestsPerWindow,
		Window:            r.cfg.Security.RateLimit.Window,
		Scope:             r.opts.Scope,
	}, r.opts.Limiter, r.opts.KeyFunc)

	if r.handlers.Plans != nil || r.handlers.Provider != nil {
		RegisterV1Routes(r.engine.Group("/v1", limit), r.handlers.Plans, r.handlers.Provider)
	}
	if r.handlers.Relay != nil {
		RegisterRelayRoutes(r.engine.Group("/api", limit), r.handlers.Relay)
	}
}
