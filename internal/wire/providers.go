// Package wire 提供依赖注入配置
package wire

import (
	"context"

	"layr-ai-api/internal/application/planner"
	"layr-ai-api/internal/application/relay"
	"layr-ai-api/internal/config"
	"layr-ai-api/internal/domain/repository"
	"layr-ai-api/internal/infrastructure/llm"
	"layr-ai-api/internal/infrastructure/persistence/postgres"
	"layr-ai-api/internal/infrastructure/persistence/redis"
	"layr-ai-api/internal/interfaces/http/handler"
	"layr-ai-api/internal/interfaces/http/middleware"
	"layr-ai-api/internal/interfaces/http/router"
	"layr-ai-api/pkg/logger"
)

// Version 注入到健康检查中的版本号
type Version string

// ProvidePostgresClientOptional 归档未启用时返回 nil；启用但不可达时启动失败
func ProvidePostgresClientOptional(ctx context.Context, cfg *config.Config) (*postgres.Client, func(), error) {
	if !cfg.Database.Postgres.Enabled {
		return nil, func() {}, nil
	}
	client, err := postgres.NewClient(ctx, &cfg.Database.Postgres)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		_ = client.Close()
	}
	return client, cleanup, nil
}

// ProvideRedisClientOptional Redis 只承担限流和缓存，不可达时降级运行
func ProvideRedisClientOptional(ctx context.Context, cfg *config.Config) (*redis.Client, func(), error) {
	if !cfg.Cache.Redis.Enabled {
		return nil, func() {}, nil
	}
	client, err := redis.NewClient(ctx, &cfg.Cache.Redis)
	if err != nil {
		logger.Warn(ctx, "redis not available, rate limiting and key check cache disabled", "error", err.Error())
		return nil, func() {}, nil
	}
	cleanup := func() {
		_ = client.Close()
	}
	return client, cleanup, nil
}

// ProvidePlanRepository 未启用归档时返回 nil 接口
func ProvidePlanRepository(client *postgres.Client) repository.PlanRepository {
	if client == nil {
		return nil
	}
	return postgres.NewPlanRepository(client)
}

// ProvideRateLimiter Redis 不可用时返回 nil 接口，中间件随之放行
func ProvideRateLimiter(client *redis.Client) middleware.RateLimiter {
	if client == nil {
		return nil
	}
	return redis.NewRateLimiter(client)
}

// ProvideKeyCheckCache Redis 不可用时不缓存
func ProvideKeyCheckCache(client *redis.Client, cfg *config.Config) planner.KeyCheckCache {
	if client == nil {
		return nil
	}
	return redis.NewKeyCheckCache(client, cfg.Cache.Redis.KeyCheckTTL)
}

// ProvideRegistry 提供 provider 注册表
func ProvideRegistry() *llm.Registry {
	return llm.NewRegistry()
}

// ProvidePlannerService 提供编排服务
func ProvidePlannerService(registry *llm.Registry, cfg *config.Config, repo repository.PlanRepository, cache planner.KeyCheckCache) *planner.Service {
	opts := make([]planner.Option, 0, 2)
	if repo != nil {
		opts = append(opts, planner.WithRepository(repo))
	}
	if cache != nil {
		opts = append(opts, planner.WithKeyCheckCache(cache))
	}
	return planner.NewService(registry, cfg.LLM, opts...)
}

// ProvideRelayService 提供中继服务
func ProvideRelayService(cfg *config.Config) *relay.Service {
	return relay.NewService(cfg.Relay)
}

// ProvideHealthHandler 提供健康检查处理器；Redis 为可选依赖
func ProvideHealthHandler(version Version, pg *postgres.Client, rdb *redis.Client) *handler.HealthHandler {
	pgDep := handler.Dependency{Name: "postgres"}
	if pg != nil {
		pgDep.Pinger = pg
	}
	redisDep := handler.Dependency{Name: "redis", Optional: true}
	if rdb != nil {
		redisDep.Pinger = rdb
	}
	return handler.NewHealthHandler(string(version), pgDep, redisDep)
}

// ProvideAPIHandlers 规划 API 的处理器集合
func ProvideAPIHandlers(health *handler.HealthHandler, plans *handler.PlanHandler, providers *handler.ProviderHandler) router.Handlers {
	return router.Handlers{Health: health, Plans: plans, Provider: providers}
}

// ProvideRelayHandlers 中继的处理器集合
func ProvideRelayHandlers(health *handler.HealthHandler, relayHandler *handler.RelayHandler) router.Handlers {
	return router.Handlers{Health: health, Relay: relayHandler}
}

// ProvideAPIRouterOptions 规划 API 的限流选项
func ProvideAPIRouterOptions(limiter middleware.RateLimiter) router.Options {
	return router.Options{Limiter: limiter, KeyFunc: redis.BuildRateLimitKey, Scope: "api"}
}

// ProvideRelayRouterOptions 中继的限流选项
func ProvideRelayRouterOptions(limiter middleware.RateLimiter) router.Options {
	return router.Options{Limiter: limiter, KeyFunc: redis.BuildRateLimitKey, Scope: "relay"}
}

// ProvidePostgresClientDisabled 中继不做归档
func ProvidePostgresClientDisabled() *postgres.Client {
	return nil
}
