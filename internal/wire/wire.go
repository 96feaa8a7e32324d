//go:build wireinject
// +build wireinject

// Package wire 提供依赖注入配置
package wire

import (
	"context"

	"github.com/google/wire"

	"layr-ai-api/internal/application/planner"
	"layr-ai-api/internal/application/relay"
	"layr-ai-api/internal/config"
	"layr-ai-api/internal/interfaces/http/handler"
	"layr-ai-api/internal/interfaces/http/router"
)

// DataSet 数据层提供者集合
var DataSet = wire.NewSet(
	ProvidePostgresClientOptional,
	ProvideRedisClientOptional,
	ProvidePlanRepository,
	ProvideRateLimiter,
	ProvideKeyCheckCache,
)

// PlannerSet 规划服务提供者集合
var PlannerSet = wire.NewSet(
	ProvideRegistry,
	ProvidePlannerService,
	wire.Bind(new(handler.PlanService), new(*planner.Service)),
	wire.Bind(new(handler.ProviderService), new(*planner.Service)),
	handler.NewPlanHandler,
	handler.NewProviderHandler,
)

// RelaySet 中继提供者集合
var RelaySet = wire.NewSet(
	ProvideRelayService,
	wire.Bind(new(handler.RelayService), new(*relay.Service)),
	handler.NewRelayHandler,
)

// InitializeAPI 初始化规划 API（带路由器）
func InitializeAPI(ctx context.Context, cfg *config.Config, version Version) (*router.Router, func(), error) {
	wire.Build(
		DataSet,
		PlannerSet,
		ProvideHealthHandler,
		ProvideAPIHandlers,
		ProvideAPIRouterOptions,
		router.New,
	)
	return nil, nil, nil
}

// InitializeRelay 初始化中继服务（带路由器）
func InitializeRelay(ctx context.Context, cfg *config.Config, version Version) (*router.Router, func(), error) {
	wire.Build(
		ProvidePostgresClientDisabled,
		ProvideRedisClientOptional,
		ProvideRateLimiter,
		RelaySet,
		ProvideHealthHandler,
		ProvideRelayHandlers,
		ProvideRelayRouterOptions,
		router.New,
	)
	return nil, nil, nil
}
