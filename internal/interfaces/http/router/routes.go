// Package router 提供 HTTP 路由配置
package router

import (
	"github.com/gin-gonic/gin"

	"layr-ai-api/internal/interfaces/http/handler"
)

// RegisterV1Routes 注册 v1 版本路由
func RegisterV1Routes(v1 *gin.RouterGroup, planHandler *handler.PlanHandler, providerHandler *handler.ProviderHandler) {
	// 计划
	if planHandler != nil {
		plans := v1.Group("/plans")
		{
			plans.POST("", planHandler.GeneratePlan)
			plans.POST("/markdown", planHandler.GenerateMarkdown)
			plans.GET("", planHandler.ListPlans)
			plans.GET("/:id", planHandler.GetPlan)
			plans.GET("/:id/markdown", planHandler.GetPlanMarkdown)
		}
	}

	// provider
	if providerHandler != nil {
		providers := v1.Group("/providers")
		{
			providers.GET("", providerHandler.ListProviders)
			providers.POST("/:provider/validate", providerHandler.ValidateKey)
		}
	}
}

// RegisterRelayRoutes 注册中继路由；方法校验在处理器内完成
func RegisterRelayRoutes(api *gin.RouterGroup, relayHandler *handler.RelayHandler) {
	api.Any("/chat", relayHandler.Chat)
}
