// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"layr-ai-api/internal/domain/repository"
)

// BindPage 从查询参数绑定分页，非法值按默认处理
func BindPage(c *gin.Context) repository.Pagination {
	return repository.NewPagination(
		parseIntWithDefault(c.Query("page"), 1),
		parseIntWithDefault(c.Query("page_size"), repository.DefaultPageSize),
	)
}

// parseIntWithDefault 解析整数，失败时返回默认值
func parseIntWithDefault(s string, defaultVal int) int {
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}

// BindPlanID 从 URI 绑定计划 ID
func BindPlanID(c *gin.Context) string {
	return c.Param("id")
}

// BindProvider 从 URI 绑定 provider 标识
func BindProvider(c *gin.Context) string {
	return c.Param("provider")
}
