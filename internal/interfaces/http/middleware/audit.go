// Package middleware 提供 HTTP 中间件
package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"layr-ai-api/pkg/logger"
)

// AccessLog 访问日志中间件；skipPaths 中的探活类路径不记录
func AccessLog(skipPaths ...string) gin.HandlerFunc {
	skip := pathSet(skipPaths)
	return func(c *gin.Context) {
		if _, ok := skip[c.Request.URL.Path]; ok {
			c.Next()
			return
		}
		start := time.Now()

		c.Next()

		status := c.Writer.Status()
		args := []any{
			"method", c.Request.Method,
			"route", routeOf(c),
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
			"body_size", c.Writer.Size(),
			"user_agent", c.Request.UserAgent(),
		}
		if provider := c.Param("provider"); provider != "" {
			args = append(args, "provider", provider)
		}
		if len(c.Errors) > 0 {
			args = append(args, "errors", c.Errors.String())
		}

		switch {
		case status >= http.StatusInternalServerError:
			logger.Warn(c.Request.Context(), "api request failed", args...)
		default:
			logger.Info(c.Request.Context(), "api request", args...)
		}
	}
}

// routeOf 优先使用路由模板，避免计划 ID 之类的路径参数放大基数
func routeOf(c *gin.Context) string {
	if route := c.FullPath(); route != "" {
		return route
	}
	return "unmatched"
}

func pathSet(paths []string) map[string]struct{} {
	set := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		if p != "" {
			set[p] = struct{}{}
		}
	}
	return set
}
