package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"layr-ai-api/pkg/errors"
	"layr-ai-api/pkg/logger"
)

// Recovery Panic 恢复中间件
// 响应体同时带 code/message（/v1 信封）和 error（/api/chat 中继格式）。
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			logger.Error(c.Request.Context(), "panic recovered",
				fmt.Errorf("%v", rec),
				"stack", string(debug.Stack()),
				"route", routeOf(c),
				"method", c.Request.Method,
			)

			body := gin.H{
				"code":    errors.CodeInternalError,
				"message": "internal server error",
				"error":   "Internal server error",
			}
			if id := RequestIDFrom(c); id != "" {
				body["request_id"] = id
			}
			if c.Writer.Written() {
				c.Abort()
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, body)
		}()

		c.Next()
	}
}
