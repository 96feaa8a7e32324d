package handler

import (
	"context"
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"layr-ai-api/internal/application/relay"
	"layr-ai-api/internal/interfaces/http/dto"
	"layr-ai-api/pkg/logger"
)

// RelayService 中继处理器依赖的能力，由 relay.Service 实现
type RelayService interface {
	Chat(ctx context.Context, req relay.ChatRequest) (*relay.ChatResult, error)
}

var _ RelayService = (*relay.Service)(nil)

// RelayHandler 中继处理器，响应格式与已发布插件的约定保持一致
type RelayHandler struct {
	relay RelayService
}

// NewRelayHandler 创建中继处理器
func NewRelayHandler(svc RelayService) *RelayHandler {
	return &RelayHandler{relay: svc}
}

// Chat 中继入口
// @Summary 中继到上游 chat completions
// @Tags Relay
// @Accept json
// @Produce json
// @Param body body dto.RelayChatRequest true "提示词"
// @Success 200 {object} dto.RelayChatResponse
// @Failure 400 {object} dto.RelayErrorResponse
// @Failure 405 {object} dto.RelayErrorResponse
// @Failure 500 {object} dto.RelayErrorResponse
// @Router /api/chat [post]
func (h *RelayHandler) Chat(c *gin.Context) {
	switch c.Request.Method {
	case http.MethodOptions:
		c.Status(http.StatusOK)
		return
	case http.MethodPost:
	default:
		c.JSON(http.StatusMethodNotAllowed, dto.RelayErrorResponse{Error: "Method not allowed"})
		return
	}

	ctx := c.Request.Context()

	var req dto.RelayChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.RelayErrorResponse{Error: "Prompt is required"})
		return
	}
	prompt, err := relay.ParsePrompt(req.Prompt)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.RelayErrorResponse{Error: "Prompt is required"})
		return
	}

	result, err := h.relay.Chat(ctx, relay.ChatRequest{
		Prompt:    prompt,
		Model:     req.Model,
		MaxTokens: req.MaxTokens,
	})
	if err != nil {
		var upErr *relay.UpstreamError
		switch {
		case stderrors.Is(err, relay.ErrNotConfigured):
			c.JSON(http.StatusInternalServerError, dto.RelayErrorResponse{Error: "API configuration error"})
		case stderrors.As(err, &upErr):
			c.JSON(upErr.StatusCode, dto.RelayErrorResponse{Error: "AI service error", Details: upErr.Details})
		default:
			logger.Error(ctx, "relay request failed", err)
			c.JSON(http.StatusInternalServerError, dto.RelayErrorResponse{Error: "Internal server error", Message: err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, dto.RelayChatResponse{
		Success: true,
		Content: result.Content,
		Usage:   result.Usage,
	})
}
