package handler

import (
	"github.com/gin-gonic/gin"

	"layr-ai-api/internal/interfaces/http/dto"
)

// ProviderHandler provider 处理器
type ProviderHandler struct {
	providers ProviderService
}

// NewProviderHandler 创建 provider 处理器
func NewProviderHandler(providers ProviderService) *ProviderHandler {
	return &ProviderHandler{providers: providers}
}

// ListProviders 列出 provider
// @Summary 列出 AI provider
// @Tags Providers
// @Produce json
// @Success 200 {object} dto.Response[dto.ProviderListResponse]
// @Router /v1/providers [get]
func (h *ProviderHandler) ListProviders(c *gin.Context) {
	dto.Success(c, dto.ProviderListResponse{Providers: h.providers.Providers(c.Request.Context())})
}

// ValidateKey 探测凭证
// @Summary 探测 API key 是否可用
// @Tags Providers
// @Accept json
// @Produce json
// @Param provider path string true "provider 标识"
// @Param body body dto.ValidateKeyRequest true "凭证"
// @Success 200 {object} dto.Response[dto.ValidateKeyResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Router /v1/providers/{provider}/validate [post]
func (h *ProviderHandler) ValidateKey(c *gin.Context) {
	var req dto.ValidateKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	provider := dto.BindProvider(c)
	valid, err := h.providers.ValidateKey(c.Request.Context(), provider, req.APIKey)
	if err != nil {
		dto.AppError(c, err)
		return
	}
	dto.Success(c, dto.ValidateKeyResponse{Provider: provider, Valid: valid})
}
