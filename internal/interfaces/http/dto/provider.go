package dto

import "layr-ai-api/internal/application/planner"

// ProviderListResponse provider 列表
type ProviderListResponse struct {
	Providers []planner.ProviderInfo `json:"providers"`
}

// ValidateKeyRequest 凭证探测请求
type ValidateKeyRequest struct {
	APIKey string `json:"api_key" binding:"required"`
}

// ValidateKeyResponse 凭证探测结果
type ValidateKeyResponse struct {
	Provider string `json:"provider"`
	Valid    bool   `json:"valid"`
}
