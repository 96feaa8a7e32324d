package dto

import "encoding/json"

// RelayChatRequest 中继请求；prompt 可以是字符串或 {systemPrompt, userPrompt}
type RelayChatRequest struct {
	Prompt    json.RawMessage `json:"prompt"`
	Model     string          `json:"model"`
	MaxTokens int             `json:"maxTokens"`
}

// RelayChatResponse 中继成功响应
type RelayChatResponse struct {
	Success bool            `json:"success"`
	Content string          `json:"content"`
	Usage   json.RawMessage `json:"usage,omitempty"`
}

// RelayErrorResponse 中继错误响应
type RelayErrorResponse struct {
	Error   string          `json:"error"`
	Details json.RawMessage `json:"details,omitempty"`
	Message string          `json:"message,omitempty"`
}
