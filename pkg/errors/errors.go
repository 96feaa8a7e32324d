// Package errors 提供统一的错误定义
//
// 错误以封闭的 Kind 标签区分，调用方通过 KindOf 分支处理，
// 而不是依赖具体的错误类型。
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// Kind 错误类别
type Kind string

// 预定义错误类别
const (
	// 规划核心错误
	KindAPIKeyMissing       Kind = "api_key_missing"
	KindAIService           Kind = "ai_service"
	KindUnsupportedProvider Kind = "unsupported_provider"

	// 通用错误
	KindUnknown            Kind = "unknown"
	KindInvalidParam       Kind = "invalid_param"
	KindNotFound           Kind = "not_found"
	KindTooManyRequests    Kind = "too_many_requests"
	KindInternal           Kind = "internal"
	KindServiceUnavailable Kind = "service_unavailable"
)

// ErrorCode 错误码类型
type ErrorCode string

// 预定义错误码
const (
	// 通用错误 (1xxx)
	CodeUnknown            ErrorCode = "1000"
	CodeInvalidParam       ErrorCode = "1001"
	CodeNotFound           ErrorCode = "1004"
	CodeTooManyRequests    ErrorCode = "1006"
	CodeInternalError      ErrorCode = "1007"
	CodeServiceUnavailable ErrorCode = "1008"

	// 规划错误 (4xxx)
	CodeAPIKeyMissing       ErrorCode = "4001"
	CodeAIService           ErrorCode = "4002"
	CodeUnsupportedProvider ErrorCode = "4003"
)

// AppError 应用错误
type AppError struct {
	Kind       Kind      `json:"kind"`
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	Provider   string    `json:"provider,omitempty"`
	Detail     string    `json:"detail,omitempty"`
	HTTPStatus int       `json:"-"`
	Err        error     `json:"-"`
}

// Error 实现 error 接口，消息原样返回给最终用户
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap 返回底层错误
func (e *AppError) Unwrap() error {
	return e.Err
}

// New 创建新的应用错误
func New(kind Kind, message string) *AppError {
	return &AppError{
		Kind:       kind,
		Code:       kindToCode(kind),
		Message:    message,
		HTTPStatus: kindToHTTPStatus(kind),
	}
}

// Wrap 包装错误
func Wrap(err error, kind Kind, message string) *AppError {
	e := New(kind, message)
	e.Err = err
	return e
}

// NewAPIKeyMissing 所选 provider 未配置可用凭证
func NewAPIKeyMissing(provider string) *AppError {
	e := New(KindAPIKeyMissing, fmt.Sprintf("API key is not configured for %s. Please set a valid API key and try again.", provider))
	e.Provider = provider
	return e
}

// NewAIService 远程调用失败；cause 可为 nil
func NewAIService(provider, message string, cause error) *AppError {
	e := New(KindAIService, message)
	e.Provider = provider
	e.Err = cause
	return e
}

// NewUnsupportedProvider 未知的 provider 标识
func NewUnsupportedProvider(providerType string) *AppError {
	e := New(KindUnsupportedProvider, fmt.Sprintf("Unsupported AI provider: %s", providerType))
	e.Provider = providerType
	return e
}

// NewInvalidParam 参数错误
func NewInvalidParam(message string) *AppError {
	return New(KindInvalidParam, message)
}

// kindToCode 类别转错误码
func kindToCode(kind Kind) ErrorCode {
	switch kind {
	case KindAPIKeyMissing:
		return CodeAPIKeyMissing
	case KindAIService:
		return CodeAIService
	case KindUnsupportedProvider:
		return CodeUnsupportedProvider
	case KindInvalidParam:
		return CodeInvalidParam
	case KindNotFound:
		return CodeNotFound
	case KindTooManyRequests:
		return CodeTooManyRequests
	case KindInternal:
		return CodeInternalError
	case KindServiceUnavailable:
		return CodeServiceUnavailable
	default:
		return CodeUnknown
	}
}

// kindToHTTPStatus 类别转 HTTP 状态码
func kindToHTTPStatus(kind Kind) int {
	switch kind {
	case KindInvalidParam, KindUnsupportedProvider:
		return http.StatusBadRequest
	case KindAPIKeyMissing:
		return http.StatusPreconditionFailed
	case KindAIService:
		return http.StatusBadGateway
	case KindNotFound:
		return http.StatusNotFound
	case KindTooManyRequests:
		return http.StatusTooManyRequests
	case KindServiceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// IsAppError 检查错误链中是否存在 AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// AsAppError 将错误转换为 AppError
func AsAppError(err error) *AppError {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return Wrap(err, KindUnknown, "unknown error")
}

// KindOf 返回错误类别；nil 返回空字符串
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindUnknown
}

// Is 判断错误是否属于指定类别
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
