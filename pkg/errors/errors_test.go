package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		err  error
		want Kind
	}{
		"nil":                  {err: nil, want: ""},
		"api key missing":      {err: NewAPIKeyMissing("openai"), want: KindAPIKeyMissing},
		"ai service":           {err: NewAIService("claude", "boom", nil), want: KindAIService},
		"unsupported provider": {err: NewUnsupportedProvider("llama"), want: KindUnsupportedProvider},
		"wrapped app error":    {err: fmt.Errorf("outer: %w", NewAIService("gemini", "x", nil)), want: KindAIService},
		"plain error":          {err: stderrors.New("plain"), want: KindUnknown},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestHTTPStatus(t *testing.T) {
	t.Parallel()

	assert.Equal(t, http.StatusPreconditionFailed, NewAPIKeyMissing("openai").HTTPStatus)
	assert.Equal(t, http.StatusBadGateway, NewAIService("openai", "x", nil).HTTPStatus)
	assert.Equal(t, http.StatusBadRequest, NewUnsupportedProvider("x").HTTPStatus)
	assert.Equal(t, http.StatusBadRequest, NewInvalidParam("x").HTTPStatus)
	assert.Equal(t, http.StatusInternalServerError, New(KindUnknown, "x").HTTPStatus)
}

func TestAIServiceKeepsCause(t *testing.T) {
	t.Parallel()

	cause := stderrors.New("connection refused")
	err := NewAIService("openai", "Failed to generate plan with OpenAI", cause)

	require.ErrorIs(t, err, cause)
	assert.Equal(t, "Failed to generate plan with OpenAI: connection refused", err.Error())
	assert.Equal(t, "openai", err.Provider)
}

func TestMessageIsVerbatim(t *testing.T) {
	t.Parallel()

	err := NewUnsupportedProvider("mistral")
	assert.Equal(t, "Unsupported AI provider: mistral", err.Error())
	assert.Equal(t, CodeUnsupportedProvider, err.Code)
}

func TestAsAppError(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("ctx: %w", NewAPIKeyMissing("gemini"))
	appErr := AsAppError(wrapped)
	assert.Equal(t, KindAPIKeyMissing, appErr.Kind)
	assert.True(t, IsAppError(wrapped))

	plain := AsAppError(stderrors.New("plain"))
	assert.Equal(t, KindUnknown, plain.Kind)
	assert.False(t, IsAppError(stderrors.New("plain")))
	assert.True(t, Is(wrapped, KindAPIKeyMissing))
	assert.False(t, Is(nil, KindAPIKeyMissing))
}
