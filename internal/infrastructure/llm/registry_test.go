package llm

import (
	"context"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"layr-ai-api/pkg/errors"
)

func TestRegistry_SupportedProvidersOrder(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	assert.Equal(t, []ProviderType{ProviderGemini, ProviderOpenAI, ProviderClaude, ProviderGroq}, r.SupportedProviders())
}

func TestRegistry_CreateUnknown(t *testing.T) {
	t.Parallel()

	_, err := NewRegistry().Create("mistral", ProviderConfig{})
	require.Error(t, err)
	assert.Equal(t, errors.KindUnsupportedProvider, errors.KindOf(err))
	assert.Equal(t, "Unsupported AI provider: mistral", err.Error())
}

func TestRegistry_CreateCachesPerConfig(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	cfg := ProviderConfig{APIKey: "sk-1"}

	a, err := r.Create(ProviderOpenAI, cfg)
	require.NoError(t, err)
	b, err := r.Create(ProviderOpenAI, cfg)
	require.NoError(t, err)
	assert.Same(t, a, b)

	c, err := r.Create(ProviderOpenAI, ProviderConfig{APIKey: "sk-2"})
	require.NoError(t, err)
	assert.NotSame(t, a, c)
}

func TestRegistry_CreateConcurrentConstructsOnce(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	var calls int
	var mu sync.Mutex
	r.Register("custom", func(cfg ProviderConfig, client *http.Client) (Provider, error) {
		mu.Lock()
		calls++
		mu.Unlock()
		return NewOpenAIProvider(cfg, client)
	})

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.Create("custom", ProviderConfig{APIKey: "k"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, calls)
	assert.Contains(t, r.SupportedProviders(), ProviderType("custom"))
}

func TestRegistry_CreateRejectsInvalidConfig(t *testing.T) {
	t.Parallel()

	tests := map[string]ProviderConfig{
		"temperature too high": {Temperature: 3},
		"negative max tokens":  {MaxTokens: -1},
		"malformed base url":   {BaseURL: "not a url"},
		"malformed relay url":  {RelayURL: "relay"},
	}

	for name, cfg := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := NewRegistry().Create(ProviderOpenAI, cfg)
			require.Error(t, err)
			assert.Equal(t, errors.KindInvalidParam, errors.KindOf(err))
		})
	}
}

func TestRegistry_PlaceholderRelayIsValidConfig(t *testing.T) {
	t.Parallel()

	p, err := NewRegistry().Create(ProviderGroq, ProviderConfig{RelayURL: RelayURLPlaceholder})
	require.NoError(t, err)
	assert.False(t, p.IsAvailable())
}

func TestRegistry_WithHTTPClient(t *testing.T) {
	t.Parallel()
	fb := newFakeBackend(t, http.StatusOK, `{"choices":[{"message":{"content":"ok"}}]}`)

	r := NewRegistry(WithHTTPClient(fb.server.Client()))
	p, err := r.Create(ProviderOpenAI, ProviderConfig{APIKey: "k", BaseURL: fb.server.URL})
	require.NoError(t, err)

	text, err := p.GeneratePlan(context.Background(), "prompt", GenerateOptions{})
	require.NoError(t, err)
	assert.Equal(t, "ok", text)
}

func TestParseProviderType(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		in      string
		want    ProviderType
		wantErr bool
	}{
		"lower":   {in: "openai", want: ProviderOpenAI},
		"mixed":   {in: " Claude ", want: ProviderClaude},
		"groq":    {in: "groq", want: ProviderGroq},
		"unknown": {in: "bard", wantErr: true},
		"empty":   {in: "", wantErr: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseProviderType(tt.in)
			if tt.wantErr {
				assert.Equal(t, errors.KindUnsupportedProvider, errors.KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
