package llm

import (
	"net/http"
	"sync"

	"layr-ai-api/pkg/errors"
)

// Constructor 根据配置构造 provider
type Constructor func(cfg ProviderConfig, client *http.Client) (Provider, error)

type cacheKey struct {
	typ ProviderType
	cfg ProviderConfig
}

// Registry 管理 provider 构造函数，并按 (类型, 配置) 缓存实例
type Registry struct {
	client       *http.Client
	order        []ProviderType
	constructors map[ProviderType]Constructor
	instances    map[cacheKey]Provider
	mu           sync.RWMutex
}

// RegistryOption 注册表选项
type RegistryOption func(*Registry)

// WithHTTPClient 指定共享的 HTTP 客户端
func WithHTTPClient(client *http.Client) RegistryOption {
	return func(r *Registry) {
		if client != nil {
			r.client = client
		}
	}
}

// NewRegistry 创建注册表，预置 gemini、openai、claude、groq
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		client:       &http.Client{},
		constructors: make(map[ProviderType]Constructor),
		instances:    make(map[cacheKey]Provider),
	}
	for _, opt := range opts {
		opt(r)
	}

	r.Register(ProviderGemini, NewGeminiProvider)
	r.Register(ProviderOpenAI, NewOpenAIProvider)
	r.Register(ProviderClaude, NewClaudeProvider)
	r.Register(ProviderGroq, NewGroqProvider)
	return r
}

// Register 注册或替换构造函数，替换时清空该类型的缓存实例
func (r *Registry) Register(typ ProviderType, ctor Constructor) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.constructors[typ]; !exists {
		r.order = append(r.order, typ)
	}
	r.constructors[typ] = ctor
	for key := range r.instances {
		if key.typ == typ {
			delete(r.instances, key)
		}
	}
}

// Create 获取 provider，同一 (类型, 配置) 只构造一次
func (r *Registry) Create(typ ProviderType, cfg ProviderConfig) (Provider, error) {
	key := cacheKey{typ: typ, cfg: cfg}

	r.mu.RLock()
	ctor, known := r.constructors[typ]
	p, ok := r.instances[key]
	r.mu.RUnlock()
	if !known {
		return nil, errors.NewUnsupportedProvider(string(typ))
	}
	if ok {
		return p, nil
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// 惰性构造
	r.mu.Lock()
	defer r.mu.Unlock()

	// 再次检查防止竞态
	if p, ok = r.instances[key]; ok {
		return p, nil
	}
	if ctor, known = r.constructors[typ]; !known {
		return nil, errors.NewUnsupportedProvider(string(typ))
	}

	p, err := ctor(cfg, r.client)
	if err != nil {
		return nil, errors.Wrap(err, errors.KindInternal, "failed to create provider "+string(typ))
	}
	r.instances[key] = p
	return p, nil
}

// SupportedProviders 按注册顺序返回 provider 标识
func (r *Registry) SupportedProviders() []ProviderType {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]ProviderType, len(r.order))
	copy(out, r.order)
	return out
}
