// Package redis 提供凭证探测结果缓存
package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	stderrors "errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"
)

var cacheTracer = otel.Tracer("redis.cache")

// defaultCheckTimeout 合并后的探测不再跟随任何单个调用方取消，由它兜底
const defaultCheckTimeout = 30 * time.Second

// KeyCheckCache 缓存 ValidateAPIKey 的结果，凭证本身只以摘要形式出现在键中
type KeyCheckCache struct {
	client       *Client
	ttl          time.Duration
	checkTimeout time.Duration
	group        singleflight.Group
}

// NewKeyCheckCache 创建缓存，ttl 为 0 时使用 10 分钟
func NewKeyCheckCache(client *Client, ttl time.Duration) *KeyCheckCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &KeyCheckCache{client: client, ttl: ttl, checkTimeout: defaultCheckTimeout}
}

// KeyCheckKey 构建缓存键
func KeyCheckKey(provider, apiKey string) string {
	sum := sha256.Sum256([]byte(provider + "\x00" + apiKey))
	return "keycheck:" + provider + ":" + hex.EncodeToString(sum[:])
}

// Remember 命中缓存直接返回，否则执行 probe，成功结果写回。
// 并发的相同探测通过 singleflight 合并；Redis 故障时退化为直接探测。
func (c *KeyCheckCache) Remember(ctx context.Context, provider, apiKey string, probe func(context.Context) bool) bool {
	key := KeyCheckKey(provider, apiKey)
	ctx, span := cacheTracer.Start(ctx, "cache.Remember",
		trace.WithAttributes(attribute.String("cache.provider", provider)))
	defer span.End()

	val, err := c.client.rdb.Get(ctx, key).Result()
	if err == nil {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		valid, _ := strconv.ParseBool(val)
		return valid
	}
	if !stderrors.Is(err, redis.Nil) {
		span.RecordError(err)
		return probe(ctx)
	}
	span.SetAttributes(attribute.Bool("cache.hit", false))

	result, _, shared := c.group.Do(key, func() (interface{}, error) {
		checkCtx, cancel := c.detach(ctx)
		defer cancel()

		valid := probe(checkCtx)
		if !valid {
			// 失败可能是瞬时网络问题，不缓存
			return false, nil
		}
		if err := c.client.rdb.Set(checkCtx, key, strconv.FormatBool(valid), c.ttl).Err(); err != nil {
			// 写入失败不影响返回结果
			span.RecordError(err)
		}
		return valid, nil
	})
	span.SetAttributes(attribute.Bool("cache.shared", shared))
	return result.(bool)
}

// detach 共享探测使用的 context：保留 trace 等值，但不随发起者取消
func (c *KeyCheckCache) detach(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), c.checkTimeout)
}

// Forget 删除缓存
func (c *KeyCheckCache) Forget(ctx context.Context, provider, apiKey string) error {
	return c.client.rdb.Del(ctx, KeyCheckKey(provider, apiKey)).Err()
}
