package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"
)

// FeedTTL RSS 列表更新较快，单独用 30 分钟
const FeedTTL = 30 * time.Minute

// Gateway 在 Store 之上做 JSON 序列化和 TTL 策略。
// Get/Set 对存储故障"软失败"：记录日志后当作未命中/不写入，
// 管理类操作（Scan/Clear/Stats）则把错误返回给调用方。
type Gateway struct {
	store      Store
	defaultTTL time.Duration
}

func New(store Store, defaultTTL time.Duration) *Gateway {
	if defaultTTL <= 0 {
		defaultTTL = time.Hour
	}
	return &Gateway{store: store, defaultTTL: defaultTTL}
}

func (g *Gateway) DefaultTTL() time.Duration {
	return g.defaultTTL
}

// Get 命中时把值解码到 dest 并返回 true
func (g *Gateway) Get(ctx context.Context, key string, dest any) bool {
	bs, err := g.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			log.Printf("cache: get %s error: %v", key, err)
		}
		return false
	}
	if err := json.Unmarshal(bs, dest); err != nil {
		log.Printf("cache: decode %s error: %v", key, err)
		return false
	}
	return true
}

// Set ttl <= 0 时使用默认 TTL
func (g *Gateway) Set(ctx context.Context, key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		ttl = g.defaultTTL
	}
	bs, err := json.Marshal(value)
	if err != nil {
		log.Printf("cache: encode %s error: %v", key, err)
		return
	}
	if err := g.store.Set(ctx, key, bs, ttl); err != nil {
		log.Printf("cache: set %s error: %v", key, err)
	}
}

func (g *Gateway) Scan(ctx context.Context, pattern string) ([]string, error) {
	keys, err := g.store.Scan(ctx, pattern)
	if err != nil {
		return nil, fmt.Errorf("scan %q: %w", pattern, err)
	}
	return keys, nil
}

func (g *Gateway) DeleteAll(ctx context.Context, keys []string) (int64, error) {
	if len(keys) == 0 {
		return 0, nil
	}
	n, err := g.store.Delete(ctx, keys...)
	if err != nil {
		return n, fmt.Errorf("delete %d keys: %w", len(keys), err)
	}
	return n, nil
}

// Clear 删除所有匹配 pattern 的 key，返回删除数量
func (g *Gateway) Clear(ctx context.Context, pattern string) (int64, error) {
	if pattern == "" {
		pattern = "*"
	}
	keys, err := g.Scan(ctx, pattern)
	if err != nil {
		return 0, err
	}
	n, err := g.DeleteAll(ctx, keys)
	if err != nil {
		return n, err
	}
	log.Printf("cache: cleared %d keys matching %q", n, pattern)
	return n, nil
}

func (g *Gateway) Stats(ctx context.Context) (Stats, error) {
	return g.store.Stats(ctx)
}

func (g *Gateway) Ping(ctx context.Context) error {
	return g.store.Ping(ctx)
}

func (g *Gateway) Close() error {
	return g.store.Close()
}
