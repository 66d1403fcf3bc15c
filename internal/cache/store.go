package cache

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound key 不存在（或已过期）
var ErrNotFound = errors.New("cache: key not found")

// Stats 缓存存储的概况
type Stats struct {
	TotalKeys     int64  `json:"total_keys"`
	MemoryUsed    string `json:"memory_used"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

// Store 是 Gateway 依赖的底层 KV 存储，只处理原始字节
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Scan(ctx context.Context, pattern string) ([]string, error)
	Delete(ctx context.Context, keys ...string) (int64, error)
	Stats(ctx context.Context) (Stats, error)
	Ping(ctx context.Context) error
	Close() error
}
