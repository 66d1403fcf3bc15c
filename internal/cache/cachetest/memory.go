// Package cachetest 提供测试用的内存版 cache.Store
package cachetest

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/LJTian/NewsLens/internal/cache"
	"github.com/gobwas/glob"
)

// ErrUnavailable 模拟存储不可用
var ErrUnavailable = errors.New("cachetest: store unavailable")

type entry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryStore 线程安全；Fail 为 true 时所有操作返回 ErrUnavailable
type MemoryStore struct {
	mu    sync.Mutex
	items map[string]entry
	fail  bool
	sets  map[string]int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items: make(map[string]entry),
		sets:  make(map[string]int),
	}
}

func (m *MemoryStore) SetFail(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail = fail
}

// SetCount 返回某个 key 被写入的次数
func (m *MemoryStore) SetCount(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sets[key]
}

// TTL 返回 key 剩余的过期时间，不存在时为 0
func (m *MemoryStore) TTL(key string) time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.items[key]
	if !ok {
		return 0
	}
	return time.Until(e.expiresAt)
}

// Keys 返回当前所有未过期的 key（排序后）
func (m *MemoryStore) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	out := make([]string, 0, len(m.items))
	for k, e := range m.items {
		if now.Before(e.expiresAt) {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// Put 直接写入原始字节，便于构造损坏数据
func (m *MemoryStore) Put(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = entry{value: value, expiresAt: time.Now().Add(time.Hour)}
}

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return nil, ErrUnavailable
	}
	e, ok := m.items[key]
	if !ok || time.Now().After(e.expiresAt) {
		delete(m.items, key)
		return nil, cache.ErrNotFound
	}
	return append([]byte(nil), e.value...), nil
}

func (m *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return ErrUnavailable
	}
	m.items[key] = entry{value: append([]byte(nil), value...), expiresAt: time.Now().Add(ttl)}
	m.sets[key]++
	return nil
}

// Scan 使用与 Redis 相同的 glob 语义（* 可以跨越 / 和 :）
func (m *MemoryStore) Scan(_ context.Context, pattern string) ([]string, error) {
	g, err := glob.Compile(pattern)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	fail := m.fail
	m.mu.Unlock()
	if fail {
		return nil, ErrUnavailable
	}
	var out []string
	for _, k := range m.Keys() {
		if g.Match(k) {
			out = append(out, k)
		}
	}
	return out, nil
}

func (m *MemoryStore) Delete(_ context.Context, keys ...string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return 0, ErrUnavailable
	}
	var n int64
	for _, k := range keys {
		if _, ok := m.items[k]; ok {
			delete(m.items, k)
			n++
		}
	}
	return n, nil
}

func (m *MemoryStore) Stats(context.Context) (cache.Stats, error) {
	m.mu.Lock()
	fail := m.fail
	m.mu.Unlock()
	if fail {
		return cache.Stats{}, ErrUnavailable
	}
	return cache.Stats{TotalKeys: int64(len(m.Keys())), MemoryUsed: "0B"}, nil
}

func (m *MemoryStore) Ping(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return ErrUnavailable
	}
	return nil
}

func (m *MemoryStore) Close() error { return nil }
