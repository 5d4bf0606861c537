package cache

import (
	"context"
	"sync"
	"time"
)

// memoryItem 值和过期时间
type memoryItem struct {
	names      []string
	expiration int64
}

// MemoryTagCache 进程内标签缓存，未配置 Redis 时使用
// 使用 sync.Map 保证并发安全
type MemoryTagCache struct {
	store sync.Map
	ttl   time.Duration
	now   func() time.Time
}

// NewMemoryTagCache ttl<=0 时用 TagListTTL
func NewMemoryTagCache(ttl time.Duration) *MemoryTagCache {
	if ttl <= 0 {
		ttl = TagListTTL
	}
	return &MemoryTagCache{ttl: ttl, now: time.Now}
}

func (c *MemoryTagCache) Get(_ context.Context) ([]string, bool, error) {
	val, ok := c.store.Load(TagListKey)
	if !ok {
		return nil, false, nil
	}

	item := val.(memoryItem)
	if c.now().UnixNano() > item.expiration {
		c.store.Delete(TagListKey) // 懒删除
		return nil, false, nil
	}

	out := make([]string, len(item.names))
	copy(out, item.names)
	return out, true, nil
}

func (c *MemoryTagCache) Set(_ context.Context, names []string) error {
	stored := make([]string, len(names))
	copy(stored, names)
	c.store.Store(TagListKey, memoryItem{
		names:      stored,
		expiration: c.now().Add(c.ttl).UnixNano(),
	})
	return nil
}

func (c *MemoryTagCache) Invalidate(_ context.Context) error {
	c.store.Delete(TagListKey)
	return nil
}
