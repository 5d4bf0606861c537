// Package cache 标签词表缓存 (Redis / 进程内存)
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// Options Redis 连接参数
type Options struct {
	Addr     string
	Password string
	DB       int
}

// NewClient 创建 Redis 客户端并 Ping 一次
func NewClient(ctx context.Context, opts Options) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("连接 Redis 失败: %w", err)
	}
	return client, nil
}

// ==================== 标签词表缓存 ====================

const (
	TagListKey = "catalog:tags:all"
	TagListTTL = 5 * time.Minute
)

// TagCache 全部标签名列表缓存
type TagCache struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewTagCache 创建标签缓存
func NewTagCache(client *redis.Client) *TagCache {
	return &TagCache{client: client, key: TagListKey, ttl: TagListTTL}
}

func (c *TagCache) Get(ctx context.Context) ([]string, bool, error) {
	raw, err := c.client.Get(ctx, c.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var names []string
	if err := json.Unmarshal(raw, &names); err != nil {
		// 脏数据当作未命中
		return nil, false, nil
	}
	return names, true, nil
}

func (c *TagCache) Set(ctx context.Context, names []string) error {
	raw, err := json.Marshal(names)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key, raw, c.ttl).Err()
}

func (c *TagCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, c.key).Err()
}
