package utils

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// Cache JSON 缓存工具，rdb 为 nil 时所有操作退化为未命中
type Cache struct {
	rdb *redis.Client
}

// NewCache 创建缓存工具
func NewCache(rdb *redis.Client) *Cache {
	return &Cache{rdb: rdb}
}

// Enabled 是否连接了 Redis
func (c *Cache) Enabled() bool {
	return c != nil && c.rdb != nil
}

// Set 设置缓存
func (c *Cache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	if !c.Enabled() {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("序列化失败: %w", err)
	}
	return c.rdb.Set(ctx, key, data, expiration).Err()
}

// Get 获取缓存，未命中返回 redis.Nil
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) error {
	if !c.Enabled() {
		return redis.Nil
	}
	data, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

// Delete 删除缓存
func (c *Cache) Delete(ctx context.Context, key string) error {
	if !c.Enabled() {
		return nil
	}
	return c.rdb.Del(ctx, key).Err()
}

// GetCacheKey 生成缓存键
func GetCacheKey(prefix string, keys ...string) string {
	key := prefix
	for _, k := range keys {
		key += ":" + k
	}
	return key
}
