package database

import (
	"context"
	"fmt"
	"time"

	"github.com/enteacher-core/config"
	"github.com/go-redis/redis/v8"
)

// NewRedis 创建 Redis 客户端，未启用时返回 nil
func NewRedis(cfg config.RedisConfig) (*redis.Client, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.GetAddr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("连接 Redis 失败: %w", err)
	}
	return rdb, nil
}

// CloseRedis 关闭 Redis 连接
func CloseRedis(rdb *redis.Client) error {
	if rdb != nil {
		return rdb.Close()
	}
	return nil
}
