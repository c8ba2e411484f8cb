// Package redis 提供 Redis 缓存操作的封装
// 本文件仅包含 Redis 连接初始化逻辑
// 使用 github.com/go-redis/redis/v8 作为底层客户端
package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"church_app_server/internal/config"

	"github.com/go-redis/redis/v8"
)

// Init 根据配置创建 Redis 客户端并检查连通性
func Init(cfg *config.RedisConfig) (*redis.Client, error) {
	// 拼接地址：host:port
	addr := cfg.Host + ":" + strconv.Itoa(cfg.Port)

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Password,
		DB:       cfg.Db,
		// 连接池配置
		PoolSize:     50, // 最大连接数
		MinIdleConns: 10, // 最小空闲连接，与 Worker 数量匹配
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return client, nil
}
