// Package redis 定义缓存服务接口
// Service 层依赖此接口而非具体 Redis 实现
package redis

import (
	"context"
	"time"
)

// CacheService 首页、灵修结果、Refresh Token 共用的键值缓存
// Get 在键不存在时返回空字符串和 nil
type CacheService interface {
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}

// AsyncCacheService 内容变更后的缓存失效放到 Worker Pool 里执行，不阻塞请求
type AsyncCacheService interface {
	CacheService
	SubmitTask(action func())
}
