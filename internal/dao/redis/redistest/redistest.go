// Package redistest 提供基于 miniredis 的 Redis 缓存，供各层测试使用
package redistest

import (
	"testing"

	myredis "class_chat_server/internal/dao/redis"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// NewCache 启动一个内存 Redis 并返回连接它的缓存，测试结束时自动关闭
func NewCache(t testing.TB) (*myredis.RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := myredis.NewRedisCache(client, 2, 16)
	t.Cleanup(cache.Close)
	return cache, mr
}
