// Package redis 提供缓存服务的初始化逻辑
// 使用 github.com/redis/go-redis/v9 作为底层客户端
package redis

import (
	"context"
	"strconv"
	"time"

	"class_chat_server/internal/config"
	"class_chat_server/pkg/constants"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Init 连接 Redis 并初始化缓存 Worker Pool，多个 Service 共享
func Init(conf config.RedisConfig) (*RedisCache, error) {
	client, err := NewClient(conf)
	if err != nil {
		return nil, err
	}
	return NewRedisCache(client, constants.CACHE_WORKER_NUM, constants.CACHE_TASK_BUFFER), nil
}

// NewClient 创建 Redis 客户端并校验连通性
func NewClient(conf config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     conf.Host + ":" + strconv.Itoa(conf.Port),
		Password: conf.Password, // 无密码留空
		DB:       conf.Db,
		// 连接池配置
		PoolSize:     50,                         // 最大连接数
		MinIdleConns: constants.CACHE_WORKER_NUM, // 最小空闲连接，与 Worker 数量匹配
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	zap.L().Info("Redis 连接成功", zap.String("addr", client.Options().Addr))
	return client, nil
}
