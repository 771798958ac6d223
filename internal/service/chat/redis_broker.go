// redis_broker.go
// 核心职责：基于 Redis Pub/Sub 的广播代理
// 所有实例订阅同一频道，适合已部署 Redis 但没有 Kafka 的环境
package chat

import (
	"context"
	"sync"

	"class_chat_server/pkg/errorx"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisBroker 基于 Redis Pub/Sub 的广播代理
type RedisBroker struct {
	client    *redis.Client
	channel   string
	pubsub    *redis.PubSub
	registry  *Registry
	closeOnce sync.Once
}

// NewRedisBroker 订阅广播频道，订阅确认后返回，之后的发布都能被本实例收到
func NewRedisBroker(ctx context.Context, client *redis.Client, channel string, registry *Registry) (*RedisBroker, error) {
	pubsub := client.Subscribe(ctx, channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, errorx.Wrapf(err, errorx.CodeCacheError, "redis subscribe %s", channel)
	}
	return &RedisBroker{client: client, channel: channel, pubsub: pubsub, registry: registry}, nil
}

// Publish 发布到广播频道
func (r *RedisBroker) Publish(ctx context.Context, classId string, frame []byte) error {
	payload, err := encodeBroadcast(classId, frame)
	if err != nil {
		return err
	}
	if err := r.client.Publish(ctx, r.channel, payload).Err(); err != nil {
		return errorx.Wrapf(err, errorx.CodeCacheError, "redis publish %s", r.channel)
	}
	return nil
}

// Start 消费循环，Close 后返回
func (r *RedisBroker) Start() {
	zap.L().Info("redis broker started", zap.String("channel", r.channel))
	for msg := range r.pubsub.Channel() {
		classId, n, err := deliverBroadcast(r.registry, []byte(msg.Payload))
		if err != nil {
			zap.L().Error("redis 广播格式错误", zap.Error(err))
			continue
		}
		zap.L().Debug("广播完成", zap.String("class_id", classId), zap.Int("delivered", n))
	}
}

// Close 取消订阅
func (r *RedisBroker) Close() {
	r.closeOnce.Do(func() {
		if err := r.pubsub.Close(); err != nil {
			zap.L().Error("关闭 redis 订阅失败", zap.Error(err))
		}
	})
}
