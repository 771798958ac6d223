// kafka_broker.go
// 核心职责：分布式模式下的广播代理
// 所有实例写同一主题，每个实例以独立消费组读取全量广播并投递给本地连接
package chat

import (
	"context"
	"errors"
	"sync"
	"time"

	"class_chat_server/pkg/errorx"

	"go.uber.org/zap"
)

// KafkaBroker 基于 Kafka 的广播代理
type KafkaBroker struct {
	client    *KafkaClient
	registry  *Registry
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

// NewKafkaBroker 创建 Kafka 广播代理
func NewKafkaBroker(client *KafkaClient, registry *Registry) *KafkaBroker {
	ctx, cancel := context.WithCancel(context.Background())
	return &KafkaBroker{client: client, registry: registry, ctx: ctx, cancel: cancel}
}

// Publish 以 classId 为 key 写入主题
func (k *KafkaBroker) Publish(ctx context.Context, classId string, frame []byte) error {
	value, err := encodeBroadcast(classId, frame)
	if err != nil {
		return err
	}
	if err := k.client.SendMessage(ctx, []byte(classId), value); err != nil {
		return errorx.Wrap(err, errorx.CodeServerBusy, "kafka publish")
	}
	return nil
}

// Start 消费循环
func (k *KafkaBroker) Start() {
	zap.L().Info("kafka broker started", zap.String("topic", k.client.Consumer.Config().Topic), zap.String("group", k.client.Consumer.Config().GroupID))
	for {
		m, err := k.client.Consumer.ReadMessage(k.ctx)
		if err != nil {
			if k.ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return
			}
			zap.L().Error("kafka read error", zap.Error(err))
			// 避免 broker 不可用时空转
			select {
			case <-time.After(time.Second):
			case <-k.ctx.Done():
				return
			}
			continue
		}
		classId, n, err := deliverBroadcast(k.registry, m.Value)
		if err != nil {
			zap.L().Error("kafka 消息格式错误", zap.Int64("offset", m.Offset), zap.Error(err))
			continue
		}
		zap.L().Debug("广播完成",
			zap.String("class_id", classId),
			zap.Int("partition", m.Partition),
			zap.Int64("offset", m.Offset),
			zap.Int("delivered", n))
	}
}

// Close 停止消费并关闭客户端
func (k *KafkaBroker) Close() {
	k.closeOnce.Do(func() {
		k.cancel()
		k.client.Close()
	})
}
