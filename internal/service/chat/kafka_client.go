// kafka_client.go
// 核心职责：Kafka 基础设施管理
// 封装 Writer/Reader 的创建与关闭，不包含聊天业务逻辑
package chat

import (
	"context"
	"time"

	"class_chat_server/internal/config"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// KafkaClient Kafka 客户端
type KafkaClient struct {
	Producer *kafka.Writer // 生产者
	Consumer *kafka.Reader // 消费者
}

// NewKafkaClient 按配置创建 Kafka 客户端
// groupID 每个实例唯一，保证每个实例都能收到全部广播
func NewKafkaClient(conf config.KafkaConfig, groupID string) *KafkaClient {
	timeout := conf.Timeout * time.Second
	return &KafkaClient{
		Producer: &kafka.Writer{
			Addr:  kafka.TCP(conf.HostPort),
			Topic: conf.ChatTopic,
			// 按 classId 哈希分区，同一聊天室的消息进入同一分区，保持顺序
			Balancer:               &kafka.Hash{},
			WriteTimeout:           timeout,
			RequiredAcks:           kafka.RequireOne,
			AllowAutoTopicCreation: false,
		},
		Consumer: kafka.NewReader(kafka.ReaderConfig{
			Brokers:        []string{conf.HostPort},
			Topic:          conf.ChatTopic,
			CommitInterval: timeout,
			GroupID:        groupID,
			// 只关心实例启动后的广播，错过的消息由客户端查询历史补齐
			StartOffset: kafka.LastOffset,
		}),
	}
}

// SendMessage 写入一条消息
func (k *KafkaClient) SendMessage(ctx context.Context, key, value []byte) error {
	return k.Producer.WriteMessages(ctx, kafka.Message{
		Key:   key,
		Value: value,
	})
}

// Close 关闭生产者与消费者
func (k *KafkaClient) Close() {
	if err := k.Producer.Close(); err != nil {
		zap.L().Error("关闭 kafka producer 失败", zap.Error(err))
	}
	if err := k.Consumer.Close(); err != nil {
		zap.L().Error("关闭 kafka consumer 失败", zap.Error(err))
	}
}
