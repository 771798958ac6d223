// server.go
// 核心职责：聊天服务器聚合结构
// 持有注册表、广播代理与连接管理器，提供统一的生命周期管理
package chat

import (
	"context"
	"fmt"

	"class_chat_server/internal/config"
	"class_chat_server/pkg/constants"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// 广播模式
const (
	ModeChannel = "channel"
	ModeKafka   = "kafka"
	ModeRedis   = "redis"
)

// ChatServer 聊天服务器
type ChatServer struct {
	Registry   *Registry
	Broker     MessageBroker
	Dispatcher *Dispatcher
	mode       string
}

// NewChatServer 创建注册表并按配置选择广播代理
// redisClient 仅 redis 模式需要
func NewChatServer(conf config.KafkaConfig, redisClient *redis.Client) (*ChatServer, error) {
	registry := NewRegistry()
	cs := &ChatServer{Registry: registry, mode: conf.MessageMode}

	switch conf.MessageMode {
	case ModeKafka:
		// 每个实例独立的消费组，保证每个实例都收到全部广播
		groupID := "chat-" + uuid.NewString()
		cs.Broker = NewKafkaBroker(NewKafkaClient(conf, groupID), registry)
	case ModeRedis:
		if redisClient == nil {
			return nil, fmt.Errorf("message mode redis requires redisConfig.host")
		}
		broker, err := NewRedisBroker(context.Background(), redisClient, constants.REDIS_BROADCAST_KEY, registry)
		if err != nil {
			return nil, err
		}
		cs.Broker = broker
	case "", ModeChannel:
		cs.mode = ModeChannel
		cs.Broker = NewStandaloneServer(registry)
	default:
		return nil, fmt.Errorf("unknown message mode: %s", conf.MessageMode)
	}
	cs.Dispatcher = NewDispatcher(cs.Broker)
	return cs, nil
}

// Start 在后台启动广播消费循环
func (cs *ChatServer) Start() {
	zap.L().Info("chat server starting", zap.String("mode", cs.mode))
	go cs.Broker.Start()
}

// Close 停止广播并关闭全部连接
func (cs *ChatServer) Close() {
	cs.Broker.Close()
	cs.Registry.Clear()
}
