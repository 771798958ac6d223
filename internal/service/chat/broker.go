// Package chat 实现班级聊天的实时部分
// broker.go
// 核心职责：定义广播代理接口与分发器
// 支持 Channel（单机）、Kafka、Redis 三种实现，每个实例把收到的广播投递给本地注册表
package chat

import (
	"context"
	"encoding/json"

	"class_chat_server/internal/dto/respond"
	"class_chat_server/pkg/errorx"
)

// MessageBroker 广播代理接口
type MessageBroker interface {
	// Publish 发布一帧到班级聊天室，所有实例都会收到
	Publish(ctx context.Context, classId string, frame []byte) error
	// Start 启动消费循环，阻塞直到 Close
	Start()
	// Close 关闭代理资源
	Close()
}

// broadcast 在实例之间传递的广播事件
type broadcast struct {
	ClassId string          `json:"classId"`
	Frame   json.RawMessage `json:"frame"`
}

// encodeBroadcast 跨实例传输格式
func encodeBroadcast(classId string, frame []byte) ([]byte, error) {
	return json.Marshal(broadcast{ClassId: classId, Frame: frame})
}

// deliverBroadcast 解析跨实例传输的广播并投递给本地连接
func deliverBroadcast(registry *Registry, payload []byte) (classId string, delivered int, err error) {
	var b broadcast
	if err := json.Unmarshal(payload, &b); err != nil {
		return "", 0, errorx.Wrap(err, errorx.CodeInvalidParam, "广播格式错误")
	}
	if b.ClassId == "" || len(b.Frame) == 0 {
		return "", 0, errorx.New(errorx.CodeInvalidParam, "广播缺少 classId 或 frame")
	}
	return b.ClassId, registry.Deliver(b.ClassId, b.Frame), nil
}

// Dispatcher 广播分发器，实现 message.Publisher
type Dispatcher struct {
	broker MessageBroker
}

// NewDispatcher 创建分发器
func NewDispatcher(broker MessageBroker) *Dispatcher {
	return &Dispatcher{broker: broker}
}

// Publish 构造一次 messageReceived 帧并交给代理
// 每次调用对聊天室内的每条连接恰好投递一次
func (d *Dispatcher) Publish(ctx context.Context, classId string, msg *respond.ChatMessageRespond) error {
	return d.broker.Publish(ctx, classId, messageReceivedFrame(msg))
}
