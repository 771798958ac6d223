// channel_broker.go
// 核心职责：单机模式下的广播代理
// 不依赖外部消息队列，适合小规模部署或开发环境
package chat

import (
	"context"
	"sync"

	"class_chat_server/pkg/constants"
	"class_chat_server/pkg/errorx"

	"go.uber.org/zap"
)

// StandaloneServer 单机广播代理
// 所有发布进入同一个 Transmit 通道，由单个循环按顺序投递，保证聊天室内的顺序
type StandaloneServer struct {
	// Transmit 广播转发通道
	Transmit chan *broadcast

	registry  *Registry
	quit      chan struct{}
	closeOnce sync.Once
}

// NewStandaloneServer 创建单机广播代理
func NewStandaloneServer(registry *Registry) *StandaloneServer {
	return &StandaloneServer{
		Transmit: make(chan *broadcast, constants.CHANNEL_SIZE),
		registry: registry,
		quit:     make(chan struct{}),
	}
}

// Publish 放入转发通道，通道满时等待直到 ctx 取消
func (s *StandaloneServer) Publish(ctx context.Context, classId string, frame []byte) error {
	select {
	case <-s.quit:
		return errorx.New(errorx.CodeServerBusy, "broker closed")
	default:
	}
	select {
	case s.Transmit <- &broadcast{ClassId: classId, Frame: frame}:
		return nil
	case <-ctx.Done():
		return errorx.Wrap(ctx.Err(), errorx.CodeServerBusy, "publish canceled")
	case <-s.quit:
		return errorx.New(errorx.CodeServerBusy, "broker closed")
	}
}

// Start 启动转发循环
func (s *StandaloneServer) Start() {
	zap.L().Info("channel broker started")
	for {
		select {
		case b := <-s.Transmit:
			n := s.registry.Deliver(b.ClassId, b.Frame)
			zap.L().Debug("广播完成", zap.String("class_id", b.ClassId), zap.Int("delivered", n))
		case <-s.quit:
			return
		}
	}
}

// Close 停止转发循环
func (s *StandaloneServer) Close() {
	s.closeOnce.Do(func() { close(s.quit) })
}
