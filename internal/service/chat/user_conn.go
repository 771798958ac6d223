package chat

import (
	"sync"
	"time"

	"class_chat_server/pkg/constants"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second    // 单次写超时
	pongWait       = 60 * time.Second    // 等待 pong 的最长时间
	pingPeriod     = (pongWait * 9) / 10 // 心跳间隔，必须小于 pongWait
	maxMessageSize = 64 << 10            // 客户端单帧上限
)

// UserConn 一条已认证的 WebSocket 连接
// 一个用户可以同时持有多条连接（多标签页、多设备）
type UserConn struct {
	SocketId string
	UserId   string
	Conn     *websocket.Conn
	SendBack chan []byte // 待写给前端的帧

	done      chan struct{}
	closeOnce sync.Once
}

// NewUserConn 包装 WebSocket 连接，conn 为 nil 时仅用于测试
func NewUserConn(conn *websocket.Conn, userId string) *UserConn {
	return &UserConn{
		SocketId: uuid.NewString(),
		UserId:   userId,
		Conn:     conn,
		SendBack: make(chan []byte, constants.CHANNEL_SIZE),
		done:     make(chan struct{}),
	}
}

// Send 非阻塞投递一帧；连接已关闭或发送缓冲区已满时返回 false
// 缓冲区满说明客户端消费过慢，直接断开，由客户端重连后通过历史记录补齐
func (c *UserConn) Send(frame []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.SendBack <- frame:
		return true
	case <-c.done:
		return false
	default:
		zap.L().Warn("ws 发送缓冲区已满，断开连接", zap.String("socket_id", c.SocketId), zap.String("user_id", c.UserId))
		c.Close()
		return false
	}
}

// Done 连接关闭后返回的 channel 被关闭
func (c *UserConn) Done() <-chan struct{} {
	return c.done
}

// Close 关闭连接，可重复调用
func (c *UserConn) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		if c.Conn != nil {
			_ = c.Conn.Close()
		}
	})
}

// Read 读取客户端帧并交给 handle 处理，连接出错时返回
func (c *UserConn) Read(handle func(data []byte)) {
	zap.L().Debug("ws read goroutine start", zap.String("socket_id", c.SocketId))
	c.Conn.SetReadLimit(maxMessageSize)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		_, data, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				zap.L().Warn("ws read error", zap.String("socket_id", c.SocketId), zap.Error(err))
			}
			return
		}
		handle(data)
	}
}

// Write 从 SendBack 取帧写给前端，并定时发送心跳
func (c *UserConn) Write() {
	zap.L().Debug("ws write goroutine start", zap.String("socket_id", c.SocketId))
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()
	for {
		select {
		case frame := <-c.SendBack:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				zap.L().Warn("ws write error", zap.String("socket_id", c.SocketId), zap.Error(err))
				return
			}
		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

// writeNow 在写协程启动前同步写一帧，用于拒绝连接前告知原因
func (c *UserConn) writeNow(frame []byte) {
	if c.Conn == nil {
		return
	}
	_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.Conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		zap.L().Warn("ws write error", zap.String("socket_id", c.SocketId), zap.Error(err))
	}
}
