// conn_manager.go
// 核心职责：WebSocket 连接生命周期管理
// Connecting -> Authenticated -> [Joined(room)]* -> Disconnected
// 认证在升级之前完成，失败时不创建任何状态
package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	myredis "class_chat_server/internal/dao/redis"
	"class_chat_server/internal/dto/request"
	"class_chat_server/internal/dto/respond"
	"class_chat_server/internal/model"
	"class_chat_server/internal/service/access"
	"class_chat_server/internal/service/message"
	"class_chat_server/internal/service/room"
	"class_chat_server/pkg/constants"
	"class_chat_server/pkg/errorx"

	"github.com/gin-gonic/gin/binding"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// eventTimeout 单个客户端事件的处理时限
const eventTimeout = 10 * time.Second

// 跨域由 CORS 中间件统一处理，这里允许任何来源
var upgrader = websocket.Upgrader{
	ReadBufferSize:  2048,
	WriteBufferSize: 2048,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// ConnManager 连接管理器
type ConnManager struct {
	registry *Registry
	access   *access.Service
	rooms    *room.Directory
	messages *message.Service
	cache    myredis.CacheService // 在线状态与未读标记，可以为 nil
	maxConns int
}

// NewConnManager 创建连接管理器
func NewConnManager(
	registry *Registry,
	accessSvc *access.Service,
	rooms *room.Directory,
	messages *message.Service,
	cache myredis.CacheService,
	maxConns int,
) *ConnManager {
	if maxConns <= 0 {
		maxConns = constants.MAX_CONNECTIONS_PER_USER
	}
	return &ConnManager{
		registry: registry,
		access:   accessSvc,
		rooms:    rooms,
		messages: messages,
		cache:    cache,
		maxConns: maxConns,
	}
}

// Registry 返回连接注册表
func (m *ConnManager) Registry() *Registry {
	return m.registry
}

// Authenticate 校验握手凭证，失败返回 CodeUnauthorized
func (m *ConnManager) Authenticate(ctx context.Context, token string) (*access.Identity, error) {
	return m.access.Identify(ctx, token)
}

// Accept 升级 HTTP 连接并登记，超过连接上限时推送 error 事件后断开
func (m *ConnManager) Accept(w http.ResponseWriter, r *http.Request, id *access.Identity) {
	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade 已经写回了 HTTP 错误
		zap.L().Warn("ws upgrade failed", zap.String("user_id", id.UserId), zap.Error(err))
		return
	}
	conn := NewUserConn(wsConn, id.UserId)

	first, err := m.registry.Admit(conn, m.maxConns)
	if err != nil {
		zap.L().Info("超过单用户连接上限，拒绝新连接", zap.String("user_id", id.UserId), zap.Int("max", m.maxConns))
		conn.writeNow(errorFrame(err))
		_ = wsConn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, errorx.ErrTooManyConnections.Msg),
			time.Now().Add(writeWait))
		conn.Close()
		return
	}
	if first {
		m.setOnline(id.UserId, true)
	}
	zap.L().Info("ws连接成功", zap.String("user_id", id.UserId), zap.String("socket_id", conn.SocketId))

	go conn.Write()
	go func() {
		defer m.Disconnect(conn)
		conn.Read(func(data []byte) {
			m.dispatch(conn, id, data)
		})
	}()
}

// JoinRoom 校验权限、获取或创建聊天室并加入广播组
// 任何一步失败都不会改变广播组
func (m *ConnManager) JoinRoom(ctx context.Context, conn *UserConn, id *access.Identity, classId string) (*model.ChatRoom, error) {
	if _, err := m.access.Authorize(ctx, id, classId, access.ActionJoin); err != nil {
		return nil, err
	}
	chatRoom, err := m.rooms.ResolveOrCreate(ctx, classId)
	if err != nil {
		return nil, err
	}
	if !m.registry.Join(conn, classId) {
		return nil, errorx.New(errorx.CodeInvalidParam, "连接已断开")
	}
	m.clearUnread(ctx, id.UserId, classId)
	return chatRoom, nil
}

// LeaveRoom 退出广播组，未加入时无操作
func (m *ConnManager) LeaveRoom(conn *UserConn, classId string) {
	m.registry.Leave(conn, classId)
}

// Disconnect 从所有广播组与用户连接集合中一次性移除，并关闭连接
func (m *ConnManager) Disconnect(conn *UserConn) {
	last := m.registry.Unregister(conn)
	conn.Close()
	if last {
		m.setOnline(conn.UserId, false)
	}
	zap.L().Info("ws连接断开", zap.String("user_id", conn.UserId), zap.String("socket_id", conn.SocketId))
}

// dispatch 处理一条客户端帧
func (m *ConnManager) dispatch(conn *UserConn, id *access.Identity, data []byte) {
	var evt request.WsEventRequest
	if err := json.Unmarshal(data, &evt); err != nil {
		conn.Send(errorFrame(errorx.New(errorx.CodeInvalidParam, "无法解析的消息格式")))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), eventTimeout)
	defer cancel()

	switch evt.Event {
	case EventJoinRoom:
		var req request.JoinRoomRequest
		if err := decodeData(evt.Data, &req); err != nil {
			m.fail(conn, evt.AckId, err)
			return
		}
		chatRoom, err := m.JoinRoom(ctx, conn, id, req.ClassId)
		if err != nil {
			m.fail(conn, evt.AckId, err)
			return
		}
		conn.Send(encodeEvent(EventAck, evt.AckId, respond.JoinRoomAckRespond{
			Success: true,
			ClassId: req.ClassId,
			RoomId:  chatRoom.Uuid,
		}))

	case EventLeaveRoom:
		var req request.JoinRoomRequest
		if err := decodeData(evt.Data, &req); err != nil {
			conn.Send(errorFrame(err))
			return
		}
		m.LeaveRoom(conn, req.ClassId)

	case EventSendMessage:
		var req request.WsSendMessageRequest
		if err := decodeData(evt.Data, &req); err != nil {
			m.fail(conn, evt.AckId, err)
			return
		}
		res, err := m.messages.Send(ctx, id, message.SendCommand{
			ClassId:         req.ClassId,
			ChatRoomId:      req.ChatRoomId,
			Text:            req.Text,
			MediaUrl:        req.MediaUrl,
			MediaAssetId:    req.MediaAssetId,
			MessageType:     req.MessageType,
			ClientMessageId: req.ClientMessageId,
		})
		if err != nil {
			m.fail(conn, evt.AckId, err)
			return
		}
		conn.Send(encodeEvent(EventAck, evt.AckId, respond.SendMessageAckRespond{
			Success:   true,
			Message:   res.Message,
			Duplicate: res.Duplicate,
		}))

	default:
		conn.Send(errorFrame(errorx.Newf(errorx.CodeInvalidParam, "未知事件: %s", evt.Event)))
	}
}

// fail 失败时同时回复 ack 与 error 事件
func (m *ConnManager) fail(conn *UserConn, ackId string, err error) {
	pub := errorx.Public(err)
	if pub == errorx.ErrServerBusy {
		zap.L().Error("ws 事件处理失败", zap.String("user_id", conn.UserId), zap.Error(err))
	}
	if ackId != "" {
		conn.Send(failedAckFrame(ackId, err))
	}
	conn.Send(errorFrame(err))
}

func decodeData(data json.RawMessage, v interface{}) error {
	if len(data) == 0 {
		return errorx.New(errorx.CodeInvalidParam, "缺少 data")
	}
	if err := json.Unmarshal(data, v); err != nil {
		return errorx.Wrap(err, errorx.CodeInvalidParam, "data 格式错误")
	}
	// 与 HTTP 入口共用 gin 的校验器
	if err := binding.Validator.ValidateStruct(v); err != nil {
		return errorx.Wrap(err, errorx.CodeInvalidParam, "data 校验失败")
	}
	return nil
}

// setOnline 维护 Redis 中的在线用户集合，供离线通知判断
func (m *ConnManager) setOnline(userId string, online bool) {
	if m.cache == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	var err error
	if online {
		err = m.cache.AddToSet(ctx, constants.ONLINE_USERS_KEY, userId)
	} else {
		err = m.cache.RemoveFromSet(ctx, constants.ONLINE_USERS_KEY, userId)
	}
	if err != nil {
		zap.L().Warn("更新在线状态失败", zap.String("user_id", userId), zap.Bool("online", online), zap.Error(err))
	}
}

// clearUnread 加入聊天室后清除该班级的未读标记
func (m *ConnManager) clearUnread(ctx context.Context, userId, classId string) {
	if m.cache == nil {
		return
	}
	if err := m.cache.RemoveFromSet(ctx, constants.UNREAD_PREFIX+userId, classId); err != nil {
		zap.L().Warn("清除未读标记失败", zap.String("user_id", userId), zap.String("class_id", classId), zap.Error(err))
	}
}
