// Package handler 提供 HTTP 请求处理器
// 本文件处理班级聊天的 REST 请求
package handler

import (
	"errors"
	"net/http"

	"class_chat_server/internal/dto/request"
	"class_chat_server/internal/dto/respond"
	"class_chat_server/internal/infrastructure/middleware"
	"class_chat_server/internal/service/access"
	"class_chat_server/internal/service/chat"
	"class_chat_server/internal/service/message"
	"class_chat_server/internal/service/room"
	"class_chat_server/pkg/errorx"

	"github.com/gin-gonic/gin"
)

// ChatHandler 班级聊天请求处理器
type ChatHandler struct {
	access   *access.Service
	rooms    *room.Directory
	messages *message.Service
	registry *chat.Registry
}

// NewChatHandler 创建聊天处理器
func NewChatHandler(accessSvc *access.Service, rooms *room.Directory, messages *message.Service, registry *chat.Registry) *ChatHandler {
	return &ChatHandler{
		access:   accessSvc,
		rooms:    rooms,
		messages: messages,
		registry: registry,
	}
}

// ResolveRoom 获取或创建班级聊天室
// POST /chat/room/resolve
// 请求体: request.ResolveRoomRequest
// 响应: respond.ChatRoomRespond
func (h *ChatHandler) ResolveRoom(c *gin.Context) {
	var req request.ResolveRoomRequest
	if err := c.ShouldBind(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	id, ok := middleware.CurrentIdentity(c)
	if !ok {
		HandleError(c, errorx.ErrUnauthorized)
		return
	}

	ctx := c.Request.Context()
	if _, err := h.access.Authorize(ctx, id, req.ClassId, access.ActionJoin); err != nil {
		HandleError(c, err)
		return
	}
	chatRoom, err := h.rooms.ResolveOrCreate(ctx, req.ClassId)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, respond.ChatRoomRespond{
		RoomId:    chatRoom.Uuid,
		ClassId:   chatRoom.ClassUuid,
		TeacherId: chatRoom.TeacherId,
		Name:      chatRoom.Name,
		CreatedAt: chatRoom.CreatedAt,
	})
}

// GetHistory 分页获取班级聊天记录，同一页内按时间正序
// GET /chat/history?class_id=xxx&page=1&limit=50
// 响应: respond.HistoryRespond
func (h *ChatHandler) GetHistory(c *gin.Context) {
	var req request.GetHistoryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	id, ok := middleware.CurrentIdentity(c)
	if !ok {
		HandleError(c, errorx.ErrUnauthorized)
		return
	}
	data, err := h.messages.History(c.Request.Context(), id, req.ClassId, req.Page, req.Limit)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// SendMessage 发送消息，可选附带一个文件
// POST /chat/message/send (multipart/form-data 或 application/x-www-form-urlencoded)
// 表单: request.SendMessageRequest，文件字段名 file
// 响应: respond.SendMessageRespond
func (h *ChatHandler) SendMessage(c *gin.Context) {
	var req request.SendMessageRequest
	if err := c.ShouldBind(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	id, ok := middleware.CurrentIdentity(c)
	if !ok {
		HandleError(c, errorx.ErrUnauthorized)
		return
	}

	cmd := message.SendCommand{
		ClassId:         req.ClassId,
		ChatRoomId:      req.ChatRoomId,
		Text:            req.Text,
		MediaUrl:        req.MediaUrl,
		MediaAssetId:    req.MediaAssetId,
		MessageType:     req.MessageType,
		ClientMessageId: req.ClientMessageId,
	}

	ctx := c.Request.Context()
	var data *respond.SendMessageRespond
	fileHeader, err := c.FormFile("file")
	switch {
	case err == nil:
		data, err = h.messages.SendWithUpload(ctx, id, cmd, fileHeader)
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		// 纯文本消息
		data, err = h.messages.Send(ctx, id, cmd)
	default:
		HandleParamError(c, err)
		return
	}
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// GetStats 本实例的连接统计，仅超级管理员可用
// GET /chat/stats
// 响应: respond.ChatStatsRespond
func (h *ChatHandler) GetStats(c *gin.Context) {
	HandleSuccess(c, h.registry.Stats())
}
