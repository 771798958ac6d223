// Package handler 提供 HTTP 请求处理器
// 本文件处理 WebSocket 握手
package handler

import (
	"class_chat_server/internal/infrastructure/middleware"
	"class_chat_server/internal/service/chat"
	"class_chat_server/pkg/errorx"

	"github.com/gin-gonic/gin"
)

// WsHandler WebSocket 请求处理器
type WsHandler struct {
	manager *chat.ConnManager
}

// NewWsHandler 创建 WebSocket 处理器
func NewWsHandler(manager *chat.ConnManager) *WsHandler {
	return &WsHandler{manager: manager}
}

// Connect 认证后升级为 WebSocket 连接
// GET /wss，Token 放在 Authorization: Bearer 头或 ?token= 中
// 认证失败时返回 401，不会升级也不会登记任何连接
func (h *WsHandler) Connect(c *gin.Context) {
	token, ok := middleware.BearerToken(c)
	if !ok {
		HandleError(c, errorx.New(errorx.CodeUnauthorized, "Token 格式错误，请使用 Bearer Token"))
		return
	}
	id, err := h.manager.Authenticate(c.Request.Context(), token)
	if err != nil {
		HandleError(c, err)
		return
	}
	h.manager.Accept(c.Writer, c.Request, id)
}
