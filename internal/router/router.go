// Package router 提供 HTTP 路由注册
// 本文件是路由注册的入口，聚合所有子模块的路由
package router

import (
	"class_chat_server/internal/handler"
	"class_chat_server/internal/infrastructure/middleware"
	"class_chat_server/internal/service/access"

	"github.com/gin-gonic/gin"
)

// Router 路由管理器，持有 Handler 聚合与认证所需的服务
type Router struct {
	handlers *handler.Handlers
	access   *access.Service
}

// NewRouter 创建路由管理器
func NewRouter(handlers *handler.Handlers, accessSvc *access.Service) *Router {
	return &Router{handlers: handlers, access: accessSvc}
}

// RegisterRoutes 注册所有路由
// 在 https_server.Init() 中调用
func (rt *Router) RegisterRoutes(r *gin.Engine) {
	// WebSocket 在握手处理器内自行认证，失败时不升级
	rt.RegisterWebSocketRoutes(r.Group(""))

	authed := r.Group("", middleware.JWTAuth(rt.access))
	rt.RegisterChatRoutes(authed)
}
