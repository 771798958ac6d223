// Package router 提供 HTTP 路由注册
// 本文件定义班级聊天相关的路由
package router

import (
	"class_chat_server/internal/infrastructure/middleware"
	"class_chat_server/pkg/enum/role_enum"

	"github.com/gin-gonic/gin"
)

// RegisterChatRoutes 注册班级聊天路由（需要认证）
func (rt *Router) RegisterChatRoutes(rg *gin.RouterGroup) {
	chatGroup := rg.Group("/chat")
	{
		chatGroup.POST("/room/resolve", rt.handlers.Chat.ResolveRoom) // 获取或创建班级聊天室
		chatGroup.GET("/history", rt.handlers.Chat.GetHistory)        // 分页获取聊天记录
		chatGroup.POST("/message/send", rt.handlers.Chat.SendMessage) // 发送消息（可附带文件）

		// 本实例连接统计，仅超级管理员
		chatGroup.GET("/stats", middleware.RequireRole(role_enum.SuperAdmin), rt.handlers.Chat.GetStats)
	}
}
