// Package service 提供业务逻辑层
// 本文件实现 Service 层的依赖注入和聚合
package service

import (
	"class_chat_server/internal/config"
	"class_chat_server/internal/dao/mysql/repository"
	myredis "class_chat_server/internal/dao/redis"
	"class_chat_server/internal/service/access"
	"class_chat_server/internal/service/chat"
	"class_chat_server/internal/service/message"
	"class_chat_server/internal/service/notify"
	"class_chat_server/internal/service/room"
)

// Services 聚合所有 Service 实例
// 作为依赖注入的入口，Handler 层通过此结构访问各个 Service
type Services struct {
	Access   *access.Service   // 认证与班级权限
	Rooms    *room.Directory   // 聊天室目录，REST 与 WebSocket 共用
	Message  *message.Service  // 消息写入与历史
	Notifier *notify.Notifier  // 离线通知
	Chat     *chat.ChatServer  // 注册表与广播代理
	Conns    *chat.ConnManager // WebSocket 连接管理
}

// NewServices 创建并注入所有 Service 实例
// 依赖注入流程：
//  1. access 只依赖 Repository
//  2. room 依赖 Repository 与缓存
//  3. message 依赖前两者，并通过 ChatServer 的分发器广播
//  4. ConnManager 组合以上全部
func NewServices(repos *repository.Repositories, cache myredis.AsyncCacheService, cs *chat.ChatServer, conf *config.Config) *Services {
	accessSvc := access.NewService(repos)
	rooms := room.NewDirectory(repos, cache, conf.ChatConfig.RoomCacheTTL())
	notifier := notify.NewNotifier(repos, cache)
	messageSvc := message.NewService(repos, accessSvc, rooms, cs.Dispatcher, notifier, conf.ChatConfig, conf.StaticFilePath)
	conns := chat.NewConnManager(cs.Registry, accessSvc, rooms, messageSvc, cache, conf.MaxConnectionsPerUser)

	return &Services{
		Access:   accessSvc,
		Rooms:    rooms,
		Message:  messageSvc,
		Notifier: notifier,
		Chat:     cs,
		Conns:    conns,
	}
}
