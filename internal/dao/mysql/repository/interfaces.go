// Package repository 定义数据访问层接口和聚合结构
// 采用 Repository 模式将数据访问逻辑与业务逻辑分离
// 所有 Repository 接口在此文件定义，具体实现在各自的文件中
package repository

import (
	"context"

	"class_chat_server/internal/model"

	"gorm.io/gorm"
)

// ==================== Repository 接口定义 ====================

// UserRepository 用户数据访问接口（只读）
type UserRepository interface {
	// FindByUuid 根据 UUID 查找用户
	FindByUuid(ctx context.Context, uuid string) (*model.UserInfo, error)
	// FindByUuids 批量根据 UUID 查找用户
	FindByUuids(ctx context.Context, uuids []string) ([]model.UserInfo, error)
}

// ClassRepository 班级与名册数据访问接口（只读）
// 聊天服务据此判断用户能否进入班级聊天室
type ClassRepository interface {
	// FindByUuid 根据 UUID 查找班级
	FindByUuid(ctx context.Context, uuid string) (*model.ClassInfo, error)
	// IsTeacherAssigned 教师是否为班主任或任课教师
	IsTeacherAssigned(ctx context.Context, classUuid, teacherUuid string) (bool, error)
	// IsStudentMember 学生是否在班级名册中
	IsStudentMember(ctx context.Context, classUuid, studentUuid string) (bool, error)
	// FindMemberIds 获取班级全部成员（班主任、任课教师、学生）的 UUID
	FindMemberIds(ctx context.Context, classUuid string) ([]string, error)
}

// ChatRoomRepository 聊天室数据访问接口
type ChatRoomRepository interface {
	// FindByUuid 根据 UUID 查找聊天室
	FindByUuid(ctx context.Context, uuid string) (*model.ChatRoom, error)
	// FindByClassUuid 根据班级查找聊天室
	FindByClassUuid(ctx context.Context, classUuid string) (*model.ChatRoom, error)
	// Create 创建聊天室，班级已有聊天室时返回 CodeConflict
	Create(ctx context.Context, room *model.ChatRoom) error
	// CountByClassUuid 统计班级聊天室数量
	CountByClassUuid(ctx context.Context, classUuid string) (int64, error)
}

// MessageRepository 消息数据访问接口
type MessageRepository interface {
	// Create 写入消息，幂等键冲突时返回 CodeConflict
	Create(ctx context.Context, message *model.ChatMessage) error
	// FindByClientMessageId 按 (聊天室, 发送者, 幂等键) 查找消息
	FindByClientMessageId(ctx context.Context, roomUuid, senderId, clientMessageId string) (*model.ChatMessage, error)
	// FindPageByRoom 按创建时间倒序分页查询
	FindPageByRoom(ctx context.Context, roomUuid string, offset, limit int) ([]model.ChatMessage, error)
	// CountByRoom 统计聊天室消息总数
	CountByRoom(ctx context.Context, roomUuid string) (int64, error)
}

// ==================== Repository 聚合 ====================

// Repositories 聚合所有 Repository 实例
// 作为依赖注入的入口，Service 层通过此结构访问数据层
type Repositories struct {
	db       *gorm.DB           // GORM 数据库实例
	User     UserRepository     // 用户 Repository
	Class    ClassRepository    // 班级 Repository
	ChatRoom ChatRoomRepository // 聊天室 Repository
	Message  MessageRepository  // 消息 Repository
}

// NewRepositories 创建所有 Repository 实例
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		db:       db,
		User:     NewUserRepository(db),
		Class:    NewClassRepository(db),
		ChatRoom: NewChatRoomRepository(db),
		Message:  NewMessageRepository(db),
	}
}

// DB 返回底层 GORM 实例
func (r *Repositories) DB() *gorm.DB {
	return r.db
}
