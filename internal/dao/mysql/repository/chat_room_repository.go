package repository

import (
	"context"

	"class_chat_server/internal/model"

	"gorm.io/gorm"
)

type chatRoomRepository struct {
	db *gorm.DB
}

// NewChatRoomRepository 创建聊天室 Repository
func NewChatRoomRepository(db *gorm.DB) ChatRoomRepository {
	return &chatRoomRepository{db: db}
}

// FindByUuid 按 UUID 查找聊天室
func (r *chatRoomRepository) FindByUuid(ctx context.Context, uuid string) (*model.ChatRoom, error) {
	var room model.ChatRoom
	if err := r.db.WithContext(ctx).First(&room, "uuid = ?", uuid).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询聊天室 uuid=%s", uuid)
	}
	return &room, nil
}

// FindByClassUuid 按班级查找聊天室
func (r *chatRoomRepository) FindByClassUuid(ctx context.Context, classUuid string) (*model.ChatRoom, error) {
	var room model.ChatRoom
	if err := r.db.WithContext(ctx).First(&room, "class_uuid = ?", classUuid).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询班级聊天室 class_uuid=%s", classUuid)
	}
	return &room, nil
}

// Create 创建聊天室
// class_uuid 唯一索引冲突时返回 CodeConflict，由调用方决定是否回读
func (r *chatRoomRepository) Create(ctx context.Context, room *model.ChatRoom) error {
	if err := r.db.WithContext(ctx).Create(room).Error; err != nil {
		return wrapDBErrorf(err, "创建聊天室 class_uuid=%s", room.ClassUuid)
	}
	return nil
}

// CountByClassUuid 统计班级聊天室数量
func (r *chatRoomRepository) CountByClassUuid(ctx context.Context, classUuid string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.ChatRoom{}).Where("class_uuid = ?", classUuid).Count(&count).Error; err != nil {
		return 0, wrapDBErrorf(err, "统计班级聊天室 class_uuid=%s", classUuid)
	}
	return count, nil
}
