package repository

import (
	"context"

	"class_chat_server/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository 创建消息 Repository
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

// Create 写入消息
// (chat_room_uuid, sender_id, client_message_id) 冲突时返回 CodeConflict
func (r *messageRepository) Create(ctx context.Context, message *model.ChatMessage) error {
	if err := r.db.WithContext(ctx).Create(message).Error; err != nil {
		return wrapDBErrorf(err, "创建消息 room=%s sender=%s", message.ChatRoomUuid, message.SenderId)
	}
	return nil
}

// FindByClientMessageId 按幂等键查找消息
func (r *messageRepository) FindByClientMessageId(ctx context.Context, roomUuid, senderId, clientMessageId string) (*model.ChatMessage, error) {
	var message model.ChatMessage
	if err := r.db.WithContext(ctx).
		Where("chat_room_uuid = ? AND sender_id = ? AND client_message_id = ?", roomUuid, senderId, clientMessageId).
		First(&message).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询消息 room=%s sender=%s client_message_id=%s", roomUuid, senderId, clientMessageId)
	}
	return &message, nil
}

// FindPageByRoom 按创建时间倒序分页查询（最新的在前）
// 同一时间戳内按自增主键排序，保证分页稳定
func (r *messageRepository) FindPageByRoom(ctx context.Context, roomUuid string, offset, limit int) ([]model.ChatMessage, error) {
	var messages []model.ChatMessage
	if err := r.db.WithContext(ctx).
		Where("chat_room_uuid = ?", roomUuid).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "created_at"}, Desc: true}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}, Desc: true}).
		Offset(offset).
		Limit(limit).
		Find(&messages).Error; err != nil {
		return nil, wrapDBErrorf(err, "分页查询消息 room=%s", roomUuid)
	}
	return messages, nil
}

// CountByRoom 统计聊天室消息总数
func (r *messageRepository) CountByRoom(ctx context.Context, roomUuid string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.ChatMessage{}).Where("chat_room_uuid = ?", roomUuid).Count(&count).Error; err != nil {
		return 0, wrapDBErrorf(err, "统计消息 room=%s", roomUuid)
	}
	return count, nil
}
