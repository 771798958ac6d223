package model

import "gorm.io/gorm"

// ChatMessage 班级聊天消息
// 对应数据库 chat_message 表
// 消息一经写入不再修改或删除
type ChatMessage struct {
	gorm.Model

	// Uuid 消息雪花ID
	Uuid int64 `gorm:"column:uuid;uniqueIndex;type:bigint;not null;comment:消息雪花ID"`

	// ChatRoomUuid 所属聊天室
	ChatRoomUuid string `gorm:"column:chat_room_uuid;type:char(20);not null;index:idx_chat_message_room;uniqueIndex:ux_room_sender_client,priority:1;comment:聊天室id"`

	// SenderId 发送者 UUID
	SenderId string `gorm:"column:sender_id;type:char(20);not null;uniqueIndex:ux_room_sender_client,priority:2;comment:发送者uuid"`

	// SenderRole 发送时的角色
	SenderRole string `gorm:"column:sender_role;type:varchar(16);not null;comment:发送者角色"`

	// MessageType 消息类型：text / image / pdf / audio
	MessageType string `gorm:"column:message_type;type:varchar(8);not null;comment:消息类型"`

	// Text 文本内容，纯附件消息为 NULL
	Text *string `gorm:"column:text;type:TEXT;comment:文本内容"`

	// MediaUrl 附件访问地址
	MediaUrl *string `gorm:"column:media_url;type:varchar(255);comment:附件url"`

	// MediaAssetId 附件在存储服务中的标识
	MediaAssetId *string `gorm:"column:media_asset_id;type:varchar(64);comment:附件id"`

	// ClientMessageId 客户端生成的幂等键
	// 与 (chat_room_uuid, sender_id) 组成唯一索引，NULL 不参与唯一性比较
	ClientMessageId *string `gorm:"column:client_message_id;type:varchar(64);uniqueIndex:ux_room_sender_client,priority:3;comment:客户端消息id"`
}

// TableName 指定表名
func (ChatMessage) TableName() string {
	return "chat_message"
}
