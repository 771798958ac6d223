package model

import "gorm.io/gorm"

// ChatRoom 班级聊天室
// 对应数据库 chat_room 表
// 每个班级至多一个聊天室，由 class_uuid 上的唯一索引保证，而非应用层加锁
type ChatRoom struct {
	gorm.Model

	// Uuid 聊天室唯一标识，格式：R + 雪花ID
	Uuid string `gorm:"column:uuid;uniqueIndex;type:char(20);not null;comment:聊天室唯一id"`

	// ClassUuid 所属班级，创建后不可修改
	ClassUuid string `gorm:"column:class_uuid;uniqueIndex;type:char(20);not null;comment:班级id"`

	// TeacherId 创建聊天室时班级的负责教师
	TeacherId string `gorm:"column:teacher_id;type:char(20);not null;comment:负责教师uuid"`

	// Name 展示名称，冗余自班级名称
	Name string `gorm:"column:name;type:varchar(50);comment:聊天室名称"`
}

// TableName 指定表名
func (ChatRoom) TableName() string {
	return "chat_room"
}
