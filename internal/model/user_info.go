// Package model 定义数据库实体模型
// 本文件定义用户信息模型，包含身份、角色与认证信息
package model

import (
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserInfo 用户信息模型
// 对应数据库 user_info 表，由账号中心维护，聊天服务只读取身份、角色与状态
type UserInfo struct {
	gorm.Model

	// Uuid 用户唯一标识，教师 T / 学生 U / 校长 P / 管理员 A + 雪花ID
	Uuid string `gorm:"column:uuid;uniqueIndex;type:char(20);comment:用户唯一id"`

	// Nickname 用户昵称
	Nickname string `gorm:"column:nickname;type:varchar(20);not null;comment:昵称"`

	// Role 角色：PRINCIPAL / TEACHER / STUDENT / SUPER_ADMIN
	Role string `gorm:"column:role;type:varchar(16);index;not null;comment:角色"`

	// SchoolId 所属学校
	SchoolId string `gorm:"column:school_id;index;type:char(20);comment:学校id"`

	// Password bcrypt 哈希，聊天服务不校验密码，仅在导入测试数据时写入
	Password string `gorm:"column:password;type:varchar(100);not null;comment:密码"`

	// Status 0=正常, 1=禁用；禁用账号无法建立连接
	Status int8 `gorm:"column:status;index;not null;comment:状态，0.正常，1.禁用"`

	// RawPassword 明文密码，不落库
	RawPassword string `gorm:"-" json:"-"`
}

// TableName 指定表名
func (UserInfo) TableName() string {
	return "user_info"
}

// BeforeSave 设置了 RawPassword 时写入其 bcrypt 哈希并清空明文
func (u *UserInfo) BeforeSave(tx *gorm.DB) error {
	if u.RawPassword == "" {
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(u.RawPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hash)
	u.RawPassword = ""
	return nil
}

// IsActive 账号是否处于正常状态
func (u *UserInfo) IsActive() bool {
	return u.Status == 0
}
