// Package access 负责身份识别与班级聊天室的访问控制
// 两条入口（HTTP 与 WebSocket）共用同一套规则
package access

import (
	"class_chat_server/internal/model"
	"class_chat_server/pkg/enum/role_enum"
)

// Identity 已认证的调用者
type Identity struct {
	UserId   string
	Role     role_enum.Role
	SchoolId string
	Nickname string
}

// Roster 调用者与班级的名册关系
type Roster struct {
	TeacherAssigned bool // 班主任或任课教师
	StudentMember   bool // 在班级学生名册中
}

// Permission 调用者对班级聊天室的权限
type Permission struct {
	CanJoin bool
	CanSend bool
}

// Action 需要校验的操作
type Action int

const (
	ActionJoin Action = iota // 进入聊天室、查看历史
	ActionSend               // 发送消息
)

// Allows 判断权限是否覆盖指定操作
func (p Permission) Allows(action Action) bool {
	switch action {
	case ActionJoin:
		return p.CanJoin
	case ActionSend:
		return p.CanSend
	}
	return false
}

// CanAccess 根据角色、班级与名册关系计算权限
//   - 教师：被分配到该班级
//   - 学生：在班级名册中
//   - 校长、超级管理员：与班级属于同一学校
func CanAccess(id *Identity, class *model.ClassInfo, roster Roster) Permission {
	if id == nil || class == nil {
		return Permission{}
	}
	var ok bool
	switch id.Role {
	case role_enum.Teacher:
		ok = roster.TeacherAssigned
	case role_enum.Student:
		ok = roster.StudentMember
	case role_enum.Principal, role_enum.SuperAdmin:
		ok = id.SchoolId != "" && id.SchoolId == class.SchoolId
	}
	return Permission{CanJoin: ok, CanSend: ok}
}
