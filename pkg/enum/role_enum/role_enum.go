// Package role_enum 定义系统中的用户角色
package role_enum

// Role 用户角色，取值固定为下列四种
type Role string

const (
	Principal  Role = "PRINCIPAL"   // 校长
	Teacher    Role = "TEACHER"     // 教师
	Student    Role = "STUDENT"     // 学生
	SuperAdmin Role = "SUPER_ADMIN" // 超级管理员
)

// Valid 判断角色是否为已知取值
func (r Role) Valid() bool {
	switch r {
	case Principal, Teacher, Student, SuperAdmin:
		return true
	}
	return false
}

// Parse 将字符串转换为角色，未知取值返回 false
func Parse(s string) (Role, bool) {
	r := Role(s)
	return r, r.Valid()
}
