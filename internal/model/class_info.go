// Package model 定义数据库实体模型
// 本文件定义班级及其师生关系模型，由教务系统维护，聊天服务只读
package model

import "gorm.io/gorm"

// ClassInfo 班级信息模型
// 对应数据库 class_info 表
type ClassInfo struct {
	gorm.Model

	// Uuid 班级唯一标识，格式：C + 雪花ID
	Uuid string `gorm:"column:uuid;uniqueIndex;type:char(20);not null;comment:班级唯一id"`

	// Name 班级名称，同时作为聊天室的展示名
	Name string `gorm:"column:name;type:varchar(50);not null;comment:班级名称"`

	// SchoolId 所属学校 ID，校长与超级管理员按学校划定访问范围
	SchoolId string `gorm:"column:school_id;index;type:char(20);not null;comment:学校id"`

	// TeacherId 班主任 UUID，为空表示尚未分配教师
	TeacherId string `gorm:"column:teacher_id;index;type:char(20);comment:班主任uuid"`

	// Status 班级状态
	// 0=正常, 1=停用
	Status int8 `gorm:"column:status;not null;default:0;comment:状态，0.正常，1.停用"`
}

// TableName 指定表名
func (ClassInfo) TableName() string {
	return "class_info"
}

// IsActive 班级是否处于正常状态
func (c *ClassInfo) IsActive() bool {
	return c.Status == 0
}

// ClassTeacher 任课教师分配表
// 班主任以外的任课教师通过此表与班级关联
type ClassTeacher struct {
	gorm.Model
	ClassUuid   string `gorm:"column:class_uuid;type:char(20);not null;uniqueIndex:ux_class_teacher,priority:1;comment:班级id"`
	TeacherUuid string `gorm:"column:teacher_uuid;type:char(20);not null;uniqueIndex:ux_class_teacher,priority:2;index;comment:教师id"`
	Subject     string `gorm:"column:subject;type:varchar(30);comment:任教科目"`
}

func (ClassTeacher) TableName() string {
	return "class_teacher"
}

// ClassStudent 班级学生名册
type ClassStudent struct {
	gorm.Model
	ClassUuid   string `gorm:"column:class_uuid;type:char(20);not null;uniqueIndex:ux_class_student,priority:1;comment:班级id"`
	StudentUuid string `gorm:"column:student_uuid;type:char(20);not null;uniqueIndex:ux_class_student,priority:2;index;comment:学生id"`
}

func (ClassStudent) TableName() string {
	return "class_student"
}
