// Package repository 提供数据访问层的具体实现
// 本文件实现 ClassRepository 接口，读取教务系统维护的班级与名册
package repository

import (
	"context"

	"class_chat_server/internal/model"

	"gorm.io/gorm"
)

// classRepository ClassRepository 接口的实现
type classRepository struct {
	db *gorm.DB // GORM 数据库实例
}

// NewClassRepository 创建 ClassRepository 实例
func NewClassRepository(db *gorm.DB) ClassRepository {
	return &classRepository{db: db}
}

// FindByUuid 根据班级 UUID 查找班级
func (r *classRepository) FindByUuid(ctx context.Context, uuid string) (*model.ClassInfo, error) {
	var class model.ClassInfo
	if err := r.db.WithContext(ctx).First(&class, "uuid = ?", uuid).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询班级 uuid=%s", uuid)
	}
	return &class, nil
}

// IsTeacherAssigned 判断教师是否负责该班级
// 班主任（class_info.teacher_id）或任课教师（class_teacher）均视为已分配
func (r *classRepository) IsTeacherAssigned(ctx context.Context, classUuid, teacherUuid string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.ClassInfo{}).
		Where("uuid = ? AND teacher_id = ?", classUuid, teacherUuid).
		Count(&count).Error; err != nil {
		return false, wrapDBErrorf(err, "查询班主任 class=%s teacher=%s", classUuid, teacherUuid)
	}
	if count > 0 {
		return true, nil
	}
	if err := r.db.WithContext(ctx).Model(&model.ClassTeacher{}).
		Where("class_uuid = ? AND teacher_uuid = ?", classUuid, teacherUuid).
		Count(&count).Error; err != nil {
		return false, wrapDBErrorf(err, "查询任课教师 class=%s teacher=%s", classUuid, teacherUuid)
	}
	return count > 0, nil
}

// IsStudentMember 判断学生是否在班级名册中
func (r *classRepository) IsStudentMember(ctx context.Context, classUuid, studentUuid string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.ClassStudent{}).
		Where("class_uuid = ? AND student_uuid = ?", classUuid, studentUuid).
		Count(&count).Error; err != nil {
		return false, wrapDBErrorf(err, "查询班级学生 class=%s student=%s", classUuid, studentUuid)
	}
	return count > 0, nil
}

// FindMemberIds 获取班级全部成员 UUID（去重）
// 用于离线通知时确定需要提醒的用户
func (r *classRepository) FindMemberIds(ctx context.Context, classUuid string) ([]string, error) {
	class, err := r.FindByUuid(ctx, classUuid)
	if err != nil {
		return nil, err
	}

	var teachers, students []string
	if err := r.db.WithContext(ctx).Model(&model.ClassTeacher{}).
		Where("class_uuid = ?", classUuid).
		Pluck("teacher_uuid", &teachers).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询任课教师列表 class=%s", classUuid)
	}
	if err := r.db.WithContext(ctx).Model(&model.ClassStudent{}).
		Where("class_uuid = ?", classUuid).
		Pluck("student_uuid", &students).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询班级学生列表 class=%s", classUuid)
	}

	seen := make(map[string]struct{}, len(teachers)+len(students)+1)
	ids := make([]string, 0, len(teachers)+len(students)+1)
	add := func(id string) {
		if id == "" {
			return
		}
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	add(class.TeacherId)
	for _, id := range teachers {
		add(id)
	}
	for _, id := range students {
		add(id)
	}
	return ids, nil
}
