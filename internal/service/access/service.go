package access

import (
	"context"

	"class_chat_server/internal/dao/mysql/repository"
	"class_chat_server/internal/model"
	"class_chat_server/pkg/enum/role_enum"
	"class_chat_server/pkg/errorx"
	"class_chat_server/pkg/util/jwt"

	"go.uber.org/zap"
)

// Service 身份识别与访问控制服务
type Service struct {
	repos *repository.Repositories
}

// NewService 创建访问控制服务
func NewService(repos *repository.Repositories) *Service {
	return &Service{repos: repos}
}

// Identify 校验 Access Token 并加载调用者身份
// Token 无效、过期、用户不存在或已禁用时统一返回 CodeUnauthorized
func (s *Service) Identify(ctx context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, errorx.New(errorx.CodeUnauthorized, "缺少认证信息")
	}
	claims, err := jwt.ParseToken(token)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.CodeUnauthorized, "token 无效或已过期")
	}
	if !claims.IsAccessToken() || claims.UserID == "" {
		return nil, errorx.New(errorx.CodeUnauthorized, "token 类型错误")
	}

	user, err := s.repos.User.FindByUuid(ctx, claims.UserID)
	if err != nil {
		if !errorx.IsNotFound(err) {
			zap.L().Error("认证时查询用户失败", zap.String("user_id", claims.UserID), zap.Error(err))
		}
		return nil, errorx.Wrap(err, errorx.CodeUnauthorized, "用户不存在")
	}
	if !user.IsActive() {
		return nil, errorx.New(errorx.CodeUnauthorized, "账号已被禁用")
	}
	// 以数据库中的角色为准，Token 中的角色可能已过时
	role, ok := role_enum.Parse(user.Role)
	if !ok {
		return nil, errorx.Newf(errorx.CodeUnauthorized, "未知角色 %s", user.Role)
	}

	return &Identity{
		UserId:   user.Uuid,
		Role:     role,
		SchoolId: user.SchoolId,
		Nickname: user.Nickname,
	}, nil
}

// Authorize 校验调用者能否对班级执行指定操作，成功时返回班级
// 校验顺序：班级存在 -> 班级正常 -> 权限
func (s *Service) Authorize(ctx context.Context, id *Identity, classId string, action Action) (*model.ClassInfo, error) {
	if classId == "" {
		return nil, errorx.New(errorx.CodeInvalidParam, "classId 不能为空")
	}
	class, err := s.repos.Class.FindByUuid(ctx, classId)
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.ErrClassNotFound
		}
		return nil, err
	}
	if !class.IsActive() {
		return nil, errorx.ErrClassInactive
	}

	roster, err := s.loadRoster(ctx, id, classId)
	if err != nil {
		return nil, err
	}
	if !CanAccess(id, class, roster).Allows(action) {
		return nil, errorx.ErrForbidden
	}
	return class, nil
}

// loadRoster 只查询与调用者角色相关的名册关系
func (s *Service) loadRoster(ctx context.Context, id *Identity, classId string) (Roster, error) {
	var roster Roster
	if id == nil {
		return roster, nil
	}
	var err error
	switch id.Role {
	case role_enum.Teacher:
		roster.TeacherAssigned, err = s.repos.Class.IsTeacherAssigned(ctx, classId, id.UserId)
	case role_enum.Student:
		roster.StudentMember, err = s.repos.Class.IsStudentMember(ctx, classId, id.UserId)
	}
	return roster, err
}
