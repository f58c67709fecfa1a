package service

import (
	"context"

	"github.com/google/uuid"

	"maktab/backend/internal/model"
	"maktab/backend/internal/repository"
)

// groupScope 调用方可见的小组范围
// 管理员返回 nil（不限），教师为所授小组，学生为所在小组
func groupScope(ctx context.Context, repo *repository.Repository, p model.Principal) ([]string, error) {
	switch p.Role {
	case model.RoleAdmin:
		return nil, nil
	case model.RoleTeacher:
		return nonNil(repo.Group.IDsByTeacher(ctx, p.UserID))
	case model.RoleStudent:
		return nonNil(repo.Group.IDsByStudent(ctx, p.UserID))
	default:
		return nil, ErrForbiddenRole
	}
}

// nonNil 保证非管理员的范围为非 nil 切片，避免被当作"不限"
func nonNil(ids []string, err error) ([]string, error) {
	if err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// validID 主键均为 uuid 列，非法格式直接视为不存在，避免数据库报 22P02
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
