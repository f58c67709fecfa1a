package repository

import (
	"context"

	"gorm.io/gorm"

	"maktab/backend/internal/model"
)

// HomeworkRepository 作业数据访问接口
type HomeworkRepository interface {
	Create(ctx context.Context, homework *model.Homework) error
	GetByID(ctx context.Context, id string) (*model.Homework, error)
	ListByGroups(ctx context.Context, groupIDs []string) ([]model.Homework, error)
	CountByGroups(ctx context.Context, groupIDs []string) (int64, error)
}

type homeworkRepo struct {
	db *gorm.DB
}

// NewHomeworkRepo 创建 HomeworkRepository 实例
func NewHomeworkRepo(db *gorm.DB) HomeworkRepository {
	return &homeworkRepo{db: db}
}

func (r *homeworkRepo) Create(ctx context.Context, homework *model.Homework) error {
	return r.db.WithContext(ctx).Create(homework).Error
}

// GetByID 加载作业及其小组、课程、教师
func (r *homeworkRepo) GetByID(ctx context.Context, id string) (*model.Homework, error) {
	var homework model.Homework
	err := r.db.WithContext(ctx).
		Preload("Group").
		Preload("Group.Course").
		Preload("Group.Teacher").
		Where("homework_id = ?", id).
		First(&homework).Error
	if err != nil {
		return nil, err
	}
	return &homework, nil
}

// ListByGroups 按创建时间倒序列出给定小组的作业
func (r *homeworkRepo) ListByGroups(ctx context.Context, groupIDs []string) ([]model.Homework, error) {
	var homeworks []model.Homework
	if len(groupIDs) == 0 {
		return homeworks, nil
	}
	err := r.db.WithContext(ctx).
		Preload("Group").
		Preload("Group.Course").
		Where("group_id IN ?", groupIDs).
		Order("created_at DESC").
		Find(&homeworks).Error
	return homeworks, err
}

func (r *homeworkRepo) CountByGroups(ctx context.Context, groupIDs []string) (int64, error) {
	var count int64
	if len(groupIDs) == 0 {
		return 0, nil
	}
	err := r.db.WithContext(ctx).
		Model(&model.Homework{}).
		Where("group_id IN ?", groupIDs).
		Count(&count).Error
	return count, err
}
