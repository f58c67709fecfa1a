package repository

import (
	"context"

	"gorm.io/gorm"

	"maktab/backend/internal/model"
)

// GroupRepository 学习小组数据访问接口
type GroupRepository interface {
	Create(ctx context.Context, group *model.Group) error
	GetByID(ctx context.Context, id string) (*model.Group, error)
	ListAll(ctx context.Context) ([]model.Group, error)
	ListByTeacher(ctx context.Context, teacherID string) ([]model.Group, error)
	ListByStudent(ctx context.Context, studentID string) ([]model.Group, error)
	IDsByTeacher(ctx context.Context, teacherID string) ([]string, error)
	IDsByStudent(ctx context.Context, studentID string) ([]string, error)
	IsEnrolled(ctx context.Context, groupID, studentID string) (bool, error)
	CountStudents(ctx context.Context, groupIDs []string) (map[string]int64, error)
	ReplaceStudents(ctx context.Context, group *model.Group, students []model.User) error
}

type groupRepo struct {
	db *gorm.DB
}

// NewGroupRepo 创建 GroupRepository 实例
func NewGroupRepo(db *gorm.DB) GroupRepository {
	return &groupRepo{db: db}
}

// Create 创建小组，Students 关联一并写入 group_students
func (r *groupRepo) Create(ctx context.Context, group *model.Group) error {
	return r.db.WithContext(ctx).Create(group).Error
}

func (r *groupRepo) GetByID(ctx context.Context, id string) (*model.Group, error) {
	var group model.Group
	err := r.db.WithContext(ctx).
		Preload("Course").
		Preload("Teacher").
		Preload("Students").
		Where("group_id = ?", id).
		First(&group).Error
	if err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *groupRepo) ListAll(ctx context.Context) ([]model.Group, error) {
	var groups []model.Group
	err := r.db.WithContext(ctx).
		Preload("Course").
		Preload("Teacher").
		Order("name ASC").
		Find(&groups).Error
	return groups, err
}

func (r *groupRepo) ListByTeacher(ctx context.Context, teacherID string) ([]model.Group, error) {
	var groups []model.Group
	err := r.db.WithContext(ctx).
		Preload("Course").
		Preload("Teacher").
		Where("teacher_id = ?", teacherID).
		Order("name ASC").
		Find(&groups).Error
	return groups, err
}

func (r *groupRepo) ListByStudent(ctx context.Context, studentID string) ([]model.Group, error) {
	var groups []model.Group
	err := r.db.WithContext(ctx).
		Preload("Course").
		Preload("Teacher").
		Joins("JOIN group_students gs ON gs.group_id = study_groups.group_id").
		Where("gs.student_id = ?", studentID).
		Order("study_groups.name ASC").
		Find(&groups).Error
	return groups, err
}

func (r *groupRepo) IDsByTeacher(ctx context.Context, teacherID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&model.Group{}).
		Where("teacher_id = ?", teacherID).
		Pluck("group_id", &ids).Error
	return ids, err
}

func (r *groupRepo) IDsByStudent(ctx context.Context, studentID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Table("group_students").
		Where("student_id = ?", studentID).
		Pluck("group_id", &ids).Error
	return ids, err
}

func (r *groupRepo) IsEnrolled(ctx context.Context, groupID, studentID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("group_students").
		Where("group_id = ? AND student_id = ?", groupID, studentID).
		Count(&count).Error
	return count > 0, err
}

// CountStudents 按小组统计在读学生数
func (r *groupRepo) CountStudents(ctx context.Context, groupIDs []string) (map[string]int64, error) {
	counts := make(map[string]int64, len(groupIDs))
	if len(groupIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		GroupID string
		Total   int64
	}
	err := r.db.WithContext(ctx).
		Table("group_students").
		Select("group_id, COUNT(*) AS total").
		Where("group_id IN ?", groupIDs).
		Group("group_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.GroupID] = row.Total
	}
	return counts, nil
}

// ReplaceStudents 用给定学生集合整体替换小组成员
func (r *groupRepo) ReplaceStudents(ctx context.Context, group *model.Group, students []model.User) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(group).Association("Students").Replace(students); err != nil {
			return err
		}
		group.Students = students
		return nil
	})
}
