package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"maktab/backend/internal/model"
)

// SubmissionFilter 教师查看提交时的筛选条件
type SubmissionFilter struct {
	GroupIDs []string
	GroupID  string // 可选，限定单个小组
	Graded   *bool  // nil 不过滤；true 仅已评分；false 仅未评分
}

// SubmissionRepository 作业提交数据访问接口
type SubmissionRepository interface {
	// Create 写入提交；(homework_id, student_id) 冲突时返回 gorm.ErrDuplicatedKey
	Create(ctx context.Context, sub *model.HomeworkSubmission) error
	GetByID(ctx context.Context, id string) (*model.HomeworkSubmission, error)
	GetByHomeworkAndStudent(ctx context.Context, homeworkID, studentID string) (*model.HomeworkSubmission, error)
	ListByStudent(ctx context.Context, studentID string) ([]model.HomeworkSubmission, error)
	ListByGroups(ctx context.Context, filter SubmissionFilter) ([]model.HomeworkSubmission, error)
	CountByHomeworks(ctx context.Context, homeworkIDs []string) (map[string]int64, error)
	CountUngradedByGroups(ctx context.Context, groupIDs []string) (int64, error)
	UpdateGrade(ctx context.Context, sub *model.HomeworkSubmission) error
}

type submissionRepo struct {
	db *gorm.DB
}

// NewSubmissionRepo 创建 SubmissionRepository 实例
func NewSubmissionRepo(db *gorm.DB) SubmissionRepository {
	return &submissionRepo{db: db}
}

// Create 只写 homework_submissions 一张表，已加载的 Homework/Student 关联不回写
func (r *submissionRepo) Create(ctx context.Context, sub *model.HomeworkSubmission) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(sub).Error
}

func (r *submissionRepo) GetByID(ctx context.Context, id string) (*model.HomeworkSubmission, error) {
	var sub model.HomeworkSubmission
	err := r.db.WithContext(ctx).
		Preload("Homework").
		Preload("Homework.Group").
		Preload("Student").
		Where("submission_id = ?", id).
		First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *submissionRepo) GetByHomeworkAndStudent(ctx context.Context, homeworkID, studentID string) (*model.HomeworkSubmission, error) {
	var sub model.HomeworkSubmission
	err := r.db.WithContext(ctx).
		Preload("Homework").
		Where("homework_id = ? AND student_id = ?", homeworkID, studentID).
		First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// ListByStudent 学生自己的全部提交，按提交时间倒序
func (r *submissionRepo) ListByStudent(ctx context.Context, studentID string) ([]model.HomeworkSubmission, error) {
	var subs []model.HomeworkSubmission
	err := r.db.WithContext(ctx).
		Preload("Homework").
		Preload("Homework.Group").
		Preload("Homework.Group.Course").
		Where("student_id = ?", studentID).
		Order("submitted_at DESC").
		Find(&subs).Error
	return subs, err
}

// ListByGroups 给定小组下作业的全部提交，按提交时间倒序
func (r *submissionRepo) ListByGroups(ctx context.Context, filter SubmissionFilter) ([]model.HomeworkSubmission, error) {
	var subs []model.HomeworkSubmission
	if len(filter.GroupIDs) == 0 {
		return subs, nil
	}

	db := r.db.WithContext(ctx).
		Preload("Homework").
		Preload("Homework.Group").
		Preload("Student").
		Joins("JOIN homeworks h ON h.homework_id = homework_submissions.homework_id").
		Where("h.group_id IN ?", filter.GroupIDs)
	if filter.GroupID != "" {
		db = db.Where("h.group_id = ?", filter.GroupID)
	}
	if filter.Graded != nil {
		if *filter.Graded {
			db = db.Where("homework_submissions.score IS NOT NULL")
		} else {
			db = db.Where("homework_submissions.score IS NULL")
		}
	}

	err := db.Order("homework_submissions.submitted_at DESC").Find(&subs).Error
	return subs, err
}

// CountByHomeworks 按作业统计提交数
func (r *submissionRepo) CountByHomeworks(ctx context.Context, homeworkIDs []string) (map[string]int64, error) {
	counts := make(map[string]int64, len(homeworkIDs))
	if len(homeworkIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		HomeworkID string
		Total      int64
	}
	err := r.db.WithContext(ctx).
		Model(&model.HomeworkSubmission{}).
		Select("homework_id, COUNT(*) AS total").
		Where("homework_id IN ?", homeworkIDs).
		Group("homework_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.HomeworkID] = row.Total
	}
	return counts, nil
}

func (r *submissionRepo) CountUngradedByGroups(ctx context.Context, groupIDs []string) (int64, error) {
	var count int64
	if len(groupIDs) == 0 {
		return 0, nil
	}
	err := r.db.WithContext(ctx).
		Model(&model.HomeworkSubmission{}).
		Joins("JOIN homeworks h ON h.homework_id = homework_submissions.homework_id").
		Where("h.group_id IN ? AND homework_submissions.score IS NULL", groupIDs).
		Count(&count).Error
	return count, err
}

// UpdateGrade 覆盖写入分数、评语与评分时间
func (r *submissionRepo) UpdateGrade(ctx context.Context, sub *model.HomeworkSubmission) error {
	return r.db.WithContext(ctx).
		Model(&model.HomeworkSubmission{}).
		Where("submission_id = ?", sub.SubmissionID).
		Updates(map[string]interface{}{
			"score":     sub.Score,
			"feedback":  sub.Feedback,
			"graded_at": sub.GradedAt,
		}).Error
}
