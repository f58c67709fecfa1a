package repository

import (
	"context"

	"gorm.io/gorm"

	"maktab/backend/internal/model"
)

// RatingRepository 评分/考勤数据访问接口
type RatingRepository interface {
	Create(ctx context.Context, rating *model.Rating) error
	ListByStudent(ctx context.Context, studentID string) ([]model.Rating, error)
	ListByGroups(ctx context.Context, groupIDs []string) ([]model.Rating, error)
	ListAll(ctx context.Context) ([]model.Rating, error)
}

type ratingRepo struct {
	db *gorm.DB
}

// NewRatingRepo 创建 RatingRepository 实例
func NewRatingRepo(db *gorm.DB) RatingRepository {
	return &ratingRepo{db: db}
}

func (r *ratingRepo) Create(ctx context.Context, rating *model.Rating) error {
	return r.db.WithContext(ctx).Create(rating).Error
}

func (r *ratingRepo) ListByStudent(ctx context.Context, studentID string) ([]model.Rating, error) {
	var ratings []model.Rating
	err := r.preloaded(ctx).
		Where("student_id = ?", studentID).
		Order("created_at DESC").
		Find(&ratings).Error
	return ratings, err
}

func (r *ratingRepo) ListByGroups(ctx context.Context, groupIDs []string) ([]model.Rating, error) {
	var ratings []model.Rating
	if len(groupIDs) == 0 {
		return ratings, nil
	}
	err := r.preloaded(ctx).
		Where("group_id IN ?", groupIDs).
		Order("created_at DESC").
		Find(&ratings).Error
	return ratings, err
}

func (r *ratingRepo) ListAll(ctx context.Context) ([]model.Rating, error) {
	var ratings []model.Rating
	err := r.preloaded(ctx).
		Order("created_at DESC").
		Find(&ratings).Error
	return ratings, err
}

func (r *ratingRepo) preloaded(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Student").
		Preload("Group")
}
