package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"maktab/backend/internal/model"
)

// ScheduleFilter 课程表查询条件；GroupIDs 为 nil 表示不限小组
type ScheduleFilter struct {
	GroupIDs []string
	From     *time.Time
	To       *time.Time
}

// ScheduleRepository 课程表数据访问接口
type ScheduleRepository interface {
	Create(ctx context.Context, schedule *model.Schedule) error
	List(ctx context.Context, filter ScheduleFilter) ([]model.Schedule, error)
}

type scheduleRepo struct {
	db *gorm.DB
}

// NewScheduleRepo 创建 ScheduleRepository 实例
func NewScheduleRepo(db *gorm.DB) ScheduleRepository {
	return &scheduleRepo{db: db}
}

func (r *scheduleRepo) Create(ctx context.Context, schedule *model.Schedule) error {
	return r.db.WithContext(ctx).Create(schedule).Error
}

// List 按日期、开始时间升序返回
func (r *scheduleRepo) List(ctx context.Context, filter ScheduleFilter) ([]model.Schedule, error) {
	var schedules []model.Schedule
	if filter.GroupIDs != nil && len(filter.GroupIDs) == 0 {
		return schedules, nil
	}

	db := r.db.WithContext(ctx).
		Preload("Group").
		Preload("Group.Course")
	if filter.GroupIDs != nil {
		db = db.Where("group_id IN ?", filter.GroupIDs)
	}
	if filter.From != nil {
		db = db.Where("date >= ?", *filter.From)
	}
	if filter.To != nil {
		db = db.Where("date <= ?", *filter.To)
	}

	err := db.Order("date ASC").Order("start_time ASC").Find(&schedules).Error
	return schedules, err
}
