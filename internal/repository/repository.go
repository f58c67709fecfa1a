package repository

import "gorm.io/gorm"

// Repository 所有 Repository 的聚合入口
type Repository struct {
	User       UserRepository
	Course     CourseRepository
	Group      GroupRepository
	Schedule   ScheduleRepository
	Homework   HomeworkRepository
	Submission SubmissionRepository
	Rating     RatingRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		User:       NewUserRepo(db),
		Course:     NewCourseRepo(db),
		Group:      NewGroupRepo(db),
		Schedule:   NewScheduleRepo(db),
		Homework:   NewHomeworkRepo(db),
		Submission: NewSubmissionRepo(db),
		Rating:     NewRatingRepo(db),
	}
}
