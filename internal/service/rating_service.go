package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"maktab/backend/internal/dto"
	"maktab/backend/internal/model"
	"maktab/backend/internal/repository"
	apperrors "maktab/backend/pkg/errors"
)

var (
	ErrRatingStudentNotEnrolled = apperrors.New(apperrors.KindValidation, 16001, "该学生不在此小组")
	ErrRatingScoreRange         = apperrors.New(apperrors.KindValidation, 16002, "分数必须在 0-100 之间")
)

// RatingService 评分/考勤业务接口
type RatingService interface {
	// List 学生看自己的，教师看所授小组的，管理员看全部
	List(ctx context.Context, p model.Principal) ([]dto.RatingResponse, error)
	// Create 小组教师或管理员为组内学生录入评分
	Create(ctx context.Context, p model.Principal, req *dto.CreateRatingRequest) (*dto.RatingResponse, error)
}

type ratingService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewRatingService 创建 RatingService 实例
func NewRatingService(repo *repository.Repository, logger *zap.Logger) RatingService {
	return &ratingService{repo: repo, logger: logger}
}

func (s *ratingService) List(ctx context.Context, p model.Principal) ([]dto.RatingResponse, error) {
	var (
		ratings []model.Rating
		err     error
	)
	switch p.Role {
	case model.RoleStudent:
		ratings, err = s.repo.Rating.ListByStudent(ctx, p.UserID)
	case model.RoleTeacher:
		var ids []string
		if ids, err = s.repo.Group.IDsByTeacher(ctx, p.UserID); err == nil {
			ratings, err = s.repo.Rating.ListByGroups(ctx, ids)
		}
	case model.RoleAdmin:
		ratings, err = s.repo.Rating.ListAll(ctx)
	default:
		return nil, ErrForbiddenRole
	}
	if err != nil {
		s.logger.Error("查询评分失败", zap.Error(err))
		return nil, err
	}

	list := make([]dto.RatingResponse, 0, len(ratings))
	for i := range ratings {
		list = append(list, toRatingResponse(&ratings[i]))
	}
	return list, nil
}

func (s *ratingService) Create(ctx context.Context, p model.Principal, req *dto.CreateRatingRequest) (*dto.RatingResponse, error) {
	if !p.Is(model.RoleTeacher) && !p.Is(model.RoleAdmin) {
		return nil, ErrForbiddenRole
	}
	if req.Score == nil || *req.Score < 0 || *req.Score > 100 {
		return nil, ErrRatingScoreRange
	}

	group, err := s.repo.Group.GetByID(ctx, req.GroupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}
		s.logger.Error("查询小组失败", zap.Error(err))
		return nil, err
	}
	if p.Is(model.RoleTeacher) && group.TeacherID != p.UserID {
		return nil, ErrForbiddenOwnership
	}
	if !group.HasStudent(req.StudentID) {
		return nil, ErrRatingStudentNotEnrolled
	}

	attendance := true
	if req.Attendance != nil {
		attendance = *req.Attendance
	}
	rating := &model.Rating{
		StudentID:  req.StudentID,
		GroupID:    group.GroupID,
		Score:      *req.Score,
		Attendance: attendance,
		CreatedAt:  time.Now(),
	}
	if err := s.repo.Rating.Create(ctx, rating); err != nil {
		s.logger.Error("创建评分失败", zap.Error(err))
		return nil, err
	}

	rating.Group = group
	for i := range group.Students {
		if group.Students[i].UserID == req.StudentID {
			rating.Student = &group.Students[i]
			break
		}
	}

	resp := toRatingResponse(rating)
	return &resp, nil
}

func toRatingResponse(r *model.Rating) dto.RatingResponse {
	resp := dto.RatingResponse{
		ID:         r.RatingID,
		StudentID:  r.StudentID,
		GroupID:    r.GroupID,
		Score:      r.Score,
		Attendance: r.Attendance,
		CreatedAt:  r.CreatedAt.Format(time.RFC3339),
	}
	if r.Student != nil {
		resp.StudentPhone = r.Student.Phone
		resp.StudentName = r.Student.FullName
	}
	if r.Group != nil {
		resp.GroupName = r.Group.Name
	}
	return resp
}
