package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"maktab/backend/internal/dto"
	"maktab/backend/internal/model"
	"maktab/backend/internal/repository"
	apperrors "maktab/backend/pkg/errors"
)

var (
	ErrCourseNotFound = apperrors.New(apperrors.KindNotFound, 13001, "课程不存在")
	ErrCourseExists   = apperrors.New(apperrors.KindConflict, 13002, "课程名称已存在")
)

// CourseService 课程业务接口
type CourseService interface {
	Create(ctx context.Context, req *dto.CreateCourseRequest) (*dto.CourseResponse, error)
	List(ctx context.Context) ([]dto.CourseResponse, error)
}

type courseService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewCourseService 创建 CourseService 实例
func NewCourseService(repo *repository.Repository, logger *zap.Logger) CourseService {
	return &courseService{repo: repo, logger: logger}
}

func (s *courseService) Create(ctx context.Context, req *dto.CreateCourseRequest) (*dto.CourseResponse, error) {
	name := strings.TrimSpace(req.Name)
	if _, err := s.repo.Course.GetByName(ctx, name); err == nil {
		return nil, ErrCourseExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询课程失败", zap.Error(err))
		return nil, err
	}

	course := &model.Course{Name: name, Description: req.Description}
	if err := s.repo.Course.Create(ctx, course); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrCourseExists
		}
		s.logger.Error("创建课程失败", zap.Error(err))
		return nil, err
	}
	return toCourseResponse(course), nil
}

func (s *courseService) List(ctx context.Context) ([]dto.CourseResponse, error) {
	courses, err := s.repo.Course.List(ctx)
	if err != nil {
		s.logger.Error("查询课程列表失败", zap.Error(err))
		return nil, err
	}
	list := make([]dto.CourseResponse, 0, len(courses))
	for i := range courses {
		list = append(list, *toCourseResponse(&courses[i]))
	}
	return list, nil
}

func toCourseResponse(c *model.Course) *dto.CourseResponse {
	return &dto.CourseResponse{ID: c.CourseID, Name: c.Name, Description: c.Description}
}
