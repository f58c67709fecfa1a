package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"maktab/backend/internal/dto"
	"maktab/backend/internal/model"
	"maktab/backend/internal/repository"
	apperrors "maktab/backend/pkg/errors"
)

// ── 小组模块业务错误 ──

var (
	ErrGroupNotFound   = apperrors.New(apperrors.KindNotFound, 14001, "小组不存在")
	ErrTeacherRequired = apperrors.New(apperrors.KindValidation, 14002, "指定的教师不存在或角色不是 TEACHER")
	ErrStudentRequired = apperrors.New(apperrors.KindValidation, 14003, "学生列表中包含不存在或角色不是 STUDENT 的用户")
	ErrInvalidWeekDays = apperrors.New(apperrors.KindValidation, 14004, "上课日只能是 Mon..Sat")
)

// GroupService 学习小组业务接口
type GroupService interface {
	Create(ctx context.Context, req *dto.CreateGroupRequest) (*dto.GroupResponse, error)
	SetStudents(ctx context.Context, groupID string, req *dto.SetGroupStudentsRequest) (*dto.GroupResponse, error)
	// ListMine 教师看所授小组，学生看所在小组，管理员看全部
	ListMine(ctx context.Context, p model.Principal) ([]dto.GroupResponse, error)
}

type groupService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewGroupService 创建 GroupService 实例
func NewGroupService(repo *repository.Repository, logger *zap.Logger) GroupService {
	return &groupService{repo: repo, logger: logger}
}

func (s *groupService) Create(ctx context.Context, req *dto.CreateGroupRequest) (*dto.GroupResponse, error) {
	for _, d := range req.Days {
		if !model.ValidWeekDay(d) {
			return nil, ErrInvalidWeekDays
		}
	}

	course, err := s.repo.Course.GetByID(ctx, req.CourseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		s.logger.Error("查询课程失败", zap.Error(err))
		return nil, err
	}

	teacher, err := s.repo.User.GetByID(ctx, req.TeacherID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeacherRequired
		}
		s.logger.Error("查询教师失败", zap.Error(err))
		return nil, err
	}
	if teacher.Role != model.RoleTeacher {
		return nil, ErrTeacherRequired
	}

	students, err := s.loadStudents(ctx, req.StudentIDs)
	if err != nil {
		return nil, err
	}

	group := &model.Group{
		Name:      strings.TrimSpace(req.Name),
		CourseID:  course.CourseID,
		TeacherID: teacher.UserID,
		Days:      datatypes.JSONSlice[string](req.Days),
		Students:  students,
	}
	if err := s.repo.Group.Create(ctx, group); err != nil {
		s.logger.Error("创建小组失败", zap.Error(err))
		return nil, err
	}
	group.Course = course
	group.Teacher = teacher

	s.logger.Info("创建小组",
		zap.String("group_id", group.GroupID),
		zap.String("teacher_id", teacher.UserID),
		zap.Int("students", len(students)),
	)
	return toGroupResponse(group, int64(len(students))), nil
}

func (s *groupService) SetStudents(ctx context.Context, groupID string, req *dto.SetGroupStudentsRequest) (*dto.GroupResponse, error) {
	if !validID(groupID) {
		return nil, ErrGroupNotFound
	}
	group, err := s.repo.Group.GetByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}
		s.logger.Error("查询小组失败", zap.Error(err))
		return nil, err
	}

	students, err := s.loadStudents(ctx, req.StudentIDs)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Group.ReplaceStudents(ctx, group, students); err != nil {
		s.logger.Error("更新小组学生失败", zap.String("group_id", groupID), zap.Error(err))
		return nil, err
	}
	return toGroupResponse(group, int64(len(students))), nil
}

func (s *groupService) ListMine(ctx context.Context, p model.Principal) ([]dto.GroupResponse, error) {
	var (
		groups []model.Group
		err    error
	)
	switch p.Role {
	case model.RoleAdmin:
		groups, err = s.repo.Group.ListAll(ctx)
	case model.RoleTeacher:
		groups, err = s.repo.Group.ListByTeacher(ctx, p.UserID)
	case model.RoleStudent:
		groups, err = s.repo.Group.ListByStudent(ctx, p.UserID)
	default:
		return nil, ErrForbiddenRole
	}
	if err != nil {
		s.logger.Error("查询小组列表失败", zap.Error(err))
		return nil, err
	}

	ids := make([]string, 0, len(groups))
	for i := range groups {
		ids = append(ids, groups[i].GroupID)
	}
	counts, err := s.repo.Group.CountStudents(ctx, ids)
	if err != nil {
		s.logger.Error("统计小组人数失败", zap.Error(err))
		return nil, err
	}

	list := make([]dto.GroupResponse, 0, len(groups))
	for i := range groups {
		list = append(list, *toGroupResponse(&groups[i], counts[groups[i].GroupID]))
	}
	return list, nil
}

// loadStudents 加载并校验学生：全部存在且角色为 STUDENT
func (s *groupService) loadStudents(ctx context.Context, ids []string) ([]model.User, error) {
	if len(ids) == 0 {
		return []model.User{}, nil
	}
	users, err := s.repo.User.GetByIDs(ctx, ids)
	if err != nil {
		s.logger.Error("查询学生失败", zap.Error(err))
		return nil, err
	}
	if len(users) != len(ids) {
		return nil, ErrStudentRequired
	}
	for i := range users {
		if users[i].Role != model.RoleStudent {
			return nil, fmt.Errorf("%w: %s", ErrStudentRequired, users[i].Phone)
		}
	}
	return users, nil
}

func toGroupResponse(g *model.Group, studentCount int64) *dto.GroupResponse {
	resp := &dto.GroupResponse{
		ID:           g.GroupID,
		Name:         g.Name,
		CourseID:     g.CourseID,
		TeacherID:    g.TeacherID,
		Days:         []string(g.Days),
		StudentCount: studentCount,
	}
	if resp.Days == nil {
		resp.Days = []string{}
	}
	if g.Course != nil {
		resp.CourseName = g.Course.Name
	}
	if g.Teacher != nil {
		resp.TeacherName = g.Teacher.DisplayName()
	}
	return resp
}
