package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"maktab/backend/internal/dto"
	"maktab/backend/internal/model"
	"maktab/backend/internal/repository"
	apperrors "maktab/backend/pkg/errors"
	"maktab/backend/pkg/storage"
)

// ── 作业模块业务错误 ──

var (
	ErrHomeworkNotFound     = apperrors.New(apperrors.KindNotFound, 17001, "作业不存在")
	ErrDeadlinePassed       = apperrors.New(apperrors.KindValidation, 17002, "已超过截止时间（24 小时）")
	ErrDuplicateSubmission  = apperrors.New(apperrors.KindValidation, 17003, "该作业已提交，不能重复提交")
	ErrFileRequired         = apperrors.New(apperrors.KindValidation, 17004, "请上传作业文件")
	ErrSubmissionNotFound   = apperrors.New(apperrors.KindNotFound, 17005, "提交记录不存在")
	ErrInvalidScore         = apperrors.New(apperrors.KindValidation, 17006, "分数必须是 0-100 之间的整数")
	ErrHomeworkGroupEmpty   = apperrors.New(apperrors.KindValidation, 17007, "必须指定小组")
	ErrHomeworkTitleEmpty   = apperrors.New(apperrors.KindValidation, 17008, "作业标题不能为空")
	ErrSubmissionFileGone   = apperrors.New(apperrors.KindNotFound, 17009, "提交文件已丢失")
	ErrHomeworkGroupInvalid = apperrors.New(apperrors.KindValidation, 17010, "指定的小组不存在")
)

const (
	recentHomeworkLimit    = 5
	recentSubmissionsLimit = 6
	maxHomeworkTitleLen    = 200
	maxFileNameLen         = 255

	submissionKeyPrefix = "submissions"
	// submissionFileURL 提交文件下载地址（鉴权后由服务端转发存储内容）
	submissionFileURL = "/api/v1/homework/submission/%s/file"
)

// Upload 待保存的上传文件
type Upload struct {
	Filename string
	Size     int64
	Content  io.Reader
}

// HomeworkService 作业业务接口
//
// 截止时间、是否过期、是否迟交、状态均在读取时由 model 方法推导，不落库。
type HomeworkService interface {
	// ── 教师 ──
	Create(ctx context.Context, p model.Principal, req *dto.CreateHomeworkRequest) (*dto.HomeworkResponse, error)
	Grade(ctx context.Context, p model.Principal, submissionID string, req *dto.GradeRequest) (*dto.TeacherSubmissionResponse, error)
	ListTeaching(ctx context.Context, p model.Principal) ([]dto.TeachingHomeworkResponse, error)
	ListSubmissions(ctx context.Context, p model.Principal, req *dto.SubmissionListRequest) ([]dto.TeacherSubmissionResponse, error)
	RecentSubmissions(ctx context.Context, p model.Principal) ([]dto.TeacherSubmissionResponse, error)
	TeacherStats(ctx context.Context, p model.Principal) (*dto.TeacherStatsResponse, error)

	// ── 学生 ──
	Submit(ctx context.Context, p model.Principal, homeworkID string, file *Upload) (*dto.SubmitResponse, error)
	ListForStudent(ctx context.Context, p model.Principal) ([]dto.HomeworkResponse, error)
	RecentForStudent(ctx context.Context, p model.Principal) ([]dto.HomeworkResponse, error)
	MySubmissions(ctx context.Context, p model.Principal) ([]dto.MySubmissionResponse, error)
	StudentStats(ctx context.Context, p model.Principal) (*dto.StudentStatsResponse, error)

	// ── 共用 ──
	Detail(ctx context.Context, p model.Principal, homeworkID string) (*dto.HomeworkDetailResponse, error)
	// OpenSubmissionFile 小组教师或提交者本人读取提交文件，调用方负责关闭
	OpenSubmissionFile(ctx context.Context, p model.Principal, submissionID string) (io.ReadCloser, string, error)
}

type homeworkService struct {
	repo   *repository.Repository
	store  storage.FileStorage
	now    func() time.Time
	logger *zap.Logger
}

// NewHomeworkService 创建 HomeworkService 实例
// now 为 nil 时使用 time.Now；创建时间、提交时间与过期判断共用这一时钟
func NewHomeworkService(
	repo *repository.Repository,
	store storage.FileStorage,
	now func() time.Time,
	logger *zap.Logger,
) HomeworkService {
	if now == nil {
		now = time.Now
	}
	return &homeworkService{repo: repo, store: store, now: now, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// 教师
// ═══════════════════════════════════════════════════════════

func (s *homeworkService) Create(ctx context.Context, p model.Principal, req *dto.CreateHomeworkRequest) (*dto.HomeworkResponse, error) {
	if !p.Is(model.RoleTeacher) {
		return nil, ErrForbiddenRole
	}
	if strings.TrimSpace(req.GroupID) == "" {
		return nil, ErrHomeworkGroupEmpty
	}
	title := strings.TrimSpace(req.Title)
	if title == "" || len([]rune(title)) > maxHomeworkTitleLen {
		return nil, ErrHomeworkTitleEmpty
	}

	if !validID(req.GroupID) {
		return nil, ErrHomeworkGroupInvalid
	}
	group, err := s.repo.Group.GetByID(ctx, req.GroupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrHomeworkGroupInvalid
		}
		s.logger.Error("查询小组失败", zap.Error(err))
		return nil, err
	}
	if group.TeacherID != p.UserID {
		return nil, ErrForbiddenOwnership
	}

	homework := &model.Homework{
		GroupID:     group.GroupID,
		Title:       title,
		Description: req.Description,
		CreatedAt:   s.now(),
	}
	if err := s.repo.Homework.Create(ctx, homework); err != nil {
		s.logger.Error("创建作业失败",
			zap.String("group_id", group.GroupID),
			zap.String("teacher_id", p.UserID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("创建作业失败: %w", err)
	}
	homework.Group = group

	s.logger.Info("布置作业",
		zap.String("homework_id", homework.HomeworkID),
		zap.String("group_id", group.GroupID),
		zap.Time("deadline", homework.Deadline()),
	)
	resp := s.toHomeworkResponse(homework, nil, false)
	return &resp, nil
}

func (s *homeworkService) Grade(ctx context.Context, p model.Principal, submissionID string, req *dto.GradeRequest) (*dto.TeacherSubmissionResponse, error) {
	if !p.Is(model.RoleTeacher) {
		return nil, ErrForbiddenRole
	}
	if !validID(submissionID) {
		return nil, ErrSubmissionNotFound
	}

	sub, err := s.repo.Submission.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubmissionNotFound
		}
		s.logger.Error("查询提交失败", zap.Error(err))
		return nil, err
	}
	if sub.Homework == nil || sub.Homework.Group == nil || sub.Homework.Group.TeacherID != p.UserID {
		return nil, ErrForbiddenOwnership
	}
	if req.Score == nil || *req.Score < 0 || *req.Score > 100 {
		return nil, ErrInvalidScore
	}

	// 覆盖写入：重复评分以最后一次为准
	score := *req.Score
	gradedAt := s.now()
	sub.Score = &score
	sub.Feedback = req.Feedback
	sub.GradedAt = &gradedAt
	if err := s.repo.Submission.UpdateGrade(ctx, sub); err != nil {
		s.logger.Error("保存评分失败", zap.String("submission_id", sub.SubmissionID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("作业评分",
		zap.String("submission_id", sub.SubmissionID),
		zap.Int("score", score),
	)
	resp := toTeacherSubmission(sub)
	return &resp, nil
}

func (s *homeworkService) ListTeaching(ctx context.Context, p model.Principal) ([]dto.TeachingHomeworkResponse, error) {
	if !p.Is(model.RoleTeacher) {
		return nil, ErrForbiddenRole
	}

	groupIDs, err := s.repo.Group.IDsByTeacher(ctx, p.UserID)
	if err != nil {
		s.logger.Error("查询所授小组失败", zap.Error(err))
		return nil, err
	}
	homeworks, err := s.repo.Homework.ListByGroups(ctx, groupIDs)
	if err != nil {
		s.logger.Error("查询作业失败", zap.Error(err))
		return nil, err
	}

	ids := make([]string, 0, len(homeworks))
	for i := range homeworks {
		ids = append(ids, homeworks[i].HomeworkID)
	}
	counts, err := s.repo.Submission.CountByHomeworks(ctx, ids)
	if err != nil {
		s.logger.Error("统计提交数失败", zap.Error(err))
		return nil, err
	}

	now := s.now()
	list := make([]dto.TeachingHomeworkResponse, 0, len(homeworks))
	for i := range homeworks {
		h := &homeworks[i]
		item := dto.TeachingHomeworkResponse{
			ID:              h.HomeworkID,
			Title:           h.Title,
			GroupID:         h.GroupID,
			CreatedAt:       h.CreatedAt,
			Deadline:        h.Deadline(),
			Expired:         h.IsExpired(now),
			SubmissionCount: counts[h.HomeworkID],
		}
		item.GroupName, item.CourseName = groupNames(h.Group)
		list = append(list, item)
	}
	return list, nil
}

func (s *homeworkService) ListSubmissions(ctx context.Context, p model.Principal, req *dto.SubmissionListRequest) ([]dto.TeacherSubmissionResponse, error) {
	if !p.Is(model.RoleTeacher) {
		return nil, ErrForbiddenRole
	}

	groupIDs, err := s.repo.Group.IDsByTeacher(ctx, p.UserID)
	if err != nil {
		s.logger.Error("查询所授小组失败", zap.Error(err))
		return nil, err
	}

	filter := repository.SubmissionFilter{GroupIDs: groupIDs}
	if req != nil {
		if req.GroupID != "" {
			if !containsID(groupIDs, req.GroupID) {
				return nil, ErrForbiddenOwnership
			}
			filter.GroupID = req.GroupID
		}
		switch model.SubmissionStatus(req.Status) {
		case model.StatusSubmitted:
			graded := false
			filter.Graded = &graded
		case model.StatusGraded:
			graded := true
			filter.Graded = &graded
		}
	}

	subs, err := s.repo.Submission.ListByGroups(ctx, filter)
	if err != nil {
		s.logger.Error("查询提交列表失败", zap.Error(err))
		return nil, err
	}

	list := make([]dto.TeacherSubmissionResponse, 0, len(subs))
	for i := range subs {
		list = append(list, toTeacherSubmission(&subs[i]))
	}
	return list, nil
}

func (s *homeworkService) RecentSubmissions(ctx context.Context, p model.Principal) ([]dto.TeacherSubmissionResponse, error) {
	list, err := s.ListSubmissions(ctx, p, nil)
	if err != nil {
		return nil, err
	}
	if len(list) > recentSubmissionsLimit {
		list = list[:recentSubmissionsLimit]
	}
	return list, nil
}

func (s *homeworkService) TeacherStats(ctx context.Context, p model.Principal) (*dto.TeacherStatsResponse, error) {
	if !p.Is(model.RoleTeacher) {
		return nil, ErrForbiddenRole
	}

	groupIDs, err := s.repo.Group.IDsByTeacher(ctx, p.UserID)
	if err != nil {
		s.logger.Error("查询所授小组失败", zap.Error(err))
		return nil, err
	}

	counts, err := s.repo.Group.CountStudents(ctx, groupIDs)
	if err != nil {
		s.logger.Error("统计学生数失败", zap.Error(err))
		return nil, err
	}
	var totalStudents int64
	for _, n := range counts {
		totalStudents += n
	}

	totalHomework, err := s.repo.Homework.CountByGroups(ctx, groupIDs)
	if err != nil {
		s.logger.Error("统计作业数失败", zap.Error(err))
		return nil, err
	}

	pending, err := s.repo.Submission.CountUngradedByGroups(ctx, groupIDs)
	if err != nil {
		s.logger.Error("统计待评分提交失败", zap.Error(err))
		return nil, err
	}

	return &dto.TeacherStatsResponse{
		TotalGroups:   len(groupIDs),
		TotalStudents: totalStudents,
		TotalHomework: totalHomework,
		PendingGrades: pending,
	}, nil
}

// ═══════════════════════════════════════════════════════════
// 学生
// ═══════════════════════════════════════════════════════════

// Submit 校验顺序：作业存在 → 小组成员 → 截止时间 → 重复提交 → 文件
// 文件先写入存储，插入失败时删除已写入的文件
func (s *homeworkService) Submit(ctx context.Context, p model.Principal, homeworkID string, file *Upload) (*dto.SubmitResponse, error) {
	if !p.Is(model.RoleStudent) {
		return nil, ErrForbiddenRole
	}
	if !validID(homeworkID) {
		return nil, ErrHomeworkNotFound
	}

	homework, err := s.repo.Homework.GetByID(ctx, homeworkID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrHomeworkNotFound
		}
		s.logger.Error("查询作业失败", zap.Error(err))
		return nil, err
	}

	enrolled, err := s.repo.Group.IsEnrolled(ctx, homework.GroupID, p.UserID)
	if err != nil {
		s.logger.Error("查询小组成员失败", zap.Error(err))
		return nil, err
	}
	if !enrolled {
		return nil, ErrForbiddenOwnership
	}

	now := s.now()
	if homework.IsExpired(now) {
		return nil, ErrDeadlinePassed
	}

	if _, err := s.repo.Submission.GetByHomeworkAndStudent(ctx, homework.HomeworkID, p.UserID); err == nil {
		return nil, ErrDuplicateSubmission
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询已有提交失败", zap.Error(err))
		return nil, err
	}

	if file == nil || file.Content == nil {
		return nil, ErrFileRequired
	}

	key := storage.NewKey(submissionKeyPrefix, file.Filename, now)
	if err := s.store.Save(ctx, key, file.Content); err != nil {
		s.logger.Error("保存作业文件失败", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("保存作业文件失败: %w", err)
	}

	sub := &model.HomeworkSubmission{
		HomeworkID:  homework.HomeworkID,
		StudentID:   p.UserID,
		FilePath:    key,
		FileName:    cleanFilename(file.Filename),
		SubmittedAt: now,
		Homework:    homework,
	}
	if err := s.repo.Submission.Create(ctx, sub); err != nil {
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			s.logger.Warn("回滚作业文件失败", zap.String("key", key), zap.Error(delErr))
		}
		// 并发提交由唯一索引兜底
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateSubmission
		}
		s.logger.Error("保存提交记录失败", zap.Error(err))
		return nil, fmt.Errorf("保存提交记录失败: %w", err)
	}

	s.logger.Info("提交作业",
		zap.String("homework_id", homework.HomeworkID),
		zap.String("student_id", p.UserID),
		zap.Int64("size", file.Size),
	)
	return &dto.SubmitResponse{
		Message:      "作业已提交",
		SubmissionID: sub.SubmissionID,
		SubmittedAt:  sub.SubmittedAt,
		Late:         sub.IsLate(),
	}, nil
}

func (s *homeworkService) ListForStudent(ctx context.Context, p model.Principal) ([]dto.HomeworkResponse, error) {
	homeworks, subs, err := s.studentHomework(ctx, p)
	if err != nil {
		return nil, err
	}

	list := make([]dto.HomeworkResponse, 0, len(homeworks))
	for i := range homeworks {
		h := &homeworks[i]
		list = append(list, s.toHomeworkResponse(h, subs[h.HomeworkID], true))
	}
	return list, nil
}

func (s *homeworkService) RecentForStudent(ctx context.Context, p model.Principal) ([]dto.HomeworkResponse, error) {
	list, err := s.ListForStudent(ctx, p)
	if err != nil {
		return nil, err
	}
	if len(list) > recentHomeworkLimit {
		list = list[:recentHomeworkLimit]
	}
	return list, nil
}

func (s *homeworkService) MySubmissions(ctx context.Context, p model.Principal) ([]dto.MySubmissionResponse, error) {
	if !p.Is(model.RoleStudent) {
		return nil, ErrForbiddenRole
	}

	subs, err := s.repo.Submission.ListByStudent(ctx, p.UserID)
	if err != nil {
		s.logger.Error("查询提交记录失败", zap.Error(err))
		return nil, err
	}

	list := make([]dto.MySubmissionResponse, 0, len(subs))
	for i := range subs {
		sub := &subs[i]
		item := dto.MySubmissionResponse{
			ID:          sub.SubmissionID,
			HomeworkID:  sub.HomeworkID,
			SubmittedAt: sub.SubmittedAt,
			Late:        sub.IsLate(),
			Status:      string(sub.Status()),
			Score:       sub.Score,
			Feedback:    sub.Feedback,
			GradedAt:    sub.GradedAt,
		}
		if sub.Homework != nil {
			item.Homework = sub.Homework.Title
			item.GroupName, _ = groupNames(sub.Homework.Group)
		}
		list = append(list, item)
	}
	return list, nil
}

// StudentStats 平均分只统计已评分的提交，保留一位小数；无评分时为 0
func (s *homeworkService) StudentStats(ctx context.Context, p model.Principal) (*dto.StudentStatsResponse, error) {
	homeworks, subs, err := s.studentHomework(ctx, p)
	if err != nil {
		return nil, err
	}

	var (
		submitted int
		graded    int
		sum       int
	)
	for i := range homeworks {
		sub, ok := subs[homeworks[i].HomeworkID]
		if !ok {
			continue
		}
		submitted++
		if sub.Score != nil {
			graded++
			sum += *sub.Score
		}
	}

	return &dto.StudentStatsResponse{
		Total:        len(homeworks),
		Submitted:    submitted,
		Pending:      len(homeworks) - submitted,
		AverageGrade: averageOneDecimal(sum, graded),
	}, nil
}

// ═══════════════════════════════════════════════════════════
// 共用
// ═══════════════════════════════════════════════════════════

func (s *homeworkService) Detail(ctx context.Context, p model.Principal, homeworkID string) (*dto.HomeworkDetailResponse, error) {
	if !p.Is(model.RoleStudent) && !p.Is(model.RoleTeacher) {
		return nil, ErrForbiddenRole
	}
	if !validID(homeworkID) {
		return nil, ErrHomeworkNotFound
	}

	homework, err := s.repo.Homework.GetByID(ctx, homeworkID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrHomeworkNotFound
		}
		s.logger.Error("查询作业失败", zap.Error(err))
		return nil, err
	}

	resp := &dto.HomeworkDetailResponse{}
	if homework.Group != nil && homework.Group.Teacher != nil {
		resp.TeacherName = homework.Group.Teacher.DisplayName()
	}

	switch p.Role {
	case model.RoleStudent:
		enrolled, err := s.repo.Group.IsEnrolled(ctx, homework.GroupID, p.UserID)
		if err != nil {
			s.logger.Error("查询小组成员失败", zap.Error(err))
			return nil, err
		}
		if !enrolled {
			return nil, ErrForbiddenOwnership
		}

		sub, err := s.repo.Submission.GetByHomeworkAndStudent(ctx, homework.HomeworkID, p.UserID)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				s.logger.Error("查询提交失败", zap.Error(err))
				return nil, err
			}
			sub = nil
		}
		resp.HomeworkResponse = s.toHomeworkResponse(homework, sub, true)

	case model.RoleTeacher:
		if homework.Group == nil || homework.Group.TeacherID != p.UserID {
			return nil, ErrForbiddenOwnership
		}
		counts, err := s.repo.Submission.CountByHomeworks(ctx, []string{homework.HomeworkID})
		if err != nil {
			s.logger.Error("统计提交数失败", zap.Error(err))
			return nil, err
		}
		n := counts[homework.HomeworkID]
		resp.HomeworkResponse = s.toHomeworkResponse(homework, nil, false)
		resp.SubmissionCount = &n
	}

	return resp, nil
}

func (s *homeworkService) OpenSubmissionFile(ctx context.Context, p model.Principal, submissionID string) (io.ReadCloser, string, error) {
	if !validID(submissionID) {
		return nil, "", ErrSubmissionNotFound
	}
	sub, err := s.repo.Submission.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrSubmissionNotFound
		}
		s.logger.Error("查询提交失败", zap.Error(err))
		return nil, "", err
	}

	switch p.Role {
	case model.RoleStudent:
		if sub.StudentID != p.UserID {
			return nil, "", ErrForbiddenOwnership
		}
	case model.RoleTeacher:
		if sub.Homework == nil || sub.Homework.Group == nil || sub.Homework.Group.TeacherID != p.UserID {
			return nil, "", ErrForbiddenOwnership
		}
	default:
		return nil, "", ErrForbiddenRole
	}

	rc, err := s.store.Open(ctx, sub.FilePath)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.logger.Warn("提交文件不存在", zap.String("key", sub.FilePath))
			return nil, "", ErrSubmissionFileGone
		}
		s.logger.Error("读取提交文件失败", zap.String("key", sub.FilePath), zap.Error(err))
		return nil, "", err
	}

	name := sub.FileName
	if name == "" {
		name = path.Base(sub.FilePath)
	}
	return rc, name, nil
}

// ── 内部辅助方法 ──

// studentHomework 学生所在小组的作业（新→旧）及其本人提交（按作业 ID 索引）
func (s *homeworkService) studentHomework(ctx context.Context, p model.Principal) ([]model.Homework, map[string]*model.HomeworkSubmission, error) {
	if !p.Is(model.RoleStudent) {
		return nil, nil, ErrForbiddenRole
	}

	groupIDs, err := s.repo.Group.IDsByStudent(ctx, p.UserID)
	if err != nil {
		s.logger.Error("查询所在小组失败", zap.Error(err))
		return nil, nil, err
	}
	homeworks, err := s.repo.Homework.ListByGroups(ctx, groupIDs)
	if err != nil {
		s.logger.Error("查询作业失败", zap.Error(err))
		return nil, nil, err
	}
	subs, err := s.repo.Submission.ListByStudent(ctx, p.UserID)
	if err != nil {
		s.logger.Error("查询提交记录失败", zap.Error(err))
		return nil, nil, err
	}

	byHomework := make(map[string]*model.HomeworkSubmission, len(subs))
	for i := range subs {
		byHomework[subs[i].HomeworkID] = &subs[i]
	}
	return homeworks, byHomework, nil
}

// toHomeworkResponse withStatus 为 true 时附带学生视角的状态与提交摘要
func (s *homeworkService) toHomeworkResponse(h *model.Homework, sub *model.HomeworkSubmission, withStatus bool) dto.HomeworkResponse {
	resp := dto.HomeworkResponse{
		ID:          h.HomeworkID,
		Title:       h.Title,
		Description: h.Description,
		GroupID:     h.GroupID,
		CreatedAt:   h.CreatedAt,
		Deadline:    h.Deadline(),
		Expired:     h.IsExpired(s.now()),
	}
	resp.GroupName, resp.CourseName = groupNames(h.Group)

	if !withStatus {
		return resp
	}
	resp.Status = string(model.StatusOf(sub))
	if sub != nil {
		if sub.Homework == nil {
			sub.Homework = h
		}
		resp.Grade = sub.Score
		resp.Feedback = sub.Feedback
		resp.Submission = &dto.SubmissionSummary{
			ID:          sub.SubmissionID,
			SubmittedAt: sub.SubmittedAt,
			Late:        sub.IsLate(),
			FileName:    sub.FileName,
			FileURL:     fmt.Sprintf(submissionFileURL, sub.SubmissionID),
			Score:       sub.Score,
			Feedback:    sub.Feedback,
			GradedAt:    sub.GradedAt,
		}
	}
	return resp
}

func toTeacherSubmission(sub *model.HomeworkSubmission) dto.TeacherSubmissionResponse {
	resp := dto.TeacherSubmissionResponse{
		ID:          sub.SubmissionID,
		HomeworkID:  sub.HomeworkID,
		SubmittedAt: sub.SubmittedAt,
		Late:        sub.IsLate(),
		Status:      string(sub.Status()),
		File:        fmt.Sprintf(submissionFileURL, sub.SubmissionID),
		FileName:    sub.FileName,
		Score:       sub.Score,
		Feedback:    sub.Feedback,
		GradedAt:    sub.GradedAt,
	}
	if sub.Student != nil {
		resp.Student = sub.Student.Phone
		resp.StudentName = sub.Student.FullName
	}
	if sub.Homework != nil {
		resp.Homework = sub.Homework.Title
		resp.GroupName, _ = groupNames(sub.Homework.Group)
	}
	return resp
}

// groupNames 小组名与课程名，关联未加载时为空
func groupNames(g *model.Group) (string, string) {
	if g == nil {
		return "", ""
	}
	if g.Course == nil {
		return g.Name, ""
	}
	return g.Name, g.Course.Name
}

// averageOneDecimal 平均值四舍五入到一位小数；count 为 0 时返回 0
func averageOneDecimal(sum, count int) float64 {
	if count == 0 {
		return 0
	}
	return math.Round(float64(sum)/float64(count)*10) / 10
}

// cleanFilename 只保留原始文件名的最后一段
// file_name 列为 varchar(255)，按字符截取并保留结尾（扩展名）
func cleanFilename(name string) string {
	name = strings.ToValidUTF8(name, "")
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" {
		return ""
	}
	if r := []rune(name); len(r) > maxFileNameLen {
		name = string(r[len(r)-maxFileNameLen:])
	}
	return name
}
