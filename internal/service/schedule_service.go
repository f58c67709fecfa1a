package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"maktab/backend/internal/dto"
	"maktab/backend/internal/model"
	"maktab/backend/internal/repository"
	apperrors "maktab/backend/pkg/errors"
)

// ── 课程表模块业务错误 ──

var (
	ErrScheduleTimeRange = apperrors.New(apperrors.KindValidation, 15001, "结束时间必须晚于开始时间")
	ErrScheduleDateRange = apperrors.New(apperrors.KindValidation, 15002, "查询起始日期不能晚于结束日期")
)

const (
	dateLayout     = "2006-01-02"
	clockLayout    = "15:04"
	schoolTimezone = "Asia/Tashkent"
	icsProductID   = "-//maktab//schedule//UZ"
)

// ScheduleService 课程表业务接口
type ScheduleService interface {
	List(ctx context.Context, p model.Principal, req *dto.ScheduleListRequest) ([]dto.ScheduleResponse, error)
	// ICS 与 List 同一可见范围，输出 iCalendar 文本
	ICS(ctx context.Context, p model.Principal, req *dto.ScheduleListRequest) (string, error)
	Create(ctx context.Context, req *dto.CreateScheduleRequest) (*dto.ScheduleResponse, error)
}

type scheduleService struct {
	repo   *repository.Repository
	loc    *time.Location
	logger *zap.Logger
}

// NewScheduleService 创建 ScheduleService 实例
func NewScheduleService(repo *repository.Repository, logger *zap.Logger) ScheduleService {
	loc, err := time.LoadLocation(schoolTimezone)
	if err != nil {
		// 缺少 tzdata 时退回固定 UTC+5
		loc = time.FixedZone("UZT", 5*60*60)
	}
	return &scheduleService{repo: repo, loc: loc, logger: logger}
}

func (s *scheduleService) List(ctx context.Context, p model.Principal, req *dto.ScheduleListRequest) ([]dto.ScheduleResponse, error) {
	schedules, err := s.list(ctx, p, req)
	if err != nil {
		return nil, err
	}

	list := make([]dto.ScheduleResponse, 0, len(schedules))
	for i := range schedules {
		list = append(list, toScheduleResponse(&schedules[i]))
	}
	return list, nil
}

func (s *scheduleService) ICS(ctx context.Context, p model.Principal, req *dto.ScheduleListRequest) (string, error) {
	schedules, err := s.list(ctx, p, req)
	if err != nil {
		return "", err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(icsProductID)
	cal.SetXWRTimezone(s.loc.String())

	stamp := time.Now().UTC()
	for i := range schedules {
		sc := &schedules[i]
		start, errStart := s.combine(sc.Date, sc.StartTime)
		end, errEnd := s.combine(sc.Date, sc.EndTime)
		if errStart != nil || errEnd != nil {
			s.logger.Warn("课程表时间格式异常，跳过",
				zap.String("schedule_id", sc.ScheduleID),
				zap.String("start", sc.StartTime),
				zap.String("end", sc.EndTime),
			)
			continue
		}

		event := cal.AddEvent(sc.ScheduleID + "@maktab")
		event.SetDtStampTime(stamp)
		event.SetStartAt(start)
		event.SetEndAt(end)
		event.SetSummary(sc.Subject)
		if sc.Group != nil {
			event.SetDescription(scheduleGroupLabel(sc.Group))
		}
	}

	return cal.Serialize(), nil
}

func (s *scheduleService) Create(ctx context.Context, req *dto.CreateScheduleRequest) (*dto.ScheduleResponse, error) {
	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		return nil, apperrors.New(apperrors.KindValidation, apperrors.CodeValidation, "日期格式应为 YYYY-MM-DD")
	}
	start, errStart := time.Parse(clockLayout, req.StartTime)
	end, errEnd := time.Parse(clockLayout, req.EndTime)
	if errStart != nil || errEnd != nil {
		return nil, apperrors.New(apperrors.KindValidation, apperrors.CodeValidation, "时间格式应为 HH:MM")
	}
	if !end.After(start) {
		return nil, ErrScheduleTimeRange
	}

	group, err := s.repo.Group.GetByID(ctx, req.GroupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}
		s.logger.Error("查询小组失败", zap.Error(err))
		return nil, err
	}

	schedule := &model.Schedule{
		GroupID:   group.GroupID,
		Date:      date,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Subject:   req.Subject,
	}
	if err := s.repo.Schedule.Create(ctx, schedule); err != nil {
		s.logger.Error("创建课程表条目失败", zap.Error(err))
		return nil, err
	}
	schedule.Group = group

	resp := toScheduleResponse(schedule)
	return &resp, nil
}

// list 按调用方角色确定小组范围后查询
func (s *scheduleService) list(ctx context.Context, p model.Principal, req *dto.ScheduleListRequest) ([]model.Schedule, error) {
	filter := repository.ScheduleFilter{}

	if req != nil {
		if req.From != "" {
			from, err := time.Parse(dateLayout, req.From)
			if err != nil {
				return nil, apperrors.New(apperrors.KindValidation, apperrors.CodeValidation, "from 日期格式应为 YYYY-MM-DD")
			}
			filter.From = &from
		}
		if req.To != "" {
			to, err := time.Parse(dateLayout, req.To)
			if err != nil {
				return nil, apperrors.New(apperrors.KindValidation, apperrors.CodeValidation, "to 日期格式应为 YYYY-MM-DD")
			}
			filter.To = &to
		}
		if filter.From != nil && filter.To != nil && filter.From.After(*filter.To) {
			return nil, ErrScheduleDateRange
		}
	}

	ids, err := groupScope(ctx, s.repo, p)
	if err != nil {
		if _, ok := apperrors.As(err); !ok {
			s.logger.Error("查询小组范围失败", zap.Error(err))
		}
		return nil, err
	}
	filter.GroupIDs = ids

	schedules, err := s.repo.Schedule.List(ctx, filter)
	if err != nil {
		s.logger.Error("查询课程表失败", zap.Error(err))
		return nil, err
	}
	return schedules, nil
}

// combine 将日期与 "HH:MM[:SS]" 合成为学校时区的时间点
func (s *scheduleService) combine(date time.Time, clock string) (time.Time, error) {
	hhmm := clock
	if len(hhmm) > 5 {
		hhmm = hhmm[:5]
	}
	t, err := time.Parse(clockLayout, hhmm)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), 0, 0, s.loc), nil
}

func toScheduleResponse(sc *model.Schedule) dto.ScheduleResponse {
	resp := dto.ScheduleResponse{
		ID:        sc.ScheduleID,
		GroupID:   sc.GroupID,
		Date:      sc.Date.Format(dateLayout),
		Day:       model.WeekdayOf(sc.Date),
		StartTime: trimSeconds(sc.StartTime),
		EndTime:   trimSeconds(sc.EndTime),
		Subject:   sc.Subject,
	}
	if sc.Group != nil {
		resp.GroupName = sc.Group.Name
		if sc.Group.Course != nil {
			resp.CourseName = sc.Group.Course.Name
		}
	}
	return resp
}

func scheduleGroupLabel(g *model.Group) string {
	if g.Course != nil {
		return fmt.Sprintf("%s (%s)", g.Name, g.Course.Name)
	}
	return g.Name
}

// trimSeconds "09:00:00" -> "09:00"
func trimSeconds(clock string) string {
	if len(clock) == 8 && clock[5] == ':' {
		return clock[:5]
	}
	return clock
}
