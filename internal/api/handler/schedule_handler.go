package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"maktab/backend/internal/dto"
	"maktab/backend/internal/service"
	"maktab/backend/pkg/response"
)

// ScheduleHandler 课程表模块 HTTP 处理器
type ScheduleHandler struct {
	scheduleSvc service.ScheduleService
}

// NewScheduleHandler 创建 ScheduleHandler
func NewScheduleHandler(scheduleSvc service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{scheduleSvc: scheduleSvc}
}

// ListSchedules 按角色范围列出课程表
// GET /api/v1/schedules?from=2026-09-01&to=2026-09-30
func (h *ScheduleHandler) ListSchedules(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	var req dto.ScheduleListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err)
		return
	}

	list, err := h.scheduleSvc.List(c.Request.Context(), p, &req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, list)
}

// ExportICS 以 iCalendar 订阅格式输出同一范围的课程表
// GET /api/v1/schedules/ics
func (h *ScheduleHandler) ExportICS(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	var req dto.ScheduleListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err)
		return
	}

	cal, err := h.scheduleSvc.ICS(c.Request.Context(), p, &req)
	if err != nil {
		handleError(c, err)
		return
	}

	c.Header("Content-Disposition", `inline; filename="schedule.ics"`)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(cal))
}

// CreateSchedule 新增课程表条目
// POST /api/v1/schedules
func (h *ScheduleHandler) CreateSchedule(c *gin.Context) {
	var req dto.CreateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	schedule, err := h.scheduleSvc.Create(c.Request.Context(), &req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Created(c, schedule)
}
