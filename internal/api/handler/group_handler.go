package handler

import (
	"github.com/gin-gonic/gin"

	"maktab/backend/internal/dto"
	"maktab/backend/internal/service"
	"maktab/backend/pkg/response"
)

// GroupHandler 小组模块 HTTP 处理器
type GroupHandler struct {
	groupSvc service.GroupService
}

// NewGroupHandler 创建 GroupHandler
func NewGroupHandler(groupSvc service.GroupService) *GroupHandler {
	return &GroupHandler{groupSvc: groupSvc}
}

// MyGroups 当前用户相关的小组
// GET /api/v1/groups/my
func (h *GroupHandler) MyGroups(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	groups, err := h.groupSvc.ListMine(c.Request.Context(), p)
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, groups)
}

// CreateGroup 创建小组
// POST /api/v1/groups
func (h *GroupHandler) CreateGroup(c *gin.Context) {
	var req dto.CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	group, err := h.groupSvc.Create(c.Request.Context(), &req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Created(c, group)
}

// SetStudents 整体替换小组成员
// PUT /api/v1/groups/:id/students
func (h *GroupHandler) SetStudents(c *gin.Context) {
	var req dto.SetGroupStudentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	group, err := h.groupSvc.SetStudents(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, group)
}
