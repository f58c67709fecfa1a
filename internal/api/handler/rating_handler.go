package handler

import (
	"github.com/gin-gonic/gin"

	"maktab/backend/internal/dto"
	"maktab/backend/internal/service"
	"maktab/backend/pkg/response"
)

// RatingHandler 评分模块 HTTP 处理器
type RatingHandler struct {
	ratingSvc service.RatingService
}

// NewRatingHandler 创建 RatingHandler
func NewRatingHandler(ratingSvc service.RatingService) *RatingHandler {
	return &RatingHandler{ratingSvc: ratingSvc}
}

// ListRatings 评分列表（按角色范围）
// GET /api/v1/ratings
func (h *RatingHandler) ListRatings(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	list, err := h.ratingSvc.List(c.Request.Context(), p)
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, list)
}

// CreateRating 录入评分
// POST /api/v1/ratings
func (h *RatingHandler) CreateRating(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	var req dto.CreateRatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	rating, err := h.ratingSvc.Create(c.Request.Context(), p, &req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Created(c, rating)
}
