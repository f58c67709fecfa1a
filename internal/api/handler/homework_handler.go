package handler

import (
	"context"
	"errors"
	"mime"
	"net/http"
	"net/url"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"maktab/backend/internal/dto"
	"maktab/backend/internal/model"
	"maktab/backend/internal/service"
	apperrors "maktab/backend/pkg/errors"
	"maktab/backend/pkg/response"
)

// multipartOverhead multipart 表单头部等额外开销
const multipartOverhead = 1 << 20

// HomeworkHandler 作业模块 HTTP 处理器
type HomeworkHandler struct {
	homeworkSvc service.HomeworkService
	maxUpload   int64
}

// NewHomeworkHandler 创建 HomeworkHandler
// maxUpload 为单个作业文件的字节上限，<=0 表示不限制
func NewHomeworkHandler(homeworkSvc service.HomeworkService, maxUpload int64) *HomeworkHandler {
	return &HomeworkHandler{homeworkSvc: homeworkSvc, maxUpload: maxUpload}
}

// ═══════════════════════════════════════════════════════════
// 学生
// ═══════════════════════════════════════════════════════════

// List 所在小组的全部作业及提交状态
// GET /api/v1/homework
func (h *HomeworkHandler) List(c *gin.Context) {
	h.query(c, func(ctx context.Context, p model.Principal) (interface{}, error) {
		return h.homeworkSvc.ListForStudent(ctx, p)
	})
}

// Recent 最近 5 条作业
// GET /api/v1/homework/recent
func (h *HomeworkHandler) Recent(c *gin.Context) {
	h.query(c, func(ctx context.Context, p model.Principal) (interface{}, error) {
		return h.homeworkSvc.RecentForStudent(ctx, p)
	})
}

// Stats 学生作业统计
// GET /api/v1/homework/stats
func (h *HomeworkHandler) Stats(c *gin.Context) {
	h.query(c, func(ctx context.Context, p model.Principal) (interface{}, error) {
		return h.homeworkSvc.StudentStats(ctx, p)
	})
}

// MySubmissions 我的提交
// GET /api/v1/homework/my-submissions
func (h *HomeworkHandler) MySubmissions(c *gin.Context) {
	h.query(c, func(ctx context.Context, p model.Principal) (interface{}, error) {
		return h.homeworkSvc.MySubmissions(ctx, p)
	})
}

// Submit 提交作业文件
// POST /api/v1/homework/:id/submit (multipart: file)
func (h *HomeworkHandler) Submit(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	if h.maxUpload > 0 && c.Request.Body != nil {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload+multipartOverhead)
	}

	// 缺少文件时 upload 为 nil，由 Service 按顺序校验后给出具体错误
	var upload *service.Upload
	fileHeader, err := c.FormFile("file")
	switch {
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	case err != nil:
		bindError(c, err)
		return
	default:
		if h.maxUpload > 0 && fileHeader.Size > h.maxUpload {
			response.Error(c, http.StatusRequestEntityTooLarge, apperrors.CodeBodyTooLarge, "文件过大")
			return
		}

		f, err := fileHeader.Open()
		if err != nil {
			handleError(c, err)
			return
		}
		defer f.Close()

		upload = &service.Upload{
			Filename: fileHeader.Filename,
			Size:     fileHeader.Size,
			Content:  f,
		}
	}

	result, err := h.homeworkSvc.Submit(c.Request.Context(), p, c.Param("id"), upload)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Created(c, result)
}

// ═══════════════════════════════════════════════════════════
// 教师
// ═══════════════════════════════════════════════════════════

// Create 布置作业
// POST /api/v1/homework/create
func (h *HomeworkHandler) Create(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	var req dto.CreateHomeworkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	homework, err := h.homeworkSvc.Create(c.Request.Context(), p, &req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Created(c, homework)
}

// Teaching 所授小组的作业列表
// GET /api/v1/homework/teaching
func (h *HomeworkHandler) Teaching(c *gin.Context) {
	h.query(c, func(ctx context.Context, p model.Principal) (interface{}, error) {
		return h.homeworkSvc.ListTeaching(ctx, p)
	})
}

// Submissions 所授小组的提交列表
// GET /api/v1/homework/submissions?status=SUBMITTED&group_id=...
func (h *HomeworkHandler) Submissions(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	var req dto.SubmissionListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err)
		return
	}

	list, err := h.homeworkSvc.ListSubmissions(c.Request.Context(), p, &req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, list)
}

// RecentSubmissions 最近 6 条提交
// GET /api/v1/homework/recent-submissions
func (h *HomeworkHandler) RecentSubmissions(c *gin.Context) {
	h.query(c, func(ctx context.Context, p model.Principal) (interface{}, error) {
		return h.homeworkSvc.RecentSubmissions(ctx, p)
	})
}

// TeacherStats 教师统计
// GET /api/v1/homework/teacher-stats
func (h *HomeworkHandler) TeacherStats(c *gin.Context) {
	h.query(c, func(ctx context.Context, p model.Principal) (interface{}, error) {
		return h.homeworkSvc.TeacherStats(ctx, p)
	})
}

// Grade 评分（可重复评分，覆盖上次结果）
// POST /api/v1/homework/submission/:id/grade
func (h *HomeworkHandler) Grade(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	var req dto.GradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.homeworkSvc.Grade(c.Request.Context(), p, c.Param("id"), &req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, result)
}

// ═══════════════════════════════════════════════════════════
// 共用
// ═══════════════════════════════════════════════════════════

// Detail 作业详情
// GET /api/v1/homework/:id
func (h *HomeworkHandler) Detail(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	detail, err := h.homeworkSvc.Detail(c.Request.Context(), p, c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, detail)
}

// SubmissionFile 下载提交文件
// GET /api/v1/homework/submission/:id/file
func (h *HomeworkHandler) SubmissionFile(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	rc, filename, err := h.homeworkSvc.OpenSubmissionFile(c.Request.Context(), p, c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	defer rc.Close()

	contentType := mime.TypeByExtension(filepath.Ext(filename))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.DataFromReader(http.StatusOK, -1, contentType, rc, map[string]string{
		"Content-Disposition": "attachment; filename*=UTF-8''" + url.PathEscape(filename),
	})
}

// query 读取调用方后执行只读查询并输出结果
func (h *HomeworkHandler) query(c *gin.Context, fn func(ctx context.Context, p model.Principal) (interface{}, error)) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	result, err := fn(c.Request.Context(), p)
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, result)
}
