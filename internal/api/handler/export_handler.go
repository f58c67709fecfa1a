package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"maktab/backend/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportRatings 导出评分
// GET /api/v1/ratings/export
func (h *ExportHandler) ExportRatings(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	buf, filename, err := h.exportSvc.ExportRatings(c.Request.Context(), p)
	if err != nil {
		handleError(c, err)
		return
	}

	// 设置下载响应头
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
