package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "maktab/backend/pkg/errors"
	"maktab/backend/pkg/response"
)

// handleError 业务错误按类别输出；其余错误记入 c.Errors 由日志中间件落盘，对外只返回 500
func handleError(c *gin.Context, err error) {
	if appErr, ok := apperrors.As(err); ok {
		response.AppError(c, appErr)
		return
	}
	_ = c.Error(err)
	response.InternalError(c)
}

// bindError 请求参数绑定失败
func bindError(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		response.Error(c, http.StatusRequestEntityTooLarge, apperrors.CodeBodyTooLarge, "请求体过大")
		return
	}
	_ = c.Error(err).SetType(gin.ErrorTypeBind)
	response.BadRequest(c, apperrors.CodeValidation, "参数校验失败")
}
