package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"maktab/backend/internal/model"
	apperrors "maktab/backend/pkg/errors"
	"maktab/backend/pkg/response"
)

// 与 middleware.JWTAuth 约定的上下文键
const (
	ctxPrincipal = "principal"
	ctxTokenJTI  = "token_jti"
	ctxTokenExp  = "token_exp"
)

// MustGetPrincipal 从 Gin 上下文中安全提取当前调用方。
// 如果 JWT 中间件未正确注入，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetPrincipal(c *gin.Context) (model.Principal, bool) {
	v, exists := c.Get(ctxPrincipal)
	if !exists {
		response.AppError(c, apperrors.ErrUnauthenticated)
		return model.Principal{}, false
	}
	p, ok := v.(model.Principal)
	if !ok || p.UserID == "" {
		response.AppError(c, apperrors.ErrUnauthenticated)
		return model.Principal{}, false
	}
	return p, true
}

// tokenMeta 读取当前 Access Token 的 jti 与过期时间（登出时加入黑名单）
func tokenMeta(c *gin.Context) (string, time.Time) {
	jti := c.GetString(ctxTokenJTI)
	exp, _ := c.Get(ctxTokenExp)
	t, _ := exp.(time.Time)
	return jti, t
}
