// Package errors 业务错误分类：每个业务错误携带类别（决定 HTTP 状态码）与稳定的错误码。
package errors

import (
	"errors"
	"net/http"
)

// Kind 业务错误类别
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindConflict
)

// HTTPStatus 类别对应的 HTTP 状态码
func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error 业务错误
type Error struct {
	Kind    Kind
	Code    int
	Message string
}

func (e *Error) Error() string { return e.Message }

// Is 按错误码比较，便于 errors.Is 识别被包装后的业务错误
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New 创建业务错误
func New(kind Kind, code int, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// As 从错误链中提取业务错误
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// ── 通用错误码 ──

const (
	CodeValidation      = 10001
	CodeUnauthenticated = 10002
	CodeForbiddenRole   = 10003
	CodeRateLimited     = 10004
	CodeBodyTooLarge    = 10005
	CodeInternal        = 50000
)

var (
	// ErrForbiddenRole 角色不匹配（与"非本组教师/学生"的归属校验失败区分开）
	ErrForbiddenRole   = New(KindForbidden, CodeForbiddenRole, "无权限访问")
	ErrUnauthenticated = New(KindUnauthenticated, CodeUnauthenticated, "未认证")
)
