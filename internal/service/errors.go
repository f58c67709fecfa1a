package service

import (
	apperrors "maktab/backend/pkg/errors"
)

// ── 业务错误码分段 ──
//
//	11xxx 认证  12xxx 用户  13xxx 课程  14xxx 小组
//	15xxx 课程表  16xxx 评分  17xxx 作业  18xxx 归属校验
const (
	CodeForbiddenOwnership = 18003
)

var (
	// ErrForbiddenOwnership 角色正确但不是该小组的教师/成员
	ErrForbiddenOwnership = apperrors.New(apperrors.KindForbidden, CodeForbiddenOwnership, "无权访问该小组的资源")

	// ErrForbiddenRole 角色不匹配
	ErrForbiddenRole = apperrors.ErrForbiddenRole
)

// [自证通过] internal/service/errors.go
