package hold

import (
	apperrors "github.com/xiebiao/circulation/pkg/errors"
)

// 预约领域错误定义
var (
	// ErrHoldNotFound 预约不存在
	ErrHoldNotFound = apperrors.New(apperrors.ErrCodeHoldNotFound, "预约不存在")

	// ErrDuplicateHold 该读者对此书已有排队中或生效中的预约
	ErrDuplicateHold = apperrors.New(apperrors.ErrCodeDuplicateHold, "该读者对此书已有预约")

	// ErrInvalidTransition 当前状态不允许此操作
	ErrInvalidTransition = apperrors.New(apperrors.ErrCodeInvalidTransition, "预约状态不允许此操作")

	// ErrNotOwner 只能取消自己的预约
	ErrNotOwner = apperrors.New(apperrors.ErrCodeForbidden, "只能操作自己的预约")
)
