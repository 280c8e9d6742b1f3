package title

import (
	apperrors "github.com/xiebiao/circulation/pkg/errors"
)

// 图书库存领域错误定义
var (
	// ErrTitleNotFound 图书不存在
	ErrTitleNotFound = apperrors.New(apperrors.ErrCodeTitleNotFound, "图书不存在")

	// ErrOutOfStock 没有可借副本
	ErrOutOfStock = apperrors.New(apperrors.ErrCodeOutOfStock, "没有可借副本")

	// ErrInvariantViolation 归还后可借数将超过总数
	ErrInvariantViolation = apperrors.New(apperrors.ErrCodeInvariantViolation, "可借副本数不能超过总副本数")

	// ErrInvalidRange 库存数量非法
	ErrInvalidRange = apperrors.New(apperrors.ErrCodeInvalidRange, "库存数量非法")

	// ErrTitleWithdrawn 图书已下架
	ErrTitleWithdrawn = apperrors.New(apperrors.ErrCodeTitleWithdrawn, "图书已下架")

	// ErrISBNDuplicate ISBN已存在
	ErrISBNDuplicate = apperrors.New(apperrors.ErrCodeDuplicateEntry, "ISBN号已存在")

	// ErrInvalidISBN ISBN格式不正确
	ErrInvalidISBN = apperrors.New(apperrors.ErrCodeInvalidParams, "ISBN格式不正确")

	// ErrNameRequired 书名不能为空
	ErrNameRequired = apperrors.New(apperrors.ErrCodeInvalidParams, "书名不能为空")
)
