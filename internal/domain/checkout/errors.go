package checkout

import (
	apperrors "github.com/xiebiao/circulation/pkg/errors"
)

// 借阅领域错误定义
var (
	// ErrCheckoutNotFound 借阅记录不存在
	ErrCheckoutNotFound = apperrors.New(apperrors.ErrCodeCheckoutNotFound, "借阅记录不存在")

	// ErrDuplicateCheckout 该读者已借阅此书且未归还
	ErrDuplicateCheckout = apperrors.New(apperrors.ErrCodeDuplicateCheckout, "该读者已借阅此书且未归还")

	// ErrAlreadyReturned 借阅已归还
	ErrAlreadyReturned = apperrors.New(apperrors.ErrCodeAlreadyReturned, "借阅已归还")
)
