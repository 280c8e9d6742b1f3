// Package checkout 借还用例
package checkout

import (
	"context"

	"go.uber.org/zap"

	"github.com/xiebiao/circulation/internal/application/port"
	"github.com/xiebiao/circulation/internal/application/view"
	"github.com/xiebiao/circulation/internal/domain/circulation"
	"github.com/xiebiao/circulation/pkg/tracing"
)

const tracerName = "application/checkout"

// OpenCheckoutUseCase 馆员直接借出(不经过预约)
type OpenCheckoutUseCase struct {
	engine circulation.Service
	cache  port.QueueCache
	logger *zap.Logger
}

// NewOpenCheckoutUseCase 创建借出用例
func NewOpenCheckoutUseCase(engine circulation.Service, cache port.QueueCache, logger *zap.Logger) *OpenCheckoutUseCase {
	if cache == nil {
		cache = port.NopQueueCache{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OpenCheckoutUseCase{engine: engine, cache: cache, logger: logger}
}

// OpenCheckoutRequest 借出请求DTO
type OpenCheckoutRequest struct {
	TitleID        uint
	HolderID       uint
	LoanPeriodDays int // <=0使用配置的默认借期
}

// Execute 执行借出
func (uc *OpenCheckoutUseCase) Execute(ctx context.Context, req OpenCheckoutRequest) (resp *view.Checkout, err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "checkout.Open")
	defer func() { tracing.End(span, err) }()

	c, err := uc.engine.OpenCheckout(ctx, req.TitleID, req.HolderID, req.LoanPeriodDays)
	if err != nil {
		return nil, err
	}
	port.InvalidateQueues(ctx, uc.cache, uc.logger, c.TitleID)
	v := view.FromCheckout(c)
	return &v, nil
}

// CloseCheckoutUseCase 归还
// 归还的副本优先给队首的预约
type CloseCheckoutUseCase struct {
	engine circulation.Service
	cache  port.QueueCache
	logger *zap.Logger
}

// NewCloseCheckoutUseCase 创建归还用例
func NewCloseCheckoutUseCase(engine circulation.Service, cache port.QueueCache, logger *zap.Logger) *CloseCheckoutUseCase {
	if cache == nil {
		cache = port.NopQueueCache{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CloseCheckoutUseCase{engine: engine, cache: cache, logger: logger}
}

// Execute 执行归还
func (uc *CloseCheckoutUseCase) Execute(ctx context.Context, checkoutID uint) (resp *view.Checkout, err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "checkout.Close")
	defer func() { tracing.End(span, err) }()

	c, err := uc.engine.CloseCheckout(ctx, checkoutID)
	if err != nil {
		return nil, err
	}
	port.InvalidateQueues(ctx, uc.cache, uc.logger, c.TitleID)
	v := view.FromCheckout(c)
	return &v, nil
}
