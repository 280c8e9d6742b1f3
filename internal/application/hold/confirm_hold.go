package hold

import (
	"context"

	"go.uber.org/zap"

	"github.com/xiebiao/circulation/internal/application/port"
	"github.com/xiebiao/circulation/internal/application/view"
	"github.com/xiebiao/circulation/internal/domain/circulation"
	"github.com/xiebiao/circulation/pkg/tracing"
)

// ConfirmHoldUseCase 读者到馆取书
// 预约→confirmed,同一事务内开出借阅,保留的那本直接转给借阅
type ConfirmHoldUseCase struct {
	engine circulation.Service
	cache  port.QueueCache
	logger *zap.Logger
}

// NewConfirmHoldUseCase 创建取书用例
func NewConfirmHoldUseCase(engine circulation.Service, cache port.QueueCache, logger *zap.Logger) *ConfirmHoldUseCase {
	if cache == nil {
		cache = port.NopQueueCache{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConfirmHoldUseCase{engine: engine, cache: cache, logger: logger}
}

// ConfirmHoldRequest 取书请求DTO
type ConfirmHoldRequest struct {
	HoldID         uint
	LoanPeriodDays int // <=0使用配置的默认借期
}

// Execute 执行取书
func (uc *ConfirmHoldUseCase) Execute(ctx context.Context, req ConfirmHoldRequest) (resp *view.Checkout, err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "hold.Confirm")
	defer func() { tracing.End(span, err) }()

	c, err := uc.engine.ConfirmHold(ctx, req.HoldID, req.LoanPeriodDays)
	if err != nil {
		return nil, err
	}
	port.InvalidateQueues(ctx, uc.cache, uc.logger, c.TitleID)
	v := view.FromCheckout(c)
	return &v, nil
}
