package hold

import (
	"context"

	"go.uber.org/zap"

	"github.com/xiebiao/circulation/internal/application/port"
	"github.com/xiebiao/circulation/internal/application/view"
	"github.com/xiebiao/circulation/internal/domain/circulation"
	"github.com/xiebiao/circulation/pkg/tracing"
)

// CancelHoldUseCase 读者取消自己的预约
type CancelHoldUseCase struct {
	engine circulation.Service
	cache  port.QueueCache
	logger *zap.Logger
}

// NewCancelHoldUseCase 创建取消用例
func NewCancelHoldUseCase(engine circulation.Service, cache port.QueueCache, logger *zap.Logger) *CancelHoldUseCase {
	if cache == nil {
		cache = port.NopQueueCache{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CancelHoldUseCase{engine: engine, cache: cache, logger: logger}
}

// CancelHoldRequest 取消请求DTO
type CancelHoldRequest struct {
	HoldID   uint
	HolderID uint // 当前登录读者,必须是预约本人
}

// Execute 执行取消
// 取消已生效的预约会释放副本并推进队列
func (uc *CancelHoldUseCase) Execute(ctx context.Context, req CancelHoldRequest) (resp *view.Hold, err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "hold.Cancel")
	defer func() { tracing.End(span, err) }()

	h, err := uc.engine.CancelHold(ctx, req.HoldID, req.HolderID)
	if err != nil {
		return nil, err
	}
	port.InvalidateQueues(ctx, uc.cache, uc.logger, h.TitleID)
	v := view.FromHold(h)
	return &v, nil
}

// RemoveHoldUseCase 馆员移除预约
type RemoveHoldUseCase struct {
	engine circulation.Service
	cache  port.QueueCache
	logger *zap.Logger
}

// NewRemoveHoldUseCase 创建移除用例
func NewRemoveHoldUseCase(engine circulation.Service, cache port.QueueCache, logger *zap.Logger) *RemoveHoldUseCase {
	if cache == nil {
		cache = port.NopQueueCache{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RemoveHoldUseCase{engine: engine, cache: cache, logger: logger}
}

// Execute 执行移除
func (uc *RemoveHoldUseCase) Execute(ctx context.Context, holdID uint) (resp *view.Hold, err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "hold.Remove")
	defer func() { tracing.End(span, err) }()

	h, err := uc.engine.RemoveHold(ctx, holdID)
	if err != nil {
		return nil, err
	}
	port.InvalidateQueues(ctx, uc.cache, uc.logger, h.TitleID)
	v := view.FromHold(h)
	return &v, nil
}
