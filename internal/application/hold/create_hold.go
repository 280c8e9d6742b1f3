// Package hold 预约相关用例
package hold

import (
	"context"

	"go.uber.org/zap"

	"github.com/xiebiao/circulation/internal/application/port"
	"github.com/xiebiao/circulation/internal/application/view"
	"github.com/xiebiao/circulation/internal/domain/circulation"
	"github.com/xiebiao/circulation/pkg/metrics"
	"github.com/xiebiao/circulation/pkg/tracing"
)

const tracerName = "application/hold"

// CreateHoldUseCase 读者预约
// 有可借副本时直接生效,否则排队
type CreateHoldUseCase struct {
	engine circulation.Service
	cache  port.QueueCache
	logger *zap.Logger
}

// NewCreateHoldUseCase 创建预约用例
func NewCreateHoldUseCase(engine circulation.Service, cache port.QueueCache, logger *zap.Logger) *CreateHoldUseCase {
	if cache == nil {
		cache = port.NopQueueCache{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CreateHoldUseCase{engine: engine, cache: cache, logger: logger}
}

// CreateHoldRequest 预约请求DTO
type CreateHoldRequest struct {
	TitleID  uint
	HolderID uint // 读者本人(从JWT取)或馆员代约时指定
}

// Execute 执行预约
func (uc *CreateHoldUseCase) Execute(ctx context.Context, req CreateHoldRequest) (resp *view.Hold, err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "hold.Create")
	defer func() { tracing.End(span, err) }()

	h, err := uc.engine.CreateHold(ctx, req.TitleID, req.HolderID)
	if err != nil {
		return nil, err
	}
	metrics.RecordHoldCreated(string(h.Status))
	port.InvalidateQueues(ctx, uc.cache, uc.logger, h.TitleID)

	v := view.FromHold(h)
	return &v, nil
}
