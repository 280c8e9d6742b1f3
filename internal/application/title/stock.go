package title

import (
	"context"

	"go.uber.org/zap"

	"github.com/xiebiao/circulation/internal/application/port"
	"github.com/xiebiao/circulation/internal/application/view"
	"github.com/xiebiao/circulation/internal/domain/circulation"
	"github.com/xiebiao/circulation/pkg/tracing"
)

// stockMutation 库存类用例的公共部分: 调引擎,提交后失效队列缓存
type stockMutation struct {
	engine circulation.Service
	cache  port.QueueCache
	logger *zap.Logger
}

func newStockMutation(engine circulation.Service, cache port.QueueCache, logger *zap.Logger) stockMutation {
	if cache == nil {
		cache = port.NopQueueCache{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return stockMutation{engine: engine, cache: cache, logger: logger}
}

// AdjustStockUseCase 馆员校正库存
// 可借数增加时引擎会按增量推进队列
type AdjustStockUseCase struct {
	stockMutation
}

// NewAdjustStockUseCase 创建库存校正用例
func NewAdjustStockUseCase(engine circulation.Service, cache port.QueueCache, logger *zap.Logger) *AdjustStockUseCase {
	return &AdjustStockUseCase{newStockMutation(engine, cache, logger)}
}

// AdjustStockRequest 库存校正请求DTO
type AdjustStockRequest struct {
	TitleID   uint
	Total     int
	Available int
}

// Execute 执行库存校正
func (uc *AdjustStockUseCase) Execute(ctx context.Context, req AdjustStockRequest) (resp *view.Title, err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "title.AdjustStock")
	defer func() { tracing.End(span, err) }()

	t, err := uc.engine.AdjustStock(ctx, req.TitleID, req.Total, req.Available)
	if err != nil {
		return nil, err
	}
	port.InvalidateQueues(ctx, uc.cache, uc.logger, t.ID)
	v := view.FromTitle(t)
	return &v, nil
}

// AddCopiesUseCase 补货
type AddCopiesUseCase struct {
	stockMutation
}

// NewAddCopiesUseCase 创建补货用例
func NewAddCopiesUseCase(engine circulation.Service, cache port.QueueCache, logger *zap.Logger) *AddCopiesUseCase {
	return &AddCopiesUseCase{newStockMutation(engine, cache, logger)}
}

// AddCopiesRequest 补货请求DTO
type AddCopiesRequest struct {
	TitleID uint
	Copies  int
}

// Execute 执行补货
func (uc *AddCopiesUseCase) Execute(ctx context.Context, req AddCopiesRequest) (resp *view.Title, err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "title.AddCopies")
	defer func() { tracing.End(span, err) }()

	t, err := uc.engine.AddCopies(ctx, req.TitleID, req.Copies)
	if err != nil {
		return nil, err
	}
	port.InvalidateQueues(ctx, uc.cache, uc.logger, t.ID)
	v := view.FromTitle(t)
	return &v, nil
}

// WithdrawTitleUseCase 下架
// 排队中的预约全部移除,已保留的预约和未还的借阅照常走完
type WithdrawTitleUseCase struct {
	stockMutation
}

// NewWithdrawTitleUseCase 创建下架用例
func NewWithdrawTitleUseCase(engine circulation.Service, cache port.QueueCache, logger *zap.Logger) *WithdrawTitleUseCase {
	return &WithdrawTitleUseCase{newStockMutation(engine, cache, logger)}
}

// Execute 执行下架
func (uc *WithdrawTitleUseCase) Execute(ctx context.Context, titleID uint) (resp *view.Title, err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "title.Withdraw")
	defer func() { tracing.End(span, err) }()

	t, err := uc.engine.WithdrawTitle(ctx, titleID)
	if err != nil {
		return nil, err
	}
	port.InvalidateQueues(ctx, uc.cache, uc.logger, t.ID)
	uc.logger.Info("图书下架", zap.Uint("title_id", t.ID))
	v := view.FromTitle(t)
	return &v, nil
}
