package hold

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/xiebiao/circulation/internal/application/port"
	"github.com/xiebiao/circulation/internal/application/view"
	"github.com/xiebiao/circulation/internal/domain/circulation"
	"github.com/xiebiao/circulation/internal/domain/hold"
	"github.com/xiebiao/circulation/pkg/metrics"
	"github.com/xiebiao/circulation/pkg/saga"
	"github.com/xiebiao/circulation/pkg/tracing"
)

// TransferHoldUseCase 把预约转到另一本书(馆员)
// 设计说明:
// 1. 两本书各自加锁,不在同一个事务里
// 2. 先在新书排队,再移除旧预约;移除失败时补偿,把新预约移除
// 3. 两步之间读者会短暂同时持有两条预约
type TransferHoldUseCase struct {
	engine  circulation.Service
	holds   hold.Repository
	cache   port.QueueCache
	logger  *zap.Logger
	timeout time.Duration
}

// NewTransferHoldUseCase 创建转移用例
func NewTransferHoldUseCase(engine circulation.Service, holds hold.Repository, cache port.QueueCache, logger *zap.Logger) *TransferHoldUseCase {
	if cache == nil {
		cache = port.NopQueueCache{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TransferHoldUseCase{
		engine:  engine,
		holds:   holds,
		cache:   cache,
		logger:  logger,
		timeout: 10 * time.Second,
	}
}

// TransferHoldRequest 转移请求DTO
type TransferHoldRequest struct {
	HoldID  uint // 原预约
	TitleID uint // 目标图书
}

// TransferHoldResponse 转移响应DTO
type TransferHoldResponse struct {
	Released view.Hold `json:"released"` // 原预约(removed)
	Hold     view.Hold `json:"hold"`     // 新预约
}

// Execute 执行转移
// 失败时返回的错误可用errors.Is判断是哪一步的业务错误
func (uc *TransferHoldUseCase) Execute(ctx context.Context, req TransferHoldRequest) (resp *TransferHoldResponse, err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "hold.Transfer")
	defer func() { tracing.End(span, err) }()

	old, err := uc.holds.FindByID(ctx, req.HoldID)
	if err != nil {
		return nil, err
	}
	if !old.IsLive() {
		return nil, hold.ErrInvalidTransition
	}

	var created, released *hold.Hold
	s := saga.New("transfer_hold", uc.timeout, uc.logger).
		AddStep("enqueue_target",
			func(ctx context.Context) error {
				h, err := uc.engine.CreateHold(ctx, req.TitleID, old.HolderID)
				if err != nil {
					return err
				}
				created = h
				return nil
			},
			func(ctx context.Context) error {
				_, err := uc.engine.RemoveHold(ctx, created.ID)
				return err
			},
		).
		AddStep("release_source",
			func(ctx context.Context) error {
				h, err := uc.engine.RemoveHold(ctx, old.ID)
				if err != nil {
					return err
				}
				released = h
				return nil
			},
			nil,
		)

	err = s.Execute(ctx)
	if created != nil {
		port.InvalidateQueues(ctx, uc.cache, uc.logger, created.TitleID)
	}
	if err != nil {
		return nil, err
	}
	port.InvalidateQueues(ctx, uc.cache, uc.logger, released.TitleID)
	metrics.RecordHoldCreated(string(created.Status))

	uc.logger.Info("预约已转移",
		zap.Uint("from_hold", released.ID),
		zap.Uint("to_hold", created.ID),
		zap.Uint("holder_id", created.HolderID),
	)
	return &TransferHoldResponse{Released: view.FromHold(released), Hold: view.FromHold(created)}, nil
}
