// Package sweep 定时批处理: 过期预约、标记逾期、到期提醒
package sweep

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/xiebiao/circulation/internal/application/port"
	"github.com/xiebiao/circulation/internal/domain/circulation"
	"github.com/xiebiao/circulation/pkg/metrics"
	"github.com/xiebiao/circulation/pkg/tracing"
)

const tracerName = "application/sweep"

// RunSweepUseCase 过期预约 + 标记逾期
// 多实例部署时通过locker保证同一时刻只有一个实例在跑
type RunSweepUseCase struct {
	engine  circulation.Service
	locker  port.SweepLocker
	cache   port.QueueCache
	lockTTL time.Duration
	logger  *zap.Logger
	now     func() time.Time
}

// NewRunSweepUseCase locker为nil时按单实例处理
func NewRunSweepUseCase(engine circulation.Service, locker port.SweepLocker, cache port.QueueCache, lockTTL time.Duration, logger *zap.Logger) *RunSweepUseCase {
	if locker == nil {
		locker = port.LocalSweepLocker{}
	}
	if cache == nil {
		cache = port.NopQueueCache{}
	}
	if lockTTL <= 0 {
		lockTTL = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RunSweepUseCase{
		engine:  engine,
		locker:  locker,
		cache:   cache,
		lockTTL: lockTTL,
		logger:  logger,
		now:     time.Now,
	}
}

// RunSweepRequest 批处理请求
type RunSweepRequest struct {
	AsOf time.Time // 零值取当前时间
}

// RunSweepResponse 批处理结果
type RunSweepResponse struct {
	Skipped bool                       `json:"skipped"` // 其他实例正在跑
	Reports []*circulation.SweepReport `json:"reports"`
}

// Execute 先过期预约再标记逾期
// 锁服务不可用时照常执行,两个批处理都可以重复跑
func (uc *RunSweepUseCase) Execute(ctx context.Context, req RunSweepRequest) (resp *RunSweepResponse, err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "sweep.Run")
	defer func() { tracing.End(span, err) }()

	asOf := req.AsOf
	if asOf.IsZero() {
		asOf = uc.now()
	}

	release, ok, lockErr := uc.locker.TryAcquire(ctx, uc.lockTTL)
	switch {
	case lockErr != nil:
		uc.logger.Warn("获取批处理锁失败,不加锁执行", zap.Error(lockErr))
	case !ok:
		uc.logger.Info("批处理正在其他实例执行,跳过本次")
		return &RunSweepResponse{Skipped: true}, nil
	default:
		defer release()
	}

	resp = &RunSweepResponse{}

	expired, err := uc.engine.ExpireSweep(ctx, asOf)
	if expired != nil {
		uc.record(expired)
		resp.Reports = append(resp.Reports, expired)
		port.InvalidateQueues(ctx, uc.cache, uc.logger, expired.TitleIDs...)
	}
	if err != nil {
		return resp, err
	}

	overdue, err := uc.engine.MarkOverdue(ctx, asOf)
	if overdue != nil {
		uc.record(overdue)
		resp.Reports = append(resp.Reports, overdue)
	}
	if err != nil {
		return resp, err
	}
	return resp, nil
}

func (uc *RunSweepUseCase) record(r *circulation.SweepReport) {
	skipped := r.Scanned - r.Applied - r.Failed
	metrics.RecordSweep(string(r.Kind), r.Applied, r.Failed, skipped, r.Duration.Seconds())
	uc.logger.Info("批处理完成",
		zap.String("kind", string(r.Kind)),
		zap.Time("as_of", r.AsOf),
		zap.Int("scanned", r.Scanned),
		zap.Int("applied", r.Applied),
		zap.Int("failed", r.Failed),
		zap.Duration("duration", r.Duration),
	)
}
