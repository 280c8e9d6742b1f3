package sweep

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/xiebiao/circulation/internal/application/port"
	"github.com/xiebiao/circulation/internal/domain/circulation"
	"github.com/xiebiao/circulation/pkg/tracing"
)

// DueRemindersUseCase 到期提醒,每天一次
// 使用独立的锁,避免和过期批处理互相跳过
type DueRemindersUseCase struct {
	engine  circulation.Service
	locker  port.SweepLocker
	lockTTL time.Duration
	logger  *zap.Logger
	now     func() time.Time
}

// NewDueRemindersUseCase locker为nil时按单实例处理
func NewDueRemindersUseCase(engine circulation.Service, locker port.SweepLocker, lockTTL time.Duration, logger *zap.Logger) *DueRemindersUseCase {
	if locker == nil {
		locker = port.LocalSweepLocker{}
	}
	if lockTTL <= 0 {
		lockTTL = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DueRemindersUseCase{engine: engine, locker: locker, lockTTL: lockTTL, logger: logger, now: time.Now}
}

// DueRemindersResponse 提醒结果
type DueRemindersResponse struct {
	Skipped bool   `json:"skipped"`
	Day     string `json:"day"`
	Sent    int    `json:"sent"`
}

// Execute 给day当天到期的借阅发提醒,day为零值时取今天
func (uc *DueRemindersUseCase) Execute(ctx context.Context, day time.Time) (resp *DueRemindersResponse, err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "sweep.DueReminders")
	defer func() { tracing.End(span, err) }()

	if day.IsZero() {
		day = uc.now()
	}
	resp = &DueRemindersResponse{Day: day.Format("2006-01-02")}

	release, ok, lockErr := uc.locker.TryAcquire(ctx, uc.lockTTL)
	switch {
	case lockErr != nil:
		uc.logger.Warn("获取提醒锁失败,不加锁执行", zap.Error(lockErr))
	case !ok:
		resp.Skipped = true
		return resp, nil
	default:
		defer release()
	}

	sent, err := uc.engine.DueReminders(ctx, day)
	if err != nil {
		return nil, err
	}
	resp.Sent = sent
	uc.logger.Info("到期提醒已发送", zap.String("day", resp.Day), zap.Int("count", sent))
	return resp, nil
}
