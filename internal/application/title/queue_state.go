package title

import (
	"context"

	"go.uber.org/zap"

	"github.com/xiebiao/circulation/internal/application/port"
	"github.com/xiebiao/circulation/internal/application/view"
	"github.com/xiebiao/circulation/internal/domain/circulation"
	"github.com/xiebiao/circulation/pkg/metrics"
	"github.com/xiebiao/circulation/pkg/tracing"
)

// QueueStateUseCase 队列快照(cache-aside)
// 读到的快照可能落后于刚提交的变更,写路径提交后会删缓存;
// 回源期间发生失效时,回源结果只返回给本次请求,不写回缓存
type QueueStateUseCase struct {
	engine circulation.Service
	cache  port.QueueCache
	logger *zap.Logger
}

// NewQueueStateUseCase 创建队列查询用例
func NewQueueStateUseCase(engine circulation.Service, cache port.QueueCache, logger *zap.Logger) *QueueStateUseCase {
	if cache == nil {
		cache = port.NopQueueCache{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QueueStateUseCase{engine: engine, cache: cache, logger: logger}
}

// Execute 查询队列
// 缓存故障时直接读库
func (uc *QueueStateUseCase) Execute(ctx context.Context, titleID uint) (resp *view.Queue, err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "title.QueueState")
	defer func() { tracing.End(span, err) }()

	cached, version, hit, err := uc.cache.Get(ctx, titleID)
	switch {
	case err != nil:
		metrics.IncCounterVec(metrics.QueueCacheRequests, "error")
		uc.logger.Warn("读取队列缓存失败", zap.Uint("title_id", titleID), zap.Error(err))
	case hit:
		metrics.IncCounterVec(metrics.QueueCacheRequests, "hit")
		v := view.FromQueueState(cached)
		return &v, nil
	default:
		metrics.IncCounterVec(metrics.QueueCacheRequests, "miss")
	}

	state, err := uc.engine.QueueState(ctx, titleID)
	if err != nil {
		return nil, err
	}
	if err := uc.cache.Set(ctx, titleID, version, state); err != nil {
		uc.logger.Warn("写入队列缓存失败", zap.Uint("title_id", titleID), zap.Error(err))
	}
	v := view.FromQueueState(state)
	return &v, nil
}
