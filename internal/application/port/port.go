// Package port 应用层依赖的外部能力
// 具体实现在infrastructure层(Redis),未启用时用这里的空实现
package port

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/xiebiao/circulation/internal/domain/circulation"
)

// QueueCache 队列快照读缓存
type QueueCache interface {
	// Get 未命中时返回(nil, version, false, nil)
	// version是该书当前的失效代数,未命中后回源的快照带着它调用Set
	Get(ctx context.Context, titleID uint) (state *circulation.QueueState, version int64, hit bool, err error)
	// Set 从version之后发生过Invalidate时不写入
	Set(ctx context.Context, titleID uint, version int64, state *circulation.QueueState) error
	Invalidate(ctx context.Context, titleIDs ...uint) error
}

// SweepLocker 批处理的跨实例互斥
type SweepLocker interface {
	// TryAcquire 拿到锁时返回release和true;锁被别的实例持有时返回false
	TryAcquire(ctx context.Context, ttl time.Duration) (release func(), ok bool, err error)
}

// NopQueueCache 不缓存
type NopQueueCache struct{}

func (NopQueueCache) Get(context.Context, uint) (*circulation.QueueState, int64, bool, error) {
	return nil, 0, false, nil
}

func (NopQueueCache) Set(context.Context, uint, int64, *circulation.QueueState) error { return nil }

func (NopQueueCache) Invalidate(context.Context, ...uint) error { return nil }

// LocalSweepLocker 单实例部署时使用,总能拿到锁
type LocalSweepLocker struct{}

func (LocalSweepLocker) TryAcquire(context.Context, time.Duration) (func(), bool, error) {
	return func() {}, true, nil
}

// InvalidateQueues 失效缓存,失败只记日志
// 缓存带TTL,失效失败最多读到一段时间的旧快照
func InvalidateQueues(ctx context.Context, cache QueueCache, logger *zap.Logger, titleIDs ...uint) {
	if cache == nil || len(titleIDs) == 0 {
		return
	}
	if err := cache.Invalidate(ctx, titleIDs...); err != nil {
		logger.Warn("失效队列缓存失败", zap.Uints("title_ids", titleIDs), zap.Error(err))
	}
}
